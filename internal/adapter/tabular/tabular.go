// Package tabular parses the wide-format survey matrix and the two
// reference tables from row matrices, independent of whether the rows came
// from CSV files or a spreadsheet workbook. All validation failures are
// domain.SchemaError values naming the table and the offending column or
// structure.
package tabular

import (
	"strconv"
	"strings"

	"github.com/reefwatch/survey-trend-etl/internal/domain"
)

// Table names reported in schema errors.
const (
	TableCounts = "counts"
	TableTraits = "species_traits"
	TableSites  = "site_states"
)

// countsColumns are the required metadata columns of the wide counts table,
// in no particular order. Every remaining numeric header is a year column.
var countsColumns = []string{
	"site_id", "species_id", "latitude", "longitude",
	"protected", "taxon", "region_category", "state",
}

type columnIndex map[string]int

func indexHeader(table string, header []string, required []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, domain.NewSchemaError(table, "missing required column %q", name)
		}
	}
	return idx, nil
}

// field returns the trimmed cell at column i, tolerating short rows
// (spreadsheet readers drop trailing empty cells).
func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// yearColumn pairs a year header with its column position.
type yearColumn struct {
	col  int
	year int
}

// yearColumns extracts the year columns from the header, in column order,
// and checks they form a contiguous ascending range.
func yearColumns(header []string) ([]yearColumn, error) {
	var years []yearColumn
	for i, name := range header {
		y, err := strconv.Atoi(strings.TrimSpace(name))
		if err != nil {
			continue
		}
		years = append(years, yearColumn{col: i, year: y})
	}
	if len(years) == 0 {
		return nil, domain.NewSchemaError(TableCounts, "no year columns found")
	}
	for i := 1; i < len(years); i++ {
		if years[i].year != years[i-1].year+1 {
			return nil, domain.NewSchemaError(TableCounts,
				"year columns not contiguous: %d follows %d", years[i].year, years[i-1].year)
		}
	}
	return years, nil
}

// ParseCounts converts the wide survey matrix into long-format observations.
// It returns the observations plus the year range spanned by the columns.
func ParseCounts(rows [][]string) ([]domain.Observation, int, int, error) {
	if len(rows) == 0 {
		return nil, 0, 0, domain.NewSchemaError(TableCounts, "empty table")
	}
	idx, err := indexHeader(TableCounts, rows[0], countsColumns)
	if err != nil {
		return nil, 0, 0, err
	}
	years, err := yearColumns(rows[0])
	if err != nil {
		return nil, 0, 0, err
	}

	var obs []domain.Observation
	for n, row := range rows[1:] {
		line := n + 2 // 1-based, after the header

		siteID := field(row, idx["site_id"])
		speciesID := field(row, idx["species_id"])
		if siteID == "" || speciesID == "" {
			return nil, 0, 0, domain.NewSchemaError(TableCounts, "row %d: empty site_id or species_id", line)
		}

		lat, err := parseCoord(field(row, idx["latitude"]))
		if err != nil {
			return nil, 0, 0, domain.NewSchemaError(TableCounts, "row %d: bad latitude %q", line, field(row, idx["latitude"]))
		}
		lon, err := parseCoord(field(row, idx["longitude"]))
		if err != nil {
			return nil, 0, 0, domain.NewSchemaError(TableCounts, "row %d: bad longitude %q", line, field(row, idx["longitude"]))
		}
		protected, err := parseFlag(field(row, idx["protected"]))
		if err != nil {
			return nil, 0, 0, domain.NewSchemaError(TableCounts, "row %d: bad protected flag %q", line, field(row, idx["protected"]))
		}

		base := domain.Observation{
			SiteID:    siteID,
			SpeciesID: speciesID,
			Lat:       lat,
			Lon:       lon,
			Protected: protected,
			Taxon:     field(row, idx["taxon"]),
			Region:    field(row, idx["region_category"]),
			State:     field(row, idx["state"]),
		}
		for _, yc := range years {
			count, err := parseCount(field(row, yc.col))
			if err != nil {
				return nil, 0, 0, domain.NewSchemaError(TableCounts, "row %d: bad count for year %d", line, yc.year)
			}
			o := base
			o.Year = yc.year
			o.Count = count
			obs = append(obs, o)
		}
	}
	return obs, years[0].year, years[len(years)-1].year, nil
}

// ParseTraits parses the species reference table (species_id, biogeography).
func ParseTraits(rows [][]string) ([]domain.SpeciesTrait, error) {
	if len(rows) == 0 {
		return nil, domain.NewSchemaError(TableTraits, "empty table")
	}
	idx, err := indexHeader(TableTraits, rows[0], []string{"species_id", "biogeography"})
	if err != nil {
		return nil, err
	}
	traits := make([]domain.SpeciesTrait, 0, len(rows)-1)
	for n, row := range rows[1:] {
		id := field(row, idx["species_id"])
		if id == "" {
			return nil, domain.NewSchemaError(TableTraits, "row %d: empty species_id", n+2)
		}
		traits = append(traits, domain.SpeciesTrait{
			SpeciesID:    id,
			Biogeography: field(row, idx["biogeography"]),
		})
	}
	return traits, nil
}

// ParseSites parses the site reference table (site_id, state).
func ParseSites(rows [][]string) ([]domain.SiteState, error) {
	if len(rows) == 0 {
		return nil, domain.NewSchemaError(TableSites, "empty table")
	}
	idx, err := indexHeader(TableSites, rows[0], []string{"site_id", "state"})
	if err != nil {
		return nil, err
	}
	states := make([]domain.SiteState, 0, len(rows)-1)
	for n, row := range rows[1:] {
		id := field(row, idx["site_id"])
		if id == "" {
			return nil, domain.NewSchemaError(TableSites, "row %d: empty site_id", n+2)
		}
		states = append(states, domain.SiteState{
			SiteID: id,
			State:  field(row, idx["state"]),
		})
	}
	return states, nil
}

func parseCoord(s string) (int, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return domain.RoundDegree(v), nil
}

func parseCount(s string) (domain.Float, error) {
	if s == "" || strings.EqualFold(s, "na") {
		return domain.Absent, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return domain.Absent, strconv.ErrSyntax
	}
	return domain.Some(v), nil
}

func parseFlag(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "false", "0", "no", "n":
		return false, nil
	case "true", "1", "yes", "y":
		return true, nil
	}
	return strconv.ParseBool(s)
}
