package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/reefwatch/survey-trend-etl/internal/domain"
)

// Result file names, one per table.
const (
	FileTrends       = "population_trends.csv"
	FileSignificance = "significance.csv"
	FileRegionBiogeo = "trend_by_state_biogeography.csv"
	FileRegionTaxon  = "trend_by_state_taxon.csv"
	FileBandBiogeo   = "trend_by_latitude_band.csv"
)

// Writer persists a ResultSet as five CSV files under a directory,
// creating the directory if needed. Undefined statistics become empty cells.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter builds a Writer targeting dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// Store writes all five result tables. An existing file is overwritten.
func (w *Writer) Store(_ context.Context, rs domain.ResultSet) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	files := []struct {
		name string
		rows [][]string
	}{
		{FileTrends, trendRows(rs.Trends)},
		{FileSignificance, significanceRows(rs.Significance)},
		{FileRegionBiogeo, regionBiogeoRows(rs.RegionBiogeo)},
		{FileRegionTaxon, regionTaxonRows(rs.RegionTaxon)},
		{FileBandBiogeo, bandBiogeoRows(rs.BandBiogeo)},
	}
	for _, f := range files {
		if err := writeCSV(filepath.Join(w.dir, f.name), f.rows); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}

	w.logger.Info("csv results written", "dir", w.dir, "files", len(files))
	return nil
}

func trendRows(trends []domain.TrendResult) [][]string {
	rows := [][]string{{"species_id", "slope", "change_ratio", "total_nonzero_observations"}}
	for _, t := range trends {
		rows = append(rows, []string{
			t.SpeciesID,
			formatFloat(t.Slope),
			formatFloat(t.ChangeRatio),
			strconv.Itoa(t.TotalNonzero),
		})
	}
	return rows
}

func significanceRows(sig []domain.SignificanceResult) [][]string {
	rows := [][]string{{"species_id", "rho", "p_value", "significance_level", "direction"}}
	for _, s := range sig {
		rows = append(rows, []string{
			s.SpeciesID,
			strconv.FormatFloat(s.Rho, 'g', -1, 64),
			strconv.FormatFloat(s.PValue, 'g', -1, 64),
			s.Level,
			s.Direction,
		})
	}
	return rows
}

func regionBiogeoRows(rows []domain.RegionBiogeographyRow) [][]string {
	out := [][]string{{"state", "biogeography", "year", "mean_standardized"}}
	for _, r := range rows {
		out = append(out, []string{
			r.State, r.Biogeography, strconv.Itoa(r.Year), formatFloat(r.Mean),
		})
	}
	return out
}

func regionTaxonRows(rows []domain.RegionTaxonRow) [][]string {
	out := [][]string{{"state", "taxon", "year", "mean_standardized"}}
	for _, r := range rows {
		out = append(out, []string{
			r.State, r.Taxon, strconv.Itoa(r.Year), formatFloat(r.Mean),
		})
	}
	return out
}

func bandBiogeoRows(rows []domain.BandBiogeographyRow) [][]string {
	out := [][]string{{"latitude_band", "biogeography", "year", "mean_standardized"}}
	for _, r := range rows {
		out = append(out, []string{
			strconv.FormatFloat(r.Band, 'g', -1, 64),
			r.Biogeography,
			strconv.Itoa(r.Year),
			formatFloat(r.Mean),
		})
	}
	return out
}

func formatFloat(f domain.Float) string {
	if !f.OK {
		return ""
	}
	return strconv.FormatFloat(f.V, 'g', -1, 64)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
