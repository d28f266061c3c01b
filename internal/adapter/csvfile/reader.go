// Package csvfile reads the survey input tables from CSV files and writes
// the result tables back out as CSV, one file per table.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"

	"github.com/reefwatch/survey-trend-etl/internal/adapter/tabular"
	"github.com/reefwatch/survey-trend-etl/internal/domain"
)

// Reader loads a dataset from three CSV files: the wide counts matrix and
// the two reference tables.
type Reader struct {
	countsPath string
	traitsPath string
	sitesPath  string
	logger     *slog.Logger
}

// NewReader builds a Reader over the given file paths.
func NewReader(countsPath, traitsPath, sitesPath string, logger *slog.Logger) *Reader {
	return &Reader{
		countsPath: countsPath,
		traitsPath: traitsPath,
		sitesPath:  sitesPath,
		logger:     logger,
	}
}

// Load reads and parses the three input files into a Dataset.
func (r *Reader) Load(_ context.Context) (domain.Dataset, error) {
	countRows, err := readCSV(r.countsPath)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("read counts: %w", err)
	}
	traitRows, err := readCSV(r.traitsPath)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("read species traits: %w", err)
	}
	siteRows, err := readCSV(r.sitesPath)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("read site states: %w", err)
	}

	obs, yearStart, yearEnd, err := tabular.ParseCounts(countRows)
	if err != nil {
		return domain.Dataset{}, err
	}
	traits, err := tabular.ParseTraits(traitRows)
	if err != nil {
		return domain.Dataset{}, err
	}
	sites, err := tabular.ParseSites(siteRows)
	if err != nil {
		return domain.Dataset{}, err
	}

	r.logger.Info("csv input parsed",
		"counts", r.countsPath,
		"observations", len(obs),
		"species_traits", len(traits),
		"site_states", len(sites))

	return domain.Dataset{
		YearStart:    yearStart,
		YearEnd:      yearEnd,
		Observations: obs,
		Reference:    domain.NewReference(traits, sites),
	}, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}
