// Package xlsx reads the survey input tables from a single spreadsheet
// workbook. The workbook carries the same three tables as the CSV input,
// one per sheet.
package xlsx

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/reefwatch/survey-trend-etl/internal/adapter/tabular"
	"github.com/reefwatch/survey-trend-etl/internal/domain"
)

// Default sheet names for the three input tables.
const (
	SheetCounts = "counts"
	SheetTraits = "species_traits"
	SheetSites  = "site_states"
)

// Reader loads a dataset from an xlsx workbook.
type Reader struct {
	path   string
	logger *slog.Logger
}

// NewReader builds a Reader over the workbook at path.
func NewReader(path string, logger *slog.Logger) *Reader {
	return &Reader{path: path, logger: logger}
}

// Load opens the workbook and parses the three sheets into a Dataset.
func (r *Reader) Load(_ context.Context) (domain.Dataset, error) {
	wb, err := excelize.OpenFile(r.path)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	countRows, err := sheetRows(wb, SheetCounts)
	if err != nil {
		return domain.Dataset{}, err
	}
	traitRows, err := sheetRows(wb, SheetTraits)
	if err != nil {
		return domain.Dataset{}, err
	}
	siteRows, err := sheetRows(wb, SheetSites)
	if err != nil {
		return domain.Dataset{}, err
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

	r.logger.Info("workbook parsed",
		"path", r.path,
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

func sheetRows(wb *excelize.File, sheet string) ([][]string, error) {
	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, domain.NewSchemaError("workbook", "missing sheet %q", sheet)
	}
	return rows, nil
}
