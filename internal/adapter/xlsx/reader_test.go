package xlsx

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/reefwatch/survey-trend-etl/internal/domain"
)

func writeWorkbook(t *testing.T, sheets map[string][][]any) string {
	t.Helper()
	wb := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, wb.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := wb.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, wb.SetSheetRow(name, cell, &row))
		}
	}
	path := filepath.Join(t.TempDir(), "survey.xlsx")
	require.NoError(t, wb.SaveAs(path))
	require.NoError(t, wb.Close())
	return path
}

func TestReader_Load(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		SheetCounts: {
			{"site_id", "species_id", "latitude", "longitude", "protected", "taxon", "region_category", "state", "2008", "2009", "2010"},
			{"s1", "sp1", -42.3, 147.1, "true", "fish", "temperate", "TAS", 4, nil, 6},
		},
		SheetTraits: {
			{"species_id", "biogeography"},
			{"sp1", "temperate"},
		},
		SheetSites: {
			{"site_id", "state"},
			{"s1", "TAS"},
		},
	})

	r := NewReader(path, slog.Default())
	ds, err := r.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2008, ds.YearStart)
	assert.Equal(t, 2010, ds.YearEnd)
	require.Len(t, ds.Observations, 3)
	assert.Equal(t, domain.Some(4), ds.Observations[0].Count)
	assert.False(t, ds.Observations[1].Count.OK, "blank cell is an absent count")
	assert.Equal(t, -42, ds.Observations[0].Lat)
	assert.Equal(t, "temperate", ds.Reference.Biogeography["sp1"])
	require.NoError(t, ds.Validate())
}

func TestReader_Load_MissingSheet(t *testing.T) {
	path := writeWorkbook(t, map[string][][]any{
		SheetCounts: {
			{"site_id", "species_id", "latitude", "longitude", "protected", "taxon", "region_category", "state", "2008"},
			{"s1", "sp1", -42, 147, "false", "fish", "temperate", "TAS", 4},
		},
	})

	r := NewReader(path, slog.Default())
	_, err := r.Load(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsSchemaError(err))
	assert.Contains(t, err.Error(), "species_traits")
}

func TestReader_Load_MissingFile(t *testing.T) {
	r := NewReader(filepath.Join(t.TempDir(), "nope.xlsx"), slog.Default())
	_, err := r.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open workbook")
}
