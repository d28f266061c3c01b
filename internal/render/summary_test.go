package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/reefwatch/survey-trend-etl/internal/domain"
)

func TestSummary(t *testing.T) {
	rs := domain.ResultSet{
		Trends: []domain.TrendResult{
			{SpeciesID: "sp1", Slope: domain.Some(0.25), ChangeRatio: domain.Some(1.5), TotalNonzero: 12},
			{SpeciesID: "sp2", Slope: domain.Absent, ChangeRatio: domain.Absent, TotalNonzero: 3},
		},
		Significance: []domain.SignificanceResult{
			{SpeciesID: "sp1", Rho: 1, PValue: 0, Level: "***", Direction: "up"},
		},
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	var sb strings.Builder
	Summary(&sb, rs)
	out := sb.String()

	assert.Contains(t, out, "sp1")
	assert.Contains(t, out, "0.2500")
	assert.Contains(t, out, "***")
	assert.Contains(t, out, "up")
	assert.Contains(t, out, "undefined", "absent statistics are labelled")
	assert.Contains(t, out, "(2 species, generated 2026-01-02")
}

func TestSummary_UntestedSpeciesShowsPlaceholders(t *testing.T) {
	rs := domain.ResultSet{
		Trends: []domain.TrendResult{{SpeciesID: "sp9", TotalNonzero: 2}},
	}

	var sb strings.Builder
	Summary(&sb, rs)

	assert.Contains(t, sb.String(), "sp9")
	assert.Contains(t, sb.String(), "-")
}
