package pipeline

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reefwatch/survey-trend-etl/internal/domain"
	"github.com/reefwatch/survey-trend-etl/internal/observability"
)

func testPipeline(opts Options) *Pipeline {
	return New(nil, nil, opts, slog.Default(), observability.NewMetricsForTesting())
}

func TestInterpolate(t *testing.T) {
	t.Run("fully observed series is untouched", func(t *testing.T) {
		in := []domain.Float{domain.Some(1), domain.Some(2), domain.Some(3)}
		assert.Equal(t, in, Interpolate(in))
	})

	t.Run("single interior gap", func(t *testing.T) {
		// a=2 at index 0, b=8 at index 3: filled = a + (b-a)*(j)/(3).
		in := []domain.Float{domain.Some(2), domain.Absent, domain.Absent, domain.Some(8)}
		got := Interpolate(in)
		assert.Equal(t, domain.Some(4.0), got[1])
		assert.Equal(t, domain.Some(6.0), got[2])
	})

	t.Run("interpolates across the whole run, not independently", func(t *testing.T) {
		in := []domain.Float{domain.Some(0), domain.Absent, domain.Absent, domain.Absent, domain.Some(8)}
		got := Interpolate(in)
		assert.Equal(t, domain.Some(2.0), got[1])
		assert.Equal(t, domain.Some(4.0), got[2])
		assert.Equal(t, domain.Some(6.0), got[3])
	})

	t.Run("leading and trailing gaps are left absent", func(t *testing.T) {
		in := []domain.Float{domain.Absent, domain.Some(3), domain.Absent, domain.Some(5), domain.Absent}
		got := Interpolate(in)
		assert.Equal(t, domain.Absent, got[0])
		assert.Equal(t, domain.Some(4.0), got[2])
		assert.Equal(t, domain.Absent, got[4])
	})

	t.Run("does not mutate its input", func(t *testing.T) {
		in := []domain.Float{domain.Some(2), domain.Absent, domain.Some(4)}
		_ = Interpolate(in)
		assert.Equal(t, domain.Absent, in[1])
	})
}

func TestExtrapolate(t *testing.T) {
	t.Run("holds nearest value at both edges", func(t *testing.T) {
		in := []domain.Float{domain.Absent, domain.Some(3), domain.Some(5), domain.Absent, domain.Absent}
		got := Extrapolate(in)
		assert.Equal(t, []domain.Float{
			domain.Some(3), domain.Some(3), domain.Some(5), domain.Some(5), domain.Some(5),
		}, got)
	})

	t.Run("single known value copies to all years", func(t *testing.T) {
		in := []domain.Float{domain.Absent, domain.Absent, domain.Some(7), domain.Absent}
		got := Extrapolate(in)
		for _, v := range got {
			assert.Equal(t, domain.Some(7.0), v)
		}
	})

	t.Run("entirely absent series stays absent", func(t *testing.T) {
		in := []domain.Float{domain.Absent, domain.Absent}
		assert.Equal(t, in, Extrapolate(in))
	})
}

func TestFillSeries_NoOpOnCompleteSeries(t *testing.T) {
	in := []domain.Float{domain.Some(1), domain.Some(0), domain.Some(2)}
	assert.Equal(t, in, FillSeries(in))
}

func TestFillGaps(t *testing.T) {
	p := testPipeline(Options{})

	obs := []domain.Observation{
		{SiteID: "s1", SpeciesID: "sp1", Year: 2001, Count: domain.Some(2), Lat: -42, Lon: 147, Taxon: "fish", State: "TAS"},
		{SiteID: "s1", SpeciesID: "sp1", Year: 2003, Count: domain.Some(8), Lat: -42, Lon: 147, Taxon: "fish", State: "TAS"},
		{SiteID: "s2", SpeciesID: "sp1", Year: 2002, Count: domain.Some(4), Lat: -40, Lon: 145},
	}
	filled := p.fillGaps(2000, 2004, obs)

	// One row per pair per year, pairs in sorted order.
	require.Len(t, filled, 10)
	assert.Equal(t, "s1", filled[0].SiteID)
	assert.Equal(t, 2000, filled[0].Year)
	assert.Equal(t, "s2", filled[5].SiteID)

	// s1/sp1: lead hold 2, interpolated 5 at 2002, trail value 8.
	assert.Equal(t, domain.Some(2.0), filled[0].Count)
	assert.Equal(t, domain.Some(2.0), filled[1].Count)
	assert.Equal(t, domain.Some(5.0), filled[2].Count)
	assert.Equal(t, domain.Some(8.0), filled[3].Count)
	assert.Equal(t, domain.Some(8.0), filled[4].Count)

	// Metadata is carried onto synthesized rows.
	assert.Equal(t, "fish", filled[0].Taxon)
	assert.Equal(t, "TAS", filled[4].State)
	assert.Equal(t, -42, filled[2].Lat)

	// s2/sp1: single observation held across the range.
	for _, o := range filled[5:] {
		assert.Equal(t, domain.Some(4.0), o.Count)
	}
}

func TestFillGaps_EntirelyAbsentSeriesStaysAbsent(t *testing.T) {
	p := testPipeline(Options{})
	obs := []domain.Observation{
		{SiteID: "s1", SpeciesID: "sp1", Year: 2001, Count: domain.Absent},
	}
	filled := p.fillGaps(2000, 2002, obs)
	require.Len(t, filled, 3)
	for _, o := range filled {
		assert.False(t, o.Count.OK)
	}
}
