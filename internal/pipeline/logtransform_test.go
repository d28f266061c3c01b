package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reefwatch/survey-trend-etl/internal/domain"
)

func TestLogSafe(t *testing.T) {
	t.Run("nonzero value logs directly", func(t *testing.T) {
		got := logSafe(domain.Some(10), 5, true)
		assert.Equal(t, domain.Some(math.Log(10)), got)
	})

	t.Run("zero substitutes half the group floor", func(t *testing.T) {
		got := logSafe(domain.Some(0), 5, true)
		assert.Equal(t, domain.Some(math.Log(2.5)), got)
	})

	t.Run("zero without a floor is absent", func(t *testing.T) {
		assert.Equal(t, domain.Absent, logSafe(domain.Some(0), 0, false))
	})

	t.Run("absent input stays absent", func(t *testing.T) {
		assert.Equal(t, domain.Absent, logSafe(domain.Absent, 5, true))
	})
}

func TestMinNonzeroBySpecies(t *testing.T) {
	obs := []domain.Observation{
		{SiteID: "s1", SpeciesID: "sp1", Year: 2008, Count: domain.Some(5)},
		{SiteID: "s2", SpeciesID: "sp1", Year: 2008, Count: domain.Some(12)},
		{SiteID: "s1", SpeciesID: "sp1", Year: 2009, Count: domain.Some(0)},
		{SiteID: "s1", SpeciesID: "sp2", Year: 2008, Count: domain.Some(0)},
		{SiteID: "s1", SpeciesID: "sp3", Year: 2008, Count: domain.Absent},
	}
	floors := minNonzeroBySpecies(obs)

	assert.Equal(t, 5.0, floors["sp1"])
	_, ok := floors["sp2"]
	assert.False(t, ok, "all-zero species has no floor")
	_, ok = floors["sp3"]
	assert.False(t, ok, "all-absent species has no floor")
}

func TestMinNonzeroByPair_DoesNotLeakAcrossPairs(t *testing.T) {
	obs := []domain.Observation{
		{SiteID: "s1", SpeciesID: "sp1", Year: 2008, Count: domain.Some(2)},
		{SiteID: "s2", SpeciesID: "sp1", Year: 2008, Count: domain.Some(9)},
		{SiteID: "s3", SpeciesID: "sp1", Year: 2008, Count: domain.Some(0)},
	}
	floors := minNonzeroByPair(obs)

	assert.Equal(t, 2.0, floors[domain.SeriesKey{SiteID: "s1", SpeciesID: "sp1"}])
	assert.Equal(t, 9.0, floors[domain.SeriesKey{SiteID: "s2", SpeciesID: "sp1"}])
	_, ok := floors[domain.SeriesKey{SiteID: "s3", SpeciesID: "sp1"}]
	assert.False(t, ok)
}

// The end-to-end logging property: a zero at one site uses the species-wide
// floor, even when that floor comes from another site.
func TestLogBySpecies(t *testing.T) {
	obs := []domain.Observation{
		{SiteID: "s1", SpeciesID: "sp1", Year: 2008, Count: domain.Some(0)},
		{SiteID: "s1", SpeciesID: "sp1", Year: 2009, Count: domain.Some(10)},
		{SiteID: "s1", SpeciesID: "sp1", Year: 2010, Count: domain.Some(20)},
		{SiteID: "s2", SpeciesID: "sp1", Year: 2008, Count: domain.Some(5)},
	}
	got := logBySpecies(obs)
	require.Len(t, got, 4)

	assert.Equal(t, domain.Some(math.Log(2.5)), got[0].Count)
	assert.Equal(t, domain.Some(math.Log(10)), got[1].Count)
	assert.Equal(t, domain.Some(math.Log(20)), got[2].Count)
	assert.Equal(t, domain.Some(math.Log(5)), got[3].Count)
}

func TestLogBySpecies_FloorsIndependentPerSpecies(t *testing.T) {
	obs := []domain.Observation{
		{SiteID: "s1", SpeciesID: "sp1", Year: 2008, Count: domain.Some(0)},
		{SiteID: "s1", SpeciesID: "sp1", Year: 2009, Count: domain.Some(4)},
		{SiteID: "s1", SpeciesID: "sp2", Year: 2008, Count: domain.Some(0)},
		{SiteID: "s1", SpeciesID: "sp2", Year: 2009, Count: domain.Some(100)},
	}
	got := logBySpecies(obs)

	assert.Equal(t, domain.Some(math.Log(2)), got[0].Count)
	assert.Equal(t, domain.Some(math.Log(50)), got[2].Count)
}
