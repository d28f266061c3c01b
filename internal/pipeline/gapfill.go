package pipeline

import (
	"slices"
	"strings"

	"github.com/reefwatch/survey-trend-etl/internal/domain"
)

// Interpolate fills absent values that lie strictly between two present
// values with the linear interpolation of the nearest present neighbours.
// A run of consecutive absences is filled across the whole run. Leading and
// trailing absences are left untouched.
func Interpolate(series []domain.Float) []domain.Float {
	out := slices.Clone(series)
	prev := -1 // index of the last present value
	for i, v := range out {
		if !v.OK {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			a, b := out[prev].V, v.V
			span := float64(i - prev)
			for j := prev + 1; j < i; j++ {
				out[j] = domain.Some(a + (b-a)*float64(j-prev)/span)
			}
		}
		prev = i
	}
	return out
}

// Extrapolate fills leading and trailing absences by holding the nearest
// present value; it is a nearest-value hold, not a statistical forecast.
// Interior gaps are expected to be interpolated already. A series with no
// present value at all is returned unchanged.
func Extrapolate(series []domain.Float) []domain.Float {
	out := slices.Clone(series)
	first, last := -1, -1
	for i, v := range out {
		if v.OK {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return out
	}
	for i := 0; i < first; i++ {
		out[i] = out[first]
	}
	for i := last + 1; i < len(out); i++ {
		out[i] = out[last]
	}
	return out
}

// FillSeries runs interpolation then edge extrapolation over one series.
func FillSeries(series []domain.Float) []domain.Float {
	return Extrapolate(Interpolate(series))
}

// seriesMeta carries the per-pair site metadata through the series rebuild.
type seriesMeta struct {
	lat       int
	lon       int
	protected bool
	taxon     string
	region    string
	state     string
}

// fillGaps rebuilds every (site, species) series on the full contiguous year
// grid and gap-fills it. The output holds exactly one observation per pair
// per year; a pair whose series has no known value at all keeps absent counts
// for every year.
func (p *Pipeline) fillGaps(yearStart, yearEnd int, obs []domain.Observation) []domain.Observation {
	years := yearEnd - yearStart + 1

	series := make(map[domain.SeriesKey][]domain.Float)
	meta := make(map[domain.SeriesKey]seriesMeta)
	keys := make([]domain.SeriesKey, 0)
	for _, o := range obs {
		k := o.Key()
		if _, seen := series[k]; !seen {
			series[k] = make([]domain.Float, years)
			meta[k] = seriesMeta{
				lat:       o.Lat,
				lon:       o.Lon,
				protected: o.Protected,
				taxon:     o.Taxon,
				region:    o.Region,
				state:     o.State,
			}
			keys = append(keys, k)
		}
		series[k][o.Year-yearStart] = o.Count
	}
	slices.SortFunc(keys, cmpSeriesKey)

	filled := make([]domain.Observation, 0, len(keys)*years)
	for _, k := range keys {
		raw := series[k]
		interp := Interpolate(raw)
		full := Extrapolate(interp)
		if p.metrics != nil {
			p.metrics.SeriesFilled.Inc()
			for i := range raw {
				switch {
				case raw[i].OK:
				case interp[i].OK:
					p.metrics.ValuesInterpolated.Inc()
				case full[i].OK:
					p.metrics.ValuesExtrapolated.Inc()
				}
			}
		}
		m := meta[k]
		for i, v := range full {
			filled = append(filled, domain.Observation{
				SiteID:    k.SiteID,
				SpeciesID: k.SpeciesID,
				Year:      yearStart + i,
				Count:     v,
				Lat:       m.lat,
				Lon:       m.lon,
				Protected: m.protected,
				Taxon:     m.taxon,
				Region:    m.region,
				State:     m.state,
			})
		}
	}
	return filled
}

func cmpSeriesKey(a, b domain.SeriesKey) int {
	if c := strings.Compare(a.SiteID, b.SiteID); c != 0 {
		return c
	}
	return strings.Compare(a.SpeciesID, b.SpeciesID)
}
