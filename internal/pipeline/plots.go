package pipeline

import (
	"cmp"
	"strings"

	"github.com/reefwatch/survey-trend-etl/internal/domain"
)

type stateBioYear struct {
	state string
	bio   string
	year  int
}

type stateTaxonYear struct {
	state string
	taxon string
	year  int
}

type bandBioYear struct {
	band float64
	bio  string
	year int
}

func cmpStateBioYear(a, b stateBioYear) int {
	if c := strings.Compare(a.state, b.state); c != 0 {
		return c
	}
	if c := strings.Compare(a.bio, b.bio); c != 0 {
		return c
	}
	return cmp.Compare(a.year, b.year)
}

func cmpStateTaxonYear(a, b stateTaxonYear) int {
	if c := strings.Compare(a.state, b.state); c != 0 {
		return c
	}
	if c := strings.Compare(a.taxon, b.taxon); c != 0 {
		return c
	}
	return cmp.Compare(a.year, b.year)
}

func cmpBandBioYear(a, b bandBioYear) int {
	if c := cmp.Compare(a.band, b.band); c != 0 {
		return c
	}
	if c := strings.Compare(a.bio, b.bio); c != 0 {
		return c
	}
	return cmp.Compare(a.year, b.year)
}

// plotRow is one standardized observation joined with its reference lookups.
type plotRow struct {
	obs      domain.Observation
	bio      string
	state    string
	hasState bool
	band     float64
	hasBand  bool
}

// joinReference attaches biogeography, cleaned state and latitude band to
// each windowed standardized observation. Species missing from the trait
// table are dropped here, excluding them from every table downstream of the
// join. Missing state or band only excludes the row from the tables keyed by
// that attribute.
func (p *Pipeline) joinReference(std []domain.Observation, ref domain.Reference, w Window) []plotRow {
	rows := make([]plotRow, 0, len(std))
	for _, o := range std {
		if !w.Contains(o.Year) {
			continue
		}
		bio, ok := ref.Biogeography[o.SpeciesID]
		if !ok {
			continue
		}
		r := plotRow{obs: o, bio: bio}
		r.state, r.hasState = ref.States[o.SiteID]
		r.band, r.hasBand = p.opts.Bands.Band(float64(o.Lat))
		rows = append(rows, r)
	}
	return rows
}

// plotTables aggregates baseline-standardized observations into the three
// plotting-ready trend tables.
func (p *Pipeline) plotTables(std []domain.Observation, ref domain.Reference, w Window) (
	[]domain.RegionBiogeographyRow,
	[]domain.RegionTaxonRow,
	[]domain.BandBiogeographyRow,
) {
	rows := p.joinReference(std, ref, w)

	withState := rows[:0:0]
	withBand := rows[:0:0]
	for _, r := range rows {
		if r.hasState {
			withState = append(withState, r)
		}
		if r.hasBand {
			withBand = append(withBand, r)
		}
	}

	regionBio := MeanBy(withState,
		func(r plotRow) stateBioYear {
			return stateBioYear{state: r.state, bio: r.bio, year: r.obs.Year}
		},
		func(r plotRow) domain.Float { return r.obs.Count },
		cmpStateBioYear,
	)
	regionTaxon := MeanBy(withState,
		func(r plotRow) stateTaxonYear {
			return stateTaxonYear{state: r.state, taxon: r.obs.Taxon, year: r.obs.Year}
		},
		func(r plotRow) domain.Float { return r.obs.Count },
		cmpStateTaxonYear,
	)
	bandBio := MeanBy(withBand,
		func(r plotRow) bandBioYear {
			return bandBioYear{band: r.band, bio: r.bio, year: r.obs.Year}
		},
		func(r plotRow) domain.Float { return r.obs.Count },
		cmpBandBioYear,
	)

	out1 := make([]domain.RegionBiogeographyRow, len(regionBio))
	for i, a := range regionBio {
		out1[i] = domain.RegionBiogeographyRow{
			State:        a.Key.state,
			Biogeography: a.Key.bio,
			Year:         a.Key.year,
			Mean:         a.Mean.Finite(),
		}
	}
	out2 := make([]domain.RegionTaxonRow, len(regionTaxon))
	for i, a := range regionTaxon {
		out2[i] = domain.RegionTaxonRow{
			State: a.Key.state,
			Taxon: a.Key.taxon,
			Year:  a.Key.year,
			Mean:  a.Mean.Finite(),
		}
	}
	out3 := make([]domain.BandBiogeographyRow, len(bandBio))
	for i, a := range bandBio {
		out3[i] = domain.BandBiogeographyRow{
			Band:         a.Key.band,
			Biogeography: a.Key.bio,
			Year:         a.Key.year,
			Mean:         a.Mean.Finite(),
		}
	}
	return out1, out2, out3
}
