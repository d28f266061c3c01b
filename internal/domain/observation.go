package domain

import "math"

// Observation is one (site, species, year) survey row after ingestion.
// Count is absent for years the site was not surveyed.
type Observation struct {
	SiteID    string
	SpeciesID string
	Year      int
	Count     Float

	// Site metadata, constant across a (site, species) series.
	Lat       int // degrees, rounded once at ingestion
	Lon       int
	Protected bool
	Taxon     string
	Region    string // coarse region category from the survey sheet
	State     string // raw state label from the survey sheet
}

// SeriesKey identifies one (site, species) time series.
type SeriesKey struct {
	SiteID    string
	SpeciesID string
}

// Key returns the observation's series key.
func (o Observation) Key() SeriesKey {
	return SeriesKey{SiteID: o.SiteID, SpeciesID: o.SpeciesID}
}

// GridCell is the spatial aggregation unit: coordinates rounded to whole degrees.
type GridCell struct {
	Lat int
	Lon int
}

// Cell returns the grid cell the observation's site falls into.
func (o Observation) Cell() GridCell {
	return GridCell{Lat: o.Lat, Lon: o.Lon}
}

// RoundDegree rounds a coordinate to its grid degree, half away from zero.
func RoundDegree(v float64) int {
	return int(math.Round(v))
}

// SpeciesTrait is one row of the species reference table.
type SpeciesTrait struct {
	SpeciesID    string
	Biogeography string
}

// SiteState is one row of the site reference table, supplying a cleaned
// state label per site.
type SiteState struct {
	SiteID string
	State  string
}

// Reference bundles the read-only lookup tables. It is built once at
// ingestion and shared by value across all pipeline stages.
type Reference struct {
	Biogeography map[string]string // species_id -> biogeography category
	States       map[string]string // site_id -> cleaned state label
}

// NewReference indexes the reference rows for lookup.
func NewReference(traits []SpeciesTrait, states []SiteState) Reference {
	ref := Reference{
		Biogeography: make(map[string]string, len(traits)),
		States:       make(map[string]string, len(states)),
	}
	for _, t := range traits {
		ref.Biogeography[t.SpeciesID] = t.Biogeography
	}
	for _, s := range states {
		ref.States[s.SiteID] = s.State
	}
	return ref
}

// Dataset is the validated long-format input to the pipeline: one observation
// per (site, species, year) over the contiguous [YearStart, YearEnd] range,
// plus the reference tables.
type Dataset struct {
	YearStart    int
	YearEnd      int
	Observations []Observation
	Reference    Reference
}

// Years returns the number of years in the dataset's range.
func (d Dataset) Years() int {
	return d.YearEnd - d.YearStart + 1
}
