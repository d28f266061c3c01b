package domain

import "time"

// TrendResult is one row of the population-trend table. Slope and ChangeRatio
// are absent when the species lacks the data to compute them.
type TrendResult struct {
	SpeciesID    string
	Slope        Float // OLS slope of logged mean count against year, reporting window
	ChangeRatio  Float // second-period mean / first-period mean, unlogged
	TotalNonzero int   // nonzero raw counts across the whole dataset
}

// SignificanceResult is one row of the significance table. Only species with
// more than five valid windowed values are tested at all.
type SignificanceResult struct {
	SpeciesID string
	Rho       float64
	PValue    float64
	Level     string // "", "*", "**" or "***"
	Direction string // "", "up" or "down"
}

// RegionBiogeographyRow is one row of the (state, biogeography, year) trend table.
type RegionBiogeographyRow struct {
	State        string
	Biogeography string
	Year         int
	Mean         Float
}

// RegionTaxonRow is one row of the (state, taxon, year) trend table.
type RegionTaxonRow struct {
	State string
	Taxon string
	Year  int
	Mean  Float
}

// BandBiogeographyRow is one row of the (latitude band, biogeography, year)
// trend table. Band is the lower edge of the site's latitude band in degrees.
type BandBiogeographyRow struct {
	Band         float64
	Biogeography string
	Year         int
	Mean         Float
}

// ResultSet is the complete pipeline output handed to the store layer.
type ResultSet struct {
	Trends       []TrendResult
	Significance []SignificanceResult
	RegionBiogeo []RegionBiogeographyRow
	RegionTaxon  []RegionTaxonRow
	BandBiogeo   []BandBiogeographyRow
	GeneratedAt  time.Time
}
