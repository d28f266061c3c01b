// Command genfixtures generates a seeded synthetic survey dataset for
// development and testing: the three CSV input files and, optionally, the
// expected result tables computed by the actual pipeline under a frozen
// clock, so downstream consumers can assert against reproducible output.
//
// Usage:
//
//	go run ./cmd/genfixtures -out testdata/fixtures -seed 7 -expected
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/reefwatch/survey-trend-etl/internal/adapter/csvfile"
	"github.com/reefwatch/survey-trend-etl/internal/domain"
	"github.com/reefwatch/survey-trend-etl/internal/observability"
	"github.com/reefwatch/survey-trend-etl/internal/pipeline"
)

var taxa = []string{"fish", "invertebrate", "algae"}

var biogeographies = []string{"temperate", "subtropical", "tropical"}

// stateFor assigns a coarse but stable state label by latitude.
func stateFor(lat float64) string {
	switch {
	case lat <= -40:
		return "TAS"
	case lat <= -36:
		return "VIC"
	case lat <= -32:
		return "NSW"
	default:
		return "QLD"
	}
}

type site struct {
	id        string
	lat, lon  float64
	protected bool
}

type species struct {
	id     string
	taxon  string
	bio    string
	growth float64 // multiplicative year-on-year trend
	level  float64 // baseline abundance
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "testdata/fixtures", "output directory")
	seed := flag.Int64("seed", 1, "random seed")
	nSites := flag.Int("sites", 12, "number of sites")
	nSpecies := flag.Int("species", 8, "number of species")
	yearStart := flag.Int("year-start", 1992, "first survey year")
	yearEnd := flag.Int("year-end", 2020, "last survey year")
	expected := flag.Bool("expected", false, "also write expected result tables")
	flag.Parse()

	if *yearStart >= *yearEnd {
		return fmt.Errorf("-year-start %d must be before -year-end %d", *yearStart, *yearEnd)
	}

	rng := rand.New(rand.NewSource(*seed))
	sites := genSites(rng, *nSites)
	specs := genSpecies(rng, *nSpecies)
	ds := genDataset(rng, sites, specs, *yearStart, *yearEnd)

	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}
	if err := writeInputs(*out, sites, specs, ds); err != nil {
		return err
	}
	log.Printf("wrote inputs: %d sites, %d species, years %d-%d, %d observations",
		len(sites), len(specs), *yearStart, *yearEnd, len(ds.Observations))

	if !*expected {
		return nil
	}
	return writeExpected(filepath.Join(*out, "expected"), ds)
}

func genSites(rng *rand.Rand, n int) []site {
	sites := make([]site, n)
	for i := range sites {
		sites[i] = site{
			id:        fmt.Sprintf("site-%03d", i+1),
			lat:       -44 + rng.Float64()*16, // -44 .. -28
			lon:       113 + rng.Float64()*40,
			protected: rng.Float64() < 0.3,
		}
	}
	return sites
}

func genSpecies(rng *rand.Rand, n int) []species {
	specs := make([]species, n)
	for i := range specs {
		specs[i] = species{
			id:     fmt.Sprintf("species-%03d", i+1),
			taxon:  taxa[rng.Intn(len(taxa))],
			bio:    biogeographies[rng.Intn(len(biogeographies))],
			growth: 0.97 + rng.Float64()*0.08, // -3% .. +5% per year
			level:  math.Exp(1 + rng.Float64()*3),
		}
	}
	return specs
}

// genDataset simulates counts with per-species trends, multiplicative
// noise, occasional zeros, and ~12% missing surveys.
func genDataset(rng *rand.Rand, sites []site, specs []species, yearStart, yearEnd int) domain.Dataset {
	var obs []domain.Observation
	traits := make([]domain.SpeciesTrait, 0, len(specs))
	states := make([]domain.SiteState, 0, len(sites))

	for _, sp := range specs {
		traits = append(traits, domain.SpeciesTrait{SpeciesID: sp.id, Biogeography: sp.bio})
	}
	for _, st := range sites {
		states = append(states, domain.SiteState{SiteID: st.id, State: stateFor(st.lat)})
	}

	for _, st := range sites {
		for _, sp := range specs {
			// Not every species occurs at every site.
			if rng.Float64() < 0.25 {
				continue
			}
			siteLevel := sp.level * math.Exp(rng.NormFloat64()*0.5)
			for year := yearStart; year <= yearEnd; year++ {
				o := domain.Observation{
					SiteID:    st.id,
					SpeciesID: sp.id,
					Year:      year,
					Lat:       domain.RoundDegree(st.lat),
					Lon:       domain.RoundDegree(st.lon),
					Protected: st.protected,
					Taxon:     sp.taxon,
					Region:    sp.bio,
					State:     stateFor(st.lat),
				}
				if rng.Float64() < 0.12 {
					o.Count = domain.Absent // survey not done that year
				} else {
					mean := siteLevel * math.Pow(sp.growth, float64(year-yearStart))
					v := math.Round(mean * math.Exp(rng.NormFloat64()*0.4))
					if rng.Float64() < 0.05 {
						v = 0
					}
					o.Count = domain.Some(v)
				}
				obs = append(obs, o)
			}
		}
	}

	return domain.Dataset{
		YearStart:    yearStart,
		YearEnd:      yearEnd,
		Observations: obs,
		Reference:    domain.NewReference(traits, states),
	}
}

func writeInputs(dir string, sites []site, specs []species, ds domain.Dataset) error {
	counts := [][]string{countsHeader(ds.YearStart, ds.YearEnd)}
	counts = append(counts, countsRows(ds)...)
	if err := writeCSV(filepath.Join(dir, "counts.csv"), counts); err != nil {
		return err
	}

	traits := [][]string{{"species_id", "biogeography"}}
	for _, sp := range specs {
		traits = append(traits, []string{sp.id, sp.bio})
	}
	if err := writeCSV(filepath.Join(dir, "species_traits.csv"), traits); err != nil {
		return err
	}

	states := [][]string{{"site_id", "state"}}
	for _, st := range sites {
		states = append(states, []string{st.id, stateFor(st.lat)})
	}
	return writeCSV(filepath.Join(dir, "site_states.csv"), states)
}

func countsHeader(yearStart, yearEnd int) []string {
	header := []string{
		"site_id", "species_id", "latitude", "longitude",
		"protected", "taxon", "region_category", "state",
	}
	for y := yearStart; y <= yearEnd; y++ {
		header = append(header, strconv.Itoa(y))
	}
	return header
}

// countsRows folds the long-format observations back into the wide matrix,
// one row per (site, species) pair in input order.
func countsRows(ds domain.Dataset) [][]string {
	years := ds.YearEnd - ds.YearStart + 1
	var rows [][]string
	index := map[domain.SeriesKey]int{}

	for _, o := range ds.Observations {
		i, ok := index[o.Key()]
		if !ok {
			row := make([]string, 8+years)
			row[0] = o.SiteID
			row[1] = o.SpeciesID
			row[2] = strconv.Itoa(o.Lat)
			row[3] = strconv.Itoa(o.Lon)
			row[4] = strconv.FormatBool(o.Protected)
			row[5] = o.Taxon
			row[6] = o.Region
			row[7] = o.State
			rows = append(rows, row)
			i = len(rows) - 1
			index[o.Key()] = i
		}
		if o.Count.OK {
			rows[i][8+o.Year-ds.YearStart] = strconv.FormatFloat(o.Count.V, 'g', -1, 64)
		}
	}
	return rows
}

// writeExpected runs the real pipeline under a frozen clock and stores the
// result tables, so fixtures are reproducible across runs.
func writeExpected(dir string, ds domain.Dataset) error {
	pipeline.SetClock(clockwork.NewFakeClockAt(
		time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	))
	defer pipeline.SetClock(nil)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	p := pipeline.New(nil, nil, pipeline.Options{
		Window:       pipeline.Window{Start: ds.YearStart + (ds.YearEnd-ds.YearStart)/2, End: ds.YearEnd},
		PeriodYears:  3,
		BaselineYear: ds.YearStart + (ds.YearEnd-ds.YearStart)/2,
		Bands:        pipeline.BandConfig{Min: -45, Max: 0, Width: 5},
	}, logger, observability.NewMetricsForTesting())

	rs := p.Transform(ds)
	if err := csvfile.NewWriter(dir, logger).Store(context.Background(), rs); err != nil {
		return err
	}
	log.Printf("wrote expected results: %d trends, %d significance rows", len(rs.Trends), len(rs.Significance))
	return nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
