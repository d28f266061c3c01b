// Command validate checks survey input files offline, without running the
// pipeline: schema (required columns, contiguous year columns, well-formed
// cells), dataset consistency (year range, duplicates), and reference
// coverage (every species and site in the counts matrix has a reference row).
//
// Usage:
//
//	go run ./cmd/validate -counts counts.csv -traits traits.csv -sites sites.csv
//	go run ./cmd/validate -workbook survey.xlsx
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/reefwatch/survey-trend-etl/internal/adapter/csvfile"
	"github.com/reefwatch/survey-trend-etl/internal/adapter/xlsx"
	"github.com/reefwatch/survey-trend-etl/internal/domain"
	"github.com/reefwatch/survey-trend-etl/internal/pipeline"
)

func main() {
	counts := flag.String("counts", "", "wide counts CSV")
	traits := flag.String("traits", "", "species traits CSV")
	sites := flag.String("sites", "", "site states CSV")
	workbook := flag.String("workbook", "", "XLSX workbook holding all three tables")
	flag.Parse()

	csvIn := *counts != "" || *traits != "" || *sites != ""
	if csvIn == (*workbook != "") {
		flag.Usage()
		os.Exit(2)
	}
	if csvIn && (*counts == "" || *traits == "" || *sites == "") {
		fmt.Fprintln(os.Stderr, "CSV input needs all of -counts, -traits and -sites")
		os.Exit(2)
	}

	if code := run(*counts, *traits, *sites, *workbook); code != 0 {
		os.Exit(code)
	}
}

func run(counts, traits, sites, workbook string) int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var loader pipeline.DatasetLoader
	if workbook != "" {
		loader = xlsx.NewReader(workbook, logger)
	} else {
		loader = csvfile.NewReader(counts, traits, sites, logger)
	}

	ds, err := loader.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		return 1
	}
	fmt.Printf("parsed: %d observations, years %d-%d, %d species traits, %d site states\n",
		len(ds.Observations), ds.YearStart, ds.YearEnd,
		len(ds.Reference.Biogeography), len(ds.Reference.States))

	if err := ds.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		return 1
	}

	warnings := referenceGaps(ds)
	for _, w := range warnings {
		fmt.Printf("warning: %s\n", w)
	}

	if len(warnings) > 0 {
		fmt.Printf("OK with %d warning(s): rows without reference data are dropped from the plot tables\n", len(warnings))
	} else {
		fmt.Println("OK")
	}
	return 0
}

// referenceGaps lists species and sites that appear in the counts matrix
// but have no reference row. These do not fail validation: the pipeline
// silently drops them from the aggregated plot tables.
func referenceGaps(ds domain.Dataset) []string {
	missingSpecies := map[string]bool{}
	missingSites := map[string]bool{}
	for _, o := range ds.Observations {
		if _, ok := ds.Reference.Biogeography[o.SpeciesID]; !ok {
			missingSpecies[o.SpeciesID] = true
		}
		if _, ok := ds.Reference.States[o.SiteID]; !ok {
			missingSites[o.SiteID] = true
		}
	}

	var warnings []string
	for _, id := range sortedKeys(missingSpecies) {
		warnings = append(warnings, fmt.Sprintf("species %q has no biogeography trait", id))
	}
	for _, id := range sortedKeys(missingSites) {
		warnings = append(warnings, fmt.Sprintf("site %q has no state assignment", id))
	}
	return warnings
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
