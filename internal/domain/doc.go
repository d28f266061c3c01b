// Package domain models longitudinal ecological survey data and the result
// tables derived from it.
//
// # Data Source
//
// Surveys record, per site visit, the number of individuals counted for each
// species on a fixed transect. The field teams deliver a wide-format matrix
// with one row per (site, species) pair, a handful of metadata columns, and
// one column per survey year. Not every site is surveyed every year, so the
// per-year cells are sparse; the pipeline gap-fills each series before any
// statistic is computed.
//
// # Survey Data Conventions
//
// Year range:
//
//	A contiguous, configured span (by default 1992-2020). Every series holds
//	exactly one optional count per year in range. Non-contiguous year columns
//	in the input are a fatal schema error, never silently reindexed.
//
// Grid cells:
//
//	Site coordinates are rounded to whole degrees once, at ingestion, and the
//	unrounded values are discarded. The rounded (lat, lon) pair is the spatial
//	aggregation unit; several sites commonly share a cell.
//
// Zero counts under logarithm:
//
//	Counts are log-transformed for trend fitting. A zero count is replaced by
//	log(floor/2), where floor is the minimum nonzero count of the reference
//	group (the species, or the (species, site) pair, depending on the chain).
//	A group with no nonzero count has no floor and its zeros stay absent.
//
// Absent values:
//
//	Absence is explicit (the [Float] type), never encoded as zero, NaN, or an
//	infinity. A statistic that cannot be computed (empty group, missing floor,
//	degenerate fit) is absent in the output tables; it never halts the run.
//
// Reference tables:
//
//	Species biogeography and cleaned site-state labels come from two small
//	lookup tables. A species or site missing from a reference table is
//	silently dropped from every aggregate downstream of that join.
//
// # Result Tables
//
// Five tables leave the pipeline: per-species trend slopes with change ratios
// ([TrendResult]), Spearman significance classifications
// ([SignificanceResult]), and three plotting-ready aggregates of standardized
// log counts keyed by (state, biogeography, year), (state, taxon, year) and
// (latitude band, biogeography, year).
package domain
