package domain

import (
	"errors"
	"fmt"
)

// SchemaError reports a fatal input-validation failure. It names the table
// and the column or structure that failed, so the operator can fix the file
// rather than chase a downstream symptom.
type SchemaError struct {
	Table  string
	Detail string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("malformed input: table %q: %s", e.Table, e.Detail)
}

// NewSchemaError builds a SchemaError with a formatted detail message.
func NewSchemaError(table, format string, args ...any) error {
	return &SchemaError{Table: table, Detail: fmt.Sprintf(format, args...)}
}

// IsSchemaError reports whether err is (or wraps) a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// Validate checks the structural invariants every pipeline stage assumes:
// a sane contiguous year range, every observation inside it, and at most one
// observation per (site, species, year). Violations are fatal; the pipeline
// must not start on an invalid dataset.
func (d Dataset) Validate() error {
	const table = "observations"

	if d.YearStart > d.YearEnd {
		return NewSchemaError(table, "year range %d-%d is inverted", d.YearStart, d.YearEnd)
	}
	if len(d.Observations) == 0 {
		return NewSchemaError(table, "no observations")
	}

	type cellKey struct {
		key  SeriesKey
		year int
	}
	seen := make(map[cellKey]struct{}, len(d.Observations))
	for _, o := range d.Observations {
		if o.SiteID == "" {
			return NewSchemaError(table, "observation with empty site_id")
		}
		if o.SpeciesID == "" {
			return NewSchemaError(table, "observation with empty species_id")
		}
		if o.Year < d.YearStart || o.Year > d.YearEnd {
			return NewSchemaError(table, "site %s species %s: year %d outside range %d-%d",
				o.SiteID, o.SpeciesID, o.Year, d.YearStart, d.YearEnd)
		}
		ck := cellKey{key: o.Key(), year: o.Year}
		if _, dup := seen[ck]; dup {
			return NewSchemaError(table, "duplicate row for site %s species %s year %d",
				o.SiteID, o.SpeciesID, o.Year)
		}
		seen[ck] = struct{}{}
	}
	return nil
}
