// Package sqlite persists result sets into a SQLite database file, one
// table per result table plus a run_info stamp. Each run replaces the
// previous contents.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/reefwatch/survey-trend-etl/internal/domain"
)

const schema = `
DROP TABLE IF EXISTS run_info;
DROP TABLE IF EXISTS population_trends;
DROP TABLE IF EXISTS significance;
DROP TABLE IF EXISTS trend_by_state_biogeography;
DROP TABLE IF EXISTS trend_by_state_taxon;
DROP TABLE IF EXISTS trend_by_latitude_band;

CREATE TABLE run_info (
	generated_at TEXT NOT NULL
);
CREATE TABLE population_trends (
	species_id                 TEXT NOT NULL PRIMARY KEY,
	slope                      REAL,
	change_ratio               REAL,
	total_nonzero_observations INTEGER NOT NULL
);
CREATE TABLE significance (
	species_id         TEXT NOT NULL PRIMARY KEY,
	rho                REAL NOT NULL,
	p_value            REAL NOT NULL,
	significance_level TEXT NOT NULL,
	direction          TEXT NOT NULL
);
CREATE TABLE trend_by_state_biogeography (
	state             TEXT NOT NULL,
	biogeography      TEXT NOT NULL,
	year              INTEGER NOT NULL,
	mean_standardized REAL,
	PRIMARY KEY (state, biogeography, year)
);
CREATE TABLE trend_by_state_taxon (
	state             TEXT NOT NULL,
	taxon             TEXT NOT NULL,
	year              INTEGER NOT NULL,
	mean_standardized REAL,
	PRIMARY KEY (state, taxon, year)
);
CREATE TABLE trend_by_latitude_band (
	latitude_band     REAL NOT NULL,
	biogeography      TEXT NOT NULL,
	year              INTEGER NOT NULL,
	mean_standardized REAL,
	PRIMARY KEY (latitude_band, biogeography, year)
);
`

// Store writes result sets into a SQLite database file.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens (or creates) the database at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Store replaces the result tables with the given set, atomically.
func (s *Store) Store(ctx context.Context, rs domain.ResultSet) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create result tables: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := insertAll(ctx, tx, rs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit results: %w", err)
	}

	s.logger.Info("sqlite results written",
		"trends", len(rs.Trends),
		"significance", len(rs.Significance))
	return nil
}

func insertAll(ctx context.Context, tx *sql.Tx, rs domain.ResultSet) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO run_info (generated_at) VALUES (?)`,
		rs.GeneratedAt.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("insert run_info: %w", err)
	}

	for _, t := range rs.Trends {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO population_trends (species_id, slope, change_ratio, total_nonzero_observations)
			 VALUES (?, ?, ?, ?)`,
			t.SpeciesID, nullable(t.Slope), nullable(t.ChangeRatio), t.TotalNonzero); err != nil {
			return fmt.Errorf("insert population_trends: %w", err)
		}
	}
	for _, g := range rs.Significance {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO significance (species_id, rho, p_value, significance_level, direction)
			 VALUES (?, ?, ?, ?, ?)`,
			g.SpeciesID, g.Rho, g.PValue, g.Level, g.Direction); err != nil {
			return fmt.Errorf("insert significance: %w", err)
		}
	}
	for _, r := range rs.RegionBiogeo {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO trend_by_state_biogeography (state, biogeography, year, mean_standardized)
			 VALUES (?, ?, ?, ?)`,
			r.State, r.Biogeography, r.Year, nullable(r.Mean)); err != nil {
			return fmt.Errorf("insert trend_by_state_biogeography: %w", err)
		}
	}
	for _, r := range rs.RegionTaxon {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO trend_by_state_taxon (state, taxon, year, mean_standardized)
			 VALUES (?, ?, ?, ?)`,
			r.State, r.Taxon, r.Year, nullable(r.Mean)); err != nil {
			return fmt.Errorf("insert trend_by_state_taxon: %w", err)
		}
	}
	for _, r := range rs.BandBiogeo {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO trend_by_latitude_band (latitude_band, biogeography, year, mean_standardized)
			 VALUES (?, ?, ?, ?)`,
			r.Band, r.Biogeography, r.Year, nullable(r.Mean)); err != nil {
			return fmt.Errorf("insert trend_by_latitude_band: %w", err)
		}
	}
	return nil
}

// nullable maps an absent statistic to SQL NULL.
func nullable(f domain.Float) any {
	if !f.OK {
		return nil
	}
	return f.V
}
