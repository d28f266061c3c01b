// Command trends runs the population-trend batch pipeline once: it loads
// the survey dataset from CSV files or an XLSX workbook, computes the five
// result tables, and writes them to the configured outputs.
//
// Configuration is environment-driven; see internal/config. The -summary
// flag additionally prints a per-species overview table to stdout.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/reefwatch/survey-trend-etl/internal/adapter/csvfile"
	httpadapter "github.com/reefwatch/survey-trend-etl/internal/adapter/http"
	"github.com/reefwatch/survey-trend-etl/internal/adapter/sqlite"
	"github.com/reefwatch/survey-trend-etl/internal/adapter/xlsx"
	"github.com/reefwatch/survey-trend-etl/internal/config"
	"github.com/reefwatch/survey-trend-etl/internal/domain"
	"github.com/reefwatch/survey-trend-etl/internal/observability"
	"github.com/reefwatch/survey-trend-etl/internal/pipeline"
	"github.com/reefwatch/survey-trend-etl/internal/render"
)

func main() {
	summary := flag.Bool("summary", false, "print a per-species summary table to stdout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	var loader pipeline.DatasetLoader
	if cfg.InputWorkbook != "" {
		loader = xlsx.NewReader(cfg.InputWorkbook, logger)
	} else {
		loader = csvfile.NewReader(cfg.InputCounts, cfg.InputTraits, cfg.InputSites, logger)
	}

	stores := []pipeline.ResultStore{csvfile.NewWriter(cfg.OutputDir, logger)}
	if cfg.OutputDB != "" {
		db, err := sqlite.New(cfg.OutputDB, logger)
		if err != nil {
			logger.Error("failed to open output database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		stores = append(stores, db)
	}

	var capture captureStore
	if *summary {
		stores = append(stores, &capture)
	}

	p := pipeline.New(loader, pipeline.MultiStore(stores...), pipeline.Options{
		Window:       pipeline.Window{Start: cfg.WindowStart, End: cfg.YearEnd},
		PeriodYears:  cfg.PeriodYears,
		BaselineYear: cfg.BaselineYear,
		Bands: pipeline.BandConfig{
			Min:   cfg.BandMin,
			Max:   cfg.BandMax,
			Width: cfg.BandWidth,
		},
		Protection: pipeline.Protection(cfg.Protection),
	}, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional metrics listener for orchestrators that scrape batch jobs.
	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, p, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	runErr := p.Run(ctx)
	if runErr != nil {
		logger.Error("pipeline failed", "error", runErr)
	} else if *summary {
		render.Summary(os.Stdout, capture.results)
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}

	if runErr != nil {
		os.Exit(1)
	}
}

// captureStore keeps the result set in memory for the -summary printout.
type captureStore struct {
	results domain.ResultSet
}

func (c *captureStore) Store(_ context.Context, rs domain.ResultSet) error {
	c.results = rs
	return nil
}
