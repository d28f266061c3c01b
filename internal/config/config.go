package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Input: either the three CSV files or a single XLSX workbook.
	InputCounts   string
	InputTraits   string
	InputSites    string
	InputWorkbook string

	// Output: CSV directory always, SQLite database when set.
	OutputDir string
	OutputDB  string

	// Statistical parameters.
	YearStart    int
	YearEnd      int
	WindowStart  int
	BaselineYear int
	PeriodYears  int
	BandMin      float64
	BandMax      float64
	BandWidth    float64
	Protection   string // "", "protected" or "unprotected"

	HTTPAddr  string // empty disables the metrics listener
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables, applying defaults
// where unset. Errors name the offending variable.
func Load() (*Config, error) {
	cfg := &Config{
		InputCounts:   os.Getenv("INPUT_COUNTS"),
		InputTraits:   os.Getenv("INPUT_TRAITS"),
		InputSites:    os.Getenv("INPUT_SITES"),
		InputWorkbook: os.Getenv("INPUT_WORKBOOK"),
		OutputDir:     envOrDefault("OUTPUT_DIR", "out"),
		OutputDB:      os.Getenv("OUTPUT_DB"),
		Protection:    os.Getenv("PROTECTION_FILTER"),
		HTTPAddr:      os.Getenv("HTTP_ADDR"),
		LogLevel:      envOrDefault("LOG_LEVEL", "info"),
		LogFormat:     envOrDefault("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.YearStart, err = intEnv("YEAR_START", 1992); err != nil {
		return nil, err
	}
	if cfg.YearEnd, err = intEnv("YEAR_END", 2020); err != nil {
		return nil, err
	}
	if cfg.WindowStart, err = intEnv("WINDOW_START", 2008); err != nil {
		return nil, err
	}
	if cfg.BaselineYear, err = intEnv("BASELINE_YEAR", 2008); err != nil {
		return nil, err
	}
	if cfg.PeriodYears, err = intEnv("PERIOD_YEARS", 3); err != nil {
		return nil, err
	}
	if cfg.BandMin, err = floatEnv("BAND_MIN", -45); err != nil {
		return nil, err
	}
	if cfg.BandMax, err = floatEnv("BAND_MAX", 0); err != nil {
		return nil, err
	}
	if cfg.BandWidth, err = floatEnv("BAND_WIDTH", 5); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	csvIn := c.InputCounts != "" || c.InputTraits != "" || c.InputSites != ""
	if csvIn && c.InputWorkbook != "" {
		return errors.New("INPUT_WORKBOOK and INPUT_COUNTS/INPUT_TRAITS/INPUT_SITES are mutually exclusive")
	}
	if !csvIn && c.InputWorkbook == "" {
		return errors.New("either INPUT_WORKBOOK or INPUT_COUNTS, INPUT_TRAITS and INPUT_SITES are required")
	}
	if csvIn && (c.InputCounts == "" || c.InputTraits == "" || c.InputSites == "") {
		return errors.New("CSV input needs all of INPUT_COUNTS, INPUT_TRAITS and INPUT_SITES")
	}

	if c.YearStart > c.YearEnd {
		return fmt.Errorf("YEAR_START %d is after YEAR_END %d", c.YearStart, c.YearEnd)
	}
	if c.WindowStart < c.YearStart || c.WindowStart > c.YearEnd {
		return fmt.Errorf("WINDOW_START %d outside year range %d-%d", c.WindowStart, c.YearStart, c.YearEnd)
	}
	if c.BaselineYear < c.YearStart || c.BaselineYear > c.YearEnd {
		return fmt.Errorf("BASELINE_YEAR %d outside year range %d-%d", c.BaselineYear, c.YearStart, c.YearEnd)
	}
	if c.PeriodYears < 1 {
		return errors.New("PERIOD_YEARS must be at least 1")
	}
	if c.BandWidth <= 0 {
		return errors.New("BAND_WIDTH must be positive")
	}
	if c.BandMin >= c.BandMax {
		return fmt.Errorf("BAND_MIN %g must be below BAND_MAX %g", c.BandMin, c.BandMax)
	}
	switch c.Protection {
	case "", "protected", "unprotected":
	default:
		return fmt.Errorf("PROTECTION_FILTER %q must be empty, \"protected\" or \"unprotected\"", c.Protection)
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func floatEnv(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}
