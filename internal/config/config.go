// Package config defines the configuration of the series tools.
//
// Conventions:
// - New(ctx) returns a Config holding every default.
// - Load(ctx) layers a YAML file and VKCT_ environment variables on top.
// - Errors are wrapped around this package's sentinels.
package config

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config contains process configuration.
type Config struct {
	LogLevel  string `koanf:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr is the listen address of the read API.
	Addr string `koanf:"addr" validate:"required"`

	// Series is the config workbook (.xlsx) or YAML series file.
	Series string `koanf:"series"`
	// FirstNames is the first-name dictionary file.
	FirstNames string `koanf:"first_names"`
	// Template is the results template workbook.
	Template string `koanf:"template"`
	// Output is the results workbook path. Empty means vysledky<year>.xlsx.
	Output string `koanf:"output"`
	// History lists result workbooks of previous seasons.
	History []string `koanf:"history"`

	WorkerCount int `koanf:"worker_count" validate:"min=0"`

	CategoryThreshold float64 `koanf:"category_threshold" validate:"gt=0,lte=1"`
	HistoryThreshold  float64 `koanf:"history_threshold" validate:"gt=0,lte=1"`
	MaxYearGap        int     `koanf:"max_year_gap" validate:"min=0"`

	Honorifics             []string `koanf:"honorifics"`
	UnknownBirthYearTokens []string `koanf:"unknown_birth_year_tokens"`

	MaxStandingsLimit int `koanf:"max_standings_limit" validate:"min=1"`

	// Watch recomputes the served standings when input workbooks change.
	Watch          bool          `koanf:"watch"`
	WatchDebounce  time.Duration `koanf:"watch_debounce" validate:"min=0"`
	RefreshTimeout time.Duration `koanf:"refresh_timeout" validate:"min=0"`

	MetricsNamespace string `koanf:"metrics_namespace" validate:"required"`
}

// New creates a Config with defaults. Context is accepted first by
// convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		WorkerCount:       runtime.NumCPU(),
		CategoryThreshold: 0.8,
		HistoryThreshold:  0.9,
		MaxYearGap:        5,
		MaxStandingsLimit: 100,
		WatchDebounce:     2 * time.Second,
		RefreshTimeout:    5 * time.Minute,
		MetricsNamespace:  "vkct",
	}
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// OutputPath returns the results workbook path for season year.
func (c *Config) OutputPath(year int) string {
	if c.Output != "" {
		return c.Output
	}
	return fmt.Sprintf("vysledky%d.xlsx", year)
}
