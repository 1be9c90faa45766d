// Package repository holds computed standings for the read API.
package repository

import (
	"context"
	"time"

	"github.com/pavelchuchma/vkct/internal/domain/diag"
	"github.com/pavelchuchma/vkct/internal/domain/model"
)

// RaceEntry is one race slot of a standings row.
type RaceEntry struct {
	Position       string `json:"position,omitempty"`
	Points         *int   `json:"points,omitempty"`
	AltPosition    string `json:"alt_position,omitempty"`
	AltPoints      *int   `json:"alt_points,omitempty"`
	Ignored        bool   `json:"ignored,omitempty"`
	Cumulative     *int   `json:"cumulative,omitempty"`
	CumulativeRank *int   `json:"cumulative_rank,omitempty"`
}

// Entry represents a standings row.
type Entry struct {
	Rank      int         `json:"rank"`
	Name      string      `json:"name"`
	Team      string      `json:"team,omitempty"`
	BirthYear string      `json:"birth_year,omitempty"`
	Total     int         `json:"total"`
	Races     []RaceEntry `json:"races"`
}

// Run describes the computation a snapshot came from.
type Run struct {
	ID          string                     `json:"run_id"`
	Season      int                        `json:"season"`
	Standings   []*model.CategoryStandings `json:"-"`
	Diagnostics []diag.Diagnostic          `json:"-"`
}

// Info summarizes the published snapshot.
type Info struct {
	RunID        string    `json:"run_id"`
	Season       int       `json:"season"`
	PublishedAt  time.Time `json:"published_at"`
	Categories   int       `json:"categories"`
	Participants int       `json:"participants"`
	Diagnostics  int       `json:"diagnostics"`
}

// Store provides read access to the last published standings.
type Store interface {
	// Publish replaces the held standings with those of run.
	Publish(ctx context.Context, run Run) error

	// Categories returns category names in configuration order.
	Categories(ctx context.Context) ([]string, error)

	// Standings returns up to limit rows of category in final order.
	Standings(ctx context.Context, category string, limit int) ([]Entry, error)

	// Rank returns the row of the participant named name. birthYear may be
	// empty when the name alone is unique in the category.
	Rank(ctx context.Context, category, name, birthYear string) (Entry, error)

	// Diagnostics returns diagnostics at or above min severity.
	Diagnostics(ctx context.Context, min diag.Severity) ([]diag.Diagnostic, error)

	// Info summarizes the published snapshot.
	Info(ctx context.Context) (Info, error)
}
