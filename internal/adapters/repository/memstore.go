package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pavelchuchma/vkct/internal/domain/diag"
	"github.com/pavelchuchma/vkct/internal/domain/model"
	"github.com/pavelchuchma/vkct/internal/domain/ranking"
	"github.com/pavelchuchma/vkct/pkg/metrics"
)

// snapshot is an immutable view of one run. Readers load it atomically and
// never lock.
type snapshot struct {
	info        Info
	categories  []string
	rows        map[string][]Entry
	diagnostics []diag.Diagnostic
}

// MemoryStore implements Store by swapping whole snapshots.
type MemoryStore struct {
	snap atomic.Pointer[snapshot]
	now  func() time.Time
}

// NewMemoryStore constructs an empty store with configuration options.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish implements Store.Publish.
func (s *MemoryStore) Publish(ctx context.Context, run Run) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	snap := &snapshot{
		rows:        make(map[string][]Entry, len(run.Standings)),
		diagnostics: append([]diag.Diagnostic(nil), run.Diagnostics...),
	}
	participants := 0
	for _, st := range run.Standings {
		name := st.Category.Name
		snap.categories = append(snap.categories, name)
		snap.rows[name] = entries(st)
		participants += st.Len()
	}
	snap.info = Info{
		RunID:        run.ID,
		Season:       run.Season,
		PublishedAt:  s.now(),
		Categories:   len(snap.categories),
		Participants: participants,
		Diagnostics:  len(snap.diagnostics),
	}

	s.snap.Store(snap)
	metrics.UpdateStoredCategories(len(snap.categories))
	return nil
}

func (s *MemoryStore) load() (*snapshot, error) {
	snap := s.snap.Load()
	if snap == nil {
		return nil, ErrEmpty
	}
	return snap, nil
}

// Categories implements Store.Categories.
func (s *MemoryStore) Categories(_ context.Context) ([]string, error) {
	snap, err := s.load()
	if err != nil {
		return nil, err
	}
	return append([]string(nil), snap.categories...), nil
}

// Standings implements Store.Standings.
func (s *MemoryStore) Standings(_ context.Context, category string, limit int) ([]Entry, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	snap, err := s.load()
	if err != nil {
		return nil, err
	}
	rows, ok := snap.rows[category]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}
	return append([]Entry(nil), rows[:min(limit, len(rows))]...), nil
}

// Rank implements Store.Rank.
func (s *MemoryStore) Rank(_ context.Context, category, name, birthYear string) (Entry, error) {
	snap, err := s.load()
	if err != nil {
		return Entry{}, err
	}
	rows, ok := snap.rows[category]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownCategory, category)
	}

	var found []Entry
	for _, e := range rows {
		if e.Name != name {
			continue
		}
		if birthYear != "" && e.BirthYear != birthYear {
			continue
		}
		found = append(found, e)
	}
	switch len(found) {
	case 0:
		return Entry{}, ErrNotFound
	case 1:
		return found[0], nil
	default:
		return Entry{}, fmt.Errorf("%w: %s", ErrAmbiguous, name)
	}
}

// Diagnostics implements Store.Diagnostics.
func (s *MemoryStore) Diagnostics(_ context.Context, minSeverity diag.Severity) ([]diag.Diagnostic, error) {
	snap, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]diag.Diagnostic, 0, len(snap.diagnostics))
	for _, d := range snap.diagnostics {
		if d.Severity >= minSeverity {
			out = append(out, d)
		}
	}
	return out, nil
}

// Info implements Store.Info.
func (s *MemoryStore) Info(_ context.Context) (Info, error) {
	snap, err := s.load()
	if err != nil {
		return Info{}, err
	}
	return snap.info, nil
}

// entries flattens ranked standings into rows.
func entries(st *model.CategoryStandings) []Entry {
	ranks := ranking.FinalRanks(st)
	out := make([]Entry, 0, st.Len())
	for i, pr := range st.Results {
		e := Entry{
			Rank:      ranks[i],
			Name:      pr.Participant.Name,
			Team:      pr.Participant.Team,
			BirthYear: pr.Participant.BirthYear.String(),
			Total:     ranking.Total(pr),
			Races:     make([]RaceEntry, len(pr.Races)),
		}
		for j := range pr.Races {
			e.Races[j] = raceEntry(&pr.Races[j])
		}
		out = append(out, e)
	}
	return out
}

func raceEntry(r *model.RaceResult) RaceEntry {
	e := RaceEntry{
		Points:         r.Points,
		AltPoints:      r.AltPoints,
		Ignored:        r.IgnoredInSummary,
		Cumulative:     r.CumulativePoints,
		CumulativeRank: r.CumulativeRank,
	}
	if r.Position != nil {
		e.Position = r.Position.String()
	}
	if r.AltPosition != nil {
		e.AltPosition = r.AltPosition.String()
	}
	return e
}
