// Package service orchestrates a season computation: it reads every event of
// every category, normalizes and scores the rows, aggregates and ranks the
// standings and runs the similarity check.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/pavelchuchma/vkct/internal/adapters/repository"
	"github.com/pavelchuchma/vkct/internal/domain/dedupe"
	"github.com/pavelchuchma/vkct/internal/domain/diag"
	"github.com/pavelchuchma/vkct/internal/domain/identity"
	"github.com/pavelchuchma/vkct/internal/domain/model"
	"github.com/pavelchuchma/vkct/internal/domain/ranking"
	"github.com/pavelchuchma/vkct/internal/domain/scoring"
	"github.com/pavelchuchma/vkct/internal/domain/season"
	"github.com/pavelchuchma/vkct/pkg/logger"
	"github.com/pavelchuchma/vkct/pkg/metrics"
)

// EventSource supplies the raw finisher rows of one event input.
type EventSource interface {
	Rows(ctx context.Context, cat model.Category, in model.EventInput) ([]model.RawRow, error)
}

// Result is the outcome of one successful run.
type Result struct {
	RunID       string
	Season      int
	Standings   []*model.CategoryStandings
	Diagnostics []diag.Diagnostic
	Similar     []dedupe.Pair
}

// Standing returns the standings of the named category.
func (r *Result) Standing(name string) (*model.CategoryStandings, bool) {
	for _, st := range r.Standings {
		if st.Category.Name == name {
			return st, true
		}
	}
	return nil, false
}

// Service computes season standings.
type Service struct {
	mu sync.RWMutex

	normalizer *identity.Normalizer
	calculator scoring.Scorer
	checker    *dedupe.Checker
	store      repository.Store

	workerCount int
	logger      logger.Logger
	tracer      trace.Tracer

	// last run, for GetStats
	runs         int
	failed       int
	lastRunID    string
	lastSeason   int
	lastDuration time.Duration
	lastCounts   map[diag.Severity]int
	participants int
	categories   int
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		normalizer:  identity.NewNormalizer(),
		calculator:  scoring.NewCalculator(),
		checker:     dedupe.NewChecker(),
		workerCount: runtime.NumCPU(),
		tracer:      otel.Tracer("vkct/service"),
		lastCounts:  map[diag.Severity]int{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// categoryRun is the private state of one category computation.
type categoryRun struct {
	report    diag.Report
	standings *model.CategoryStandings
	similar   []dedupe.Pair
}

// Compute runs a whole season. Diagnostics are forwarded to sink in category
// order even when the run fails. On failure no standings are returned.
func (s *Service) Compute(ctx context.Context, cfg model.Season, source EventSource, sink diag.Reporter) (*Result, error) {
	if sink == nil {
		sink = diag.Discard
	}
	runID := uuid.NewString()
	ctx, span := s.tracer.Start(ctx, "Service.Compute",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("season.year", cfg.Year),
			attribute.Int("season.categories", len(cfg.Categories)),
		),
	)
	defer span.End()

	start := time.Now()
	metrics.RecordRunStarted()
	log := s.logger.With(logger.String("run", runID), logger.Int("season", cfg.Year))
	log.Info(ctx, "computing season", logger.Int("categories", len(cfg.Categories)))

	if len(cfg.Categories) == 0 {
		return nil, s.fail(ctx, span, ErrNoCategories)
	}

	// Normalize works on a private copy so the caller's season is untouched.
	cfg.Categories = append([]model.Category(nil), cfg.Categories...)
	cfg.Normalize()

	runs := make([]*categoryRun, len(cfg.Categories))
	for i := range runs {
		runs[i] = &categoryRun{}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workerCount)
	for i, cat := range cfg.Categories {
		run := runs[i]
		g.Go(func() error {
			st, pairs, err := s.computeCategory(gctx, cfg.Year, cat, source, &run.report)
			run.standings, run.similar = st, pairs
			return err
		})
	}
	err := g.Wait()

	res := &Result{RunID: runID, Season: cfg.Year}
	counts := map[diag.Severity]int{}
	for _, run := range runs {
		for _, d := range run.report.Diagnostics() {
			metrics.RecordDiagnostic(d.Severity.String(), d.Code)
			counts[d.Severity]++
			res.Diagnostics = append(res.Diagnostics, d)
		}
		run.report.FlushTo(sink)
	}
	if err != nil {
		return nil, s.fail(ctx, span, err)
	}

	participants := 0
	for _, run := range runs {
		res.Standings = append(res.Standings, run.standings)
		res.Similar = append(res.Similar, run.similar...)
		participants += run.standings.Len()
	}

	if s.store != nil {
		pub := repository.Run{ID: runID, Season: cfg.Year, Standings: res.Standings, Diagnostics: res.Diagnostics}
		if err := s.store.Publish(ctx, pub); err != nil {
			return nil, s.fail(ctx, span, fmt.Errorf("publish run %s: %w", runID, err))
		}
	}

	elapsed := time.Since(start)
	metrics.RecordRunCompleted(elapsed)
	span.SetAttributes(
		attribute.Int("season.participants", participants),
		attribute.Int("season.diagnostics", len(res.Diagnostics)),
	)

	s.mu.Lock()
	s.runs++
	s.lastRunID = runID
	s.lastSeason = cfg.Year
	s.lastDuration = elapsed
	s.lastCounts = counts
	s.participants = participants
	s.categories = len(res.Standings)
	s.mu.Unlock()

	log.Info(ctx, "season computed",
		logger.Int("participants", participants),
		logger.Int("warnings", counts[diag.Warning]),
		logger.Duration("took", elapsed),
	)
	return res, nil
}

func (s *Service) fail(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	metrics.RecordRunFailed()
	s.mu.Lock()
	s.runs++
	s.failed++
	s.mu.Unlock()
	s.logger.Error(ctx, "season computation failed", logger.Error(err))
	return err
}

// computeCategory ingests, aggregates and ranks one category. Each event is
// read completely before an error diagnostic aborts the category.
func (s *Service) computeCategory(ctx context.Context, year int, cat model.Category, source EventSource, r diag.Reporter) (*model.CategoryStandings, []dedupe.Pair, error) {
	ctx, span := s.tracer.Start(ctx, "Service.computeCategory",
		trace.WithAttributes(
			attribute.String("category.name", cat.Name),
			attribute.Int("category.inputs", len(cat.Inputs)),
		),
	)
	defer span.End()
	start := time.Now()

	events := make([]season.Event, 0, len(cat.Inputs))
	for _, in := range cat.Inputs {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("category %s: %w", cat.Name, err)
		}

		ev, err := s.ingest(ctx, year, cat, in, source, r)
		if err != nil {
			span.RecordError(err)
			return nil, nil, err
		}
		events = append(events, ev)
	}

	st := season.Aggregate(cat, events, s.calculator)
	ranking.Rank(st)
	pairs := s.checker.CheckCategory(st, r)

	metrics.RecordSimilarPairs(dedupe.ScopeCategory, len(pairs))
	metrics.RecordCategoryComputed(cat.Name, st.Len(), time.Since(start))
	span.SetAttributes(
		attribute.Int("category.participants", st.Len()),
		attribute.Int("category.similar_pairs", len(pairs)),
	)
	return st, pairs, nil
}

// ingest reads and normalizes one event input.
func (s *Service) ingest(ctx context.Context, year int, cat model.Category, in model.EventInput, source EventSource, r diag.Reporter) (season.Event, error) {
	loc := diag.Location{File: in.File, Sheet: in.Sheet}
	raw, err := source.Rows(ctx, cat, in)
	if err != nil {
		diag.Errorf(r, loc, diag.CodeSource, "%v", err)
		return season.Event{}, fmt.Errorf("%w: category %s: %w", ErrIngestion, cat.Name, err)
	}
	metrics.RecordRowsIngested(cat.Name, len(raw))

	var rep diag.Report
	scope := identity.Scope{Category: cat, SeasonYear: year, Alternative: in.Alternative}
	rows := make([]model.EventResultRow, 0, len(raw))
	for _, rr := range raw {
		row, keep := s.normalizer.NormalizeRow(rr, scope, &rep)
		if keep {
			rows = append(rows, row)
		}
	}
	identity.ValidatePositions(rows, in.Alternative, &rep)

	failed := rep.HasErrors()
	rep.FlushTo(r)
	if failed {
		return season.Event{}, fmt.Errorf("%w: category %s: %s", ErrIngestion, cat.Name, loc)
	}
	return season.Event{Alternative: in.Alternative, Rows: rows}, nil
}

// CheckHistory compares participants across past seasons' results.
func (s *Service) CheckHistory(ctx context.Context, entries []dedupe.RosterEntry, sink diag.Reporter) []dedupe.Pair {
	if sink == nil {
		sink = diag.Discard
	}
	_, span := s.tracer.Start(ctx, "Service.CheckHistory",
		trace.WithAttributes(attribute.Int("roster.entries", len(entries))),
	)
	defer span.End()

	var rep diag.Report
	pairs := s.checker.CheckRoster(entries, &rep)
	for _, d := range rep.Diagnostics() {
		metrics.RecordDiagnostic(d.Severity.String(), d.Code)
	}
	rep.FlushTo(sink)

	metrics.RecordSimilarPairs(dedupe.ScopeRoster, len(pairs))
	span.SetAttributes(attribute.Int("roster.similar_pairs", len(pairs)))
	s.logger.Info(ctx, "history checked",
		logger.Int("entries", len(entries)),
		logger.Int("pairs", len(pairs)),
	)
	return pairs
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"workerCount": s.workerCount,
		"runs":        s.runs,
		"failedRuns":  s.failed,
	}
	if s.lastRunID != "" {
		stats["lastRunID"] = s.lastRunID
		stats["season"] = s.lastSeason
		stats["lastRunMillis"] = s.lastDuration.Milliseconds()
		stats["categories"] = s.categories
		stats["participants"] = s.participants
		stats["warnings"] = s.lastCounts[diag.Warning]
		stats["infos"] = s.lastCounts[diag.Info]
	}
	return stats
}
