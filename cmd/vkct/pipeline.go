package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pavelchuchma/vkct/internal/adapters/seriesfile"
	"github.com/pavelchuchma/vkct/internal/adapters/xlsx"
	service "github.com/pavelchuchma/vkct/internal/app"
	"github.com/pavelchuchma/vkct/internal/config"
	"github.com/pavelchuchma/vkct/internal/domain/dedupe"
	"github.com/pavelchuchma/vkct/internal/domain/diag"
	"github.com/pavelchuchma/vkct/internal/domain/identity"
	"github.com/pavelchuchma/vkct/internal/domain/model"
	"github.com/pavelchuchma/vkct/pkg/logger"
)

var errNoSeries = errors.New("no series configured: set series in the config or pass --series")

// pipeline loads the series configuration and computes it with a service
// built from the process config.
type pipeline struct {
	cfg *config.Config
	svc *service.Service
	log logger.Logger
}

func newPipeline(cfg *config.Config, log logger.Logger, opts ...service.Option) (*pipeline, error) {
	names := identity.NewDictionary()
	if cfg.FirstNames != "" {
		f, err := os.Open(cfg.FirstNames)
		if err != nil {
			return nil, fmt.Errorf("open first names: %w", err)
		}
		names, err = identity.LoadDictionary(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.FirstNames, err)
		}
		log.Debug(context.Background(), "first names loaded", logger.Int("names", names.Len()))
	}

	base := []service.Option{
		service.WithLogger(log),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithNormalizer(identity.NewNormalizer(
			identity.WithFirstNames(names),
			identity.WithHonorifics(cfg.Honorifics),
			identity.WithUnknownBirthYearTokens(cfg.UnknownBirthYearTokens),
		)),
		service.WithChecker(dedupe.NewChecker(
			dedupe.WithCategoryThreshold(cfg.CategoryThreshold),
			dedupe.WithRosterThreshold(cfg.HistoryThreshold),
			dedupe.WithMaxYearGap(cfg.MaxYearGap),
		)),
	}
	return &pipeline{
		cfg: cfg,
		svc: service.New(append(base, opts...)...),
		log: log,
	}, nil
}

// season loads the series configuration from a YAML series file or a config
// workbook.
func (p *pipeline) season() (model.Season, error) {
	if p.cfg.Series == "" {
		return model.Season{}, errNoSeries
	}
	if seriesfile.IsSeriesFile(p.cfg.Series) {
		return seriesfile.Load(p.cfg.Series)
	}
	return xlsx.LoadSeason(p.cfg.Series)
}

// baseDir is where relative event workbook paths are resolved.
func (p *pipeline) baseDir() string {
	return filepath.Dir(p.cfg.Series)
}

// compute reads every event workbook afresh and computes the season.
// Diagnostics are logged as they are flushed.
func (p *pipeline) compute(ctx context.Context) (*service.Result, model.Season, error) {
	season, err := p.season()
	if err != nil {
		return nil, model.Season{}, err
	}
	reader := xlsx.NewReader(xlsx.WithBaseDir(p.baseDir()))
	defer func() {
		if err := reader.Close(); err != nil {
			p.log.Warn(ctx, "closing workbooks", logger.Error(err))
		}
	}()

	res, err := p.svc.Compute(ctx, season, reader, diag.NewLogSink(p.log))
	if err != nil {
		return nil, season, err
	}
	return res, season, nil
}

// inputs lists the series file and every event workbook it refers to.
func (p *pipeline) inputs(season model.Season) []string {
	seen := map[string]struct{}{}
	out := []string{p.cfg.Series}
	for _, cat := range season.Categories {
		for _, in := range cat.Inputs {
			path := in.File
			if !filepath.IsAbs(path) {
				path = filepath.Join(p.baseDir(), path)
			}
			if _, ok := seen[path]; ok {
				continue
			}
			seen[path] = struct{}{}
			out = append(out, path)
		}
	}
	return out
}
