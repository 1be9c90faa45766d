package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pavelchuchma/vkct/internal/adapters/seriesfile"
	"github.com/pavelchuchma/vkct/internal/adapters/xlsx"
	"github.com/pavelchuchma/vkct/internal/domain/dedupe"
	"github.com/pavelchuchma/vkct/internal/domain/diag"
	"github.com/pavelchuchma/vkct/internal/fixtures"
	"github.com/pavelchuchma/vkct/pkg/logger"
)

// Files written by the generate command.
const (
	generatedSeries     = "series.yaml"
	generatedFirstNames = "krestni_jmena.txt"
)

func (a *application) standingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "standings",
		Usage: "compute the season and write the results workbook",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "results workbook (default vysledky<year>.xlsx)"},
			&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Usage: "template workbook"},
		},
		Action: func(c *cli.Context) error {
			if c.IsSet("output") {
				a.cfg.Output = c.String("output")
			}
			if c.IsSet("template") {
				a.cfg.Template = c.String("template")
			}

			p, err := newPipeline(a.cfg, a.log)
			if err != nil {
				return err
			}
			res, season, err := p.compute(c.Context)
			if err != nil {
				return err
			}

			out := a.cfg.OutputPath(season.Year)
			w := xlsx.NewWriter(xlsx.WithTemplate(a.cfg.Template))
			if err := w.Write(out, res.Standings); err != nil {
				return fmt.Errorf("write results: %w", err)
			}
			a.log.Info(c.Context, "results written",
				logger.String("file", out),
				logger.String("run", res.RunID),
				logger.Int("categories", len(res.Standings)),
				logger.Int("similar_pairs", len(res.Similar)),
			)
			return nil
		},
	}
}

func (a *application) namesCommand() *cli.Command {
	return &cli.Command{
		Name:      "names",
		Usage:     "report probable duplicate participants across previous seasons' results",
		ArgsUsage: "[results.xlsx ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "template-sheet", Value: xlsx.DefaultTemplateSheet, Usage: "sheet skipped in results workbooks"},
		},
		Action: func(c *cli.Context) error {
			paths := append(append([]string(nil), a.cfg.History...), c.Args().Slice()...)
			if len(paths) == 0 {
				return fmt.Errorf("no results workbooks: set history in the config or pass them as arguments")
			}

			var entries []dedupe.RosterEntry
			for _, path := range paths {
				roster, err := xlsx.ReadRoster(path, c.String("template-sheet"))
				if err != nil {
					return err
				}
				a.log.Debug(c.Context, "roster read", logger.String("file", path), logger.Int("entries", len(roster)))
				entries = append(entries, roster...)
			}

			p, err := newPipeline(a.cfg, a.log)
			if err != nil {
				return err
			}
			pairs := p.svc.CheckHistory(c.Context, entries, diag.NewLogSink(a.log))
			a.log.Info(c.Context, "names checked",
				logger.Int("workbooks", len(paths)),
				logger.Int("entries", len(entries)),
				logger.Int("similar_pairs", len(pairs)),
			)
			return nil
		},
	}
}

func (a *application) generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "write a synthetic season: event workbook, series file and first names",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Value: ".", Usage: "output directory"},
			&cli.Int64Flag{Name: "seed", Usage: "random seed (default: time based)"},
			&cli.IntFlag{Name: "year", Value: time.Now().Year(), Usage: "season year"},
			&cli.IntFlag{Name: "categories", Value: 3, Usage: "number of categories"},
			&cli.IntFlag{Name: "events", Value: 5, Usage: "events per category"},
			&cli.IntFlag{Name: "participants", Value: 40, Usage: "competitors per category"},
			&cli.IntFlag{Name: "dnf", Value: 5, Usage: "percentage of DNF finishers"},
			&cli.BoolFlag{Name: "alternative", Usage: "add an alternative event per category"},
			&cli.BoolFlag{Name: "swapped-names", Usage: "write some names surname first"},
		},
		Action: func(c *cli.Context) error {
			dir := c.String("out")
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}

			opts := []fixtures.GeneratorOption{
				fixtures.WithYear(c.Int("year")),
				fixtures.WithCategories(c.Int("categories")),
				fixtures.WithEvents(c.Int("events")),
				fixtures.WithParticipants(c.Int("participants")),
				fixtures.WithDNFPercent(c.Int("dnf")),
			}
			if c.IsSet("seed") {
				opts = append(opts, fixtures.WithSeed(c.Int64("seed")))
			}
			if c.Bool("alternative") {
				opts = append(opts, fixtures.WithAlternativeEvent())
			}
			if c.Bool("swapped-names") {
				opts = append(opts, fixtures.WithSwappedNames())
			}
			g := fixtures.NewGenerator(opts...).Generate()

			events := make([]xlsx.Event, 0, len(g.Events))
			books := map[string]struct{}{}
			for _, ev := range g.Events {
				events = append(events, xlsx.Event{Input: ev.Input, Rows: ev.Rows})
				books[ev.Input.File] = struct{}{}
			}
			for book := range books {
				var inBook []xlsx.Event
				for _, ev := range events {
					if ev.Input.File == book {
						inBook = append(inBook, ev)
					}
				}
				if err := xlsx.WriteEventBook(filepath.Join(dir, book), inBook); err != nil {
					return err
				}
			}

			if err := seriesfile.Save(filepath.Join(dir, generatedSeries), g.Season); err != nil {
				return err
			}
			names := strings.Join(g.FirstNames, "\n") + "\n"
			if err := os.WriteFile(filepath.Join(dir, generatedFirstNames), []byte(names), 0o644); err != nil {
				return fmt.Errorf("write first names: %w", err)
			}

			a.log.Info(c.Context, "season generated",
				logger.String("dir", dir),
				logger.Int("year", g.Season.Year),
				logger.Int("categories", len(g.Season.Categories)),
				logger.Int("events", len(g.Events)),
			)
			return nil
		},
	}
}
