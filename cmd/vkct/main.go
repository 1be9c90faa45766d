// Command vkct computes the standings of a multi-event race series.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/pavelchuchma/vkct/internal/config"
	"github.com/pavelchuchma/vkct/pkg/logger"
	"github.com/pavelchuchma/vkct/pkg/metrics"
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApplication(os.Stderr).cli().RunContext(ctx, os.Args); err != nil {
		logger.Get().Error(ctx, "vkct failed", logger.Error(err))
		stop()
		os.Exit(1) //nolint:gocritic // stop already called
	}
}

// application carries what every command needs once the config is loaded.
type application struct {
	logOut io.Writer
	cfg    *config.Config
	log    logger.Logger
}

func newApplication(logOut io.Writer) *application {
	return &application{logOut: logOut}
}

func (a *application) cli() *cli.App {
	return &cli.App{
		Name:  "vkct",
		Usage: "series standings from per-event result workbooks",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file", EnvVars: []string{config.EnvConfig}},
			&cli.StringFlag{Name: "series", Aliases: []string{"s"}, Usage: "config workbook (.xlsx) or series file (.yaml)"},
			&cli.StringFlag{Name: "first-names", Usage: "first-name dictionary file"},
			&cli.IntFlag{Name: "workers", Usage: "categories computed in parallel"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Usage: "text or json"},
		},
		Before: a.setup,
		Commands: []*cli.Command{
			a.standingsCommand(),
			a.namesCommand(),
			a.serveCommand(),
			a.generateCommand(),
		},
	}
}

// setup layers command-line flags over the loaded config and initializes
// logging and metrics from the result.
func (a *application) setup(c *cli.Context) error {
	cfg, err := config.LoadFile(c.Context, c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("series") {
		cfg.Series = c.String("series")
	}
	if c.IsSet("first-names") {
		cfg.FirstNames = c.String("first-names")
	}
	if c.IsSet("workers") {
		cfg.WorkerCount = c.Int("workers")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.LogFormat = c.String("log-format")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts := []logger.InitOption{logger.WithOutput(a.logOut)}
	if cfg.LogFormat == "json" {
		opts = append(opts, logger.WithJSON())
	}
	if err := logger.Init(opts...); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	metrics.Init(metrics.WithNamespace(cfg.MetricsNamespace))

	a.cfg = cfg
	a.log = logger.Get()
	return nil
}
