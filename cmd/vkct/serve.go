package main

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pavelchuchma/vkct/internal/adapters/fswatch"
	"github.com/pavelchuchma/vkct/internal/adapters/http/api"
	"github.com/pavelchuchma/vkct/internal/adapters/http/swagger"
	"github.com/pavelchuchma/vkct/internal/adapters/mq/queue"
	"github.com/pavelchuchma/vkct/internal/adapters/mq/worker"
	"github.com/pavelchuchma/vkct/internal/adapters/repository"
	service "github.com/pavelchuchma/vkct/internal/app"
	"github.com/pavelchuchma/vkct/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// statsFunc adapts a function to api.StatsProvider.
type statsFunc func() map[string]any

func (f statsFunc) GetStats() map[string]any { return f() }

// server is everything the serve command runs.
type server struct {
	handler http.Handler
	queue   *queue.InMemoryQueue
	worker  *worker.Worker
	watcher *fswatch.Watcher
}

func (a *application) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "compute the season and serve the standings over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address"},
			&cli.BoolFlag{Name: "watch", Usage: "recompute when input workbooks change"},
		},
		Action: func(c *cli.Context) error {
			if c.IsSet("addr") {
				a.cfg.Addr = c.String("addr")
			}
			if c.IsSet("watch") {
				a.cfg.Watch = c.Bool("watch")
			}
			return a.serve(c.Context)
		},
	}
}

// newServer computes the season once and wires the store, the refresh
// worker and the HTTP routes. A failed first computation is logged and the
// API reports not ready until a refresh succeeds.
func (a *application) newServer(ctx context.Context) (*server, error) {
	store := repository.NewMemoryStore()
	p, err := newPipeline(a.cfg, a.log, service.WithStore(store))
	if err != nil {
		return nil, err
	}

	season, err := p.season()
	if err != nil {
		return nil, err
	}
	if _, _, err := p.compute(ctx); err != nil {
		a.log.Error(ctx, "initial computation failed", logger.Error(err))
	}

	srv := &server{queue: queue.NewInMemoryQueue()}
	srv.worker = worker.NewWorker(srv.queue,
		worker.RefreshFunc(func(ctx context.Context, _ queue.Request) error {
			_, _, err := p.compute(ctx)
			return err
		}),
		worker.WithLogger(a.log.Named("refresh")),
		worker.WithTimeout(a.cfg.RefreshTimeout),
	)
	if a.cfg.Watch {
		srv.watcher = fswatch.New(srv.queue, p.inputs(season),
			fswatch.WithDebounce(a.cfg.WatchDebounce),
			fswatch.WithLogger(a.log.Named("fswatch")),
		)
	}

	stats := statsFunc(func() map[string]any {
		out := p.svc.GetStats()
		maps.Copy(out, srv.worker.GetStats())
		out["refreshQueue"] = srv.queue.Len(ctx)
		return out
	})

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(store, stats, a.cfg.MaxStandingsLimit, api.WithRefresher(srv.queue)).Register(ctx, mux)
	srv.handler = mux
	return srv, nil
}

func (a *application) serve(ctx context.Context) error {
	srv, err := a.newServer(ctx)
	if err != nil {
		return err
	}

	go srv.worker.Run(ctx)
	if srv.watcher != nil {
		go func() {
			if err := srv.watcher.Run(ctx); err != nil {
				a.log.Error(ctx, "input watch stopped", logger.Error(err))
			}
		}()
	}

	httpSrv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           srv.handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		a.log.Info(ctx, "starting HTTP server", logger.String("addr", a.cfg.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errc:
		return err
	}
	a.log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		a.log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	_ = srv.queue.Close()
	if err := srv.worker.Shutdown(shutdownCtx); err != nil {
		a.log.Error(ctx, "refresh worker shutdown failed", logger.Error(err))
	}

	a.log.Info(ctx, "server stopped")
	return nil
}
