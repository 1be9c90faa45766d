// Package fswatch turns changes of input workbooks into recompute requests.
package fswatch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/pavelchuchma/vkct/internal/adapters/mq/queue"
	"github.com/pavelchuchma/vkct/pkg/logger"
)

const defaultDebounce = 2 * time.Second

// ErrNoPaths is returned by Run when there is nothing to watch.
var ErrNoPaths = errors.New("no paths to watch")

// Enqueuer accepts recompute requests.
type Enqueuer interface {
	Enqueue(ctx context.Context, r queue.Request) error
}

// Option applies a configuration option to the Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the files must stay quiet before a request is
// made. Spreadsheet editors write a file several times when saving.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets a custom logger for the watcher.
func WithLogger(l logger.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// Watcher watches a fixed set of files. Their directories are watched, not
// the files, so files replaced on save keep being tracked.
type Watcher struct {
	targets  map[string]struct{}
	q        Enqueuer
	debounce time.Duration
	logger   logger.Logger
}

// New creates a watcher for paths.
func New(q Enqueuer, paths []string, opts ...Option) *Watcher {
	w := &Watcher{
		targets:  make(map[string]struct{}, len(paths)),
		q:        q,
		debounce: defaultDebounce,
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			w.targets[abs] = struct{}{}
		}
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named("fswatch")
	}
	return w
}

// Run watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if len(w.targets) == 0 {
		return ErrNoPaths
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	dirs := map[string]struct{}{}
	for t := range w.targets {
		dirs[filepath.Dir(t)] = struct{}{}
	}
	for d := range dirs {
		if err := fw.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}
	w.logger.Info(ctx, "watching inputs", logger.Int("files", len(w.targets)), logger.Int("dirs", len(dirs)))

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		changed string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			changed = ev.Name
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn(ctx, "watch error", logger.Error(err))
		case <-fire:
			fire = nil
			w.request(ctx, changed)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	_, ok := w.targets[abs]
	return ok
}

func (w *Watcher) request(ctx context.Context, changed string) {
	r := queue.Request{ID: uuid.NewString(), Reason: "watch", At: time.Now()}
	switch err := w.q.Enqueue(ctx, r); {
	case err == nil:
		w.logger.Info(ctx, "inputs changed, refresh queued", logger.String("file", changed), logger.String("request", r.ID))
	case errors.Is(err, queue.ErrFull):
		w.logger.Debug(ctx, "inputs changed, refresh already pending", logger.String("file", changed))
	default:
		w.logger.Warn(ctx, "refresh not queued", logger.String("file", changed), logger.Error(err))
	}
}
