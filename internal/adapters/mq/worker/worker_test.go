package worker_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/pavelchuchma/vkct/internal/adapters/mq/queue"
	"github.com/pavelchuchma/vkct/internal/adapters/mq/worker"
	logging "github.com/pavelchuchma/vkct/pkg/logger"
)

type mockQueue struct {
	ch chan queue.Request
}

func newMockQueue() *mockQueue {
	return &mockQueue{ch: make(chan queue.Request, 10)}
}

func (m *mockQueue) Dequeue(context.Context) <-chan queue.Request { return m.ch }

// recorder remembers the requests it was asked to refresh and signals each one.
type recorder struct {
	mu   sync.Mutex
	ids  []string
	fail map[string]error
	seen chan string
}

func newRecorder() *recorder {
	return &recorder{fail: map[string]error{}, seen: make(chan string, 10)}
}

func (r *recorder) Refresh(_ context.Context, req queue.Request) error {
	r.mu.Lock()
	r.ids = append(r.ids, req.ID)
	err := r.fail[req.ID]
	r.mu.Unlock()
	r.seen <- req.ID
	return err
}

func waitFor(ch <-chan string) string {
	select {
	case id := <-ch:
		return id
	case <-time.After(time.Second):
		return ""
	}
}

// settle gives the worker time to record the outcome after Refresh returns.
func settle(w *worker.Worker, processed int) map[string]any {
	deadline := time.Now().Add(time.Second)
	for {
		stats := w.GetStats()
		if stats["refreshes"] == processed || time.Now().After(deadline) {
			return stats
		}
		time.Sleep(time.Millisecond)
	}
}

func TestWorker(t *testing.T) {
	convey.Convey("Given a refresh worker", t, func() {
		_ = logging.Init(logging.WithOutput(io.Discard))

		q := newMockQueue()
		rec := newRecorder()
		w := worker.NewWorker(q, rec, worker.WithName("test-refresh"), worker.WithTimeout(time.Second))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a request is queued", func() {
			q.ch <- queue.Request{ID: "r1", Reason: "api", At: time.Now()}

			convey.Convey("Then it is refreshed and counted", func() {
				convey.So(waitFor(rec.seen), convey.ShouldEqual, "r1")
				stats := settle(w, 1)
				convey.So(stats["refreshes"], convey.ShouldEqual, 1)
				convey.So(stats["failedRefreshes"], convey.ShouldEqual, 0)
				convey.So(stats["lastRefreshID"], convey.ShouldEqual, "r1")
			})
		})

		convey.Convey("When a refresh fails", func() {
			rec.fail["r2"] = errors.New("workbook locked")
			q.ch <- queue.Request{ID: "r2", Reason: "watch", At: time.Now()}
			q.ch <- queue.Request{ID: "r3", Reason: "watch", At: time.Now()}

			convey.Convey("Then the worker keeps going and reports the failure", func() {
				convey.So(waitFor(rec.seen), convey.ShouldEqual, "r2")
				convey.So(waitFor(rec.seen), convey.ShouldEqual, "r3")
				stats := settle(w, 2)
				convey.So(stats["failedRefreshes"], convey.ShouldEqual, 1)
				convey.So(stats["lastRefreshError"], convey.ShouldBeNil)
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer shutdownCancel()

			convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a worker on a closed queue", t, func() {
		_ = logging.Init(logging.WithOutput(io.Discard))

		q := newMockQueue()
		close(q.ch)
		w := worker.NewWorker(q, worker.RefreshFunc(func(context.Context, queue.Request) error { return nil }))

		convey.Convey("When it runs", func() {
			done := make(chan struct{})
			go func() {
				w.Run(context.Background())
				close(done)
			}()

			convey.Convey("Then it stops on its own", func() {
				select {
				case <-done:
				case <-time.After(time.Second):
					convey.So("worker still running", convey.ShouldBeEmpty)
				}
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a worker and a cancelled context", t, func() {
		_ = logging.Init(logging.WithOutput(io.Discard))
		w := worker.NewWorker(newMockQueue(), newRecorder())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		convey.Convey("When it runs", func() {
			w.Run(ctx)

			convey.Convey("Then it returns immediately", func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer shutdownCancel()
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})
}
