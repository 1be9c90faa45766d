package fswatch_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/pavelchuchma/vkct/internal/adapters/fswatch"
	"github.com/pavelchuchma/vkct/internal/adapters/mq/queue"
	"github.com/pavelchuchma/vkct/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

func receive(ch <-chan queue.Request, d time.Duration) (queue.Request, bool) {
	select {
	case r := <-ch:
		return r, true
	case <-time.After(d):
		return queue.Request{}, false
	}
}

func TestWatcher(t *testing.T) {
	Convey("Given a watched workbook", t, func() {
		dir := t.TempDir()
		book := filepath.Join(dir, "zavod1.xlsx")
		So(os.WriteFile(book, []byte("v1"), 0o600), ShouldBeNil)

		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		w := fswatch.New(q, []string{book}, fswatch.WithDebounce(50*time.Millisecond))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		done := make(chan error, 1)
		go func() { done <- w.Run(ctx) }()
		time.Sleep(100 * time.Millisecond)
		requests := q.Dequeue(ctx)

		Convey("When an unrelated file in the directory changes", func() {
			So(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600), ShouldBeNil)

			Convey("Then nothing is requested", func() {
				_, ok := receive(requests, 300*time.Millisecond)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the workbook is saved several times", func() {
			for _, v := range []string{"v2", "v3", "v4"} {
				So(os.WriteFile(book, []byte(v), 0o600), ShouldBeNil)
			}

			Convey("Then one refresh is requested", func() {
				r, ok := receive(requests, 2*time.Second)
				So(ok, ShouldBeTrue)
				So(r.Reason, ShouldEqual, "watch")
				So(r.ID, ShouldNotBeEmpty)
				_, again := receive(requests, 300*time.Millisecond)
				So(again, ShouldBeFalse)
			})
		})

		Convey("When the context ends", func() {
			cancel()

			Convey("Then Run returns without error", func() {
				select {
				case err := <-done:
					So(err, ShouldBeNil)
				case <-time.After(time.Second):
					So("watcher still running", ShouldBeEmpty)
				}
			})
		})
	})

	Convey("Given no paths", t, func() {
		w := fswatch.New(queue.NewInMemoryQueue(), []string{""})
		So(errors.Is(w.Run(context.Background()), fswatch.ErrNoPaths), ShouldBeTrue)
	})
}
