package histotail

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/talostrading/histotail/histoerrors"
	"github.com/talostrading/histotail/histoopts"
	"github.com/talostrading/histotail/util"
)

// Tailer calls ReadBatch on a Reader in a loop and backs off while the writer
// is idle.
type Tailer struct {
	reader  *Reader
	handler Handler
	idler   *util.BackoffIdler
	watch   bool
	log     *zap.Logger
}

// NewTailer returns a Tailer passing the records of reader to handler.
//
// Between polls that decode nothing the tailer sleeps from MinIdle up to
// MaxIdle, doubling each time (1ms and 1m by default). With Watch, writes to
// the log reported by the filesystem end a sleep early.
func NewTailer(reader *Reader, handler Handler, opts ...histoopts.Option) *Tailer {
	t := &Tailer{
		reader:  reader,
		handler: handler,
		log:     zap.NewNop(),
	}

	var (
		ignored []histoopts.OptionType
		clk     clock.Clock
		minIdle = util.DefaultMinIdle
		maxIdle = util.DefaultMaxIdle
	)
	for _, opt := range opts {
		switch opt.Type() {
		case histoopts.TypeLogger:
			if v := opt.Value().(*zap.Logger); v != nil {
				t.log = v
			}
		case histoopts.TypeClock:
			clk, _ = opt.Value().(clock.Clock)
		case histoopts.TypeMinIdle:
			minIdle = opt.Value().(time.Duration)
		case histoopts.TypeMaxIdle:
			maxIdle = opt.Value().(time.Duration)
		case histoopts.TypeWatch:
			t.watch = opt.Value().(bool)
		default:
			ignored = append(ignored, opt.Type())
		}
	}
	for _, typ := range ignored {
		t.log.Debug("ignoring option", zap.Stringer("option", typ))
	}
	t.idler = util.NewBackoffIdler(clk, minIdle, maxIdle)

	return t
}

// Run tails the log until ctx is done, in which case it returns ctx.Err(), or
// until a read fails, in which case it returns the read error. The log has no
// natural end while its writer runs.
func (t *Tailer) Run(ctx context.Context) error {
	if !t.watch {
		return t.poll(ctx, nil)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: could not create watcher: %w", histoerrors.ErrIOFailure, err)
	}
	defer watcher.Close()

	if err := watcher.Add(t.reader.Name()); err != nil {
		return fmt.Errorf("%w: could not watch %s: %w", histoerrors.ErrIOFailure, t.reader.Name(), err)
	}

	wake := make(chan struct{}, 1)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t.forward(ctx, watcher, wake)
		return nil
	})
	g.Go(func() error {
		return t.poll(ctx, wake)
	})
	return g.Wait()
}

func (t *Tailer) poll(ctx context.Context, wake <-chan struct{}) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := t.reader.ReadBatch(t.handler)
		if err != nil {
			t.log.Error("could not read histogram log",
				zap.String("path", t.reader.Name()),
				zap.Int("offset", t.reader.Offset()),
				zap.Error(err),
			)
			return err
		}

		if err := t.idler.Idle(ctx, n, wake); err != nil {
			return err
		}
	}
}

// forward turns write notifications into at most one pending wakeup.
func (t *Tailer) forward(ctx context.Context, watcher *fsnotify.Watcher, wake chan<- struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) {
				select {
				case wake <- struct{}{}:
				default:
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			t.log.Warn("histogram log watch failed", zap.Error(err))
		}
	}
}
