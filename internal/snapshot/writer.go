// README: Write-behind persistence; callers enqueue snapshots and never wait on storage.
package snapshot

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Saver is implemented by *Store.
type Saver interface {
	Save(ctx context.Context, st State) error
}

// Writer coalesces enqueued snapshots: only the latest pending one is saved.
type Writer struct {
	saver   Saver
	logger  *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending *State
	wake    chan struct{}
	saved   uint64
}

func NewWriter(saver Saver, logger *slog.Logger) *Writer {
	return &Writer{
		saver:   saver,
		logger:  logger,
		timeout: 5 * time.Second,
		wake:    make(chan struct{}, 1),
	}
}

// Enqueue replaces any pending snapshot with st. It never blocks.
func (w *Writer) Enqueue(st State) {
	w.mu.Lock()
	w.pending = &st
	w.mu.Unlock()
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Run saves pending snapshots until ctx is done, then flushes what is left.
func (w *Writer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Flush(context.WithoutCancel(ctx))
			return
		case <-w.wake:
			w.Flush(ctx)
		}
	}
}

// Flush saves the pending snapshot, if any. Errors are logged and the
// snapshot is dropped; the next mutation enqueues a complete state again.
func (w *Writer) Flush(ctx context.Context) {
	w.mu.Lock()
	st := w.pending
	w.pending = nil
	w.mu.Unlock()
	if st == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	if err := w.saver.Save(ctx, *st); err != nil {
		w.logger.Error("snapshot save failed", "error", err)
		return
	}
	w.mu.Lock()
	w.saved++
	w.mu.Unlock()
}

// Saved returns the number of successful saves.
func (w *Writer) Saved() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.saved
}
