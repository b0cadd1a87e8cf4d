package app

import (
	"context"
	stdErrors "errors"
	"io"
	"log/slog"
	"time"

	"codelens/internal/core/ports"
	"codelens/internal/data/history"
	"codelens/internal/data/queue"
	"codelens/internal/shared/observability"
)

const (
	historyBatchSize     = 32
	historyFlushInterval = 100 * time.Millisecond
)

// HistoryWriter persists run summaries off the request path. Record never
// blocks; runs are dropped when the buffer is full.
type HistoryWriter struct {
	store  ports.HistoryStore
	queue  *queue.MemoryQueue[history.Run]
	cancel context.CancelFunc
	done   chan struct{}
}

func NewHistoryWriter(store ports.HistoryStore, capacity int) *HistoryWriter {
	return &HistoryWriter{
		store: store,
		queue: queue.NewMemoryQueue[history.Run](capacity),
	}
}

func (w *HistoryWriter) Start() {
	if w.done != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.run(ctx)
}

func (w *HistoryWriter) Record(_ context.Context, run history.Run) {
	if w.queue.Enqueue(run) == queue.EnqueueDropped {
		observability.HistoryWritesTotal.WithLabelValues("dropped").Inc()
		slog.Warn("history queue full, dropping run", "run_id", run.RunID)
	}
}

func (w *HistoryWriter) Pending() int {
	return w.queue.Len()
}

func (w *HistoryWriter) run(ctx context.Context) {
	defer close(w.done)
	for {
		batch, err := w.queue.DequeueBatch(ctx, historyBatchSize, historyFlushInterval)
		for _, run := range batch {
			if saveErr := w.store.SaveRun(ctx, run); saveErr != nil {
				observability.HistoryWritesTotal.WithLabelValues("failed").Inc()
				slog.Warn("failed to save run history", "run_id", run.RunID, "error", saveErr)
				continue
			}
			observability.HistoryWritesTotal.WithLabelValues("saved").Inc()
		}
		switch {
		case err == nil:
		case stdErrors.Is(err, io.EOF), stdErrors.Is(err, context.Canceled):
			return
		default:
			slog.Warn("history queue dequeue failed", "error", err)
		}
	}
}

// Close stops accepting runs and waits for queued ones to be written. When
// ctx expires first the remaining runs are abandoned.
func (w *HistoryWriter) Close(ctx context.Context) error {
	_ = w.queue.Close()
	if w.done == nil {
		return nil
	}
	select {
	case <-w.done:
		w.cancel()
		return nil
	case <-ctx.Done():
		w.cancel()
		<-w.done
		return ctx.Err()
	}
}
