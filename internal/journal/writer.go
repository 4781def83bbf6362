// internal/journal/writer.go
package journal

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/nodelink/internal/domain"
	"github.com/tamzrod/nodelink/internal/events"
)

type entry struct {
	at    time.Time
	query string
	args  func() ([]any, error)
}

// Writer persists telemetry and events from a bounded queue.
// Producers never block: a full queue drops the entry.
type Writer struct {
	db  *DB
	ch  chan entry
	log *zap.Logger

	dropped atomic.Uint64
}

func NewWriter(db *DB, buffer int, log *zap.Logger) *Writer {
	if buffer <= 0 {
		buffer = 256
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{
		db:  db,
		ch:  make(chan entry, buffer),
		log: log,
	}
}

// Telemetry is a fan-out callback.
func (w *Writer) Telemetry(rec domain.Record, at time.Time) {
	w.push(entry{at: at, query: insertTelemetry, args: func() ([]any, error) {
		b, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		return []any{at.UnixMilli(), string(b)}, nil
	}})
}

// Event journals one bus event.
func (w *Writer) Event(e events.Event) {
	w.push(entry{at: e.At, query: insertEvent, args: func() ([]any, error) {
		if e.Value == nil {
			return []any{e.At.UnixMilli(), string(e.Name), nil}, nil
		}
		b, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		return []any{e.At.UnixMilli(), string(e.Name), string(b)}, nil
	}})
}

func (w *Writer) push(e entry) {
	select {
	case w.ch <- e:
	default:
		w.dropped.Add(1)
	}
}

// Dropped returns the number of entries lost to a full queue.
func (w *Writer) Dropped() uint64 {
	return w.dropped.Load()
}

// Run drains the queue until ctx is done, then flushes what is buffered.
func (w *Writer) Run(ctx context.Context) {
	for {
		select {
		case e := <-w.ch:
			w.write(e)
		case <-ctx.Done():
			for {
				select {
				case e := <-w.ch:
					w.write(e)
				default:
					return
				}
			}
		}
	}
}

func (w *Writer) write(e entry) {
	args, err := e.args()
	if err != nil {
		w.log.Warn("journal: encode failed", zap.Error(err))
		return
	}
	if _, err := w.db.Exec(e.query, args...); err != nil {
		w.log.Warn("journal: insert failed", zap.Time("at", e.at), zap.Error(err))
	}
}
