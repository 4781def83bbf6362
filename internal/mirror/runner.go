// internal/mirror/runner.go
package mirror

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/nodelink/internal/status"
)

// Source reports the current link tier.
type Source interface {
	Status() status.Status
}

type snapshotWriter interface {
	WriteStatus(s status.Snapshot) error
}

// Runner owns the snapshot and advances it once per second.
// With a nil writer it still classifies and reports through OnStatus.
type Runner struct {
	src     Source
	version func() int64
	w       snapshotWriter
	log     *zap.Logger

	// OnStatus, when set, observes every classification.
	OnStatus func(status.Status)

	snap status.Snapshot
}

func NewRunner(src Source, version func() int64, w *StatusWriter, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Runner{
		src:     src,
		version: version,
		log:     log,
		snap:    status.Snapshot{Health: status.HealthUnknown},
	}
	if w != nil {
		r.w = w
	}
	return r
}

// Snapshot returns the last computed snapshot.
func (r *Runner) Snapshot() status.Snapshot {
	return r.snap
}

// Step classifies once and writes the snapshot if anything changed.
func (r *Runner) Step() error {
	tier := r.src.Status()
	if r.OnStatus != nil {
		r.OnStatus(tier)
	}

	next := r.snap
	next.Health, next.LastErrorCode = status.HealthFor(tier)
	next.LinkStatus = uint16(tier)
	next.FirmwareVersion = clampVersion(r.version())

	// Tick 1 Hz while not OK; never wrap.
	if next.Health == status.HealthOK {
		next.SecondsInError = 0
	} else if next.SecondsInError < math.MaxUint16 {
		next.SecondsInError++
	}

	if next == r.snap {
		return nil
	}
	r.snap = next

	if r.w == nil {
		return nil
	}
	return r.w.WriteStatus(next)
}

// Run re-asserts the block on start, then steps every period until ctx is done.
func (r *Runner) Run(ctx context.Context, period time.Duration) {
	if r.w != nil {
		if err := r.w.WriteStatus(r.snap); err != nil {
			r.log.Warn("mirror: status write failed on start", zap.Error(err))
		}
	}

	t := time.NewTicker(period)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := r.Step(); err != nil {
				r.log.Warn("mirror: status write failed", zap.Error(err))
			}
		}
	}
}

func clampVersion(v int64) uint16 {
	switch {
	case v < 0:
		return 0
	case v > math.MaxUint16:
		return math.MaxUint16
	default:
		return uint16(v)
	}
}
