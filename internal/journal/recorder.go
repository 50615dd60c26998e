package journal

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/roach88/mapbridge/internal/coordinator"
)

// Recorder adapts a Journal to coordinator.Recorder. Write failures are
// logged and counted; they never reach the coordinator.
//
// Thread-safety: safe for concurrent use; the journal serializes writers.
type Recorder struct {
	journal *Journal
	logger  *slog.Logger
	failed  atomic.Int64
}

// NewRecorder returns a recorder writing to j. A nil logger means
// slog.Default().
func NewRecorder(j *Journal, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{journal: j, logger: logger}
}

// Record implements coordinator.Recorder.
func (r *Recorder) Record(e coordinator.Event) {
	if err := r.journal.WriteEvent(context.Background(), e); err != nil {
		r.failed.Add(1)
		r.logger.Warn("journal write failed",
			"session", e.Session, "seq", e.Seq, "kind", string(e.Kind), "error", err)
	}
}

// Failed returns the number of events that could not be written.
func (r *Recorder) Failed() int64 {
	return r.failed.Load()
}

var _ coordinator.Recorder = (*Recorder)(nil)
