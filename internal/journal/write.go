package journal

import (
	"context"
	"fmt"

	"github.com/roach88/mapbridge/internal/coordinator"
)

// WriteEvent appends one event. The session row is created on its first
// event. Writing an event that already exists is silently ignored.
func (j *Journal) WriteEvent(ctx context.Context, e coordinator.Event) error {
	if e.Session == "" {
		return fmt.Errorf("write event %d: empty session", e.Seq)
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write event: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sessions (id, first_seq)
		VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, e.Session, e.Seq); err != nil {
		return fmt.Errorf("write event: session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO events (session, seq, kind, subject, detail)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session, seq) DO NOTHING
	`, e.Session, e.Seq, string(e.Kind), e.Subject, e.Detail); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write event: commit: %w", err)
	}
	return nil
}
