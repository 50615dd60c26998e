package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/mapbridge/internal/coordinator"
)

// Session summarizes one journaled map lifetime.
type Session struct {
	ID       string
	Events   int
	FirstSeq int64
	LastSeq  int64
}

// Sessions returns every session in the order it was first seen.
func (j *Journal) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT s.id, COUNT(e.seq), s.first_seq, COALESCE(MAX(e.seq), s.first_seq)
		FROM sessions s
		LEFT JOIN events e ON e.session = s.id
		GROUP BY s.id
		ORDER BY s.first_seq ASC, s.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.Events, &s.FirstSeq, &s.LastSeq); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadSession returns every event of a session, ordered by seq. Returns an
// empty slice for an unknown session.
func (j *Journal) ReadSession(ctx context.Context, session string) ([]coordinator.Event, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT session, seq, kind, subject, detail
		FROM events
		WHERE session = ?
		ORDER BY seq ASC
	`, session)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return scanEvents(rows)
}

// ReadKind returns the events of one kind within a session, ordered by seq.
func (j *Journal) ReadKind(ctx context.Context, session string, kind coordinator.EventKind) ([]coordinator.Event, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT session, seq, kind, subject, detail
		FROM events
		WHERE session = ? AND kind = ?
		ORDER BY seq ASC
	`, session, string(kind))
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]coordinator.Event, error) {
	defer rows.Close()
	events := []coordinator.Event{}
	for rows.Next() {
		var (
			e    coordinator.Event
			kind string
		)
		if err := rows.Scan(&e.Session, &e.Seq, &kind, &e.Subject, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Kind = coordinator.EventKind(kind)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
