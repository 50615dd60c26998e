package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mapbridge/internal/coordinator"
	"github.com/roach88/mapbridge/internal/model"
	"github.com/roach88/mapbridge/internal/render/sim"
	"github.com/roach88/mapbridge/internal/testutil"
)

// createTestJournal opens a fresh journal in a temp dir.
func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func event(session string, seq int64, kind coordinator.EventKind, subject string) coordinator.Event {
	return coordinator.Event{Seq: seq, Session: session, Kind: kind, Subject: subject}
}

func TestOpen_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	for i := 0; i < 3; i++ {
		j, err := Open(path)
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, j.Close())
	}
}

func TestOpen_Pragmas(t *testing.T) {
	j := createTestJournal(t)

	tests := map[string]string{
		"journal_mode": "wal",
		"foreign_keys": "1",
		"busy_timeout": "5000",
		"user_version": "1",
	}
	for name, want := range tests {
		got, err := j.pragma(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	_, err = j.db.Exec("PRAGMA user_version = 9")
	require.NoError(t, err)
	require.NoError(t, j.Close())

	_, err = Open(path)
	assert.ErrorContains(t, err, "newer than supported")
}

func TestCloseNil(t *testing.T) {
	assert.NoError(t, (&Journal{}).Close())
}

func TestWriteAndReadSession(t *testing.T) {
	ctx := context.Background()
	j := createTestJournal(t)

	require.NoError(t, j.WriteEvent(ctx, event("s1", 2, coordinator.EventCameraQueued, "camera")))
	require.NoError(t, j.WriteEvent(ctx, event("s1", 1, coordinator.EventTransition, "created")))
	require.NoError(t, j.WriteEvent(ctx, event("s1", 3, coordinator.EventTransition, "initialized")))

	events, err := j.ReadSession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{events[0].Seq, events[1].Seq, events[2].Seq})
	assert.Equal(t, coordinator.EventTransition, events[0].Kind)
	assert.Equal(t, "s1", events[0].Session)

	transitions, err := j.ReadKind(ctx, "s1", coordinator.EventTransition)
	require.NoError(t, err)
	require.Len(t, transitions, 2)
	assert.Equal(t, "initialized", transitions[1].Subject)
}

func TestWriteEvent_Idempotent(t *testing.T) {
	ctx := context.Background()
	j := createTestJournal(t)
	e := event("s1", 1, coordinator.EventTransition, "created")

	require.NoError(t, j.WriteEvent(ctx, e))
	e.Subject = "changed"
	require.NoError(t, j.WriteEvent(ctx, e))

	events, err := j.ReadSession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "created", events[0].Subject, "first write wins")
}

func TestWriteEvent_EmptySession(t *testing.T) {
	j := createTestJournal(t)
	err := j.WriteEvent(context.Background(), event("", 1, coordinator.EventTransition, "created"))
	assert.ErrorContains(t, err, "empty session")
}

func TestReadSession_UnknownIsEmpty(t *testing.T) {
	j := createTestJournal(t)
	events, err := j.ReadSession(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	j := createTestJournal(t)

	sessions, err := j.Sessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	require.NoError(t, j.WriteEvent(ctx, event("b", 1, coordinator.EventTransition, "created")))
	require.NoError(t, j.WriteEvent(ctx, event("b", 4, coordinator.EventTransition, "destroyed")))
	require.NoError(t, j.WriteEvent(ctx, event("a", 5, coordinator.EventTransition, "created")))

	sessions, err = j.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Session{
		{ID: "b", Events: 2, FirstSeq: 1, LastSeq: 4},
		{ID: "a", Events: 1, FirstSeq: 5, LastSeq: 5},
	}, sessions)
}

func TestRecorder_JournalsCoordinatorLifetimes(t *testing.T) {
	ctx := context.Background()
	j := createTestJournal(t)
	rec := NewRecorder(j, testutil.DiscardLogger())

	eng := sim.New()
	c := coordinator.New(eng, model.DefaultMapOptions(),
		coordinator.WithLogger(testutil.DiscardLogger()),
		coordinator.WithRecorder(rec),
		coordinator.WithSessionGenerator(testutil.NewSequentialSessions("map")))

	c.MoveCamera(model.ZoomTo(4))
	c.OnCreate(nil)
	require.True(t, eng.SignalMapReady())
	require.True(t, eng.SignalStyleLoaded())
	c.OnDestroy()
	c.OnCreate(nil)

	assert.Zero(t, rec.Failed())

	sessions, err := j.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "map-1", sessions[0].ID)
	assert.Equal(t, "map-2", sessions[1].ID)

	transitions, err := j.ReadKind(ctx, "map-1", coordinator.EventTransition)
	require.NoError(t, err)
	var phases []string
	for _, e := range transitions {
		phases = append(phases, e.Subject)
	}
	assert.Equal(t, []string{"created", "initialized", "style_ready", "loaded", "destroyed"}, phases)

	replayed, err := j.ReadKind(ctx, "map-1", coordinator.EventCameraReplayed)
	require.NoError(t, err)
	assert.Len(t, replayed, 1)
}

func TestRecorder_CountsFailures(t *testing.T) {
	j := createTestJournal(t)
	logger, logs := testutil.NewCaptureLogger()
	rec := NewRecorder(j, logger)

	rec.Record(event("", 1, coordinator.EventTransition, "created"))
	require.NoError(t, j.Close())
	rec.Record(event("s", 2, coordinator.EventTransition, "created"))

	assert.Equal(t, int64(2), rec.Failed())
	assert.Equal(t, []string{"journal write failed", "journal write failed"}, logs.Messages())
}
