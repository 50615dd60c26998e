package coordinator

import (
	"testing"

	"github.com/paulmach/orb/maptile"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mapbridge/internal/model"
	"github.com/roach88/mapbridge/internal/render/sim"
	"github.com/roach88/mapbridge/internal/testutil"
)

func newTestCoordinator(t *testing.T, opts ...Option) (*Coordinator, *sim.Engine, *MemoryRecorder) {
	t.Helper()
	eng := sim.New()
	rec := &MemoryRecorder{}
	base := []Option{
		WithLogger(testutil.DiscardLogger()),
		WithRecorder(rec),
		WithSessionGenerator(testutil.NewSequentialSessions("test")),
	}
	c := New(eng, model.DefaultMapOptions(), append(base, opts...)...)
	return c, eng, rec
}

// bringUp walks a fresh coordinator all the way to PhaseLoaded.
func bringUp(t *testing.T, c *Coordinator, eng *sim.Engine) {
	t.Helper()
	c.OnCreate(nil)
	require.True(t, eng.SignalMapReady())
	require.True(t, eng.SignalStyleLoaded())
	require.Equal(t, PhaseLoaded, c.Phase())
}

// engineID finds the engine id the simulated engine assigned to a primitive.
func engineID(t *testing.T, eng *sim.Engine, kind, tag string) int64 {
	t.Helper()
	id, ok := eng.AnnotationID(kind, tag)
	require.True(t, ok, "no live %s annotation %q", kind, tag)
	return id
}

// postQueue collects work posted to the host UI thread.
type postQueue struct {
	fns []func()
}

func (q *postQueue) post(fn func()) { q.fns = append(q.fns, fn) }

func (q *postQueue) run() {
	fns := q.fns
	q.fns = nil
	for _, fn := range fns {
		fn()
	}
}

func maptileOf(x, y uint32, z uint32) maptile.Tile {
	return maptile.New(x, y, maptile.Zoom(z))
}
