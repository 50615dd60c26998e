package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mapbridge/internal/testutil"
)

func TestReadiness_AdvancesOneStepAtATime(t *testing.T) {
	r := newReadiness()

	_, ok := r.advance(PhaseInitialized)
	assert.False(t, ok, "skipping Created must be rejected")
	assert.Equal(t, PhaseNew, r.phase)

	_, ok = r.advance(PhaseCreated)
	require.True(t, ok)
	_, ok = r.advance(PhaseCreated)
	assert.False(t, ok, "repeated transition is a no-op")

	for _, p := range []Phase{PhaseInitialized, PhaseStyleReady, PhaseLoaded} {
		_, ok = r.advance(p)
		require.True(t, ok, p.String())
	}
	assert.Equal(t, PhaseLoaded, r.phase)

	_, ok = r.advance(PhaseDestroyed)
	assert.False(t, ok, "destroy is not a transition")
}

func TestReadiness_ScheduleReleasesInRegistrationOrder(t *testing.T) {
	r := newReadiness()
	var got []string
	add := func(name string) func() { return func() { got = append(got, name) } }

	assert.False(t, r.schedule(PhaseInitialized, "a", add("a")))
	assert.False(t, r.schedule(PhaseInitialized, "b", add("b")))
	assert.False(t, r.schedule(PhaseStyleReady, "c", add("c")))
	assert.Equal(t, 3, r.pending())

	r.advance(PhaseCreated)
	actions, ok := r.advance(PhaseInitialized)
	require.True(t, ok)
	require.Len(t, actions, 2)
	for _, a := range actions {
		a.fn()
	}
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, r.pending())

	assert.True(t, r.schedule(PhaseCreated, "d", add("d")), "reached phase runs now")
	assert.Equal(t, 1, r.pending())
}

func TestReadiness_DestroyClosesEveryGate(t *testing.T) {
	r := newReadiness()
	for _, p := range []Phase{PhaseCreated, PhaseInitialized, PhaseStyleReady, PhaseLoaded} {
		r.advance(p)
	}
	r.schedule(PhaseDestroyed, "never", func() {})

	r.destroy()

	assert.False(t, r.reached(PhaseCreated))
	assert.False(t, r.reached(PhaseNew))
	assert.True(t, r.reached(PhaseDestroyed))
	assert.Zero(t, r.pending())

	_, ok := r.advance(PhaseCreated)
	assert.True(t, ok, "re-create starts a new sequence")
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "style_ready", PhaseStyleReady.String())
	assert.Equal(t, "phase(42)", Phase(42).String())
}

func TestRunWhenAtLeast_DefersUntilPhase(t *testing.T) {
	c, eng, _ := newTestCoordinator(t)
	var calls testutil.CallLog

	c.RunWhenAtLeast(PhaseLoaded, calls.Func("loaded"))
	c.RunWhenAtLeast(PhaseInitialized, calls.Func("initialized"))
	c.RunWhenAtLeast(PhaseStyleReady, calls.Func("style"))
	c.RunWhenAtLeast(PhaseNew, calls.Func("now"))
	assert.Equal(t, []string{"now"}, calls.Calls())

	c.OnCreate(nil)
	require.True(t, eng.SignalMapReady())
	assert.Equal(t, []string{"now", "initialized"}, calls.Calls())

	require.True(t, eng.SignalStyleLoaded())
	assert.Equal(t, []string{"now", "initialized", "style", "loaded"}, calls.Calls())

	c.RunWhenAtLeast(PhaseInitialized, calls.Func("late"))
	assert.Equal(t, "late", calls.Calls()[4])
}

func TestRunWhenAtLeast_PanicIsIsolated(t *testing.T) {
	c, eng, rec := newTestCoordinator(t)
	var calls testutil.CallLog

	c.RunWhenAtLeast(PhaseInitialized, func() { panic("caller bug") })
	c.RunWhenAtLeast(PhaseInitialized, calls.Func("after"))

	bringUp(t, c, eng)

	assert.Equal(t, 1, calls.Count("after"))
	faults := rec.OfKind(EventCallbackFault)
	require.Len(t, faults, 1)
	assert.Contains(t, faults[0].Detail, "caller bug")
}

func TestCallbackError(t *testing.T) {
	err := &CallbackError{Callback: "marker click", Value: "boom"}
	assert.Equal(t, "callback marker click panicked: boom", err.Error())
	assert.True(t, IsCallbackError(err))
	assert.Nil(t, err.Unwrap())
}
