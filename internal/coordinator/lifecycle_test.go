package coordinator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mapbridge/internal/model"
	"github.com/roach88/mapbridge/internal/render"
	"github.com/roach88/mapbridge/internal/render/sim"
	"github.com/roach88/mapbridge/internal/testutil"
)

func TestLifecycle_BringUp(t *testing.T) {
	c, eng, rec := newTestCoordinator(t)
	assert.Equal(t, PhaseNew, c.Phase())

	c.OnCreate(nil)
	assert.Equal(t, PhaseCreated, c.Phase())
	assert.Equal(t, 1, c.View().Children())

	require.True(t, eng.SignalMapReady())
	assert.Equal(t, PhaseInitialized, c.Phase())

	require.True(t, eng.SignalStyleLoaded())
	assert.Equal(t, PhaseLoaded, c.Phase())

	assert.Equal(t, []string{
		"view.new",
		"view.create",
		"view.get_map_async",
		"engine.map_ready",
		"style.set asset://styles/streets.json",
		"engine.style_loaded asset://styles/streets.json",
		"fill.manager",
		"line.manager",
		"symbol.manager",
		"location.activate asset://styles/streets.json",
	}, eng.Ops())

	var phases []string
	for _, e := range rec.OfKind(EventTransition) {
		phases = append(phases, e.Subject)
		assert.Equal(t, "test-1", e.Session)
	}
	assert.Equal(t, []string{"created", "initialized", "style_ready", "loaded"}, phases)
}

func TestLifecycle_CreateTwiceIgnored(t *testing.T) {
	c, eng, _ := newTestCoordinator(t)
	c.OnCreate(nil)
	c.OnCreate(nil)

	assert.Len(t, eng.OpsWithPrefix("view.new"), 1)
	assert.Equal(t, 1, c.View().Children())
}

func TestLifecycle_LoadedCallbackFiresOnce(t *testing.T) {
	c, eng, _ := newTestCoordinator(t)
	var calls testutil.CallLog
	c.SetOnMapLoadedCallback(calls.Func("loaded"))

	bringUp(t, c, eng)
	assert.Equal(t, []string{"loaded"}, calls.Calls())

	c.SetMapType(model.MapTypeSatellite)
	require.True(t, eng.SignalStyleLoaded())
	assert.Equal(t, 1, calls.Len(), "a style swap is not a new load")
}

func TestLifecycle_LoadedCallbackAfterLoadedRunsNow(t *testing.T) {
	c, eng, _ := newTestCoordinator(t)
	bringUp(t, c, eng)

	var calls testutil.CallLog
	c.SetOnMapLoadedCallback(calls.Func("late"))
	assert.Equal(t, []string{"late"}, calls.Calls())
}

func TestLifecycle_GetMapAsync(t *testing.T) {
	t.Run("waits for initialized", func(t *testing.T) {
		c, eng, _ := newTestCoordinator(t)
		var calls testutil.CallLog
		c.OnCreate(nil)
		c.GetMapAsync(func(got *Coordinator) {
			assert.Same(t, c, got)
			calls.Add("ready")
		})
		assert.Zero(t, calls.Len())

		require.True(t, eng.SignalMapReady())
		assert.Equal(t, []string{"ready"}, calls.Calls())
	})

	t.Run("runs now without a view", func(t *testing.T) {
		c, _, _ := newTestCoordinator(t)
		var calls testutil.CallLog
		c.GetMapAsync(func(*Coordinator) { calls.Add("ready") })
		assert.Equal(t, 1, calls.Len())
	})

	t.Run("runs now when the view is not shown", func(t *testing.T) {
		c, eng, _ := newTestCoordinator(t)
		eng.SetShown(false)
		c.OnCreate(nil)
		var calls testutil.CallLog
		c.GetMapAsync(func(*Coordinator) { calls.Add("ready") })
		assert.Equal(t, 1, calls.Len())
		assert.Equal(t, PhaseCreated, c.Phase())
	})

	t.Run("runs now once initialized", func(t *testing.T) {
		c, eng, _ := newTestCoordinator(t)
		bringUp(t, c, eng)
		var calls testutil.CallLog
		c.GetMapAsync(func(*Coordinator) { calls.Add("ready") })
		assert.Equal(t, 1, calls.Len())
	})
}

func TestLifecycle_DestroyTearsDown(t *testing.T) {
	c, eng, rec := newTestCoordinator(t)
	bringUp(t, c, eng)
	c.AddPolyline(model.DefaultPolylineOptions())
	opts := model.DefaultMarkerOptions()
	opts.Title = "Depot"
	mk := c.AddMarker(opts)
	mk.ShowInfoWindow()

	c.OnDestroy()

	assert.Equal(t, PhaseDestroyed, c.Phase())
	assert.Equal(t, 0, c.View().Children())
	ops := eng.Ops()
	assert.Equal(t, []string{"line.destroy", "fill.destroy", "symbol.destroy", "popup.close", "view.destroy"}, ops[len(ops)-5:])

	stats := c.Stats()
	assert.Zero(t, stats.Live[KindLine])
	assert.Zero(t, stats.Live[KindSymbol])
	assert.Zero(t, stats.Waiting)
	assert.False(t, mk.Attached())

	before := len(eng.Ops())
	c.OnDestroy()
	assert.Len(t, eng.Ops(), before, "second destroy touches nothing")
	assert.Len(t, rec.OfKind(EventTransition), 5, "destroyed is recorded once")
}

func TestLifecycle_DestroyBeforeCreate(t *testing.T) {
	c, eng, _ := newTestCoordinator(t)
	c.MoveCamera(model.ZoomTo(3))
	c.AddPolyline(model.DefaultPolylineOptions())
	var calls testutil.CallLog
	c.RunWhenAtLeast(PhaseLoaded, calls.Func("loaded"))

	c.OnDestroy()

	assert.Equal(t, PhaseDestroyed, c.Phase())
	assert.Empty(t, eng.Ops())
	stats := c.Stats()
	assert.Zero(t, stats.QueuedCamera)
	assert.Zero(t, stats.Waiting)
	assert.Zero(t, stats.Pending[KindLine])
	assert.Zero(t, calls.Len())
}

func TestLifecycle_RecreateStartsNewSession(t *testing.T) {
	c, eng, rec := newTestCoordinator(t)
	bringUp(t, c, eng)
	assert.Equal(t, "test-1", c.Session())
	c.OnDestroy()

	c.OnCreate(nil)
	assert.Equal(t, "test-2", c.Session())
	assert.Equal(t, PhaseCreated, c.Phase())
	require.True(t, eng.SignalMapReady())
	require.True(t, eng.SignalStyleLoaded())
	assert.Equal(t, PhaseLoaded, c.Phase())

	line := c.AddPolyline(model.DefaultPolylineOptions())
	assert.True(t, line.Attached())
	assert.Equal(t, []string{"line.create l0 #0"}, eng.OpsWithPrefix("line.create"))

	events := rec.OfKind(EventTransition)
	last := events[len(events)-1]
	assert.Equal(t, "loaded", last.Subject)
	assert.Equal(t, "test-2", last.Session)
}

func TestLifecycle_StaleStyleSignalAfterDestroy(t *testing.T) {
	c, eng, _ := newTestCoordinator(t)
	c.OnCreate(nil)
	require.True(t, eng.SignalMapReady())
	c.OnDestroy()

	require.True(t, eng.SignalStyleLoaded())

	assert.Equal(t, PhaseDestroyed, c.Phase())
	assert.Empty(t, eng.OpsWithPrefix("fill.manager"))
	assert.Empty(t, eng.OpsWithPrefix("location.activate"))
}

// heldViews hands out engine views whose map-ready callbacks are held until
// the test delivers them.
type heldViews struct {
	render.Factory
	ready []func(render.Map)
}

type heldView struct {
	render.View
	views *heldViews
}

func (f *heldViews) NewView() render.View {
	return &heldView{View: f.Factory.NewView(), views: f}
}

func (v *heldView) GetMapAsync(ready func(render.Map)) {
	v.views.ready = append(v.views.ready, ready)
}

func TestLifecycle_StaleMapReadyAfterRecreate(t *testing.T) {
	eng := sim.New()
	views := &heldViews{Factory: eng}
	c := New(views, model.DefaultMapOptions(),
		WithLogger(testutil.DiscardLogger()),
		WithSessionGenerator(testutil.NewSequentialSessions("test")),
	)

	c.OnCreate(nil)
	c.OnDestroy()
	c.OnCreate(nil)
	require.Len(t, views.ready, 2)

	old := sim.New()
	var staleMap render.Map
	oldView := old.NewView()
	oldView.GetMapAsync(func(m render.Map) { staleMap = m })
	require.True(t, old.SignalMapReady())
	require.NotNil(t, staleMap)

	views.ready[0](staleMap)
	assert.Equal(t, PhaseCreated, c.Phase(), "map of the destroyed view is ignored")
	assert.Empty(t, old.OpsWithPrefix("style.set"))

	require.True(t, eng.SignalMapReady())
	views.ready[1](eng.Map())
	assert.Equal(t, PhaseInitialized, c.Phase())
	require.True(t, eng.SignalStyleLoaded())
	assert.Equal(t, PhaseLoaded, c.Phase())
}

func TestLifecycle_ForwardsToView(t *testing.T) {
	c, eng, _ := newTestCoordinator(t)
	c.OnStart()
	assert.Empty(t, eng.Ops(), "nothing to forward to before create")

	c.OnCreate(render.SavedState{"camera": "1,2 z=3 t=0 b=0"})
	c.OnStart()
	c.OnResume()
	c.OnPause()
	c.OnStop()
	c.OnLowMemory()
	c.SetContentDescription("city map")

	assert.Equal(t, []string{
		"view.new",
		"view.create restored=1",
		"view.get_map_async",
		"view.start",
		"view.resume",
		"view.pause",
		"view.stop",
		"view.low_memory",
		"view.content_description city map",
	}, eng.Ops())
}

func TestLifecycle_SaveInstanceState(t *testing.T) {
	c, eng, _ := newTestCoordinator(t)
	assert.Equal(t, render.SavedState{}, c.OnSaveInstanceState())

	bringUp(t, c, eng)
	c.MoveCamera(model.NewLatLngZoom(model.LatLng(1, 2), 4))

	state := c.OnSaveInstanceState()
	assert.Equal(t, "1,2 z=3 t=0 b=0", state["camera"], "engine scale")
}

func TestLifecycle_OverlaysFromOldLifetimeAreDropped(t *testing.T) {
	c, eng, _ := newTestCoordinator(t)
	c.OnCreate(nil)
	line := c.AddPolyline(model.DefaultPolylineOptions())
	c.OnDestroy()

	c.OnCreate(nil)
	require.True(t, eng.SignalMapReady())
	require.True(t, eng.SignalStyleLoaded())

	assert.False(t, line.Attached())
	assert.Empty(t, eng.OpsWithPrefix("line.create"))
	assert.Zero(t, eng.Map().Lines().Len())
	_, ok := eng.AnnotationID(sim.KindLine, "l0")
	assert.False(t, ok)
}
