package coordinator

import (
	"github.com/roach88/mapbridge/internal/model"
	"github.com/roach88/mapbridge/internal/render"
)

// OnCreate creates the engine view and requests the map. Calling it again
// while the map exists is ignored; after OnDestroy it starts a new lifetime.
func (c *Coordinator) OnCreate(saved render.SavedState) {
	c.mu.Lock()
	recreate := c.state.phase == PhaseDestroyed
	if c.state.reached(PhaseCreated) {
		c.mu.Unlock()
		c.log().Debug("create ignored, map exists")
		return
	}
	c.mu.Unlock()

	if recreate {
		c.startSession()
	}
	view := c.factory.NewView()

	c.mu.Lock()
	c.view = view
	actions, ok := c.state.advance(PhaseCreated)
	c.mu.Unlock()
	if !ok {
		return
	}
	c.container.attach(view)
	c.log().Info("map created", "restored", len(saved) > 0)
	c.finishTransition(PhaseCreated, actions)

	view.OnCreate(saved)
	view.GetMapAsync(func(m render.Map) { c.initMap(view, m) })
}

// initMap runs when view hands back its live map. Maps from a view of an
// earlier lifetime are ignored.
func (c *Coordinator) initMap(view render.View, m render.Map) {
	c.mu.Lock()
	if c.view != view || c.state.phase != PhaseCreated || c.m != nil {
		c.mu.Unlock()
		c.log().Debug("stale map ready signal ignored")
		return
	}
	c.m = m
	c.mu.Unlock()

	c.registerMapListeners(m)
	c.applyMapStyle()
	c.applyMapOptions(m)
	c.replayCamera(m)

	m.GetStyle(c.onStyleLoaded)
}

// applyMapOptions applies the construction options to a fresh map.
func (c *Coordinator) applyMapOptions(m render.Map) {
	o := c.options
	if o.Camera != nil {
		m.MoveCamera(model.NewPosition(o.Camera.Shifted(-zoomOffset)))
	}
	if o.MinZoomPreference != 0 {
		m.SetMinZoomPreference(o.MinZoomPreference - zoomOffset)
	}
	if o.MaxZoomPreference != 0 {
		m.SetMaxZoomPreference(o.MaxZoomPreference - zoomOffset)
	}
	if o.TargetBounds != nil {
		b := *o.TargetBounds
		m.SetLatLngBoundsForCameraTarget(&b)
	}
	if o.Compass != nil || o.RotateGestures != nil || o.ScrollGestures != nil || o.TiltGestures != nil {
		m.UpdateUISettings(func(s *model.UISettings) {
			if o.Compass != nil {
				s.CompassEnabled = *o.Compass
			}
			if o.RotateGestures != nil {
				s.RotateGesturesEnabled = *o.RotateGestures
			}
			if o.ScrollGestures != nil {
				s.ScrollGesturesEnabled = *o.ScrollGestures
			}
			if o.TiltGestures != nil {
				s.TiltGesturesEnabled = *o.TiltGestures
			}
		})
	}
}

// onStyleLoaded runs once the first style finished loading. It creates the
// annotation managers, attaches pending overlays, uploads buffered bitmaps
// and walks the map to Loaded.
func (c *Coordinator) onStyleLoaded(style render.Style) {
	c.mu.Lock()
	m := c.m
	if c.state.phase != PhaseInitialized || m == nil {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	fills := m.NewFillManager(style)
	lines := m.NewLineManager(style)
	symbols := m.NewSymbolManager(style)
	c.registerAnnotationListeners(lines, fills, symbols)

	c.mu.Lock()
	if c.state.phase != PhaseInitialized || c.m != m {
		c.mu.Unlock()
		fills.Destroy()
		lines.Destroy()
		symbols.Destroy()
		return
	}
	c.style = style
	attachedFills := c.fills.bind(fills)
	attachedLines := c.lines.bind(lines)
	attachedSymbols := c.symbols.bind(symbols)
	bitmaps := c.drainBitmapsLocked()
	actions, _ := c.state.advance(PhaseStyleReady)
	c.mu.Unlock()

	c.log().Debug("annotation managers ready",
		"fills", len(attachedFills), "lines", len(attachedLines),
		"symbols", len(attachedSymbols), "bitmaps", bitmaps)
	reportAttached(c, KindFill, attachedFills)
	reportAttached(c, KindLine, attachedLines)
	reportAttached(c, KindSymbol, attachedSymbols)
	c.finishTransition(PhaseStyleReady, actions)

	if lc := m.LocationComponent(); lc != nil {
		if err := lc.Activate(style); err != nil {
			c.log().Warn("location component activation failed", "error", err)
		}
	}

	if !c.transition(PhaseLoaded) {
		return
	}
	c.mu.Lock()
	enabled := c.locationEnabled
	c.mu.Unlock()
	if enabled {
		c.applyLocationEnabled(m, true)
	}
	c.fireLoaded()
}

// GetMapAsync hands the coordinator to cb once the map is initialized. When
// the view is missing or not shown the engine may never start, so cb runs
// immediately instead.
func (c *Coordinator) GetMapAsync(cb MapReadyCallback) {
	run := func() { cb(c) }

	c.mu.Lock()
	initialized := c.state.reached(PhaseInitialized)
	view := c.view
	c.mu.Unlock()
	if initialized {
		c.log().Debug("map initialized, invoking ready callback")
		c.guard("map ready", run)
		return
	}
	if view == nil || !view.IsShown() {
		c.log().Debug("map not shown, invoking ready callback")
		c.guard("map ready", run)
		return
	}

	c.mu.Lock()
	now := c.state.schedule(PhaseInitialized, "map ready", run)
	c.mu.Unlock()
	if now {
		c.guard("map ready", run)
		return
	}
	c.log().Debug("delaying ready callback, map not initialized")
}

// OnDestroy tears the map down: managers are destroyed, every buffer and
// index is cleared, and the view is detached. Safe to call at any phase and
// more than once.
func (c *Coordinator) OnDestroy() {
	c.mu.Lock()
	already := c.state.phase == PhaseDestroyed
	lines := c.lines.release()
	fills := c.fills.release()
	symbols := c.symbols.release()
	view := c.view
	popup := c.popup
	c.view = nil
	c.m = nil
	c.style = nil
	c.popup = nil
	c.camera.clear()
	c.prefs = zoomPreferences{}
	c.bitmapQueue = nil
	c.state.destroy()
	c.mu.Unlock()

	if lines != nil {
		lines.Destroy()
	}
	if fills != nil {
		fills.Destroy()
	}
	if symbols != nil {
		symbols.Destroy()
	}
	if popup != nil {
		popup.popup.Close()
	}
	if view != nil {
		c.container.detach(view)
		view.OnDestroy()
	}
	if already {
		return
	}
	c.log().Info("map destroyed")
	c.emit(EventTransition, PhaseDestroyed.String(), "")
}

func (c *Coordinator) currentView() render.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *Coordinator) OnStart() {
	if v := c.currentView(); v != nil {
		v.OnStart()
	}
}

func (c *Coordinator) OnResume() {
	if v := c.currentView(); v != nil {
		v.OnResume()
	}
}

func (c *Coordinator) OnPause() {
	if v := c.currentView(); v != nil {
		v.OnPause()
	}
}

func (c *Coordinator) OnStop() {
	if v := c.currentView(); v != nil {
		v.OnStop()
	}
}

func (c *Coordinator) OnLowMemory() {
	if v := c.currentView(); v != nil {
		v.OnLowMemory()
	}
}

// OnSaveInstanceState returns the engine view state, empty without a view.
func (c *Coordinator) OnSaveInstanceState() render.SavedState {
	if v := c.currentView(); v != nil {
		return v.OnSaveInstanceState()
	}
	return render.SavedState{}
}

// SetContentDescription sets the accessibility description of the view.
func (c *Coordinator) SetContentDescription(desc string) {
	if v := c.currentView(); v != nil {
		v.SetContentDescription(desc)
	}
}
