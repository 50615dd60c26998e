package coordinator

import (
	"image"

	"github.com/paulmach/orb"

	"github.com/roach88/mapbridge/internal/model"
	"github.com/roach88/mapbridge/internal/render"
)

type (
	CameraChangeListener       func(pos model.CameraPosition)
	CameraMoveListener         func()
	CameraMoveStartedListener  func(reason int)
	CameraMoveCanceledListener func()
	CameraIdleListener         func()
	MapClickListener           func(at orb.Point)
	MapLongClickListener       func(at orb.Point)
	CircleClickListener        func(c *Circle)
	PolylineClickListener      func(p *Polyline)
	MapLoadedCallback          func()
	MapReadyCallback           func(c *Coordinator)
	SnapshotReadyCallback      func(img image.Image)

	// MarkerClickListener returns true when it consumed the click. An
	// unconsumed click opens the marker's info window.
	MarkerClickListener func(m *Marker) bool
)

// MarkerDragListener receives marker drag gestures.
type MarkerDragListener interface {
	OnMarkerDragStart(m *Marker)
	OnMarkerDrag(m *Marker)
	OnMarkerDragEnd(m *Marker)
}

// listenerSet holds caller listeners. Guarded by the Coordinator mutex;
// setting nil unregisters.
type listenerSet struct {
	cameraChange       CameraChangeListener
	cameraMove         CameraMoveListener
	cameraMoveStarted  CameraMoveStartedListener
	cameraMoveCanceled CameraMoveCanceledListener
	cameraIdle         CameraIdleListener
	mapClick           MapClickListener
	mapLongClick       MapLongClickListener
	markerClick        MarkerClickListener
	markerDrag         MarkerDragListener
	circleClick        CircleClickListener
	polylineClick      PolylineClickListener
}

func (c *Coordinator) setListener(set func(l *listenerSet)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	set(&c.listeners)
}

func (c *Coordinator) currentListeners() listenerSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listeners
}

func (c *Coordinator) SetOnCameraChangeListener(l CameraChangeListener) {
	c.setListener(func(s *listenerSet) { s.cameraChange = l })
}

func (c *Coordinator) SetOnCameraMoveListener(l CameraMoveListener) {
	c.setListener(func(s *listenerSet) { s.cameraMove = l })
}

func (c *Coordinator) SetOnCameraMoveStartedListener(l CameraMoveStartedListener) {
	c.setListener(func(s *listenerSet) { s.cameraMoveStarted = l })
}

func (c *Coordinator) SetOnCameraMoveCanceledListener(l CameraMoveCanceledListener) {
	c.setListener(func(s *listenerSet) { s.cameraMoveCanceled = l })
}

func (c *Coordinator) SetOnCameraIdleListener(l CameraIdleListener) {
	c.setListener(func(s *listenerSet) { s.cameraIdle = l })
}

func (c *Coordinator) SetOnMapClickListener(l MapClickListener) {
	c.setListener(func(s *listenerSet) { s.mapClick = l })
}

func (c *Coordinator) SetOnMapLongClickListener(l MapLongClickListener) {
	c.setListener(func(s *listenerSet) { s.mapLongClick = l })
}

func (c *Coordinator) SetOnMarkerClickListener(l MarkerClickListener) {
	c.setListener(func(s *listenerSet) { s.markerClick = l })
}

func (c *Coordinator) SetOnMarkerDragListener(l MarkerDragListener) {
	c.setListener(func(s *listenerSet) { s.markerDrag = l })
}

func (c *Coordinator) SetOnCircleClickListener(l CircleClickListener) {
	c.setListener(func(s *listenerSet) { s.circleClick = l })
}

func (c *Coordinator) SetOnPolylineClickListener(l PolylineClickListener) {
	c.setListener(func(s *listenerSet) { s.polylineClick = l })
}

// SetOnMapLoadedCallback registers the callback fired once Loaded is reached.
// Registered after Loaded, it fires immediately. It fires at most once per
// map lifetime; nil unregisters.
func (c *Coordinator) SetOnMapLoadedCallback(cb MapLoadedCallback) {
	c.mu.Lock()
	if !c.state.reached(PhaseLoaded) {
		c.loaded = cb
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	if cb != nil {
		c.log().Debug("map already loaded, invoking loaded callback")
		c.guard("map loaded", cb)
	}
}

// fireLoaded runs the registered loaded callback once.
func (c *Coordinator) fireLoaded() {
	c.mu.Lock()
	cb := c.loaded
	c.loaded = nil
	c.mu.Unlock()
	if cb != nil {
		c.guard("map loaded", cb)
	}
}

// registerMapListeners connects engine camera and click events. Called once
// per map, when the engine hands it back.
func (c *Coordinator) registerMapListeners(m render.Map) {
	m.OnCameraIdle(func() {
		l := c.currentListeners()
		if l.cameraChange != nil {
			pos := m.CameraPosition().Shifted(zoomOffset)
			c.guard("camera change", func() { l.cameraChange(pos) })
		}
		if l.cameraIdle != nil {
			c.guard("camera idle", l.cameraIdle)
		}
	})
	m.OnCameraMove(func() {
		if l := c.currentListeners(); l.cameraMove != nil {
			c.guard("camera move", l.cameraMove)
		}
		c.refreshInfoWindow(nil)
	})
	m.OnCameraMoveStarted(func(reason int) {
		if l := c.currentListeners(); l.cameraMoveStarted != nil {
			c.guard("camera move started", func() { l.cameraMoveStarted(reason) })
		}
	})
	m.OnCameraMoveCanceled(func() {
		if l := c.currentListeners(); l.cameraMoveCanceled != nil {
			c.guard("camera move canceled", l.cameraMoveCanceled)
		}
	})
	m.OnMapClick(func(at orb.Point) bool {
		if !c.symbolAt(m, at) {
			if l := c.currentListeners(); l.mapClick != nil {
				c.guard("map click", func() { l.mapClick(at) })
			}
		}
		c.closeInfoWindow(nil)
		return false
	})
	m.OnMapLongClick(func(at orb.Point) bool {
		if !c.symbolAt(m, at) {
			if l := c.currentListeners(); l.mapLongClick != nil {
				c.guard("map long click", func() { l.mapLongClick(at) })
			}
		}
		return false
	})
}

// symbolAt reports whether a marker symbol is rendered at at; map clicks
// there belong to the marker.
func (c *Coordinator) symbolAt(m render.Map, at orb.Point) bool {
	c.mu.Lock()
	symbols := c.symbols.manager
	c.mu.Unlock()
	if symbols == nil {
		return false
	}
	return m.HasSymbolAt(at, symbols.LayerID())
}

// registerAnnotationListeners connects click and drag events of freshly
// created managers. Events for ids not in a live index are ignored.
func (c *Coordinator) registerAnnotationListeners(lines render.LineManager, fills render.FillManager, symbols render.SymbolManager) {
	symbols.AddClickListener(c.onSymbolClick)
	symbols.AddDragListener(render.DragListener{
		Started: func(id int64) {
			mk, ok := overlayOf[render.SymbolSpec, *Marker](c, c.symbols, id)
			if !ok {
				return
			}
			if l := c.currentListeners().markerDrag; l != nil {
				c.guard("marker drag start", func() { l.OnMarkerDragStart(mk) })
			}
		},
		Dragged: func(id int64, at orb.Point) {
			mk, ok := overlayOf[render.SymbolSpec, *Marker](c, c.symbols, id)
			if !ok {
				return
			}
			mk.dragged(at)
			if l := c.currentListeners().markerDrag; l != nil {
				c.guard("marker drag", func() { l.OnMarkerDrag(mk) })
			}
		},
		Finished: func(id int64) {
			c.post(func() {
				mk, ok := overlayOf[render.SymbolSpec, *Marker](c, c.symbols, id)
				if !ok {
					return
				}
				if l := c.currentListeners().markerDrag; l != nil {
					c.guard("marker drag end", func() { l.OnMarkerDragEnd(mk) })
				}
			})
		},
	})
	fills.AddClickListener(c.onFillClick)
	lines.AddClickListener(c.onLineClick)
}

// onSymbolClick routes a symbol click to its marker. An unconsumed click
// opens the marker's info window.
func (c *Coordinator) onSymbolClick(id int64) bool {
	mk, ok := overlayOf[render.SymbolSpec, *Marker](c, c.symbols, id)
	if !ok {
		return false
	}
	if l := c.currentListeners().markerClick; l != nil {
		var consumed bool
		if !c.guard("marker click", func() { consumed = l(mk) }) {
			return false
		}
		if consumed {
			return true
		}
	}
	return c.showInfoWindow(mk)
}

// onFillClick routes a fill click to its circle when the circle is clickable
// and a circle listener is registered.
func (c *Coordinator) onFillClick(id int64) bool {
	ci, ok := overlayOf[render.FillSpec, *Circle](c, c.fills, id)
	if !ok || !ci.IsClickable() {
		return false
	}
	l := c.currentListeners().circleClick
	if l == nil {
		return false
	}
	c.guard("circle click", func() { l(ci) })
	return true
}

// onLineClick routes a line click to its polyline. Outlines of polygons and
// circles are not clickable.
func (c *Coordinator) onLineClick(id int64) bool {
	pl, ok := overlayOf[render.LineSpec, *Polyline](c, c.lines, id)
	if !ok || !pl.IsClickable() {
		return false
	}
	l := c.currentListeners().polylineClick
	if l == nil {
		return false
	}
	c.guard("polyline click", func() { l(pl) })
	return true
}
