package sim

import (
	"image"
	"sync"
	"time"

	"github.com/paulmach/orb"

	"github.com/roach88/mapbridge/internal/model"
	"github.com/roach88/mapbridge/internal/render"
)

// Engine zoom limits.
const (
	MinZoom = 0
	MaxZoom = 25.5
)

// Map is the simulated live map.
type Map struct {
	engine   *Engine
	location *Location

	mu           sync.Mutex
	camera       model.CameraPosition
	minZoom      float64
	maxZoom      float64
	bounds       *orb.Bound
	style        *Style
	styleLoaded  bool
	styleWaiters []func(render.Style)
	ui           model.UISettings

	idle         []func()
	move         []func()
	moveStarted  []func(int)
	moveCanceled []func()
	clicks       []func(orb.Point) bool
	longClicks   []func(orb.Point) bool

	lines   *Manager[render.LineSpec]
	fills   *Manager[render.FillSpec]
	symbols *Manager[render.SymbolSpec]
}

func newMap(e *Engine) *Map {
	return &Map{
		engine:   e,
		location: &Location{engine: e},
		minZoom:  MinZoom,
		maxZoom:  MaxZoom,
		ui:       model.DefaultUISettings(),
	}
}

func (m *Map) CameraPosition() model.CameraPosition {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.camera
}

func (m *Map) MinZoomLevel() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.minZoom
}

func (m *Map) MaxZoomLevel() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxZoom
}

func (m *Map) MoveCamera(u model.CameraUpdate) {
	m.engine.record("camera.move", u.String())
	m.applyCamera(u)
}

func (m *Map) AnimateCamera(u model.CameraUpdate, duration time.Duration, done render.Completion) {
	m.engine.recordf("camera.animate", "%s d=%dms", u.String(), duration.Milliseconds())
	m.applyCamera(u)
	if done != nil {
		done.OnFinish()
	}
}

func (m *Map) applyCamera(u model.CameraUpdate) {
	m.mu.Lock()
	m.camera = u.Apply(m.camera)
	started := append(([]func(int))(nil), m.moveStarted...)
	move := append(([]func())(nil), m.move...)
	idle := append(([]func())(nil), m.idle...)
	m.mu.Unlock()

	for _, fn := range started {
		fn(model.MoveReasonDeveloperAnimation)
	}
	for _, fn := range move {
		fn()
	}
	for _, fn := range idle {
		fn()
	}
}

func (m *Map) CancelTransitions() {
	m.engine.record("camera.cancel", "")
	m.mu.Lock()
	canceled := append(([]func())(nil), m.moveCanceled...)
	m.mu.Unlock()
	for _, fn := range canceled {
		fn()
	}
}

func (m *Map) SetMinZoomPreference(zoom float64) {
	m.engine.recordf("zoom.min", "%g", zoom)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.minZoom = zoom
}

func (m *Map) SetMaxZoomPreference(zoom float64) {
	m.engine.recordf("zoom.max", "%g", zoom)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxZoom = zoom
}

func (m *Map) SetLatLngBoundsForCameraTarget(bounds *orb.Bound) {
	if bounds == nil {
		m.engine.record("camera.bounds", "none")
	} else {
		m.engine.recordf("camera.bounds", "%g,%g..%g,%g",
			bounds.Min.Lat(), bounds.Min.Lon(), bounds.Max.Lat(), bounds.Max.Lon())
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bounds = bounds
}

// TargetBounds returns the camera target bounds, if any.
func (m *Map) TargetBounds() *orb.Bound {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bounds
}

func (m *Map) SetStyle(src model.StyleSource, loaded func(render.Style)) {
	if src.JSON != "" {
		m.engine.record("style.set", src.URI+" +json")
	} else {
		m.engine.record("style.set", src.URI)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.style = &Style{engine: m.engine, src: src, images: make(map[string]image.Image)}
	m.styleLoaded = false
	if loaded != nil {
		m.styleWaiters = append(m.styleWaiters, loaded)
	}
}

func (m *Map) GetStyle(loaded func(render.Style)) {
	m.mu.Lock()
	if !m.styleLoaded {
		m.styleWaiters = append(m.styleWaiters, loaded)
		m.mu.Unlock()
		return
	}
	style := m.style
	m.mu.Unlock()
	loaded(style)
}

// CurrentStyle returns the style most recently set, loaded or not.
func (m *Map) CurrentStyle() *Style {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.style
}

func (m *Map) finishStyle() bool {
	m.mu.Lock()
	if m.style == nil {
		m.mu.Unlock()
		return false
	}
	m.styleLoaded = true
	style := m.style
	waiters := m.styleWaiters
	m.styleWaiters = nil
	m.mu.Unlock()

	m.engine.record("engine.style_loaded", style.URI())
	for _, fn := range waiters {
		fn(style)
	}
	return true
}

func (m *Map) UISettings() model.UISettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ui
}

func (m *Map) UpdateUISettings(fn func(*model.UISettings)) {
	m.mu.Lock()
	fn(&m.ui)
	m.mu.Unlock()
	m.engine.record("ui.update", "")
}

func (m *Map) Snapshot(ready func(image.Image)) {
	m.engine.record("map.snapshot", "")
	ready(image.NewRGBA(image.Rect(0, 0, 1, 1)))
}

func (m *Map) HasSymbolAt(at orb.Point, layerID string) bool {
	m.mu.Lock()
	symbols := m.symbols
	m.mu.Unlock()
	if symbols == nil || symbols.LayerID() != layerID {
		return false
	}
	symbols.mu.Lock()
	defer symbols.mu.Unlock()
	for _, spec := range symbols.specs {
		if !spec.Hidden && spec.Position.Equal(at) {
			return true
		}
	}
	return false
}

func (m *Map) LocationComponent() render.LocationComponent {
	return m.location
}

// Location returns the concrete location component.
func (m *Map) Location() *Location {
	return m.location
}

func (m *Map) NewLineManager(style render.Style) render.LineManager {
	lines := newManager(m.engine, KindLine, func(s render.LineSpec) string { return s.Data })
	m.mu.Lock()
	m.lines = lines
	m.mu.Unlock()
	return lines
}

func (m *Map) NewFillManager(style render.Style) render.FillManager {
	fills := newManager(m.engine, KindFill, func(s render.FillSpec) string { return s.Data })
	m.mu.Lock()
	m.fills = fills
	m.mu.Unlock()
	return fills
}

func (m *Map) NewSymbolManager(style render.Style) render.SymbolManager {
	symbols := newManager(m.engine, KindSymbol, func(s render.SymbolSpec) string { return s.Data })
	m.mu.Lock()
	m.symbols = symbols
	m.mu.Unlock()
	return symbols
}

func (m *Map) lineManager() *Manager[render.LineSpec] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lines
}

func (m *Map) fillManager() *Manager[render.FillSpec] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fills
}

func (m *Map) symbolManager() *Manager[render.SymbolSpec] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.symbols
}

// Lines returns the line manager, or nil before it was created.
func (m *Map) Lines() *Manager[render.LineSpec] { return m.lineManager() }

// Fills returns the fill manager, or nil before it was created.
func (m *Map) Fills() *Manager[render.FillSpec] { return m.fillManager() }

// Symbols returns the symbol manager, or nil before it was created.
func (m *Map) Symbols() *Manager[render.SymbolSpec] { return m.symbolManager() }

func (m *Map) OnCameraIdle(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.idle = append(m.idle, fn)
}

func (m *Map) OnCameraMove(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.move = append(m.move, fn)
}

func (m *Map) OnCameraMoveStarted(fn func(reason int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moveStarted = append(m.moveStarted, fn)
}

func (m *Map) OnCameraMoveCanceled(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moveCanceled = append(m.moveCanceled, fn)
}

func (m *Map) OnMapClick(fn func(at orb.Point) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clicks = append(m.clicks, fn)
}

func (m *Map) OnMapLongClick(fn func(at orb.Point) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.longClicks = append(m.longClicks, fn)
}

func (m *Map) dispatchClick(at orb.Point, long bool) {
	m.mu.Lock()
	var listeners []func(orb.Point) bool
	if long {
		listeners = append(listeners, m.longClicks...)
	} else {
		listeners = append(listeners, m.clicks...)
	}
	m.mu.Unlock()
	for _, fn := range listeners {
		if fn(at) {
			return
		}
	}
}
