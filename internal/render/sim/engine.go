// Package sim is a deterministic, in-memory rendering engine.
//
// It implements the render contract without drawing anything and records
// every call it receives as a Call, so tests and scenarios can assert exactly
// what reached the engine and in which order. Asynchronous engine milestones
// (map ready, style loaded) only happen when the test signals them.
//
// Thread-safety: all methods are safe for concurrent use. Listeners and
// readiness callbacks are invoked without holding any internal lock, on the
// goroutine that triggered them.
package sim

import (
	"fmt"
	"strings"
	"sync"

	"github.com/paulmach/orb"

	"github.com/roach88/mapbridge/internal/model"
	"github.com/roach88/mapbridge/internal/render"
)

// Call is one recorded engine call.
type Call struct {
	Seq    int
	Op     string
	Detail string
}

func (c Call) String() string {
	if c.Detail == "" {
		return c.Op
	}
	return c.Op + " " + c.Detail
}

// Annotation kinds as used in Call ops and ClickAnnotation.
const (
	KindLine   = "line"
	KindFill   = "fill"
	KindSymbol = "symbol"
)

// Engine is the simulated engine. It hands out one view at a time; the most
// recently created view is the one signals apply to.
type Engine struct {
	mu           sync.Mutex
	calls        []Call
	view         *View
	shown        bool
	denyLocation bool
	lastLocation *model.Location
	failResubmit map[string]bool
}

// New creates an engine whose views report themselves as shown.
func New() *Engine {
	return &Engine{
		shown:        true,
		failResubmit: make(map[string]bool),
	}
}

// NewView implements render.Factory.
func (e *Engine) NewView() render.View {
	v := &View{engine: e}
	e.mu.Lock()
	e.view = v
	e.mu.Unlock()
	e.record("view.new", "")
	return v
}

func (e *Engine) record(op, detail string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, Call{Seq: len(e.calls) + 1, Op: op, Detail: detail})
}

func (e *Engine) recordf(op, format string, args ...any) {
	e.record(op, fmt.Sprintf(format, args...))
}

// Calls returns a copy of every recorded call.
func (e *Engine) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Call, len(e.calls))
	copy(out, e.calls)
	return out
}

// Ops returns every recorded call rendered as "op detail".
func (e *Engine) Ops() []string {
	calls := e.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

// OpsWithPrefix returns the rendered calls whose op starts with prefix.
func (e *Engine) OpsWithPrefix(prefix string) []string {
	var out []string
	for _, op := range e.Ops() {
		if strings.HasPrefix(op, prefix) {
			out = append(out, op)
		}
	}
	return out
}

// SetShown controls what views report from IsShown.
func (e *Engine) SetShown(shown bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shown = shown
}

// DenyLocationPermission makes enabling the location component fail.
func (e *Engine) DenyLocationPermission(deny bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.denyLocation = deny
}

// SetLastLocation sets the location returned by the location component.
func (e *Engine) SetLastLocation(loc *model.Location) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastLocation = loc
}

// FailResubmit makes Resubmit fail for one annotation kind.
func (e *Engine) FailResubmit(kind string, fail bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failResubmit[kind] = fail
}

func (e *Engine) resubmitFails(kind string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.failResubmit[kind]
}

func (e *Engine) currentView() *View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

// Map returns the live map of the current view, or nil.
func (e *Engine) Map() *Map {
	v := e.currentView()
	if v == nil {
		return nil
	}
	return v.liveMap()
}

// SignalMapReady finishes the engine startup of the current view and hands
// the map to every pending GetMapAsync callback. Returns false when there is
// no view to signal.
func (e *Engine) SignalMapReady() bool {
	v := e.currentView()
	if v == nil {
		return false
	}
	e.record("engine.map_ready", "")
	v.ready()
	return true
}

// SignalStyleLoaded finishes loading the style most recently set on the
// current map. Returns false when no style is loading.
func (e *Engine) SignalStyleLoaded() bool {
	m := e.Map()
	if m == nil {
		return false
	}
	return m.finishStyle()
}

// ClickMap simulates a tap on the map.
func (e *Engine) ClickMap(at orb.Point) {
	if m := e.Map(); m != nil {
		e.recordf("gesture.click", "%g,%g", at.Lat(), at.Lon())
		m.dispatchClick(at, false)
	}
}

// LongClickMap simulates a long press on the map.
func (e *Engine) LongClickMap(at orb.Point) {
	if m := e.Map(); m != nil {
		e.recordf("gesture.long_click", "%g,%g", at.Lat(), at.Lon())
		m.dispatchClick(at, true)
	}
}

// ClickAnnotation simulates a tap on the annotation id of kind. Returns
// whether any listener consumed it.
func (e *Engine) ClickAnnotation(kind string, id int64) bool {
	m := e.Map()
	if m == nil {
		return false
	}
	e.recordf("gesture.click_"+kind, "%d", id)
	switch kind {
	case KindLine:
		return m.lineManager().click(id)
	case KindFill:
		return m.fillManager().click(id)
	case KindSymbol:
		return m.symbolManager().click(id)
	}
	return false
}

// DragSymbol simulates dragging the symbol id to the given position.
func (e *Engine) DragSymbol(id int64, to orb.Point) {
	m := e.Map()
	if m == nil {
		return
	}
	symbols := m.symbolManager()
	if symbols == nil {
		return
	}
	e.recordf("gesture.drag", "%d to %g,%g", id, to.Lat(), to.Lon())

	symbols.mu.Lock()
	spec, ok := symbols.specs[id]
	if ok {
		spec.Position = to
		symbols.specs[id] = spec
	}
	listeners := append([]render.DragListener(nil), symbols.draggers...)
	symbols.mu.Unlock()
	if !ok {
		return
	}

	for _, l := range listeners {
		if l.Started != nil {
			l.Started(id)
		}
	}
	for _, l := range listeners {
		if l.Dragged != nil {
			l.Dragged(id, to)
		}
	}
	for _, l := range listeners {
		if l.Finished != nil {
			l.Finished(id)
		}
	}
}

// AnnotationID finds the engine id of the live annotation of kind whose
// spec carries data.
func (e *Engine) AnnotationID(kind, data string) (int64, bool) {
	m := e.Map()
	if m == nil {
		return 0, false
	}
	switch kind {
	case KindLine:
		return m.lineManager().find(data)
	case KindFill:
		return m.fillManager().find(data)
	case KindSymbol:
		return m.symbolManager().find(data)
	}
	return 0, false
}
