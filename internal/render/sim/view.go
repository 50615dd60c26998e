package sim

import (
	"fmt"
	"sync"

	"github.com/paulmach/orb"

	"github.com/roach88/mapbridge/internal/render"
)

// View is the simulated embedded view.
type View struct {
	engine *Engine

	mu      sync.Mutex
	m       *Map
	waiting []func(render.Map)
	desc    string
}

func (v *View) OnCreate(saved render.SavedState) {
	if len(saved) > 0 {
		v.engine.recordf("view.create", "restored=%d", len(saved))
		return
	}
	v.engine.record("view.create", "")
}

func (v *View) OnStart()     { v.engine.record("view.start", "") }
func (v *View) OnResume()    { v.engine.record("view.resume", "") }
func (v *View) OnPause()     { v.engine.record("view.pause", "") }
func (v *View) OnStop()      { v.engine.record("view.stop", "") }
func (v *View) OnLowMemory() { v.engine.record("view.low_memory", "") }

func (v *View) OnDestroy() {
	v.engine.record("view.destroy", "")
	v.mu.Lock()
	v.waiting = nil
	v.mu.Unlock()
}

// OnSaveInstanceState serializes the camera of the live map, if any.
func (v *View) OnSaveInstanceState() render.SavedState {
	v.engine.record("view.save", "")
	state := render.SavedState{}
	if m := v.liveMap(); m != nil {
		state["camera"] = m.CameraPosition().String()
	}
	return state
}

func (v *View) GetMapAsync(ready func(render.Map)) {
	v.engine.record("view.get_map_async", "")
	v.mu.Lock()
	m := v.m
	if m == nil {
		v.waiting = append(v.waiting, ready)
	}
	v.mu.Unlock()
	if m != nil {
		ready(m)
	}
}

func (v *View) IsShown() bool {
	v.engine.mu.Lock()
	defer v.engine.mu.Unlock()
	return v.engine.shown
}

func (v *View) SetContentDescription(desc string) {
	v.mu.Lock()
	v.desc = desc
	v.mu.Unlock()
	v.engine.record("view.content_description", desc)
}

// ContentDescription returns the last description set.
func (v *View) ContentDescription() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.desc
}

func (v *View) OpenPopup(content string, at orb.Point) render.Popup {
	v.engine.recordf("popup.open", "%s @%g,%g", content, at.Lat(), at.Lon())
	return &Popup{engine: v.engine}
}

func (v *View) liveMap() *Map {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.m
}

func (v *View) ready() {
	v.mu.Lock()
	if v.m == nil {
		v.m = newMap(v.engine)
	}
	m := v.m
	waiting := v.waiting
	v.waiting = nil
	v.mu.Unlock()

	for _, fn := range waiting {
		fn(m)
	}
}

// Popup is a simulated detail popup.
type Popup struct {
	engine *Engine
	mu     sync.Mutex
	closed bool
}

func (p *Popup) Update(at orb.Point) {
	p.engine.record("popup.update", fmt.Sprintf("%g,%g", at.Lat(), at.Lon()))
}

func (p *Popup) Close() {
	p.mu.Lock()
	already := p.closed
	p.closed = true
	p.mu.Unlock()
	if !already {
		p.engine.record("popup.close", "")
	}
}
