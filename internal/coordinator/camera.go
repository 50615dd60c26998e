package coordinator

import (
	"time"

	"github.com/paulmach/orb"

	"github.com/roach88/mapbridge/internal/model"
	"github.com/roach88/mapbridge/internal/render"
)

// CancelableCallback is notified when an animated camera transition ends.
type CancelableCallback interface {
	OnFinish()
	OnCancel()
}

// CallbackFuncs adapts plain funcs to CancelableCallback. Nil funcs are
// skipped.
type CallbackFuncs struct {
	Finish func()
	Cancel func()
}

func (f CallbackFuncs) OnFinish() {
	if f.Finish != nil {
		f.Finish()
	}
}

func (f CallbackFuncs) OnCancel() {
	if f.Cancel != nil {
		f.Cancel()
	}
}

// MoveCamera repositions the camera without animation. Before Initialized the
// command is queued and replayed in order.
func (c *Coordinator) MoveCamera(u model.CameraUpdate) {
	c.submitCamera(cameraCommand{update: u}, nil)
}

// AnimateCamera animates the camera with the engine default duration. cb, if
// non-nil, fires exactly once after the command was applied.
func (c *Coordinator) AnimateCamera(u model.CameraUpdate, cb CancelableCallback) {
	c.submitCamera(cameraCommand{update: u, animate: true}, cb)
}

// AnimateCameraWithDuration animates the camera over d.
func (c *Coordinator) AnimateCameraWithDuration(u model.CameraUpdate, d time.Duration, cb CancelableCallback) {
	c.submitCamera(cameraCommand{update: u, animate: true, duration: d}, cb)
}

func (c *Coordinator) submitCamera(cmd cameraCommand, cb CancelableCallback) {
	c.mu.Lock()
	if !c.state.reached(PhaseInitialized) {
		c.camera.push(cmd)
		queued := c.camera.Len()
		if cb != nil {
			// Runs after the queue was replayed at Initialized.
			c.state.schedule(PhaseInitialized, "camera completion", cb.OnFinish)
		}
		c.mu.Unlock()
		c.log().Debug("camera command queued", "command", cmd.String(), "queued", queued)
		c.emit(EventCameraQueued, "camera", cmd.String())
		return
	}
	m := c.m
	c.mu.Unlock()

	if cmd.animate {
		m.AnimateCamera(cmd.engineUpdate(), cmd.duration, c.completion(cb))
		return
	}
	m.MoveCamera(cmd.engineUpdate())
}

// completion wraps a caller callback so it runs behind the guard.
func (c *Coordinator) completion(cb CancelableCallback) render.Completion {
	if cb == nil {
		return nil
	}
	return CallbackFuncs{
		Finish: func() { c.guard("camera completion", cb.OnFinish) },
		Cancel: func() { c.guard("camera cancel", cb.OnCancel) },
	}
}

// replayCamera drains the camera queue into m and advances to Initialized.
// Commands submitted while replaying are queued and drained by the next
// round, so submission order holds across the transition.
func (c *Coordinator) replayCamera(m render.Map) {
	for {
		c.mu.Lock()
		cmds := c.camera.drain()
		if len(cmds) == 0 {
			actions, ok := c.state.advance(PhaseInitialized)
			c.mu.Unlock()
			if ok {
				c.finishTransition(PhaseInitialized, actions)
			}
			return
		}
		c.mu.Unlock()

		for _, cmd := range cmds {
			m.MoveCamera(cmd.engineUpdate())
			c.emit(EventCameraReplayed, "camera", cmd.String())
		}
	}
}

// StopAnimation cancels running camera transitions. Dropped before
// Initialized.
func (c *Coordinator) StopAnimation() {
	c.mu.Lock()
	m := c.m
	ready := c.state.reached(PhaseInitialized)
	c.mu.Unlock()
	if !ready || m == nil {
		return
	}
	m.CancelTransitions()
}

// zoomPreferences holds zoom and bounds constraints not yet applied to the
// engine, in engine scale. Last write wins.
type zoomPreferences struct {
	min, max  *float64
	bounds    *orb.Bound
	boundsSet bool
	scheduled bool
}

func (p zoomPreferences) apply(m render.Map) {
	if p.min != nil {
		m.SetMinZoomPreference(*p.min)
	}
	if p.max != nil {
		m.SetMaxZoomPreference(*p.max)
	}
	if p.boundsSet {
		m.SetLatLngBoundsForCameraTarget(p.bounds)
	}
}

// SetMinZoomPreference sets the minimum zoom, in caller scale.
func (c *Coordinator) SetMinZoomPreference(zoom float64) {
	z := zoom - zoomOffset
	c.setZoomPreferences(func(p *zoomPreferences) { p.min = &z })
}

// SetMaxZoomPreference sets the maximum zoom, in caller scale.
func (c *Coordinator) SetMaxZoomPreference(zoom float64) {
	z := zoom - zoomOffset
	c.setZoomPreferences(func(p *zoomPreferences) { p.max = &z })
}

// ResetMinMaxZoomPreference restores the engine zoom limits.
func (c *Coordinator) ResetMinMaxZoomPreference() {
	lo, hi := float64(engineMinZoom), engineMaxZoom
	c.setZoomPreferences(func(p *zoomPreferences) {
		p.min = &lo
		p.max = &hi
	})
}

// SetLatLngBoundsForCameraTarget constrains the camera target. nil removes
// the constraint.
func (c *Coordinator) SetLatLngBoundsForCameraTarget(bounds *orb.Bound) {
	var b *orb.Bound
	if bounds != nil {
		cp := *bounds
		b = &cp
	}
	c.setZoomPreferences(func(p *zoomPreferences) {
		p.bounds = b
		p.boundsSet = true
	})
}

func (c *Coordinator) setZoomPreferences(set func(*zoomPreferences)) {
	c.mu.Lock()
	set(&c.prefs)
	if !c.state.reached(PhaseInitialized) {
		if !c.prefs.scheduled {
			c.prefs.scheduled = true
			c.state.schedule(PhaseInitialized, "zoom preferences", c.flushZoomPreferences)
		}
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	c.flushZoomPreferences()
}

// flushZoomPreferences applies the stored preferences and forgets them.
func (c *Coordinator) flushZoomPreferences() {
	c.mu.Lock()
	prefs := c.prefs
	c.prefs = zoomPreferences{}
	m := c.m
	c.mu.Unlock()
	if m == nil {
		return
	}
	prefs.apply(m)
}
