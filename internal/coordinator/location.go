package coordinator

import (
	"errors"

	"github.com/roach88/mapbridge/internal/model"
	"github.com/roach88/mapbridge/internal/render"
)

// IsMyLocationEnabled reports whether location tracking is requested.
func (c *Coordinator) IsMyLocationEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locationEnabled
}

// SetMyLocationEnabled requests location tracking. The request is stored and
// applied at Loaded. A permission fault turns tracking back off.
func (c *Coordinator) SetMyLocationEnabled(enabled bool) {
	c.mu.Lock()
	c.locationEnabled = enabled
	loaded := c.state.reached(PhaseLoaded)
	m := c.m
	c.mu.Unlock()
	if !loaded || m == nil {
		return
	}
	c.applyLocationEnabled(m, enabled)
}

func (c *Coordinator) applyLocationEnabled(m render.Map, enabled bool) {
	lc := m.LocationComponent()
	if lc == nil || !lc.Activated() {
		return
	}
	err := lc.SetEnabled(enabled)
	switch {
	case err == nil:
	case errors.Is(err, render.ErrPermissionDenied):
		c.log().Warn("location permission denied, disabling tracking", "error", err)
		c.mu.Lock()
		c.locationEnabled = false
		c.mu.Unlock()
		c.emit(EventPermissionFault, "location", err.Error())
	default:
		c.log().Warn("location update failed", "error", err)
	}
}

// MyLocation returns the last known location, or nil.
func (c *Coordinator) MyLocation() *model.Location {
	c.mu.Lock()
	m := c.m
	c.mu.Unlock()
	if m == nil {
		return nil
	}
	lc := m.LocationComponent()
	if lc == nil {
		return nil
	}
	return lc.LastKnownLocation()
}
