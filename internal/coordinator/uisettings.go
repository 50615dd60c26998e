package coordinator

import (
	"sync"

	"github.com/roach88/mapbridge/internal/model"
	"github.com/roach88/mapbridge/internal/render"
)

// UISettings forwards on-map control settings to the engine. Changes made
// before Initialized are applied in order once the map exists.
type UISettings struct {
	c *Coordinator
}

// UISettings returns the settings delegate.
func (c *Coordinator) UISettings() *UISettings {
	return c.uiDelegate
}

func (u *UISettings) update(name string, fn func(s *model.UISettings)) {
	u.c.afterInitialize(name, func(m render.Map) { m.UpdateUISettings(fn) })
}

// Current returns the engine settings, or the defaults before Initialized.
func (u *UISettings) Current() model.UISettings {
	u.c.mu.Lock()
	m := u.c.m
	u.c.mu.Unlock()
	if m == nil {
		return model.DefaultUISettings()
	}
	return m.UISettings()
}

func (u *UISettings) SetCompassEnabled(enabled bool) {
	u.update("ui compass", func(s *model.UISettings) { s.CompassEnabled = enabled })
}

func (u *UISettings) SetRotateGesturesEnabled(enabled bool) {
	u.update("ui rotate gestures", func(s *model.UISettings) { s.RotateGesturesEnabled = enabled })
}

func (u *UISettings) SetScrollGesturesEnabled(enabled bool) {
	u.update("ui scroll gestures", func(s *model.UISettings) { s.ScrollGesturesEnabled = enabled })
}

func (u *UISettings) SetTiltGesturesEnabled(enabled bool) {
	u.update("ui tilt gestures", func(s *model.UISettings) { s.TiltGesturesEnabled = enabled })
}

func (u *UISettings) SetZoomGesturesEnabled(enabled bool) {
	u.update("ui zoom gestures", func(s *model.UISettings) { s.ZoomGesturesEnabled = enabled })
}

func (u *UISettings) SetZoomControlsEnabled(enabled bool) {
	u.update("ui zoom controls", func(s *model.UISettings) { s.ZoomControlsEnabled = enabled })
}

func (u *UISettings) SetMyLocationButtonEnabled(enabled bool) {
	u.update("ui location button", func(s *model.UISettings) { s.MyLocationButtonEnable = enabled })
}

// SetAllGesturesEnabled toggles every gesture at once.
func (u *UISettings) SetAllGesturesEnabled(enabled bool) {
	u.update("ui all gestures", func(s *model.UISettings) {
		s.RotateGesturesEnabled = enabled
		s.ScrollGesturesEnabled = enabled
		s.TiltGesturesEnabled = enabled
		s.ZoomGesturesEnabled = enabled
	})
}

// SetWatermarkEnabled shows or hides the engine logo.
func (c *Coordinator) SetWatermarkEnabled(enabled bool) {
	c.uiDelegate.update("watermark", func(s *model.UISettings) { s.LogoEnabled = enabled })
}

// Margins around the padded area for engine controls, in pixels.
const (
	controlMargin    = 4
	attributionInset = 92
)

// SetPadding reserves space at the map edges. The camera padding moves and
// the engine controls follow the padded area.
func (c *Coordinator) SetPadding(left, top, right, bottom float64) {
	c.afterInitialize("padding", func(m render.Map) {
		m.MoveCamera(model.PaddingTo(left, top, right, bottom))
		m.UpdateUISettings(func(s *model.UISettings) {
			s.LogoMargins = model.Insets{
				Left: left + controlMargin, Top: top + controlMargin,
				Right: right + controlMargin, Bottom: bottom + controlMargin,
			}
			s.CompassMargins = model.Insets{
				Left: left + controlMargin, Top: top + controlMargin,
				Right: right + controlMargin, Bottom: bottom + controlMargin,
			}
			s.AttributionMargins = model.Insets{
				Left: left + attributionInset, Top: top + controlMargin,
				Right: right + controlMargin, Bottom: bottom + controlMargin,
			}
		})
	})
}

// WatermarkTag is the view tag callers use to find the watermark placeholder.
const WatermarkTag = "GoogleWatermark"

// LayoutRule is a relative-layout rule a caller applies to the watermark.
type LayoutRule int

const (
	AlignParentTop LayoutRule = iota + 1
	AlignParentBottom
	AlignParentLeft
	AlignParentRight
	AlignParentStart
	AlignParentEnd
)

var ruleGravity = map[LayoutRule]model.Gravity{
	AlignParentTop:    model.GravityTop,
	AlignParentBottom: model.GravityBottom,
	AlignParentLeft:   model.GravityLeft,
	AlignParentRight:  model.GravityRight,
	AlignParentStart:  model.GravityStart,
	AlignParentEnd:    model.GravityEnd,
}

// Watermark is a placeholder standing in for the logo view. Layout rules
// applied to it move the engine logo.
type Watermark struct {
	c *Coordinator

	mu    sync.Mutex
	rules []LayoutRule
}

// AddRule applies a layout rule and moves the logo to the resulting gravity.
func (w *Watermark) AddRule(rule LayoutRule) {
	w.mu.Lock()
	w.rules = append(w.rules, rule)
	gravity := model.Gravity(0)
	for _, r := range w.rules {
		gravity |= ruleGravity[r]
	}
	w.mu.Unlock()

	w.c.mu.Lock()
	m := w.c.m
	w.c.mu.Unlock()
	if m == nil {
		return
	}
	m.UpdateUISettings(func(s *model.UISettings) { s.LogoGravity = gravity })
}

// Container is the host view hierarchy around the engine view.
type Container struct {
	c *Coordinator

	mu        sync.Mutex
	children  []render.View
	watermark *Watermark
}

// View returns the host container.
func (c *Coordinator) View() *Container {
	return c.container
}

func (ct *Container) attach(v render.View) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.children = append(ct.children, v)
}

func (ct *Container) detach(v render.View) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	for i, child := range ct.children {
		if child == v {
			ct.children = append(ct.children[:i], ct.children[i+1:]...)
			return
		}
	}
}

// Children returns the number of attached engine views.
func (ct *Container) Children() int {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return len(ct.children)
}

// FindViewWithTag returns the watermark placeholder for WatermarkTag and nil
// for any other tag.
func (ct *Container) FindViewWithTag(tag string) *Watermark {
	if tag != WatermarkTag {
		return nil
	}
	ct.mu.Lock()
	defer ct.mu.Unlock()
	if ct.watermark == nil {
		ct.watermark = &Watermark{c: ct.c}
	}
	return ct.watermark
}

// FindViewByID always returns nil; the engine view exposes no ids.
func (ct *Container) FindViewByID(id int) *Watermark {
	return nil
}
