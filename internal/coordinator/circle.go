package coordinator

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"

	"github.com/roach88/mapbridge/internal/model"
	"github.com/roach88/mapbridge/internal/render"
)

// circleSegments is the number of vertices approximating a circle.
const circleSegments = 72

// Circle is the handle of a circle overlay, drawn as a fill for the area
// plus a line for the outline.
type Circle struct {
	c       *Coordinator
	id      string
	fill    *primitive[render.FillSpec]
	outline *primitive[render.LineSpec]
	opts    model.CircleOptions
	tag     any
}

// circleRing approximates the circle of radius meters around center with a
// closed geodesic ring.
func circleRing(center orb.Point, radius float64) orb.Ring {
	ring := make(orb.Ring, 0, circleSegments+1)
	for i := 0; i < circleSegments; i++ {
		bearing := float64(i) * 360 / circleSegments
		ring = append(ring, geo.PointAtBearingAndDistance(center, bearing, radius))
	}
	return append(ring, ring[0])
}

func circleFillSpec(tag string, ring orb.Ring, o model.CircleOptions) render.FillSpec {
	return render.FillSpec{
		Data:    tag,
		Polygon: orb.Polygon{ring},
		Color:   o.FillColor.Hex(),
		Opacity: o.FillColor.Opacity(),
		SortKey: o.ZIndex,
		Hidden:  o.Hidden,
	}
}

func circleOutlineSpec(tag string, ring orb.Ring, pattern string, o model.CircleOptions) render.LineSpec {
	return render.LineSpec{
		Data:    tag,
		Points:  orb.LineString(ring.Clone()),
		Width:   o.StrokeWidth,
		Color:   o.StrokeColor.Hex(),
		Opacity: o.StrokeColor.Opacity(),
		Pattern: pattern,
		SortKey: o.ZIndex,
		Hidden:  o.Hidden,
	}
}

// AddCircle adds a circle overlay. Click events reach the circle click
// listener only while the circle is clickable.
func (c *Coordinator) AddCircle(opts model.CircleOptions) *Circle {
	ci := &Circle{c: c, id: nextTag("c", c.circleIDs), opts: opts}
	ring := circleRing(opts.Center, opts.Radius)

	placements := func() []placement {
		c.mu.Lock()
		defer c.mu.Unlock()
		pattern := c.registerPatternLocked(opts.StrokeColor, opts.StrokeWidth, opts.StrokePattern)
		ci.fill = &primitive[render.FillSpec]{tag: ci.id, spec: circleFillSpec(ci.id, ring, opts), owner: ci}
		outlineTag := ci.id + "/stroke"
		ci.outline = &primitive[render.LineSpec]{
			tag: outlineTag, spec: circleOutlineSpec(outlineTag, ring, pattern, opts), owner: ci,
		}
		return []placement{place(c.fills, ci.fill), place(c.lines, ci.outline)}
	}()
	c.report(placements...)
	return ci
}

func (ci *Circle) ID() string { return ci.id }

func (ci *Circle) mutate(fn func(o *model.CircleOptions)) {
	c := ci.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if ci.fill.removed && ci.outline.removed {
		return
	}
	fn(&ci.opts)
	ring := circleRing(ci.opts.Center, ci.opts.Radius)
	pattern := c.registerPatternLocked(ci.opts.StrokeColor, ci.opts.StrokeWidth, ci.opts.StrokePattern)
	ci.fill.spec = circleFillSpec(ci.id, ring, ci.opts)
	ci.outline.spec = circleOutlineSpec(ci.outline.tag, ring, pattern, ci.opts)
	c.fills.update(ci.fill)
	c.lines.update(ci.outline)
}

func (ci *Circle) read() model.CircleOptions {
	ci.c.mu.Lock()
	defer ci.c.mu.Unlock()
	return ci.opts
}

// Remove deletes the fill and the outline.
func (ci *Circle) Remove() {
	c := ci.c
	c.mu.Lock()
	removedFill := c.fills.remove(ci.fill)
	removedLine := c.lines.remove(ci.outline)
	c.mu.Unlock()
	c.reportRemoved(ci.id, removedFill || removedLine)
}

// Attached reports whether the fill is live in the engine.
func (ci *Circle) Attached() bool {
	ci.c.mu.Lock()
	defer ci.c.mu.Unlock()
	return ci.fill.attached
}

func (ci *Circle) Center() orb.Point { return ci.read().Center }

func (ci *Circle) SetCenter(center orb.Point) {
	ci.mutate(func(o *model.CircleOptions) { o.Center = center })
}

// Radius returns the radius in meters.
func (ci *Circle) Radius() float64 { return ci.read().Radius }

func (ci *Circle) SetRadius(meters float64) {
	ci.mutate(func(o *model.CircleOptions) { o.Radius = meters })
}

func (ci *Circle) FillColor() model.Color { return ci.read().FillColor }

func (ci *Circle) SetFillColor(color model.Color) {
	ci.mutate(func(o *model.CircleOptions) { o.FillColor = color })
}

func (ci *Circle) StrokeColor() model.Color { return ci.read().StrokeColor }

func (ci *Circle) SetStrokeColor(color model.Color) {
	ci.mutate(func(o *model.CircleOptions) { o.StrokeColor = color })
}

func (ci *Circle) StrokeWidth() float64 { return ci.read().StrokeWidth }

func (ci *Circle) SetStrokeWidth(width float64) {
	ci.mutate(func(o *model.CircleOptions) { o.StrokeWidth = width })
}

// SetStrokePattern sets a dash pattern for the outline. nil draws it solid.
func (ci *Circle) SetStrokePattern(pattern []model.PatternItem) {
	cp := append([]model.PatternItem(nil), pattern...)
	ci.mutate(func(o *model.CircleOptions) { o.StrokePattern = cp })
}

func (ci *Circle) ZIndex() float64 { return ci.read().ZIndex }

func (ci *Circle) SetZIndex(z float64) {
	ci.mutate(func(o *model.CircleOptions) { o.ZIndex = z })
}

func (ci *Circle) IsVisible() bool { return !ci.read().Hidden }

func (ci *Circle) SetVisible(visible bool) {
	ci.mutate(func(o *model.CircleOptions) { o.Hidden = !visible })
}

func (ci *Circle) IsClickable() bool { return ci.read().Clickable }

func (ci *Circle) SetClickable(clickable bool) {
	ci.mutate(func(o *model.CircleOptions) { o.Clickable = clickable })
}

// Tag returns the caller value attached with SetTag.
func (ci *Circle) Tag() any {
	ci.c.mu.Lock()
	defer ci.c.mu.Unlock()
	return ci.tag
}

func (ci *Circle) SetTag(tag any) {
	ci.c.mu.Lock()
	defer ci.c.mu.Unlock()
	ci.tag = tag
}
