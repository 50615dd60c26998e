package coordinator

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/roach88/mapbridge/internal/model"
	"github.com/roach88/mapbridge/internal/render"
)

// Polygon is the handle of a filled shape. It is drawn as one fill plus one
// outline line per ring.
type Polygon struct {
	c       *Coordinator
	id      string
	fill    *primitive[render.FillSpec]
	strokes []*primitive[render.LineSpec]
	opts    model.PolygonOptions
}

func polygonFillSpec(tag string, o model.PolygonOptions) render.FillSpec {
	return render.FillSpec{
		Data:    tag,
		Polygon: o.Polygon.Clone(),
		Color:   o.FillColor.Hex(),
		Opacity: o.FillColor.Opacity(),
		SortKey: o.ZIndex,
		Hidden:  o.Hidden,
	}
}

func polygonStrokeSpec(tag string, ring orb.Ring, o model.PolygonOptions) render.LineSpec {
	return render.LineSpec{
		Data:    tag,
		Points:  orb.LineString(ring.Clone()),
		Width:   o.StrokeWidth,
		Color:   o.StrokeColor.Hex(),
		Opacity: o.StrokeColor.Opacity(),
		SortKey: o.ZIndex,
		Hidden:  o.Hidden,
	}
}

func strokeTag(id string, ring int) string {
	return fmt.Sprintf("%s/stroke%d", id, ring)
}

// AddPolygon adds a filled shape. The first ring is the outline, the rest are
// holes.
func (c *Coordinator) AddPolygon(opts model.PolygonOptions) *Polygon {
	opts.Polygon = opts.Polygon.Clone()
	p := &Polygon{c: c, id: nextTag("p", c.polygonIDs), opts: opts}
	p.fill = &primitive[render.FillSpec]{tag: p.id, spec: polygonFillSpec(p.id, opts), owner: p}
	for i, ring := range opts.Polygon {
		tag := strokeTag(p.id, i)
		p.strokes = append(p.strokes, &primitive[render.LineSpec]{
			tag: tag, spec: polygonStrokeSpec(tag, ring, opts), owner: p,
		})
	}

	c.mu.Lock()
	placements := []placement{place(c.fills, p.fill)}
	for _, s := range p.strokes {
		placements = append(placements, place(c.lines, s))
	}
	c.mu.Unlock()
	c.report(placements...)
	return p
}

func (p *Polygon) ID() string { return p.id }

// mutate updates every primitive after fn changed the options. When the
// number of rings changed, outline lines are added or removed to match.
func (p *Polygon) mutate(fn func(o *model.PolygonOptions)) {
	c := p.c
	var placements []placement
	var removed []string

	c.mu.Lock()
	if p.fill.removed {
		c.mu.Unlock()
		return
	}
	fn(&p.opts)
	p.fill.spec = polygonFillSpec(p.id, p.opts)
	c.fills.update(p.fill)

	for len(p.strokes) > len(p.opts.Polygon) {
		last := p.strokes[len(p.strokes)-1]
		p.strokes = p.strokes[:len(p.strokes)-1]
		if c.lines.remove(last) {
			removed = append(removed, last.tag)
		}
	}
	for i, ring := range p.opts.Polygon {
		tag := strokeTag(p.id, i)
		spec := polygonStrokeSpec(tag, ring, p.opts)
		if i < len(p.strokes) {
			p.strokes[i].spec = spec
			c.lines.update(p.strokes[i])
			continue
		}
		s := &primitive[render.LineSpec]{tag: tag, spec: spec, owner: p}
		p.strokes = append(p.strokes, s)
		placements = append(placements, place(c.lines, s))
	}
	c.mu.Unlock()

	for _, tag := range removed {
		c.reportRemoved(tag, true)
	}
	c.report(placements...)
}

func (p *Polygon) read() model.PolygonOptions {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	return p.opts
}

// Remove deletes the fill and every outline.
func (p *Polygon) Remove() {
	c := p.c
	c.mu.Lock()
	removed := c.fills.remove(p.fill)
	for _, s := range p.strokes {
		if c.lines.remove(s) {
			removed = true
		}
	}
	c.mu.Unlock()
	c.reportRemoved(p.id, removed)
}

// Attached reports whether the fill is live in the engine.
func (p *Polygon) Attached() bool {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	return p.fill.attached
}

// Points returns the outer ring.
func (p *Polygon) Points() orb.Ring {
	poly := p.read().Polygon
	if len(poly) == 0 {
		return nil
	}
	return poly[0].Clone()
}

// SetPoints replaces the outer ring, keeping the holes.
func (p *Polygon) SetPoints(ring orb.Ring) {
	ring = ring.Clone()
	p.mutate(func(o *model.PolygonOptions) {
		if len(o.Polygon) == 0 {
			o.Polygon = orb.Polygon{ring}
			return
		}
		o.Polygon[0] = ring
	})
}

// Holes returns the inner rings.
func (p *Polygon) Holes() []orb.Ring {
	poly := p.read().Polygon
	if len(poly) < 2 {
		return nil
	}
	return poly[1:].Clone()
}

// SetHoles replaces the inner rings.
func (p *Polygon) SetHoles(holes []orb.Ring) {
	cp := orb.Polygon(holes).Clone()
	p.mutate(func(o *model.PolygonOptions) {
		outer := orb.Ring{}
		if len(o.Polygon) > 0 {
			outer = o.Polygon[0]
		}
		o.Polygon = append(orb.Polygon{outer}, cp...)
	})
}

func (p *Polygon) FillColor() model.Color { return p.read().FillColor }

func (p *Polygon) SetFillColor(color model.Color) {
	p.mutate(func(o *model.PolygonOptions) { o.FillColor = color })
}

func (p *Polygon) StrokeColor() model.Color { return p.read().StrokeColor }

func (p *Polygon) SetStrokeColor(color model.Color) {
	p.mutate(func(o *model.PolygonOptions) { o.StrokeColor = color })
}

func (p *Polygon) StrokeWidth() float64 { return p.read().StrokeWidth }

func (p *Polygon) SetStrokeWidth(width float64) {
	p.mutate(func(o *model.PolygonOptions) { o.StrokeWidth = width })
}

func (p *Polygon) ZIndex() float64 { return p.read().ZIndex }

func (p *Polygon) SetZIndex(z float64) {
	p.mutate(func(o *model.PolygonOptions) { o.ZIndex = z })
}

func (p *Polygon) IsVisible() bool { return !p.read().Hidden }

func (p *Polygon) SetVisible(visible bool) {
	p.mutate(func(o *model.PolygonOptions) { o.Hidden = !visible })
}
