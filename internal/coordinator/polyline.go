package coordinator

import (
	"github.com/paulmach/orb"

	"github.com/roach88/mapbridge/internal/model"
	"github.com/roach88/mapbridge/internal/render"
)

// Polyline is the handle of a line overlay. It is valid before the engine is
// ready; changes made while pending are applied on attach.
type Polyline struct {
	c    *Coordinator
	id   string
	line *primitive[render.LineSpec]
	opts model.PolylineOptions
}

func polylineSpec(tag string, o model.PolylineOptions) render.LineSpec {
	return render.LineSpec{
		Data:    tag,
		Points:  o.Points.Clone(),
		Width:   o.Width,
		Color:   o.Color.Hex(),
		Opacity: o.Color.Opacity(),
		SortKey: o.ZIndex,
		Hidden:  o.Hidden,
	}
}

// AddPolyline adds a line overlay. The line is attached immediately when the
// line manager exists and queued otherwise.
func (c *Coordinator) AddPolyline(opts model.PolylineOptions) *Polyline {
	opts.Points = opts.Points.Clone()
	p := &Polyline{c: c, id: nextTag("l", c.lineIDs), opts: opts}
	p.line = &primitive[render.LineSpec]{tag: p.id, spec: polylineSpec(p.id, opts), owner: p}

	c.mu.Lock()
	pl := place(c.lines, p.line)
	c.mu.Unlock()
	c.report(pl)
	return p
}

func (p *Polyline) ID() string { return p.id }

func (p *Polyline) mutate(fn func(o *model.PolylineOptions)) {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	if p.line.removed {
		return
	}
	fn(&p.opts)
	p.line.spec = polylineSpec(p.id, p.opts)
	p.c.lines.update(p.line)
}

func (p *Polyline) read() model.PolylineOptions {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	return p.opts
}

// Remove deletes the line from the engine or the pending list. Repeated
// calls are ignored.
func (p *Polyline) Remove() {
	p.c.mu.Lock()
	removed := p.c.lines.remove(p.line)
	p.c.mu.Unlock()
	p.c.reportRemoved(p.id, removed)
}

// Attached reports whether the line is live in the engine.
func (p *Polyline) Attached() bool {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	return p.line.attached
}

func (p *Polyline) Points() orb.LineString { return p.read().Points.Clone() }

func (p *Polyline) SetPoints(points orb.LineString) {
	points = points.Clone()
	p.mutate(func(o *model.PolylineOptions) { o.Points = points })
}

func (p *Polyline) Width() float64 { return p.read().Width }

func (p *Polyline) SetWidth(width float64) {
	p.mutate(func(o *model.PolylineOptions) { o.Width = width })
}

func (p *Polyline) Color() model.Color { return p.read().Color }

func (p *Polyline) SetColor(color model.Color) {
	p.mutate(func(o *model.PolylineOptions) { o.Color = color })
}

func (p *Polyline) ZIndex() float64 { return p.read().ZIndex }

func (p *Polyline) SetZIndex(z float64) {
	p.mutate(func(o *model.PolylineOptions) { o.ZIndex = z })
}

func (p *Polyline) IsVisible() bool { return !p.read().Hidden }

func (p *Polyline) SetVisible(visible bool) {
	p.mutate(func(o *model.PolylineOptions) { o.Hidden = !visible })
}

func (p *Polyline) IsClickable() bool { return p.read().Clickable }

func (p *Polyline) SetClickable(clickable bool) {
	p.mutate(func(o *model.PolylineOptions) { o.Clickable = clickable })
}

func (p *Polyline) IsGeodesic() bool { return p.read().Geodesic }

// SetGeodesic is stored and reported back; lines are always drawn straight.
func (p *Polyline) SetGeodesic(geodesic bool) {
	p.mutate(func(o *model.PolylineOptions) { o.Geodesic = geodesic })
}
