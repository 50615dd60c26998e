package coordinator

import (
	"github.com/paulmach/orb"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/mapbridge/internal/model"
	"github.com/roach88/mapbridge/internal/render"
)

// Marker is the handle of a point marker, drawn as one symbol.
type Marker struct {
	c      *Coordinator
	id     string
	symbol *primitive[render.SymbolSpec]
	opts   model.MarkerOptions
	tag    any
}

func markerSpec(tag string, o model.MarkerOptions) render.SymbolSpec {
	icon := model.DefaultMarkerIcon.Name
	if o.Icon != nil {
		icon = o.Icon.Name
	}
	return render.SymbolSpec{
		Data:      tag,
		Position:  o.Position,
		Icon:      icon,
		AnchorU:   o.AnchorU,
		AnchorV:   o.AnchorV,
		Rotation:  o.Rotation,
		Opacity:   o.Alpha,
		SortKey:   o.ZIndex,
		Draggable: o.Draggable,
		Hidden:    o.Hidden,
	}
}

// normalizeText puts caller text into NFC so titles compare and render
// consistently.
func normalizeText(s string) string {
	return norm.NFC.String(s)
}

// AddMarker adds a point marker. A custom icon image is registered as a
// bitmap under the icon name.
func (c *Coordinator) AddMarker(opts model.MarkerOptions) *Marker {
	opts.Title = normalizeText(opts.Title)
	opts.Snippet = normalizeText(opts.Snippet)
	mk := &Marker{c: c, id: nextTag("m", c.markerIDs), opts: opts}
	mk.symbol = &primitive[render.SymbolSpec]{tag: mk.id, spec: markerSpec(mk.id, opts), owner: mk}

	c.mu.Lock()
	if opts.Icon != nil && opts.Icon.Image != nil {
		c.registerBitmapLocked(opts.Icon.Name, opts.Icon.Image)
	}
	pl := place(c.symbols, mk.symbol)
	c.mu.Unlock()
	c.report(pl)
	return mk
}

func (mk *Marker) ID() string { return mk.id }

func (mk *Marker) mutate(fn func(o *model.MarkerOptions)) {
	mk.c.mu.Lock()
	defer mk.c.mu.Unlock()
	if mk.symbol.removed {
		return
	}
	fn(&mk.opts)
	mk.symbol.spec = markerSpec(mk.id, mk.opts)
	mk.c.symbols.update(mk.symbol)
}

func (mk *Marker) read() model.MarkerOptions {
	mk.c.mu.Lock()
	defer mk.c.mu.Unlock()
	return mk.opts
}

// dragged records a position the engine already moved the symbol to.
func (mk *Marker) dragged(at orb.Point) {
	mk.c.mu.Lock()
	defer mk.c.mu.Unlock()
	mk.opts.Position = at
	mk.symbol.spec.Position = at
}

// Remove deletes the marker and closes its info window.
func (mk *Marker) Remove() {
	c := mk.c
	c.mu.Lock()
	removed := c.symbols.remove(mk.symbol)
	c.mu.Unlock()
	mk.HideInfoWindow()
	c.reportRemoved(mk.id, removed)
}

// Attached reports whether the symbol is live in the engine.
func (mk *Marker) Attached() bool {
	mk.c.mu.Lock()
	defer mk.c.mu.Unlock()
	return mk.symbol.attached
}

func (mk *Marker) Position() orb.Point { return mk.read().Position }

func (mk *Marker) SetPosition(at orb.Point) {
	mk.mutate(func(o *model.MarkerOptions) { o.Position = at })
	mk.c.refreshInfoWindow(mk)
}

func (mk *Marker) Title() string { return mk.read().Title }

func (mk *Marker) SetTitle(title string) {
	title = normalizeText(title)
	mk.mutate(func(o *model.MarkerOptions) { o.Title = title })
}

func (mk *Marker) Snippet() string { return mk.read().Snippet }

func (mk *Marker) SetSnippet(snippet string) {
	snippet = normalizeText(snippet)
	mk.mutate(func(o *model.MarkerOptions) { o.Snippet = snippet })
}

// SetIcon changes the icon. nil restores the default marker image.
func (mk *Marker) SetIcon(icon *model.BitmapDescriptor) {
	if icon != nil && icon.Image != nil {
		mk.c.mu.Lock()
		mk.c.registerBitmapLocked(icon.Name, icon.Image)
		mk.c.mu.Unlock()
	}
	mk.mutate(func(o *model.MarkerOptions) { o.Icon = icon })
}

func (mk *Marker) SetAnchor(u, v float64) {
	mk.mutate(func(o *model.MarkerOptions) {
		o.AnchorU = u
		o.AnchorV = v
	})
}

func (mk *Marker) Rotation() float64 { return mk.read().Rotation }

func (mk *Marker) SetRotation(degrees float64) {
	mk.mutate(func(o *model.MarkerOptions) { o.Rotation = degrees })
}

func (mk *Marker) Alpha() float64 { return mk.read().Alpha }

func (mk *Marker) SetAlpha(alpha float64) {
	mk.mutate(func(o *model.MarkerOptions) { o.Alpha = alpha })
}

func (mk *Marker) ZIndex() float64 { return mk.read().ZIndex }

func (mk *Marker) SetZIndex(z float64) {
	mk.mutate(func(o *model.MarkerOptions) { o.ZIndex = z })
}

func (mk *Marker) IsDraggable() bool { return mk.read().Draggable }

func (mk *Marker) SetDraggable(draggable bool) {
	mk.mutate(func(o *model.MarkerOptions) { o.Draggable = draggable })
}

func (mk *Marker) IsFlat() bool { return mk.read().Flat }

// SetFlat is stored and reported back; symbols always face the viewer.
func (mk *Marker) SetFlat(flat bool) {
	mk.mutate(func(o *model.MarkerOptions) { o.Flat = flat })
}

func (mk *Marker) IsVisible() bool { return !mk.read().Hidden }

func (mk *Marker) SetVisible(visible bool) {
	mk.mutate(func(o *model.MarkerOptions) { o.Hidden = !visible })
	if !visible {
		mk.HideInfoWindow()
	}
}

// Tag returns the caller value attached with SetTag.
func (mk *Marker) Tag() any {
	mk.c.mu.Lock()
	defer mk.c.mu.Unlock()
	return mk.tag
}

func (mk *Marker) SetTag(tag any) {
	mk.c.mu.Lock()
	defer mk.c.mu.Unlock()
	mk.tag = tag
}

// ShowInfoWindow opens the info window for this marker, replacing any other.
func (mk *Marker) ShowInfoWindow() {
	mk.c.showInfoWindow(mk)
}

// HideInfoWindow closes this marker's info window if it is open.
func (mk *Marker) HideInfoWindow() {
	mk.c.closeInfoWindow(mk)
}

// IsInfoWindowShown reports whether this marker's info window is open.
func (mk *Marker) IsInfoWindowShown() bool {
	mk.c.mu.Lock()
	defer mk.c.mu.Unlock()
	return mk.c.popup != nil && mk.c.popup.marker == mk
}
