package coordinator

import (
	"strconv"
	"strings"
	"sync"

	"github.com/paulmach/orb/maptile"

	"github.com/roach88/mapbridge/internal/model"
)

// GroundOverlay is the handle of a ground overlay. The engine has no ground
// overlay support: options are stored and reported back, nothing is drawn.
type GroundOverlay struct {
	id string

	mu      sync.Mutex
	opts    model.GroundOverlayOptions
	removed bool
}

// AddGroundOverlay returns an inert ground overlay handle.
func (c *Coordinator) AddGroundOverlay(opts model.GroundOverlayOptions) *GroundOverlay {
	g := &GroundOverlay{id: nextTag("g", c.groundIDs), opts: opts}
	c.log().Debug("unimplemented method: add ground overlay", "overlay", g.id)
	return g
}

func (g *GroundOverlay) ID() string { return g.id }

func (g *GroundOverlay) Options() model.GroundOverlayOptions {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.opts
}

func (g *GroundOverlay) SetTransparency(t float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.opts.Transparency = t
}

func (g *GroundOverlay) SetVisible(visible bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.opts.Hidden = !visible
}

func (g *GroundOverlay) Remove() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removed = true
}

func (g *GroundOverlay) Removed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.removed
}

// TileOverlay is the handle of a custom tile layer. Like GroundOverlay it is
// not rendered.
type TileOverlay struct {
	id string

	mu      sync.Mutex
	opts    model.TileOverlayOptions
	removed bool
}

// AddTileOverlay returns an inert tile overlay handle.
func (c *Coordinator) AddTileOverlay(opts model.TileOverlayOptions) *TileOverlay {
	t := &TileOverlay{id: nextTag("t", c.tileIDs), opts: opts}
	c.log().Debug("unimplemented method: add tile overlay", "overlay", t.id)
	return t
}

func (t *TileOverlay) ID() string { return t.id }

func (t *TileOverlay) Options() model.TileOverlayOptions {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.opts
}

// TileURL expands the {x}, {y} and {z} placeholders of the URL template.
func (t *TileOverlay) TileURL(tile maptile.Tile) string {
	t.mu.Lock()
	template := t.opts.URLTemplate
	t.mu.Unlock()
	return strings.NewReplacer(
		"{x}", strconv.FormatUint(uint64(tile.X), 10),
		"{y}", strconv.FormatUint(uint64(tile.Y), 10),
		"{z}", strconv.FormatUint(uint64(tile.Z), 10),
	).Replace(template)
}

// ClearTileCache is accepted and ignored.
func (t *TileOverlay) ClearTileCache() {}

func (t *TileOverlay) SetVisible(visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.opts.Hidden = !visible
}

func (t *TileOverlay) Remove() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removed = true
}

func (t *TileOverlay) Removed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.removed
}
