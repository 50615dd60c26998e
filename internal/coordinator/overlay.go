package coordinator

import "fmt"

func nextTag(prefix string, seq *Sequence) string {
	return fmt.Sprintf("%s%d", prefix, seq.Next()-1)
}

// placement records where each primitive of a new overlay went, so events
// can be emitted once the lock is released.
type placement struct {
	kind     Kind
	tag      string
	attached bool
}

// place adds p to its kind index. Must be called with c.mu held.
func place[S any](x *kindIndex[S], p *primitive[S]) placement {
	return placement{kind: x.kind, tag: p.tag, attached: x.add(p)}
}

// report logs and records placements. Must be called without c.mu held.
func (c *Coordinator) report(placements ...placement) {
	for _, pl := range placements {
		if pl.attached {
			c.emitf(EventOverlayAttached, pl.tag, "kind=%s", pl.kind)
			continue
		}
		c.log().Debug("overlay pending", "overlay", pl.tag, "kind", pl.kind.String())
		c.emitf(EventOverlayPending, pl.tag, "kind=%s", pl.kind)
	}
}

// reportAttached records primitives attached by a manager binding.
func reportAttached[S any](c *Coordinator, kind Kind, attached []*primitive[S]) {
	for _, p := range attached {
		c.emitf(EventOverlayAttached, p.tag, "kind=%s", kind)
	}
}

func (c *Coordinator) reportRemoved(tag string, removed bool) {
	if removed {
		c.emit(EventOverlayRemoved, tag, "")
	}
}

// overlayOf resolves the owner of a live primitive.
func overlayOf[S any, T any](c *Coordinator, x *kindIndex[S], id int64) (T, bool) {
	var zero T
	c.mu.Lock()
	p, ok := x.lookup(id)
	c.mu.Unlock()
	if !ok {
		return zero, false
	}
	owner, ok := p.owner.(T)
	return owner, ok
}
