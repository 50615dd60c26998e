package coordinator

import (
	"slices"

	"github.com/roach88/mapbridge/internal/render"
)

// Kind names an engine annotation kind.
type Kind int

const (
	KindLine Kind = iota + 1
	KindFill
	KindSymbol
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindFill:
		return "fill"
	case KindSymbol:
		return "symbol"
	default:
		return "unknown"
	}
}

// Kinds lists every annotation kind in attach order.
func Kinds() []Kind {
	return []Kind{KindFill, KindLine, KindSymbol}
}

// primitive is one engine-level annotation of an overlay. A primitive is in
// exactly one of three states: pending (queued, no engine id), live (engine
// id assigned, present in the live index) or removed.
type primitive[S any] struct {
	tag      string
	spec     S
	attached bool
	removed  bool
	engineID int64

	// owner is the overlay handle that click and drag events route to.
	owner any
}

// kindIndex holds the pending list and live index of one annotation kind.
//
// All methods must be called with the Coordinator mutex held. Engine manager
// calls made here (Create, Update, Delete) must not call back into the
// coordinator.
type kindIndex[S any] struct {
	kind    Kind
	manager render.Manager[S]
	pending []*primitive[S]
	live    map[int64]*primitive[S]
}

func newKindIndex[S any](kind Kind) *kindIndex[S] {
	return &kindIndex[S]{kind: kind, live: make(map[int64]*primitive[S])}
}

// add attaches p when the manager exists and queues it otherwise. Returns
// whether p was attached.
func (x *kindIndex[S]) add(p *primitive[S]) bool {
	if x.manager == nil {
		x.pending = append(x.pending, p)
		return false
	}
	x.attach(p)
	return true
}

func (x *kindIndex[S]) attach(p *primitive[S]) {
	p.engineID = x.manager.Create(p.spec)
	p.attached = true
	x.live[p.engineID] = p
}

// bind installs the manager and attaches every pending primitive in
// submission order. The pending list is empty afterwards.
func (x *kindIndex[S]) bind(m render.Manager[S]) []*primitive[S] {
	x.manager = m
	drained := x.pending
	x.pending = nil
	for _, p := range drained {
		x.attach(p)
	}
	return drained
}

// update pushes the current spec of a live primitive to the engine. Pending
// primitives pick up their spec when attached.
func (x *kindIndex[S]) update(p *primitive[S]) {
	if p.attached && x.manager != nil {
		x.manager.Update(p.engineID, p.spec)
	}
}

// remove deletes p from the engine or from the pending list. Removing twice
// is a no-op; returns whether anything was removed.
func (x *kindIndex[S]) remove(p *primitive[S]) bool {
	if p.removed {
		return false
	}
	p.removed = true
	if p.attached {
		p.attached = false
		delete(x.live, p.engineID)
		if x.manager != nil {
			x.manager.Delete(p.engineID)
		}
		return true
	}
	if i := slices.Index(x.pending, p); i >= 0 {
		x.pending = slices.Delete(x.pending, i, i+1)
		return true
	}
	return false
}

// clearLive deletes every live primitive, in engine id order. Pending
// primitives are left untouched. Returns the number deleted.
func (x *kindIndex[S]) clearLive() int {
	ids := make([]int64, 0, len(x.live))
	for id := range x.live {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		p := x.live[id]
		p.attached = false
		p.removed = true
		if x.manager != nil {
			x.manager.Delete(id)
		}
	}
	x.live = make(map[int64]*primitive[S])
	return len(ids)
}

func (x *kindIndex[S]) lookup(id int64) (*primitive[S], bool) {
	p, ok := x.live[id]
	return p, ok
}

// release forgets the manager and every primitive, returning the manager so
// the caller can destroy it outside the lock.
func (x *kindIndex[S]) release() render.Manager[S] {
	m := x.manager
	for _, p := range x.live {
		p.attached = false
		p.removed = true
	}
	for _, p := range x.pending {
		p.removed = true
	}
	x.manager = nil
	x.pending = nil
	x.live = make(map[int64]*primitive[S])
	return m
}

func (x *kindIndex[S]) counts() (pending, live int) {
	return len(x.pending), len(x.live)
}
