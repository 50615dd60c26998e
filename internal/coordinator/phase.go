package coordinator

import "fmt"

// Phase is a step of the map readiness state machine.
type Phase int

const (
	// PhaseNew: coordinator constructed, no host view yet.
	PhaseNew Phase = iota
	// PhaseCreated: host view exists, engine startup requested.
	PhaseCreated
	// PhaseInitialized: the engine handed back a live map.
	PhaseInitialized
	// PhaseStyleReady: per-kind annotation managers exist.
	PhaseStyleReady
	// PhaseLoaded: first full style application completed.
	PhaseLoaded
	// PhaseDestroyed: torn down. Every gate is closed again.
	PhaseDestroyed
)

var phaseNames = [...]string{"new", "created", "initialized", "style_ready", "loaded", "destroyed"}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// deferred is an action waiting for a phase.
type deferred struct {
	name string
	fn   func()
}

// readiness tracks the current phase and the actions waiting for later ones.
//
// readiness has no lock of its own; the Coordinator mutex guards it. Actions
// handed back by advance must be run after that mutex is released.
type readiness struct {
	phase   Phase
	waiting map[Phase][]deferred
}

func newReadiness() *readiness {
	return &readiness{waiting: make(map[Phase][]deferred)}
}

// reached reports whether the gate for p is open. After Destroyed every gate
// is closed until the map is created again.
func (r *readiness) reached(p Phase) bool {
	if r.phase == PhaseDestroyed {
		return p == PhaseDestroyed
	}
	return p != PhaseDestroyed && r.phase >= p
}

// next returns the phase advance accepts from the current one.
func (r *readiness) next() Phase {
	switch r.phase {
	case PhaseNew, PhaseDestroyed:
		return PhaseCreated
	case PhaseLoaded:
		return PhaseDestroyed
	default:
		return r.phase + 1
	}
}

// advance moves exactly one step forward to `to` and returns the actions
// that were waiting for it, in registration order. Any other transition,
// including a repeated one, is a no-op and returns ok=false.
func (r *readiness) advance(to Phase) (actions []deferred, ok bool) {
	if to == PhaseDestroyed || to != r.next() {
		return nil, false
	}
	r.phase = to
	actions = r.waiting[to]
	delete(r.waiting, to)
	return actions, true
}

// schedule registers fn to run once p is reached. Returns true, without
// registering, when the gate is already open; the caller then runs fn itself.
func (r *readiness) schedule(p Phase, name string, fn func()) (runNow bool) {
	if r.reached(p) {
		return true
	}
	r.waiting[p] = append(r.waiting[p], deferred{name: name, fn: fn})
	return false
}

// destroy closes every gate and drops every waiting action.
func (r *readiness) destroy() {
	r.phase = PhaseDestroyed
	r.waiting = make(map[Phase][]deferred)
}

// pending returns the number of actions waiting for any phase.
func (r *readiness) pending() int {
	n := 0
	for _, actions := range r.waiting {
		n += len(actions)
	}
	return n
}
