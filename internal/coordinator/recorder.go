package coordinator

import "sync"

// EventKind categorizes coordinator events.
type EventKind string

const (
	EventTransition       EventKind = "transition"
	EventCameraQueued     EventKind = "camera_queued"
	EventCameraReplayed   EventKind = "camera_replayed"
	EventOverlayPending   EventKind = "overlay_pending"
	EventOverlayAttached  EventKind = "overlay_attached"
	EventOverlayRemoved   EventKind = "overlay_removed"
	EventOverlaysCleared  EventKind = "overlays_cleared"
	EventBitmapQueued     EventKind = "bitmap_queued"
	EventStyleApplied     EventKind = "style_applied"
	EventCallbackFault    EventKind = "callback_fault"
	EventPermissionFault  EventKind = "permission_fault"
	EventResubmitFault    EventKind = "resubmit_fault"
	EventTransactRejected EventKind = "transact_rejected"
)

// EventKinds returns every event kind in declaration order.
func EventKinds() []EventKind {
	return []EventKind{
		EventTransition, EventCameraQueued, EventCameraReplayed,
		EventOverlayPending, EventOverlayAttached, EventOverlayRemoved, EventOverlaysCleared,
		EventBitmapQueued, EventStyleApplied,
		EventCallbackFault, EventPermissionFault, EventResubmitFault, EventTransactRejected,
	}
}

// Event is one coordinator bookkeeping step, numbered per coordinator.
type Event struct {
	Seq     int64
	Session string
	Kind    EventKind
	Subject string
	Detail  string
}

// Recorder receives coordinator events. Record is called without the
// coordinator lock held and must not call back into the coordinator.
type Recorder interface {
	Record(e Event)
}

type nopRecorder struct{}

func (nopRecorder) Record(Event) {}

// MemoryRecorder keeps events in memory.
//
// Thread-safety: safe for concurrent use.
type MemoryRecorder struct {
	mu     sync.Mutex
	events []Event
}

// Record implements Recorder.
func (r *MemoryRecorder) Record(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of every recorded event.
func (r *MemoryRecorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfKind returns the recorded events of one kind.
func (r *MemoryRecorder) OfKind(kind EventKind) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
