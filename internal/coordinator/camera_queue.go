package coordinator

import (
	"fmt"
	"time"

	"github.com/roach88/mapbridge/internal/model"
)

// zoomOffset converts between the caller zoom scale and the engine scale:
// caller = engine + zoomOffset.
const zoomOffset = 1

// Engine-scale zoom limits restored by ResetMinMaxZoomPreference.
const (
	engineMinZoom = 0
	engineMaxZoom = 25.5
)

// Engine-scale zoom levels reported when no map is available.
const (
	fallbackMinZoom = 0
	fallbackMaxZoom = 20
)

// cameraCommand is one buffered camera request, in caller zoom scale.
type cameraCommand struct {
	update   model.CameraUpdate
	animate  bool
	duration time.Duration
}

func (c cameraCommand) String() string {
	if c.animate {
		return fmt.Sprintf("animate %s", c.update)
	}
	return fmt.Sprintf("move %s", c.update)
}

// engineUpdate returns the update converted to the engine zoom scale.
func (c cameraCommand) engineUpdate() model.CameraUpdate {
	return c.update.Shifted(-zoomOffset)
}

// commandQueue is the ordered camera command queue.
//
// Thread-safety: not safe on its own; guarded by the Coordinator mutex.
type commandQueue struct {
	commands []cameraCommand
}

// push appends a command in submission order.
func (q *commandQueue) push(cmd cameraCommand) {
	q.commands = append(q.commands, cmd)
}

// drain returns every queued command in FIFO order and empties the queue.
func (q *commandQueue) drain() []cameraCommand {
	out := q.commands
	q.commands = nil
	return out
}

// Len returns the number of queued commands.
func (q *commandQueue) Len() int {
	return len(q.commands)
}

func (q *commandQueue) clear() {
	q.commands = nil
}
