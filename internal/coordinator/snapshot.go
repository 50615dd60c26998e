package coordinator

import "image"

// Snapshot captures the rendered map. cb runs on the host UI thread with the
// image, or with nil when there is no map.
func (c *Coordinator) Snapshot(cb SnapshotReadyCallback) {
	deliver := func(img image.Image) {
		c.post(func() { c.guard("snapshot ready", func() { cb(img) }) })
	}
	c.mu.Lock()
	m := c.m
	c.mu.Unlock()
	if m == nil {
		deliver(nil)
		return
	}
	m.Snapshot(deliver)
}
