package coordinator

import (
	"github.com/roach88/mapbridge/internal/render"
)

// InfoWindowAdapter builds the contents of a marker info window. ok=false
// means the marker has no info window.
type InfoWindowAdapter func(m *Marker) (content string, ok bool)

// DefaultInfoWindow shows the title, followed by the snippet on a second
// line. Markers without a title have no info window.
func DefaultInfoWindow(m *Marker) (string, bool) {
	title := m.Title()
	if title == "" {
		return "", false
	}
	if snippet := m.Snippet(); snippet != "" {
		return title + "\n" + snippet, true
	}
	return title, true
}

type openInfoWindow struct {
	marker *Marker
	popup  render.Popup
}

// showInfoWindow opens m's info window and closes the one it replaces.
// Returns whether a window was opened.
func (c *Coordinator) showInfoWindow(m *Marker) bool {
	var (
		content string
		ok      bool
	)
	if !c.guard("info window adapter", func() { content, ok = c.infoWindow(m) }) || !ok {
		return false
	}

	view := c.currentView()
	if view == nil {
		return false
	}
	popup := view.OpenPopup(normalizeText(content), m.Position())

	c.mu.Lock()
	if c.view != view {
		c.mu.Unlock()
		popup.Close()
		return false
	}
	previous := c.popup
	c.popup = &openInfoWindow{marker: m, popup: popup}
	c.mu.Unlock()
	if previous != nil {
		previous.popup.Close()
	}
	return true
}

// closeInfoWindow closes the open info window. A non-nil m only closes the
// window when it belongs to m.
func (c *Coordinator) closeInfoWindow(m *Marker) {
	c.mu.Lock()
	open := c.popup
	if open == nil || (m != nil && open.marker != m) {
		c.mu.Unlock()
		return
	}
	c.popup = nil
	c.mu.Unlock()
	open.popup.Close()
}

// refreshInfoWindow moves the open info window to its marker's position.
// A non-nil m only refreshes the window when it belongs to m.
func (c *Coordinator) refreshInfoWindow(m *Marker) {
	c.mu.Lock()
	open := c.popup
	c.mu.Unlock()
	if open == nil || (m != nil && open.marker != m) {
		return
	}
	open.popup.Update(open.marker.Position())
}
