package sim

import (
	"image"
	"sync"

	"github.com/roach88/mapbridge/internal/model"
	"github.com/roach88/mapbridge/internal/render"
)

// Style is a simulated loaded style.
type Style struct {
	engine *Engine
	src    model.StyleSource

	mu     sync.Mutex
	images map[string]image.Image
}

func (s *Style) URI() string { return s.src.URI }

func (s *Style) AddImage(name string, img image.Image) {
	s.mu.Lock()
	s.images[name] = img
	s.mu.Unlock()
	s.engine.record("style.image", name)
}

// HasImage reports whether an image was added under name.
func (s *Style) HasImage(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.images[name]
	return ok
}

// Location is the simulated location component.
type Location struct {
	engine *Engine

	mu        sync.Mutex
	activated bool
	enabled   bool
}

func (l *Location) Activate(style render.Style) error {
	l.mu.Lock()
	l.activated = true
	l.mu.Unlock()
	l.engine.record("location.activate", style.URI())
	return nil
}

func (l *Location) Activated() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.activated
}

func (l *Location) SetEnabled(enabled bool) error {
	l.engine.mu.Lock()
	deny := l.engine.denyLocation
	l.engine.mu.Unlock()
	if enabled && deny {
		l.engine.record("location.denied", "")
		return render.ErrPermissionDenied
	}
	l.mu.Lock()
	l.enabled = enabled
	l.mu.Unlock()
	if enabled {
		l.engine.record("location.enable", "true")
	} else {
		l.engine.record("location.enable", "false")
	}
	return nil
}

// Enabled reports whether location updates are running.
func (l *Location) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

func (l *Location) LastKnownLocation() *model.Location {
	l.engine.mu.Lock()
	defer l.engine.mu.Unlock()
	if l.engine.lastLocation == nil {
		return nil
	}
	loc := *l.engine.lastLocation
	return &loc
}
