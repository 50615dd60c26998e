package render

import (
	"errors"
	"image"
	"time"

	"github.com/paulmach/orb"

	"github.com/roach88/mapbridge/internal/model"
)

// ErrPermissionDenied is returned by the location component when the host
// lacks location permission.
var ErrPermissionDenied = errors.New("render: location permission denied")

// SavedState is the engine's serialized view state, opaque to the coordinator.
type SavedState map[string]string

// Factory creates embedded rendering views.
type Factory interface {
	NewView() View
}

// View is the engine's embedded view.
type View interface {
	OnCreate(saved SavedState)
	OnStart()
	OnResume()
	OnPause()
	OnStop()
	OnDestroy()
	OnLowMemory()
	OnSaveInstanceState() SavedState

	// GetMapAsync requests the live map. ready is invoked once the engine
	// finished its startup, possibly on another goroutine.
	GetMapAsync(ready func(Map))

	IsShown() bool
	SetContentDescription(desc string)

	// OpenPopup shows a detail popup anchored at a geographic position.
	OpenPopup(content string, at orb.Point) Popup
}

// Popup is an open overlay-detail window.
type Popup interface {
	Update(at orb.Point)
	Close()
}

// Completion is notified when an animated camera transition ends.
type Completion interface {
	OnFinish()
	OnCancel()
}

// Map is the live map handle. All zoom values use the engine scale.
type Map interface {
	CameraPosition() model.CameraPosition
	MinZoomLevel() float64
	MaxZoomLevel() float64

	MoveCamera(u model.CameraUpdate)
	AnimateCamera(u model.CameraUpdate, duration time.Duration, done Completion)
	CancelTransitions()

	SetMinZoomPreference(zoom float64)
	SetMaxZoomPreference(zoom float64)
	SetLatLngBoundsForCameraTarget(bounds *orb.Bound)

	// SetStyle replaces the style; loaded runs once it finished loading.
	SetStyle(src model.StyleSource, loaded func(Style))
	// GetStyle runs loaded with the current style once it is fully loaded.
	GetStyle(loaded func(Style))

	UISettings() model.UISettings
	UpdateUISettings(fn func(*model.UISettings))

	Snapshot(ready func(image.Image))
	HasSymbolAt(at orb.Point, layerID string) bool
	LocationComponent() LocationComponent

	NewLineManager(style Style) LineManager
	NewFillManager(style Style) FillManager
	NewSymbolManager(style Style) SymbolManager

	OnCameraIdle(fn func())
	OnCameraMove(fn func())
	OnCameraMoveStarted(fn func(reason int))
	OnCameraMoveCanceled(fn func())
	OnMapClick(fn func(at orb.Point) bool)
	OnMapLongClick(fn func(at orb.Point) bool)
}

// Style is a loaded engine style.
type Style interface {
	URI() string
	AddImage(name string, img image.Image)
}

// LocationComponent renders the user location.
type LocationComponent interface {
	Activate(style Style) error
	Activated() bool
	// SetEnabled starts or stops location updates. Returns
	// ErrPermissionDenied when the host lacks permission.
	SetEnabled(enabled bool) error
	LastKnownLocation() *model.Location
}
