package model

import (
	"fmt"

	"github.com/paulmach/orb"
)

// CameraPosition describes where the camera looks.
type CameraPosition struct {
	Target  orb.Point
	Zoom    float64
	Tilt    float64
	Bearing float64
}

// Shifted returns the position with its zoom moved by delta.
func (p CameraPosition) Shifted(delta float64) CameraPosition {
	p.Zoom += delta
	return p
}

func (p CameraPosition) String() string {
	return fmt.Sprintf("%g,%g z=%g t=%g b=%g", p.Target.Lat(), p.Target.Lon(), p.Zoom, p.Tilt, p.Bearing)
}

// CameraUpdateKind tags the variant held by a CameraUpdate.
type CameraUpdateKind int

const (
	UpdateNewPosition CameraUpdateKind = iota + 1
	UpdateNewLatLng
	UpdateNewLatLngZoom
	UpdateNewLatLngBounds
	UpdateZoomTo
	UpdateZoomBy
	UpdateScrollBy
	UpdatePadding
)

// Insets are left/top/right/bottom pixel distances.
type Insets struct {
	Left, Top, Right, Bottom float64
}

// CameraUpdate is a single camera command. Only the fields relevant to Kind
// are meaningful.
type CameraUpdate struct {
	Kind     CameraUpdateKind
	Position CameraPosition
	Target   orb.Point
	Bounds   orb.Bound
	Zoom     float64 // absolute for UpdateZoomTo/UpdateNewLatLngZoom, delta for UpdateZoomBy
	DX, DY   float64
	Padding  Insets
}

// NewPosition moves the camera to an exact position.
func NewPosition(p CameraPosition) CameraUpdate {
	return CameraUpdate{Kind: UpdateNewPosition, Position: p}
}

// NewLatLng centers the camera on target, keeping the zoom.
func NewLatLng(target orb.Point) CameraUpdate {
	return CameraUpdate{Kind: UpdateNewLatLng, Target: target}
}

// NewLatLngZoom centers the camera on target at zoom.
func NewLatLngZoom(target orb.Point, zoom float64) CameraUpdate {
	return CameraUpdate{Kind: UpdateNewLatLngZoom, Target: target, Zoom: zoom}
}

// NewLatLngBounds centers the camera on bounds with padding pixels around.
func NewLatLngBounds(bounds orb.Bound, padding float64) CameraUpdate {
	return CameraUpdate{
		Kind:    UpdateNewLatLngBounds,
		Bounds:  bounds,
		Padding: Insets{Left: padding, Top: padding, Right: padding, Bottom: padding},
	}
}

// ZoomTo sets an absolute zoom.
func ZoomTo(zoom float64) CameraUpdate {
	return CameraUpdate{Kind: UpdateZoomTo, Zoom: zoom}
}

// ZoomBy changes the zoom by delta.
func ZoomBy(delta float64) CameraUpdate {
	return CameraUpdate{Kind: UpdateZoomBy, Zoom: delta}
}

// ScrollBy pans the camera by a pixel offset.
func ScrollBy(dx, dy float64) CameraUpdate {
	return CameraUpdate{Kind: UpdateScrollBy, DX: dx, DY: dy}
}

// PaddingTo sets the camera padding.
func PaddingTo(left, top, right, bottom float64) CameraUpdate {
	return CameraUpdate{Kind: UpdatePadding, Padding: Insets{Left: left, Top: top, Right: right, Bottom: bottom}}
}

// Shifted returns the update with every absolute zoom moved by delta.
// Relative updates are returned unchanged.
func (u CameraUpdate) Shifted(delta float64) CameraUpdate {
	switch u.Kind {
	case UpdateNewPosition:
		u.Position = u.Position.Shifted(delta)
	case UpdateNewLatLngZoom, UpdateZoomTo:
		u.Zoom += delta
	}
	return u
}

// Apply computes the position reached when u is applied to cur without
// animation. Bounds updates center on the bounds and keep the zoom.
func (u CameraUpdate) Apply(cur CameraPosition) CameraPosition {
	switch u.Kind {
	case UpdateNewPosition:
		return u.Position
	case UpdateNewLatLng:
		cur.Target = u.Target
	case UpdateNewLatLngZoom:
		cur.Target = u.Target
		cur.Zoom = u.Zoom
	case UpdateNewLatLngBounds:
		cur.Target = u.Bounds.Center()
	case UpdateZoomTo:
		cur.Zoom = u.Zoom
	case UpdateZoomBy:
		cur.Zoom += u.Zoom
	}
	return cur
}

func (u CameraUpdate) String() string {
	switch u.Kind {
	case UpdateNewPosition:
		return "position(" + u.Position.String() + ")"
	case UpdateNewLatLng:
		return fmt.Sprintf("latlng(%g,%g)", u.Target.Lat(), u.Target.Lon())
	case UpdateNewLatLngZoom:
		return fmt.Sprintf("latlng_zoom(%g,%g z=%g)", u.Target.Lat(), u.Target.Lon(), u.Zoom)
	case UpdateNewLatLngBounds:
		return fmt.Sprintf("bounds(%g,%g..%g,%g p=%g)",
			u.Bounds.Min.Lat(), u.Bounds.Min.Lon(), u.Bounds.Max.Lat(), u.Bounds.Max.Lon(), u.Padding.Left)
	case UpdateZoomTo:
		return fmt.Sprintf("zoom_to(%g)", u.Zoom)
	case UpdateZoomBy:
		return fmt.Sprintf("zoom_by(%g)", u.Zoom)
	case UpdateScrollBy:
		return fmt.Sprintf("scroll_by(%g,%g)", u.DX, u.DY)
	case UpdatePadding:
		return fmt.Sprintf("padding(%g,%g,%g,%g)", u.Padding.Left, u.Padding.Top, u.Padding.Right, u.Padding.Bottom)
	default:
		return fmt.Sprintf("unknown(%d)", u.Kind)
	}
}

// Camera move-start reasons.
const (
	MoveReasonGesture            = 1
	MoveReasonAPIAnimation       = 2
	MoveReasonDeveloperAnimation = 3
)

// LatLng builds an orb.Point from latitude and longitude, in that order.
func LatLng(lat, lng float64) orb.Point {
	return orb.Point{lng, lat}
}
