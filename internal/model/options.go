package model

import "github.com/paulmach/orb"

// PolylineOptions describes a line overlay.
type PolylineOptions struct {
	Points    orb.LineString
	Width     float64
	Color     Color
	ZIndex    float64
	Hidden    bool
	Clickable bool
	Geodesic  bool
}

// DefaultPolylineOptions returns a visible 10px black line.
func DefaultPolylineOptions() PolylineOptions {
	return PolylineOptions{Width: 10, Color: ColorBlack}
}

// PolygonOptions describes a filled shape. The first ring of Polygon is the
// outer boundary; the rest are holes.
type PolygonOptions struct {
	Polygon     orb.Polygon
	FillColor   Color
	StrokeColor Color
	StrokeWidth float64
	ZIndex      float64
	Hidden      bool
}

// DefaultPolygonOptions returns a transparent fill with a 10px black outline.
func DefaultPolygonOptions() PolygonOptions {
	return PolygonOptions{FillColor: ColorTransparent, StrokeColor: ColorBlack, StrokeWidth: 10}
}

// PatternKind is one element type of a stroke pattern.
type PatternKind int

const (
	PatternDash PatternKind = iota + 1
	PatternGap
	PatternDot
)

// PatternItem is one element of a stroke pattern, Length in pixels.
type PatternItem struct {
	Kind   PatternKind
	Length float64
}

// CircleOptions describes a circle of Radius meters around Center.
type CircleOptions struct {
	Center        orb.Point
	Radius        float64
	FillColor     Color
	StrokeColor   Color
	StrokeWidth   float64
	StrokePattern []PatternItem
	ZIndex        float64
	Hidden        bool
	Clickable     bool
}

// DefaultCircleOptions returns a transparent circle with a 10px black ring.
func DefaultCircleOptions() CircleOptions {
	return CircleOptions{FillColor: ColorTransparent, StrokeColor: ColorBlack, StrokeWidth: 10}
}

// MarkerOptions describes a point marker.
type MarkerOptions struct {
	Position  orb.Point
	Title     string
	Snippet   string
	Icon      *BitmapDescriptor
	AnchorU   float64
	AnchorV   float64
	Rotation  float64
	Alpha     float64
	ZIndex    float64
	Draggable bool
	Flat      bool
	Hidden    bool
}

// DefaultMarkerOptions returns an opaque marker anchored at the bottom center.
func DefaultMarkerOptions() MarkerOptions {
	return MarkerOptions{AnchorU: 0.5, AnchorV: 1, Alpha: 1}
}

// GroundOverlayOptions describes an image laid on the ground. Accepted but
// not rendered.
type GroundOverlayOptions struct {
	Image        *BitmapDescriptor
	Bounds       orb.Bound
	Bearing      float64
	Transparency float64
	ZIndex       float64
	Hidden       bool
}

// TileOverlayOptions describes a custom tile layer. Accepted but not rendered.
type TileOverlayOptions struct {
	URLTemplate  string
	ZIndex       float64
	Transparency float64
	FadeIn       bool
	Hidden       bool
}

// MapOptions are applied once, when the engine hands back its map.
type MapOptions struct {
	MapType           MapType
	Camera            *CameraPosition
	MinZoomPreference float64
	MaxZoomPreference float64
	TargetBounds      *orb.Bound
	Compass           *bool
	RotateGestures    *bool
	ScrollGestures    *bool
	TiltGestures      *bool
}

// DefaultMapOptions returns options for a normal map with no constraints.
func DefaultMapOptions() MapOptions {
	return MapOptions{MapType: MapTypeNormal}
}
