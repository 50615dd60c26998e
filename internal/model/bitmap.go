package model

import "image"

// BitmapDescriptor names an image the engine renders for icons and patterns.
// A descriptor without Image refers to an image the engine already knows.
type BitmapDescriptor struct {
	Name  string
	Image image.Image
}

// DefaultMarkerIcon is the engine-provided marker image.
var DefaultMarkerIcon = BitmapDescriptor{Name: "default_marker"}
