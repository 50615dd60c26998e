// Package model defines the caller-facing value types of the map surface.
//
// Geometry is expressed with github.com/paulmach/orb: positions are orb.Point
// values in (lon, lat) order, camera target bounds are orb.Bound, polylines are
// orb.LineString and polygons are orb.Polygon with the outer ring first.
//
// Zoom values in this package use the caller scale, which is one level above
// the rendering engine's scale. Conversion happens in the coordinator.
package model
