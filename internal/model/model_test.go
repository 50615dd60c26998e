package model

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatLngOrder(t *testing.T) {
	p := LatLng(52.5, 13.4)
	assert.Equal(t, 52.5, p.Lat())
	assert.Equal(t, 13.4, p.Lon())
	assert.Equal(t, orb.Point{13.4, 52.5}, p)
}

func TestCameraUpdate_String(t *testing.T) {
	bounds := orb.MultiPoint{LatLng(1, 2), LatLng(3, 4)}.Bound()
	tests := []struct {
		update CameraUpdate
		want   string
	}{
		{NewPosition(CameraPosition{Target: LatLng(1, 2), Zoom: 3, Tilt: 4, Bearing: 5}), "position(1,2 z=3 t=4 b=5)"},
		{NewLatLng(LatLng(1, 2)), "latlng(1,2)"},
		{NewLatLngZoom(LatLng(1, 2), 9), "latlng_zoom(1,2 z=9)"},
		{NewLatLngBounds(bounds, 16), "bounds(1,2..3,4 p=16)"},
		{ZoomTo(4), "zoom_to(4)"},
		{ZoomBy(-1.5), "zoom_by(-1.5)"},
		{ScrollBy(10, 20), "scroll_by(10,20)"},
		{PaddingTo(1, 2, 3, 4), "padding(1,2,3,4)"},
		{CameraUpdate{}, "unknown(0)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.update.String())
	}
}

func TestCameraUpdate_Shifted(t *testing.T) {
	assert.Equal(t, 11.0, ZoomTo(12).Shifted(-1).Zoom)
	assert.Equal(t, 8.0, NewLatLngZoom(LatLng(0, 0), 9).Shifted(-1).Zoom)
	assert.Equal(t, 2.0, NewPosition(CameraPosition{Zoom: 3}).Shifted(-1).Position.Zoom)

	// Relative updates keep their meaning.
	assert.Equal(t, ZoomBy(1), ZoomBy(1).Shifted(-1))
	assert.Equal(t, ScrollBy(1, 2), ScrollBy(1, 2).Shifted(-1))
}

func TestCameraUpdate_Apply(t *testing.T) {
	cur := CameraPosition{Target: LatLng(0, 0), Zoom: 5, Tilt: 10}

	assert.Equal(t, 7.0, ZoomTo(7).Apply(cur).Zoom)
	assert.Equal(t, 6.0, ZoomBy(1).Apply(cur).Zoom)

	moved := NewLatLng(LatLng(1, 2)).Apply(cur)
	assert.Equal(t, LatLng(1, 2), moved.Target)
	assert.Equal(t, 5.0, moved.Zoom, "zoom kept")
	assert.Equal(t, 10.0, moved.Tilt, "tilt kept")

	bounds := orb.MultiPoint{LatLng(0, 0), LatLng(2, 4)}.Bound()
	assert.Equal(t, LatLng(1, 2), NewLatLngBounds(bounds, 0).Apply(cur).Target)

	assert.Equal(t, cur, ScrollBy(5, 5).Apply(cur), "pixel updates need a projection")
}

func TestMapType_RoundTrip(t *testing.T) {
	for _, mt := range MapTypes() {
		parsed, err := ParseMapType(mt.String())
		require.NoError(t, err)
		assert.Equal(t, mt, parsed)
	}

	parsed, err := ParseMapType(" Hybrid ")
	require.NoError(t, err)
	assert.Equal(t, MapTypeHybrid, parsed)

	_, err = ParseMapType("moon")
	assert.ErrorContains(t, err, `unknown map type "moon"`)
	assert.Equal(t, "maptype(9)", MapType(9).String())
}

func TestColor(t *testing.T) {
	assert.Equal(t, "#ff0000", Color(0x80FF0000).Hex())
	assert.InDelta(t, 128.0/255, Color(0x80FF0000).Opacity(), 1e-9)
	assert.Equal(t, 1.0, ColorBlack.Opacity())
	assert.Zero(t, ColorTransparent.Opacity())
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, MapTypeNormal, DefaultMapOptions().MapType)
	assert.Equal(t, 0.5, DefaultMarkerOptions().AnchorU)
	assert.Equal(t, 1.0, DefaultMarkerOptions().Alpha)
	assert.Equal(t, 10.0, DefaultPolylineOptions().Width)
	assert.Equal(t, ColorTransparent, DefaultCircleOptions().FillColor)
	assert.Equal(t, ColorBlack, DefaultPolygonOptions().StrokeColor)

	ui := DefaultUISettings()
	assert.True(t, ui.LogoEnabled)
	assert.Equal(t, GravityBottom|GravityStart, ui.LogoGravity)
	assert.False(t, ui.ZoomControlsEnabled)
}
