package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mapbridge/internal/model"
)

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	require.NoError(t, err)

	assert.Equal(t, model.DefaultMapOptions(), cfg.Map)
	assert.Equal(t, filepath.Join(home, ".local/share/mapbridge/journal.db"), cfg.JournalPath)
	assert.Empty(t, cfg.CatalogPath)
}

func TestLoad_ParsesMapOptions(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[map]
map_type = " Satellite "
min_zoom = 3
max_zoom = 18
compass = false
tilt_gestures = true

[map.camera]
lat = 52.52
lng = 13.405
zoom = 11
bearing = 30

[map.bounds]
south = 52.3
west = 13.0
north = 52.7
east = 13.8

[journal]
path = "~/maps/journal.db"

[styles]
catalog = "~/maps/catalog.cue"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	m := cfg.Map
	assert.Equal(t, model.MapTypeSatellite, m.MapType)
	assert.Equal(t, 3.0, m.MinZoomPreference)
	assert.Equal(t, 18.0, m.MaxZoomPreference)
	require.NotNil(t, m.Compass)
	assert.False(t, *m.Compass)
	require.NotNil(t, m.TiltGestures)
	assert.True(t, *m.TiltGestures)
	assert.Nil(t, m.RotateGestures, "unset stays engine default")

	require.NotNil(t, m.Camera)
	assert.Equal(t, model.LatLng(52.52, 13.405), m.Camera.Target)
	assert.Equal(t, 11.0, m.Camera.Zoom)
	assert.Equal(t, 30.0, m.Camera.Bearing)

	require.NotNil(t, m.TargetBounds)
	assert.Equal(t, model.LatLng(52.3, 13.0), m.TargetBounds.Min)
	assert.Equal(t, model.LatLng(52.7, 13.8), m.TargetBounds.Max)

	assert.True(t, strings.HasPrefix(cfg.JournalPath, home))
	assert.Equal(t, filepath.Join(home, "maps/catalog.cue"), cfg.CatalogPath)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		toml string
		want string
	}{
		{"syntax", "[map\n", "parse config"},
		{"unknown map type", "[map]\nmap_type = \"lunar\"\n", "map.map_type"},
		{"negative zoom", "[map]\nmin_zoom = -1\n", "must not be negative"},
		{"inverted zoom", "[map]\nmin_zoom = 10\nmax_zoom = 5\n", "above map.max_zoom"},
		{"camera latitude", "[map.camera]\nlat = 91\n", "latitude 91 out of range"},
		{"bounds longitude", "[map.bounds]\nwest = -181\n", "longitude -181 out of range"},
		{"inverted bounds", "[map.bounds]\nsouth = 10\nnorth = 5\n", "south 10 is above north 5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestParse_EmptyIsDefault(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/x.toml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "x.toml"), got)

	_, err = expandPath("   ")
	assert.Error(t, err)
}
