// Package config loads the mapbridge TOML configuration: the options a map
// is created with plus tool settings.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/roach88/mapbridge/internal/model"
)

// Config is the resolved configuration.
type Config struct {
	Map         model.MapOptions
	JournalPath string
	CatalogPath string
}

const (
	defaultConfigPath  = "~/.config/mapbridge/config.toml"
	defaultJournalPath = "~/.local/share/mapbridge/journal.db"
)

type rawCamera struct {
	Lat     float64 `toml:"lat"`
	Lng     float64 `toml:"lng"`
	Zoom    float64 `toml:"zoom"`
	Tilt    float64 `toml:"tilt"`
	Bearing float64 `toml:"bearing"`
}

type rawBounds struct {
	South float64 `toml:"south"`
	West  float64 `toml:"west"`
	North float64 `toml:"north"`
	East  float64 `toml:"east"`
}

type rawConfig struct {
	Map struct {
		MapType        string     `toml:"map_type"`
		MinZoom        float64    `toml:"min_zoom"`
		MaxZoom        float64    `toml:"max_zoom"`
		Compass        *bool      `toml:"compass"`
		RotateGestures *bool      `toml:"rotate_gestures"`
		ScrollGestures *bool      `toml:"scroll_gestures"`
		TiltGestures   *bool      `toml:"tilt_gestures"`
		Camera         *rawCamera `toml:"camera"`
		Bounds         *rawBounds `toml:"bounds"`
	} `toml:"map"`
	Journal struct {
		Path string `toml:"path"`
	} `toml:"journal"`
	Styles struct {
		Catalog string `toml:"catalog"`
	} `toml:"styles"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Map:         model.DefaultMapOptions(),
		JournalPath: mustExpand(defaultJournalPath),
	}
}

// Load locates and parses the config file, falling back to defaults when it
// is missing. An empty path means the default location.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML config bytes and fills in defaults.
func Parse(data []byte) (Config, error) {
	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()
	m := &cfg.Map
	if name := strings.TrimSpace(raw.Map.MapType); name != "" {
		t, err := model.ParseMapType(name)
		if err != nil {
			return Config{}, fmt.Errorf("map.map_type: %w", err)
		}
		m.MapType = t
	}

	if raw.Map.MinZoom < 0 || raw.Map.MaxZoom < 0 {
		return Config{}, fmt.Errorf("map zoom preferences must not be negative")
	}
	if raw.Map.MinZoom != 0 && raw.Map.MaxZoom != 0 && raw.Map.MinZoom > raw.Map.MaxZoom {
		return Config{}, fmt.Errorf("map.min_zoom %g is above map.max_zoom %g", raw.Map.MinZoom, raw.Map.MaxZoom)
	}
	m.MinZoomPreference = raw.Map.MinZoom
	m.MaxZoomPreference = raw.Map.MaxZoom
	m.Compass = raw.Map.Compass
	m.RotateGestures = raw.Map.RotateGestures
	m.ScrollGestures = raw.Map.ScrollGestures
	m.TiltGestures = raw.Map.TiltGestures

	if cam := raw.Map.Camera; cam != nil {
		if err := checkLatLng("map.camera", cam.Lat, cam.Lng); err != nil {
			return Config{}, err
		}
		m.Camera = &model.CameraPosition{
			Target:  model.LatLng(cam.Lat, cam.Lng),
			Zoom:    cam.Zoom,
			Tilt:    cam.Tilt,
			Bearing: cam.Bearing,
		}
	}

	if b := raw.Map.Bounds; b != nil {
		if err := checkLatLng("map.bounds", b.South, b.West); err != nil {
			return Config{}, err
		}
		if err := checkLatLng("map.bounds", b.North, b.East); err != nil {
			return Config{}, err
		}
		if b.South > b.North {
			return Config{}, fmt.Errorf("map.bounds: south %g is above north %g", b.South, b.North)
		}
		bound := orb.MultiPoint{model.LatLng(b.South, b.West), model.LatLng(b.North, b.East)}.Bound()
		m.TargetBounds = &bound
	}

	if p := strings.TrimSpace(raw.Journal.Path); p != "" {
		cfg.JournalPath = mustExpand(p)
	}
	if p := strings.TrimSpace(raw.Styles.Catalog); p != "" {
		cfg.CatalogPath = mustExpand(p)
	}
	return cfg, nil
}

func checkLatLng(field string, lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%s: latitude %g out of range", field, lat)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%s: longitude %g out of range", field, lng)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
