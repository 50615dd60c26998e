package model

import (
	"fmt"
	"strings"
)

// MapType selects the base style family.
type MapType int

const (
	MapTypeNone MapType = iota
	MapTypeNormal
	MapTypeSatellite
	MapTypeTerrain
	MapTypeHybrid
)

var mapTypeNames = map[MapType]string{
	MapTypeNone:      "none",
	MapTypeNormal:    "normal",
	MapTypeSatellite: "satellite",
	MapTypeTerrain:   "terrain",
	MapTypeHybrid:    "hybrid",
}

// MapTypes lists every map type in numeric order.
func MapTypes() []MapType {
	return []MapType{MapTypeNone, MapTypeNormal, MapTypeSatellite, MapTypeTerrain, MapTypeHybrid}
}

func (t MapType) String() string {
	if name, ok := mapTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("maptype(%d)", int(t))
}

// ParseMapType accepts the lower-case names returned by String.
func ParseMapType(s string) (MapType, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for t, name := range mapTypeNames {
		if name == needle {
			return t, nil
		}
	}
	return MapTypeNone, fmt.Errorf("unknown map type %q", s)
}

// MapStyleOptions carries a caller-supplied style JSON document.
type MapStyleOptions struct {
	JSON string
}

// StyleSource is what the rendering engine loads: a style URI plus optional
// caller JSON applied on top of it.
type StyleSource struct {
	URI  string
	JSON string
}
