package model

import (
	"time"

	"github.com/paulmach/orb"
)

// Location is a device position fix.
type Location struct {
	Point    orb.Point
	Accuracy float64
	Bearing  float64
	Speed    float64
	Provider string
	Time     time.Time
}
