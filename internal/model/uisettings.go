package model

// Gravity is a bit set of layout edges used to place the logo.
type Gravity int

const (
	GravityTop Gravity = 1 << iota
	GravityBottom
	GravityLeft
	GravityRight
	GravityStart
	GravityEnd
)

// UISettings holds the engine's on-map controls.
type UISettings struct {
	CompassEnabled         bool
	RotateGesturesEnabled  bool
	ScrollGesturesEnabled  bool
	TiltGesturesEnabled    bool
	ZoomGesturesEnabled    bool
	ZoomControlsEnabled    bool
	LogoEnabled            bool
	LogoGravity            Gravity
	LogoMargins            Insets
	CompassMargins         Insets
	AttributionMargins     Insets
	MyLocationButtonEnable bool
}

// DefaultUISettings mirrors the engine defaults.
func DefaultUISettings() UISettings {
	return UISettings{
		CompassEnabled:        true,
		RotateGesturesEnabled: true,
		ScrollGesturesEnabled: true,
		TiltGesturesEnabled:   true,
		ZoomGesturesEnabled:   true,
		LogoEnabled:           true,
		LogoGravity:           GravityBottom | GravityStart,
	}
}
