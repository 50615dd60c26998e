package model

import "fmt"

// Color is a packed 0xAARRGGBB value.
type Color uint32

const (
	ColorBlack       Color = 0xFF000000
	ColorWhite       Color = 0xFFFFFFFF
	ColorTransparent Color = 0x00000000
)

// Hex returns the "#rrggbb" form without alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xFFFFFF)
}

// Opacity returns the alpha channel in [0, 1].
func (c Color) Opacity() float64 {
	return float64(uint32(c)>>24) / 255
}
