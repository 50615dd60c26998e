package coordinator

import (
	"fmt"
	"image"
	"image/color"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/roach88/mapbridge/internal/model"
)

// AddBitmap registers an image under name for icons and patterns. Before
// StyleReady the upload is buffered; registering a name again replaces the
// image.
func (c *Coordinator) AddBitmap(name string, img image.Image) {
	c.mu.Lock()
	uploaded := c.registerBitmapLocked(name, img)
	c.mu.Unlock()
	if !uploaded {
		c.log().Debug("bitmap queued", "bitmap", name)
		c.emit(EventBitmapQueued, name, "")
	}
}

// registerBitmapLocked stores img and uploads it when a style is loaded.
// Returns whether it was uploaded. Must be called with c.mu held.
func (c *Coordinator) registerBitmapLocked(name string, img image.Image) bool {
	if img == nil {
		return true
	}
	_, known := c.bitmaps[name]
	c.bitmaps[name] = img
	if c.style != nil {
		c.style.AddImage(name, img)
		return true
	}
	if !known {
		c.bitmapQueue = append(c.bitmapQueue, name)
	}
	return false
}

// drainBitmapsLocked uploads every buffered image in registration order.
// Must be called with c.mu held after c.style is set.
func (c *Coordinator) drainBitmapsLocked() int {
	queue := c.bitmapQueue
	c.bitmapQueue = nil
	for _, name := range queue {
		c.style.AddImage(name, c.bitmaps[name])
	}
	return len(queue)
}

// reuploadBitmapsLocked uploads every known image, by name, to a freshly
// loaded style.
func (c *Coordinator) reuploadBitmapsLocked() {
	c.bitmapQueue = nil
	for _, name := range slices.Sorted(maps.Keys(c.bitmaps)) {
		c.style.AddImage(name, c.bitmaps[name])
	}
}

// registerPatternLocked renders a stroke pattern into a bitmap and registers
// it. Returns the bitmap name, or "" for a solid stroke.
func (c *Coordinator) registerPatternLocked(stroke model.Color, width float64, pattern []model.PatternItem) string {
	if len(pattern) == 0 {
		return ""
	}
	name := patternName(stroke, width, pattern)
	if _, ok := c.bitmaps[name]; !ok {
		c.registerBitmapLocked(name, patternImage(stroke, width, pattern))
	}
	return name
}

func patternName(stroke model.Color, width float64, pattern []model.PatternItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "pattern-%08x-%g", uint32(stroke), width)
	for _, item := range pattern {
		switch item.Kind {
		case model.PatternDash:
			fmt.Fprintf(&b, "-d%g", item.Length)
		case model.PatternGap:
			fmt.Fprintf(&b, "-g%g", item.Length)
		case model.PatternDot:
			b.WriteString("-o")
		}
	}
	return b.String()
}

// Pattern strips are capped so caller lengths cannot size the bitmap.
const (
	maxPatternLength = 4096
	maxPatternWidth  = 256
)

// patternPixels rounds v to whole pixels within [0, limit]. NaN counts as 0.
func patternPixels(v float64, limit int) int {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= float64(limit) {
		return limit
	}
	return int(math.Round(v))
}

// patternImage draws one repetition of pattern as a horizontal strip. Dots
// are as long as the stroke is wide. The strip is at most maxPatternLength
// pixels long and maxPatternWidth pixels high.
func patternImage(stroke model.Color, width float64, pattern []model.PatternItem) image.Image {
	height := max(1, patternPixels(math.Ceil(width), maxPatternWidth))
	lengths := make([]int, len(pattern))
	total := 0
	for i, item := range pattern {
		l := item.Length
		if item.Kind == model.PatternDot {
			l = float64(height)
		}
		lengths[i] = patternPixels(l, maxPatternLength-total)
		total += lengths[i]
	}
	img := image.NewNRGBA(image.Rect(0, 0, max(1, total), height))
	ink := color.NRGBA{
		R: uint8(stroke >> 16),
		G: uint8(stroke >> 8),
		B: uint8(stroke),
		A: uint8(stroke >> 24),
	}
	x := 0
	for i, item := range pattern {
		if item.Kind != model.PatternGap {
			for dx := 0; dx < lengths[i]; dx++ {
				for y := 0; y < height; y++ {
					img.SetNRGBA(x+dx, y, ink)
				}
			}
		}
		x += lengths[i]
	}
	return img
}
