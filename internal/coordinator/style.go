package coordinator

import (
	"fmt"

	"github.com/roach88/mapbridge/internal/model"
	"github.com/roach88/mapbridge/internal/render"
)

// MapType returns the current base style family.
func (c *Coordinator) MapType() model.MapType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mapType
}

// SetMapType switches the base style. Before Initialized it is stored and
// applied with the first style.
func (c *Coordinator) SetMapType(t model.MapType) {
	c.mu.Lock()
	c.mapType = t
	c.mu.Unlock()
	c.applyMapStyle()
}

// SetMapStyle applies caller style JSON on top of the base style. nil
// removes it. Always reports success; the engine loads styles asynchronously.
func (c *Coordinator) SetMapStyle(opts *model.MapStyleOptions) bool {
	var stored *model.MapStyleOptions
	if opts != nil {
		cp := *opts
		stored = &cp
	}
	c.mu.Lock()
	c.mapStyle = stored
	c.mu.Unlock()
	c.applyMapStyle()
	return true
}

// applyMapStyle loads the style for the current map type and caller style.
// Once it finished loading, each annotation kind that had a manager is
// re-submitted; a failing kind does not affect the others.
func (c *Coordinator) applyMapStyle() {
	c.mu.Lock()
	m := c.m
	src := c.catalog.Resolve(c.mapType, c.mapStyle)
	lines, fills, symbols := c.lines.manager, c.fills.manager, c.symbols.manager
	c.mu.Unlock()
	if m == nil {
		return
	}

	c.log().Debug("applying style", "uri", src.URI, "custom", src.JSON != "")
	m.SetStyle(src, func(style render.Style) {
		c.mu.Lock()
		if c.m == m && c.style != nil {
			c.style = style
			c.reuploadBitmapsLocked()
		}
		c.mu.Unlock()

		if fills != nil {
			c.resubmit(KindFill, fills.Resubmit)
		}
		if lines != nil {
			c.resubmit(KindLine, lines.Resubmit)
		}
		if symbols != nil {
			c.resubmit(KindSymbol, symbols.Resubmit)
		}
		c.emit(EventStyleApplied, style.URI(), "")
	})
}

// resubmit runs one kind's re-submission, converting an error or a panic
// into a logged ResubmitError.
func (c *Coordinator) resubmit(kind Kind, fn func() error) {
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		err = fn()
	}()
	if err == nil {
		return
	}
	rerr := &ResubmitError{Kind: kind, Err: err}
	c.log().Warn("style resubmit failed", "kind", kind.String(), "error", rerr)
	c.emit(EventResubmitFault, kind.String(), err.Error())
}
