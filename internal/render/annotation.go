package render

import "github.com/paulmach/orb"

// Manager owns every engine-side annotation of one kind. Identifiers are
// assigned by the manager and are only unique within it.
type Manager[S any] interface {
	Create(spec S) int64
	Update(id int64, spec S)
	Delete(id int64)
	IDs() []int64

	// Resubmit pushes every live annotation to the current style again,
	// used after a style swap.
	Resubmit() error

	AddClickListener(fn func(id int64) bool)
	AddDragListener(l DragListener)
	LayerID() string
	Destroy()
}

// DragListener receives symbol drag gestures.
type DragListener struct {
	Started  func(id int64)
	Dragged  func(id int64, at orb.Point)
	Finished func(id int64)
}

// LineSpec is the engine definition of a line annotation.
type LineSpec struct {
	Data    string
	Points  orb.LineString
	Width   float64
	Color   string
	Opacity float64
	Pattern string
	SortKey float64
	Hidden  bool
}

// FillSpec is the engine definition of a fill annotation.
type FillSpec struct {
	Data    string
	Polygon orb.Polygon
	Color   string
	Opacity float64
	SortKey float64
	Hidden  bool
}

// SymbolSpec is the engine definition of a symbol annotation.
type SymbolSpec struct {
	Data      string
	Position  orb.Point
	Icon      string
	AnchorU   float64
	AnchorV   float64
	Rotation  float64
	Opacity   float64
	SortKey   float64
	Draggable bool
	Hidden    bool
}

type (
	LineManager   = Manager[LineSpec]
	FillManager   = Manager[FillSpec]
	SymbolManager = Manager[SymbolSpec]
)
