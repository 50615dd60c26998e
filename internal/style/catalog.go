// Package style loads the catalog mapping map types to engine style sources.
//
// Catalogs are CUE documents checked against an embedded #Catalog schema:
//
//	fallback: "normal"
//	styles: normal: uri: "asset://styles/streets.json"
//
// Map types without an entry resolve to the fallback style.
package style

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/mapbridge/internal/model"
)

//go:embed schema.cue
var schemaSource string

//go:embed catalog.cue
var defaultSource []byte

// Entry is one catalog style.
type Entry struct {
	URI         string `json:"uri"`
	Description string `json:"description,omitempty"`
}

// Catalog maps map types to style entries.
//
// Thread-safety: a loaded Catalog is immutable and safe for concurrent use.
type Catalog struct {
	Fallback model.MapType
	Styles   map[model.MapType]Entry
}

// LoadError describes an invalid catalog, with the CUE position when known.
type LoadError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &LoadError{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return &LoadError{Field: "cue", Message: first.Error()}
}

// Load parses and validates a catalog. filename is used in error positions.
func Load(src []byte, filename string) (*Catalog, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", formatCUEError(err))
	}

	doc := ctx.CompileBytes(src, cue.Filename(filename))
	if err := doc.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := schema.LookupPath(cue.ParsePath("#Catalog")).Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	fallbackName, err := v.LookupPath(cue.ParsePath("fallback")).String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	fallback, err := model.ParseMapType(fallbackName)
	if err != nil {
		return nil, &LoadError{Field: "fallback", Message: err.Error()}
	}

	cat := &Catalog{Fallback: fallback, Styles: make(map[model.MapType]Entry)}
	iter, err := v.LookupPath(cue.ParsePath("styles")).Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		t, err := model.ParseMapType(iter.Label())
		if err != nil {
			return nil, &LoadError{Field: "styles", Message: err.Error(), Pos: iter.Value().Pos()}
		}
		var e Entry
		if err := iter.Value().Decode(&e); err != nil {
			return nil, formatCUEError(err)
		}
		cat.Styles[t] = e
	}
	return cat, nil
}

// LoadFile reads and validates a catalog file.
func LoadFile(path string) (*Catalog, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Load(src, path)
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog.
//
// Panics if the embedded catalog is invalid, which a test guards against.
func Default() *Catalog {
	defaultOnce.Do(func() {
		cat, err := Load(defaultSource, "catalog.cue")
		if err != nil {
			panic(fmt.Sprintf("style: built-in catalog: %v", err))
		}
		defaultCatalog = cat
	})
	return defaultCatalog
}

// Entry returns the style for t, falling back to the fallback style.
func (c *Catalog) Entry(t model.MapType) Entry {
	if e, ok := c.Styles[t]; ok {
		return e
	}
	return c.Styles[c.Fallback]
}

// Resolve returns the style source for a map type with optional caller JSON.
func (c *Catalog) Resolve(t model.MapType, custom *model.MapStyleOptions) model.StyleSource {
	src := model.StyleSource{URI: c.Entry(t).URI}
	if custom != nil {
		src.JSON = custom.JSON
	}
	return src
}

// MapTypes returns the map types with an explicit entry, in numeric order.
func (c *Catalog) MapTypes() []model.MapType {
	types := make([]model.MapType, 0, len(c.Styles))
	for t := range c.Styles {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
