package sim

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/roach88/mapbridge/internal/render"
)

// Manager is a simulated annotation manager for one kind.
type Manager[S any] struct {
	engine *Engine
	kind   string
	data   func(S) string

	mu        sync.Mutex
	nextID    int64
	specs     map[int64]S
	clickers  []func(int64) bool
	draggers  []render.DragListener
	destroyed bool
}

func newManager[S any](e *Engine, kind string, data func(S) string) *Manager[S] {
	e.record(kind+".manager", "")
	return &Manager[S]{
		engine: e,
		kind:   kind,
		data:   data,
		specs:  make(map[int64]S),
	}
}

func (m *Manager[S]) Create(spec S) int64 {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.specs[id] = spec
	m.mu.Unlock()
	m.engine.recordf(m.kind+".create", "%s #%d", m.data(spec), id)
	return id
}

func (m *Manager[S]) Update(id int64, spec S) {
	m.mu.Lock()
	_, ok := m.specs[id]
	if ok {
		m.specs[id] = spec
	}
	m.mu.Unlock()
	if ok {
		m.engine.recordf(m.kind+".update", "%s #%d", m.data(spec), id)
	}
}

func (m *Manager[S]) Delete(id int64) {
	m.mu.Lock()
	spec, ok := m.specs[id]
	delete(m.specs, id)
	m.mu.Unlock()
	if ok {
		m.engine.recordf(m.kind+".delete", "%s #%d", m.data(spec), id)
	}
}

func (m *Manager[S]) IDs() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.specs))
	for id := range m.specs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Spec returns the current definition of annotation id.
func (m *Manager[S]) Spec(id int64) (S, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	spec, ok := m.specs[id]
	return spec, ok
}

// Len returns the number of live annotations.
func (m *Manager[S]) Len() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.specs)
}

func (m *Manager[S]) Resubmit() error {
	if m.engine.resubmitFails(m.kind) {
		m.engine.record(m.kind+".resubmit", "failed")
		return errors.New("sim: resubmit failed for " + m.kind)
	}
	m.engine.recordf(m.kind+".resubmit", "%d", m.Len())
	return nil
}

func (m *Manager[S]) AddClickListener(fn func(id int64) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clickers = append(m.clickers, fn)
}

func (m *Manager[S]) AddDragListener(l render.DragListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draggers = append(m.draggers, l)
}

func (m *Manager[S]) LayerID() string {
	return m.kind + "-layer"
}

func (m *Manager[S]) Destroy() {
	m.mu.Lock()
	m.destroyed = true
	m.specs = make(map[int64]S)
	m.clickers = nil
	m.draggers = nil
	m.mu.Unlock()
	m.engine.record(m.kind+".destroy", "")
}

// Destroyed reports whether Destroy was called.
func (m *Manager[S]) Destroyed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.destroyed
}

func (m *Manager[S]) click(id int64) bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	_, ok := m.specs[id]
	listeners := append([]func(int64) bool(nil), m.clickers...)
	m.mu.Unlock()
	if !ok {
		return false
	}
	for _, fn := range listeners {
		if fn(id) {
			return true
		}
	}
	return false
}

func (m *Manager[S]) find(data string) (int64, bool) {
	if m == nil {
		return 0, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, spec := range m.specs {
		if m.data(spec) == data {
			return id, true
		}
	}
	return 0, false
}

func (m *Manager[S]) String() string {
	return fmt.Sprintf("%s manager (%d)", m.kind, m.Len())
}
