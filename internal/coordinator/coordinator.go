package coordinator

import (
	"fmt"
	"image"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/paulmach/orb"

	"github.com/roach88/mapbridge/internal/model"
	"github.com/roach88/mapbridge/internal/render"
	"github.com/roach88/mapbridge/internal/style"
)

// StyleCatalog resolves a map type and optional caller style into the style
// source handed to the engine.
type StyleCatalog interface {
	Resolve(mapType model.MapType, custom *model.MapStyleOptions) model.StyleSource
}

// Coordinator adapts map operations onto a rendering engine that becomes
// ready asynchronously.
//
// Thread-safety: every exported method is safe for concurrent use. Caller
// callbacks are never invoked with the internal lock held.
type Coordinator struct {
	factory    render.Factory
	options    model.MapOptions
	logger     atomic.Pointer[slog.Logger]
	baseLogger *slog.Logger
	recorder   Recorder
	catalog    StyleCatalog
	sessions   SessionGenerator
	mainThread func(func())
	infoWindow InfoWindowAdapter

	events     *Sequence
	lineIDs    *Sequence
	polygonIDs *Sequence
	circleIDs  *Sequence
	markerIDs  *Sequence
	groundIDs  *Sequence
	tileIDs    *Sequence
	container  *Container
	uiDelegate *UISettings

	mu sync.Mutex

	session string
	state   *readiness
	camera  commandQueue
	prefs   zoomPreferences
	view    render.View
	m       render.Map
	style   render.Style

	lines   *kindIndex[render.LineSpec]
	fills   *kindIndex[render.FillSpec]
	symbols *kindIndex[render.SymbolSpec]

	// bitmaps holds every registered image by name, re-uploaded after a
	// style swap; bitmapQueue lists names not yet uploaded, in order.
	bitmaps     map[string]image.Image
	bitmapQueue []string

	mapType         model.MapType
	mapStyle        *model.MapStyleOptions
	locationEnabled bool
	listeners       listenerSet
	loaded          MapLoadedCallback
	popup           *openInfoWindow
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.baseLogger = logger
	}
}

// WithRecorder sets the event recorder. Defaults to a no-op recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) {
		c.recorder = r
	}
}

// WithStyleCatalog sets the style catalog. Defaults to the built-in catalog.
func WithStyleCatalog(catalog StyleCatalog) Option {
	return func(c *Coordinator) {
		c.catalog = catalog
	}
}

// WithSessionGenerator sets the session id generator. Defaults to UUIDv7.
func WithSessionGenerator(gen SessionGenerator) Option {
	return func(c *Coordinator) {
		c.sessions = gen
	}
}

// WithMainThread sets how work is posted to the host UI thread. Defaults to
// running it inline.
func WithMainThread(post func(func())) Option {
	return func(c *Coordinator) {
		c.mainThread = post
	}
}

// WithInfoWindowAdapter sets how marker info window contents are built.
func WithInfoWindowAdapter(adapter InfoWindowAdapter) Option {
	return func(c *Coordinator) {
		c.infoWindow = adapter
	}
}

// New creates a coordinator in PhaseNew. Nothing touches the engine until
// OnCreate.
func New(factory render.Factory, options model.MapOptions, opts ...Option) *Coordinator {
	c := &Coordinator{
		factory:    factory,
		options:    options,
		baseLogger: slog.Default(),
		recorder:   nopRecorder{},
		sessions:   UUIDv7Generator{},
		mainThread: func(fn func()) { fn() },
		infoWindow: DefaultInfoWindow,
		events:     NewSequence(),
		lineIDs:    NewSequence(),
		polygonIDs: NewSequence(),
		circleIDs:  NewSequence(),
		markerIDs:  NewSequence(),
		groundIDs:  NewSequence(),
		tileIDs:    NewSequence(),
		state:      newReadiness(),
		lines:      newKindIndex[render.LineSpec](KindLine),
		fills:      newKindIndex[render.FillSpec](KindFill),
		symbols:    newKindIndex[render.SymbolSpec](KindSymbol),
		bitmaps:    make(map[string]image.Image),
		mapType:    options.MapType,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.catalog == nil {
		c.catalog = style.Default()
	}
	c.container = &Container{c: c}
	c.uiDelegate = &UISettings{c: c}
	c.startSession()
	return c
}

// startSession names a new map lifetime.
func (c *Coordinator) startSession() {
	session := c.sessions.Generate()
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
	c.logger.Store(c.baseLogger.With("session", session))
}

func (c *Coordinator) log() *slog.Logger {
	return c.logger.Load()
}

// emit hands an event to the recorder. Must be called without c.mu held.
func (c *Coordinator) emit(kind EventKind, subject, detail string) {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	c.recorder.Record(Event{
		Seq:     c.events.Next(),
		Session: session,
		Kind:    kind,
		Subject: subject,
		Detail:  detail,
	})
}

func (c *Coordinator) emitf(kind EventKind, subject, format string, args ...any) {
	c.emit(kind, subject, fmt.Sprintf(format, args...))
}

// guard runs a caller callback, recovering a panic into a logged
// CallbackError. Returns false when fn panicked.
func (c *Coordinator) guard(name string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			err := &CallbackError{Callback: name, Value: r}
			c.log().Warn("callback failed", "callback", name, "error", err)
			c.emit(EventCallbackFault, name, err.Error())
			ok = false
		}
	}()
	fn()
	return true
}

// runDeferred runs actions released by a transition, in registration order.
func (c *Coordinator) runDeferred(actions []deferred) {
	for _, a := range actions {
		c.guard(a.name, a.fn)
	}
}

// transition advances the state machine and runs the released actions.
// Returns false when the transition was a no-op.
func (c *Coordinator) transition(to Phase) bool {
	c.mu.Lock()
	actions, ok := c.state.advance(to)
	c.mu.Unlock()
	if !ok {
		return false
	}
	c.finishTransition(to, actions)
	return true
}

// finishTransition logs a transition made under the lock and runs what it
// released. Must be called without c.mu held.
func (c *Coordinator) finishTransition(to Phase, actions []deferred) {
	if len(actions) > 0 {
		c.log().Debug("invoking delayed callbacks", "phase", to.String(), "count", len(actions))
	} else {
		c.log().Debug("phase reached", "phase", to.String())
	}
	c.emitf(EventTransition, to.String(), "released=%d", len(actions))
	c.runDeferred(actions)
}

// post runs fn on the host UI thread.
func (c *Coordinator) post(fn func()) {
	c.mainThread(fn)
}

// afterInitialize runs fn with the live map once Initialized is reached.
func (c *Coordinator) afterInitialize(name string, fn func(m render.Map)) {
	run := func() {
		c.mu.Lock()
		m := c.m
		c.mu.Unlock()
		if m != nil {
			fn(m)
		}
	}
	c.mu.Lock()
	now := c.state.schedule(PhaseInitialized, name, run)
	c.mu.Unlock()
	if now {
		c.guard(name, run)
	}
}

// RunWhenAtLeast runs action immediately when phase has been reached, and
// otherwise when it is. Actions waiting for the same phase run in
// registration order.
func (c *Coordinator) RunWhenAtLeast(phase Phase, action func()) {
	name := "when " + phase.String()
	c.mu.Lock()
	now := c.state.schedule(phase, name, action)
	c.mu.Unlock()
	if now {
		c.guard(name, action)
	}
}

// Phase returns the current readiness phase.
func (c *Coordinator) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.phase
}

// Session returns the id of the current map lifetime.
func (c *Coordinator) Session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Stats is a point-in-time view of the coordinator buffers.
type Stats struct {
	Phase          Phase
	QueuedCamera   int
	Waiting        int
	PendingBitmaps int
	Pending        map[Kind]int
	Live           map[Kind]int
}

// Stats returns the current buffer sizes.
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Stats{
		Phase:          c.state.phase,
		QueuedCamera:   c.camera.Len(),
		Waiting:        c.state.pending(),
		PendingBitmaps: len(c.bitmapQueue),
		Pending:        make(map[Kind]int, 3),
		Live:           make(map[Kind]int, 3),
	}
	s.Pending[KindLine], s.Live[KindLine] = c.lines.counts()
	s.Pending[KindFill], s.Live[KindFill] = c.fills.counts()
	s.Pending[KindSymbol], s.Live[KindSymbol] = c.symbols.counts()
	return s
}

// CameraPosition returns the camera in caller zoom scale. Before the map is
// available it reports the origin at zoom 0.
func (c *Coordinator) CameraPosition() model.CameraPosition {
	c.mu.Lock()
	m := c.m
	c.mu.Unlock()
	if m == nil {
		return model.CameraPosition{Target: orb.Point{0, 0}}
	}
	return m.CameraPosition().Shifted(zoomOffset)
}

// MaxZoomLevel returns the engine maximum zoom in caller scale.
func (c *Coordinator) MaxZoomLevel() float64 {
	c.mu.Lock()
	m := c.m
	c.mu.Unlock()
	if m == nil {
		return fallbackMaxZoom + zoomOffset
	}
	return m.MaxZoomLevel() + zoomOffset
}

// MinZoomLevel returns the engine minimum zoom in caller scale.
func (c *Coordinator) MinZoomLevel() float64 {
	c.mu.Lock()
	m := c.m
	c.mu.Unlock()
	if m == nil {
		return fallbackMinZoom + zoomOffset
	}
	return m.MinZoomLevel() + zoomOffset
}

// Clear removes every live overlay primitive from the engine. Overlays still
// waiting for their manager are left alone. Clearing twice is harmless.
func (c *Coordinator) Clear() {
	c.mu.Lock()
	n := c.lines.clearLive() + c.fills.clearLive() + c.symbols.clearLive()
	c.mu.Unlock()
	c.log().Debug("cleared overlays", "count", n)
	c.emitf(EventOverlaysCleared, "map", "count=%d", n)
}
