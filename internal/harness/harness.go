package harness

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/paulmach/orb"

	"github.com/roach88/mapbridge/internal/coordinator"
	"github.com/roach88/mapbridge/internal/model"
	"github.com/roach88/mapbridge/internal/render/sim"
	"github.com/roach88/mapbridge/internal/testutil"
)

// Option configures a scenario run.
type Option func(*config)

type config struct {
	logger    *slog.Logger
	recorders []coordinator.Recorder
	base      *model.MapOptions
	catalog   coordinator.StyleCatalog
	sessions  coordinator.SessionGenerator
}

// WithLogger sets the coordinator logger. Runs are silent by default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithRecorder adds a recorder that receives every coordinator event of the
// run, next to the in-memory one backing the events assertion.
func WithRecorder(r coordinator.Recorder) Option {
	return func(c *config) { c.recorders = append(c.recorders, r) }
}

// WithMapOptions sets the map options used by scenarios without an options
// block.
func WithMapOptions(opts model.MapOptions) Option {
	return func(c *config) { c.base = &opts }
}

// WithStyleCatalog replaces the built-in style catalog.
func WithStyleCatalog(catalog coordinator.StyleCatalog) Option {
	return func(c *config) { c.catalog = catalog }
}

// WithSessionGenerator replaces the sequential session ids derived from the
// scenario session prefix. Journaled runs use it to keep sessions unique
// across runs.
func WithSessionGenerator(gen coordinator.SessionGenerator) Option {
	return func(c *config) { c.sessions = gen }
}

// fanout passes each event to several recorders.
type fanout []coordinator.Recorder

func (f fanout) Record(e coordinator.Event) {
	for _, r := range f {
		r.Record(e)
	}
}

// overlay is a scenario handle bound to a coordinator overlay.
type overlay struct {
	kind     string // sim annotation kind clicks are routed through
	polyline *coordinator.Polyline
	polygon  *coordinator.Polygon
	circle   *coordinator.Circle
	marker   *coordinator.Marker
}

func (o overlay) id() string {
	switch {
	case o.polyline != nil:
		return o.polyline.ID()
	case o.polygon != nil:
		return o.polygon.ID()
	case o.circle != nil:
		return o.circle.ID()
	default:
		return o.marker.ID()
	}
}

func (o overlay) remove() {
	switch {
	case o.polyline != nil:
		o.polyline.Remove()
	case o.polygon != nil:
		o.polygon.Remove()
	case o.circle != nil:
		o.circle.Remove()
	default:
		o.marker.Remove()
	}
}

// Harness runs one scenario. Each run gets a fresh simulated engine and
// coordinator.
type Harness struct {
	engine    *sim.Engine
	c         *coordinator.Coordinator
	events    *coordinator.MemoryRecorder
	posted    []func()
	callbacks []string
	overlays  map[string]overlay
	names     map[string]string // coordinator overlay id -> handle
}

// Run executes a scenario and evaluates its assertions.
//
// Execution flow:
// 1. Create the simulated engine and a coordinator with sequential sessions
// 2. Execute steps, flushing work posted to the UI thread after each one
// 3. Collect the engine trace, events and final state
// 4. Evaluate assertions
//
// The returned error reports a scenario that could not be executed;
// assertion failures are reported in the result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := config{logger: testutil.DiscardLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	mapOptions, err := scenario.Options.MapOptions()
	if err != nil {
		return nil, fmt.Errorf("map options: %w", err)
	}
	if scenario.Options == nil && cfg.base != nil {
		mapOptions = *cfg.base
	}
	if cfg.sessions == nil {
		prefix := scenario.Session
		if prefix == "" {
			prefix = "scenario"
		}
		cfg.sessions = testutil.NewSequentialSessions(prefix)
	}

	h := &Harness{
		engine:   sim.New(),
		events:   &coordinator.MemoryRecorder{},
		overlays: make(map[string]overlay),
		names:    make(map[string]string),
	}
	recorders := append(fanout{h.events}, cfg.recorders...)
	copts := []coordinator.Option{
		coordinator.WithLogger(cfg.logger),
		coordinator.WithRecorder(recorders),
		coordinator.WithSessionGenerator(cfg.sessions),
		coordinator.WithMainThread(func(fn func()) { h.posted = append(h.posted, fn) }),
	}
	if cfg.catalog != nil {
		copts = append(copts, coordinator.WithStyleCatalog(cfg.catalog))
	}
	h.c = coordinator.New(h.engine, mapOptions, copts...)

	for i := range scenario.Steps {
		if err := h.execute(&scenario.Steps[i]); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, scenario.Steps[i].Op, err)
		}
		h.flush()
	}

	result := NewResult()
	result.Trace = append(result.Trace, h.engine.Ops()...)
	result.Callbacks = append(result.Callbacks, h.callbacks...)
	result.Events = append(result.Events, h.events.Events()...)
	result.Phase = h.c.Phase().String()
	result.Stats = h.c.Stats()

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// flush runs work posted to the UI thread, including work posted while
// flushing.
func (h *Harness) flush() {
	for len(h.posted) > 0 {
		fns := h.posted
		h.posted = nil
		for _, fn := range fns {
			fn()
		}
	}
}

func (h *Harness) callback(format string, args ...any) {
	h.callbacks = append(h.callbacks, fmt.Sprintf(format, args...))
}

// name returns the scenario handle of a coordinator overlay id.
func (h *Harness) name(id string) string {
	if n, ok := h.names[id]; ok {
		return n
	}
	return id
}

func (h *Harness) bind(handle string, o overlay) {
	h.overlays[handle] = o
	h.names[o.id()] = handle
}

func formatPoint(p orb.Point) string {
	return fmt.Sprintf("%g,%g", p.Lat(), p.Lon())
}

func lineString(points []LatLng) orb.LineString {
	ls := make(orb.LineString, len(points))
	for i, p := range points {
		ls[i] = p.Point()
	}
	return ls
}

// ring closes points into a polygon ring.
func ring(points []LatLng) orb.Ring {
	r := orb.Ring(lineString(points))
	if !r.Closed() {
		r = append(r, r[0])
	}
	return r
}

func (h *Harness) execute(st *Step) error {
	switch st.Op {
	case OpOnCreate:
		h.c.OnCreate(nil)
	case OpOnDestroy:
		h.c.OnDestroy()
	case OpMapReady:
		h.engine.SignalMapReady()
	case OpStyleLoaded:
		h.engine.SignalStyleLoaded()
	case OpSetShown:
		h.engine.SetShown(*st.Enabled)

	case OpMoveCamera, OpAnimateCamera:
		u, err := st.cameraUpdate()
		if err != nil {
			return err
		}
		if st.Op == OpMoveCamera {
			h.c.MoveCamera(u)
			return nil
		}
		done := coordinator.CallbackFuncs{
			Finish: func() { h.callback("animate_finish %s", u) },
			Cancel: func() { h.callback("animate_cancel %s", u) },
		}
		if st.Duration == "" {
			h.c.AnimateCamera(u, done)
			return nil
		}
		d, err := time.ParseDuration(st.Duration)
		if err != nil {
			return err
		}
		h.c.AnimateCameraWithDuration(u, d, done)
	case OpStopAnimation:
		h.c.StopAnimation()
	case OpSetMinZoom:
		h.c.SetMinZoomPreference(st.Value)
	case OpSetMaxZoom:
		h.c.SetMaxZoomPreference(st.Value)
	case OpResetZoom:
		h.c.ResetMinMaxZoomPreference()

	case OpAddPolyline:
		p := h.c.AddPolyline(model.PolylineOptions{
			Points:    lineString(st.Points),
			Width:     4,
			Color:     0xFF000000,
			Clickable: st.Clickable,
		})
		h.bind(st.Handle, overlay{kind: sim.KindLine, polyline: p})
	case OpAddPolygon:
		p := h.c.AddPolygon(model.PolygonOptions{
			Polygon:     orb.Polygon{ring(st.Points)},
			FillColor:   0x80FF0000,
			StrokeColor: 0xFF000000,
			StrokeWidth: 2,
		})
		h.bind(st.Handle, overlay{kind: sim.KindFill, polygon: p})
	case OpAddCircle:
		ci := h.c.AddCircle(model.CircleOptions{
			Center:      st.At.Point(),
			Radius:      st.Radius,
			FillColor:   0x400000FF,
			StrokeColor: 0xFF0000FF,
			StrokeWidth: 2,
			Clickable:   st.Clickable,
		})
		h.bind(st.Handle, overlay{kind: sim.KindFill, circle: ci})
	case OpAddMarker:
		opts := model.DefaultMarkerOptions()
		opts.Position = st.At.Point()
		opts.Title = st.Title
		opts.Snippet = st.Snippet
		opts.Draggable = st.Draggable
		mk := h.c.AddMarker(opts)
		h.bind(st.Handle, overlay{kind: sim.KindSymbol, marker: mk})
	case OpMoveMarker:
		h.overlays[st.Handle].marker.SetPosition(st.At.Point())
	case OpRemove:
		h.overlays[st.Handle].remove()
	case OpClear:
		h.c.Clear()

	case OpSetMapType:
		t, err := model.ParseMapType(st.MapType)
		if err != nil {
			return err
		}
		h.c.SetMapType(t)
	case OpSetMapStyle:
		if st.Style == "" {
			h.c.SetMapStyle(nil)
		} else {
			h.c.SetMapStyle(&model.MapStyleOptions{JSON: st.Style})
		}
	case OpSetLocation:
		h.c.SetMyLocationEnabled(*st.Enabled)
	case OpDenyLocation:
		h.engine.DenyLocationPermission(*st.Enabled)
	case OpFailResubmit:
		h.engine.FailResubmit(st.Kind, *st.Enabled)

	case OpListen:
		h.listen(st)
	case OpClick:
		o := h.overlays[st.Handle]
		id, ok := h.engine.AnnotationID(o.kind, o.id())
		if !ok {
			return nil
		}
		h.engine.ClickAnnotation(o.kind, id)
	case OpClickMap:
		h.engine.ClickMap(st.At.Point())
	case OpLongClickMap:
		h.engine.LongClickMap(st.At.Point())
	case OpDrag:
		id, ok := h.engine.AnnotationID(sim.KindSymbol, h.overlays[st.Handle].id())
		if !ok {
			return nil
		}
		h.engine.DragSymbol(id, st.At.Point())
	case OpTransact:
		h.c.Transact(coordinator.TransactionCode(st.Code), []byte(st.Payload))
	case OpSnapshot:
		h.c.Snapshot(func(img image.Image) {
			if img == nil {
				h.callback("snapshot none")
				return
			}
			b := img.Bounds()
			h.callback("snapshot %dx%d", b.Dx(), b.Dy())
		})
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
	return nil
}

// listen registers a recording listener. With panic set the listener
// panics after recording; consume sets the marker click result.
func (h *Harness) listen(st *Step) {
	fire := func(format string, args ...any) {
		h.callback(format, args...)
		if st.Panic {
			panic(st.Listener + " listener failed")
		}
	}
	switch st.Listener {
	case ListenMapClick:
		h.c.SetOnMapClickListener(func(at orb.Point) { fire("map_click %s", formatPoint(at)) })
	case ListenMapLongClick:
		h.c.SetOnMapLongClickListener(func(at orb.Point) { fire("map_long_click %s", formatPoint(at)) })
	case ListenMarkerClick:
		h.c.SetOnMarkerClickListener(func(m *coordinator.Marker) bool {
			fire("marker_click %s", h.name(m.ID()))
			return st.Consume
		})
	case ListenMarkerDrag:
		h.c.SetOnMarkerDragListener(&dragRecorder{h: h, fire: fire})
	case ListenPolylineClick:
		h.c.SetOnPolylineClickListener(func(p *coordinator.Polyline) { fire("polyline_click %s", h.name(p.ID())) })
	case ListenCircleClick:
		h.c.SetOnCircleClickListener(func(ci *coordinator.Circle) { fire("circle_click %s", h.name(ci.ID())) })
	case ListenCameraIdle:
		h.c.SetOnCameraIdleListener(func() { fire("camera_idle") })
	case ListenMapLoaded:
		h.c.SetOnMapLoadedCallback(func() { fire("map_loaded") })
	case ListenMapReady:
		h.c.GetMapAsync(func(c *coordinator.Coordinator) { fire("map_ready %s", c.Phase()) })
	}
}

type dragRecorder struct {
	h    *Harness
	fire func(format string, args ...any)
}

func (d *dragRecorder) OnMarkerDragStart(m *coordinator.Marker) {
	d.fire("marker_drag_start %s", d.h.name(m.ID()))
}

func (d *dragRecorder) OnMarkerDrag(m *coordinator.Marker) {
	d.fire("marker_drag %s %s", d.h.name(m.ID()), formatPoint(m.Position()))
}

func (d *dragRecorder) OnMarkerDragEnd(m *coordinator.Marker) {
	d.fire("marker_drag_end %s %s", d.h.name(m.ID()), formatPoint(m.Position()))
}
