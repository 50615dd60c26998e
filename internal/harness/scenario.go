package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"github.com/roach88/mapbridge/internal/coordinator"
	"github.com/roach88/mapbridge/internal/model"
)

// Scenario is a scripted coordinator run.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Session is the session id prefix. Defaults to "scenario", giving
	// "scenario-1" for the first map lifetime.
	Session string `yaml:"session,omitempty"`

	// Options are the map construction options.
	Options *Options `yaml:"options,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the run after the last step.
	Assertions []Assertion `yaml:"assertions"`
}

// LatLng is a position written as [lat, lng].
type LatLng [2]float64

// Point converts to the orb representation.
func (p LatLng) Point() orb.Point { return model.LatLng(p[0], p[1]) }

// Options are the scenario map options.
type Options struct {
	MapType string  `yaml:"map_type,omitempty"`
	Camera  *LatLng `yaml:"camera,omitempty"`
	Zoom    float64 `yaml:"zoom,omitempty"`
	MinZoom float64 `yaml:"min_zoom,omitempty"`
	MaxZoom float64 `yaml:"max_zoom,omitempty"`
}

// MapOptions converts to model options.
func (o *Options) MapOptions() (model.MapOptions, error) {
	opts := model.DefaultMapOptions()
	if o == nil {
		return opts, nil
	}
	if o.MapType != "" {
		t, err := model.ParseMapType(o.MapType)
		if err != nil {
			return opts, err
		}
		opts.MapType = t
	}
	if o.Camera != nil {
		opts.Camera = &model.CameraPosition{Target: o.Camera.Point(), Zoom: o.Zoom}
	}
	opts.MinZoomPreference = o.MinZoom
	opts.MaxZoomPreference = o.MaxZoom
	return opts, nil
}

// Step is one scenario action. Which fields apply depends on Op.
type Step struct {
	Op        string   `yaml:"op"`
	Handle    string   `yaml:"handle,omitempty"`
	At        *LatLng  `yaml:"at,omitempty"`
	Points    []LatLng `yaml:"points,omitempty"`
	Update    string   `yaml:"update,omitempty"`
	Zoom      float64  `yaml:"zoom,omitempty"`
	DX        float64  `yaml:"dx,omitempty"`
	DY        float64  `yaml:"dy,omitempty"`
	Duration  string   `yaml:"duration,omitempty"`
	Value     float64  `yaml:"value,omitempty"`
	Radius    float64  `yaml:"radius,omitempty"`
	Title     string   `yaml:"title,omitempty"`
	Snippet   string   `yaml:"snippet,omitempty"`
	Clickable bool     `yaml:"clickable,omitempty"`
	Draggable bool     `yaml:"draggable,omitempty"`
	Enabled   *bool    `yaml:"enabled,omitempty"`
	MapType   string   `yaml:"map_type,omitempty"`
	Style     string   `yaml:"style,omitempty"`
	Listener  string   `yaml:"listener,omitempty"`
	Consume   bool     `yaml:"consume,omitempty"`
	Panic     bool     `yaml:"panic,omitempty"`
	Kind      string   `yaml:"kind,omitempty"`
	Code      int      `yaml:"code,omitempty"`
	Payload   string   `yaml:"payload,omitempty"`
}

// Step operations.
const (
	OpOnCreate      = "on_create"
	OpOnDestroy     = "on_destroy"
	OpMapReady      = "map_ready"
	OpStyleLoaded   = "style_loaded"
	OpSetShown      = "set_shown"
	OpMoveCamera    = "move_camera"
	OpAnimateCamera = "animate_camera"
	OpStopAnimation = "stop_animation"
	OpSetMinZoom    = "set_min_zoom"
	OpSetMaxZoom    = "set_max_zoom"
	OpResetZoom     = "reset_zoom"
	OpAddPolyline   = "add_polyline"
	OpAddPolygon    = "add_polygon"
	OpAddCircle     = "add_circle"
	OpAddMarker     = "add_marker"
	OpMoveMarker    = "move_marker"
	OpRemove        = "remove"
	OpClear         = "clear"
	OpSetMapType    = "set_map_type"
	OpSetMapStyle   = "set_map_style"
	OpSetLocation   = "set_location"
	OpDenyLocation  = "deny_location"
	OpFailResubmit  = "fail_resubmit"
	OpListen        = "listen"
	OpClick         = "click"
	OpClickMap      = "click_map"
	OpLongClickMap  = "long_click_map"
	OpDrag          = "drag"
	OpTransact      = "transact"
	OpSnapshot      = "snapshot"
)

// Listener names accepted by the listen step.
const (
	ListenMapClick      = "map_click"
	ListenMapLongClick  = "map_long_click"
	ListenMarkerClick   = "marker_click"
	ListenMarkerDrag    = "marker_drag"
	ListenPolylineClick = "polyline_click"
	ListenCircleClick   = "circle_click"
	ListenCameraIdle    = "camera_idle"
	ListenMapLoaded     = "map_loaded"
	ListenMapReady      = "map_ready"
)

var listeners = map[string]bool{
	ListenMapClick: true, ListenMapLongClick: true, ListenMarkerClick: true,
	ListenMarkerDrag: true, ListenPolylineClick: true, ListenCircleClick: true,
	ListenCameraIdle: true, ListenMapLoaded: true, ListenMapReady: true,
}

// Assertion validates the run.
type Assertion struct {
	// Type selects the check, see the Assert* constants.
	Type string `yaml:"type"`

	// Op is an exact engine call (trace_contains, trace_absent).
	Op string `yaml:"op,omitempty"`

	// Ops are engine calls that must appear in this order (trace_order).
	Ops []string `yaml:"ops,omitempty"`

	// Prefix selects engine calls to count (trace_count).
	Prefix string `yaml:"prefix,omitempty"`

	// Count is the expected number of matches (trace_count, events).
	Count *int `yaml:"count,omitempty"`

	// Callbacks is the exact callback log (callbacks).
	Callbacks []string `yaml:"callbacks,omitempty"`

	// Phase is the expected final phase (phase).
	Phase string `yaml:"phase,omitempty"`

	// Kind is an annotation kind (overlays) or an event kind (events).
	Kind string `yaml:"kind,omitempty"`

	// Pending and Live are the expected overlay counts (overlays).
	Pending *int `yaml:"pending,omitempty"`
	Live    *int `yaml:"live,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceAbsent   = "trace_absent"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertCallbacks     = "callbacks"
	AssertPhase         = "phase"
	AssertOverlays      = "overlays"
	AssertEvents        = "events"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	if _, err := s.Options.MapOptions(); err != nil {
		return fmt.Errorf("options: %w", err)
	}

	handles := make(map[string]string)
	for i := range s.Steps {
		if err := validateStep(&s.Steps[i], handles); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateStep checks the fields op needs. handles maps the handles declared
// so far to the op that declared them; referencing an undeclared one is an
// error.
func validateStep(st *Step, handles map[string]string) error {
	need := func(ok bool, what string) error {
		if !ok {
			return fmt.Errorf("%s requires %s", st.Op, what)
		}
		return nil
	}
	declare := func() error {
		if st.Handle == "" {
			return fmt.Errorf("%s requires handle", st.Op)
		}
		if _, ok := handles[st.Handle]; ok {
			return fmt.Errorf("handle %q declared twice", st.Handle)
		}
		handles[st.Handle] = st.Op
		return nil
	}
	known := func() error {
		if _, ok := handles[st.Handle]; !ok {
			return fmt.Errorf("%s refers to unknown handle %q", st.Op, st.Handle)
		}
		return nil
	}

	switch st.Op {
	case OpOnCreate, OpOnDestroy, OpMapReady, OpStyleLoaded, OpStopAnimation,
		OpResetZoom, OpClear, OpSnapshot:
		return nil
	case OpSetShown, OpSetLocation, OpDenyLocation:
		return need(st.Enabled != nil, "enabled")
	case OpMoveCamera, OpAnimateCamera:
		if _, err := st.cameraUpdate(); err != nil {
			return err
		}
		if st.Duration != "" {
			if _, err := time.ParseDuration(st.Duration); err != nil {
				return fmt.Errorf("duration: %w", err)
			}
		}
		return nil
	case OpSetMinZoom, OpSetMaxZoom:
		return nil
	case OpAddPolyline:
		if err := need(len(st.Points) >= 2, "at least 2 points"); err != nil {
			return err
		}
		return declare()
	case OpAddPolygon:
		if err := need(len(st.Points) >= 3, "at least 3 points"); err != nil {
			return err
		}
		return declare()
	case OpAddCircle:
		if err := need(st.At != nil && st.Radius > 0, "at and a positive radius"); err != nil {
			return err
		}
		return declare()
	case OpAddMarker:
		if err := need(st.At != nil, "at"); err != nil {
			return err
		}
		return declare()
	case OpMoveMarker, OpDrag:
		if err := need(st.At != nil, "at"); err != nil {
			return err
		}
		if err := known(); err != nil {
			return err
		}
		return need(handles[st.Handle] == OpAddMarker, "a marker handle")
	case OpRemove, OpClick:
		return known()
	case OpSetMapType:
		_, err := model.ParseMapType(st.MapType)
		return err
	case OpSetMapStyle:
		return nil
	case OpFailResubmit:
		if err := need(st.Enabled != nil, "enabled"); err != nil {
			return err
		}
		return need(st.Kind == "line" || st.Kind == "fill" || st.Kind == "symbol", "kind line, fill or symbol")
	case OpListen:
		return need(listeners[st.Listener], "a known listener")
	case OpClickMap, OpLongClickMap:
		return need(st.At != nil, "at")
	case OpTransact:
		return need(st.Code != 0, "code")
	case "":
		return fmt.Errorf("op is required")
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
}

// cameraUpdate builds the camera update a move or animate step describes.
func (st *Step) cameraUpdate() (model.CameraUpdate, error) {
	switch st.Update {
	case "zoom_to":
		return model.ZoomTo(st.Zoom), nil
	case "zoom_by":
		return model.ZoomBy(st.Zoom), nil
	case "scroll_by":
		return model.ScrollBy(st.DX, st.DY), nil
	case "latlng":
		if st.At == nil {
			return model.CameraUpdate{}, fmt.Errorf("latlng update requires at")
		}
		return model.NewLatLng(st.At.Point()), nil
	case "latlng_zoom":
		if st.At == nil {
			return model.CameraUpdate{}, fmt.Errorf("latlng_zoom update requires at")
		}
		return model.NewLatLngZoom(st.At.Point(), st.Zoom), nil
	case "":
		return model.CameraUpdate{}, fmt.Errorf("%s requires update", st.Op)
	default:
		return model.CameraUpdate{}, fmt.Errorf("unknown camera update %q", st.Update)
	}
}

var phases = map[string]bool{
	coordinator.PhaseNew.String():         true,
	coordinator.PhaseCreated.String():     true,
	coordinator.PhaseInitialized.String(): true,
	coordinator.PhaseStyleReady.String():  true,
	coordinator.PhaseLoaded.String():      true,
	coordinator.PhaseDestroyed.String():   true,
}

func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	switch a.Type {
	case AssertTraceContains, AssertTraceAbsent:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for %s", index, a.Type)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Prefix == "" {
			return fmt.Errorf("assertions[%d]: prefix is required for trace_count", index)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: a non-negative count is required for trace_count", index)
		}
	case AssertCallbacks:
		if a.Callbacks == nil {
			return fmt.Errorf("assertions[%d]: callbacks list is required (use [] for none)", index)
		}
	case AssertPhase:
		if !phases[a.Phase] {
			return fmt.Errorf("assertions[%d]: unknown phase %q", index, a.Phase)
		}
	case AssertOverlays:
		if _, ok := parseKind(a.Kind); !ok {
			return fmt.Errorf("assertions[%d]: kind must be line, fill or symbol", index)
		}
		if a.Pending == nil && a.Live == nil {
			return fmt.Errorf("assertions[%d]: pending or live is required for overlays", index)
		}
	case AssertEvents:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for events", index)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: a non-negative count is required for events", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

func parseKind(s string) (coordinator.Kind, bool) {
	for _, k := range coordinator.Kinds() {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}
