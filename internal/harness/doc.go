// Package harness runs YAML-scripted scenarios against a coordinator backed
// by the simulated rendering engine.
//
// A scenario is a list of steps (lifecycle calls, engine signals, camera
// commands, overlay changes, gestures) followed by assertions on what
// reached the engine, which caller callbacks fired, the final phase and
// the pending/live overlay counts.
//
// Every run is deterministic: session ids come from a sequential generator,
// work posted to the host UI thread is flushed after each step, and the
// simulated engine only reaches a milestone when a step signals it. The
// engine trace of a run can be compared against a golden file with
// RunWithGolden.
//
// Example:
//
//	name: pending_lines
//	description: lines added before style readiness attach in order
//	steps:
//	  - op: add_polyline
//	    handle: a
//	    points: [[0, 0], [1, 1]]
//	  - op: on_create
//	  - op: map_ready
//	  - op: style_loaded
//	assertions:
//	  - type: trace_contains
//	    op: "line.create l0 #0"
package harness
