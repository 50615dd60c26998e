package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshot_Format(t *testing.T) {
	result := NewResult()
	result.Phase = "loaded"
	result.Trace = []string{"view.new", "popup.open Depot\nopen @1,2"}
	result.Callbacks = []string{"marker_click depot"}

	want := "scenario: demo\n" +
		"phase: loaded\n" +
		"trace:\n" +
		"  view.new\n" +
		"  popup.open Depot\\nopen @1,2\n" +
		"callbacks:\n" +
		"  marker_click depot\n"
	assert.Equal(t, want, string(Snapshot("demo", result)))
}

func TestSnapshot_Empty(t *testing.T) {
	result := NewResult()
	result.Phase = "new"

	assert.Equal(t, "scenario: empty\nphase: new\ntrace:\ncallbacks:\n", string(Snapshot("empty", result)))
}

func TestSnapshot_Deterministic(t *testing.T) {
	s := mustParse(t, `
name: snapshot_determinism
description: snapshots of repeated runs are byte-identical
steps:
  - op: add_circle
    handle: zone
    at: [0, 0]
    radius: 50
  - op: add_marker
    handle: depot
    at: [1, 2]
`+bringUpSteps+`
assertions:
  - type: phase
    phase: loaded
`)
	first := Snapshot(s.Name, mustRun(t, s))
	second := Snapshot(s.Name, mustRun(t, s))
	assert.Equal(t, first, second)
}

func TestAssertGolden_FromResult(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/pending_overlays.yaml")
	if err != nil {
		t.Fatal(err)
	}
	result := mustRun(t, scenario)
	AssertGolden(t, scenario.Name, result)
}
