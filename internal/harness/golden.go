package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders the golden file content of a run: the scenario name,
// the final phase, the engine trace and the callback log, one entry per
// line. Newlines inside an entry are written as \n.
func Snapshot(name string, result *Result) []byte {
	var buf strings.Builder
	fmt.Fprintf(&buf, "scenario: %s\n", name)
	fmt.Fprintf(&buf, "phase: %s\n", result.Phase)
	buf.WriteString("trace:\n")
	for _, op := range result.Trace {
		fmt.Fprintf(&buf, "  %s\n", escapeLine(op))
	}
	buf.WriteString("callbacks:\n")
	for _, cb := range result.Callbacks {
		fmt.Fprintf(&buf, "  %s\n", escapeLine(cb))
	}
	return []byte(buf.String())
}

func escapeLine(s string) string {
	return strings.ReplaceAll(s, "\n", `\n`)
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file. The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result against a golden file, without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, Snapshot(scenarioName, result))
}
