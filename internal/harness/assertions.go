package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/mapbridge/internal/coordinator"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Trace    []string // Engine trace for debugging context, nil when irrelevant
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, op := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, op)
		}
	}

	return buf.String()
}

// assertTraceContains checks that the engine received the exact call.
func assertTraceContains(trace []string, assertion Assertion) error {
	if slices.Contains(trace, assertion.Op) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("call %q", assertion.Op),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceAbsent checks that the engine never received the exact call.
func assertTraceAbsent(trace []string, assertion Assertion) error {
	i := slices.Index(trace, assertion.Op)
	if i < 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceAbsent,
		Expected: fmt.Sprintf("no call %q", assertion.Op),
		Actual:   fmt.Sprintf("found at position %d", i+1),
		Trace:    trace,
	}
}

// assertTraceOrder checks that the calls appear in the specified order.
// Calls don't need to be consecutive; each is matched after the previous
// match, so a repeated call must appear repeatedly.
func assertTraceOrder(trace []string, assertion Assertion) error {
	pos := 0
	for i, want := range assertion.Ops {
		found := slices.Index(trace[pos:], want)
		if found < 0 {
			actual := fmt.Sprintf("missing call %q", want)
			if i > 0 {
				actual = fmt.Sprintf("%q not found after %q (pos %d)", want, assertion.Ops[i-1], pos)
			}
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("calls in order: %v", assertion.Ops),
				Actual:   actual,
				Trace:    trace,
			}
		}
		pos += found + 1
	}
	return nil
}

// assertTraceCount checks how many calls start with the prefix.
func assertTraceCount(trace []string, assertion Assertion) error {
	count := 0
	for _, op := range trace {
		if strings.HasPrefix(op, assertion.Prefix) {
			count++
		}
	}
	if count != *assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d calls starting with %q", *assertion.Count, assertion.Prefix),
			Actual:   fmt.Sprintf("%d calls", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertCallbacks checks the exact callback log.
func assertCallbacks(callbacks []string, assertion Assertion) error {
	if slices.Equal(callbacks, assertion.Callbacks) {
		return nil
	}
	return &AssertionError{
		Type:     AssertCallbacks,
		Expected: fmt.Sprintf("%q", assertion.Callbacks),
		Actual:   fmt.Sprintf("%q", callbacks),
	}
}

func assertPhase(phase string, assertion Assertion) error {
	if phase == assertion.Phase {
		return nil
	}
	return &AssertionError{
		Type:     AssertPhase,
		Expected: assertion.Phase,
		Actual:   phase,
	}
}

// assertOverlays checks the pending and live counts of one annotation kind.
func assertOverlays(stats coordinator.Stats, assertion Assertion) error {
	kind, _ := parseKind(assertion.Kind)
	pending, live := stats.Pending[kind], stats.Live[kind]
	if (assertion.Pending == nil || *assertion.Pending == pending) &&
		(assertion.Live == nil || *assertion.Live == live) {
		return nil
	}
	return &AssertionError{
		Type:     AssertOverlays,
		Expected: fmt.Sprintf("%s %s", assertion.Kind, formatCounts(assertion.Pending, assertion.Live)),
		Actual:   fmt.Sprintf("%s pending=%d live=%d", assertion.Kind, pending, live),
	}
}

func formatCounts(pending, live *int) string {
	var parts []string
	if pending != nil {
		parts = append(parts, fmt.Sprintf("pending=%d", *pending))
	}
	if live != nil {
		parts = append(parts, fmt.Sprintf("live=%d", *live))
	}
	return strings.Join(parts, " ")
}

// assertEvents checks how many coordinator events of a kind were recorded.
func assertEvents(events []coordinator.Event, assertion Assertion) error {
	count := 0
	for _, e := range events {
		if string(e.Kind) == assertion.Kind {
			count++
		}
	}
	if count != *assertion.Count {
		return &AssertionError{
			Type:     AssertEvents,
			Expected: fmt.Sprintf("%d %s events", *assertion.Count, assertion.Kind),
			Actual:   fmt.Sprintf("%d events", count),
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceAbsent:
			err = assertTraceAbsent(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertCallbacks:
			err = assertCallbacks(result.Callbacks, assertion)
		case AssertPhase:
			err = assertPhase(result.Phase, assertion)
		case AssertOverlays:
			err = assertOverlays(result.Stats, assertion)
		case AssertEvents:
			err = assertEvents(result.Events, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
