package harness

import (
	"github.com/roach88/mapbridge/internal/coordinator"
)

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Trace lists every call the simulated engine received, in order.
	Trace []string `json:"trace"`

	// Callbacks lists caller callback invocations, in order.
	Callbacks []string `json:"callbacks"`

	// Events holds the coordinator events of the run.
	Events []coordinator.Event `json:"events"`

	// Phase is the readiness phase after the last step.
	Phase string `json:"phase"`

	// Stats is the coordinator buffer state after the last step.
	Stats coordinator.Stats `json:"-"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Trace:     []string{},
		Callbacks: []string{},
		Events:    []coordinator.Event{},
		Errors:    []string{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
