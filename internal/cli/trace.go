package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/mapbridge/internal/coordinator"
	"github.com/roach88/mapbridge/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string // optional; lists sessions when empty
	Kind     string // optional event kind filter
}

// SessionSummary is one journaled map lifetime.
type SessionSummary struct {
	ID       string `json:"id"`
	Events   int    `json:"events"`
	FirstSeq int64  `json:"first_seq"`
	LastSeq  int64  `json:"last_seq"`
}

// TraceEvent is one journaled coordinator event.
type TraceEvent struct {
	Seq     int64  `json:"seq"`
	Kind    string `json:"kind"`
	Subject string `json:"subject,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// TraceResult holds the events of one session.
type TraceResult struct {
	Session string       `json:"session"`
	Kind    string       `json:"kind,omitempty"`
	Events  []TraceEvent `json:"events"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect the coordinator event journal",
		Long: `Inspect the SQLite journal written by "mapbridge run".

Without --session, lists every journaled map lifetime. With --session,
prints that lifetime's events in order: readiness transitions, queued
and replayed camera commands, overlay attachments and dispatch faults.

Examples:
  mapbridge trace --db ./journal.db
  mapbridge trace --db ./journal.db --session 0192f0c4-...
  mapbridge trace --db ./journal.db --session 0192f0c4-... --kind transition
  mapbridge trace --db ./journal.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session to print")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter to one event kind")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	// Opening a missing journal would create an empty one.
	if _, err := os.Stat(opts.Database); err != nil {
		msg := fmt.Sprintf("journal not found: %s", opts.Database)
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}
	if opts.Kind != "" && opts.Session == "" {
		return NewExitError(ExitCommandError, "--kind requires --session")
	}
	if opts.Kind != "" && !slices.Contains(coordinator.EventKinds(), coordinator.EventKind(opts.Kind)) {
		msg := fmt.Sprintf("unknown event kind %q", opts.Kind)
		_ = formatter.Error(ErrCodeInvalid, msg, coordinator.EventKinds())
		return NewExitError(ExitCommandError, msg)
	}

	j, err := journal.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer j.Close()

	if opts.Session == "" {
		return listSessions(ctx, j, formatter)
	}

	var events []coordinator.Event
	if opts.Kind != "" {
		events, err = j.ReadKind(ctx, opts.Session, coordinator.EventKind(opts.Kind))
	} else {
		events, err = j.ReadSession(ctx, opts.Session)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	result := TraceResult{
		Session: opts.Session,
		Kind:    opts.Kind,
		Events:  make([]TraceEvent, 0, len(events)),
	}
	for _, e := range events {
		result.Events = append(result.Events, TraceEvent{
			Seq:     e.Seq,
			Kind:    string(e.Kind),
			Subject: e.Subject,
			Detail:  e.Detail,
		})
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	outputTraceText(formatter, result)
	return nil
}

func listSessions(ctx context.Context, j *journal.Journal, formatter *OutputFormatter) error {
	sessions, err := j.Sessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	summaries := make([]SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, SessionSummary{
			ID:       s.ID,
			Events:   s.Events,
			FirstSeq: s.FirstSeq,
			LastSeq:  s.LastSeq,
		})
	}

	if formatter.JSON() {
		return formatter.Success(map[string]any{"sessions": summaries})
	}

	w := formatter.Writer
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No sessions journaled.")
		return nil
	}
	fmt.Fprintf(w, "Sessions (%d):\n", len(summaries))
	for _, s := range summaries {
		fmt.Fprintf(w, "  %s  %d event(s), seq %d..%d\n", s.ID, s.Events, s.FirstSeq, s.LastSeq)
	}
	return nil
}

// outputTraceText prints one session's timeline.
func outputTraceText(formatter *OutputFormatter, result TraceResult) {
	w := formatter.Writer

	if len(result.Events) == 0 {
		fmt.Fprintf(w, "No events found for session: %s\n", result.Session)
		return
	}

	fmt.Fprintf(w, "Session: %s\n", result.Session)
	if result.Kind != "" {
		fmt.Fprintf(w, "Kind: %s\n", result.Kind)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Events ===")
	for _, e := range result.Events {
		fmt.Fprintf(w, "  [%d] %-17s %s", e.Seq, e.Kind, e.Subject)
		if e.Detail != "" {
			fmt.Fprintf(w, " (%s)", e.Detail)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total Events: %d\n", len(result.Events))
}
