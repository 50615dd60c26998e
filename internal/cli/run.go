package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mapbridge/internal/config"
	"github.com/roach88/mapbridge/internal/coordinator"
	"github.com/roach88/mapbridge/internal/harness"
	"github.com/roach88/mapbridge/internal/journal"
	"github.com/roach88/mapbridge/internal/style"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config   string // TOML config with base map options, catalog and journal
	Database string // journal path, overrides the config
	Golden   string // directory of golden snapshots
	Update   bool   // regenerate golden snapshots
	Filter   string // scenario name glob
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	File   string   `json:"file"`
	Pass   bool     `json:"pass"`
	Phase  string   `json:"phase,omitempty"`
	Ops    int      `json:"ops"`
	Errors []string `json:"errors,omitempty"`
}

// RunResult holds the overall run result.
type RunResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
	Journal   string           `json:"journal,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario-file|scenarios-dir>",
		Short: "Run map scenarios against the simulated engine",
		Long: `Run YAML map scenarios against the simulated rendering engine.

Each scenario drives a fresh coordinator through its steps and checks
its assertions. With --golden, the engine trace and callbacks are also
compared against a snapshot named after the scenario. With --db or
--config, every coordinator event is written to the SQLite journal.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, unreadable config, etc.)

Examples:
  mapbridge run ./scenarios
  mapbridge run ./scenarios --filter "style_*"
  mapbridge run ./scenarios --golden ./scenarios/golden --update
  mapbridge run ./scenarios/pending.yaml --db ./journal.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to TOML config")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal")
	cmd.Flags().StringVar(&opts.Golden, "golden", "", "directory of golden snapshots")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden snapshots")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

// runEnv is what a run needs besides the scenarios themselves.
type runEnv struct {
	harnessOpts []harness.Option
	journal     *journal.Journal
	journalPath string
	recorder    *journal.Recorder
}

func (e *runEnv) Close() error {
	return e.journal.Close()
}

func runScenarios(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	if _, err := os.Stat(path); err != nil {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("scenario path not found: %s", path), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("scenario path not found: %s", path))
	}
	if opts.Update && opts.Golden == "" {
		return NewExitError(ExitCommandError, "--update requires --golden")
	}

	env, err := prepareRun(opts, logger)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return err
	}
	if env.journal != nil {
		defer env.Close()
	}

	files, err := findScenarioFiles(path, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	result := RunResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
		Journal:   env.journalPath,
	}
	if len(files) == 0 {
		if formatter.JSON() {
			return formatter.Success(result)
		}
		fmt.Fprintln(formatter.Writer, "No scenarios found.")
		return nil
	}

	for _, file := range files {
		sr := runScenario(file, opts, env)
		if !formatter.JSON() {
			printScenarioResult(formatter.Writer, sr, opts.Verbose)
		}
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if env.recorder != nil && env.recorder.Failed() > 0 {
		logger.Warn("journal incomplete", "path", env.journalPath, "failed_writes", env.recorder.Failed())
	}

	if formatter.JSON() {
		return outputRunJSON(formatter, result)
	}
	return outputRunText(formatter, result)
}

// prepareRun resolves the config, style catalog and journal of a run.
func prepareRun(opts *RunOptions, logger *slog.Logger) (*runEnv, error) {
	env := &runEnv{harnessOpts: []harness.Option{harness.WithLogger(logger)}}

	if opts.Config != "" {
		cfg, err := config.Load(opts.Config)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load config", err)
		}
		env.harnessOpts = append(env.harnessOpts, harness.WithMapOptions(cfg.Map))
		if cfg.CatalogPath != "" {
			cat, err := style.LoadFile(cfg.CatalogPath)
			if err != nil {
				return nil, WrapExitError(ExitCommandError, "failed to load style catalog", err)
			}
			env.harnessOpts = append(env.harnessOpts, harness.WithStyleCatalog(cat))
		}
		env.journalPath = cfg.JournalPath
	}
	if opts.Database != "" {
		env.journalPath = opts.Database
	}
	if env.journalPath == "" {
		return env, nil
	}

	if err := os.MkdirAll(filepath.Dir(env.journalPath), 0o755); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to create journal directory", err)
	}
	j, err := journal.Open(env.journalPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	env.journal = j
	env.recorder = journal.NewRecorder(j, logger)
	env.harnessOpts = append(env.harnessOpts,
		harness.WithRecorder(env.recorder),
		harness.WithSessionGenerator(coordinator.UUIDv7Generator{}),
	)
	logger.Debug("journaling scenario events", "path", env.journalPath)
	return env, nil
}

// findScenarioFiles returns path itself when it is a file, otherwise every
// YAML file below it whose base name matches filter.
func findScenarioFiles(path, filter string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(p)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			name := strings.TrimSuffix(d.Name(), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, p)
		return nil
	})
	return files, err
}

// runScenario executes a single scenario file and returns its result.
func runScenario(file string, opts *RunOptions, env *runEnv) ScenarioResult {
	sr := ScenarioResult{Name: filepath.Base(file), File: file}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("load error: %v", err)}
		return sr
	}
	sr.Name = scenario.Name

	result, err := harness.Run(scenario, env.harnessOpts...)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("execution error: %v", err)}
		return sr
	}
	sr.Phase = result.Phase
	sr.Ops = len(result.Trace)
	sr.Errors = result.Errors
	sr.Pass = result.Pass

	if opts.Golden == "" {
		return sr
	}
	if err := checkGolden(opts, scenario.Name, result); err != nil {
		sr.Pass = false
		sr.Errors = append(sr.Errors, err.Error())
	}
	return sr
}

// checkGolden compares or rewrites the golden snapshot of a scenario. A
// missing snapshot is not an error; the assertions alone decide the result.
func checkGolden(opts *RunOptions, name string, result *harness.Result) error {
	path := goldenFilePath(opts.Golden, name)
	snapshot := harness.Snapshot(name, result)

	if opts.Update {
		if err := os.MkdirAll(opts.Golden, 0o755); err != nil {
			return fmt.Errorf("failed to create golden directory: %w", err)
		}
		if err := os.WriteFile(path, snapshot, 0o644); err != nil {
			return fmt.Errorf("failed to write golden file: %w", err)
		}
		return nil
	}

	want, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read golden file: %w", err)
	}
	if !bytes.Equal(want, snapshot) {
		return errors.New("golden file mismatch (run with --update to regenerate)")
	}
	return nil
}

// goldenFilePath returns the snapshot path of a scenario.
func goldenFilePath(dir, name string) string {
	return filepath.Join(dir, name+".golden")
}

func printScenarioResult(w io.Writer, sr ScenarioResult, verbose bool) {
	if sr.Pass {
		if verbose {
			fmt.Fprintf(w, "✓ %s (%s, %d ops)\n", sr.Name, sr.Phase, sr.Ops)
		} else {
			fmt.Fprintf(w, "✓ %s\n", sr.Name)
		}
		return
	}
	fmt.Fprintf(w, "✗ %s\n", sr.Name)
	for _, e := range sr.Errors {
		for _, line := range strings.Split(strings.TrimRight(e, "\n"), "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

// outputRunJSON outputs the run result as JSON.
func outputRunJSON(formatter *OutputFormatter, result RunResult) error {
	if result.Failed == 0 {
		return formatter.Success(result)
	}

	msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
	if err := formatter.Response(CLIResponse{
		Status: "error",
		Data:   result,
		Error:  &CLIError{Code: ErrCodeScenarioFailed, Message: msg},
	}); err != nil {
		return err
	}
	return NewExitError(ExitFailure, msg)
}

// outputRunText outputs the run summary as text.
func outputRunText(formatter *OutputFormatter, result RunResult) error {
	w := formatter.Writer

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Journal != "" {
		fmt.Fprintf(w, "Journal: %s\n", result.Journal)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
