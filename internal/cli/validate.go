package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/mapbridge/internal/config"
	"github.com/roach88/mapbridge/internal/harness"
	"github.com/roach88/mapbridge/internal/style"
)

// File kinds the validate command understands, keyed by extension.
var validators = map[string]struct {
	kind  string
	check func(path string) error
}{
	".yaml": {"scenario", validateScenarioFile},
	".yml":  {"scenario", validateScenarioFile},
	".cue":  {"catalog", validateCatalogFile},
	".toml": {"config", validateConfigFile},
}

// FileError is a validation failure of one file.
type FileError struct {
	File    string `json:"file"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool        `json:"valid"`
	Files  int         `json:"files"`
	Errors []FileError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <path>...",
		Short: "Validate scenarios, style catalogs and configs",
		Long: `Validate files without running anything.

Each path is a file or a directory searched recursively. Files are
checked by extension: .yaml/.yml as scenarios, .cue as style catalogs,
.toml as configs. Other files are ignored.

Examples:
  mapbridge validate ./scenarios
  mapbridge validate ./styles/catalog.cue ./config.toml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	var files []string
	for _, p := range paths {
		found, err := findValidatable(p)
		if err != nil {
			msg := fmt.Sprintf("path not found: %s", p)
			_ = formatter.Error(ErrCodeNotFound, msg, nil)
			return WrapExitError(ExitCommandError, msg, err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		msg := "no scenario, catalog or config files found"
		_ = formatter.Error(ErrCodeNotFound, msg, paths)
		return NewExitError(ExitCommandError, msg)
	}

	result := ValidationResult{Valid: true, Files: len(files)}
	for _, file := range files {
		v := validators[filepath.Ext(file)]
		formatter.VerboseLog("Validating %s %s", v.kind, file)
		if err := v.check(file); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, FileError{
				File:    file,
				Kind:    v.kind,
				Message: err.Error(),
				Line:    errorLine(err),
			})
		}
	}

	if result.Valid {
		if formatter.JSON() {
			return formatter.Success(result)
		}
		fmt.Fprintf(formatter.Writer, "✓ %d file(s) valid\n", result.Files)
		return nil
	}
	return outputValidationErrors(formatter, result)
}

// findValidatable returns path when it is a file, otherwise every file below
// it with a known extension.
func findValidatable(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if _, ok := validators[filepath.Ext(path)]; !ok {
			return nil, nil
		}
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
		if _, ok := validators[filepath.Ext(p)]; ok {
			files = append(files, p)
		}
		return nil
	})
	return files, err
}

func validateScenarioFile(path string) error {
	_, err := harness.LoadScenario(path)
	return err
}

func validateCatalogFile(path string) error {
	_, err := style.LoadFile(path)
	return err
}

func validateConfigFile(path string) error {
	_, err := config.Load(path)
	return err
}

// errorLine extracts the source line of a catalog error, or 0.
func errorLine(err error) int {
	var loadErr *style.LoadError
	if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
		return loadErr.Pos.Line()
	}
	return 0
}

// outputValidationErrors outputs the failed files; validation failures exit
// with ExitFailure.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	msg := fmt.Sprintf("%d of %d file(s) invalid", len(result.Errors), result.Files)

	if formatter.JSON() {
		if err := formatter.Response(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: ErrCodeInvalid, Message: msg},
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	w := formatter.Writer
	for _, e := range result.Errors {
		if e.Line > 0 {
			fmt.Fprintf(w, "✗ %s (%s, line %d)\n", e.File, e.Kind, e.Line)
		} else {
			fmt.Fprintf(w, "✗ %s (%s)\n", e.File, e.Kind)
		}
		fmt.Fprintf(w, "  %s\n", e.Message)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Validation failed: %s\n", msg)
	return NewExitError(ExitFailure, msg)
}
