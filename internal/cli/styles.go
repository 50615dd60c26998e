package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/mapbridge/internal/style"
)

// StylesOptions holds flags for the styles command.
type StylesOptions struct {
	*RootOptions
	Catalog string
}

// StyleRow is one catalog entry.
type StyleRow struct {
	MapType     string `json:"map_type"`
	URI         string `json:"uri"`
	Description string `json:"description,omitempty"`
	Fallback    bool   `json:"fallback,omitempty"`
}

// NewStylesCommand creates the styles command.
func NewStylesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StylesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "styles",
		Short: "List the style source of each map type",
		Long: `List the style catalog: the style source each map type resolves to.

Uses the built-in catalog unless --catalog names a CUE catalog file.

Examples:
  mapbridge styles
  mapbridge styles --catalog ./styles/catalog.cue --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStyles(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "path to a CUE style catalog")

	return cmd
}

func runStyles(opts *StylesOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cat := style.Default()
	if opts.Catalog != "" {
		loaded, err := style.LoadFile(opts.Catalog)
		if err != nil {
			_ = formatter.Error(ErrCodeInvalid, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to load style catalog", err)
		}
		cat = loaded
	}

	rows := make([]StyleRow, 0, len(cat.Styles))
	for _, t := range cat.MapTypes() {
		e := cat.Styles[t]
		rows = append(rows, StyleRow{
			MapType:     t.String(),
			URI:         e.URI,
			Description: e.Description,
			Fallback:    t == cat.Fallback,
		})
	}

	if formatter.JSON() {
		return formatter.Success(map[string]any{"styles": rows})
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MAP TYPE\tURI\tDESCRIPTION")
	for _, r := range rows {
		name := r.MapType
		if r.Fallback {
			name += "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, r.URI, r.Description)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(formatter.Writer, "* fallback for map types without an entry")
	return nil
}
