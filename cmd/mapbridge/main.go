// Command mapbridge runs map scenarios against the simulated engine and
// inspects the coordinator event journal.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/mapbridge/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "mapbridge:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
