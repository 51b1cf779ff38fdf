package main

import (
	"github.com/spf13/cobra"
)

// Build metadata, overridden at link time.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "patchbay",
	Short: "patchbay is a node graph runtime for dataflow patches",
	Long: `Patchbay keeps a patch of typed nodes wired together by edges and
reevaluates everything downstream whenever a value changes. The CLI can
serve the JSON API, list the node type catalog, and run a demo patch.`,
	Version: version,
}

func init() {
	rootCmd.SetVersionTemplate("patchbay {{ .Version }}\n")
}
