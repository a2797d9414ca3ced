// Command datavisualiser serves the CSV dashboard and renders charts from
// the command line.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/OmarSajjad/datavisualiser/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "datavisualiser",
		Short:         "Upload CSV files and chart their columns",
		Version:       config.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newRenderCmd(), newPreviewCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}
