package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fieldops",
		Short: "Field operations console tooling",
		Long: `fieldops works with exports from the field operations backend.

Reports resolved here use the same rules as the API server, so a snapshot of
projects and invoices gives the same figures the console shows.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	root.AddCommand(newOutstandingCmd())

	return root
}
