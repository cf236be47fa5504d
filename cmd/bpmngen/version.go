package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/bpmngen"
	"github.com/aretw0/bpmngen/internal/presentation/tui"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of bpmngen",
	Run: func(cmd *cobra.Command, args []string) {
		banner, _ := cmd.Flags().GetBool("banner")
		if banner {
			tui.PrintBanner(cmd.OutOrStdout(), termenv.ColorProfile())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "bpmngen version %s\n", strings.TrimSpace(bpmngen.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("banner", false, "Print the banner")
}
