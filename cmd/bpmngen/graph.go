package main

import (
	"fmt"
	"os"

	"github.com/aretw0/bpmngen/internal/presentation/graph"
	"github.com/aretw0/bpmngen/pkg/definition"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph FILE",
	Short: "Print the definition as a Mermaid flowchart",
	Long:  `Validates the definition and outputs a Mermaid diagram (graph LR) with pools and lanes as subgraphs. Elements with unknown types are highlighted.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		res, err := definition.Validate(raw)
		if err != nil {
			return err
		}

		overlay := &graph.GraphOverlay{}
		for _, w := range res.Warnings {
			overlay.Flagged = append(overlay.Flagged, w.Ref)
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(res.Definition, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
