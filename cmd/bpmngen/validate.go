package main

import (
	"fmt"
	"os"

	"github.com/aretw0/bpmngen/pkg/definition"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a workflow definition for structural errors",
	Long:  `Parses the definition and reports syntax errors, duplicate ids, dangling flow references and empty pools. Unknown element types are reported as warnings.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		res, err := definition.Validate(raw)
		if err != nil {
			if ves := definition.ValidationErrors(err); len(ves) > 0 {
				for _, ve := range ves {
					fmt.Fprintf(out, "✗ %s\n", ve)
				}
				return fmt.Errorf("%d validation errors", len(ves))
			}
			return err
		}

		for _, w := range res.Warnings {
			fmt.Fprintf(out, "! %s\n", w)
		}
		fmt.Fprintln(out, "Definition is valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
