package main

import (
	"fmt"
	"os"

	"github.com/aretw0/bpmngen/internal/cli"
	"github.com/aretw0/bpmngen/pkg/definition"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate FILE",
	Short: "Compile a definition into a BPMN diagram and preview it",
	Long: `Validates the definition, sends it to the generation service, stores the
resulting BPMN XML and renders a preview. Rendering problems are shown inside
the preview and do not fail the command.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		opts := options(cmd)
		opts.Preview, _ = cmd.Flags().GetString("preview")
		opts.PreviewOut, _ = cmd.Flags().GetString("out")

		app, err := openApp(cmd, opts)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := app.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		out := cmd.OutOrStdout()
		res, err := app.Studio.Generate(ctx, raw)
		if err != nil {
			for _, ve := range definition.ValidationErrors(err) {
				fmt.Fprintf(out, "✗ %s\n", ve)
			}
			return err
		}

		for _, w := range res.Warnings {
			fmt.Fprintf(out, "! %s\n", w)
		}
		cli.PrintSystemMessage(out, "Diagram %q compiled (%d bytes).", res.Diagram.Name, len(res.Diagram.Markup))
		if res.Render != nil {
			if res.RenderErr != nil {
				cli.PrintSystemMessage(out, "Preview: %s (%v)", res.Render.Status, res.RenderErr)
			} else if opts.Preview != cli.PreviewTerminal {
				cli.PrintSystemMessage(out, "Preview written to %s", previewPath(opts))
			}
		}
		return nil
	},
}

func previewPath(opts cli.Options) string {
	if opts.PreviewOut == "" {
		return "preview.html"
	}
	return opts.PreviewOut
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().String("preview", cli.PreviewHTML, "Preview target: html, terminal or none")
	generateCmd.Flags().StringP("out", "o", "preview.html", "Output file of the html preview")
}
