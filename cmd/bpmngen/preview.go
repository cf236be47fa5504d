package main

import (
	"github.com/aretw0/bpmngen/internal/cli"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the last compiled diagram again",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
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

		outcome, err := app.Studio.Preview(cmd.Context())
		if err != nil {
			return err
		}
		if opts.Preview != cli.PreviewTerminal {
			cli.PrintSystemMessage(cmd.OutOrStdout(), "Preview %s: %s", outcome.Status, previewPath(opts))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().String("preview", cli.PreviewHTML, "Preview target: html or terminal")
	previewCmd.Flags().StringP("out", "o", "preview.html", "Output file of the html preview")
}
