package main

import (
	"github.com/aretw0/bpmngen/internal/cli"
	"github.com/aretw0/bpmngen/pkg/export"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Save the last compiled diagram as diagram.bpmn",
	Long:  `Writes the last successfully compiled BPMN XML, byte for byte, to diagram.bpmn.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		opts := options(cmd)
		opts.Preview = cli.PreviewNone

		app, err := openApp(cmd, opts)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := app.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()

		toStdout, _ := cmd.Flags().GetBool("stdout")
		if toStdout {
			_, err = app.Studio.ExportTo(cmd.Context(), export.WriterSink{W: cmd.OutOrStdout()})
			return err
		}

		dir, _ := cmd.Flags().GetString("dir")
		force, _ := cmd.Flags().GetBool("yes")
		sink := &export.FileSink{Dir: dir, Force: force}
		artifact, err := app.Studio.ExportTo(cmd.Context(), sink)
		if err != nil {
			return err
		}
		cli.PrintSystemMessage(cmd.OutOrStdout(), "Saved %s (%s, %d bytes)", sink.Path(artifact), artifact.ContentType, len(artifact.Content))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().String("dir", ".", "Directory to write diagram.bpmn into")
	exportCmd.Flags().BoolP("yes", "y", false, "Overwrite an existing file without asking")
	exportCmd.Flags().Bool("stdout", false, "Write the diagram to stdout instead of a file")
}
