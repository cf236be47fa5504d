package main

import (
	"fmt"
	"os"

	"github.com/aretw0/bpmngen/pkg/definition"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [FILE]",
	Short: "Write a sample workflow definition",
	Long: `Writes an order-processing sample to FILE (default workflow.yaml).

A definition has a name and a list of pools. Each pool has an id, an
optional name, lanes and flows:

  name: My Workflow
  pools:
    - id: Pool1
      name: Sales
      lanes:
        - id: Lane1
          name: Front desk
          elements:
            - {id: Start, type: startEvent}
            - {id: Check, type: userTask, assignee: alice}
            - {id: OK, type: exclusiveGateway, default: Flow_3}
            - {id: End, type: endEvent}
      flows:
        - {id: Flow_1, source: Start, target: Check}
        - {id: Flow_2, source: Check, target: OK}
        - {id: Flow_3, source: OK, target: End}

Element types follow BPMN 2.0 (startEvent, endEvent, task, userTask,
serviceTask, exclusiveGateway, parallelGateway, inclusiveGateway, ...).
Any other key on an element is kept as an attribute; a gateway's default
must name a flow leaving it. Element ids must be unique and flows may only
connect elements of their own pool.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "workflow.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := os.WriteFile(path, definition.Sample, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample definition to %s\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}
