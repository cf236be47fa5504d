package main

import (
	"fmt"
	"os"

	"github.com/aretw0/bpmngen/internal/cli"
	"github.com/aretw0/bpmngen/pkg/compiler"
	"github.com/spf13/cobra"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bpmngen",
		Short:         "bpmngen turns YAML workflow definitions into BPMN 2.0 diagrams",
		Long:          `bpmngen validates pool/lane/element/flow definitions, compiles them through the BPMN generation service and previews or exports the result.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	flags := cmd.PersistentFlags()
	flags.String("compiler-url", cli.EnvOr(cli.EnvCompilerURL, "http://localhost:8000"), "Base URL of the BPMN generation service ($"+cli.EnvCompilerURL+")")
	flags.Duration("timeout", compiler.DefaultTimeout, "Timeout of a compilation request")
	flags.String("store", cli.EnvOr(cli.EnvStore, "file"), "Diagram store: file, redis or memory ($"+cli.EnvStore+")")
	flags.String("store-dir", ".bpmngen", "Directory of the file store")
	flags.String("redis-addr", cli.EnvOr(cli.EnvRedisAddr, ""), "Redis address for the redis store ($"+cli.EnvRedisAddr+")")
	flags.String("log-level", "warn", "Log level: debug, info, warn or error")
	flags.String("metrics-textfile", "", "Write Prometheus metrics to this file on exit")
	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// options reads the shared flags of cmd.
func options(cmd *cobra.Command) cli.Options {
	flags := cmd.Flags()
	opts := cli.Options{}
	opts.CompilerURL, _ = flags.GetString("compiler-url")
	opts.Timeout, _ = flags.GetDuration("timeout")
	opts.Store, _ = flags.GetString("store")
	opts.StoreDir, _ = flags.GetString("store-dir")
	opts.RedisAddr, _ = flags.GetString("redis-addr")
	opts.LogLevel, _ = flags.GetString("log-level")
	opts.MetricsTextfile, _ = flags.GetString("metrics-textfile")
	if opts.Timeout <= 0 {
		opts.Timeout = compiler.DefaultTimeout
	}
	return opts
}

// openApp builds the application for commands that talk to the store or compiler.
func openApp(cmd *cobra.Command, opts cli.Options) (*cli.App, error) {
	logger, err := cli.NewLogger(opts.LogLevel)
	if err != nil {
		return nil, err
	}
	return cli.NewApp(opts, logger, cmd.OutOrStdout())
}
