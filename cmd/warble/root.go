package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"warble/internal/config"
)

var configPathFlag string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "warble",
		Short:         "Operate the warble audio effects daemon",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPathFlag, "config", "", "path to config file")

	root.AddCommand(
		newStatusCommand(),
		newQueueCommand(),
		newEffectsCommand(),
		newConfigCommand(),
	)
	return root
}

func loadConfig() (*config.Config, error) {
	cfg, _, _, err := config.Load(configPathFlag)
	return cfg, err
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	if isatty.IsTerminal(os.Stdout.Fd()) {
		t.SetStyle(table.StyleRounded)
	} else {
		t.SetStyle(table.StyleDefault)
	}
	return t
}

func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
