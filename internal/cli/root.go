// Package cli implements the nucleo command surface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/razonbilstro/nucleo/internal/output"
)

var (
	flagOutput string
	flagConfig string
)

var rootCmd = &cobra.Command{
	Use:   "nucleo",
	Short: "Policy-gated command dispatcher for the Razonbilstro nucleus",
	Long: `nucleo classifies shell commands against safe/dangerous policy lists,
confirms risky ones with the operator, executes them under a bounded
timeout with output capture, and appends every execution to an
append-only journal. Long-running tools are handed to detached tmux
sessions instead of blocking the dispatcher.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		output.SetOutputMode(flagOutput)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "text", "output format: text|json|yaml")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (overrides .nucleo/config.toml)")
}

// GetOutput returns the selected output format.
func GetOutput() string { return flagOutput }

// Execute runs the root command. Exit codes are surfaced through
// exitCodeError so command defers (mirror close) run before the exit.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var ec exitCodeError
		if errors.As(err, &ec) {
			os.Exit(ec.code)
		}
		os.Exit(1)
	}
}

// writeError outputs an error response and silences cobra's own printing.
func writeError(cmd *cobra.Command, out *output.Writer, status, command string, err error) error {
	resp := map[string]any{
		"status":  status,
		"command": command,
		"error":   err.Error(),
	}

	if GetOutput() == "json" || GetOutput() == "yaml" {
		_ = out.Write(resp)
	} else {
		fmt.Fprintf(os.Stderr, "[nucleo] Error: %s\n", err.Error())
	}

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return err
}
