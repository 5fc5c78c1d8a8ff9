package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/razonbilstro/nucleo/internal/output"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the nucleo version",
	RunE: func(cmd *cobra.Command, args []string) error {
		if GetOutput() == "text" {
			fmt.Printf("nucleo %s\n", Version)
			return nil
		}
		out := output.New(output.Format(GetOutput()))
		return out.Write(map[string]any{"version": Version})
	},
}
