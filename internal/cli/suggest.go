package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/razonbilstro/nucleo/internal/brain"
	"github.com/razonbilstro/nucleo/internal/dispatch"
	"github.com/razonbilstro/nucleo/internal/output"
)

var (
	flagSuggestContext string
	flagSuggestDryRun  bool
)

func init() {
	suggestCmd.Flags().StringVar(&flagSuggestContext, "context", "", "extra context passed to the brain")
	suggestCmd.Flags().BoolVar(&flagSuggestDryRun, "dry-run", false, "print the suggested command without executing")

	rootCmd.AddCommand(suggestCmd)
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <natural language request>",
	Short: "Ask the brain for a command, then dispatch it",
	Long: `Send a natural-language request to the brain endpoint, show the
suggested command, and run it through the dispatcher.

The suggestion is untrusted input: it goes through the same classify
and confirm gate as a typed command. Because the operator already asked
for it, an empty confirmation answer accepts here (Y/n) instead of
declining.

Examples:
  nucleo suggest "scan the local subnet for open web ports"
  nucleo suggest --dry-run "archive the logs directory"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := strings.Join(args, " ")

		d, err := setup()
		if err != nil {
			return err
		}
		defer d.close()

		out := output.New(output.Format(GetOutput()))

		client := brain.NewClient(brain.Config{
			BaseURL: d.cfg.Brain.Endpoint,
			Timeout: time.Duration(d.cfg.Brain.TimeoutSecs) * time.Second,
		})

		contextHint := flagSuggestContext
		if contextHint == "" {
			contextHint = d.cfg.Brain.Context
		}

		command, err := client.Suggest(cmd.Context(), input, contextHint)
		if err != nil {
			return writeError(cmd, out, "suggest_failed", input, err)
		}

		if GetOutput() == "text" {
			fmt.Fprintf(os.Stderr, "[nucleo] suggested: %s\n", command)
		}

		if flagSuggestDryRun {
			if GetOutput() == "text" {
				return nil
			}
			return out.Write(map[string]any{
				"status":  "suggested",
				"input":   input,
				"command": command,
			})
		}

		var stream *os.File
		if GetOutput() == "text" {
			stream = os.Stdout
		}

		result, err := d.dispatcher.Dispatch(cmd.Context(), dispatch.Options{
			Command: command,
			Mode:    dispatch.ModeNormal,
			Confirm: dispatch.ConfirmAssistant,
			Stream:  stream,
		})
		if err != nil {
			return writeError(cmd, out, "dispatch_failed", command, err)
		}

		return reportResult(cmd, out, command, result)
	},
}
