package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/razonbilstro/nucleo/internal/dispatch"
	"github.com/razonbilstro/nucleo/internal/output"
)

var (
	flagRunForce      bool
	flagRunBackground bool
	flagRunTimeout    int
)

func init() {
	runCmd.Flags().BoolVarP(&flagRunForce, "force", "f", false, "skip confirmation for dangerous/unknown commands")
	runCmd.Flags().BoolVarP(&flagRunBackground, "background", "b", false, "run in a detached tmux session")
	runCmd.Flags().IntVar(&flagRunTimeout, "timeout", 0, "synchronous timeout in seconds (0 = configured default)")

	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run <command>",
	Short: "Classify, confirm and execute a shell command",
	Long: `Run a command through the dispatcher.

Flow:
1. Classify the leading token as safe, dangerous or unknown
2. Safe: execute immediately; dangerous/unknown: confirm (default no)
3. Long-running tools and --background go straight to a detached tmux
   session, without a confirmation stop
4. Synchronous commands run under a bounded timeout with output capture
5. Every synchronous execution is appended to the journal

Exit codes: the command's own exit code on execution, 124 on timeout,
2 when the confirmation is declined.

Examples:
  nucleo run "ls -la"
  nucleo run "rm -rf ./build"
  nucleo run "nmap -sS 10.0.0.0/24"
  nucleo run --force "systemctl restart ssh"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		command := args[0]

		d, err := setup()
		if err != nil {
			return err
		}
		defer d.close()

		if flagRunTimeout > 0 {
			d.cfg.General.TimeoutSecs = flagRunTimeout
			// Rebuild with the override; setup wired the configured value.
			d.dispatcher = rebuildDispatcher(d)
		}

		mode := dispatch.ModeNormal
		if flagRunForce {
			mode = dispatch.ModeForce
		}
		if flagRunBackground {
			mode = dispatch.ModeBackground
		}

		out := output.New(output.Format(GetOutput()))

		var stream *os.File
		if GetOutput() == "text" {
			stream = os.Stdout
		}

		result, err := d.dispatcher.Dispatch(cmd.Context(), dispatch.Options{
			Command: command,
			Mode:    mode,
			Confirm: dispatch.ConfirmStrict,
			Stream:  stream,
		})
		if err != nil {
			return writeError(cmd, out, "dispatch_failed", command, err)
		}

		return reportResult(cmd, out, command, result)
	},
}

// exitCodeError carries the process exit code up to Execute, so deferred
// cleanup in RunE (the history mirror close) runs before the process exits.
type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// reportResult renders a dispatch result and maps it to the process exit
// code: 0 for success and sessioned, 2 for a declined confirmation, the
// command's own exit code otherwise.
func reportResult(cmd *cobra.Command, out *output.Writer, command string, result *dispatch.Result) error {
	resp := map[string]any{
		"outcome": string(result.Outcome),
		"command": command,
		"class":   string(result.Class),
	}

	switch result.Outcome {
	case dispatch.OutcomeSessioned:
		resp["session"] = result.SessionName
	case dispatch.OutcomeCancelled:
		// No output, no exit code: the command never ran.
	default:
		resp["exit_code"] = result.ExitCode
		resp["duration_ms"] = result.Duration.Milliseconds()
	}

	if GetOutput() == "text" {
		fmt.Fprintf(os.Stderr, "[nucleo] %s", output.OutcomeBadge(string(result.Outcome)))
		switch result.Outcome {
		case dispatch.OutcomeSessioned:
			fmt.Fprintf(os.Stderr, " session=%s (attach: tmux attach -t %s)\n",
				result.SessionName, result.SessionName)
		case dispatch.OutcomeCancelled:
			fmt.Fprintln(os.Stderr)
		default:
			fmt.Fprintf(os.Stderr, " exit=%d duration=%s\n", result.ExitCode, result.Duration.Round(time.Millisecond))
		}
	} else {
		if err := out.Write(resp); err != nil {
			return err
		}
	}

	switch result.Outcome {
	case dispatch.OutcomeSuccess, dispatch.OutcomeSessioned:
		return nil
	case dispatch.OutcomeCancelled:
		return exitWith(cmd, 2)
	default:
		return exitWith(cmd, result.ExitCode)
	}
}

// exitWith returns the sentinel for a non-zero exit without cobra printing
// the outcome as an error; the result was already rendered.
func exitWith(cmd *cobra.Command, code int) error {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return exitCodeError{code: code}
}
