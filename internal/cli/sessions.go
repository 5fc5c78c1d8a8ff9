package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/razonbilstro/nucleo/internal/output"
	"github.com/razonbilstro/nucleo/internal/session"
)

// formatSessionCreated converts tmux's epoch-seconds session_created field
// to a readable timestamp, passing unparseable values through.
func formatSessionCreated(created string) string {
	secs, err := strconv.ParseInt(created, 10, 64)
	if err != nil {
		return created
	}
	return time.Unix(secs, 0).Local().Format("2006-01-02 15:04:05")
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsKillCmd)
	rootCmd.AddCommand(sessionsCmd)
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage detached tmux sessions created by the dispatcher",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List dispatcher-owned tmux sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := output.New(output.Format(GetOutput()))

		infos, err := session.NewLauncher().List()
		if err != nil {
			return writeError(cmd, out, "sessions_failed", "", err)
		}

		if GetOutput() != "text" {
			items := make([]map[string]any, 0, len(infos))
			for _, info := range infos {
				items = append(items, map[string]any{
					"name":    info.Name,
					"created": formatSessionCreated(info.Created),
				})
			}
			return out.Write(map[string]any{"sessions": items, "count": len(items)})
		}

		if len(infos) == 0 {
			fmt.Fprintln(os.Stderr, "[nucleo] no active sessions")
			return nil
		}
		rows := make([][]string, 0, len(infos))
		for _, info := range infos {
			rows = append(rows, []string{info.Name, formatSessionCreated(info.Created)})
		}
		output.OutputTable([]string{"SESSION", "CREATED"}, rows)
		return nil
	},
}

var sessionsKillCmd = &cobra.Command{
	Use:   "kill <session-name>",
	Short: "Terminate a dispatcher-owned tmux session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		out := output.New(output.Format(GetOutput()))

		if err := session.NewLauncher().Kill(name); err != nil {
			return writeError(cmd, out, "kill_failed", name, err)
		}

		if GetOutput() == "text" {
			fmt.Fprintf(os.Stderr, "[nucleo] killed session %s\n", name)
			return nil
		}
		return out.Write(map[string]any{"status": "killed", "session": name})
	},
}
