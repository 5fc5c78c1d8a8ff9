package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/razonbilstro/nucleo/internal/history"
	"github.com/razonbilstro/nucleo/internal/journal"
	"github.com/razonbilstro/nucleo/internal/output"
	tuihistory "github.com/razonbilstro/nucleo/internal/tui/history"
)

var (
	flagHistoryOutcome     string
	flagHistorySearch      string
	flagHistoryLimit       int
	flagHistoryOffset      int
	flagHistoryFollow      bool
	flagHistoryInteractive bool
)

func init() {
	historyCmd.Flags().StringVar(&flagHistoryOutcome, "outcome", "", "filter by outcome: success|failed|timed_out")
	historyCmd.Flags().StringVar(&flagHistorySearch, "search", "", "filter by command substring")
	historyCmd.Flags().IntVar(&flagHistoryLimit, "limit", 50, "maximum records to show")
	historyCmd.Flags().IntVar(&flagHistoryOffset, "offset", 0, "records to skip")
	historyCmd.Flags().BoolVarP(&flagHistoryFollow, "follow", "f", false, "stream new records as they are appended")
	historyCmd.Flags().BoolVarP(&flagHistoryInteractive, "interactive", "i", false, "browse records in a TUI")

	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the execution journal",
	Long: `List recorded executions, newest first. Reads from the SQLite mirror
when available and falls back to scanning the journal file.

--follow tails the journal and prints records as they land; --interactive
opens a full-screen browser with filtering and search.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup()
		if err != nil {
			return err
		}
		defer d.close()

		out := output.New(output.Format(GetOutput()))

		if flagHistoryFollow {
			return followJournal(cmd, d)
		}

		records, err := loadHistory(d)
		if err != nil {
			return writeError(cmd, out, "history_failed", "", err)
		}

		if flagHistoryInteractive {
			return tuihistory.Run(records)
		}

		return renderHistory(out, records)
	},
}

// loadHistory prefers the SQLite mirror and falls back to the journal file.
// The journal path applies the same filters in memory so both sources
// behave alike.
func loadHistory(d *deps) ([]journal.Record, error) {
	if d.mirror != nil {
		return d.mirror.List(history.ListOptions{
			Outcome: flagHistoryOutcome,
			Search:  flagHistorySearch,
			Limit:   flagHistoryLimit,
			Offset:  flagHistoryOffset,
		})
	}

	all, err := d.journal.ReadAll()
	if err != nil {
		return nil, err
	}
	// Newest first, matching the mirror's ordering.
	records := make([]journal.Record, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		rec := all[i]
		if flagHistoryOutcome != "" && rec.Outcome != flagHistoryOutcome {
			continue
		}
		if flagHistorySearch != "" && !strings.Contains(rec.Command, flagHistorySearch) {
			continue
		}
		records = append(records, rec)
	}
	limit := flagHistoryLimit
	if limit <= 0 {
		limit = 50
	}
	if flagHistoryOffset < len(records) {
		records = records[flagHistoryOffset:]
	} else {
		records = nil
	}
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func renderHistory(out *output.Writer, records []journal.Record) error {
	if GetOutput() != "text" {
		items := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			items = append(items, recordPayload(rec))
		}
		return out.Write(map[string]any{"records": items, "count": len(items)})
	}

	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "[nucleo] no records")
		return nil
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.Timestamp.Local().Format("2006-01-02 15:04:05"),
			rec.Outcome,
			rec.Class,
			fmt.Sprintf("%d", rec.ExitCode),
			truncateCommand(rec.Command, 60),
		})
	}
	output.OutputTable([]string{"TIME", "OUTCOME", "CLASS", "EXIT", "COMMAND"}, rows)
	return nil
}

// followJournal tails the journal file, printing records as they land.
// Watching the parent directory covers the first append creating the file.
func followJournal(cmd *cobra.Command, d *deps) error {
	path := d.journal.Path()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching journal dir: %w", err)
	}

	var offset int64
	if info, err := os.Stat(path); err == nil {
		offset = info.Size()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	fmt.Fprintf(os.Stderr, "[nucleo] following %s (ctrl+c to stop)\n", path)

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case <-sig:
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching journal: %w", err)
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Name != path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			next, err := emitFrom(path, offset)
			if err != nil {
				return err
			}
			offset = next
		}
	}
}

// emitFrom prints records appended after offset and returns the new offset.
func emitFrom(path string, offset int64) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return offset, nil
		}
		return offset, fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seeking journal: %w", err)
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		var rec journal.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		if GetOutput() == "text" {
			fmt.Printf("%s %s %s exit=%d %s\n",
				rec.Timestamp.Local().Format("15:04:05"),
				output.OutcomeBadge(rec.Outcome),
				rec.Class,
				rec.ExitCode,
				rec.Command)
		} else {
			output.OutputNDJSON(recordPayload(rec))
		}
	}
	if err := scanner.Err(); err != nil {
		return offset, fmt.Errorf("reading journal: %w", err)
	}

	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return offset, fmt.Errorf("tracking journal offset: %w", err)
	}
	return pos, nil
}

func recordPayload(rec journal.Record) map[string]any {
	payload := map[string]any{
		"timestamp":   rec.Timestamp,
		"dispatch_id": rec.DispatchID,
		"command":     rec.Command,
		"class":       rec.Class,
		"outcome":     rec.Outcome,
		"exit_code":   rec.ExitCode,
		"duration_ms": rec.DurationMs,
	}
	if rec.Output != "" {
		payload["output"] = rec.Output
	}
	return payload
}

func truncateCommand(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
