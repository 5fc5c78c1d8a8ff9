package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/razonbilstro/nucleo/internal/config"
	"github.com/razonbilstro/nucleo/internal/output"
)

var flagConfigUser bool

func init() {
	configSetCmd.Flags().BoolVar(&flagConfigUser, "user", false, "write to ~/.nucleo/config.toml instead of the project config")

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit nucleo configuration",
	Long: `Read and write configuration values.

Keys use dot notation, e.g. general.timeout_seconds or policy.safe.
List values are comma-separated on set. Precedence at load time is
defaults < user < project < NUCLEO_* env < flags.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one effective configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		out := output.New(output.Format(GetOutput()))

		cfg, err := config.Load(config.LoadOptions{ConfigPath: flagConfig})
		if err != nil {
			return writeError(cmd, out, "config_failed", key, err)
		}

		val, ok := config.GetValue(cfg, key)
		if !ok {
			return writeError(cmd, out, "config_failed", key, fmt.Errorf("unknown key %q", key))
		}

		if GetOutput() == "text" {
			fmt.Println(formatConfigValue(val))
			return nil
		}
		return out.Write(map[string]any{"key": key, "value": val})
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write one configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, raw := args[0], args[1]
		out := output.New(output.Format(GetOutput()))

		val, err := config.ParseValue(key, raw)
		if err != nil {
			return writeError(cmd, out, "config_failed", key, err)
		}

		path := flagConfig
		if path == "" {
			if flagConfigUser {
				path = config.UserConfigPath()
			} else {
				path = ".nucleo/config.toml"
			}
		}

		if err := config.WriteValue(path, key, val); err != nil {
			return writeError(cmd, out, "config_failed", key, err)
		}

		if GetOutput() == "text" {
			fmt.Fprintf(os.Stderr, "[nucleo] set %s = %s in %s\n", key, formatConfigValue(val), path)
			return nil
		}
		return out.Write(map[string]any{"status": "updated", "key": key, "value": val, "path": path})
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the full effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := output.New(output.Format(GetOutput()))

		cfg, err := config.Load(config.LoadOptions{ConfigPath: flagConfig})
		if err != nil {
			return writeError(cmd, out, "config_failed", "", err)
		}

		values := map[string]any{}
		for _, key := range config.Keys() {
			if val, ok := config.GetValue(cfg, key); ok {
				values[key] = val
			}
		}

		if GetOutput() != "text" {
			return out.Write(values)
		}

		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, []string{k, formatConfigValue(values[k])})
		}
		output.OutputTable([]string{"KEY", "VALUE"}, rows)
		return nil
	},
}

func formatConfigValue(val any) string {
	if list, ok := val.([]string); ok {
		return strings.Join(list, ",")
	}
	return fmt.Sprintf("%v", val)
}
