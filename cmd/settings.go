package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/nalanda-edu/nalanda/internal/economy"
	"github.com/nalanda-edu/nalanda/internal/ui/theme"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the economy rates",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective economy rates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		return printSettings(cmd, e.wallets.Settings(cmd.Context()))
	},
}

var settingsSetCmd = &cobra.Command{
	Use:     "set <key=value>...",
	Short:   "Override one or more economy rates",
	Example: "  nalanda settings set costPerMark=1 coinToGold=20",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var o economy.Overrides
		for _, a := range args {
			key, raw, ok := strings.Cut(a, "=")
			if !ok {
				return fmt.Errorf("invalid setting %q: want <key>=<value>", a)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}
			if err := o.SetField(strings.TrimSpace(key), v); err != nil {
				return err
			}
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		cfg, err := e.wallets.UpdateSettings(cmd.Context(), o)
		if err != nil {
			return err
		}
		return printSettings(cmd, cfg)
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop every stored override and return to the defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.wallets.ResetSettings(cmd.Context()); err != nil {
			return err
		}
		return printSettings(cmd, e.wallets.Settings(cmd.Context()))
	},
}

func printSettings(cmd *cobra.Command, cfg economy.Settings) error {
	if jsonOutput(cmd) {
		return printJSON(cmd.OutOrStdout(), cfg)
	}
	defaults := economy.DefaultSettings().AsOverrides().Fields()
	fields := cfg.AsOverrides().Fields()

	out := cmd.OutOrStdout()
	lipgloss.Fprintln(out, theme.Title.Render("Economy settings"))
	for _, k := range sortedKeys(fields) {
		v := strconv.FormatFloat(fields[k], 'f', -1, 64)
		if fields[k] != defaults[k] {
			v += theme.Hint.Render(" (default " + strconv.FormatFloat(defaults[k], 'f', -1, 64) + ")")
		}
		lipgloss.Fprintln(out, theme.Field(k, v))
	}
	return nil
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
}
