package cmd

import (
	"fmt"
	"strconv"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/nalanda-edu/nalanda/internal/content"
	"github.com/nalanda-edu/nalanda/internal/economy"
	"github.com/nalanda-edu/nalanda/internal/ui/components"
	"github.com/nalanda-edu/nalanda/internal/ui/theme"
)

var rewardCmd = &cobra.Command{
	Use:   "reward <bundle>",
	Short: "Explain the rewards an attempt earns without paying them out",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")

		b, err := loadBundle(cmd, args[0])
		if err != nil {
			return fmt.Errorf("load bundle: %w", err)
		}
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		var ws content.Worksheet
		if b.Worksheet != nil {
			ws = *b.Worksheet
		}
		cfg := e.wallets.Settings(cmd.Context())
		report := economy.ExplainAttemptRewards(ws, b.Ordered(), b.Results, user, &cfg)
		if jsonOutput(cmd) {
			return printJSON(cmd.OutOrStdout(), report)
		}
		return printRewardReport(cmd, ws, report)
	},
}

func printRewardReport(cmd *cobra.Command, ws content.Worksheet, report economy.RewardReport) error {
	out := cmd.OutOrStdout()
	if ws.Title != "" {
		lipgloss.Fprintln(out, theme.Title.Render(ws.Title))
	}
	lipgloss.Fprintln(out, theme.Field("Multiplier", strconv.FormatFloat(report.Multiplier, 'f', -1, 64)))

	if len(report.Questions) > 0 {
		t := theme.Table("Question", "Marks", "", "Currency", "Earned")
		for _, q := range report.Questions {
			t.Row(q.QuestionID,
				fmt.Sprintf("%s / %s", formatMarks(q.Obtained), formatMarks(q.MaxMarks)),
				components.NewMarksBar(q.Obtained, q.MaxMarks, barWidth).View(),
				theme.CurrencyStyle(q.Currency.String()).Render(q.Currency.String()),
				theme.Signed(q.Amount))
		}
		lipgloss.Fprintln(out, t.Render())
	}
	lipgloss.Fprintln(out, theme.Field("Rewards", formatTransaction(report.Rewards.Transaction())))
	return nil
}

func init() {
	rewardCmd.Flags().String("user", "", "Learner the rewards are computed for")
}
