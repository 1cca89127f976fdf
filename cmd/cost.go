package cmd

import (
	"fmt"
	"strconv"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/nalanda-edu/nalanda/internal/content"
	"github.com/nalanda-edu/nalanda/internal/economy"
	"github.com/nalanda-edu/nalanda/internal/ui/theme"
)

var costCmd = &cobra.Command{
	Use:   "cost <bundle>",
	Short: "Show what unlocking a worksheet costs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := loadBundle(cmd, args[0])
		if err != nil {
			return fmt.Errorf("load bundle: %w", err)
		}
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		cfg := e.wallets.Settings(cmd.Context())
		questions := b.Ordered()
		total := economy.CalculateWorksheetCost(questions, &cfg)
		if jsonOutput(cmd) {
			return printJSON(cmd.OutOrStdout(), total)
		}

		t := theme.Table("Question", "Currency", "Marks", "Cost")
		for _, q := range questions {
			cost := economy.CalculateWorksheetCost([]content.Question{q}, &cfg)
			t.Row(q.ID, string(q.CurrencyType), formatMarks(q.TotalMarks()), costCell(q, cost))
		}

		out := cmd.OutOrStdout()
		lipgloss.Fprintln(out, t.Render())
		lipgloss.Fprintln(out, theme.Field("Total", formatTransaction(total)))
		lipgloss.Fprintln(out, theme.Hint.Render(fmt.Sprintf("%v per mark, rounded up per question", cfg.CostPerMark)))
		return nil
	},
}

func costCell(q content.Question, cost economy.WalletTransaction) string {
	if q.CurrencyType == content.CurrencySpark {
		return theme.Hint.Render("free")
	}
	for _, c := range economy.AllCurrencies() {
		if n := cost.Amount(c); n != 0 {
			return theme.CurrencyStyle(c.String()).Render(strconv.FormatInt(n, 10))
		}
	}
	return "0"
}

// formatTransaction renders the non-zero buckets of tx, or "nothing".
func formatTransaction(tx economy.WalletTransaction) string {
	s := ""
	for _, c := range economy.AllCurrencies() {
		n := tx.Amount(c)
		if n == 0 {
			continue
		}
		if s != "" {
			s += ", "
		}
		s += theme.CurrencyStyle(c.String()).Render(fmt.Sprintf("%d %s", n, c))
	}
	if s == "" {
		return theme.Hint.Render("nothing")
	}
	return s
}
