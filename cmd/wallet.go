package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/nalanda-edu/nalanda/internal/economy"
	"github.com/nalanda-edu/nalanda/internal/store"
	"github.com/nalanda-edu/nalanda/internal/ui/theme"
	"github.com/nalanda-edu/nalanda/internal/wallet"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Inspect and change learner wallets",
}

var walletShowCmd = &cobra.Command{
	Use:   "show <user>",
	Short: "Show a learner's balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		b, err := e.wallets.Balance(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput(cmd) {
			return printJSON(cmd.OutOrStdout(), b)
		}

		out := cmd.OutOrStdout()
		lipgloss.Fprintln(out, theme.Title.Render("Wallet of "+b.UserID))
		for _, c := range economy.AllCurrencies() {
			lipgloss.Fprintln(out, theme.Field(c.String(),
				theme.CurrencyStyle(c.String()).Render(strconv.FormatInt(b.Amount(c), 10))))
		}
		if !b.UpdatedAt.IsZero() {
			lipgloss.Fprintln(out, theme.Hint.Render("updated "+b.UpdatedAt.Local().Format("2006-01-02 15:04:05")))
		}
		return nil
	},
}

var walletHistoryCmd = &cobra.Command{
	Use:   "history <user>",
	Short: "List a learner's wallet events, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		events, err := e.wallets.History(cmd.Context(), args[0], limit)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if jsonOutput(cmd) {
			if events == nil {
				events = []store.EventRecord{}
			}
			return printJSON(cmd.OutOrStdout(), events)
		}
		if len(events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No wallet events found.")
			return nil
		}

		t := theme.Table("Seq", "Time", "Kind", "Ref", "Coins", "Gold", "Diamonds")
		for _, ev := range events {
			t.Row(strconv.FormatInt(ev.Sequence, 10),
				ev.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				string(ev.Kind),
				ev.Ref,
				theme.Signed(ev.Delta.Coins),
				theme.Signed(ev.Delta.Gold),
				theme.Signed(ev.Delta.Diamonds))
		}
		lipgloss.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

var walletCheckoutCmd = &cobra.Command{
	Use:   "checkout <user> <bundle>",
	Short: "Debit the unlock cost of a worksheet",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := loadBundle(cmd, args[1])
		if err != nil {
			return fmt.Errorf("load bundle: %w", err)
		}
		if b.Worksheet == nil {
			return errors.New("checkout needs a bundle with a worksheet")
		}
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		r, err := e.wallets.Checkout(cmd.Context(), args[0], b.Worksheet.ID, b.Ordered())
		if err != nil {
			return explainWalletError(err)
		}
		return printReceipt(cmd, r)
	},
}

var walletSettleCmd = &cobra.Command{
	Use:   "settle <user> <attempt-id> <bundle>",
	Short: "Credit the rewards of a graded attempt",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := loadBundle(cmd, args[2])
		if err != nil {
			return fmt.Errorf("load bundle: %w", err)
		}
		if b.Worksheet == nil {
			return errors.New("settlement needs a bundle with a worksheet")
		}
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		r, err := e.wallets.SettleAttempt(cmd.Context(), args[0], args[1], *b.Worksheet, b.Ordered(), b.Results)
		if err != nil {
			return explainWalletError(err)
		}
		if !jsonOutput(cmd) && r.Report != nil {
			if err := printRewardReport(cmd, *b.Worksheet, *r.Report); err != nil {
				return err
			}
		}
		return printReceipt(cmd, r)
	},
}

var walletConvertCmd = &cobra.Command{
	Use:     "convert <user> <amount> <from> <to>",
	Short:   "Trade coins for gold or gold for diamonds",
	Example: "  nalanda wallet convert u1 30 coin gold",
	Args:    cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[1], err)
		}
		from, err := economy.ParseCurrency(args[2])
		if err != nil {
			return err
		}
		to, err := economy.ParseCurrency(args[3])
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		r, err := e.wallets.Convert(cmd.Context(), args[0], from, to, amount)
		if err != nil {
			return explainWalletError(err)
		}
		return printReceipt(cmd, r)
	},
}

var walletGrantCmd = &cobra.Command{
	Use:   "grant <user>",
	Short: "Credit a learner outside of any attempt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var amounts economy.WalletTransaction
		amounts.Coins, _ = cmd.Flags().GetInt64("coins")
		amounts.Gold, _ = cmd.Flags().GetInt64("gold")
		amounts.Diamonds, _ = cmd.Flags().GetInt64("diamonds")
		ref, _ := cmd.Flags().GetString("ref")
		note, _ := cmd.Flags().GetString("note")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		r, err := e.wallets.Grant(cmd.Context(), args[0], ref, note, amounts)
		if err != nil {
			return explainWalletError(err)
		}
		return printReceipt(cmd, r)
	},
}

func printReceipt(cmd *cobra.Command, r *wallet.Receipt) error {
	if jsonOutput(cmd) {
		return printJSON(cmd.OutOrStdout(), r)
	}
	out := cmd.OutOrStdout()
	lipgloss.Fprintln(out, theme.Field("Transaction", r.TransactionID))
	lipgloss.Fprintln(out, theme.Field("Change", fmt.Sprintf("%s coins, %s gold, %s diamonds",
		theme.Signed(r.Delta.Coins), theme.Signed(r.Delta.Gold), theme.Signed(r.Delta.Diamonds))))
	lipgloss.Fprintln(out, theme.Field("Balance", formatTransaction(r.Balance)))
	return nil
}

// explainWalletError adds a hint to the errors a learner can act on.
func explainWalletError(err error) error {
	switch {
	case errors.Is(err, store.ErrInsufficientFunds):
		return fmt.Errorf("%w\n\nEarn more by settling attempts, or convert a lower tier first", err)
	case errors.Is(err, store.ErrDuplicateEntry):
		return fmt.Errorf("%w\n\nThis was already applied; nothing changed", err)
	}
	return err
}

func init() {
	walletHistoryCmd.Flags().Int("limit", 20, "Maximum number of events to show (0 = all)")

	walletGrantCmd.Flags().Int64("coins", 0, "Coins to credit")
	walletGrantCmd.Flags().Int64("gold", 0, "Gold to credit")
	walletGrantCmd.Flags().Int64("diamonds", 0, "Diamonds to credit")
	walletGrantCmd.Flags().String("ref", "", "Idempotency reference; repeated grants with the same ref are rejected")
	walletGrantCmd.Flags().String("note", "", "Free-form note stored with the event")

	walletCmd.AddCommand(walletShowCmd)
	walletCmd.AddCommand(walletHistoryCmd)
	walletCmd.AddCommand(walletCheckoutCmd)
	walletCmd.AddCommand(walletSettleCmd)
	walletCmd.AddCommand(walletConvertCmd)
	walletCmd.AddCommand(walletGrantCmd)
}
