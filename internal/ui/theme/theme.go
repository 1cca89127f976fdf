package theme

import (
	"strconv"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

// Color palette
var (
	Primary = lipgloss.Color("#8B5CF6") // Vivid Purple
	Coin    = lipgloss.Color("#F59E0B") // Amber
	Gold    = lipgloss.Color("#EAB308") // Yellow
	Diamond = lipgloss.Color("#38BDF8") // Sky
	Success = lipgloss.Color("#22C55E") // Green
	Error   = lipgloss.Color("#F43F5E") // Rose
	TextDim = lipgloss.Color("#94A3B8") // Slate
	Border  = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(TextDim).
		Width(14)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// States
var (
	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	Credit = lipgloss.NewStyle().Foreground(Success)
	Debit  = lipgloss.NewStyle().Foreground(Error)
)

// CurrencyStyle colors a currency name or amount by tier.
func CurrencyStyle(currency string) lipgloss.Style {
	switch currency {
	case "coin", "coins":
		return lipgloss.NewStyle().Foreground(Coin)
	case "gold":
		return lipgloss.NewStyle().Foreground(Gold).Bold(true)
	case "diamond", "diamonds":
		return lipgloss.NewStyle().Foreground(Diamond).Bold(true)
	default:
		return lipgloss.NewStyle()
	}
}

// Signed renders n with an explicit sign, green for credits and red for
// debits. Zero is dimmed.
func Signed(n int64) string {
	switch {
	case n > 0:
		return Credit.Render("+" + strconv.FormatInt(n, 10))
	case n < 0:
		return Debit.Render(strconv.FormatInt(n, 10))
	default:
		return Hint.Render("0")
	}
}

// Verdict renders grader feedback.
func Verdict(ok bool, feedback string) string {
	if ok {
		return Correct.Render("✓ " + feedback)
	}
	return Incorrect.Render("✗ " + feedback)
}

// Field renders a "label  value" report line.
func Field(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, Label.Render(label), value)
}

// Table returns a bordered report table with a bold header row.
func Table(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Border)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return Title.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}
