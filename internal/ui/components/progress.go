package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/nalanda-edu/nalanda/internal/ui/theme"
)

// MarksBar displays obtained marks against the maximum as a horizontal bar.
type MarksBar struct {
	Obtained float64
	Max      float64
	Width    int
}

// NewMarksBar creates a new marks bar.
func NewMarksBar(obtained, total float64, width int) MarksBar {
	return MarksBar{Obtained: obtained, Max: total, Width: width}
}

// Fraction returns Obtained/Max clamped to [0, 1]. A zero Max is 0.
func (b MarksBar) Fraction() float64 {
	if b.Max <= 0 {
		return 0
	}
	return min(max(b.Obtained/b.Max, 0), 1)
}

// View renders the bar followed by the percentage.
func (b MarksBar) View() string {
	barWidth := b.Width - 6 // "  100%"
	if barWidth < 4 {
		barWidth = 4
	}

	frac := b.Fraction()
	filled := int(float64(barWidth) * frac)
	empty := barWidth - filled

	fill := theme.Success
	if frac < 0.5 {
		fill = theme.Error
	}
	filledStr := lipgloss.NewStyle().
		Background(fill).
		Render(strings.Repeat(" ", filled))
	emptyStr := lipgloss.NewStyle().
		Background(theme.Border).
		Render(strings.Repeat(" ", empty))

	return filledStr + emptyStr + theme.Hint.Render(fmt.Sprintf("  %3d%%", int(frac*100)))
}
