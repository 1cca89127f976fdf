package components

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestMarksBar_Fraction(t *testing.T) {
	tests := []struct {
		name          string
		obtained, max float64
		want          float64
	}{
		{"half", 2, 4, 0.5},
		{"full", 5, 5, 1},
		{"over", 6, 5, 1},
		{"negative", -1, 5, 0},
		{"no marks", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewMarksBar(tt.obtained, tt.max, 20).Fraction())
		})
	}
}

func TestMarksBar_View(t *testing.T) {
	v := NewMarksBar(3, 4, 26).View()
	assert.True(t, strings.HasSuffix(strings.TrimSpace(ansi.Strip(v)), "75%"))
	assert.Equal(t, 26, lipgloss.Width(v))
}
