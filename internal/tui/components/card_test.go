package components

import (
	"strings"
	"testing"

	"github.com/carlmjohnson/be"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

func init() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsToTotal(t *testing.T) {
	widths := LayoutRow(100, 3)
	be.Equal(t, 3, len(widths))
	be.Equal(t, 34, widths[0])
	be.Equal(t, 33, widths[2])
	be.Equal(t, 100, widths[0]+widths[1]+widths[2])
	be.True(t, LayoutRow(10, 0) == nil)
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "Content", 22)
	tallCard := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4\nLine 5", 22)

	shortLines := lipgloss.Height(shortCard)
	tallLines := lipgloss.Height(tallCard)
	be.True(t, shortLines < tallLines)

	lines := strings.Split(CardRow([]string{tallCard, shortCard}), "\n")
	be.Equal(t, tallLines, len(lines))
	for i, line := range lines {
		if i >= shortLines && !strings.Contains(line, "\x1b[") {
			t.Errorf("line %d has no styling: %q", i, line)
		}
	}
}

func TestCardRowWidthConsistency(t *testing.T) {
	theme.SetActive("flexoki-dark")

	shortCard := ContentCard("Short", "A", 30)
	tallCard := ContentCard("Tall", "A\nB\nC\nD\nE\nF", 20)

	lines := strings.Split(CardRow([]string{tallCard, shortCard}), "\n")
	for _, line := range lines {
		be.Equal(t, 50, lipgloss.Width(line))
	}
}

func TestMetricCardShowsValue(t *testing.T) {
	card := MetricCard(Metric{Label: "Balance", Value: "$1,250.00", Delta: "+12%"}, 30)
	be.True(t, strings.Contains(card, "Balance"))
	be.True(t, strings.Contains(card, "$1,250.00"))
	be.True(t, strings.Contains(card, "+12%"))
	be.Equal(t, 30, lipgloss.Width(card))
}
