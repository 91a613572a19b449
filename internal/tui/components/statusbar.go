package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

// StatusInfo is what the bottom bar shows on its right side.
type StatusInfo struct {
	User       string
	Wallet     string
	Updated    string // human readable age of the last ledger change
	Refreshing bool
	Message    string // transient feedback such as "Saved"
	IsError    bool
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	msgStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface).Bold(true)
	if info.IsError {
		msgStyle = msgStyle.Foreground(t.Red)
	}

	left := base.Render(" [?]help  [q]uit")
	if info.Message != "" {
		left += base.Render("  ") + msgStyle.Render(info.Message)
	}

	right := ""
	if info.Refreshing {
		right += accent.Render("refreshing  ")
	}
	if info.Wallet != "" {
		right += base.Render("wallet ") + accent.Render(info.Wallet) + base.Render("  ")
	}
	if info.User != "" {
		right += base.Render(info.User) + base.Render("  ")
	}
	if info.Updated != "" {
		right += base.Render("updated " + info.Updated + " ")
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}
	fill := lipgloss.NewStyle().Background(t.Surface).Width(padding).Render("")

	return lipgloss.NewStyle().Background(t.Surface).Width(width).
		Render(left + fill + right)
}
