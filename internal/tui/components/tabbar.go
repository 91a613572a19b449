package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name (-1 if not in name)
}

// Tab indexes.
const (
	TabHome = iota
	TabTransactions
	TabAnalytics
	TabWallets
	TabNotifications
	TabSettings
)

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Home", Key: 'h', KeyPos: 0},
	{Name: "Transactions", Key: 't', KeyPos: 0},
	{Name: "Analytics", Key: 'a', KeyPos: 0},
	{Name: "Wallets", Key: 'w', KeyPos: 0},
	{Name: "Notifications", Key: 'n', KeyPos: 0},
	{Name: "Settings", Key: 's', KeyPos: 0},
}

func badgeText(badge int) string {
	if badge <= 0 {
		return ""
	}
	if badge > 99 {
		return " 99+"
	}
	return fmt.Sprintf(" %d", badge)
}

// TabVisualWidth is the rendered width of one tab, padding included.
// badge is only drawn on the Notifications tab.
func TabVisualWidth(tab Tab, active bool, badge int) int {
	w := lipgloss.Width(tab.Name) + 2
	if !active {
		if tab.KeyPos >= 0 && tab.KeyPos < len(tab.Name) {
			w += 2
		} else {
			w += 3
		}
	}
	if tab.Name == Tabs[TabNotifications].Name {
		w += lipgloss.Width(badgeText(badge))
	}
	return w
}

// RenderTabBar renders the tab bar with the given active index. unread is
// shown as a badge next to Notifications.
func RenderTabBar(activeIdx, width, unread int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)
	keyStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)
	dimKeyStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)
	badgeStyle := lipgloss.NewStyle().
		Foreground(t.Red).
		Background(t.Surface).
		Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface)

	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		badge := ""
		if i == TabNotifications {
			badge = badgeText(unread)
		}

		if i == activeIdx {
			parts = append(parts, activeStyle.Render(tab.Name+badge))
			continue
		}

		var rendered string
		if tab.KeyPos >= 0 && tab.KeyPos < len(tab.Name) {
			before := tab.Name[:tab.KeyPos]
			key := string(tab.Name[tab.KeyPos])
			after := tab.Name[tab.KeyPos+1:]
			rendered = inactiveStyle.Render(before) +
				dimKeyStyle.Render("[") + keyStyle.Render(key) + dimKeyStyle.Render("]") +
				inactiveStyle.Render(after)
		} else {
			rendered = inactiveStyle.Render(tab.Name) +
				dimKeyStyle.Render("[") + keyStyle.Render(string(tab.Key)) + dimKeyStyle.Render("]")
		}
		parts = append(parts, space.Render(" ")+rendered+badgeStyle.Render(badge)+space.Render(" "))
	}

	bar := strings.Join(parts, space.Render(" "))
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(bar)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
