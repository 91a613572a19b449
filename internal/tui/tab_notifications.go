package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/notify"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

type notifState struct {
	filter model.NotificationFilter
	cursor int
	detail bool
}

// visibleNotifications applies the tab filter to the loaded list, which is
// already newest first.
func (a App) visibleNotifications() []model.Notification {
	out := make([]model.Notification, 0, len(a.snap.notifications))
	for _, n := range a.snap.notifications {
		if a.notif.filter.Keep(n) {
			out = append(out, n)
		}
	}
	return out
}

func (a App) updateNotificationsKeys(key string) (App, tea.Cmd, bool) {
	list := a.visibleNotifications()
	switch key {
	case "j", "down":
		a.notif.cursor = clamp(a.notif.cursor+1, 0, len(list)-1)
	case "k", "up":
		a.notif.cursor = clamp(a.notif.cursor-1, 0, len(list)-1)
	case "f":
		a.notif.filter = (a.notif.filter + 1) % 3
		a.notif.cursor = 0
	case "enter":
		if a.notif.cursor >= len(list) {
			return a, nil, true
		}
		n := list[a.notif.cursor]
		a.notif.detail = !a.notif.detail
		if !n.IsRead {
			return a, notificationCmd(func() (string, error) {
				return "", a.svc.Center.MarkRead(n.ID)
			}), true
		}
	case "A":
		return a, notificationCmd(func() (string, error) {
			count, err := a.svc.Center.MarkAllRead()
			return fmt.Sprintf("Marked %d as read", count), err
		}), true
	case "d", "delete":
		if a.notif.cursor >= len(list) {
			return a, nil, true
		}
		id := list[a.notif.cursor].ID
		return a, notificationCmd(func() (string, error) {
			return "Deleted notification", a.svc.Center.Delete(id)
		}), true
	case "esc":
		if !a.notif.detail {
			return a, nil, false
		}
		a.notif.detail = false
	default:
		return a, nil, false
	}
	return a, nil, true
}

func notificationCmd(fn func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		status, err := fn()
		return mutationMsg{status: status, err: err}
	}
}

func (a App) renderNotificationsTab(cw, contentH int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	activeStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	var filters strings.Builder
	filters.WriteString(dimStyle.Render("[f] "))
	for i, f := range []model.NotificationFilter{model.FilterAll, model.FilterUnread, model.FilterRead} {
		if i > 0 {
			filters.WriteString(space.Render("  "))
		}
		label := f.String()
		if f == model.FilterUnread && a.snap.unread > 0 {
			label = fmt.Sprintf("%s (%d)", label, a.snap.unread)
		}
		if f == a.notif.filter {
			filters.WriteString(activeStyle.Render(label))
		} else {
			filters.WriteString(labelStyle.Render(label))
		}
	}
	if !a.snap.notifyOn {
		warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		filters.WriteString(space.Render("    ") + warn.Render("Notifications are turned off in Settings"))
	}

	list := a.visibleNotifications()
	innerW := components.CardInnerWidth(cw)
	now := a.svc.Ledger.Now()

	var body strings.Builder
	body.WriteString(filters.String())
	body.WriteString("\n\n")

	if len(list) == 0 {
		body.WriteString(labelStyle.Render("Nothing here."))
		return components.ContentCard("Notifications", body.String(), cw)
	}

	// Two lines per notification.
	visible := (contentH - 8) / 2
	if visible < 2 {
		visible = 2
	}
	offset := 0
	if a.notif.cursor >= visible {
		offset = a.notif.cursor - visible + 1
	}
	end := min(offset+visible, len(list))

	whenW := 14
	for i := offset; i < end; i++ {
		n := list[i]
		selected := i == a.notif.cursor
		bg := t.Surface
		if selected {
			bg = t.SurfaceBright
		}
		titleStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(bg)
		if !n.IsRead {
			titleStyle = titleStyle.Bold(true)
		}
		textStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(bg)
		whenStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(bg)
		dotStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(bg)

		dot := "  "
		if !n.IsRead {
			dot = "● "
		}
		when := notify.Relative(model.MillisTime(n.Timestamp), now)
		titleW := innerW - whenW - 3
		line1 := dotStyle.Render(dot) +
			titleStyle.Render(fmt.Sprintf("%-*s ", titleW, truncStr(n.Title, titleW))) +
			whenStyle.Render(fmt.Sprintf("%*s", whenW, when))
		line2 := textStyle.Render("  " + truncStr(n.Message, innerW-2))
		for _, line := range []string{line1, line2} {
			if pad := innerW - lipgloss.Width(line); pad > 0 {
				line += lipgloss.NewStyle().Background(bg).Render(strings.Repeat(" ", pad))
			}
			body.WriteString(line)
			body.WriteString("\n")
		}
	}

	body.WriteString("\n")
	body.WriteString(dimStyle.Render(fmt.Sprintf("%d of %d  ·  [Enter] read/details  [A] mark all read  [d] delete",
		a.notif.cursor+1, len(list))))

	out := components.ContentCard("Notifications", body.String(), cw)

	if a.notif.detail && a.notif.cursor < len(list) {
		n := list[a.notif.cursor]
		detail := n.Detail
		if detail == "" {
			detail = n.Message
		}
		var d strings.Builder
		d.WriteString(labelStyle.Render(model.MillisTime(n.Timestamp).Format("Mon, Jan 2 2006 15:04")))
		d.WriteString("\n\n")
		d.WriteString(lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Width(innerW).Render(detail))
		out += "\n" + components.ContentCard(n.Title, d.String(), cw)
	}
	return out
}
