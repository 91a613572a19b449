package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

type walletsState struct {
	cursor int
}

func (a App) selectedWallet() (model.Wallet, bool) {
	ws := a.wallets()
	if a.walletsTab.cursor < 0 || a.walletsTab.cursor >= len(ws) {
		return model.Wallet{}, false
	}
	return ws[a.walletsTab.cursor], true
}

func (a App) updateWalletsKeys(key string) (App, tea.Cmd, bool) {
	ws := a.wallets()
	switch key {
	case "j", "down":
		a.walletsTab.cursor = clamp(a.walletsTab.cursor+1, 0, len(ws)-1)
	case "k", "up":
		a.walletsTab.cursor = clamp(a.walletsTab.cursor-1, 0, len(ws)-1)
	case "enter", "u":
		if w, ok := a.selectedWallet(); ok {
			return a, useWalletCmd(a.svc, w.Name), true
		}
	case "+":
		next, cmd := a.openForm(formWallet, &formValues{})
		return next, cmd, true
	case "D":
		w, ok := a.selectedWallet()
		if !ok {
			return a, nil, true
		}
		next, cmd := a.openForm(formDeleteWallet, &formValues{walletName: w.Name, email: a.snap.user})
		return next, cmd, true
	default:
		return a, nil, false
	}
	return a, nil, true
}

// walletState names the budget condition the way the status command does.
func (a App) walletState(w model.Wallet) (string, lipgloss.Color) {
	t := theme.Active
	th := a.cfg.Thresholds
	switch {
	case !w.InitialAmount.IsPositive():
		return "unfunded", t.TextDim
	case w.UsedPct() >= th.ExceededPct:
		return "exceeded", t.Red
	case w.UsedPct() >= th.WarningPct:
		return "warning", t.Orange
	case w.RemainingPct() < th.LowBalancePct:
		return "low", t.Yellow
	}
	return "ok", t.Green
}

func (a App) renderWalletsTab(cw int) string {
	t := theme.Active
	th := a.cfg.Thresholds

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	ws := a.wallets()
	if len(ws) == 0 {
		body := valueStyle.Render("No wallets yet.") + "\n\n" + labelStyle.Render("Press + to create your first wallet.")
		return components.ContentCard("Wallets", body, cw)
	}

	innerW := components.CardInnerWidth(cw)
	nameW := 16
	stateW := 10
	moneyW := 13
	barW := innerW - nameW - stateW - 3*moneyW - 14
	if barW < 10 {
		barW = 10
	}

	var body strings.Builder
	body.WriteString(dimStyle.Render(fmt.Sprintf("  %-*s %*s %*s %*s  %-*s %-*s",
		nameW, "Wallet", moneyW, "Initial", moneyW, "Spent", moneyW, "Remaining", barW+6, "Used", stateW, "State")))
	body.WriteString("\n")

	for i, w := range ws {
		selected := i == a.walletsTab.cursor
		bg := t.Surface
		if selected {
			bg = t.SurfaceBright
		}
		row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(bg)
		muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(bg)

		marker := "  "
		if selected {
			marker = "▸ "
		}
		name := w.Name
		if w.Name == a.snap.current {
			name += " *"
		}
		state, stateColor := a.walletState(w)
		remaining := lipgloss.NewStyle().Foreground(t.Balance(w.Remaining.IsNegative())).Background(bg).
			Render(fmt.Sprintf("%*s", moneyW, cli.FormatMoney(w.Remaining)))

		line := row.Render(marker) +
			row.Render(fmt.Sprintf("%-*s ", nameW, truncStr(name, nameW))) +
			muted.Render(fmt.Sprintf("%*s ", moneyW, cli.FormatMoney(w.InitialAmount))) +
			muted.Render(fmt.Sprintf("%*s ", moneyW, cli.FormatMoney(w.Expenses))) +
			remaining + row.Render("  ") +
			components.BudgetBar("", w.UsedPct(), th.WarningPct, th.ExceededPct, 0, barW) +
			row.Render(" ") +
			lipgloss.NewStyle().Foreground(stateColor).Background(bg).Render(fmt.Sprintf("%-*s", stateW, state))
		if pad := innerW - lipgloss.Width(line); pad > 0 {
			line += lipgloss.NewStyle().Background(bg).Render(strings.Repeat(" ", pad))
		}
		body.WriteString(line)
		body.WriteString("\n")
	}

	body.WriteString("\n")
	body.WriteString(labelStyle.Render("Total balance: "))
	total := ledger.TotalBalance(ws)
	body.WriteString(lipgloss.NewStyle().Foreground(t.Balance(total.IsNegative())).Background(t.Surface).Bold(true).
		Render(cli.FormatMoney(total)))
	body.WriteString("\n\n")
	body.WriteString(dimStyle.Render("[Enter] use wallet  [+] add  [D] delete  ·  * current wallet"))

	thresholds := labelStyle.Render(fmt.Sprintf("Warning at %d%% used · Exceeded at %d%% · Low balance below %d%% remaining",
		th.WarningPct, th.ExceededPct, th.LowBalancePct))
	if a.snap.lastProcessed != "" {
		thresholds += "\n" + labelStyle.Render("Monthly transactions last processed: ") + valueStyle.Render(a.snap.lastProcessed)
	}

	return components.ContentCard("Wallets", body.String(), cw) + "\n" +
		components.ContentCard("Budget Alerts", thresholds, cw)
}
