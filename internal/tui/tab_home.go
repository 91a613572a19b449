package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/pipeline"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

func (a App) renderHomeTab(cw int) string {
	t := theme.Active
	w := a.week

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder

	// Row 1: balance cards
	unread := ""
	if a.snap.unread > 0 {
		unread = fmt.Sprintf("%d unread notification(s)", a.snap.unread)
	}
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Total Balance", Value: cli.FormatMoney(w.TotalBalance), Delta: unread,
			Color: t.Balance(w.TotalBalance.IsNegative())},
		{Label: "Spent This Week", Value: cli.FormatMoney(w.TotalExpense), Color: t.Red},
		{Label: "Earned This Week", Value: cli.FormatMoney(w.TotalIncome), Color: t.Green},
		{Label: "Wallets", Value: fmt.Sprintf("%d", w.WalletCount), Delta: a.snap.current},
	}, cw))
	b.WriteString("\n")

	// Row 2: week chart beside the wallet distribution
	halves := components.LayoutRow(cw, 2)
	if a.isCompactLayout() {
		halves = []int{cw, cw}
	}

	maxDay := 0.0
	for _, d := range w.Days {
		maxDay = max(maxDay, d.Expense.InexactFloat64())
	}
	barW := components.CardInnerWidth(halves[0]) - 4 - 14
	var week strings.Builder
	for i, d := range w.Days {
		color := t.Accent
		if i == w.MaxExpenseDay {
			color = t.Red
		}
		week.WriteString(components.HorizontalBar(d.Label, cli.FormatMoney(d.Expense),
			d.Expense.InexactFloat64(), maxDay, 3, barW, color))
		if i < len(w.Days)-1 {
			week.WriteString("\n")
		}
	}
	if w.MaxExpenseDay >= 0 {
		week.WriteString("\n\n")
		week.WriteString(labelStyle.Render("Biggest day: ") +
			valueStyle.Render(w.Days[w.MaxExpenseDay].Date.Format("Monday, Jan 2")))
	}
	weekCard := components.ContentCard("This Week (Sun-Sat)", week.String(), halves[0])

	var dist strings.Builder
	if len(w.Shares) == 0 {
		dist.WriteString(dimStyle.Render("No spending this week"))
	}
	nameW := 12
	shareBarW := components.CardInnerWidth(halves[1]) - nameW - 10
	for i, s := range w.Shares {
		dist.WriteString(components.HorizontalBar(truncStr(s.Wallet, nameW), fmt.Sprintf("%.0f%%", s.Percent),
			s.Percent, 100, nameW, shareBarW, t.Band(s.Band)))
		if i < len(w.Shares)-1 {
			dist.WriteString("\n")
		}
	}
	distCard := components.ContentCard("Spending by Wallet", dist.String(), halves[1])

	if a.isCompactLayout() {
		b.WriteString(weekCard)
		b.WriteString("\n")
		b.WriteString(distCard)
	} else {
		b.WriteString(components.CardRow([]string{weekCard, distCard}))
	}
	b.WriteString("\n")

	// Row 3: recent transactions
	var recent strings.Builder
	all := a.snap.result
	if all == nil || len(all.All) == 0 {
		recent.WriteString(dimStyle.Render("No transactions yet"))
	} else {
		innerW := components.CardInnerWidth(cw)
		amountW := 14
		walletW := 14
		nameW := innerW - amountW - walletW - 18
		latest := pipeline.Recent(all.All, 5)
		for i, tx := range latest {
			amount := lipgloss.NewStyle().Foreground(t.Amount(tx.IsIncome)).Background(t.Surface).
				Render(fmt.Sprintf("%*s", amountW, cli.FormatSigned(tx.Amount, tx.IsIncome)))
			recent.WriteString(labelStyle.Render(fmt.Sprintf("%-16s ", truncStr(tx.Date, 16))))
			recent.WriteString(valueStyle.Render(fmt.Sprintf("%-*s ", nameW, truncStr(tx.Name, nameW))))
			recent.WriteString(dimStyle.Render(fmt.Sprintf("%-*s", walletW, truncStr(tx.Wallet, walletW))))
			recent.WriteString(amount)
			if i < len(latest)-1 {
				recent.WriteString("\n")
			}
		}
	}
	b.WriteString(components.ContentCard("Recent Transactions", recent.String(), cw))

	return b.String()
}
