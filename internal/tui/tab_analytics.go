package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

// analyticsState tracks the analytics tab.
type analyticsState struct {
	period      model.Period
	walletsOnly bool // only the current wallet
}

var periodKeys = map[string]model.Period{
	"w": model.PeriodWeekly,
	"m": model.PeriodMonthly,
	"y": model.PeriodYear,
}

// analyticsSource is every transaction, or the current wallet's.
func (a App) analyticsSource() []model.Transaction {
	if a.snap.result == nil {
		return nil
	}
	if a.analytics.walletsOnly {
		return a.currentTransactions()
	}
	return a.snap.result.All
}

func (a App) updateAnalyticsKeys(key string) (App, tea.Cmd, bool) {
	if p, ok := periodKeys[key]; ok {
		a.analytics.period = p
		a.recompute()
		return a, nil, true
	}
	if key == "c" {
		a.analytics.walletsOnly = !a.analytics.walletsOnly
		a.recompute()
		return a, nil, true
	}
	return a, nil, false
}

func periodTitle(p model.Period) string {
	switch p {
	case model.PeriodWeekly:
		return "Last 7 days"
	case model.PeriodMonthly:
		return "This year by month"
	case model.PeriodYear:
		return "Last 5 years"
	}
	return string(p)
}

func (a App) renderAnalyticsTab(cw int) string {
	t := theme.Active
	r := a.report

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	activeStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder

	// Period switch
	var sw strings.Builder
	for i, p := range []struct {
		key    string
		label  string
		period model.Period
	}{
		{"w", "Weekly", model.PeriodWeekly},
		{"m", "Monthly", model.PeriodMonthly},
		{"y", "Yearly", model.PeriodYear},
	} {
		if i > 0 {
			sw.WriteString(space.Render("   "))
		}
		style := labelStyle
		if p.period == a.analytics.period {
			style = activeStyle
		}
		sw.WriteString(dimStyle.Render("["+p.key+"]") + style.Render(p.label))
	}
	scope := "all wallets"
	if a.analytics.walletsOnly {
		scope = a.snap.current
	}
	sw.WriteString(space.Render("      ") + dimStyle.Render("[c]") + labelStyle.Render("scope: ") + valueStyle.Render(scope))
	b.WriteString(components.ContentCard("", sw.String(), cw))
	b.WriteString("\n")

	// Summary cards
	s := r.Summary
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Income", Value: cli.FormatMoney(s.TotalIncome), Color: t.Green,
			Delta: fmt.Sprintf("%d entries", s.IncomeCount)},
		{Label: "Expenses", Value: cli.FormatMoney(s.TotalExpense), Color: t.Red,
			Delta: fmt.Sprintf("%d entries", s.ExpenseCount)},
		{Label: "Net", Value: cli.FormatMoney(s.Net), Color: t.Balance(s.Net.IsNegative())},
		{Label: "Largest Spend", Value: cli.FormatMoney(s.LargestSpend)},
	}, cw))
	b.WriteString("\n")

	// Income and expense charts
	income := make([]float64, len(r.Series.Income))
	for i, v := range r.Series.Income {
		income[i] = v.InexactFloat64()
	}
	expense := make([]float64, len(r.Series.Expense))
	for i, v := range r.Series.Expense {
		expense[i] = v.InexactFloat64()
	}

	title := periodTitle(a.analytics.period)
	if a.isCompactLayout() {
		chartW := components.CardInnerWidth(cw)
		b.WriteString(components.ContentCard("Income · "+title,
			components.BarChart(income, r.Series.Labels, t.Green, chartW, 8), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Expenses · "+title,
			components.BarChart(expense, r.Series.Labels, t.Red, chartW, 8), cw))
	} else {
		halves := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			components.ContentCard("Income · "+title,
				components.BarChart(income, r.Series.Labels, t.Green, components.CardInnerWidth(halves[0]), 8), halves[0]),
			components.ContentCard("Expenses · "+title,
				components.BarChart(expense, r.Series.Labels, t.Red, components.CardInnerWidth(halves[1]), 8), halves[1]),
		}))
	}
	b.WriteString("\n")

	// Category legend and top categories
	halves := components.LayoutRow(cw, 2)
	legend := make([]components.LegendItem, 0, len(r.Breakdown.Slices))
	for _, sl := range r.Breakdown.Slices {
		legend = append(legend, components.LegendItem{
			Label: fmt.Sprintf("%s %.1f%%", sl.Name, sl.Percent),
			Color: lipgloss.Color(sl.Color),
		})
	}
	legendBody := components.Legend(legend, components.CardInnerWidth(halves[0]))
	legendBody += "\n\n" + labelStyle.Render("Total spent: ") + valueStyle.Render(cli.FormatMoney(r.Breakdown.Total))

	var top strings.Builder
	barW := components.CardInnerWidth(halves[1]) - 14 - 16
	for i, tc := range r.Breakdown.Top {
		top.WriteString(components.HorizontalBar(truncStr(tc.Name, 14),
			fmt.Sprintf("%s %d%%", cli.FormatMoney(tc.Amount), tc.Percent),
			float64(tc.Percent), 100, 14, barW, lipgloss.Color(tc.Color)))
		if i < len(r.Breakdown.Top)-1 {
			top.WriteString("\n")
		}
	}

	b.WriteString(components.CardRow([]string{
		components.ContentCard("Spending by Category", legendBody, halves[0]),
		components.ContentCard("Top Categories", top.String(), halves[1]),
	}))

	return b.String()
}
