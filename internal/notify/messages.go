package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/pipeline"
)

// BudgetWarning is raised when a wallet's spend reaches the warning level.
func BudgetWarning(wallet string, usedPct int) Message {
	return Message{
		Kind:  model.KindBudgetWarning,
		Title: "Budget Warning",
		Text:  fmt.Sprintf("You've used %d%% of your '%s' budget", usedPct, wallet),
	}
}

// BudgetExceeded is raised when a wallet's spend passes its initial amount.
func BudgetExceeded(wallet string, usedPct int) Message {
	return Message{
		Kind:  model.KindBudgetExceeded,
		Title: "Budget Exceeded!",
		Text:  fmt.Sprintf("You have exceeded your '%s' budget by %d%%", wallet, usedPct-100),
	}
}

// LowBalance is raised when little of a wallet's initial amount remains.
func LowBalance(wallet string, remainingPct int) Message {
	return Message{
		Kind:  model.KindLowBalance,
		Title: "Low Balance Warning",
		Text:  fmt.Sprintf("Your '%s' wallet is down to %d%% of its initial balance", wallet, remainingPct),
	}
}

// WalletAddedMessage confirms a new wallet.
func WalletAddedMessage(wallet string) Message {
	return Message{
		Kind:  model.KindWalletAdded,
		Title: "Wallet Added",
		Text:  fmt.Sprintf("New wallet '%s' added successfully!", wallet),
	}
}

// DailyReminderMessage nudges the user to record the day's spending.
func DailyReminderMessage() Message {
	return Message{
		Kind:  model.KindDailyReminder,
		Title: "Daily Expense Reminder",
		Text:  "Don't forget to log today's expenses!",
	}
}

// BackupReminderMessage nudges the user to export a backup.
func BackupReminderMessage() Message {
	return Message{
		Kind:  model.KindBackupReminder,
		Title: "Backup Reminder",
		Text:  "It's time to backup your financial data to avoid loss",
	}
}

// DailySummaryMessage describes one day's totals with the top 3 expense
// categories in the detail text.
func DailySummaryMessage(ds model.DailyStats) Message {
	msg := Message{
		Kind:  model.KindDailySummary,
		Title: "Today's Expense Summary",
		Text:  "No expenses recorded today. Great job!",
	}
	if ds.Expense.IsPositive() {
		msg.Text = "Today you spent " + cli.FormatMoney(ds.Expense)
	}

	var b strings.Builder
	b.WriteString("Today's summary:\n")
	fmt.Fprintf(&b, "Total spent: %s\n", cli.FormatMoney(ds.Expense))
	if ds.Income.IsPositive() {
		fmt.Fprintf(&b, "Total income: %s\n", cli.FormatMoney(ds.Income))
	}
	if top := pipeline.TopExpenses(ds, 3); len(top) > 0 {
		b.WriteString("\nTop expenses by category:\n")
		for _, c := range top {
			fmt.Fprintf(&b, "- %s: %s\n", c.Category, cli.FormatMoney(c.Amount))
		}
	}
	msg.Detail = b.String()
	return msg
}

// Relative describes how long ago ts was, e.g. "5 min ago" or "Yesterday".
// Older than a week falls back to the date.
func Relative(ts, now time.Time) string {
	d := now.Sub(ts)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	case d < 48*time.Hour:
		return "Yesterday"
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	default:
		return ts.Format("Jan 02, 2006")
	}
}
