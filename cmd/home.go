package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/notify"
	"github.com/theirongolddev/fintrack/internal/pipeline"
)

var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Balance, this week's spending and recent transactions",
	RunE:  runHome,
}

func init() {
	rootCmd.AddCommand(homeCmd)
}

func runHome(_ *cobra.Command, _ []string) error {
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	ws, err := a.ledger.Wallets()
	if err != nil {
		return err
	}
	result, err := a.load()
	if err != nil {
		return err
	}
	now := a.ledger.Now()
	week := pipeline.WeekOverview(ws, result.All, now)

	title := "HOME"
	if n, err := a.center.UnreadCount(); err == nil && n > 0 {
		title = fmt.Sprintf("HOME  %d unread", n)
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	fmt.Printf("  Total balance   %s across %d wallet(s)\n", cli.FormatMoney(week.TotalBalance), week.WalletCount)
	fmt.Printf("  This week       %s spent, %s earned\n",
		cli.Expense(cli.FormatMoney(week.TotalExpense)), cli.Income(cli.FormatMoney(week.TotalIncome)))
	fmt.Println()

	peak := 0.0
	for _, d := range week.Days {
		peak = max(peak, d.Expense.InexactFloat64())
	}
	for i, d := range week.Days {
		color := ""
		if i == week.MaxExpenseDay {
			color = string(cli.ColorRed)
		}
		label := fmt.Sprintf("%-3s %10s", d.Label, cli.FormatMoney(d.Expense))
		fmt.Println(cli.RenderHorizontalBar(label, d.Expense.InexactFloat64(), peak, 30, color))
	}

	if len(week.Shares) > 0 {
		fmt.Println()
		fmt.Printf("  %s\n", cli.Header("Spending by wallet"))
		for _, s := range week.Shares {
			fmt.Printf("  %s %-16s %6s  %s\n", cli.Swatch(s.Color), s.Wallet, cli.FormatPercent(s.Percent), cli.Muted(s.Band))
		}
	}

	recent := pipeline.Recent(result.All, 5)
	fmt.Println()
	if len(recent) == 0 {
		fmt.Println("  No transactions yet. Record one with `fintrack tx add <name> <amount>`.")
		return nil
	}
	rows := make([][]string, 0, len(recent))
	for _, t := range recent {
		amount := cli.FormatSigned(t.Amount, t.IsIncome)
		if t.IsIncome {
			amount = cli.Income(amount)
		} else {
			amount = cli.Expense(amount)
		}
		rows = append(rows, []string{t.Name, t.Wallet, notify.Relative(t.At, now), amount})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:     "Recent",
		Headers:   []string{"Name", "Wallet", "When", "Amount"},
		Rows:      rows,
		LeftAlign: []int{1, 2},
	}))
	return nil
}
