package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/pipeline"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Income and expense per day",
	RunE:  runDaily,
}

func init() {
	addWindowFlags(dailyCmd)
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(_ *cobra.Command, _ []string) error {
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.load()
	if err != nil {
		return err
	}
	if len(result.All) == 0 {
		fmt.Println("\n  No transactions found.")
		return nil
	}

	filtered, since, until := applyFilters(result.All, a.ledger.Now())
	days := pipeline.AggregateDays(filtered, since, until)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DAILY  Last %dd", flagDays)))
	fmt.Println()

	rows := make([][]string, 0, len(days))
	for _, d := range days {
		net := cli.FormatDelta(d.Income, d.Expense)
		if d.Expense.GreaterThan(d.Income) {
			net = cli.Expense(net)
		}
		rows = append(rows, []string{
			d.Date.Format("2006-01-02"),
			cli.FormatDayOfWeek(int(d.Date.Weekday())),
			cli.FormatNumber(int64(d.Transactions)),
			cli.FormatMoney(d.Income),
			cli.FormatMoney(d.Expense),
			net,
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Day", "Count", "Income", "Expense", "Net"},
		Rows:    rows,
	}))
	return nil
}
