package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/pipeline"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Income and spending summary with a comparison to the previous window",
	RunE:  runSummary,
}

func init() {
	addWindowFlags(summaryCmd)
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
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
		fmt.Println("  Record one with `fintrack tx add <name> <amount>`.")
		return nil
	}

	filtered, since, until := applyFilters(result.All, a.ledger.Now())
	stats := pipeline.Aggregate(filtered, since, until)
	if stats.Transactions == 0 {
		fmt.Println("\n  No transactions in the selected range.")
		return nil
	}

	prevSince, prevUntil := pipeline.PreviousWindow(since, until)
	prev := pipeline.Aggregate(filtered, prevSince, prevUntil)

	title := fmt.Sprintf("SUMMARY  Last %dd", flagDays)
	if flagFilterWallet != "" {
		title += "  " + flagFilterWallet
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	net := cli.FormatMoney(stats.Net)
	if stats.Net.IsNegative() {
		net = cli.Expense(net)
	} else {
		net = cli.Income(net)
	}

	rows := [][]string{
		{"Transactions", cli.FormatNumber(int64(stats.Transactions))},
		{"Incomes", cli.FormatNumber(int64(stats.IncomeCount))},
		{"Expenses", cli.FormatNumber(int64(stats.ExpenseCount))},
		{"Active days", cli.FormatNumber(int64(stats.ActiveDays))},
		{"---"},
		{"Total income", cli.FormatMoney(stats.TotalIncome)},
		{"Total expense", cli.FormatMoney(stats.TotalExpense)},
		{"Net", net},
		{"---"},
		{"Largest spend", cli.FormatMoney(stats.LargestSpend)},
	}

	perDay := fmt.Sprintf("%s/day", cli.FormatMoney(stats.ExpensePerDay))
	if prev.ExpensePerDay.IsPositive() {
		perDay += fmt.Sprintf("  (%s vs prev %dd)", cli.FormatDelta(stats.ExpensePerDay, prev.ExpensePerDay), flagDays)
	}
	rows = append(rows, []string{"Spend/day", perDay})

	if prev.Transactions > 0 {
		rows = append(rows,
			[]string{"---"},
			[]string{"Expense vs prev", cli.FormatDelta(stats.TotalExpense, prev.TotalExpense)},
			[]string{"Income vs prev", cli.FormatDelta(stats.TotalIncome, prev.TotalIncome)},
		)
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if result.ParseErrors > 0 {
		fmt.Printf("\n  %s\n", cli.Warn(fmt.Sprintf("%d entries could not be read", result.ParseErrors)))
	}
	return nil
}
