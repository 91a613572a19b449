package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/pipeline"
)

var (
	flagPeriod          string
	flagFrom            string
	flagTo              string
	flagAnalyticsWallet string
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Income and expense chart with category breakdown",
	Long: `Charts income and expense for a period:

  weekly   the last 7 days
  monthly  each month of the current year
  year     the current year and the 4 before it
  custom   each day between --from and --to`,
	RunE: runAnalytics,
}

func init() {
	analyticsCmd.Flags().StringVarP(&flagPeriod, "period", "p", "monthly", "weekly, monthly, year or custom")
	analyticsCmd.Flags().StringVar(&flagFrom, "from", "", "Custom range start (YYYY-MM-DD)")
	analyticsCmd.Flags().StringVar(&flagTo, "to", "", "Custom range end (YYYY-MM-DD)")
	analyticsCmd.Flags().StringVarP(&flagAnalyticsWallet, "wallet", "w", "", "Only this wallet (default: all wallets)")
	rootCmd.AddCommand(analyticsCmd)
}

func runAnalytics(_ *cobra.Command, _ []string) error {
	rng, err := pipeline.ParseRange(flagPeriod, flagFrom, flagTo)
	if err != nil {
		return err
	}
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.load()
	if err != nil {
		return err
	}
	txs := result.All
	if flagAnalyticsWallet != "" {
		if _, err := a.ledger.Wallet(flagAnalyticsWallet); err != nil {
			return err
		}
		txs = result.Transactions(flagAnalyticsWallet)
	}

	report := pipeline.Analyze(txs, rng, a.ledger.Now())

	title := "ANALYTICS  " + strings.ToUpper(string(rng.Period))
	if flagAnalyticsWallet != "" {
		title += "  " + flagAnalyticsWallet
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	if len(report.Series.Labels) == 0 {
		fmt.Println("  A custom range needs both --from and --to.")
		return nil
	}

	income := make([]float64, len(report.Series.Labels))
	expense := make([]float64, len(report.Series.Labels))
	rows := make([][]string, 0, len(report.Series.Labels))
	for i, label := range report.Series.Labels {
		income[i] = report.Series.Income[i].InexactFloat64()
		expense[i] = report.Series.Expense[i].InexactFloat64()
		rows = append(rows, []string{
			label,
			cli.FormatMoney(report.Series.Income[i]),
			cli.FormatMoney(report.Series.Expense[i]),
		})
	}
	fmt.Printf("  Income   %s\n", cli.Income(cli.RenderSparkline(income)))
	fmt.Printf("  Expense  %s\n\n", cli.Expense(cli.RenderSparkline(expense)))
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Bucket", "Income", "Expense"},
		Rows:    rows,
	}))

	bd := report.Breakdown
	fmt.Println()
	fmt.Printf("  %s  %s total\n", cli.Header("Spending by category"), cli.FormatMoney(bd.Total))
	for _, s := range bd.Slices {
		fmt.Println(cli.RenderHorizontalBar(
			fmt.Sprintf("%s %-14s %6s", cli.Swatch(s.Color), s.Name, cli.FormatPercent(s.Percent)),
			s.Percent, 100, 30, s.Color))
	}
	if len(bd.Top) > 0 {
		fmt.Println()
		fmt.Printf("  %s\n", cli.Header("Top categories"))
		for i, c := range bd.Top {
			fmt.Printf("  %d. %-14s %10s  %d%%\n", i+1, c.Name, cli.FormatMoney(c.Amount), c.Percent)
		}
	}

	sum := report.Summary
	fmt.Println()
	fmt.Printf("  %d transactions, %s income, %s expense, net %s\n",
		sum.Transactions, cli.FormatMoney(sum.TotalIncome), cli.FormatMoney(sum.TotalExpense), cli.FormatMoney(sum.Net))
	return nil
}
