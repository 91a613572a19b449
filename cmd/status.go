package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/ledger"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show how much of each wallet's budget is used",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	ws, err := a.ledger.Wallets()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGET STATUS"))
	fmt.Println()
	if len(ws) == 0 {
		fmt.Println("  No wallets yet. Add one with `fintrack wallet add <name> <amount>`.")
		return nil
	}

	th := cfg.Thresholds
	rows := make([][]string, 0, len(ws))
	for _, w := range ws {
		used := w.UsedPct()
		state := cli.Income("ok")
		switch {
		case !w.InitialAmount.IsPositive():
			state = cli.Muted("unfunded")
		case used >= th.ExceededPct:
			state = cli.Expense("exceeded")
		case used >= th.WarningPct:
			state = cli.Warn("warning")
		case w.RemainingPct() < th.LowBalancePct:
			state = cli.Warn("low")
		}
		rows = append(rows, []string{
			w.Name,
			fmt.Sprintf("%d%%", used),
			cli.RenderBudgetBar(used, th.WarningPct, th.ExceededPct, 20),
			cli.FormatMoney(w.Remaining),
			state,
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:   []string{"Wallet", "Used", "Budget", "Remaining", "State"},
		Rows:      rows,
		LeftAlign: []int{2, 4},
	}))

	fmt.Printf("\n  Total balance: %s\n", cli.FormatMoney(ledger.TotalBalance(ws)))
	if n, err := a.center.UnreadCount(); err == nil && n > 0 {
		fmt.Printf("  %s\n", cli.Warn(fmt.Sprintf("%d unread notification(s). See `fintrack notifications`.", n)))
	}
	if day, err := a.ledger.LastProcessedDay(); err == nil && day != "" {
		fmt.Printf("  %s\n", cli.Muted("Monthly transactions last processed "+day))
	}
	return nil
}
