package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/ledger"
)

var (
	flagWalletEmail    string
	flagWalletPassword string
	flagWalletYes      bool
)

var walletCmd = &cobra.Command{
	Use:     "wallet",
	Aliases: []string{"wallets"},
	Short:   "Manage wallets",
	RunE:    runWalletList,
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List wallets with their balances",
	RunE:  runWalletList,
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> <initial-amount>",
	Short: "Create a wallet",
	Args:  cobra.ExactArgs(2),
	RunE:  runWalletAdd,
}

var walletDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a wallet and all of its transactions",
	Args:  cobra.ExactArgs(1),
	RunE:  runWalletDelete,
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Select the current wallet",
	Args:  cobra.ExactArgs(1),
	RunE:  runWalletUse,
}

func init() {
	walletDeleteCmd.Flags().StringVar(&flagWalletEmail, "email", "", "Account email (prompted when omitted)")
	walletDeleteCmd.Flags().StringVar(&flagWalletPassword, "password", "", "Account password (prompted when omitted)")
	walletDeleteCmd.Flags().BoolVarP(&flagWalletYes, "yes", "y", false, "Skip the confirmation")

	walletCmd.AddCommand(walletListCmd, walletAddCmd, walletDeleteCmd, walletUseCmd)
	rootCmd.AddCommand(walletCmd)
}

func runWalletList(_ *cobra.Command, _ []string) error {
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	ws, err := a.ledger.Wallets()
	if err != nil {
		return err
	}
	if len(ws) == 0 {
		fmt.Println("\n  No wallets yet. Add one with `fintrack wallet add <name> <amount>`.")
		return nil
	}
	current, err := a.ledger.CurrentWallet()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(ws)+2)
	for _, w := range ws {
		marker := ""
		if w.Name == current {
			marker = cli.Income("*")
		}
		remaining := cli.FormatMoney(w.Remaining)
		if w.Remaining.IsNegative() {
			remaining = cli.Expense(remaining)
		}
		rows = append(rows, []string{
			marker,
			w.Name,
			cli.FormatMoney(w.InitialAmount),
			cli.FormatMoney(w.Expenses),
			remaining,
			fmt.Sprintf("%d%%", w.UsedPct()),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"", "Total", "", "", cli.FormatMoney(ledger.TotalBalance(ws)), ""})

	fmt.Println()
	fmt.Println(cli.RenderTitle("WALLETS"))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:   []string{"", "Wallet", "Initial", "Spent", "Remaining", "Used"},
		Rows:      rows,
		LeftAlign: []int{1},
	}))
	return nil
}

func runWalletAdd(cmd *cobra.Command, args []string) error {
	initial, err := ledger.ParseInitialAmount(args[1])
	if err != nil {
		return err
	}
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	w, err := a.ledger.AddWallet(cmd.Context(), args[0], initial)
	if err != nil {
		return err
	}
	fmt.Printf("  Added wallet %s with %s\n", w.Name, cli.FormatMoney(w.InitialAmount))
	return nil
}

func runWalletDelete(cmd *cobra.Command, args []string) error {
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.ledger.Wallet(args[0]); err != nil {
		return err
	}
	ok, err := confirm(fmt.Sprintf("Delete wallet %q and all of its transactions?", args[0]), flagWalletYes)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("  Cancelled.")
		return nil
	}

	email, password := flagWalletEmail, flagWalletPassword
	if err := promptCredentials("Confirm with your account", &email, &password); err != nil {
		return err
	}
	if err := a.accounts.Verify(email, password); err != nil {
		return err
	}

	if err := a.ledger.DeleteWallet(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("  Deleted wallet %s\n", args[0])
	return nil
}

func runWalletUse(_ *cobra.Command, args []string) error {
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.ledger.SetCurrentWallet(args[0]); err != nil {
		return err
	}
	fmt.Printf("  Current wallet: %s\n", args[0])
	return nil
}
