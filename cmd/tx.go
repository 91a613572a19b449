package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/pipeline"
)

var (
	flagTxWallet   string
	flagTxSearch   string
	flagTxLimit    int
	flagTxIncome   bool
	flagTxCategory string
	flagTxName     string
	flagTxAmount   string
	flagTxDate     string
	flagTxEditCat  string
	flagTxEditInc  bool
	flagTxYes      bool
)

var txCmd = &cobra.Command{
	Use:     "tx",
	Aliases: []string{"transactions"},
	Short:   "List and edit transactions",
	RunE:    runTxList,
}

var txListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions of a wallet, newest first",
	RunE:  runTxList,
}

var txAddCmd = &cobra.Command{
	Use:   "add <name> <amount>",
	Short: "Record an income or expense",
	Long:  "Record a transaction. Categories: " + strings.Join(model.Categories, ", ") + ".",
	Args:  cobra.ExactArgs(2),
	RunE:  runTxAdd,
}

var txEditCmd = &cobra.Command{
	Use:   "edit <index>",
	Short: "Edit a transaction by its index in `tx list`",
	Args:  cobra.ExactArgs(1),
	RunE:  runTxEdit,
}

var txDeleteCmd = &cobra.Command{
	Use:   "delete <index>",
	Short: "Delete a transaction by its index in `tx list`",
	Args:  cobra.ExactArgs(1),
	RunE:  runTxDelete,
}

func init() {
	txCmd.PersistentFlags().StringVarP(&flagTxWallet, "wallet", "w", "", "Wallet (default: the current wallet)")

	txListCmd.Flags().StringVarP(&flagTxSearch, "search", "s", "", "Only show names containing this text")
	txListCmd.Flags().IntVarP(&flagTxLimit, "limit", "n", 25, "Number of transactions to show (0 for all)")
	txCmd.Flags().AddFlagSet(txListCmd.Flags())

	txAddCmd.Flags().BoolVar(&flagTxIncome, "income", false, "Record as income instead of expense")
	txAddCmd.Flags().StringVarP(&flagTxCategory, "category", "c", "Essentials", "Category")

	txEditCmd.Flags().StringVar(&flagTxName, "name", "", "New name")
	txEditCmd.Flags().StringVar(&flagTxAmount, "amount", "", "New amount")
	txEditCmd.Flags().StringVarP(&flagTxEditCat, "category", "c", "", "New category")
	txEditCmd.Flags().StringVar(&flagTxDate, "date", "", "New date (YYYY-MM-DD HH:MM)")
	txEditCmd.Flags().BoolVar(&flagTxEditInc, "income", false, "Mark as income (use --income=false for expense)")

	txDeleteCmd.Flags().BoolVarP(&flagTxYes, "yes", "y", false, "Skip the confirmation")

	txCmd.AddCommand(txListCmd, txAddCmd, txEditCmd, txDeleteCmd)
	rootCmd.AddCommand(txCmd)
}

func runTxList(_ *cobra.Command, _ []string) error {
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	wallet, err := a.resolveWallet(flagTxWallet)
	if err != nil {
		return err
	}
	txs, err := a.ledger.Transactions(wallet)
	if err != nil {
		return err
	}

	// Indexes refer to the unfiltered list so edit and delete stay stable.
	type indexed struct {
		i int
		t model.Transaction
	}
	var shown []indexed
	for i, t := range txs {
		if flagTxSearch != "" && len(pipeline.FilterByName([]model.Transaction{t}, flagTxSearch)) == 0 {
			continue
		}
		shown = append(shown, indexed{i + 1, t})
	}
	total := len(shown)
	if flagTxLimit > 0 && len(shown) > flagTxLimit {
		shown = shown[:flagTxLimit]
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("TRANSACTIONS  %s", wallet)))
	fmt.Println()
	if len(shown) == 0 {
		fmt.Println("  No transactions found.")
		return nil
	}

	rows := make([][]string, 0, len(shown))
	for _, it := range shown {
		amount := cli.FormatSigned(it.t.Amount, it.t.IsIncome)
		if it.t.IsIncome {
			amount = cli.Income(amount)
		} else {
			amount = cli.Expense(amount)
		}
		rows = append(rows, []string{
			strconv.Itoa(it.i),
			it.t.Name,
			it.t.Category,
			it.t.Date,
			amount,
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:   []string{"#", "Name", "Category", "Date", "Amount"},
		Rows:      rows,
		LeftAlign: []int{1, 2, 3},
	}))
	if total > len(shown) {
		fmt.Printf("  %s\n", cli.Muted(fmt.Sprintf("Showing %d of %d. Use --limit 0 for all.", len(shown), total)))
	}
	return nil
}

func runTxAdd(cmd *cobra.Command, args []string) error {
	amount, err := ledger.ParseAmount(args[1])
	if err != nil {
		return err
	}
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	wallet, err := a.resolveWallet(flagTxWallet)
	if err != nil {
		return err
	}
	t, err := a.ledger.AddTransaction(cmd.Context(), wallet, ledger.Entry{
		Name:     args[0],
		Amount:   amount,
		IsIncome: flagTxIncome,
		Category: flagTxCategory,
	})
	if err != nil {
		return err
	}
	fmt.Printf("  %s %s %s in %s\n", t.Kind(), t.Name, cli.FormatMoney(t.Amount), wallet)
	return nil
}

// pickTransaction resolves a 1-based index from `tx list`.
func pickTransaction(a *app, arg string) (string, model.Transaction, error) {
	wallet, err := a.resolveWallet(flagTxWallet)
	if err != nil {
		return "", model.Transaction{}, err
	}
	i, err := strconv.Atoi(arg)
	if err != nil {
		return "", model.Transaction{}, fmt.Errorf("index must be a number: %q", arg)
	}
	txs, err := a.ledger.Transactions(wallet)
	if err != nil {
		return "", model.Transaction{}, err
	}
	if i < 1 || i > len(txs) {
		return "", model.Transaction{}, fmt.Errorf("%w: index %d (wallet has %d)", ledger.ErrTransactionNotFound, i, len(txs))
	}
	return wallet, txs[i-1], nil
}

func runTxEdit(cmd *cobra.Command, args []string) error {
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	wallet, old, err := pickTransaction(a, args[0])
	if err != nil {
		return err
	}

	e := ledger.Entry{
		Name:     old.Name,
		Amount:   old.Amount,
		IsIncome: old.IsIncome,
		Category: old.Category,
		Date:     flagTxDate,
	}
	flags := cmd.Flags()
	if flags.Changed("name") {
		e.Name = flagTxName
	}
	if flags.Changed("amount") {
		if e.Amount, err = ledger.ParseAmount(flagTxAmount); err != nil {
			return err
		}
	}
	if flags.Changed("category") {
		e.Category = flagTxEditCat
	}
	if flags.Changed("income") {
		e.IsIncome = flagTxEditInc
	}

	t, err := a.ledger.EditTransaction(cmd.Context(), wallet, old, e)
	if err != nil {
		return err
	}
	fmt.Printf("  Updated %s: %s %s on %s\n", t.Name, t.Kind(), cli.FormatMoney(t.Amount), t.Date)
	return nil
}

func runTxDelete(cmd *cobra.Command, args []string) error {
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	wallet, t, err := pickTransaction(a, args[0])
	if err != nil {
		return err
	}
	ok, err := confirm(fmt.Sprintf("Delete %q (%s) from %s?", t.Name, cli.FormatMoney(t.Amount), wallet), flagTxYes)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("  Cancelled.")
		return nil
	}
	if err := a.ledger.DeleteTransaction(cmd.Context(), wallet, t); err != nil {
		return err
	}
	fmt.Printf("  Deleted %s\n", t.Name)
	return nil
}
