package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/model"
)

var (
	flagMonthlyWallet   string
	flagMonthlyCategory string
	flagMonthlyIncome   bool
	flagMonthlyDay      int
	flagMonthlyName     string
	flagMonthlyAmount   string

	flagMonthlyEditWallet   string
	flagMonthlyEditCategory string
	flagMonthlyEditIncome   bool
	flagMonthlyEditDay      int
)

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Manage recurring monthly transactions",
	RunE:  runMonthlyList,
}

var monthlyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List monthly templates",
	RunE:  runMonthlyList,
}

var monthlyAddCmd = &cobra.Command{
	Use:   "add <name> <amount>",
	Short: "Add a monthly template",
	Args:  cobra.ExactArgs(2),
	RunE:  runMonthlyAdd,
}

var monthlyEditCmd = &cobra.Command{
	Use:   "edit <index>",
	Short: "Edit a monthly template",
	Args:  cobra.ExactArgs(1),
	RunE:  runMonthlyEdit,
}

var monthlyToggleCmd = &cobra.Command{
	Use:   "toggle <index>",
	Short: "Pause or resume a monthly template",
	Args:  cobra.ExactArgs(1),
	RunE:  runMonthlyToggle,
}

var monthlyDeleteCmd = &cobra.Command{
	Use:   "delete <index>",
	Short: "Delete a monthly template",
	Args:  cobra.ExactArgs(1),
	RunE:  runMonthlyDelete,
}

var monthlyProcessCmd = &cobra.Command{
	Use:   "process",
	Short: "Book every template that is due today",
	RunE:  runMonthlyProcess,
}

func init() {
	monthlyAddCmd.Flags().StringVarP(&flagMonthlyWallet, "wallet", "w", "", "Target wallet (default: the current wallet)")
	monthlyAddCmd.Flags().StringVarP(&flagMonthlyCategory, "category", "c", "Essentials", "Category")
	monthlyAddCmd.Flags().BoolVar(&flagMonthlyIncome, "income", false, "Book as income")
	monthlyAddCmd.Flags().IntVar(&flagMonthlyDay, "day", 1, "Day of month (1-31, clamped to the month's last day)")

	ef := monthlyEditCmd.Flags()
	ef.StringVar(&flagMonthlyName, "name", "", "New name")
	ef.StringVar(&flagMonthlyAmount, "amount", "", "New amount")
	ef.StringVarP(&flagMonthlyEditWallet, "wallet", "w", "", "New target wallet")
	ef.StringVarP(&flagMonthlyEditCategory, "category", "c", "", "New category")
	ef.BoolVar(&flagMonthlyEditIncome, "income", false, "Book as income")
	ef.IntVar(&flagMonthlyEditDay, "day", 0, "New day of month")

	monthlyCmd.AddCommand(monthlyListCmd, monthlyAddCmd, monthlyEditCmd, monthlyToggleCmd, monthlyDeleteCmd, monthlyProcessCmd)
	rootCmd.AddCommand(monthlyCmd)
}

func runMonthlyList(_ *cobra.Command, _ []string) error {
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	ms, err := a.ledger.Monthly()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("MONTHLY TRANSACTIONS"))
	fmt.Println()
	if len(ms) == 0 {
		fmt.Println("  No monthly transactions. Add one with `fintrack monthly add`.")
		return nil
	}

	now := a.ledger.Now()
	rows := make([][]string, 0, len(ms))
	for i, m := range ms {
		state := cli.Income("active")
		if !m.IsActive {
			state = cli.Muted("paused")
		} else if ledger.MonthlyDue(m, now) {
			state = cli.Warn("due")
		}
		last := "-"
		if m.LastProcessed > 0 {
			last = model.MillisTime(m.LastProcessed).Format("2006-01-02")
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			m.Name,
			m.Wallet,
			m.Category,
			strconv.Itoa(m.DayOfMonth),
			cli.FormatSigned(m.Amount, m.IsIncome),
			last,
			state,
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:   []string{"#", "Name", "Wallet", "Category", "Day", "Amount", "Last run", "State"},
		Rows:      rows,
		LeftAlign: []int{1, 2, 3, 7},
	}))

	if day, err := a.ledger.LastProcessedDay(); err == nil && day != "" {
		fmt.Printf("  %s\n", cli.Muted("Last processed: "+day))
	}
	return nil
}

func runMonthlyAdd(_ *cobra.Command, args []string) error {
	amount, err := ledger.ParseAmount(args[1])
	if err != nil {
		return err
	}
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	wallet, err := a.resolveWallet(flagMonthlyWallet)
	if err != nil {
		return err
	}
	m, err := a.ledger.AddMonthly(ledger.Template{
		Name:       args[0],
		Amount:     amount,
		IsIncome:   flagMonthlyIncome,
		Category:   flagMonthlyCategory,
		Wallet:     wallet,
		DayOfMonth: flagMonthlyDay,
	})
	if err != nil {
		return err
	}
	fmt.Printf("  Added %s: %s on day %d into %s\n", m.Name, cli.FormatSigned(m.Amount, m.IsIncome), m.DayOfMonth, m.Wallet)
	return nil
}

// monthlyIndex converts a 1-based index from `monthly list`.
func monthlyIndex(arg string) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 1 {
		return 0, fmt.Errorf("%w: index %q", ledger.ErrTemplateNotFound, arg)
	}
	return i - 1, nil
}

func runMonthlyEdit(cmd *cobra.Command, args []string) error {
	i, err := monthlyIndex(args[0])
	if err != nil {
		return err
	}
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	ms, err := a.ledger.Monthly()
	if err != nil {
		return err
	}
	if i >= len(ms) {
		return fmt.Errorf("%w: index %d", ledger.ErrTemplateNotFound, i+1)
	}
	old := ms[i]
	t := ledger.Template{
		Name:       old.Name,
		Amount:     old.Amount,
		IsIncome:   old.IsIncome,
		Category:   old.Category,
		Wallet:     old.Wallet,
		DayOfMonth: old.DayOfMonth,
	}
	flags := cmd.Flags()
	if flags.Changed("name") {
		t.Name = flagMonthlyName
	}
	if flags.Changed("amount") {
		if t.Amount, err = ledger.ParseAmount(flagMonthlyAmount); err != nil {
			return err
		}
	}
	if flags.Changed("wallet") {
		t.Wallet = flagMonthlyEditWallet
	}
	if flags.Changed("category") {
		t.Category = flagMonthlyEditCategory
	}
	if flags.Changed("income") {
		t.IsIncome = flagMonthlyEditIncome
	}
	if flags.Changed("day") {
		t.DayOfMonth = flagMonthlyEditDay
	}

	m, err := a.ledger.UpdateMonthly(i, t)
	if err != nil {
		return err
	}
	fmt.Printf("  Updated %s: %s on day %d into %s\n", m.Name, cli.FormatSigned(m.Amount, m.IsIncome), m.DayOfMonth, m.Wallet)
	return nil
}

func runMonthlyToggle(_ *cobra.Command, args []string) error {
	i, err := monthlyIndex(args[0])
	if err != nil {
		return err
	}
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	m, err := a.ledger.ToggleMonthly(i)
	if err != nil {
		return err
	}
	state := "paused"
	if m.IsActive {
		state = "active"
	}
	fmt.Printf("  %s is now %s\n", m.Name, state)
	return nil
}

func runMonthlyDelete(_ *cobra.Command, args []string) error {
	i, err := monthlyIndex(args[0])
	if err != nil {
		return err
	}
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.ledger.DeleteMonthly(i); err != nil {
		return err
	}
	fmt.Printf("  Deleted monthly transaction #%d\n", i+1)
	return nil
}

func runMonthlyProcess(cmd *cobra.Command, _ []string) error {
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.ledger.ProcessDue(cmd.Context())
	if err != nil {
		return err
	}
	if len(res.Created) == 0 {
		fmt.Println("  Nothing due.")
	}
	for _, t := range res.Created {
		fmt.Printf("  Booked %s %s into %s\n", t.Name, cli.FormatSigned(t.Amount, t.IsIncome), t.Wallet)
	}
	if res.Skipped > 0 {
		fmt.Printf("  %s\n", cli.Warn(fmt.Sprintf("Skipped %d template(s) whose wallet no longer exists", res.Skipped)))
	}
	return nil
}
