package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

var currencyOptions = []string{"USD", "EUR", "GBP", "JPY", "CAD", "AUD", "INR", "MAD"}

func runSetup(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	next := cfg
	warning := strconv.Itoa(next.Thresholds.WarningPct)
	exceeded := strconv.Itoa(next.Thresholds.ExceededPct)
	low := strconv.Itoa(next.Thresholds.LowBalancePct)

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Currency").
				Options(huh.NewOptions(currencyOptions...)...).
				Value(&next.General.Currency),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&next.Appearance.Theme),
		).Title("Welcome to fintrack"),
		huh.NewGroup(
			huh.NewInput().Title("Warn when a wallet has used this % of its budget").Value(&warning).Validate(percent),
			huh.NewInput().Title("Alert when it has used this %").Value(&exceeded).Validate(percent),
			huh.NewInput().Title("Low balance below this % remaining").Value(&low).Validate(percent),
		).Title("Budget alerts"),
	}

	hasAccount, err := a.accounts.HasAccount()
	if err != nil {
		return err
	}
	var email, password, confirmPassword string
	if !hasAccount {
		groups = append(groups, signupGroup(&email, &password, &confirmPassword))
	}

	ws, err := a.ledger.Wallets()
	if err != nil {
		return err
	}
	var walletName, walletAmount string
	if len(ws) == 0 {
		groups = append(groups, huh.NewGroup(
			huh.NewInput().Title("Wallet name").Placeholder("Groceries").Value(&walletName),
			huh.NewInput().Title("Initial amount").Placeholder("500").Value(&walletAmount).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					_, err := ledger.ParseInitialAmount(s)
					return err
				}),
		).Title("First wallet").Description("Leave the name empty to skip."))
	}

	if err := huh.NewForm(groups...).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled.")
			return nil
		}
		return err
	}

	next.Thresholds.WarningPct, _ = strconv.Atoi(warning)
	next.Thresholds.ExceededPct, _ = strconv.Atoi(exceeded)
	next.Thresholds.LowBalancePct, _ = strconv.Atoi(low)
	if err := next.Validate(); err != nil {
		return err
	}
	if err := config.Save(next); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	cfg = next
	fmt.Printf("  Saved to %s\n", config.Path())

	if !hasAccount {
		if err := a.accounts.Signup(email, password, confirmPassword); err != nil {
			return err
		}
		fmt.Printf("  Signed up as %s\n", email)
	}
	if walletName != "" {
		amount, err := ledger.ParseInitialAmount(walletAmount)
		if err != nil {
			return err
		}
		if _, err := a.ledger.AddWallet(cmd.Context(), walletName, amount); err != nil {
			return err
		}
		fmt.Printf("  Added wallet %s\n", walletName)
	}

	fmt.Println("  Run `fintrack setup` anytime to reconfigure.")
	return nil
}

func percent(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 1000 {
		return errors.New("enter a whole percentage")
	}
	return nil
}
