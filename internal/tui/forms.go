package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/model"
)

type formKind int

const (
	formNone formKind = iota
	formSetup
	formLogin
	formTransaction
	formWallet
	formDeleteWallet
)

// formValues backs every huh form. It lives behind a pointer so the values
// survive the App copies bubbletea makes between updates.
type formValues struct {
	email    string
	password string
	confirm  string

	walletName   string
	walletAmount string

	txName     string
	txAmount   string
	txCategory string
	txIncome   bool
	txDate     string
	editing    *model.Transaction
	txWallet   string

	deleteOK bool
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validAmount(s string) error {
	_, err := ledger.ParseAmount(s)
	return err
}

func validInitialAmount(s string) error {
	_, err := parseInitial(s)
	return err
}

// parseInitial reads a wallet's starting amount; empty means zero.
func parseInitial(s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return ledger.ParseInitialAmount(s)
}

// newSetupForm creates the first-run form: an account, then an optional
// first wallet.
func newSetupForm(v *formValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to fintrack").
				Description("Create the local account that protects your wallets.\n\nYou can change everything later in Settings or with `fintrack setup`."),
		),
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(&v.email).Validate(required("email")),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&v.password).Validate(required("password")),
			huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&v.confirm).
				Validate(func(s string) error {
					if s != v.password {
						return errors.New("passwords do not match")
					}
					return nil
				}),
		).Title("Account"),
		huh.NewGroup(
			huh.NewInput().Title("Wallet name").Placeholder("Groceries").Value(&v.walletName),
			huh.NewInput().Title("Initial amount").Placeholder("500").Value(&v.walletAmount).Validate(validInitialAmount),
		).Title("First wallet").Description("Leave the name empty to skip."),
	).WithShowHelp(true)
}

func newLoginForm(v *formValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(&v.email).Validate(required("email")),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&v.password).Validate(required("password")),
		).Title("Log in to fintrack"),
	)
}

func categoryOptions() []huh.Option[string] {
	return huh.NewOptions(model.Categories...)
}

// newTransactionForm adds to wallet, or edits v.editing when set.
func newTransactionForm(v *formValues) *huh.Form {
	title := "New transaction in " + v.txWallet
	fields := []huh.Field{
		huh.NewInput().Title("Name").Value(&v.txName).Validate(required("name")),
		huh.NewInput().Title("Amount").Placeholder("12.50").Value(&v.txAmount).Validate(validAmount),
		huh.NewSelect[string]().Title("Category").Options(categoryOptions()...).Value(&v.txCategory),
		huh.NewConfirm().Title("Type").Affirmative("Income").Negative("Expense").Value(&v.txIncome),
	}
	if v.editing != nil {
		title = "Edit " + v.editing.Name
		fields = append(fields,
			huh.NewInput().Title("Date").Description("YYYY-MM-DD HH:MM, empty keeps the current date").Value(&v.txDate))
	}
	return huh.NewForm(huh.NewGroup(fields...).Title(title))
}

func newWalletForm(v *formValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Wallet name").Value(&v.walletName).Validate(required("name")),
			huh.NewInput().Title("Initial amount").Placeholder("500").Value(&v.walletAmount).Validate(validInitialAmount),
		).Title("New wallet"),
	)
}

func newDeleteWalletForm(v *formValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete wallet %q and all of its transactions?", v.walletName)).
				Value(&v.deleteOK),
			huh.NewInput().Title("Email").Value(&v.email),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&v.password),
		).Title("Delete wallet").Description("Confirm with your account credentials."),
	)
}

// openForm shows kind on top of the dashboard.
func (a App) openForm(kind formKind, v *formValues) (App, tea.Cmd) {
	var f *huh.Form
	switch kind {
	case formSetup:
		f = newSetupForm(v)
	case formLogin:
		f = newLoginForm(v)
	case formTransaction:
		f = newTransactionForm(v)
	case formWallet:
		f = newWalletForm(v)
	case formDeleteWallet:
		f = newDeleteWalletForm(v)
	default:
		return a, nil
	}
	f = f.WithTheme(huh.ThemeCharm())
	if a.width > 0 {
		f = f.WithWidth(min(a.width, 80)).WithHeight(a.height)
	}
	a.form = f
	a.formKind = kind
	a.formVals = v
	return a, f.Init()
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		kind, v := a.formKind, a.formVals
		a.form, a.formKind, a.formVals = nil, formNone, nil
		return a, a.submitForm(kind, v)
	case huh.StateAborted:
		kind := a.formKind
		a.form, a.formKind, a.formVals = nil, formNone, nil
		if kind == formSetup || kind == formLogin {
			// The dashboard is unusable without an account.
			return a, tea.Quit
		}
		return a, nil
	}
	return a, cmd
}

// submitForm runs the mutation a completed form describes.
func (a App) submitForm(kind formKind, v *formValues) tea.Cmd {
	svc := a.svc
	return func() tea.Msg {
		ctx := context.Background()
		switch kind {
		case formSetup:
			if err := svc.Accounts.Signup(v.email, v.password, v.confirm); err != nil {
				return mutationMsg{err: err, reopen: formSetup, vals: v}
			}
			if name := strings.TrimSpace(v.walletName); name != "" {
				amount, err := parseInitial(v.walletAmount)
				if err != nil {
					return mutationMsg{err: err}
				}
				if _, err := svc.Ledger.AddWallet(ctx, name, amount); err != nil {
					return mutationMsg{err: err}
				}
			}
			return mutationMsg{status: "Signed up as " + strings.TrimSpace(v.email), process: true}

		case formLogin:
			if err := svc.Accounts.Login(v.email, v.password); err != nil {
				return mutationMsg{err: err, reopen: formLogin, vals: v}
			}
			return mutationMsg{status: "Logged in", process: true}

		case formTransaction:
			amount, err := ledger.ParseAmount(v.txAmount)
			if err != nil {
				return mutationMsg{err: err}
			}
			e := ledger.Entry{
				Name:     v.txName,
				Amount:   amount,
				IsIncome: v.txIncome,
				Category: v.txCategory,
				Date:     strings.TrimSpace(v.txDate),
			}
			if v.editing != nil {
				t, err := svc.Ledger.EditTransaction(ctx, v.txWallet, *v.editing, e)
				if err != nil {
					return mutationMsg{err: err}
				}
				return mutationMsg{status: "Updated " + t.Name}
			}
			t, err := svc.Ledger.AddTransaction(ctx, v.txWallet, e)
			if err != nil {
				return mutationMsg{err: err}
			}
			return mutationMsg{status: fmt.Sprintf("Added %s %s", strings.ToLower(t.Kind()), t.Name)}

		case formWallet:
			amount, err := parseInitial(v.walletAmount)
			if err != nil {
				return mutationMsg{err: err}
			}
			w, err := svc.Ledger.AddWallet(ctx, v.walletName, amount)
			if err != nil {
				return mutationMsg{err: err}
			}
			return mutationMsg{status: "Added wallet " + w.Name}

		case formDeleteWallet:
			if !v.deleteOK {
				return mutationMsg{status: "Cancelled"}
			}
			if err := svc.Accounts.Verify(v.email, v.password); err != nil {
				return mutationMsg{err: err}
			}
			if err := svc.Ledger.DeleteWallet(ctx, v.walletName); err != nil {
				return mutationMsg{err: err}
			}
			return mutationMsg{status: "Deleted wallet " + v.walletName}
		}
		return nil
	}
}
