package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/pipeline"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

// txState tracks the transactions tab.
type txState struct {
	cursor        int
	offset        int
	searching     bool
	searchInput   textinput.Model
	query         string
	confirmDelete bool
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "name contains..."
	ti.CharLimit = 64
	ti.Width = 30
	return ti
}

// filteredTransactions is the current wallet's list narrowed by the search.
func (a App) filteredTransactions() []model.Transaction {
	txs := a.currentTransactions()
	if a.txState.query == "" {
		return txs
	}
	return pipeline.FilterByName(txs, a.txState.query)
}

func (a App) selectedTransaction() (model.Transaction, bool) {
	txs := a.filteredTransactions()
	if a.txState.cursor < 0 || a.txState.cursor >= len(txs) {
		return model.Transaction{}, false
	}
	return txs[a.txState.cursor], true
}

func (a App) updateTransactionsSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.txState.query = strings.TrimSpace(a.txState.searchInput.Value())
		a.txState.searching = false
		a.txState.cursor = 0
		a.txState.offset = 0
		return a, nil
	case "esc":
		a.txState.searching = false
		return a, nil
	}
	var cmd tea.Cmd
	a.txState.searchInput, cmd = a.txState.searchInput.Update(msg)
	return a, cmd
}

func (a App) updateTransactionsKeys(key string) (App, tea.Cmd, bool) {
	if a.txState.confirmDelete {
		a.txState.confirmDelete = false
		if key != "y" {
			a.setStatus("Cancelled", false)
			return a, nil, true
		}
		t, ok := a.selectedTransaction()
		if !ok {
			return a, nil, true
		}
		return a, deleteTransactionCmd(a.svc, a.snap.current, t), true
	}

	txs := a.filteredTransactions()
	switch key {
	case "j", "down":
		a.txState.cursor = clamp(a.txState.cursor+1, 0, len(txs)-1)
	case "k", "up":
		a.txState.cursor = clamp(a.txState.cursor-1, 0, len(txs)-1)
	case "g":
		a.txState.cursor = 0
	case "G":
		a.txState.cursor = max(len(txs)-1, 0)
	case "[", "]":
		return a.switchWallet(key == "]")
	case "/":
		a.txState.searching = true
		a.txState.searchInput = newSearchInput()
		a.txState.searchInput.SetValue(a.txState.query)
		a.txState.searchInput.Focus()
		return a, a.txState.searchInput.Cursor.BlinkCmd(), true
	case "esc":
		if a.txState.query == "" {
			return a, nil, false
		}
		a.txState.query = ""
		a.txState.cursor = 0
		a.txState.offset = 0
	case "+":
		if a.snap.current == "" {
			a.setStatus("Add a wallet first", true)
			return a, nil, true
		}
		v := &formValues{txWallet: a.snap.current, txCategory: model.Categories[0]}
		next, cmd := a.openForm(formTransaction, v)
		return next, cmd, true
	case "e", "enter":
		t, ok := a.selectedTransaction()
		if !ok {
			return a, nil, true
		}
		v := &formValues{
			txWallet:   a.snap.current,
			txName:     t.Name,
			txAmount:   t.Amount.String(),
			txCategory: t.Category,
			txIncome:   t.IsIncome,
			editing:    &t,
		}
		next, cmd := a.openForm(formTransaction, v)
		return next, cmd, true
	case "d", "delete":
		if _, ok := a.selectedTransaction(); ok {
			a.txState.confirmDelete = true
		}
	default:
		return a, nil, false
	}
	return a, nil, true
}

// switchWallet selects the previous or next wallet as the current one.
func (a App) switchWallet(forward bool) (App, tea.Cmd, bool) {
	ws := a.wallets()
	if len(ws) < 2 {
		return a, nil, true
	}
	idx := 0
	for i, w := range ws {
		if w.Name == a.snap.current {
			idx = i
			break
		}
	}
	if forward {
		idx = (idx + 1) % len(ws)
	} else {
		idx = (idx - 1 + len(ws)) % len(ws)
	}
	a.txState.cursor = 0
	a.txState.offset = 0
	return a, useWalletCmd(a.svc, ws[idx].Name), true
}

func useWalletCmd(svc Services, name string) tea.Cmd {
	return func() tea.Msg {
		if err := svc.Ledger.SetCurrentWallet(name); err != nil {
			return mutationMsg{err: err}
		}
		return mutationMsg{status: "Current wallet: " + name}
	}
}

func deleteTransactionCmd(svc Services, wallet string, t model.Transaction) tea.Cmd {
	return func() tea.Msg {
		if err := svc.Ledger.DeleteTransaction(context.Background(), wallet, t); err != nil {
			return mutationMsg{err: err}
		}
		return mutationMsg{status: "Deleted " + t.Name}
	}
}

func (a App) renderTransactionsTab(cw, contentH int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	if len(a.wallets()) == 0 {
		body := valueStyle.Render("No wallets yet.") + "\n\n" +
			labelStyle.Render("Open the Wallets tab and press + to create one.")
		return components.ContentCard("Transactions", body, cw)
	}

	// Wallet switcher
	var sw strings.Builder
	sw.WriteString(dimStyle.Render("[ "))
	for i, w := range a.wallets() {
		if i > 0 {
			sw.WriteString(space.Render("  "))
		}
		if w.Name == a.snap.current {
			sw.WriteString(accentStyle.Render(w.Name))
		} else {
			sw.WriteString(labelStyle.Render(w.Name))
		}
	}
	sw.WriteString(dimStyle.Render(" ]"))

	var summary string
	for _, w := range a.wallets() {
		if w.Name != a.snap.current {
			continue
		}
		summary = labelStyle.Render("Remaining ") +
			lipgloss.NewStyle().Foreground(t.Balance(w.Remaining.IsNegative())).Background(t.Surface).Bold(true).
				Render(cli.FormatMoney(w.Remaining)) +
			labelStyle.Render("   Initial ") + valueStyle.Render(cli.FormatMoney(w.InitialAmount)) +
			labelStyle.Render("   Spent ") + valueStyle.Render(cli.FormatMoney(w.Expenses)) +
			labelStyle.Render(fmt.Sprintf("   Used %d%%", w.UsedPct()))
	}

	header := sw.String() + "\n" + summary
	if a.txState.searching {
		header += "\n" + labelStyle.Render("Search: ") + a.txState.searchInput.View()
	} else if a.txState.query != "" {
		header += "\n" + labelStyle.Render("Filter: ") + accentStyle.Render(a.txState.query) +
			dimStyle.Render("  (esc to clear)")
	}

	txs := a.filteredTransactions()
	innerW := components.CardInnerWidth(cw)
	amountW := 14
	dateW := 16
	catW := 14
	nameW := innerW - amountW - dateW - catW - 6
	if a.isCompactLayout() {
		catW = 0
		nameW = innerW - amountW - dateW - 4
	}

	var list strings.Builder
	headRow := fmt.Sprintf("  %-*s %-*s ", dateW, "Date", nameW, "Name")
	if catW > 0 {
		headRow += fmt.Sprintf("%-*s ", catW, "Category")
	}
	headRow += fmt.Sprintf("%*s", amountW, "Amount")
	list.WriteString(dimStyle.Render(headRow))
	list.WriteString("\n")

	if len(txs) == 0 {
		list.WriteString(labelStyle.Render("  No transactions. Press + to add one."))
	}

	// Rows that fit: card chrome, header lines, column header, hints.
	visible := contentH - lipgloss.Height(header) - 7
	if visible < 3 {
		visible = 3
	}
	offset := a.txState.offset
	if a.txState.cursor < offset {
		offset = a.txState.cursor
	}
	if a.txState.cursor >= offset+visible {
		offset = a.txState.cursor - visible + 1
	}
	end := min(offset+visible, len(txs))

	for i := offset; i < end; i++ {
		tx := txs[i]
		selected := i == a.txState.cursor
		bg := t.Surface
		if selected {
			bg = t.SurfaceBright
		}
		rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(bg)
		mutedRow := lipgloss.NewStyle().Foreground(t.TextMuted).Background(bg)
		amountStyle := lipgloss.NewStyle().Foreground(t.Amount(tx.IsIncome)).Background(bg).Bold(selected)

		marker := "  "
		if selected {
			marker = "▸ "
		}
		line := rowStyle.Render(marker) +
			mutedRow.Render(fmt.Sprintf("%-*s ", dateW, truncStr(tx.Date, dateW))) +
			rowStyle.Render(fmt.Sprintf("%-*s ", nameW, truncStr(tx.Name, nameW)))
		if catW > 0 {
			line += mutedRow.Render(fmt.Sprintf("%-*s ", catW, truncStr(tx.Category, catW)))
		}
		line += amountStyle.Render(fmt.Sprintf("%*s", amountW, cli.FormatSigned(tx.Amount, tx.IsIncome)))
		if pad := innerW - lipgloss.Width(line); pad > 0 {
			line += lipgloss.NewStyle().Background(bg).Render(strings.Repeat(" ", pad))
		}
		list.WriteString(line)
		list.WriteString("\n")
	}

	if a.txState.confirmDelete {
		if tx, ok := a.selectedTransaction(); ok {
			warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Bold(true)
			list.WriteString("\n")
			list.WriteString(warn.Render(fmt.Sprintf("Delete %q (%s)? [y/N]", tx.Name, cli.FormatMoney(tx.Amount))))
		}
	} else {
		list.WriteString("\n")
		list.WriteString(dimStyle.Render(fmt.Sprintf("%d of %d  ·  [ ] wallet  [+]add  [e]dit  [d]elete  [/]search",
			min(a.txState.cursor+1, len(txs)), len(txs))))
	}

	title := fmt.Sprintf("Transactions · %s", a.snap.current)
	return components.ContentCard(title, header+"\n\n"+list.String(), cw)
}
