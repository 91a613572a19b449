package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/source"
	"github.com/theirongolddev/fintrack/internal/store"
)

// Entry is the user-editable part of a transaction.
type Entry struct {
	Name     string
	Amount   decimal.Decimal
	IsIncome bool
	Category string
	// Date is only honoured by EditTransaction; empty keeps the old date.
	Date string
}

func (e Entry) validate() (Entry, error) {
	name, err := validName(e.Name)
	if err != nil {
		return e, err
	}
	e.Name = name
	if !e.Amount.IsPositive() {
		return e, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	cat, err := NormalizeCategory(e.Category)
	if err != nil {
		return e, err
	}
	e.Category = cat
	if e.Date != "" {
		if _, err := source.ParseDate(e.Date); err != nil {
			return e, fmt.Errorf("invalid date %q: %w", e.Date, err)
		}
	}
	return e, nil
}

// Transactions returns a wallet's transactions, newest first.
func (s *Service) Transactions(wallet string) ([]model.Transaction, error) {
	ws, err := readWallets(s.prefs)
	if err != nil {
		return nil, err
	}
	if walletIndex(ws, wallet) < 0 {
		return nil, fmt.Errorf("%w: %q", ErrWalletNotFound, wallet)
	}
	txs, err := readTransactions(s.prefs, wallet)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(txs)
	return txs, nil
}

// sortNewestFirst orders transactions by time, most recent first. Entries
// with equal times come out in reverse append order.
func sortNewestFirst(txs []model.Transaction) {
	for i, j := 0, len(txs)-1; i < j; i, j = i+1, j-1 {
		txs[i], txs[j] = txs[j], txs[i]
	}
	sort.SliceStable(txs, func(i, j int) bool {
		return sortKey(txs[i]) > sortKey(txs[j])
	})
}

func sortKey(t model.Transaction) int64 {
	if t.Timestamp > 0 {
		return t.Timestamp
	}
	if !t.At.IsZero() {
		return t.At.UnixMilli()
	}
	return 0
}

// AddTransaction books a new entry into wallet, stamped with the current
// time, and updates the wallet balance in the same commit.
func (s *Service) AddTransaction(ctx context.Context, wallet string, e Entry) (model.Transaction, error) {
	e, err := e.validate()
	if err != nil {
		return model.Transaction{}, err
	}

	now := s.now()
	t := model.Transaction{
		Name:      e.Name,
		Amount:    e.Amount,
		IsIncome:  e.IsIncome,
		Category:  e.Category,
		Date:      source.FormatDate(now),
		Timestamp: now.UnixMilli(),
		Wallet:    wallet,
	}
	t.At = source.ResolveTime(t)

	err = s.prefs.Update(func(tx *store.Tx) error {
		ws, err := readWallets(tx)
		if err != nil {
			return err
		}
		i := walletIndex(ws, wallet)
		if i < 0 {
			return fmt.Errorf("%w: %q", ErrWalletNotFound, wallet)
		}
		txs, err := readTransactions(tx, wallet)
		if err != nil {
			return err
		}
		if err := writeTransactions(tx, wallet, append(txs, t)); err != nil {
			return err
		}
		ws[i].Apply(t.Amount, t.IsIncome)
		if err := writeWallets(tx, ws); err != nil {
			return err
		}
		return s.markChanged(tx)
	})
	if err != nil {
		return model.Transaction{}, err
	}

	log.Debug("transaction added", "wallet", wallet, "name", t.Name, "amount", t.Amount.StringFixed(2), "income", t.IsIncome)
	s.checkBudgets(ctx)
	return t, nil
}

// EditTransaction replaces the first entry matching old. The old amount is
// reverted from the wallet and the new one applied. The original timestamp
// is kept. Nothing changes when no entry matches.
func (s *Service) EditTransaction(ctx context.Context, wallet string, old model.Transaction, e Entry) (model.Transaction, error) {
	e, err := e.validate()
	if err != nil {
		return model.Transaction{}, err
	}

	var updated model.Transaction
	err = s.prefs.Update(func(tx *store.Tx) error {
		ws, err := readWallets(tx)
		if err != nil {
			return err
		}
		wi := walletIndex(ws, wallet)
		if wi < 0 {
			return fmt.Errorf("%w: %q", ErrWalletNotFound, wallet)
		}
		txs, err := readTransactions(tx, wallet)
		if err != nil {
			return err
		}
		ti := matchIndex(txs, old)
		if ti < 0 {
			return ErrTransactionNotFound
		}

		cur := txs[ti]
		updated = model.Transaction{
			Name:      e.Name,
			Amount:    e.Amount,
			IsIncome:  e.IsIncome,
			Category:  e.Category,
			Date:      cur.Date,
			Timestamp: cur.Timestamp,
			Wallet:    wallet,
		}
		if e.Date != "" {
			updated.Date = e.Date
		}
		if updated.Timestamp == 0 {
			updated.Timestamp = s.now().UnixMilli()
		}
		updated.At = source.ResolveTime(updated)
		txs[ti] = updated

		ws[wi].Revert(cur.Amount, cur.IsIncome)
		ws[wi].Apply(updated.Amount, updated.IsIncome)

		if err := writeTransactions(tx, wallet, txs); err != nil {
			return err
		}
		if err := writeWallets(tx, ws); err != nil {
			return err
		}
		return s.markChanged(tx)
	})
	if err != nil {
		return model.Transaction{}, err
	}

	log.Debug("transaction edited", "wallet", wallet, "name", updated.Name)
	s.checkBudgets(ctx)
	return updated, nil
}

// DeleteTransaction removes the first entry matching t and reverses its
// effect on the wallet balance.
func (s *Service) DeleteTransaction(ctx context.Context, wallet string, t model.Transaction) error {
	err := s.prefs.Update(func(tx *store.Tx) error {
		ws, err := readWallets(tx)
		if err != nil {
			return err
		}
		wi := walletIndex(ws, wallet)
		if wi < 0 {
			return fmt.Errorf("%w: %q", ErrWalletNotFound, wallet)
		}
		txs, err := readTransactions(tx, wallet)
		if err != nil {
			return err
		}
		ti := matchIndex(txs, t)
		if ti < 0 {
			return ErrTransactionNotFound
		}
		removed := txs[ti]
		txs = append(txs[:ti], txs[ti+1:]...)
		ws[wi].Revert(removed.Amount, removed.IsIncome)

		if err := writeTransactions(tx, wallet, txs); err != nil {
			return err
		}
		if err := writeWallets(tx, ws); err != nil {
			return err
		}
		return s.markChanged(tx)
	})
	if err != nil {
		return err
	}

	log.Debug("transaction deleted", "wallet", wallet, "name", t.Name)
	s.checkBudgets(ctx)
	return nil
}

func matchIndex(txs []model.Transaction, t model.Transaction) int {
	for i := range txs {
		if txs[i].Matches(t) {
			return i
		}
	}
	return -1
}
