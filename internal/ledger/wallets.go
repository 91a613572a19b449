package ledger

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/store"
)

// Wallets returns all wallets in creation order.
func (s *Service) Wallets() ([]model.Wallet, error) {
	return readWallets(s.prefs)
}

// Wallet returns the named wallet.
func (s *Service) Wallet(name string) (model.Wallet, error) {
	ws, err := readWallets(s.prefs)
	if err != nil {
		return model.Wallet{}, err
	}
	i := walletIndex(ws, name)
	if i < 0 {
		return model.Wallet{}, fmt.Errorf("%w: %q", ErrWalletNotFound, name)
	}
	return ws[i], nil
}

// AddWallet creates a wallet whose remaining balance starts at initial.
func (s *Service) AddWallet(ctx context.Context, name string, initial decimal.Decimal) (model.Wallet, error) {
	name, err := validName(name)
	if err != nil {
		return model.Wallet{}, err
	}
	if initial.IsNegative() {
		return model.Wallet{}, fmt.Errorf("%w: initial amount is negative", ErrInvalidAmount)
	}

	w := model.NewWallet(name, initial)
	err = s.prefs.Update(func(tx *store.Tx) error {
		ws, err := readWallets(tx)
		if err != nil {
			return err
		}
		if walletIndex(ws, name) >= 0 {
			return fmt.Errorf("%w: %q", ErrWalletExists, name)
		}
		return writeWallets(tx, append(ws, w))
	})
	if err != nil {
		return model.Wallet{}, err
	}

	log.Info("wallet added", "wallet", name, "initial", initial.StringFixed(2))
	if s.alerter != nil {
		if err := s.alerter.WalletAdded(ctx, name); err != nil {
			log.Warn("wallet added notification failed", "err", err)
		}
	}
	return w, nil
}

// DeleteWallet removes a wallet together with its transactions and the
// monthly templates that book into it. Callers are expected to have
// verified the user's credentials.
func (s *Service) DeleteWallet(ctx context.Context, name string) error {
	removedTemplates := 0
	err := s.prefs.Update(func(tx *store.Tx) error {
		ws, err := readWallets(tx)
		if err != nil {
			return err
		}
		i := walletIndex(ws, name)
		if i < 0 {
			return fmt.Errorf("%w: %q", ErrWalletNotFound, name)
		}
		ws = append(ws[:i], ws[i+1:]...)
		if err := writeWallets(tx, ws); err != nil {
			return err
		}
		if err := tx.Remove(store.NSWallet, store.TransactionsKey(name)); err != nil {
			return err
		}

		ms, err := readMonthly(tx)
		if err != nil {
			return err
		}
		kept := ms[:0]
		for _, m := range ms {
			if m.Wallet == name {
				removedTemplates++
				continue
			}
			kept = append(kept, m)
		}
		if removedTemplates > 0 {
			if err := writeMonthly(tx, kept); err != nil {
				return err
			}
		}

		cur, _, err := tx.GetString(store.NSWallet, store.KeyCurrentWallet)
		if err != nil {
			return err
		}
		if cur == name {
			if err := tx.Remove(store.NSWallet, store.KeyCurrentWallet); err != nil {
				return err
			}
		}
		return s.markChanged(tx)
	})
	if err != nil {
		return err
	}

	log.Info("wallet deleted", "wallet", name, "templates", removedTemplates)
	s.checkBudgets(ctx)
	return nil
}

// CurrentWallet returns the selected wallet, falling back to the first
// wallet when nothing valid is selected. Empty when there are no wallets.
func (s *Service) CurrentWallet() (string, error) {
	ws, err := readWallets(s.prefs)
	if err != nil {
		return "", err
	}
	if len(ws) == 0 {
		return "", nil
	}
	cur, ok, err := s.prefs.GetString(store.NSWallet, store.KeyCurrentWallet)
	if err != nil {
		return "", err
	}
	if ok && walletIndex(ws, cur) >= 0 {
		return cur, nil
	}
	return ws[0].Name, nil
}

// SetCurrentWallet selects the wallet new transactions go to by default.
func (s *Service) SetCurrentWallet(name string) error {
	return s.prefs.Update(func(tx *store.Tx) error {
		ws, err := readWallets(tx)
		if err != nil {
			return err
		}
		if walletIndex(ws, name) < 0 {
			return fmt.Errorf("%w: %q", ErrWalletNotFound, name)
		}
		return tx.PutString(store.NSWallet, store.KeyCurrentWallet, name)
	})
}

// TotalBalance sums the remaining balance of every wallet.
func TotalBalance(ws []model.Wallet) decimal.Decimal {
	total := decimal.Zero
	for _, w := range ws {
		total = total.Add(w.Remaining)
	}
	return total
}
