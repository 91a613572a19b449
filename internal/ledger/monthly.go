package ledger

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/source"
	"github.com/theirongolddev/fintrack/internal/store"
)

// lastProcessedLayout is the date format of the last_processed_day key.
const lastProcessedLayout = "2006-01-02"

// Template is the user-editable part of a monthly transaction.
type Template struct {
	Name       string
	Amount     decimal.Decimal
	IsIncome   bool
	Category   string
	Wallet     string
	DayOfMonth int
}

func (t Template) validate(ws []model.Wallet) (Template, error) {
	name, err := validName(t.Name)
	if err != nil {
		return t, err
	}
	t.Name = name
	if !t.Amount.IsPositive() {
		return t, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	cat, err := NormalizeCategory(t.Category)
	if err != nil {
		return t, err
	}
	t.Category = cat
	if t.DayOfMonth < 1 || t.DayOfMonth > 31 {
		return t, fmt.Errorf("%w: got %d", ErrInvalidDay, t.DayOfMonth)
	}
	if walletIndex(ws, t.Wallet) < 0 {
		return t, fmt.Errorf("%w: %q", ErrWalletNotFound, t.Wallet)
	}
	return t, nil
}

// Monthly returns all monthly templates in stored order. Indexes into this
// slice address templates in UpdateMonthly, ToggleMonthly and DeleteMonthly.
func (s *Service) Monthly() ([]model.MonthlyTransaction, error) {
	return readMonthly(s.prefs)
}

// AddMonthly stores a new active template.
func (s *Service) AddMonthly(t Template) (model.MonthlyTransaction, error) {
	var m model.MonthlyTransaction
	err := s.prefs.Update(func(tx *store.Tx) error {
		ws, err := readWallets(tx)
		if err != nil {
			return err
		}
		t, err = t.validate(ws)
		if err != nil {
			return err
		}
		ms, err := readMonthly(tx)
		if err != nil {
			return err
		}
		m = model.MonthlyTransaction{
			Name:       t.Name,
			Amount:     t.Amount,
			IsIncome:   t.IsIncome,
			Category:   t.Category,
			Wallet:     t.Wallet,
			DayOfMonth: t.DayOfMonth,
			IsActive:   true,
			CreatedAt:  s.now().UnixMilli(),
		}
		return writeMonthly(tx, append(ms, m))
	})
	if err != nil {
		return model.MonthlyTransaction{}, err
	}
	log.Info("monthly transaction added", "name", m.Name, "wallet", m.Wallet, "day", m.DayOfMonth)
	return m, nil
}

// UpdateMonthly replaces the editable fields of template i. Activation state,
// creation time and processing history are kept.
func (s *Service) UpdateMonthly(i int, t Template) (model.MonthlyTransaction, error) {
	var m model.MonthlyTransaction
	err := s.prefs.Update(func(tx *store.Tx) error {
		ws, err := readWallets(tx)
		if err != nil {
			return err
		}
		t, err = t.validate(ws)
		if err != nil {
			return err
		}
		ms, err := readMonthly(tx)
		if err != nil {
			return err
		}
		if i < 0 || i >= len(ms) {
			return fmt.Errorf("%w: index %d", ErrTemplateNotFound, i)
		}
		m = ms[i]
		m.Name = t.Name
		m.Amount = t.Amount
		m.IsIncome = t.IsIncome
		m.Category = t.Category
		m.Wallet = t.Wallet
		m.DayOfMonth = t.DayOfMonth
		ms[i] = m
		return writeMonthly(tx, ms)
	})
	if err != nil {
		return model.MonthlyTransaction{}, err
	}
	return m, nil
}

// ToggleMonthly flips template i between active and paused.
func (s *Service) ToggleMonthly(i int) (model.MonthlyTransaction, error) {
	var m model.MonthlyTransaction
	err := s.prefs.Update(func(tx *store.Tx) error {
		ms, err := readMonthly(tx)
		if err != nil {
			return err
		}
		if i < 0 || i >= len(ms) {
			return fmt.Errorf("%w: index %d", ErrTemplateNotFound, i)
		}
		ms[i].IsActive = !ms[i].IsActive
		m = ms[i]
		return writeMonthly(tx, ms)
	})
	if err != nil {
		return model.MonthlyTransaction{}, err
	}
	return m, nil
}

// DeleteMonthly removes template i. Transactions it already created stay.
func (s *Service) DeleteMonthly(i int) error {
	return s.prefs.Update(func(tx *store.Tx) error {
		ms, err := readMonthly(tx)
		if err != nil {
			return err
		}
		if i < 0 || i >= len(ms) {
			return fmt.Errorf("%w: index %d", ErrTemplateNotFound, i)
		}
		return writeMonthly(tx, append(ms[:i], ms[i+1:]...))
	})
}

// ProcessResult lists what a ProcessDue run booked.
type ProcessResult struct {
	Created []model.Transaction
	// Skipped counts due templates whose wallet no longer exists.
	Skipped int
}

// ProcessDue materializes every due template into its wallet. All bookings
// of one run share a single commit. Budgets are checked only when something
// was booked.
func (s *Service) ProcessDue(ctx context.Context) (ProcessResult, error) {
	var res ProcessResult
	now := s.now()

	err := s.prefs.Update(func(tx *store.Tx) error {
		ms, err := readMonthly(tx)
		if err != nil {
			return err
		}
		ws, err := readWallets(tx)
		if err != nil {
			return err
		}

		pending := map[string][]model.Transaction{}
		for i := range ms {
			if !MonthlyDue(ms[i], now) {
				continue
			}
			wi := walletIndex(ws, ms[i].Wallet)
			if wi < 0 {
				res.Skipped++
				log.Warn("monthly transaction targets missing wallet", "name", ms[i].Name, "wallet", ms[i].Wallet)
				continue
			}

			t := model.Transaction{
				Name:      ms[i].Name + model.MonthlySuffix,
				Amount:    ms[i].Amount,
				IsIncome:  ms[i].IsIncome,
				Category:  ms[i].Category,
				Date:      source.FormatDate(now),
				Timestamp: now.UnixMilli(),
				Wallet:    ms[i].Wallet,
			}
			t.At = source.ResolveTime(t)
			ws[wi].Apply(t.Amount, t.IsIncome)
			pending[t.Wallet] = append(pending[t.Wallet], t)
			ms[i].LastProcessed = now.UnixMilli()
			res.Created = append(res.Created, t)
		}

		if err := tx.PutString(store.NSWallet, store.KeyLastProcessedDay, now.Format(lastProcessedLayout)); err != nil {
			return err
		}
		if len(res.Created) == 0 {
			return nil
		}

		for wallet, add := range pending {
			txs, err := readTransactions(tx, wallet)
			if err != nil {
				return err
			}
			if err := writeTransactions(tx, wallet, append(txs, add...)); err != nil {
				return err
			}
		}
		if err := writeWallets(tx, ws); err != nil {
			return err
		}
		if err := writeMonthly(tx, ms); err != nil {
			return err
		}
		return s.markChanged(tx)
	})
	if err != nil {
		return ProcessResult{}, err
	}

	if len(res.Created) > 0 {
		log.Info("monthly transactions processed", "created", len(res.Created))
		s.checkBudgets(ctx)
	}
	return res, nil
}

// LastProcessedDay returns the date of the last ProcessDue run, or "".
func (s *Service) LastProcessedDay() (string, error) {
	v, _, err := s.prefs.GetString(store.NSWallet, store.KeyLastProcessedDay)
	return v, err
}
