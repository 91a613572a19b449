// Package ledger implements wallet, transaction and monthly-template
// bookkeeping on top of the preference store.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/source"
	"github.com/theirongolddev/fintrack/internal/store"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrWalletExists        = errors.New("wallet already exists")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTemplateNotFound    = errors.New("monthly transaction not found")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidCategory     = errors.New("invalid category")
	ErrInvalidDay          = errors.New("day of month must be within 1-31")
	ErrInvalidName         = errors.New("name is required")
)

// Alerter is notified of ledger changes that may raise notifications.
type Alerter interface {
	WalletAdded(ctx context.Context, name string) error
	CheckBudgets(ctx context.Context, wallets []model.Wallet) error
}

// Service performs ledger operations. Every mutation is a single store
// transaction, so wallet balances and transaction lists never diverge.
type Service struct {
	prefs   *store.Store
	alerter Alerter
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithAlerter routes wallet and budget events to a.
func WithAlerter(a Alerter) Option {
	return func(s *Service) { s.alerter = a }
}

// New returns a Service backed by prefs.
func New(prefs *store.Store, opts ...Option) *Service {
	s := &Service{prefs: prefs, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// Store exposes the underlying preference store.
func (s *Service) Store() *store.Store {
	return s.prefs
}

type reader interface {
	GetString(ns, key string) (string, bool, error)
}

func readWallets(r reader) ([]model.Wallet, error) {
	blob, _, err := r.GetString(store.NSWallet, store.KeyWallets)
	if err != nil {
		return nil, err
	}
	ws, res, err := source.DecodeWallets(blob)
	if err != nil {
		return nil, fmt.Errorf("reading wallets: %w", err)
	}
	if res.ParseErrors > 0 {
		log.Warn("skipped unreadable wallets", "count", res.ParseErrors)
	}
	return ws, nil
}

func writeWallets(tx *store.Tx, ws []model.Wallet) error {
	blob, err := source.EncodeWallets(ws)
	if err != nil {
		return err
	}
	return tx.PutString(store.NSWallet, store.KeyWallets, blob)
}

func readTransactions(r reader, wallet string) ([]model.Transaction, error) {
	blob, _, err := r.GetString(store.NSWallet, store.TransactionsKey(wallet))
	if err != nil {
		return nil, err
	}
	txs, res, err := source.DecodeTransactions(wallet, blob)
	if err != nil {
		return nil, fmt.Errorf("reading transactions of %q: %w", wallet, err)
	}
	if res.ParseErrors > 0 {
		log.Warn("skipped unreadable transactions", "wallet", wallet, "count", res.ParseErrors)
	}
	return txs, nil
}

func writeTransactions(tx *store.Tx, wallet string, txs []model.Transaction) error {
	blob, err := source.EncodeTransactions(txs)
	if err != nil {
		return err
	}
	return tx.PutString(store.NSWallet, store.TransactionsKey(wallet), blob)
}

func readMonthly(r reader) ([]model.MonthlyTransaction, error) {
	blob, _, err := r.GetString(store.NSWallet, store.KeyMonthly)
	if err != nil {
		return nil, err
	}
	ms, res, err := source.DecodeMonthly(blob)
	if err != nil {
		return nil, fmt.Errorf("reading monthly transactions: %w", err)
	}
	if res.ParseErrors > 0 {
		log.Warn("skipped unreadable monthly transactions", "count", res.ParseErrors)
	}
	return ms, nil
}

func writeMonthly(tx *store.Tx, ms []model.MonthlyTransaction) error {
	blob, err := source.EncodeMonthly(ms)
	if err != nil {
		return err
	}
	return tx.PutString(store.NSWallet, store.KeyMonthly, blob)
}

func walletIndex(ws []model.Wallet, name string) int {
	for i, w := range ws {
		if w.Name == name {
			return i
		}
	}
	return -1
}

// markChanged raises the flag pollers use to detect new data.
func (s *Service) markChanged(tx *store.Tx) error {
	if err := tx.PutBool(store.NSWallet, store.KeyDataChanged, true); err != nil {
		return err
	}
	return tx.PutInt64(store.NSWallet, store.KeyLastUpdate, s.now().UnixMilli())
}

// LastUpdate returns when transaction data last changed. Zero if never.
func (s *Service) LastUpdate() (time.Time, error) {
	ms, err := s.prefs.GetInt64(store.NSWallet, store.KeyLastUpdate, 0)
	if err != nil {
		return time.Time{}, err
	}
	return model.MillisTime(ms), nil
}

// Changed reports whether data changed since the last AckChanged.
func (s *Service) Changed() (bool, error) {
	return s.prefs.GetBool(store.NSWallet, store.KeyDataChanged, false)
}

// AckChanged clears the change flag after a consumer has refreshed.
func (s *Service) AckChanged() error {
	return s.prefs.PutBool(store.NSWallet, store.KeyDataChanged, false)
}

// checkBudgets runs after a committed mutation. Failures are logged because
// the mutation itself already succeeded.
func (s *Service) checkBudgets(ctx context.Context) {
	if s.alerter == nil {
		return
	}
	ws, err := readWallets(s.prefs)
	if err != nil {
		log.Warn("budget check skipped", "err", err)
		return
	}
	if err := s.alerter.CheckBudgets(ctx, ws); err != nil {
		log.Warn("budget check failed", "err", err)
	}
}
