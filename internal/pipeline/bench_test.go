package pipeline

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/source"
	"github.com/theirongolddev/fintrack/internal/store"
)

// seedStore writes wallets with perWallet transactions each.
func seedStore(tb testing.TB, wallets, perWallet int) *store.Store {
	tb.Helper()
	s, err := store.Open(filepath.Join(tb.TempDir(), "prefs.db"))
	if err != nil {
		tb.Fatal(err)
	}
	tb.Cleanup(func() { _ = s.Close() })

	base := time.Date(2025, 1, 1, 8, 0, 0, 0, time.Local)
	var ws []model.Wallet
	for w := 0; w < wallets; w++ {
		name := fmt.Sprintf("wallet-%02d", w)
		ws = append(ws, model.NewWallet(name, decimal.NewFromInt(1000)))

		txs := make([]model.Transaction, 0, perWallet)
		for i := 0; i < perWallet; i++ {
			at := base.Add(time.Duration(i) * time.Hour)
			txs = append(txs, model.Transaction{
				Name:      fmt.Sprintf("tx-%d", i),
				Amount:    decimal.NewFromInt(int64(i%50 + 1)),
				IsIncome:  i%7 == 0,
				Category:  model.Categories[i%len(model.Categories)],
				Date:      source.FormatDate(at),
				Timestamp: at.UnixMilli(),
			})
		}
		blob, err := source.EncodeTransactions(txs)
		if err != nil {
			tb.Fatal(err)
		}
		if err := s.PutString(store.NSWallet, store.TransactionsKey(name), blob); err != nil {
			tb.Fatal(err)
		}
	}
	blob, err := source.EncodeWallets(ws)
	if err != nil {
		tb.Fatal(err)
	}
	if err := s.PutString(store.NSWallet, store.KeyWallets, blob); err != nil {
		tb.Fatal(err)
	}
	return s
}

func BenchmarkLoadAll(b *testing.B) {
	s := seedStore(b, 8, 2000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		result, err := LoadAll(s, nil)
		if err != nil {
			b.Fatal(err)
		}
		_ = result
	}
}

func BenchmarkAnalyze(b *testing.B) {
	s := seedStore(b, 8, 2000)
	result, err := LoadAll(s, nil)
	if err != nil {
		b.Fatal(err)
	}
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.Local)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Analyze(result.All, model.Range{Period: model.PeriodMonthly}, now)
	}
}
