package pipeline

import (
	"fmt"
	"runtime"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/source"
	"github.com/theirongolddev/fintrack/internal/store"
)

// BlobReader reads raw preference values. *store.Store satisfies it.
type BlobReader interface {
	GetString(ns, key string) (string, bool, error)
}

// LoadResult holds every wallet and its decoded transactions.
type LoadResult struct {
	Wallets     []model.Wallet
	ByWallet    map[string][]model.Transaction
	All         []model.Transaction
	ParseErrors int
}

// Transactions returns the loaded transactions of one wallet, or all of
// them when wallet is empty.
func (r *LoadResult) Transactions(wallet string) []model.Transaction {
	if wallet == "" {
		return r.All
	}
	return r.ByWallet[wallet]
}

// ProgressFunc is called during loading to report progress.
// current is the number of wallets decoded so far, total is the wallet count.
type ProgressFunc func(current, total int)

// LoadAll decodes the wallet list and then every wallet's transactions in
// parallel with a bounded worker pool. All is sorted newest first.
func LoadAll(r BlobReader, progressFn ProgressFunc) (*LoadResult, error) {
	blob, _, err := r.GetString(store.NSWallet, store.KeyWallets)
	if err != nil {
		return nil, err
	}
	wallets, wres, err := source.DecodeWallets(blob)
	if err != nil {
		return nil, fmt.Errorf("decoding wallets: %w", err)
	}

	result := &LoadResult{
		Wallets:     wallets,
		ByWallet:    make(map[string][]model.Transaction, len(wallets)),
		ParseErrors: wres.ParseErrors,
	}
	if len(wallets) == 0 {
		return result, nil
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > len(wallets) {
		numWorkers = len(wallets)
	}

	type decoded struct {
		txs []model.Transaction
		res source.ParseResult
	}
	results := make([]decoded, len(wallets))
	var processed atomic.Int64

	var g errgroup.Group
	g.SetLimit(numWorkers)
	for i, w := range wallets {
		g.Go(func() error {
			blob, _, err := r.GetString(store.NSWallet, store.TransactionsKey(w.Name))
			if err != nil {
				return err
			}
			txs, res, err := source.DecodeTransactions(w.Name, blob)
			if err != nil {
				return fmt.Errorf("decoding transactions of %q: %w", w.Name, err)
			}
			results[i] = decoded{txs: txs, res: res}
			n := processed.Add(1)
			if progressFn != nil {
				progressFn(int(n), len(wallets))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, w := range wallets {
		d := results[i]
		result.ByWallet[w.Name] = d.txs
		result.All = append(result.All, d.txs...)
		result.ParseErrors += d.res.ParseErrors
	}
	SortNewestFirst(result.All)
	for _, txs := range result.ByWallet {
		SortNewestFirst(txs)
	}
	return result, nil
}

// SortNewestFirst orders transactions by time, most recent first.
func SortNewestFirst(txs []model.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].At.After(txs[j].At)
	})
}
