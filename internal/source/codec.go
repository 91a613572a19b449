// Package source decodes and encodes the JSON blobs kept in the preference
// store, and reads preference exports from the original mobile app.
package source

import (
	"encoding/json"
	"fmt"

	"github.com/theirongolddev/fintrack/internal/model"
)

// ParseResult reports how much of a blob was usable.
type ParseResult struct {
	Total       int
	ParseErrors int
}

// decodeList decodes a JSON array one element at a time. Elements that fail
// to decode or that keep rejects are skipped and counted. A blob that is not
// an array at all is an error, so callers never mistake corruption for an
// empty list and overwrite it.
func decodeList[T any](blob string, keep func(*T) bool) ([]T, ParseResult, error) {
	var res ParseResult
	if blob == "" {
		return nil, res, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(blob), &raw); err != nil {
		return nil, res, fmt.Errorf("decoding list: %w", err)
	}

	res.Total = len(raw)
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			res.ParseErrors++
			continue
		}
		if keep != nil && !keep(&v) {
			res.ParseErrors++
			continue
		}
		out = append(out, v)
	}
	return out, res, nil
}

func encodeList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeWallets parses the "wallets" blob.
func DecodeWallets(blob string) ([]model.Wallet, ParseResult, error) {
	return decodeList(blob, func(w *model.Wallet) bool {
		return w.Name != ""
	})
}

// EncodeWallets serializes wallets for the "wallets" key.
func EncodeWallets(ws []model.Wallet) (string, error) {
	return encodeList(ws)
}

// DecodeTransactions parses a "transactions_<wallet>" blob and tags every
// entry with its wallet and resolved time.
func DecodeTransactions(wallet, blob string) ([]model.Transaction, ParseResult, error) {
	return decodeList(blob, func(t *model.Transaction) bool {
		if t.Name == "" || t.Date == "" {
			return false
		}
		t.Wallet = wallet
		t.At = ResolveTime(*t)
		return true
	})
}

// EncodeTransactions serializes a wallet's transactions.
func EncodeTransactions(txs []model.Transaction) (string, error) {
	return encodeList(txs)
}

// DecodeMonthly parses the "monthly_transactions" blob.
func DecodeMonthly(blob string) ([]model.MonthlyTransaction, ParseResult, error) {
	return decodeList(blob, func(m *model.MonthlyTransaction) bool {
		return m.Name != "" && m.Wallet != "" && m.DayOfMonth >= 1 && m.DayOfMonth <= 31
	})
}

// EncodeMonthly serializes monthly templates.
func EncodeMonthly(ms []model.MonthlyTransaction) (string, error) {
	return encodeList(ms)
}

// DecodeNotifications parses the "notifications" blob.
func DecodeNotifications(blob string) ([]model.Notification, ParseResult, error) {
	return decodeList(blob, func(n *model.Notification) bool {
		return n.Title != ""
	})
}

// EncodeNotifications serializes notifications.
func EncodeNotifications(ns []model.Notification) (string, error) {
	return encodeList(ns)
}
