// Package model defines the ledger records and the aggregate shapes derived from them.
package model

import "github.com/shopspring/decimal"

func init() {
	// Blobs store money as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

var hundred = decimal.NewFromInt(100)

// Wallet is a named budget envelope.
type Wallet struct {
	Name          string          `json:"name"`
	InitialAmount decimal.Decimal `json:"initialAmount"`
	Expenses      decimal.Decimal `json:"expenses"`
	Remaining     decimal.Decimal `json:"remaining"`
}

// NewWallet returns a wallet with nothing spent yet.
func NewWallet(name string, initial decimal.Decimal) Wallet {
	return Wallet{
		Name:          name,
		InitialAmount: initial,
		Expenses:      decimal.Zero,
		Remaining:     initial,
	}
}

// Apply books a transaction against the wallet.
func (w *Wallet) Apply(amount decimal.Decimal, isIncome bool) {
	if isIncome {
		w.Remaining = w.Remaining.Add(amount)
		return
	}
	w.Expenses = w.Expenses.Add(amount)
	w.Remaining = w.Remaining.Sub(amount)
}

// Revert undoes a previous Apply with the same arguments.
func (w *Wallet) Revert(amount decimal.Decimal, isIncome bool) {
	if isIncome {
		w.Remaining = w.Remaining.Sub(amount)
		return
	}
	w.Expenses = w.Expenses.Sub(amount)
	w.Remaining = w.Remaining.Add(amount)
}

// UsedPct is the share of the initial amount spent, truncated toward zero.
func (w Wallet) UsedPct() int {
	if !w.InitialAmount.IsPositive() {
		return 0
	}
	return int(w.Expenses.Div(w.InitialAmount).Mul(hundred).IntPart())
}

// RemainingPct is the share of the initial amount still available, truncated toward zero.
func (w Wallet) RemainingPct() int {
	if !w.InitialAmount.IsPositive() {
		return 0
	}
	return int(w.Remaining.Div(w.InitialAmount).Mul(hundred).IntPart())
}
