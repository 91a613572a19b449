package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/pipeline"
)

var (
	flagDays         int
	flagFilterWallet string
)

// addWindowFlags registers the --days and --wallet flags shared by the
// report commands.
func addWindowFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&flagDays, "days", "n", 30, "Number of days to report on")
	cmd.Flags().StringVarP(&flagFilterWallet, "wallet", "w", "", "Only this wallet (default: all wallets)")
}

// applyFilters narrows txs to the requested wallet and the last flagDays
// days ending now. It returns the window bounds too.
func applyFilters(txs []model.Transaction, now time.Time) ([]model.Transaction, time.Time, time.Time) {
	if flagFilterWallet != "" {
		txs = pipeline.FilterByWallet(txs, flagFilterWallet)
	}
	days := flagDays
	if days < 1 {
		days = 1
	}
	until := now
	y, m, d := now.Date()
	since := time.Date(y, m, d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(days - 1))
	return txs, since, until
}
