package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/store"
)

// Budget alert levels.
const (
	levelWarning  = "warning"
	levelExceeded = "exceeded"
)

// alertState remembers the last alerts raised for one wallet.
type alertState struct {
	Level string `json:"level,omitempty"`
	Low   bool   `json:"low,omitempty"`
}

// WalletAdded publishes the new-wallet confirmation.
func (c *Center) WalletAdded(ctx context.Context, name string) error {
	_, _, err := c.Publish(ctx, WalletAddedMessage(name))
	return err
}

// CheckBudgets raises warning, exceeded and low-balance alerts for wallets.
// Wallets without a positive initial amount are skipped. Unless repeat
// alerts are configured, an alert is raised once per crossing: a wallet must
// drop back below a level before that level alerts again. Alerts suppressed
// while notifications are off are not recorded, so they fire once
// notifications are back on.
func (c *Center) CheckBudgets(ctx context.Context, wallets []model.Wallet) error {
	cfg := c.config()
	th := cfg.Thresholds
	repeat := cfg.Notifications.RepeatAlerts

	prev, err := c.loadAlertState()
	if err != nil {
		return err
	}
	next := make(map[string]alertState, len(wallets))

	var pubErr error
	publish := func(msg Message) bool {
		if pubErr != nil {
			return false
		}
		_, ok, err := c.Publish(ctx, msg)
		if err != nil {
			pubErr = err
		}
		return ok
	}

	for _, w := range wallets {
		if !w.InitialAmount.IsPositive() {
			continue
		}
		used := w.UsedPct()
		remaining := w.RemainingPct()
		old := prev[w.Name]
		var st alertState

		var level string
		var msg Message
		switch {
		case used >= th.ExceededPct:
			level, msg = levelExceeded, BudgetExceeded(w.Name, used)
		case used >= th.WarningPct:
			level, msg = levelWarning, BudgetWarning(w.Name, used)
		}
		if level != "" {
			switch {
			case !repeat && old.Level == level:
				st.Level = level
			case publish(msg):
				st.Level = level
			case levelRank(old.Level) <= levelRank(level):
				st.Level = old.Level
			}
		}

		if remaining < th.LowBalancePct {
			if !repeat && old.Low {
				st.Low = true
			} else {
				st.Low = publish(LowBalance(w.Name, remaining))
			}
		}

		if st != (alertState{}) {
			next[w.Name] = st
		}
	}

	if err := c.saveAlertState(next); err != nil {
		return err
	}
	return pubErr
}

func levelRank(level string) int {
	switch level {
	case levelWarning:
		return 1
	case levelExceeded:
		return 2
	}
	return 0
}

func (c *Center) loadAlertState() (map[string]alertState, error) {
	blob, ok, err := c.prefs.GetString(store.NSNotification, store.KeyAlertState)
	if err != nil || !ok || blob == "" {
		return map[string]alertState{}, err
	}
	st := map[string]alertState{}
	if err := json.Unmarshal([]byte(blob), &st); err != nil {
		return nil, fmt.Errorf("reading budget alert state: %w", err)
	}
	return st, nil
}

func (c *Center) saveAlertState(st map[string]alertState) error {
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return c.prefs.PutString(store.NSNotification, store.KeyAlertState, string(b))
}

// ResetAlerts forgets which budget alerts were raised.
func (c *Center) ResetAlerts() error {
	return c.prefs.Remove(store.NSNotification, store.KeyAlertState)
}
