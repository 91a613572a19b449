package notify

import (
	"context"

	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/pipeline"
)

// DailyReminder publishes the evening logging reminder.
func (c *Center) DailyReminder(ctx context.Context) (model.Notification, error) {
	n, _, err := c.Publish(ctx, DailyReminderMessage())
	return n, err
}

// BackupReminder publishes the monthly backup reminder.
func (c *Center) BackupReminder(ctx context.Context) (model.Notification, error) {
	n, _, err := c.Publish(ctx, BackupReminderMessage())
	return n, err
}

// DailySummary publishes today's totals across all wallets.
func (c *Center) DailySummary(ctx context.Context, txs []model.Transaction) (model.Notification, error) {
	ds := pipeline.DaySummary(txs, c.now())
	n, _, err := c.Publish(ctx, DailySummaryMessage(ds))
	return n, err
}
