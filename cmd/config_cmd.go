// Package cmd implements the fintrack CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Data directory: %s\n", dataDir())
	fmt.Printf("    Currency:       %s\n", cfg.General.Currency)
	fmt.Println()

	fmt.Println("  [Thresholds]")
	fmt.Printf("    Warning:     %d%% used\n", cfg.Thresholds.WarningPct)
	fmt.Printf("    Exceeded:    %d%% used\n", cfg.Thresholds.ExceededPct)
	fmt.Printf("    Low balance: below %d%% remaining\n", cfg.Thresholds.LowBalancePct)
	fmt.Println()

	n := cfg.Notifications
	fmt.Println("  [Notifications]")
	fmt.Printf("    Repeat alerts:   %v\n", n.RepeatAlerts)
	fmt.Printf("    Max stored:      %d\n", n.MaxStored)
	fmt.Printf("    Daily reminder:  %s\n", n.ReminderTime)
	fmt.Printf("    Daily summary:   %s\n", n.SummaryTime)
	fmt.Printf("    Backup reminder: day %d at %s\n", n.BackupDay, n.BackupTime)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval: %ds\n", cfg.Daemon.IntervalSeconds)
	fmt.Printf("    Events:   %d\n", cfg.Daemon.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Email]")
	if cfg.Email.Enabled {
		fmt.Printf("    Domain:    %s\n", cfg.Email.Domain)
		fmt.Printf("    Sender:    %s\n", cfg.Email.Sender)
		fmt.Printf("    Recipient: %s\n", cfg.Email.Recipient)
		fmt.Printf("    Limit:     %d/min\n", cfg.Email.PerMinute)
		if key := config.MailgunKey(); key != "" {
			fmt.Printf("    API key:   %s\n", maskSecret(key))
		} else {
			fmt.Printf("    API key:   not set (export %s)\n", config.EnvMailgunKey)
		}
	} else {
		fmt.Println("    Disabled")
	}
	fmt.Println()

	fmt.Println("  [AMQP]")
	if cfg.AMQP.Enabled {
		fmt.Printf("    Exchange: %s\n", cfg.AMQP.Exchange)
		fmt.Printf("    Queue:    %s\n", cfg.AMQP.Queue)
		if url := config.AMQPURL(); url != "" {
			fmt.Printf("    URL:      %s\n", maskSecret(url))
		} else {
			fmt.Printf("    URL:      not set (export %s)\n", config.EnvAMQPURL)
		}
	} else {
		fmt.Println("    Disabled")
	}
	fmt.Println()

	fmt.Println("  Run `fintrack setup` to reconfigure.")
	return nil
}

func maskSecret(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}
