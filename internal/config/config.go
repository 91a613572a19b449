// Package config loads and saves the fintrack TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all fintrack configuration.
type Config struct {
	General       GeneralConfig       `toml:"general"`
	Thresholds    ThresholdsConfig    `toml:"thresholds"`
	Notifications NotificationsConfig `toml:"notifications"`
	Daemon        DaemonConfig        `toml:"daemon"`
	Appearance    AppearanceConfig    `toml:"appearance"`
	Email         EmailConfig         `toml:"email"`
	AMQP          AMQPConfig          `toml:"amqp"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DataDir  string `toml:"data_dir,omitempty"`
	Currency string `toml:"currency"`
}

// ThresholdsConfig holds the budget alert percentages.
type ThresholdsConfig struct {
	WarningPct    int `toml:"warning_pct"`
	ExceededPct   int `toml:"exceeded_pct"`
	LowBalancePct int `toml:"low_balance_pct"`
}

// NotificationsConfig controls reminders and the stored notification list.
type NotificationsConfig struct {
	RepeatAlerts bool   `toml:"repeat_alerts"`
	MaxStored    int    `toml:"max_stored"`
	ReminderTime string `toml:"reminder_time"`
	SummaryTime  string `toml:"summary_time"`
	BackupDay    int    `toml:"backup_day"`
	BackupTime   string `toml:"backup_time"`
}

// DaemonConfig holds background service settings.
type DaemonConfig struct {
	IntervalSeconds int    `toml:"interval_seconds"`
	Addr            string `toml:"addr"`
	EventsBuffer    int    `toml:"events_buffer"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// EmailConfig enables notification mail through Mailgun. The API key is
// read from the environment, never from this file.
type EmailConfig struct {
	Enabled   bool   `toml:"enabled"`
	Domain    string `toml:"domain,omitempty"`
	Sender    string `toml:"sender,omitempty"`
	Recipient string `toml:"recipient,omitempty"`
	PerMinute int    `toml:"per_minute"`
}

// AMQPConfig enables publishing notifications to a message broker. The
// broker URL is read from the environment.
type AMQPConfig struct {
	Enabled  bool   `toml:"enabled"`
	Exchange string `toml:"exchange"`
	Queue    string `toml:"queue"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Currency: "USD",
		},
		Thresholds: ThresholdsConfig{
			WarningPct:    80,
			ExceededPct:   100,
			LowBalancePct: 10,
		},
		Notifications: NotificationsConfig{
			MaxStored:    200,
			ReminderTime: "21:00",
			SummaryTime:  "23:00",
			BackupDay:    1,
			BackupTime:   "12:00",
		},
		Daemon: DaemonConfig{
			IntervalSeconds: 60,
			Addr:            "127.0.0.1:8789",
			EventsBuffer:    200,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Email: EmailConfig{
			PerMinute: 6,
		},
		AMQP: AMQPConfig{
			Exchange: "fintrack",
			Queue:    "fintrack.notifications",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fintrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fintrack")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns where the preference database and backups live:
// general.data_dir when set, else the XDG data directory.
func DataDir(cfg Config) string {
	if cfg.General.DataDir != "" {
		return cfg.General.DataDir
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "fintrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "fintrack")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// Validate checks values that would otherwise fail much later.
func (c Config) Validate() error {
	t := c.Thresholds
	if t.WarningPct <= 0 || t.ExceededPct <= t.WarningPct {
		return fmt.Errorf("thresholds: need 0 < warning_pct (%d) < exceeded_pct (%d)", t.WarningPct, t.ExceededPct)
	}
	if t.LowBalancePct < 0 || t.LowBalancePct > 100 {
		return fmt.Errorf("thresholds: low_balance_pct %d out of range", t.LowBalancePct)
	}
	n := c.Notifications
	for name, v := range map[string]string{
		"reminder_time": n.ReminderTime,
		"summary_time":  n.SummaryTime,
		"backup_time":   n.BackupTime,
	} {
		if _, _, err := ParseClock(v); err != nil {
			return fmt.Errorf("notifications.%s: %w", name, err)
		}
	}
	if n.BackupDay < 1 || n.BackupDay > 28 {
		return fmt.Errorf("notifications.backup_day %d must be within 1-28", n.BackupDay)
	}
	return nil
}

// ParseClock parses a "HH:MM" wall-clock time.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("bad clock time %q, want HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}
