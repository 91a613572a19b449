// Package backup writes and restores the JSON backup document, exports CSV
// and imports preference files from the mobile app.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/theirongolddev/fintrack/internal/store"
)

// ErrNoBackup is returned by Restore when the backup file does not exist.
var ErrNoBackup = errors.New("no backup found")

// FileName is the backup written into the data directory by default.
const FileName = "user_backup.json"

// DefaultPath returns the backup location inside dataDir.
func DefaultPath(dataDir string) string {
	return filepath.Join(dataDir, FileName)
}

// Document is the on-disk backup. Transactions holds the whole wallet
// namespace as a JSON object string of key to value.
type Document struct {
	UserEmail            string    `json:"user_email"`
	ProfileImage         string    `json:"profile_image,omitempty"`
	NotificationsEnabled *bool     `json:"notifications_enabled,omitempty"`
	Transactions         string    `json:"transactions,omitempty"`
	Notifications        string    `json:"notifications,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// Summary reports what a backup or restore covered.
type Summary struct {
	Path       string
	WalletKeys int
}

// Backup writes the current account, profile, wallet data and notifications
// to path.
func Backup(prefs *store.Store, path string) (Summary, error) {
	sum := Summary{Path: path}

	doc := Document{CreatedAt: time.Now()}
	var err error
	if doc.UserEmail, _, err = prefs.GetString(store.NSUser, store.KeyUserEmail); err != nil {
		return sum, err
	}
	if doc.ProfileImage, _, err = prefs.GetString(store.NSProfile, store.KeyProfileImage); err != nil {
		return sum, err
	}
	enabled, err := prefs.GetBool(store.NSProfile, store.KeyNotificationsEnabled, true)
	if err != nil {
		return sum, err
	}
	doc.NotificationsEnabled = &enabled

	walletPrefs, err := prefs.All(store.NSWallet)
	if err != nil {
		return sum, err
	}
	blob, err := json.Marshal(walletPrefs)
	if err != nil {
		return sum, fmt.Errorf("encoding wallet data: %w", err)
	}
	doc.Transactions = string(blob)
	sum.WalletKeys = len(walletPrefs)

	if doc.Notifications, _, err = prefs.GetString(store.NSNotification, store.KeyNotifications); err != nil {
		return sum, err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return sum, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return sum, fmt.Errorf("creating backup dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return sum, fmt.Errorf("writing backup: %w", err)
	}
	log.Info("backup written", "path", path, "keys", sum.WalletKeys)
	return sum, nil
}

// Restore loads the backup at path. The wallet namespace is replaced as a
// whole; account and profile values are overwritten only when present.
func Restore(prefs *store.Store, path string) (Summary, error) {
	sum := Summary{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return sum, ErrNoBackup
		}
		return sum, fmt.Errorf("reading backup: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return sum, fmt.Errorf("parsing backup: %w", err)
	}

	var walletPrefs map[string]string
	if doc.Transactions != "" {
		if err := json.Unmarshal([]byte(doc.Transactions), &walletPrefs); err != nil {
			return sum, fmt.Errorf("parsing backup wallet data: %w", err)
		}
	}

	err = prefs.Update(func(tx *store.Tx) error {
		if doc.UserEmail != "" {
			if err := tx.PutString(store.NSUser, store.KeyUserEmail, doc.UserEmail); err != nil {
				return err
			}
		}
		if doc.ProfileImage != "" {
			if err := tx.PutString(store.NSProfile, store.KeyProfileImage, doc.ProfileImage); err != nil {
				return err
			}
		}
		if doc.NotificationsEnabled != nil {
			if err := tx.PutBool(store.NSProfile, store.KeyNotificationsEnabled, *doc.NotificationsEnabled); err != nil {
				return err
			}
		}
		if walletPrefs != nil {
			if err := tx.Clear(store.NSWallet); err != nil {
				return err
			}
			for k, v := range walletPrefs {
				if err := tx.PutString(store.NSWallet, k, v); err != nil {
					return err
				}
			}
			if err := tx.PutBool(store.NSWallet, store.KeyDataChanged, true); err != nil {
				return err
			}
			if err := tx.PutInt64(store.NSWallet, store.KeyLastUpdate, time.Now().UnixMilli()); err != nil {
				return err
			}
		}
		if doc.Notifications != "" {
			return tx.PutString(store.NSNotification, store.KeyNotifications, doc.Notifications)
		}
		return nil
	})
	if err != nil {
		return sum, fmt.Errorf("restoring backup: %w", err)
	}
	sum.WalletKeys = len(walletPrefs)
	log.Info("backup restored", "path", path, "keys", sum.WalletKeys)
	return sum, nil
}
