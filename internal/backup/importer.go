package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/theirongolddev/fintrack/internal/auth"
	"github.com/theirongolddev/fintrack/internal/source"
	"github.com/theirongolddev/fintrack/internal/store"
)

// ImportResult counts what an import loaded.
type ImportResult struct {
	Files       int
	Imported    int
	Skipped     int
	ParseErrors int
}

// FindPrefsFiles resolves path to the preference files to import: a single
// XML file, or every known file in a shared_prefs directory.
func FindPrefsFiles(path string) ([]source.PrefsFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return source.ScanPrefsDir(path)
	}
	ns := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return []source.PrefsFile{{Path: path, Namespace: ns}}, nil
}

// ImportPrefs copies every entry of files into the store in one
// transaction. The monthly bookkeeping day is skipped so templates are
// re-evaluated locally, and a plain-text password is re-hashed.
func ImportPrefs(prefs *store.Store, files []source.PrefsFile) (ImportResult, error) {
	var res ImportResult
	var entries []source.PrefEntry
	for _, pf := range files {
		es, pr, err := source.ParsePrefsFile(pf)
		if err != nil {
			return res, err
		}
		res.Files++
		res.ParseErrors += pr.ParseErrors
		entries = append(entries, es...)
	}

	err := prefs.Update(func(tx *store.Tx) error {
		for _, e := range entries {
			if e.Namespace == store.NSWallet && e.Key == store.KeyLastProcessedDay {
				res.Skipped++
				continue
			}
			value := e.Value
			if e.Namespace == store.NSUser && e.Key == store.KeyUserPassword && !isBcrypt(value) {
				hash, err := auth.HashPassword(value)
				if err != nil {
					return err
				}
				value = hash
			}
			if err := tx.PutString(e.Namespace, e.Key, value); err != nil {
				return err
			}
			res.Imported++
		}
		if res.Imported == 0 {
			return nil
		}
		return tx.PutBool(store.NSWallet, store.KeyDataChanged, true)
	})
	if err != nil {
		return res, fmt.Errorf("importing preferences: %w", err)
	}
	log.Info("preferences imported", "files", res.Files, "entries", res.Imported, "skipped", res.Skipped, "errors", res.ParseErrors)
	return res, nil
}

func isBcrypt(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}
