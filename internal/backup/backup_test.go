package backup

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/carlmjohnson/be"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/fintrack/internal/auth"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "prefs.db"))
	be.NilErr(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	src := openStore(t)
	be.NilErr(t, src.PutString(store.NSUser, store.KeyUserEmail, "me@example.com"))
	be.NilErr(t, src.PutBool(store.NSProfile, store.KeyNotificationsEnabled, false))
	be.NilErr(t, src.PutString(store.NSWallet, store.KeyWallets, `[{"name":"Food","initialAmount":100,"expenses":0,"remaining":100}]`))
	be.NilErr(t, src.PutString(store.NSWallet, store.TransactionsKey("Food"), `[]`))
	be.NilErr(t, src.PutString(store.NSNotification, store.KeyNotifications, `[{"id":1,"title":"t","message":"m","timestamp":1,"isRead":false}]`))

	path := DefaultPath(t.TempDir())
	sum, err := Backup(src, path)
	be.NilErr(t, err)
	be.Equal(t, 2, sum.WalletKeys)

	dst := openStore(t)
	be.NilErr(t, dst.PutString(store.NSWallet, "transactions_Stale", `[]`))

	sum, err = Restore(dst, path)
	be.NilErr(t, err)
	be.Equal(t, 2, sum.WalletKeys)

	email, _, _ := dst.GetString(store.NSUser, store.KeyUserEmail)
	be.Equal(t, "me@example.com", email)
	on, _ := dst.GetBool(store.NSProfile, store.KeyNotificationsEnabled, true)
	be.False(t, on)

	_, ok, _ := dst.GetString(store.NSWallet, "transactions_Stale")
	be.False(t, ok)
	wallets, _, _ := dst.GetString(store.NSWallet, store.KeyWallets)
	be.True(t, strings.Contains(wallets, `"Food"`))
	notes, _, _ := dst.GetString(store.NSNotification, store.KeyNotifications)
	be.True(t, strings.Contains(notes, `"title":"t"`))
	changed, _ := dst.GetBool(store.NSWallet, store.KeyDataChanged, false)
	be.True(t, changed)
}

func TestRestoreMissing(t *testing.T) {
	_, err := Restore(openStore(t), filepath.Join(t.TempDir(), FileName))
	be.True(t, errors.Is(err, ErrNoBackup))
}

func TestRestoreKeepsAbsentFields(t *testing.T) {
	dst := openStore(t)
	be.NilErr(t, dst.PutString(store.NSUser, store.KeyUserEmail, "keep@example.com"))
	be.NilErr(t, dst.PutString(store.NSWallet, store.KeyWallets, `[]`))

	path := filepath.Join(t.TempDir(), FileName)
	be.NilErr(t, os.WriteFile(path, []byte(`{"created_at":"2025-01-01T00:00:00Z"}`), 0o600))

	_, err := Restore(dst, path)
	be.NilErr(t, err)
	email, _, _ := dst.GetString(store.NSUser, store.KeyUserEmail)
	be.Equal(t, "keep@example.com", email)
	_, ok, _ := dst.GetString(store.NSWallet, store.KeyWallets)
	be.True(t, ok)
}

func TestExportCSV(t *testing.T) {
	txs := []model.Transaction{
		{Name: `Say "hi", lunch`, Amount: decimal.RequireFromString("12.5"), Category: "Food", Date: "2025-03-10 13:45"},
		{Name: "Salary", Amount: decimal.NewFromInt(1000), IsIncome: true, Category: "Savings", Date: "someday"},
	}
	var buf bytes.Buffer
	be.NilErr(t, ExportCSV(&buf, txs))

	want := CSVHeader + "\n" +
		`"Say ""hi"", lunch",12.5,Expense,Food,2025-03-10,13:45:00` + "\n" +
		`"Salary",1000,Income,Savings,someday,` + "\n"
	be.Equal(t, want, buf.String())
}

func TestImportPrefs(t *testing.T) {
	dir := t.TempDir()
	walletXML := `<?xml version='1.0' encoding='utf-8' standalone='yes' ?>
<map>
    <string name="wallets">[{&quot;name&quot;:&quot;Food&quot;,&quot;initialAmount&quot;:100.0,&quot;expenses&quot;:0.0,&quot;remaining&quot;:100.0}]</string>
    <string name="last_processed_day">2025-03-01</string>
    <long name="last_transaction_update" value="1700000000000" />
</map>`
	userXML := `<?xml version='1.0' encoding='utf-8' standalone='yes' ?>
<map>
    <string name="user_email">me@example.com</string>
    <string name="user_password">secret</string>
    <boolean name="is_logged_in" value="true" />
</map>`
	be.NilErr(t, os.WriteFile(filepath.Join(dir, "wallet_prefs.xml"), []byte(walletXML), 0o600))
	be.NilErr(t, os.WriteFile(filepath.Join(dir, "user_prefs.xml"), []byte(userXML), 0o600))

	files, err := FindPrefsFiles(dir)
	be.NilErr(t, err)
	be.Equal(t, 2, len(files))

	prefs := openStore(t)
	res, err := ImportPrefs(prefs, files)
	be.NilErr(t, err)
	be.Equal(t, 2, res.Files)
	be.Equal(t, 5, res.Imported)
	be.Equal(t, 1, res.Skipped)

	_, ok, _ := prefs.GetString(store.NSWallet, store.KeyLastProcessedDay)
	be.False(t, ok)
	last, _ := prefs.GetInt64(store.NSWallet, store.KeyLastUpdate, 0)
	be.Equal(t, int64(1700000000000), last)

	be.NilErr(t, auth.New(prefs).Verify("me@example.com", "secret"))
}
