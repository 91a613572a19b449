package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/fintrack/internal/model"
)

func TestDecodeTransactions_SkipsBadElements(t *testing.T) {
	blob := `[
		{"name":"Coffee","amount":3.5,"isIncome":false,"category":"Food","date":"2025-06-01 08:15","timestamp":1748765700000},
		{"name":"","amount":1,"isIncome":false,"category":"Food","date":"2025-06-01 09:00"},
		"not an object",
		{"name":"Salary","amount":"2500","isIncome":true,"category":"Savings","date":"2025-06-02"}
	]`

	txs, res, err := DecodeTransactions("Daily", blob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 4 {
		t.Errorf("Total = %d, want 4", res.Total)
	}
	if res.ParseErrors != 2 {
		t.Errorf("ParseErrors = %d, want 2", res.ParseErrors)
	}
	if len(txs) != 2 {
		t.Fatalf("len(txs) = %d, want 2", len(txs))
	}

	if txs[0].Wallet != "Daily" {
		t.Errorf("Wallet = %q, want Daily", txs[0].Wallet)
	}
	if !txs[0].Amount.Equal(decimal.RequireFromString("3.5")) {
		t.Errorf("Amount = %s, want 3.5", txs[0].Amount)
	}
	want := time.Date(2025, 6, 1, 8, 15, 0, 0, time.Local)
	if !txs[0].At.Equal(want) {
		t.Errorf("At = %v, want %v", txs[0].At, want)
	}

	// Legacy date-only entries resolve to midnight.
	if txs[1].At.Hour() != 0 || txs[1].At.Day() != 2 {
		t.Errorf("legacy At = %v, want 2025-06-02 00:00", txs[1].At)
	}
}

func TestDecodeTransactions_MalformedBlob(t *testing.T) {
	_, _, err := DecodeTransactions("Daily", `{"name":"oops"}`)
	if err == nil {
		t.Fatal("expected error for non-array blob")
	}
}

func TestDecodeEmptyBlob(t *testing.T) {
	ws, res, err := DecodeWallets("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ws) != 0 || res.Total != 0 {
		t.Errorf("got %d wallets, total %d; want none", len(ws), res.Total)
	}
}

func TestEncodeWallets_NumbersNotStrings(t *testing.T) {
	blob, err := EncodeWallets([]model.Wallet{
		model.NewWallet("Food", decimal.RequireFromString("250.75")),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(blob, `"initialAmount":250.75`) {
		t.Errorf("blob = %s, want unquoted initialAmount", blob)
	}

	empty, _ := EncodeWallets(nil)
	if empty != "[]" {
		t.Errorf("EncodeWallets(nil) = %s, want []", empty)
	}
}

func TestDecodeMonthly_DayRange(t *testing.T) {
	blob := `[
		{"name":"Rent","amount":900,"isIncome":false,"category":"Essentials","wallet":"Home","dayOfMonth":1,"isActive":true,"createdAt":1},
		{"name":"Bad","amount":1,"isIncome":false,"category":"Food","wallet":"Home","dayOfMonth":32,"isActive":true,"createdAt":1}
	]`
	ms, res, err := DecodeMonthly(blob)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ms) != 1 || res.ParseErrors != 1 {
		t.Errorf("got %d templates, %d errors; want 1, 1", len(ms), res.ParseErrors)
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2025-13-40 99:99"); err == nil {
		t.Error("expected error for invalid date")
	}
	got, err := ParseDate("2025-01-31 23:59")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if FormatDate(got) != "2025-01-31 23:59" {
		t.Errorf("round trip = %q", FormatDate(got))
	}
}

func TestResolveTime_FallsBackToTimestamp(t *testing.T) {
	tx := model.Transaction{Date: "yesterday-ish", Timestamp: 1700000000000}
	if got := ResolveTime(tx); !got.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("ResolveTime = %v", got)
	}
	if got := ResolveTime(model.Transaction{Date: "?"}); !got.IsZero() {
		t.Errorf("ResolveTime = %v, want zero", got)
	}
}

func TestScanAndParsePrefs(t *testing.T) {
	dir := t.TempDir()
	walletXML := `<?xml version='1.0' encoding='utf-8' standalone='yes' ?>
<map>
    <string name="wallets">[{&quot;name&quot;:&quot;Food&quot;,&quot;initialAmount&quot;:100.0,&quot;expenses&quot;:0.0,&quot;remaining&quot;:100.0}]</string>
    <int name="last_processed_day" value="5" />
    <boolean name="transaction_data_changed" value="true" />
    <long name="last_transaction_update" value="1700000000000" />
    <set name="ignored" />
</map>`
	if err := os.WriteFile(filepath.Join(dir, "wallet_prefs.xml"), []byte(walletXML), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "other_app.xml"), []byte("<map/>"), 0o600); err != nil {
		t.Fatal(err)
	}

	files, err := ScanPrefsDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 || files[0].Namespace != "wallet_prefs" {
		t.Fatalf("files = %+v, want only wallet_prefs", files)
	}

	entries, res, err := ParsePrefsFile(files[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("len(entries) = %d, want 4", len(entries))
	}
	if res.ParseErrors != 1 {
		t.Errorf("ParseErrors = %d, want 1", res.ParseErrors)
	}

	ws, _, err := DecodeWallets(entries[0].Value)
	if err != nil || len(ws) != 1 || ws[0].Name != "Food" {
		t.Errorf("wallets from xml = %+v, %v", ws, err)
	}
	if entries[2].Type != "boolean" || entries[2].Value != "true" {
		t.Errorf("entry[2] = %+v", entries[2])
	}
}

func TestScanPrefsDir_Missing(t *testing.T) {
	files, err := ScanPrefsDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil || files != nil {
		t.Errorf("ScanPrefsDir(missing) = %v, %v; want nil, nil", files, err)
	}
}
