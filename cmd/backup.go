package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/backup"
	"github.com/theirongolddev/fintrack/internal/cli"
)

var (
	flagRestoreYes   bool
	flagExportOut    string
	flagExportWallet string
)

var backupCmd = &cobra.Command{
	Use:   "backup [file]",
	Short: "Write account, wallets and notifications to a JSON backup",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBackup,
}

var restoreCmd = &cobra.Command{
	Use:   "restore [file]",
	Short: "Replace all wallet data with a JSON backup",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRestore,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export transactions",
}

var exportCSVCmd = &cobra.Command{
	Use:   "csv",
	Short: "Export transactions as CSV",
	RunE:  runExportCSV,
}

var importCmd = &cobra.Command{
	Use:   "import <dir|file.xml>",
	Short: "Import data from the mobile app's shared_prefs XML files",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	restoreCmd.Flags().BoolVarP(&flagRestoreYes, "yes", "y", false, "Skip the confirmation")
	exportCSVCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "Output file (default: stdout)")
	exportCSVCmd.Flags().StringVarP(&flagExportWallet, "wallet", "w", "", "Only this wallet (default: all wallets)")

	exportCmd.AddCommand(exportCSVCmd)
	rootCmd.AddCommand(backupCmd, restoreCmd, exportCmd, importCmd)
}

func backupPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return backup.DefaultPath(dataDir())
}

// openRestoreTarget allows writing into a store that has no account yet,
// since a restore or import brings the account along.
func openRestoreTarget() (*app, error) {
	a, err := openApp()
	if err != nil {
		return nil, err
	}
	has, err := a.accounts.HasAccount()
	if err != nil {
		a.Close()
		return nil, err
	}
	if !has {
		return a, nil
	}
	a.Close()
	return openSession()
}

func runBackup(_ *cobra.Command, args []string) error {
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	sum, err := backup.Backup(a.prefs, backupPath(args))
	if err != nil {
		return err
	}
	fmt.Printf("  Backed up %d wallet entries to %s\n", sum.WalletKeys, sum.Path)
	return nil
}

func runRestore(_ *cobra.Command, args []string) error {
	a, err := openRestoreTarget()
	if err != nil {
		return err
	}
	defer a.Close()

	path := backupPath(args)
	ok, err := confirm(fmt.Sprintf("Replace all wallet data with %s?", path), flagRestoreYes)
	if err != nil || !ok {
		return err
	}
	sum, err := backup.Restore(a.prefs, path)
	if err != nil {
		return err
	}
	fmt.Printf("  Restored %d wallet entries from %s\n", sum.WalletKeys, sum.Path)
	return nil
}

func runExportCSV(_ *cobra.Command, _ []string) error {
	a, err := openSession()
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.load()
	if err != nil {
		return err
	}
	if flagExportWallet != "" {
		if _, err := a.ledger.Wallet(flagExportWallet); err != nil {
			return err
		}
	}
	txs := result.Transactions(flagExportWallet)

	var out io.Writer = os.Stdout
	if flagExportOut != "" {
		f, err := os.Create(flagExportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if err := backup.ExportCSV(out, txs); err != nil {
		return err
	}
	if flagExportOut != "" {
		fmt.Fprintf(os.Stderr, "  Exported %s transactions to %s\n", cli.FormatNumber(int64(len(txs))), flagExportOut)
	}
	return nil
}

func runImport(_ *cobra.Command, args []string) error {
	files, err := backup.FindPrefsFiles(args[0])
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no shared_prefs files found in %s", args[0])
	}
	a, err := openRestoreTarget()
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := backup.ImportPrefs(a.prefs, files)
	if err != nil {
		return err
	}
	fmt.Printf("  Imported %d entries from %d file(s)\n", res.Imported, res.Files)
	if res.Skipped > 0 {
		fmt.Printf("  %s\n", cli.Muted(fmt.Sprintf("Skipped %d entries", res.Skipped)))
	}
	if res.ParseErrors > 0 {
		fmt.Printf("  %s\n", cli.Warn(fmt.Sprintf("%d entries could not be read", res.ParseErrors)))
	}
	return nil
}
