package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/fintrack/internal/auth"
	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/notify"
	"github.com/theirongolddev/fintrack/internal/pipeline"
	"github.com/theirongolddev/fintrack/internal/store"
)

var (
	flagDataDir string
	flagDebug   bool
	flagQuiet   bool

	// cfg is loaded once before any command runs.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "fintrack",
	Short: "Personal finance tracker",
	Long:  "Track wallets, income and expenses, recurring monthly bookings and budget alerts from the terminal.",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		switch {
		case flagDebug:
			log.SetLevel(log.DebugLevel)
		case flagQuiet:
			log.SetLevel(log.WarnLevel)
		default:
			log.SetLevel(log.InfoLevel)
		}

		if err := config.LoadEnv(); err != nil {
			log.Warn("reading .env failed", "path", config.EnvPath(), "err", err)
		}
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		if err := cli.SetCurrency(cfg.General.Currency); err != nil {
			return err
		}
		return nil
	},
	RunE: runTUI,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Data directory (default: general.data_dir or $XDG_DATA_HOME/fintrack)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only log warnings and errors")
}

// dataDir resolves where the database and backups live.
func dataDir() string {
	if flagDataDir != "" {
		return flagDataDir
	}
	return config.DataDir(cfg)
}

func dbPath() string {
	return filepath.Join(dataDir(), "fintrack.db")
}

// app bundles the services every command works with.
type app struct {
	prefs    *store.Store
	ledger   *ledger.Service
	center   *notify.Center
	accounts *auth.Accounts

	closeSinks func()
}

// openApp opens the store and wires the ledger to the notification center
// and its configured delivery sinks.
func openApp() (*app, error) {
	if err := os.MkdirAll(dataDir(), 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	prefs, err := store.Open(dbPath())
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	sinks, closeSinks := notify.ConfiguredSinks(cfg)
	center := notify.New(prefs, cfg, notify.WithSinks(sinks...))
	return &app{
		prefs:      prefs,
		ledger:     ledger.New(prefs, ledger.WithAlerter(center)),
		center:     center,
		accounts:   auth.New(prefs),
		closeSinks: closeSinks,
	}, nil
}

// openSession is openApp for commands that need a logged-in account.
func openSession() (*app, error) {
	a, err := openApp()
	if err != nil {
		return nil, err
	}
	if err := a.accounts.RequireLogin(); err != nil {
		a.Close()
		return nil, fmt.Errorf("%w: run `fintrack login` or `fintrack signup`", err)
	}
	return a, nil
}

func (a *app) Close() {
	a.closeSinks()
	if err := a.prefs.Close(); err != nil {
		log.Warn("closing store", "err", err)
	}
}

// load decodes every wallet and transaction, reporting progress on stderr.
func (a *app) load() (*pipeline.LoadResult, error) {
	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%50 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Loading wallets [%d/%d]", current, total)
		}
	}
	result, err := pipeline.LoadAll(a.prefs, progressFn)
	if err != nil {
		return nil, err
	}
	if !flagQuiet && len(result.Wallets) > 0 {
		fmt.Fprintf(os.Stderr, "\r  Loaded %s transactions across %d wallets    \n",
			cli.FormatNumber(int64(len(result.All))), len(result.Wallets))
	}
	if result.ParseErrors > 0 {
		log.Warn("skipped unreadable entries", "count", result.ParseErrors)
	}
	return result, nil
}

// resolveWallet returns name, or the current wallet when name is empty.
func (a *app) resolveWallet(name string) (string, error) {
	if name != "" {
		if _, err := a.ledger.Wallet(name); err != nil {
			return "", err
		}
		return name, nil
	}
	current, err := a.ledger.CurrentWallet()
	if err != nil {
		return "", err
	}
	if current == "" {
		return "", fmt.Errorf("%w: add one with `fintrack wallet add`", ledger.ErrWalletNotFound)
	}
	return current, nil
}
