package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/theirongolddev/fintrack/internal/tui"
	"github.com/theirongolddev/fintrack/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	theme.SetActive(cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	// The alt screen owns the terminal; send log lines to a file instead.
	logPath := filepath.Join(dataDir(), "tui.log")
	if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600); err == nil {
		log.SetOutput(f)
		defer func() {
			log.SetOutput(os.Stderr)
			_ = f.Close()
		}()
	}

	app := tui.NewApp(tui.Services{
		Prefs:    a.prefs,
		Ledger:   a.ledger,
		Center:   a.center,
		Accounts: a.accounts,
		Config:   cfg,
		DataDir:  dataDir(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
