package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldTheme = iota
	settingsFieldCurrency
	settingsFieldWarning
	settingsFieldExceeded
	settingsFieldLowBalance
	settingsFieldReminder
	settingsFieldNotifications
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message briefly
	saveErr error // non-nil if last save failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 32
	ti.Width = 30
	return ti
}

func (a App) updateSettingsKeys(key string) (App, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.settings.cursor = clamp(a.settings.cursor+1, 0, settingsFieldCount-1)
	case "k", "up":
		a.settings.cursor = clamp(a.settings.cursor-1, 0, settingsFieldCount-1)
	case "enter", " ":
		switch a.settings.cursor {
		case settingsFieldTheme:
			cfg := a.cfg
			cfg.Appearance.Theme = theme.Next(cfg.Appearance.Theme).Name
			a.applySettings(cfg)
		case settingsFieldNotifications:
			on := !a.snap.notifyOn
			center := a.svc.Center
			status := "Notifications off"
			if on {
				status = "Notifications on"
			}
			return a, notificationCmd(func() (string, error) {
				return status, center.SetEnabled(on)
			}), true
		default:
			next, cmd := a.settingsStartEdit()
			return next, cmd, true
		}
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) settingsStartEdit() (App, tea.Cmd) {
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := newSettingsInput()
	th := a.cfg.Thresholds
	switch a.settings.cursor {
	case settingsFieldCurrency:
		ti.Placeholder = "USD, EUR, GBP..."
		ti.SetValue(a.cfg.General.Currency)
	case settingsFieldWarning:
		ti.Placeholder = "80"
		ti.SetValue(strconv.Itoa(th.WarningPct))
	case settingsFieldExceeded:
		ti.Placeholder = "100"
		ti.SetValue(strconv.Itoa(th.ExceededPct))
	case settingsFieldLowBalance:
		ti.Placeholder = "10"
		ti.SetValue(strconv.Itoa(th.LowBalancePct))
	case settingsFieldReminder:
		ti.Placeholder = "21:00"
		ti.SetValue(a.cfg.Notifications.ReminderTime)
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

func (a *App) settingsSave() {
	cfg := a.cfg
	val := strings.TrimSpace(a.settings.input.Value())

	pct := func(dst *int) bool {
		n, err := strconv.Atoi(val)
		if err != nil {
			a.settings.saveErr = fmt.Errorf("%q is not a whole number", val)
			return false
		}
		*dst = n
		return true
	}

	switch a.settings.cursor {
	case settingsFieldCurrency:
		cfg.General.Currency = strings.ToUpper(val)
	case settingsFieldWarning:
		if !pct(&cfg.Thresholds.WarningPct) {
			return
		}
	case settingsFieldExceeded:
		if !pct(&cfg.Thresholds.ExceededPct) {
			return
		}
	case settingsFieldLowBalance:
		if !pct(&cfg.Thresholds.LowBalancePct) {
			return
		}
	case settingsFieldReminder:
		cfg.Notifications.ReminderTime = val
	}
	a.applySettings(cfg)
}

// applySettings validates cfg, writes it and makes it live.
func (a *App) applySettings(cfg config.Config) {
	a.settings.saved = false
	if err := cfg.Validate(); err != nil {
		a.settings.saveErr = err
		return
	}
	prevCurrency := cli.Currency()
	if err := cli.SetCurrency(cfg.General.Currency); err != nil {
		a.settings.saveErr = err
		return
	}
	if err := config.Save(cfg); err != nil {
		_ = cli.SetCurrency(prevCurrency)
		a.settings.saveErr = err
		return
	}
	theme.SetActive(cfg.Appearance.Theme)
	a.svc.Center.SetConfig(cfg)
	a.cfg = cfg
	a.settings.saveErr = nil
	a.settings.saved = true
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := a.cfg

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	type field struct {
		label string
		value string
	}

	notifications := "off"
	if a.snap.notifyOn {
		notifications = "on"
	}

	fields := []field{
		{"Theme", cfg.Appearance.Theme},
		{"Currency", cfg.General.Currency},
		{"Warning at", fmt.Sprintf("%d%% used", cfg.Thresholds.WarningPct)},
		{"Exceeded at", fmt.Sprintf("%d%% used", cfg.Thresholds.ExceededPct)},
		{"Low balance", fmt.Sprintf("below %d%% left", cfg.Thresholds.LowBalancePct)},
		{"Daily reminder", cfg.Notifications.ReminderTime},
		{"Notifications", notifications},
	}

	innerW := components.CardInnerWidth(cw)
	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker)
			formBody.WriteString(label)
			formBody.WriteString(value)
			usedWidth := lipgloss.Width(marker) + lipgloss.Width(label) + lipgloss.Width(value)
			if padLen := innerW - usedWidth; padLen > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", padLen)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Save failed: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved!"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit or toggle  [Esc] cancel"))

	user := a.snap.user
	if user == "" {
		user = "(not logged in)"
	}
	processed := a.snap.lastProcessed
	if processed == "" {
		processed = "never"
	}

	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Account:         ") + valueStyle.Render(user) + "\n")
	infoBody.WriteString(labelStyle.Render("Data directory:  ") + valueStyle.Render(a.svc.DataDir) + "\n")
	infoBody.WriteString(labelStyle.Render("Config file:     ") + valueStyle.Render(config.Path()) + "\n")
	infoBody.WriteString(labelStyle.Render("Monthly run:     ") + valueStyle.Render(processed) + "\n")
	infoBody.WriteString(labelStyle.Render("Load time:       ") + valueStyle.Render(fmt.Sprintf("%.1fs", a.loadTime.Seconds())))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))

	return b.String()
}
