// Package tui provides the interactive Bubble Tea dashboard for fintrack.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/theirongolddev/fintrack/internal/auth"
	"github.com/theirongolddev/fintrack/internal/cli"
	"github.com/theirongolddev/fintrack/internal/config"
	"github.com/theirongolddev/fintrack/internal/ledger"
	"github.com/theirongolddev/fintrack/internal/model"
	"github.com/theirongolddev/fintrack/internal/notify"
	"github.com/theirongolddev/fintrack/internal/pipeline"
	"github.com/theirongolddev/fintrack/internal/store"
	"github.com/theirongolddev/fintrack/internal/tui/components"
	"github.com/theirongolddev/fintrack/internal/tui/theme"
)

// Services are the backends the dashboard reads and mutates.
type Services struct {
	Prefs    *store.Store
	Ledger   *ledger.Service
	Center   *notify.Center
	Accounts *auth.Accounts
	Config   config.Config
	DataDir  string
}

// snapshot is everything the tabs render from, read in one pass.
type snapshot struct {
	result        *pipeline.LoadResult
	current       string
	notifications []model.Notification
	unread        int
	user          string
	hasAccount    bool
	loggedIn      bool
	notifyOn      bool
	lastUpdate    time.Time
	lastProcessed string
	booked        int
}

// DataLoadedMsg is sent when the initial load finishes.
type DataLoadedMsg struct {
	Snap     snapshot
	LoadTime time.Duration
	Err      error
}

// ProgressMsg reports wallet decoding progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background reload completes.
type RefreshDataMsg struct {
	Snap snapshot
	Err  error
}

// pollMsg carries the cheap change markers checked on every poll.
type pollMsg struct {
	lastUpdate time.Time
	unread     int
	err        error
}

// mutationMsg reports the outcome of a write started from the dashboard.
type mutationMsg struct {
	status  string
	err     error
	process bool // book due monthly templates on the reload
	reopen  formKind
	vals    *formValues
}

type tickMsg time.Time

// App is the root Bubble Tea model.
type App struct {
	svc Services
	cfg config.Config

	// Data
	snap     snapshot
	loaded   bool
	loadErr  error
	loadTime time.Duration

	// Derived views
	week   model.WeekOverview
	report pipeline.Report

	// Auto-refresh state
	refreshing   bool
	lastPoll     time.Time
	pollInterval time.Duration

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	status    string
	statusErr bool
	statusAt  time.Time

	// Per-tab state
	txState    txState
	analytics  analyticsState
	walletsTab walletsState
	notif      notifState
	settings   settingsState

	// Overlay form (setup, login, add/edit)
	form     *huh.Form
	formKind formKind
	formVals *formValues

	// Loading, channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 160
	minContentHeight = 5

	tickInterval     = 500 * time.Millisecond
	defaultPollEvery = 2 * time.Second
	statusLifetime   = 4 * time.Second
)

// NewApp creates the dashboard model.
func NewApp(svc Services) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		svc:          svc,
		cfg:          svc.Config,
		spinner:      sp,
		loadSub:      make(chan tea.Msg, 1),
		pollInterval: defaultPollEvery,
		analytics:    analyticsState{period: model.PeriodWeekly},
		settings:     settingsState{input: newSettingsInput()},
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.svc, a.loadSub),
		a.spinner.Tick,
		tickCmd(),
	)
}

// recompute rebuilds the derived views after new data arrives.
func (a *App) recompute() {
	if a.snap.result == nil {
		return
	}
	now := a.svc.Ledger.Now()
	a.week = pipeline.WeekOverview(a.snap.result.Wallets, a.snap.result.All, now)
	a.report = pipeline.Analyze(a.analyticsSource(), model.Range{Period: a.analytics.period}, now)

	txs := a.currentTransactions()
	if a.txState.cursor >= len(txs) {
		a.txState.cursor = max(len(txs)-1, 0)
	}
	if a.walletsTab.cursor >= len(a.snap.result.Wallets) {
		a.walletsTab.cursor = max(len(a.snap.result.Wallets)-1, 0)
	}
	if n := len(a.visibleNotifications()); a.notif.cursor >= n {
		a.notif.cursor = max(n-1, 0)
	}
}

func (a *App) setStatus(msg string, isErr bool) {
	a.status = msg
	a.statusErr = isErr
	a.statusAt = time.Now()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(min(msg.Width, 80)).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.form != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			return a.moveCursor(-1), nil
		case tea.MouseButtonWheelDown:
			return a.moveCursor(1), nil
		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress && msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.loaded {
			return a, nil
		}
		if a.form != nil {
			return a.updateForm(msg)
		}
		return a.updateKeys(msg)

	case DataLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.lastPoll = time.Now()
		if msg.Err != nil {
			a.loadErr = msg.Err
			return a, nil
		}
		a.snap = msg.Snap
		a.recompute()
		if msg.Snap.booked > 0 {
			a.setStatus(fmt.Sprintf("Booked %d monthly transaction(s)", msg.Snap.booked), false)
		}
		switch {
		case !a.snap.hasAccount:
			return a.openForm(formSetup, &formValues{})
		case !a.snap.loggedIn:
			return a.openForm(formLogin, &formValues{})
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case RefreshDataMsg:
		a.refreshing = false
		a.lastPoll = time.Now()
		if msg.Err != nil {
			a.setStatus("Refresh failed: "+msg.Err.Error(), true)
			return a, nil
		}
		a.snap = msg.Snap
		a.recompute()
		if msg.Snap.booked > 0 {
			a.setStatus(fmt.Sprintf("Booked %d monthly transaction(s)", msg.Snap.booked), false)
		}
		return a, nil

	case pollMsg:
		a.lastPoll = time.Now()
		if msg.err != nil {
			log.Debug("poll failed", "err", msg.err)
			return a, nil
		}
		if msg.lastUpdate.After(a.snap.lastUpdate) || msg.unread != a.snap.unread {
			a.refreshing = true
			return a, refreshDataCmd(a.svc, false)
		}
		return a, nil

	case mutationMsg:
		if msg.err != nil {
			a.setStatus(msg.err.Error(), true)
			if msg.reopen != formNone {
				return a.openForm(msg.reopen, msg.vals)
			}
		} else if msg.status != "" {
			a.setStatus(msg.status, false)
		}
		a.refreshing = true
		return a, refreshDataCmd(a.svc, msg.process)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.status != "" && time.Since(a.statusAt) > statusLifetime {
			a.status = ""
		}
		if a.loaded && a.loadErr == nil && !a.refreshing && a.snap.loggedIn &&
			time.Since(a.lastPoll) >= a.pollInterval {
			a.lastPoll = time.Now()
			cmds = append(cmds, pollCmd(a.svc))
		}
		return a, tea.Batch(cmds...)
	}

	// Cursor blinks and other internal messages.
	if a.form != nil {
		return a.updateForm(msg)
	}
	if a.settings.editing {
		var cmd tea.Cmd
		a.settings.input, cmd = a.settings.input.Update(msg)
		return a, cmd
	}
	if a.txState.searching {
		var cmd tea.Cmd
		a.txState.searchInput, cmd = a.txState.searchInput.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Text entry modes get every key.
	if a.activeTab == components.TabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}
	if a.activeTab == components.TabTransactions && a.txState.searching {
		return a.updateTransactionsSearch(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}
	if a.loadErr != nil {
		if key == "q" || key == "esc" {
			return a, tea.Quit
		}
		return a, nil
	}

	// Tab-local bindings win over the global ones.
	var (
		handled bool
		next    App
		cmd     tea.Cmd
	)
	switch a.activeTab {
	case components.TabTransactions:
		next, cmd, handled = a.updateTransactionsKeys(key)
	case components.TabAnalytics:
		next, cmd, handled = a.updateAnalyticsKeys(key)
	case components.TabWallets:
		next, cmd, handled = a.updateWalletsKeys(key)
	case components.TabNotifications:
		next, cmd, handled = a.updateNotificationsKeys(key)
	case components.TabSettings:
		next, cmd, handled = a.updateSettingsKeys(key)
	}
	if handled {
		return next, cmd
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if !a.refreshing {
			a.refreshing = true
			return a, refreshDataCmd(a.svc, false)
		}
		return a, nil
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}
	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

// moveCursor scrolls the list of the active tab.
func (a App) moveCursor(delta int) App {
	switch a.activeTab {
	case components.TabTransactions:
		a.txState.cursor = clamp(a.txState.cursor+delta, 0, len(a.filteredTransactions())-1)
	case components.TabWallets:
		a.walletsTab.cursor = clamp(a.walletsTab.cursor+delta, 0, len(a.wallets())-1)
	case components.TabNotifications:
		a.notif.cursor = clamp(a.notif.cursor+delta, 0, len(a.visibleNotifications())-1)
	case components.TabSettings:
		if !a.settings.editing {
			a.settings.cursor = clamp(a.settings.cursor+delta, 0, settingsFieldCount-1)
		}
	}
	return a
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (a App) wallets() []model.Wallet {
	if a.snap.result == nil {
		return nil
	}
	return a.snap.result.Wallets
}

func (a App) currentTransactions() []model.Transaction {
	if a.snap.result == nil || a.snap.current == "" {
		return nil
	}
	return a.snap.result.Transactions(a.snap.current)
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.form != nil {
		return a.viewForm()
	}
	if a.loadErr != nil {
		return a.viewLoadError()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  fintrack needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewForm() string {
	t := theme.Active
	body := a.form.View()
	if a.status != "" && a.statusErr {
		warn := lipgloss.NewStyle().Foreground(t.Red).Bold(true)
		body = warn.Render(a.status) + "\n\n" + body
	}
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, body)
}

func (a App) viewLoadError() string {
	t := theme.Active
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Red).
		Background(t.Surface).
		Padding(1, 3)
	title := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
	text := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	card := cardStyle.Render(
		title.Render("Could not load your data") + "\n\n" +
			text.Render(a.loadErr.Error()) + "\n\n" +
			text.Render("Press q to quit"))
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ fintrack"))
	b.WriteString(subtitleStyle.Render(" · Personal Finance"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := clamp(a.width-30, 20, 40)
		pct := float64(a.progress) / float64(a.progressMax)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Reading wallets\n\n"))
		b.WriteString(components.ProgressBar(pct, barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Opening ledger..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

type binding struct{ key, desc string }

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []binding
	}{
		{"Navigation", []binding{
			{"h t a w n s", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move in lists"},
		}},
		{"Transactions", []binding{
			{"[ ]", "Previous / Next wallet"},
			{"+", "Add transaction"},
			{"e", "Edit selected"},
			{"d", "Delete selected"},
			{"/", "Search by name"},
		}},
		{"Wallets / Notifications", []binding{
			{"Enter", "Use wallet / Mark read"},
			{"+  D", "Add / Delete wallet"},
			{"f", "Cycle notification filter"},
			{"A", "Mark all read"},
		}},
		{"General", []binding{
			{"r", "Reload data"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-12s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w, a.snap.unread)

	updated := ""
	if !a.snap.lastUpdate.IsZero() {
		updated = notify.Relative(a.snap.lastUpdate, a.svc.Ledger.Now())
	}
	statusBar := components.RenderStatusBar(w, components.StatusInfo{
		User:       a.snap.user,
		Wallet:     a.snap.current,
		Updated:    updated,
		Refreshing: a.refreshing,
		Message:    a.status,
		IsError:    a.statusErr,
	})

	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case components.TabHome:
		content = a.renderHomeTab(cw)
	case components.TabTransactions:
		content = a.renderTransactionsTab(cw, contentH)
	case components.TabAnalytics:
		content = a.renderAnalyticsTab(cw)
	case components.TabWallets:
		content = a.renderWalletsTab(cw)
	case components.TabNotifications:
		content = a.renderNotificationsTab(cw, contentH)
	case components.TabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Data loading ───────────────────────────────────────────────

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// readSnapshot loads everything the tabs need. With process set, due
// monthly templates are booked first.
func readSnapshot(svc Services, process bool, progressFn pipeline.ProgressFunc) (snapshot, error) {
	var snap snapshot
	var err error

	if snap.hasAccount, err = svc.Accounts.HasAccount(); err != nil {
		return snap, err
	}
	if snap.loggedIn, err = svc.Accounts.LoggedIn(); err != nil {
		return snap, err
	}
	if snap.loggedIn {
		if snap.user, err = svc.Accounts.CurrentUser(); err != nil {
			return snap, err
		}
		if process {
			res, err := svc.Ledger.ProcessDue(context.Background())
			if err != nil {
				return snap, fmt.Errorf("processing monthly transactions: %w", err)
			}
			snap.booked = len(res.Created)
		}
	}

	if snap.result, err = pipeline.LoadAll(svc.Prefs, progressFn); err != nil {
		return snap, err
	}
	if snap.current, err = svc.Ledger.CurrentWallet(); err != nil {
		return snap, err
	}
	if snap.notifications, err = svc.Center.List(model.FilterAll); err != nil {
		return snap, err
	}
	for _, n := range snap.notifications {
		if !n.IsRead {
			snap.unread++
		}
	}
	if snap.notifyOn, err = svc.Center.Enabled(); err != nil {
		return snap, err
	}
	if snap.lastUpdate, err = svc.Ledger.LastUpdate(); err != nil {
		return snap, err
	}
	if snap.lastProcessed, err = svc.Ledger.LastProcessedDay(); err != nil {
		return snap, err
	}
	return snap, nil
}

// loadDataCmd starts the initial load in a background goroutine.
// It streams ProgressMsg updates and a final DataLoadedMsg through sub.
func loadDataCmd(svc Services, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()
			// Non-blocking send: a full channel just drops this update.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}
			snap, err := readSnapshot(svc, true, progressFn)
			sub <- DataLoadedMsg{Snap: snap, LoadTime: time.Since(start), Err: err}
		}()
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// refreshDataCmd reloads in the background without progress UI.
func refreshDataCmd(svc Services, process bool) tea.Cmd {
	return func() tea.Msg {
		snap, err := readSnapshot(svc, process, nil)
		return RefreshDataMsg{Snap: snap, Err: err}
	}
}

// pollCmd reads the last-change marker and the unread count.
func pollCmd(svc Services) tea.Cmd {
	return func() tea.Msg {
		last, err := svc.Ledger.LastUpdate()
		if err != nil {
			return pollMsg{err: err}
		}
		unread, err := svc.Center.UnreadCount()
		return pollMsg{lastUpdate: last, unread: unread, err: err}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes follow the same width rules as RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab, a.snap.unread)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
