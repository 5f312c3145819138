package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/gradehoraria/gradewatch/internal/gradeapi"
	"github.com/gradehoraria/gradewatch/internal/poller"
	"github.com/gradehoraria/gradewatch/internal/prefs"
	"github.com/gradehoraria/gradewatch/internal/state"
)

const (
	refreshEvery      = time.Second
	forceCheckTimeout = 30 * time.Second
	maxToasts         = 4
)

// Tracker is the part of *poller.Poller the dashboard reads and drives.
type Tracker interface {
	ForceCheck(ctx context.Context)
	Statuses() map[string]gradeapi.Status
	Stats() poller.Stats
}

var _ Tracker = (*poller.Poller)(nil)

type tickMsg time.Time

type notificationMsg poller.Notification

type checkDoneMsg struct{}

type prefsSavedMsg struct{ err error }

type toast struct {
	note    poller.Notification
	expires time.Time
}

// Model is the bubbletea model of the dashboard.
type Model struct {
	ctx       context.Context
	store     *state.Store
	tracker   Tracker
	notes     <-chan poller.Notification
	escolaID  string
	prefs     prefs.Prefs
	prefsPath string
	log       *logrus.Entry

	theme   Theme
	keys    keyMap
	help    help.Model
	spinner spinner.Model

	snapshot state.Snapshot
	statuses map[string]gradeapi.Status
	stats    poller.Stats
	cursor   int
	toasts   []toast
	checking bool

	width  int
	height int
	now    func() time.Time
}

// NewModel builds the dashboard model. It does not start anything; the
// bubbletea runtime calls Init.
func NewModel(ctx context.Context, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	m := Model{
		ctx:       ctx,
		store:     opts.Store,
		tracker:   opts.Tracker,
		notes:     opts.Notifications,
		escolaID:  opts.EscolaID,
		prefs:     opts.Prefs,
		prefsPath: opts.PrefsPath,
		log:       log.WithField("component", "ui"),
		theme:     GetTheme(opts.Prefs.Theme),
		keys:      defaultKeyMap(),
		help:      help.New(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		now:       time.Now,
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), waitForNotification(m.notes), m.spinner.Tick)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.refresh()
		m.pruneToasts()
		return m, tickCmd()

	case notificationMsg:
		m.pushToast(poller.Notification(msg))
		return m, waitForNotification(m.notes)

	case checkDoneMsg:
		m.checking = false
		m.refresh()
		return m, nil

	case prefsSavedMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Warn("save preferences failed")
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.snapshot.Grades)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Refresh):
		if m.checking || m.tracker == nil {
			return m, nil
		}
		m.checking = true
		return m, forceCheckCmd(m.ctx, m.tracker)
	case key.Matches(msg, m.keys.Theme):
		m.prefs.Theme = NextTheme(m.theme.Name)
		m.theme = GetTheme(m.prefs.Theme)
		return m, savePrefsCmd(m.prefsPath, m.prefs)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// refresh pulls the latest grade list and poller view.
func (m *Model) refresh() {
	if m.store != nil {
		m.snapshot = m.store.Snapshot()
	}
	if m.tracker != nil {
		m.statuses = m.tracker.Statuses()
		m.stats = m.tracker.Stats()
	}
	if n := len(m.snapshot.Grades); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m *Model) pushToast(n poller.Notification) {
	m.toasts = append(m.toasts, toast{note: n, expires: m.now().Add(m.prefs.ToastDuration())})
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
}

func (m *Model) pruneToasts() {
	now := m.now()
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if now.Before(t.expires) {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

// statusOf prefers the poller's observation over the listed status.
func (m Model) statusOf(g gradeapi.Grade) gradeapi.Status {
	if st, ok := m.statuses[g.ID]; ok && st != "" {
		return st
	}
	return g.Status
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitForNotification(ch <-chan poller.Notification) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return notificationMsg(n)
	}
}

func forceCheckCmd(ctx context.Context, tracker Tracker) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, forceCheckTimeout)
		defer cancel()
		tracker.ForceCheck(ctx)
		return checkDoneMsg{}
	}
}

func savePrefsCmd(path string, p prefs.Prefs) tea.Cmd {
	return func() tea.Msg {
		return prefsSavedMsg{err: prefs.Save(path, p)}
	}
}
