package ui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/gradehoraria/gradewatch/internal/poller"
	"github.com/gradehoraria/gradewatch/internal/prefs"
	"github.com/gradehoraria/gradewatch/internal/state"
)

// Options configure the dashboard.
type Options struct {
	Store         *state.Store
	Tracker       Tracker
	Notifications <-chan poller.Notification
	EscolaID      string
	Prefs         prefs.Prefs
	PrefsPath     string
	Logger        *logrus.Entry
}

// Run starts the dashboard and blocks until ctx is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	if opts.Store == nil {
		return fmt.Errorf("ui requires a data store")
	}
	if opts.Tracker == nil {
		return fmt.Errorf("ui requires a status tracker")
	}

	prog := tea.NewProgram(NewModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}
