package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gradehoraria/gradewatch/internal/config"
	"github.com/gradehoraria/gradewatch/internal/gradeapi"
	"github.com/gradehoraria/gradewatch/internal/logging"
	"github.com/gradehoraria/gradewatch/internal/notify"
	"github.com/gradehoraria/gradewatch/internal/poller"
	"github.com/gradehoraria/gradewatch/internal/prefs"
	"github.com/gradehoraria/gradewatch/internal/state"
	"github.com/gradehoraria/gradewatch/internal/ui"
)

const toastBuffer = 32

// Options configure the dashboard.
type Options struct {
	ConfigPath string
	PrefsPath  string        // empty uses default ~/.config/gradewatch/prefs.toml
	PollEvery  time.Duration // zero uses the configured poll interval
}

// env holds what every command needs to talk to the backend.
type env struct {
	cfg    config.Config
	log    *logrus.Logger
	client *gradeapi.Client
	close  func()
}

func bootstrap(configPath string, stderr io.Writer) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, cleanup, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
		Stderr: stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	client, err := gradeapi.NewClient(cfg.APIURL, gradeapi.WithToken(cfg.APIToken))
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("init api client: %w", err)
	}
	return &env{cfg: cfg, log: logger, client: client, close: cleanup}, nil
}

func pollInterval(cfg config.Config, override time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	return cfg.PollInterval
}

// Run boots the dashboard until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	e, err := bootstrap(opts.ConfigPath, nil)
	if err != nil {
		return err
	}
	defer e.close()

	userPrefs := prefs.Load(opts.PrefsPath)
	store := &state.Store{}
	toasts := notify.NewChannel(toastBuffer)

	p := poller.New(e.client, poller.Options{
		Interval: pollInterval(e.cfg, opts.PollEvery),
		Notifier: notify.Multi{toasts, notify.NewLog(logging.Component(e.log, "app"))},
		Logger:   logrus.NewEntry(e.log),
		OnStatusChange: func(id string, status gradeapi.Status) {
			store.SetStatus(id, status)
		},
	})
	defer p.Close()

	refresher := &Refresher{
		Store:    store,
		Lister:   e.client,
		Tracker:  p,
		EscolaID: e.cfg.EscolaID,
		Interval: e.cfg.ListRefresh,
		Log:      logging.Component(e.log, "refresher"),
	}

	// Populate the store before the UI draws its first frame.
	if err := refresher.Refresh(ctx); err != nil {
		refresher.Log.WithError(err).Warn("initial grade list refresh failed")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go refresher.Run(ctx)

	return ui.Run(ctx, ui.Options{
		Store:         store,
		Tracker:       p,
		Notifications: toasts.C(),
		EscolaID:      e.cfg.EscolaID,
		Prefs:         userPrefs,
		PrefsPath:     opts.PrefsPath,
		Logger:        logrus.NewEntry(e.log),
	})
}
