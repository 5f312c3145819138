package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gradehoraria/gradewatch/internal/gradeapi"
	"github.com/gradehoraria/gradewatch/internal/poller"
	"github.com/gradehoraria/gradewatch/internal/state"
)

const (
	defaultListInterval = 60 * time.Second
	maxBackoff          = 5 * time.Minute
)

// Lister reads the grade list of a school.
type Lister interface {
	ListGrades(ctx context.Context, escolaID string) ([]gradeapi.Grade, error)
}

// Syncer receives the current grade collection.
type Syncer interface {
	Sync(items []poller.Item)
}

// Refresher periodically reloads the grade list into the store and hands it
// to the status poller.
type Refresher struct {
	Store    *state.Store
	Lister   Lister
	Tracker  Syncer
	EscolaID string
	Interval time.Duration
	Log      *logrus.Entry
}

// Refresh loads the grade list once. On failure the store keeps the previous
// list and the poller is left untouched.
func (r *Refresher) Refresh(ctx context.Context) error {
	grades, err := r.Lister.ListGrades(ctx, r.EscolaID)
	if err != nil {
		r.Store.Update(nil, err)
		return err
	}
	r.Store.Update(grades, nil)
	if r.Tracker != nil {
		items := make([]poller.Item, 0, len(grades))
		for _, g := range grades {
			items = append(items, poller.ItemFromGrade(g))
		}
		r.Tracker.Sync(items)
	}
	return nil
}

// Run refreshes until ctx is cancelled, backing off while the API fails.
func (r *Refresher) Run(ctx context.Context) {
	interval := r.Interval
	if interval <= 0 {
		interval = defaultListInterval
	}
	failures := 0
	for {
		if err := r.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			r.logger().WithError(err).WithField("failures", failures).Warn("grade list refresh failed")
		} else {
			failures = 0
		}

		timer := time.NewTimer(calculateBackoff(failures, interval))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (r *Refresher) logger() *logrus.Entry {
	if r.Log != nil {
		return r.Log
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for range failures {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
