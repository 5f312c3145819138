package poller

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gradehoraria/gradewatch/internal/gradeapi"
)

type fetchResult struct {
	item   Item
	status *gradeapi.GenerationStatus
	err    error
}

type eventKind int

const (
	eventTransition eventKind = iota
	eventNotify
	eventComplete
	eventFailed
)

type event struct {
	kind         eventKind
	id           string
	status       gradeapi.Status
	errs         []string
	notification Notification
}

// reconcile runs one pass over the in-flight items. Fetches are issued
// concurrently; results are applied one at a time as they arrive.
func (p *Poller) reconcile(ctx context.Context) {
	p.tickMu.Lock()
	defer p.tickMu.Unlock()

	if ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	targets := p.inFlightLocked()
	p.mu.Unlock()

	started := time.Now()
	results := make(chan fetchResult)
	go func() {
		var g errgroup.Group
		g.SetLimit(p.opts.Concurrency)
		for _, item := range targets {
			g.Go(func() error {
				status, err := p.fetcher.FetchGenerationStatus(ctx, item.EscolaID, item.ID)
				results <- fetchResult{item: item, status: status, err: err}
				return nil
			})
		}
		_ = g.Wait()
		close(results)
	}()

	for res := range results {
		p.handle(ctx, res)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || ctx.Err() != nil {
		return
	}
	p.ticks++
	p.lastTick = time.Now()
	remaining := p.inFlightCountLocked()
	if remaining == 0 {
		p.detachTimerLocked()
	}
	p.log.WithFields(logrus.Fields{
		"checked":   len(targets),
		"in_flight": remaining,
		"took":      time.Since(started).Round(time.Millisecond).String(),
	}).Debug("status pass finished")
}

func (p *Poller) handle(ctx context.Context, res fetchResult) {
	if res.err != nil && ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if _, tracked := p.items[res.item.ID]; !tracked {
		p.mu.Unlock()
		return
	}
	events := p.applyLocked(res)
	p.mu.Unlock()

	p.dispatch(events)
}

func (p *Poller) applyLocked(res fetchResult) []event {
	id := res.item.ID
	log := p.log.WithFields(logrus.Fields{"grade_id": id, "escola_id": res.item.EscolaID})

	if res.err != nil {
		if errors.Is(res.err, gradeapi.ErrNotFound) {
			p.untrackLocked(id)
			log.Info("generation job no longer exists; untracking")
			return nil
		}
		log.WithError(res.err).Warn("status poll failed; will retry")
		return nil
	}
	if res.status == nil || !validStatus(res.status.Status) {
		log.WithField("status", statusOf(res.status)).Warn("unrecognized generation status; will retry")
		return nil
	}

	next := res.status.Status
	var events []event

	if prev, known := p.lastKnown[id]; known && prev != next {
		log.WithFields(logrus.Fields{"from": prev, "to": next}).Info("generation status changed")
		events = append(events, event{kind: eventTransition, id: id, status: next})
	}
	p.lastKnown[id] = next

	if next.Terminal() && p.notified.shouldNotify(id) {
		p.notified.markNotified(id)
		item := p.items[id]
		if next == gradeapi.StatusCompleted {
			events = append(events,
				event{kind: eventNotify, id: id, notification: completedNotification(item)},
				event{kind: eventComplete, id: id},
			)
		} else {
			errs := slices.Clone(res.status.Errors)
			events = append(events,
				event{kind: eventNotify, id: id, notification: failedNotification(item, *res.status)},
				event{kind: eventFailed, id: id, errs: errs},
			)
		}
	}
	return events
}

func (p *Poller) untrackLocked(id string) {
	p.forget(id)
	delete(p.items, id)
	p.order = slices.DeleteFunc(p.order, func(v string) bool { return v == id })
}

func (p *Poller) dispatch(events []event) {
	for _, ev := range events {
		switch ev.kind {
		case eventTransition:
			if p.opts.OnStatusChange != nil {
				p.opts.OnStatusChange(ev.id, ev.status)
			}
		case eventNotify:
			p.notifier.Notify(ev.notification)
		case eventComplete:
			if p.opts.OnComplete != nil {
				p.opts.OnComplete(ev.id)
			}
		case eventFailed:
			if p.opts.OnError != nil {
				p.opts.OnError(ev.id, ev.errs)
			}
		}
	}
}

func validStatus(s gradeapi.Status) bool {
	return s.Active() || s.Terminal()
}

func statusOf(s *gradeapi.GenerationStatus) string {
	if s == nil {
		return ""
	}
	return string(s.Status)
}
