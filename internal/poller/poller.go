package poller

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gradehoraria/gradewatch/internal/gradeapi"
)

const (
	// DefaultInterval is the polling cadence used when Options.Interval is zero.
	DefaultInterval    = 30 * time.Second
	defaultConcurrency = 4
)

// Item is one trackable generation job as supplied by the caller.
type Item struct {
	ID       string
	EscolaID string
	Name     string
	Status   gradeapi.Status
}

func (i Item) displayName() string {
	if name := strings.TrimSpace(i.Name); name != "" {
		return name
	}
	return i.ID
}

// ItemFromGrade converts an API grade into a trackable item.
func ItemFromGrade(g gradeapi.Grade) Item {
	return Item{ID: g.ID, EscolaID: g.EscolaID, Name: g.Name, Status: g.Status}
}

// Fetcher reads the current status of a generation job. Errors matching
// gradeapi.ErrNotFound mean the job no longer exists.
type Fetcher interface {
	FetchGenerationStatus(ctx context.Context, escolaID, gradeID string) (*gradeapi.GenerationStatus, error)
}

// Options configure a Poller. Callbacks run on the goroutine executing the
// reconciliation pass; they may call Sync or Reset but must not call
// ForceCheck, Stop or Close.
type Options struct {
	Interval    time.Duration
	Concurrency int
	Notifier    Notifier
	Logger      *logrus.Entry

	OnStatusChange func(id string, status gradeapi.Status)
	OnComplete     func(id string)
	OnError        func(id string, errs []string)
}

// Stats is a point-in-time view of the poller for display and tests.
type Stats struct {
	Ticks    uint64
	LastTick time.Time
	Running  bool
	Tracked  int
	InFlight int
}

type timerHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Poller tracks asynchronous generation jobs by polling their status.
type Poller struct {
	fetcher  Fetcher
	notifier Notifier
	log      *logrus.Entry
	opts     Options

	life       context.Context
	lifeCancel context.CancelFunc

	tickMu sync.Mutex // serializes reconciliation passes

	mu        sync.Mutex
	items     map[string]Item
	order     []string
	lastKnown map[string]gradeapi.Status
	notified  notifiedSet
	timer     *timerHandle
	closed    bool
	ticks     uint64
	lastTick  time.Time
}

// New builds an idle Poller. Nothing is polled until Sync supplies items.
func New(fetcher Fetcher, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = discardNotifier{}
	}
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	life, cancel := context.WithCancel(context.Background())
	return &Poller{
		fetcher:    fetcher,
		notifier:   notifier,
		log:        log.WithField("component", "poller"),
		opts:       opts,
		life:       life,
		lifeCancel: cancel,
		items:      make(map[string]Item),
		lastKnown:  make(map[string]gradeapi.Status),
		notified:   make(notifiedSet),
	}
}

// Interval returns the effective polling cadence.
func (p *Poller) Interval() time.Duration {
	return p.opts.Interval
}

// Sync replaces the tracked collection. Bookkeeping for ids that are no
// longer supplied is dropped, new ids are seeded with their supplied status,
// a finished id supplied as pending or processing is tracked again, and the
// timer is started or stopped to match the in-flight set.
func (p *Poller) Sync(items []Item) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	next := make(map[string]Item, len(items))
	order := make([]string, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		if _, dup := next[item.ID]; dup {
			continue
		}
		next[item.ID] = item
		order = append(order, item.ID)
	}

	for id := range p.lastKnown {
		if _, ok := next[id]; !ok {
			p.forget(id)
		}
	}
	for id := range p.notified {
		if _, ok := next[id]; !ok {
			p.forget(id)
		}
	}
	for _, id := range order {
		supplied := next[id].Status
		prev, seen := p.lastKnown[id]
		switch {
		case !seen && supplied != "":
			p.lastKnown[id] = supplied
		case seen && prev.Terminal() && supplied.Active():
			// Re-queued under the same id. The notified mark is kept, so a
			// stale re-supply cannot notify twice.
			p.lastKnown[id] = supplied
		}
	}

	p.items = next
	p.order = order

	if p.inFlightCountLocked() > 0 {
		p.startLocked()
	} else {
		p.detachTimerLocked()
	}
}

// Start launches the timer if something is in flight. Calling it while a
// timer is already active does nothing.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inFlightCountLocked() > 0 {
		p.startLocked()
	}
}

// Stop halts the timer and waits for its goroutine to exit. Tracked state is
// kept; a later Sync or Start resumes polling.
func (p *Poller) Stop() {
	p.mu.Lock()
	h := p.detachTimerLocked()
	p.mu.Unlock()
	if h != nil {
		<-h.done
	}
}

// ForceCheck runs one reconciliation pass immediately without touching the
// timer cadence. It returns once every result of the pass was handled.
func (p *Poller) ForceCheck(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(p.life, cancel)
	defer stop()
	p.reconcile(ctx)
}

// Reset forgets everything known about id so a re-queued job with the same
// id is tracked and notified again.
func (p *Poller) Reset(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.forget(id)
	if p.inFlightCountLocked() > 0 {
		p.startLocked()
	}
}

// Close tears the poller down. Outstanding fetches are cancelled and their
// results discarded. Close is idempotent.
func (p *Poller) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	h := p.detachTimerLocked()
	p.lifeCancel()
	p.items = make(map[string]Item)
	p.order = nil
	p.lastKnown = make(map[string]gradeapi.Status)
	p.notified = make(notifiedSet)
	p.mu.Unlock()
	if h != nil {
		<-h.done
	}
}

// Statuses returns the last known status of every tracked item.
func (p *Poller) Statuses() map[string]gradeapi.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]gradeapi.Status, len(p.items))
	for id := range p.items {
		out[id] = p.statusLocked(id)
	}
	return out
}

// Stats returns counters describing the poller.
func (p *Poller) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Ticks:    p.ticks,
		LastTick: p.lastTick,
		Running:  p.timer != nil,
		Tracked:  len(p.items),
		InFlight: p.inFlightCountLocked(),
	}
}

func (p *Poller) statusLocked(id string) gradeapi.Status {
	if st, ok := p.lastKnown[id]; ok {
		return st
	}
	return p.items[id].Status
}

func (p *Poller) inFlightLocked() []Item {
	var out []Item
	for _, id := range p.order {
		if p.statusLocked(id).Active() {
			out = append(out, p.items[id])
		}
	}
	return out
}

func (p *Poller) inFlightCountLocked() int {
	n := 0
	for _, id := range p.order {
		if p.statusLocked(id).Active() {
			n++
		}
	}
	return n
}

func (p *Poller) startLocked() {
	if p.timer != nil || p.closed {
		return
	}
	ctx, cancel := context.WithCancel(p.life)
	h := &timerHandle{cancel: cancel, done: make(chan struct{})}
	p.timer = h
	go p.run(ctx, h)
}

func (p *Poller) detachTimerLocked() *timerHandle {
	h := p.timer
	p.timer = nil
	if h != nil {
		h.cancel()
	}
	return h
}

func (p *Poller) run(ctx context.Context, h *timerHandle) {
	defer close(h.done)
	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	for {
		p.reconcile(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
