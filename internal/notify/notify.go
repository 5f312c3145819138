// Package notify provides sinks for poller notifications.
package notify

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/gradehoraria/gradewatch/internal/poller"
)

var (
	_ poller.Notifier = (*Log)(nil)
	_ poller.Notifier = (*Channel)(nil)
	_ poller.Notifier = Multi(nil)
)

// Log writes notifications to a logrus logger. Failures are logged at error
// level, successes at info.
type Log struct {
	entry *logrus.Entry
}

// NewLog returns a Log sink writing through entry.
func NewLog(entry *logrus.Entry) *Log {
	return &Log{entry: entry.WithField("component", "notify")}
}

// Notify implements poller.Notifier.
func (l *Log) Notify(n poller.Notification) {
	e := l.entry.WithFields(logrus.Fields{
		"grade_id": n.ItemID,
		"kind":     n.Kind.String(),
	})
	if n.Description != "" {
		e = e.WithField("detail", n.Description)
	}
	if n.Kind == poller.KindError {
		e.Error(n.Title)
		return
	}
	e.Info(n.Title)
}

// Channel buffers notifications for a consumer such as the dashboard.
// Notify never blocks; when the buffer is full the notification is dropped.
type Channel struct {
	ch      chan poller.Notification
	dropped atomic.Uint64
}

// NewChannel returns a Channel sink with the given buffer size.
func NewChannel(size int) *Channel {
	if size <= 0 {
		size = 16
	}
	return &Channel{ch: make(chan poller.Notification, size)}
}

// Notify implements poller.Notifier.
func (c *Channel) Notify(n poller.Notification) {
	select {
	case c.ch <- n:
	default:
		c.dropped.Add(1)
	}
}

// C returns the receive side of the buffer.
func (c *Channel) C() <-chan poller.Notification {
	return c.ch
}

// Dropped reports how many notifications were discarded.
func (c *Channel) Dropped() uint64 {
	return c.dropped.Load()
}

// Multi fans each notification out to every sink in order.
type Multi []poller.Notifier

// Notify implements poller.Notifier.
func (m Multi) Notify(n poller.Notification) {
	for _, sink := range m {
		if sink != nil {
			sink.Notify(n)
		}
	}
}
