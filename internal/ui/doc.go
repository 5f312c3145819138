// Package ui implements the gradewatch dashboard with Bubble Tea.
//
// The Model reads two sources every second: the grade list held by a
// state.Store, and the live statuses of a Tracker (normally the
// *poller.Poller). Notifications arrive on a channel and are shown as
// toasts until they expire.
package ui
