// Package state provides the thread-safe grade list shared by the list
// refresher and the dashboard.
//
// # Overview
//
// The refresher lists grades on its own cadence and calls Store.Update; the
// dashboard reads Store.Snapshot once a second. The poller's observed
// statuses are overlaid by the dashboard itself, and SetStatus lets a
// poller transition show up before the next list refresh.
//
//	Refresher:                      Dashboard:
//	┌──────────────────┐            ┌──────────────────┐
//	│ ListGrades()     │            │                  │
//	│ store.Update()   │───────────→│ store.Snapshot() │
//	│ poller.Sync()    │  (RWMutex) │ render           │
//	└──────────────────┘            └──────────────────┘
//
// # Update Semantics
//
//	store.Update(grades, nil)  // replace list, clear error, reset failures
//	store.Update(nil, err)     // keep list, record error, count failure
//
// Two consecutive failures mark the snapshot offline. Snapshots are deep
// copies, so callers may mutate them freely.
//
// The zero Store is ready to use.
package state
