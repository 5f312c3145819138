// Package poller tracks server-side grade generation jobs from a client that
// has no push channel.
//
// A Poller is owned by a single view. The view calls Sync with the grades it
// currently displays every time its own data refreshes; the Poller works out
// which of them are in flight (pendente or processando), keeps one timer
// running while that set is non-empty, and on every tick fetches the status
// of each in-flight job.
//
// Per job, a pass:
//
//  1. fetches the current status
//  2. reports a transition through OnStatusChange when a previous status was
//     known and differs (the first observation is never a transition)
//  3. stores the fetched status
//  4. on concluida or erro, notifies exactly once and calls OnComplete or
//     OnError
//
// A job the backend reports as missing is silently untracked. Any other fetch
// failure is logged and retried on the next tick. One job failing never
// aborts the pass for the others.
//
// Timer lifecycle:
//
//	Sync/Start ──(in flight > 0, no timer)──> timer running, immediate pass
//	pass end   ──(in flight == 0)──────────> timer released
//	Stop       ──────────────────────────────> timer released, state kept
//	Close      ──────────────────────────────> timer released, state discarded
//
// Fetches inside a pass run concurrently, bounded by Options.Concurrency.
// Results are applied under the Poller's mutex one at a time and passes never
// overlap, so the transitions of a given job are always observed in fetch
// order.
package poller
