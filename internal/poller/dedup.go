package poller

// notifiedSet records the ids whose terminal notification was already emitted.
// It is not safe for concurrent use; the Poller guards it with its mutex.
type notifiedSet map[string]struct{}

func (s notifiedSet) shouldNotify(id string) bool {
	_, done := s[id]
	return !done
}

func (s notifiedSet) markNotified(id string) {
	s[id] = struct{}{}
}

// forget drops every piece of bookkeeping held for id.
func (p *Poller) forget(id string) {
	delete(p.lastKnown, id)
	delete(p.notified, id)
}
