package state

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/gradehoraria/gradewatch/internal/gradeapi"
)

// Snapshot represents the latest grade list available to the UI.
type Snapshot struct {
	Grades              []gradeapi.Grade
	HasGrades           bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the API has been unreachable for multiple refreshes.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored grade list. When err is non-nil the previous
// data is kept but the error is recorded for visibility.
func (s *Store) Update(grades []gradeapi.Grade, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Grades = cloneGrades(grades)
	s.snapshot.HasGrades = true
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// SetStatus patches the status of one grade in place, e.g. after the poller
// observed a transition before the next list refresh.
func (s *Store) SetStatus(id string, status gradeapi.Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.snapshot.Grades {
		if s.snapshot.Grades[i].ID == id {
			s.snapshot.Grades[i].Status = status
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Grades = cloneGrades(s.snapshot.Grades)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneGrades(grades []gradeapi.Grade) []gradeapi.Grade {
	if len(grades) == 0 {
		return nil
	}
	dup := make([]gradeapi.Grade, len(grades))
	for i, g := range grades {
		g.TurmaIDs = slices.Clone(g.TurmaIDs)
		g.Errors = slices.Clone(g.Errors)
		dup[i] = g
	}
	return dup
}
