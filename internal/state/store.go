package state

import (
	"fmt"
	"sync"
	"time"
)

// Snapshot represents the transport health visible to the UI.
type Snapshot struct {
	Session             string
	Exchanges           uint64
	LastExchange        time.Time
	LastSuccess         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the server has been unreachable for multiple exchanges.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Connected reports whether a session was ever established.
func (s Snapshot) Connected() bool {
	return s.Session != ""
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// RecordExchange stores the outcome of one HTTP exchange. When err is
// non-nil the session is kept and the failure is counted.
func (s *Store) RecordExchange(session string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.snapshot.Exchanges++
	s.snapshot.LastExchange = now

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}

	if session != "" {
		s.snapshot.Session = session
	}
	s.snapshot.LastError = nil
	s.snapshot.LastSuccess = now
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}
