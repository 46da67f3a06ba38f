package state

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestStore_RecordSuccess(t *testing.T) {
	var s Store

	before := time.Now()
	s.RecordExchange("s1", nil)

	snap := s.Snapshot()
	if snap.Session != "s1" || !snap.Connected() {
		t.Fatalf("Session = %q, want s1", snap.Session)
	}
	if snap.Exchanges != 1 {
		t.Fatalf("Exchanges = %d, want 1", snap.Exchanges)
	}
	if snap.LastSuccess.Before(before) || snap.LastExchange.Before(before) {
		t.Fatalf("timestamps not updated: %#v", snap)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}
}

func TestStore_FailureKeepsSession(t *testing.T) {
	var s Store

	s.RecordExchange("s1", nil)
	prev := s.Snapshot()

	origErr := errors.New("boom")
	s.RecordExchange("", origErr)

	snap := s.Snapshot()
	if snap.Session != "s1" {
		t.Fatalf("Session = %q, want s1", snap.Session)
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatalf("LastError = %v, want wrapping %v", snap.LastError, origErr)
	}
	if snap.LastSuccess != prev.LastSuccess {
		t.Fatalf("LastSuccess changed on failure")
	}
	if snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("ConsecutiveFailures = %d, IsOffline = %v", snap.ConsecutiveFailures, snap.IsOffline())
	}
}

func TestStore_OfflineAfterTwoFailures(t *testing.T) {
	var s Store
	s.RecordExchange("", errors.New("one"))
	s.RecordExchange("", errors.New("two"))
	if !s.Snapshot().IsOffline() {
		t.Fatalf("IsOffline = false after two failures")
	}

	s.RecordExchange("s2", nil)
	snap := s.Snapshot()
	if snap.IsOffline() || snap.ConsecutiveFailures != 0 {
		t.Fatalf("success did not reset failures: %#v", snap)
	}
	if snap.Session != "s2" {
		t.Fatalf("Session = %q, want rotated s2", snap.Session)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	var s Store
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.RecordExchange("s", nil)
				_ = s.Snapshot()
			}
		}()
	}
	wg.Wait()
	if got := s.Snapshot().Exchanges; got != 200 {
		t.Fatalf("Exchanges = %d, want 200", got)
	}
}
