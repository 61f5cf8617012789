package engine

import (
	"sync"

	"github.com/talgya/usa-sim/internal/polity"
)

// Session serializes every call on one simulation. The tick sequence reads
// and writes the whole aggregate, so all access goes through a single lock.
type Session struct {
	mu sync.Mutex
	us *UnitedStates
}

// NewSession wraps us.
func NewSession(us *UnitedStates) *Session {
	return &Session{us: us}
}

// Do runs fn with exclusive access to the simulation. fn must not retain us.
func (s *Session) Do(fn func(us *UnitedStates) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.us)
}

// View runs fn with exclusive access for reads that cannot fail.
func (s *Session) View(fn func(us *UnitedStates)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.us)
}

// Update is View for changes that cannot fail.
func (s *Session) Update(fn func(us *UnitedStates)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.us)
}

// Step advances one month and reports whether it opened a new year.
func (s *Session) Step() (newYear bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.us.AdvanceTurn(1)
	return s.us.Month == 1
}

// Advance runs months ticks and returns the resulting snapshot.
func (s *Session) Advance(months, lastLogs int) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.us.AdvanceTurn(months)
	return s.us.Snapshot(lastLogs)
}

// Snapshot returns a display view of the current state.
func (s *Session) Snapshot(lastLogs int) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.us.Snapshot(lastLogs)
}

// TriggerEvent draws and applies one event, returning nil if none fired.
func (s *Session) TriggerEvent() *polity.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.us.TriggerEvent()
}

// AttemptPolicy puts p before Congress, or before the named state's
// legislature when state is non-empty. ok is false for an unknown state.
func (s *Session) AttemptPolicy(p polity.Policy, state string) (passed, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state == "" {
		return s.us.AttemptPassPolicy(p), true
	}
	st, found := s.us.State(state)
	if !found {
		return false, false
	}
	return s.us.AttemptPassStatePolicy(st, p), true
}

// Marshal serializes the simulation under the lock.
func (s *Session) Marshal() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.us.Marshal()
}

// Log returns a copy of the full in-game log.
func (s *Session) Log() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.us.Log...)
}

// Catalog returns the registered events.
func (s *Session) Catalog() []CatalogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.us.Events.Catalog()
}

// Replace swaps in a restored simulation. Hooks move over from the old one
// since they are never persisted.
func (s *Session) Replace(us *UnitedStates) {
	s.mu.Lock()
	defer s.mu.Unlock()
	us.Hooks = s.us.Hooks
	s.us = us
}

// SetHooks installs observers on the current simulation.
func (s *Session) SetHooks(h Hooks) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.us.Hooks = h
}
