// Package session holds the process-wide game selection shared by every chat.
package session

import "sync"

// State records which game is selected and whether it is running. There is
// exactly one selection for the whole process; it is passed explicitly to
// handlers rather than living in ambient globals, which makes the sharing
// visible and testable.
type State struct {
	mu       sync.RWMutex
	selected string
	hasGame  bool
	running  bool
}

// New returns an empty session: no selection, not running.
func New() *State {
	return &State{}
}

// Selected returns the selected game name and whether one is set.
func (s *State) Selected() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected, s.hasGame
}

// Select records the game as selected and stops it. Selecting always resets
// running; a freshly created or loaded game starts stopped.
func (s *State) Select(game string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = game
	s.hasGame = true
	s.running = false
}

// ClearSelection unsets the selection. The running flag is deliberately left
// alone: it is coupled only to the explicit start/stop/select transitions
// and is never re-derived from game existence.
func (s *State) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = ""
	s.hasGame = false
}

// Running reports whether the selected game is running.
func (s *State) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// SetRunning flips the running flag.
func (s *State) SetRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = running
}

// Snapshot returns a consistent view of the whole session.
func (s *State) Snapshot() (game string, hasGame, running bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected, s.hasGame, s.running
}
