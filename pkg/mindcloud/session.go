package mindcloud

import "sync"

// Session is per-visitor state shared by every Cloud a visitor opens. It
// replaces a process-wide "intro played" flag, so separate visitors (or
// separate server-side renders) never leak into each other.
type Session struct {
	mu          sync.Mutex
	introPlayed bool
}

// NewSession returns a session whose intro has not played.
func NewSession() *Session { return &Session{} }

// PlayedSession returns a session whose intro already played. Clouds using
// it start settled, which is what snapshots and tests want.
func PlayedSession() *Session { return &Session{introPlayed: true} }

// IntroPlayed reports whether a cloud in this session played its intro.
func (s *Session) IntroPlayed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.introPlayed
}

// MarkIntroPlayed records the intro and reports whether this call was the
// first, i.e. whether the caller should play it.
func (s *Session) MarkIntroPlayed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.introPlayed {
		return false
	}
	s.introPlayed = true
	return true
}
