package store

import "github.com/dmitrijs2005/syncdraft/internal/client/models"

// OpenAIPanel opens the panel for mode and starts a new session with an empty
// result. Output of earlier sessions is ignored from now on.
func (s *Store) OpenAIPanel(mode models.AIMode) models.AISession {
	s.mu.Lock()
	session := s.ai.Session + 1
	s.ai = models.AIPanelState{IsOpen: true, Mode: mode, Session: session}
	s.mu.Unlock()

	s.notify()
	return session
}

// AppendAIResult appends chunk to the result of session. It reports false,
// changing nothing, when session is no longer current.
func (s *Store) AppendAIResult(session models.AISession, chunk string) bool {
	s.mu.Lock()
	if !s.currentSessionLocked(session) {
		s.mu.Unlock()
		return false
	}
	s.ai.Result += chunk
	s.mu.Unlock()

	s.notify()
	return true
}

func (s *Store) SetAIStreaming(session models.AISession, streaming bool) bool {
	s.mu.Lock()
	if !s.currentSessionLocked(session) {
		s.mu.Unlock()
		return false
	}
	s.ai.IsStreaming = streaming
	s.mu.Unlock()

	s.notify()
	return true
}

// CloseAIPanel hides the panel and ends its session.
func (s *Store) CloseAIPanel() {
	s.mu.Lock()
	s.ai.IsOpen = false
	s.ai.IsStreaming = false
	s.mu.Unlock()

	s.notify()
}

func (s *Store) AIPanel() models.AIPanelState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ai
}

func (s *Store) currentSessionLocked(session models.AISession) bool {
	return s.ai.IsOpen && session != 0 && session == s.ai.Session
}
