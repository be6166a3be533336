package conversation

import (
	"sync"

	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/models"
)

// Selection binds the conversation the agent opened to the live cache, so the
// view always shows the freshest copy the cache has.
type Selection struct {
	cache *Cache

	mu   sync.RWMutex
	held *models.Conversation
}

func NewSelection(cache *Cache) *Selection {
	return &Selection{cache: cache}
}

// Select holds conv as the opened conversation
func (s *Selection) Select(conv models.Conversation) {
	held := conv.Clone()

	s.mu.Lock()
	s.held = &held
	s.mu.Unlock()
}

// Clear drops the selection
func (s *Selection) Clear() {
	s.mu.Lock()
	s.held = nil
	s.mu.Unlock()
}

// SelectedID returns the id of the held conversation, or "" when none
func (s *Selection) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.held == nil {
		return ""
	}
	return s.held.ID
}

// Current returns the cache entry matching the selection. The held snapshot
// is used only while the cache lacks that id.
func (s *Selection) Current() (models.Conversation, bool) {
	s.mu.RLock()
	held := s.held
	s.mu.RUnlock()

	if held == nil {
		return models.Conversation{}, false
	}
	if conv, ok := s.cache.Get(held.ID); ok {
		return conv, true
	}
	return held.Clone(), true
}
