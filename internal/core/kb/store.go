package kb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/agent-console/internal/modules/console/models"
)

var ErrNotFound = errors.New("knowledge base entry not found")

// Source is the part of the backend client the store depends on
type Source interface {
	ListKnowledgeBase(ctx context.Context) ([]models.KnowledgeBaseEntry, error)
	CreateKnowledgeEntry(ctx context.Context, entry models.KnowledgeBaseEntry) (models.KnowledgeBaseEntry, error)
	UpdateKnowledgeEntry(ctx context.Context, id string, entry models.KnowledgeBaseEntry) (models.KnowledgeBaseEntry, error)
	DeleteKnowledgeEntry(ctx context.Context, id string) (bool, error)
}

// Store is the local copy of the knowledge base. Writes go to the backend
// first and touch the local list only after the backend confirmed them.
type Store struct {
	src Source

	mu      sync.RWMutex
	entries []models.KnowledgeBaseEntry
	err     error
}

func NewStore(src Source) *Store {
	return &Store{src: src}
}

// Load replaces the local list with the backend's
func (s *Store) Load(ctx context.Context) error {
	entries, err := s.src.ListKnowledgeBase(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.err = err
		log.Warn().Err(err).Msg("knowledge base load failed")
		return err
	}
	s.entries = entries
	s.err = nil
	return nil
}

func (s *Store) Create(ctx context.Context, entry models.KnowledgeBaseEntry) (models.KnowledgeBaseEntry, error) {
	if err := validate(entry); err != nil {
		return models.KnowledgeBaseEntry{}, err
	}

	created, err := s.src.CreateKnowledgeEntry(ctx, entry)
	if err != nil {
		s.setErr(err)
		return models.KnowledgeBaseEntry{}, err
	}

	s.mu.Lock()
	s.entries = append(s.entries, created)
	s.mu.Unlock()
	return created, nil
}

func (s *Store) Update(ctx context.Context, id string, entry models.KnowledgeBaseEntry) (models.KnowledgeBaseEntry, error) {
	if err := validate(entry); err != nil {
		return models.KnowledgeBaseEntry{}, err
	}

	updated, err := s.src.UpdateKnowledgeEntry(ctx, id, entry)
	if err != nil {
		s.setErr(err)
		return models.KnowledgeBaseEntry{}, err
	}
	if updated.ID == "" {
		updated.ID = id
	}

	s.mu.Lock()
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i] = updated
			break
		}
	}
	s.mu.Unlock()
	return updated, nil
}

// Delete removes the entry remotely and then locally. ErrNotFound means the
// backend had no such entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	ok, err := s.src.DeleteKnowledgeEntry(ctx, id)
	if err != nil {
		s.setErr(err)
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.mu.Lock()
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// Search matches term case-insensitively against question, answer and tags.
// An empty term returns every entry.
func (s *Store) Search(term string) []models.KnowledgeBaseEntry {
	term = strings.ToLower(strings.TrimSpace(term))

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.KnowledgeBaseEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if term == "" || matches(e, term) {
			out = append(out, e)
		}
	}
	return out
}

func matches(e models.KnowledgeBaseEntry, term string) bool {
	if strings.Contains(strings.ToLower(e.KeyQuestion), term) ||
		strings.Contains(strings.ToLower(e.Answer), term) {
		return true
	}
	for _, tag := range e.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// Entries returns a copy of the local list
func (s *Store) Entries() []models.KnowledgeBaseEntry {
	return s.Search("")
}

func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Store) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func validate(entry models.KnowledgeBaseEntry) error {
	if strings.TrimSpace(entry.KeyQuestion) == "" {
		return errors.New("key question is required")
	}
	if strings.TrimSpace(entry.Answer) == "" {
		return errors.New("answer is required")
	}
	return nil
}
