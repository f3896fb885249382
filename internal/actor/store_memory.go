package actor

import (
	"context"
	"strings"
	"sync"

	"cargotrace/pkg/domain"
	"cargotrace/pkg/platform/sentinel"
)

// InMemory is the development and test store.
type InMemory struct {
	mu      sync.RWMutex
	byID    map[domain.ActorID]*Actor
	byEmail map[string]*Actor
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:    make(map[domain.ActorID]*Actor),
		byEmail: make(map[string]*Actor),
	}
}

func (s *InMemory) Create(_ context.Context, a *Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(a.Email)
	if _, ok := s.byEmail[email]; ok {
		return sentinel.ErrAlreadyUsed
	}

	clone := *a
	clone.PasswordHash = append([]byte(nil), a.PasswordHash...)
	s.byID[a.ID] = &clone
	s.byEmail[email] = &clone
	return nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*Actor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (s *InMemory) FindByID(_ context.Context, id domain.ActorID) (*Actor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *a
	return &clone, nil
}
