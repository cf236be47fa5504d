package memory

import (
	"context"
	"sync"

	"github.com/aretw0/bpmngen/pkg/domain"
)

// Store implements ports.DiagramStore in memory.
// Safe for concurrent use.
type Store struct {
	latest *domain.Diagram
	mu     sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{}
}

// Save keeps a copy of the diagram.
func (s *Store) Save(ctx context.Context, diagram *domain.Diagram) error {
	copied := *diagram

	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = &copied
	return nil
}

// Latest returns a copy of the last saved diagram.
func (s *Store) Latest(ctx context.Context) (*domain.Diagram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return nil, domain.ErrNoDiagram
	}
	ret := *s.latest
	return &ret, nil
}
