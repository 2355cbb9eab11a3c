package stage

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage keeps chat stages in a process-local map. Stages are lost on
// restart, which matches the conversation ownership model; only game files
// are durable.
type MemoryStorage struct {
	mu     sync.RWMutex
	stages map[int64]*ChatStage
}

// NewMemoryStorage initializes an in-memory Storage implementation.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		stages: make(map[int64]*ChatStage),
	}
}

// GetStage returns the stored stage for the chat.
func (s *MemoryStorage) GetStage(_ context.Context, chatID int64) (*ChatStage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.stages[chatID]
	if !ok {
		return nil, ErrStageNotFound
	}

	copied := *stored
	return &copied, nil
}

// SetStage saves the stage for the chat.
func (s *MemoryStorage) SetStage(_ context.Context, chatID int64, chatStage *ChatStage) error {
	copied := *chatStage
	copied.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stages[chatID] = &copied
	return nil
}

// ClearStage removes the stage for the chat.
func (s *MemoryStorage) ClearStage(_ context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.stages, chatID)
	return nil
}

// AllStages returns every stored chat stage.
func (s *MemoryStorage) AllStages(_ context.Context) ([]*ChatStage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*ChatStage, 0, len(s.stages))
	for _, stored := range s.stages {
		copied := *stored
		all = append(all, &copied)
	}

	return all, nil
}
