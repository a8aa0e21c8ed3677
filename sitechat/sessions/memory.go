package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Everything is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return clone(s), nil
}

func (m *MemoryStore) Put(_ context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("session id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	stored := clone(s)
	stored.ChatHistory = []Turn{}
	stored.UpdatedAt = now
	if prev, ok := m.sessions[s.ID]; ok {
		stored.CreatedAt = prev.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	m.sessions[s.ID] = stored
	return nil
}

func (m *MemoryStore) AppendTurns(_ context.Context, id string, turns ...Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	s.ChatHistory = append(s.ChatHistory, turns...)
	s.UpdatedAt = time.Now()
	return nil
}

func clone(s *Session) *Session {
	c := *s
	c.ChatHistory = append([]Turn(nil), s.ChatHistory...)
	if c.ChatHistory == nil {
		c.ChatHistory = []Turn{}
	}
	return &c
}
