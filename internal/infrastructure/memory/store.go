package memory

import (
	"context"
	"sync"

	domain "github.com/Zhima-Mochi/minishop-cart/internal/domain/cart"
)

// Store is a process-local cart slot. Contents are lost on exit.
type Store struct {
	mu      sync.RWMutex
	data    []byte
	present bool
}

var _ domain.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Read(ctx context.Context) ([]byte, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.present {
		return nil, domain.ErrNoSnapshot
	}
	return cloneBytes(s.data), nil
}

func (s *Store) Write(ctx context.Context, data []byte) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = cloneBytes(data)
	s.present = true
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return append([]byte(nil), b...)
}
