package cart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	domcart "github.com/Zhima-Mochi/minishop-cart/internal/domain/cart"
)

// State owns the current cart snapshot and its persisted copy.
//
// Commit writes the store and swaps the in-memory snapshot under one lock, so
// readers never observe one without the other. State does not serialize whole
// operations: two overlapping mutations may both start from the same snapshot
// and the later commit wins.
type State struct {
	mu    sync.RWMutex
	cart  domcart.Cart
	store domcart.Store
}

// Load restores the cart from store. An absent or empty slot yields an empty
// cart; a slot that cannot be decoded is returned as an error.
func Load(ctx context.Context, store domcart.Store) (*State, error) {
	if store == nil {
		return nil, errors.New("cart: store is required")
	}
	data, err := store.Read(ctx)
	switch {
	case errors.Is(err, domcart.ErrNoSnapshot):
		return &State{cart: domcart.Empty(), store: store}, nil
	case err != nil:
		return nil, fmt.Errorf("cart: read snapshot: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &State{cart: domcart.Empty(), store: store}, nil
	}
	c, err := domcart.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("cart: load snapshot: %w", err)
	}
	return &State{cart: c, store: store}, nil
}

// Snapshot returns the current cart.
func (s *State) Snapshot() domcart.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart
}

// Commit persists next and makes it the current cart. On error nothing changes.
func (s *State) Commit(ctx context.Context, next domcart.Cart) error {
	data, err := domcart.Encode(next)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", domcart.ErrPersistence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Write(ctx, data); err != nil {
		return fmt.Errorf("%w: %w", domcart.ErrPersistence, err)
	}
	s.cart = next
	return nil
}
