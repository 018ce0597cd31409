package cart

import (
	"context"
	"errors"
	"testing"

	domcart "github.com/Zhima-Mochi/minishop-cart/internal/domain/cart"
)

func TestLoad(t *testing.T) {
	cases := []struct {
		name    string
		store   *fakeStore
		want    int
		wantErr error
	}{
		{name: "absent slot", store: &fakeStore{}, want: 0},
		{name: "blank slot", store: &fakeStore{data: []byte("  \n"), present: true}, want: 0},
		{name: "persisted cart", store: seededStore(item(1, 2), item(2, 1)), want: 2},
		{name: "corrupt slot", store: &fakeStore{data: []byte("{not json"), present: true}, wantErr: domcart.ErrCorruptSnapshot},
		{name: "read failure", store: &fakeStore{readErr: errBoom}, wantErr: errBoom},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, err := Load(context.Background(), tc.store)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if got := s.Snapshot().Len(); got != tc.want {
				t.Fatalf("expected %d items, got %d", tc.want, got)
			}
		})
	}
}

func TestCommitWritesBeforeSwap(t *testing.T) {
	store := &fakeStore{}
	s, err := Load(context.Background(), store)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	next, _ := domcart.Empty().Append(item(4, 1))

	store.writeErr = errBoom
	if err := s.Commit(context.Background(), next); !errors.Is(err, domcart.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if s.Snapshot().Len() != 0 {
		t.Fatal("failed commit must not swap the snapshot")
	}

	store.writeErr = nil
	if err := s.Commit(context.Background(), next); err != nil {
		t.Fatalf("commit: %v", err)
	}
	persisted, writes := store.snapshot()
	if writes != 1 || !persisted.Equal(s.Snapshot()) {
		t.Fatalf("store and memory diverged after commit")
	}
}
