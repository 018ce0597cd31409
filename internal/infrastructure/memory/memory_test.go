package memory

import (
	"context"
	"errors"
	"strings"
	"testing"

	domain "github.com/Zhima-Mochi/minishop-cart/internal/domain/cart"
)

func TestCatalogSeedAndLookups(t *testing.T) {
	c, err := LoadSeed(strings.NewReader(`{
		"products": [{"id": 2, "title": "boot", "price": 249.5, "image": "boot.jpg"}, {"id": 1, "title": "shoe", "price": "99.9", "image": "shoe.jpg"}],
		"stock": [{"id": 1, "amount": 3}, {"id": 2, "amount": 0}]
	}`))
	if err != nil {
		t.Fatalf("load seed: %v", err)
	}
	ctx := context.Background()

	st, err := c.Stock(ctx, 1)
	if err != nil || st.Amount != 3 {
		t.Fatalf("stock 1 = %+v, %v", st, err)
	}
	p, err := c.Product(ctx, 2)
	if err != nil || p.Title != "boot" || p.Price.String() != "249.5" {
		t.Fatalf("product 2 = %+v, %v", p, err)
	}
	if _, err := c.Stock(ctx, 9); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if _, err := c.Product(ctx, 9); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	c.SetStock(2, 7)
	if st, _ := c.Stock(ctx, 2); st.Amount != 7 {
		t.Fatalf("SetStock not applied: %+v", st)
	}

	list := c.Products(ctx)
	if len(list) != 2 || list[0].ID != 1 || list[1].ID != 2 {
		t.Fatalf("products not ordered by id: %+v", list)
	}
}

func TestLoadSeedRejectsGarbage(t *testing.T) {
	if _, err := LoadSeed(strings.NewReader("[")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestDefaultSeedIsConsistent(t *testing.T) {
	s := DefaultSeed()
	if len(s.Products) == 0 || len(s.Products) != len(s.Stock) {
		t.Fatalf("unexpected seed sizes %d/%d", len(s.Products), len(s.Stock))
	}
	c := NewCatalog()
	c.Seed(s)
	for _, p := range s.Products {
		if _, err := c.Stock(context.Background(), p.ID); err != nil {
			t.Fatalf("product %d has no stock: %v", p.ID, err)
		}
	}
}

func TestStoreSlot(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	if _, err := s.Read(ctx); !errors.Is(err, domain.ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}

	payload := []byte(`[{"id":1,"amount":1}]`)
	if err := s.Write(ctx, payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	payload[0] = 'x'

	got, err := s.Read(ctx)
	if err != nil || string(got) != `[{"id":1,"amount":1}]` {
		t.Fatalf("read %q, %v", got, err)
	}
	got[0] = 'y'
	again, _ := s.Read(ctx)
	if again[0] != '[' {
		t.Fatal("read must return a copy")
	}
}
