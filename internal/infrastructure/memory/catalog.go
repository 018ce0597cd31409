package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"sync"

	domain "github.com/Zhima-Mochi/minishop-cart/internal/domain/cart"
	"github.com/shopspring/decimal"
)

// Seed is a json-server style inventory document.
type Seed struct {
	Products []domain.Product `json:"products"`
	Stock    []domain.Stock   `json:"stock"`
}

// Catalog is an in-memory inventory: products plus their available stock.
type Catalog struct {
	mu       sync.RWMutex
	products map[int]domain.Product
	stock    map[int]int
}

var _ domain.Inventory = (*Catalog)(nil)

func NewCatalog() *Catalog {
	return &Catalog{
		products: make(map[int]domain.Product),
		stock:    make(map[int]int),
	}
}

// LoadSeed decodes a seed document from r into a new catalog.
func LoadSeed(r io.Reader) (*Catalog, error) {
	var seed Seed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return nil, fmt.Errorf("catalog seed: %w", err)
	}
	c := NewCatalog()
	c.Seed(seed)
	return c, nil
}

// Seed merges products and stock into the catalog, replacing existing ids.
func (c *Catalog) Seed(s Seed) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range s.Products {
		c.products[p.ID] = p
	}
	for _, st := range s.Stock {
		c.stock[st.ID] = st.Amount
	}
}

func (c *Catalog) SetStock(productID, amount int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stock[productID] = amount
}

func (c *Catalog) Stock(ctx context.Context, productID int) (domain.Stock, error) {
	_ = ctx

	c.mu.RLock()
	defer c.mu.RUnlock()

	amount, ok := c.stock[productID]
	if !ok {
		return domain.Stock{}, fmt.Errorf("stock %d: %w", productID, domain.ErrProductNotFound)
	}
	return domain.Stock{ID: productID, Amount: amount}, nil
}

func (c *Catalog) Product(ctx context.Context, productID int) (domain.Product, error) {
	_ = ctx

	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[productID]
	if !ok {
		return domain.Product{}, fmt.Errorf("product %d: %w", productID, domain.ErrProductNotFound)
	}
	return p, nil
}

// Products lists the catalog ordered by id.
func (c *Catalog) Products(ctx context.Context) []domain.Product {
	_ = ctx

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b domain.Product) int { return a.ID - b.ID })
	return out
}

// DefaultSeed is the demo catalog served when no seed file is configured.
func DefaultSeed() Seed {
	products := []struct {
		title, price, image string
		stock               int
	}{
		{"Tênis de Caminhada Leve Confortável", "179.9", "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis1.jpg", 3},
		{"Tênis VR Caminhada Confortável Detalhes Couro Masculino", "139.9", "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis2.jpg", 5},
		{"Tênis Adidas Duramo Lite 2.0", "219.9", "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis3.jpg", 2},
		{"Tênis VR Caminhada Confortável Detalhes Couro Masculino", "139.9", "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis2.jpg", 1},
		{"Tênis VR Caminhada Confortável Detalhes Couro Masculino", "139.9", "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis2.jpg", 5},
		{"Tênis de Caminhada Leve Confortável", "179.9", "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis1.jpg", 10},
	}
	var s Seed
	for i, p := range products {
		id := i + 1
		s.Products = append(s.Products, domain.Product{
			ID:       id,
			Title:    p.title,
			Price:    decimal.RequireFromString(p.price),
			ImageURL: p.image,
		})
		s.Stock = append(s.Stock, domain.Stock{ID: id, Amount: p.stock})
	}
	return s
}
