package cart

import (
	"context"
	"errors"
	"sync"

	domcart "github.com/Zhima-Mochi/minishop-cart/internal/domain/cart"
	"github.com/Zhima-Mochi/minishop-cart/internal/domain/notification"
	domoutbox "github.com/Zhima-Mochi/minishop-cart/internal/domain/outbox"
	"github.com/shopspring/decimal"
)

var errBoom = errors.New("boom")

type fakeInventory struct {
	mu         sync.Mutex
	stock      map[int]int
	products   map[int]domcart.Product
	stockErr   error
	productErr error
	calls      int
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{stock: map[int]int{}, products: map[int]domcart.Product{}}
}

func (f *fakeInventory) withProduct(id, stock int, title, price string) *fakeInventory {
	f.stock[id] = stock
	f.products[id] = domcart.Product{
		ID:       id,
		Title:    title,
		Price:    decimal.RequireFromString(price),
		ImageURL: "https://img.example/" + title + ".jpg",
	}
	return f
}

func (f *fakeInventory) Stock(_ context.Context, id int) (domcart.Stock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.stockErr != nil {
		return domcart.Stock{}, f.stockErr
	}
	amount, ok := f.stock[id]
	if !ok {
		return domcart.Stock{}, domcart.ErrProductNotFound
	}
	return domcart.Stock{ID: id, Amount: amount}, nil
}

func (f *fakeInventory) Product(_ context.Context, id int) (domcart.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.productErr != nil {
		return domcart.Product{}, f.productErr
	}
	p, ok := f.products[id]
	if !ok {
		return domcart.Product{}, domcart.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeInventory) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeStore struct {
	mu       sync.Mutex
	data     []byte
	present  bool
	readErr  error
	writeErr error
	writes   int
}

func (s *fakeStore) Read(context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	if !s.present {
		return nil, domcart.ErrNoSnapshot
	}
	return append([]byte(nil), s.data...), nil
}

func (s *fakeStore) Write(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.data = append([]byte(nil), data...)
	s.present = true
	s.writes++
	return nil
}

func (s *fakeStore) snapshot() (domcart.Cart, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.present {
		return domcart.Empty(), s.writes
	}
	c, err := domcart.Decode(s.data)
	if err != nil {
		panic(err)
	}
	return c, s.writes
}

func seededStore(items ...domcart.Item) *fakeStore {
	c, err := domcart.New(items...)
	if err != nil {
		panic(err)
	}
	data, err := domcart.Encode(c)
	if err != nil {
		panic(err)
	}
	return &fakeStore{data: data, present: true}
}

type notifications struct {
	mu  sync.Mutex
	got []notification.Notification
}

func (n *notifications) Notify(_ context.Context, x notification.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, x)
}

func (n *notifications) kinds() []notification.Kind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification.Kind, 0, len(n.got))
	for _, x := range n.got {
		out = append(out, x.Kind)
	}
	return out
}

type publishedEvents struct {
	mu     sync.Mutex
	events []domoutbox.Event
	err    error
}

func (p *publishedEvents) Publish(_ context.Context, e domoutbox.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *publishedEvents) committed() []domcart.CartCommittedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domcart.CartCommittedEvent
	for _, e := range p.events {
		if c, ok := e.(domcart.CartCommittedEvent); ok {
			out = append(out, c)
		}
	}
	return out
}

func item(id, amount int) domcart.Item {
	return domcart.Item{
		ID:       id,
		Title:    "sneaker",
		Price:    decimal.RequireFromString("139.90"),
		ImageURL: "https://img.example/sneaker.jpg",
		Amount:   amount,
	}
}
