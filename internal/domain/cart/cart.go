package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// Item is a product line in the cart.
type Item struct {
	ID       int             `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image"`
	Amount   int             `json:"amount"`
}

// NewItem builds a cart line holding a single unit of p.
func NewItem(p Product) Item {
	return Item{
		ID:       p.ID,
		Title:    p.Title,
		Price:    p.Price,
		ImageURL: p.ImageURL,
		Amount:   1,
	}
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Amount)))
}

// MarshalJSON writes the price as a JSON number, as the storage slot holds it.
// Decoding accepts both numbers and quoted strings.
func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID       int         `json:"id"`
		Title    string      `json:"title"`
		Price    json.Number `json:"price"`
		ImageURL string      `json:"image"`
		Amount   int         `json:"amount"`
	}{i.ID, i.Title, json.Number(i.Price.String()), i.ImageURL, i.Amount})
}

// Cart is an immutable, ordered snapshot of items with unique ids.
// Every transformation returns a new Cart and leaves the receiver untouched.
type Cart struct {
	items []Item
}

// Empty returns a cart without items.
func Empty() Cart { return Cart{} }

// New validates items and returns them as a cart in the given order.
func New(items ...Item) (Cart, error) {
	seen := make(map[int]struct{}, len(items))
	for _, it := range items {
		if it.Amount < 1 {
			return Cart{}, fmt.Errorf("item %d: %w", it.ID, ErrInvalidAmount)
		}
		if _, dup := seen[it.ID]; dup {
			return Cart{}, fmt.Errorf("item %d: %w", it.ID, ErrDuplicateItem)
		}
		seen[it.ID] = struct{}{}
	}
	return Cart{items: slices.Clone(items)}, nil
}

func (c Cart) Len() int { return len(c.items) }

// Items returns a copy of the cart lines.
func (c Cart) Items() []Item {
	if len(c.items) == 0 {
		return []Item{}
	}
	return slices.Clone(c.items)
}

func (c Cart) index(id int) int {
	return slices.IndexFunc(c.items, func(it Item) bool { return it.ID == id })
}

func (c Cart) Find(id int) (Item, bool) {
	if i := c.index(id); i >= 0 {
		return c.items[i], true
	}
	return Item{}, false
}

func (c Cart) Contains(id int) bool { return c.index(id) >= 0 }

// Append adds a new line at the end of the cart.
func (c Cart) Append(it Item) (Cart, error) {
	if it.Amount < 1 {
		return c, ErrInvalidAmount
	}
	if c.Contains(it.ID) {
		return c, ErrDuplicateItem
	}
	next := make([]Item, len(c.items), len(c.items)+1)
	copy(next, c.items)
	return Cart{items: append(next, it)}, nil
}

// WithAmount returns a copy of the cart with the line id set to amount.
func (c Cart) WithAmount(id, amount int) (Cart, error) {
	if amount < 1 {
		return c, ErrInvalidAmount
	}
	i := c.index(id)
	if i < 0 {
		return c, ErrItemNotFound
	}
	next := slices.Clone(c.items)
	next[i].Amount = amount
	return Cart{items: next}, nil
}

// Increment adds one unit to the line id.
func (c Cart) Increment(id int) (Cart, error) {
	it, ok := c.Find(id)
	if !ok {
		return c, ErrItemNotFound
	}
	return c.WithAmount(id, it.Amount+1)
}

// Decrement removes one unit from the line id; a line never drops below one unit.
func (c Cart) Decrement(id int) (Cart, error) {
	it, ok := c.Find(id)
	if !ok {
		return c, ErrItemNotFound
	}
	return c.WithAmount(id, it.Amount-1)
}

// Without returns the cart minus the line id. The result has the same length
// as the receiver when id is not in the cart.
func (c Cart) Without(id int) Cart {
	next := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		if it.ID != id {
			next = append(next, it)
		}
	}
	return Cart{items: next}
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Quantity is the sum of all line amounts.
func (c Cart) Quantity() int {
	n := 0
	for _, it := range c.items {
		n += it.Amount
	}
	return n
}

func (c Cart) Equal(o Cart) bool {
	return slices.EqualFunc(c.items, o.items, func(a, b Item) bool {
		return a.ID == b.ID &&
			a.Title == b.Title &&
			a.Price.Equal(b.Price) &&
			a.ImageURL == b.ImageURL &&
			a.Amount == b.Amount
	})
}

func (c Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Items())
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	decoded, err := New(items...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	*c = decoded
	return nil
}

// Encode serializes the cart in the persisted snapshot format.
func Encode(c Cart) ([]byte, error) {
	return json.Marshal(c)
}

// Decode parses a persisted snapshot.
func Decode(data []byte) (Cart, error) {
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		if errors.Is(err, ErrCorruptSnapshot) {
			return Cart{}, err
		}
		return Cart{}, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	return c, nil
}
