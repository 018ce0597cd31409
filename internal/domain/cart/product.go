package cart

import "github.com/shopspring/decimal"

// Product is catalog data; the cart never modifies it.
type Product struct {
	ID       int             `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image"`
}

// Stock is the available quantity reported by the inventory service.
type Stock struct {
	ID     int `json:"id"`
	Amount int `json:"amount"`
}

// Allows reports whether amount units fit into the available stock.
func (s Stock) Allows(amount int) bool {
	return amount <= s.Amount
}
