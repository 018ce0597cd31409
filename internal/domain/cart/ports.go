package cart

import "context"

// Inventory looks up stock and catalog data. Any error is treated as the
// service being unavailable for the current operation.
type Inventory interface {
	Stock(ctx context.Context, productID int) (Stock, error)
	Product(ctx context.Context, productID int) (Product, error)
}

// Store holds the last committed serialized cart in a single named slot.
// Read returns ErrNoSnapshot when the slot has never been written.
type Store interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}
