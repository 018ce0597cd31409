package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindInsufficientStock Kind = "insufficient_stock"
	KindAddFailed         Kind = "add_failed"
	KindRemoveFailed      Kind = "remove_failed"
	KindUpdateFailed      Kind = "update_failed"
)

var messages = map[Kind]string{
	KindInsufficientStock: "Requested quantity is out of stock",
	KindAddFailed:         "Failed to add product",
	KindRemoveFailed:      "Failed to remove product",
	KindUpdateFailed:      "Failed to update product amount",
}

// Message returns the user-facing text for k.
func (k Kind) Message() string {
	if m, ok := messages[k]; ok {
		return m
	}
	return string(k)
}

// Notification is an error-only signal surfaced to the UI. It carries no
// payload beyond a readable message and the product it refers to.
type Notification struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	Message    string    `json:"message"`
	ProductID  int       `json:"product_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func New(kind Kind, productID int) Notification {
	return Notification{
		ID:         uuid.NewString(),
		Kind:       kind,
		Message:    kind.Message(),
		ProductID:  productID,
		OccurredAt: time.Now().UTC(),
	}
}

// Notifier delivers notifications. Implementations must not block the caller
// on slow consumers and have no way to report failure back.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }
