package cart

import "time"

const (
	OperationAddProduct          = "add_product"
	OperationRemoveProduct       = "remove_product"
	OperationUpdateProductAmount = "update_product_amount"
)

// CartCommittedEvent is emitted after a mutation has been persisted and applied.
type CartCommittedEvent struct {
	Operation  string
	ProductID  int
	Items      int
	Quantity   int
	OccurredAt time.Time
}

func (CartCommittedEvent) EventName() string { return "cart.committed" }

func NewCartCommittedEvent(operation string, productID int, c Cart) CartCommittedEvent {
	return CartCommittedEvent{
		Operation:  operation,
		ProductID:  productID,
		Items:      c.Len(),
		Quantity:   c.Quantity(),
		OccurredAt: time.Now().UTC(),
	}
}
