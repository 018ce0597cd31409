package cart

import "errors"

var (
	ErrInvalidAmount        = errors.New("cart: amount must be at least one")
	ErrInsufficientStock    = errors.New("cart: insufficient stock")
	ErrItemNotFound         = errors.New("cart: item not found")
	ErrDuplicateItem        = errors.New("cart: item already in cart")
	ErrProductNotFound      = errors.New("cart: product not found")
	ErrInventoryUnavailable = errors.New("cart: inventory unavailable")
	ErrPersistence          = errors.New("cart: persistence failure")
	ErrNoSnapshot           = errors.New("cart: no persisted snapshot")
	ErrCorruptSnapshot      = errors.New("cart: corrupt snapshot")
)

const (
	FailureReasonValidation        = "validation"
	FailureReasonInsufficientStock = "insufficient_stock"
	FailureReasonNotFound          = "not_found"
	FailureReasonInventory         = "inventory_error"
	FailureReasonPersistence       = "persist_error"
	FailureReasonInternal          = "internal"
)

// FailureReason maps an error returned by a cart mutation to a low-cardinality reason.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidAmount):
		return FailureReasonValidation
	case errors.Is(err, ErrInsufficientStock):
		return FailureReasonInsufficientStock
	case errors.Is(err, ErrItemNotFound), errors.Is(err, ErrProductNotFound):
		return FailureReasonNotFound
	case errors.Is(err, ErrInventoryUnavailable):
		return FailureReasonInventory
	case errors.Is(err, ErrPersistence):
		return FailureReasonPersistence
	default:
		return FailureReasonInternal
	}
}
