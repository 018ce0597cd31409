package cart

import (
	domcart "github.com/Zhima-Mochi/minishop-cart/internal/domain/cart"
)

type AddProductInput struct {
	ProductID int
}

type RemoveProductInput struct {
	ProductID int
}

type UpdateProductAmountInput struct {
	ProductID int
	Amount    int
}

// MutationResult is the explicit outcome of a cart use case. Cart is the
// snapshot after the call: the committed cart on success, the untouched
// current cart otherwise.
type MutationResult struct {
	Committed     bool
	Cart          domcart.Cart
	FailureReason string
}

func failed(current domcart.Cart, err error) (*MutationResult, error) {
	return &MutationResult{
		Cart:          current,
		FailureReason: domcart.FailureReason(err),
	}, err
}
