package cart

import (
	"context"
	"fmt"

	domcart "github.com/Zhima-Mochi/minishop-cart/internal/domain/cart"
	domoutbox "github.com/Zhima-Mochi/minishop-cart/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
	"go.opentelemetry.io/otel/attribute"
)

const useCaseUpdateProductAmount = "cart.update_product_amount"

// UpdateProductAmountUseCase moves a line one unit toward the requested amount.
//
// The line is nudged by exactly one unit per call, never set to Amount
// directly. Callers that want to jump several units must call repeatedly.
type UpdateProductAmountUseCase struct {
	state     *State
	inventory domcart.Inventory
	publisher domoutbox.Publisher
	inst      *instruments
}

func NewUpdateProductAmountUseCase(state *State, inventory domcart.Inventory, publisher domoutbox.Publisher, tel observability.Observability) *UpdateProductAmountUseCase {
	return &UpdateProductAmountUseCase{
		state:     state,
		inventory: inventory,
		publisher: publisher,
		inst:      newInstruments(tel),
	}
}

func (uc *UpdateProductAmountUseCase) Execute(ctx context.Context, cmd UpdateProductAmountInput) (res *MutationResult, err error) {
	ctx, r := uc.inst.begin(ctx, useCaseUpdateProductAmount, "UpdateProductAmount", cmd.ProductID,
		attribute.Int("cart.requested_amount", cmd.Amount),
	)
	defer func() { r.end(res, err) }()

	current := uc.state.Snapshot()
	if cmd.Amount < 1 {
		r.fail("AMOUNT_INVALID")
		return failed(current, fmt.Errorf("validation: amount %d: %w", cmd.Amount, domcart.ErrInvalidAmount))
	}

	stock, err := callInventory(ctx, r, endpointStock, func(ctx context.Context) (domcart.Stock, error) {
		return uc.inventory.Stock(ctx, cmd.ProductID)
	})
	if err != nil {
		r.fail("STOCK_LOOKUP_FAILED")
		return failed(current, fmt.Errorf("%w: stock %d: %w", domcart.ErrInventoryUnavailable, cmd.ProductID, err))
	}
	r.span.SetAttributes(attribute.Int("stock.amount", stock.Amount))

	item, ok := current.Find(cmd.ProductID)
	if !ok {
		// Nothing to adjust; the unchanged cart is still written back.
		r.status = "NO_MATCHING_ITEM"
		return commit(r, uc.state, uc.publisher, domcart.OperationUpdateProductAmount, current)
	}

	var next domcart.Cart
	switch {
	case cmd.Amount > item.Amount && stock.Allows(cmd.Amount):
		next, err = current.Increment(cmd.ProductID)
	case cmd.Amount < item.Amount && stock.Allows(cmd.Amount):
		next, err = current.Decrement(cmd.ProductID)
	default:
		r.fail("INSUFFICIENT_STOCK")
		return failed(current, fmt.Errorf("product %d: requested %d, %d in cart, %d in stock: %w",
			cmd.ProductID, cmd.Amount, item.Amount, stock.Amount, domcart.ErrInsufficientStock))
	}
	if err != nil {
		r.fail("ADJUST_FAILED")
		return failed(current, err)
	}

	return commit(r, uc.state, uc.publisher, domcart.OperationUpdateProductAmount, next)
}
