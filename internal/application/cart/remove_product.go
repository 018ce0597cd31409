package cart

import (
	"context"
	"fmt"

	domcart "github.com/Zhima-Mochi/minishop-cart/internal/domain/cart"
	domoutbox "github.com/Zhima-Mochi/minishop-cart/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
)

const useCaseRemoveProduct = "cart.remove_product"

// RemoveProductUseCase drops a whole line from the cart. It performs no network I/O.
type RemoveProductUseCase struct {
	state     *State
	publisher domoutbox.Publisher
	inst      *instruments
}

func NewRemoveProductUseCase(state *State, publisher domoutbox.Publisher, tel observability.Observability) *RemoveProductUseCase {
	return &RemoveProductUseCase{
		state:     state,
		publisher: publisher,
		inst:      newInstruments(tel),
	}
}

func (uc *RemoveProductUseCase) Execute(ctx context.Context, cmd RemoveProductInput) (res *MutationResult, err error) {
	_, r := uc.inst.begin(ctx, useCaseRemoveProduct, "RemoveProduct", cmd.ProductID)
	defer func() { r.end(res, err) }()

	current := uc.state.Snapshot()
	next := current.Without(cmd.ProductID)
	if next.Len() >= current.Len() {
		r.fail("ITEM_NOT_FOUND")
		return failed(current, fmt.Errorf("product %d: %w", cmd.ProductID, domcart.ErrItemNotFound))
	}

	return commit(r, uc.state, uc.publisher, domcart.OperationRemoveProduct, next)
}
