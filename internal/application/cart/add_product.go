package cart

import (
	"context"
	"fmt"

	domcart "github.com/Zhima-Mochi/minishop-cart/internal/domain/cart"
	domoutbox "github.com/Zhima-Mochi/minishop-cart/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
	"go.opentelemetry.io/otel/attribute"
)

const useCaseAddProduct = "cart.add_product"

// AddProductUseCase adds one unit of a product, merging with an existing line.
type AddProductUseCase struct {
	state     *State
	inventory domcart.Inventory
	publisher domoutbox.Publisher
	inst      *instruments
}

func NewAddProductUseCase(state *State, inventory domcart.Inventory, publisher domoutbox.Publisher, tel observability.Observability) *AddProductUseCase {
	return &AddProductUseCase{
		state:     state,
		inventory: inventory,
		publisher: publisher,
		inst:      newInstruments(tel),
	}
}

func (uc *AddProductUseCase) Execute(ctx context.Context, cmd AddProductInput) (res *MutationResult, err error) {
	ctx, r := uc.inst.begin(ctx, useCaseAddProduct, "AddProduct", cmd.ProductID)
	defer func() { r.end(res, err) }()

	current := uc.state.Snapshot()
	item, inCart := current.Find(cmd.ProductID)
	r.span.SetAttributes(attribute.Bool("cart.contains", inCart))

	stock, err := callInventory(ctx, r, endpointStock, func(ctx context.Context) (domcart.Stock, error) {
		return uc.inventory.Stock(ctx, cmd.ProductID)
	})
	if err != nil {
		r.fail("STOCK_LOOKUP_FAILED")
		return failed(current, fmt.Errorf("%w: stock %d: %w", domcart.ErrInventoryUnavailable, cmd.ProductID, err))
	}
	r.span.SetAttributes(attribute.Int("stock.amount", stock.Amount))

	var next domcart.Cart
	if inCart {
		if !stock.Allows(item.Amount + 1) {
			r.fail("INSUFFICIENT_STOCK")
			return failed(current, fmt.Errorf("product %d: %d in cart, %d in stock: %w",
				cmd.ProductID, item.Amount, stock.Amount, domcart.ErrInsufficientStock))
		}
		if next, err = current.Increment(cmd.ProductID); err != nil {
			r.fail("INCREMENT_FAILED")
			return failed(current, err)
		}
	} else {
		if !stock.Allows(1) {
			r.fail("INSUFFICIENT_STOCK")
			return failed(current, fmt.Errorf("product %d: out of stock: %w", cmd.ProductID, domcart.ErrInsufficientStock))
		}
		product, perr := callInventory(ctx, r, endpointProduct, func(ctx context.Context) (domcart.Product, error) {
			return uc.inventory.Product(ctx, cmd.ProductID)
		})
		if perr != nil {
			r.fail("PRODUCT_LOOKUP_FAILED")
			return failed(current, fmt.Errorf("%w: product %d: %w", domcart.ErrInventoryUnavailable, cmd.ProductID, perr))
		}
		// The line id must match the stock that was checked.
		if product.ID != cmd.ProductID {
			r.fail("PRODUCT_MISMATCH")
			return failed(current, fmt.Errorf("%w: asked for product %d, got %d",
				domcart.ErrInventoryUnavailable, cmd.ProductID, product.ID))
		}
		if next, err = current.Append(domcart.NewItem(product)); err != nil {
			r.fail("APPEND_FAILED")
			return failed(current, err)
		}
	}

	return commit(r, uc.state, uc.publisher, domcart.OperationAddProduct, next)
}
