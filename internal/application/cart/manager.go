package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/minishop-cart/internal/application"
	domcart "github.com/Zhima-Mochi/minishop-cart/internal/domain/cart"
	"github.com/Zhima-Mochi/minishop-cart/internal/domain/notification"
	domoutbox "github.com/Zhima-Mochi/minishop-cart/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability/logctx"
)

// Manager is the session's cart. UI collaborators read Cart and call the three
// mutations; mutations return nothing and report failure only through the
// notifier, leaving the cart unchanged.
//
// Manager does not serialize mutations. Callers issuing overlapping calls must
// serialize them themselves or accept that one update may be lost.
type Manager struct {
	state    *State
	add      application.UseCase[AddProductInput, *MutationResult]
	remove   application.UseCase[RemoveProductInput, *MutationResult]
	update   application.UseCase[UpdateProductAmountInput, *MutationResult]
	notifier notification.Notifier
	log      observability.Logger
}

type Dependencies struct {
	Store     domcart.Store
	Inventory domcart.Inventory
	Notifier  notification.Notifier
	// Publisher receives cart.committed events; optional.
	Publisher domoutbox.Publisher
	Telemetry observability.Observability
}

// NewManager restores the persisted cart and wires the use cases.
// A snapshot that cannot be decoded is returned as an error.
func NewManager(ctx context.Context, deps Dependencies) (*Manager, error) {
	if deps.Inventory == nil {
		return nil, errors.New("cart: inventory is required")
	}
	state, err := Load(ctx, deps.Store)
	if err != nil {
		return nil, err
	}
	tel := deps.Telemetry
	if tel == nil {
		tel = observability.Nop()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notification.NotifierFunc(func(context.Context, notification.Notification) {})
	}

	return &Manager{
		state:    state,
		add:      NewAddProductUseCase(state, deps.Inventory, deps.Publisher, tel),
		remove:   NewRemoveProductUseCase(state, deps.Publisher, tel),
		update:   NewUpdateProductAmountUseCase(state, deps.Inventory, deps.Publisher, tel),
		notifier: notifier,
		log:      tel.Logger().With(observability.F("component", "cart_manager")),
	}, nil
}

// Cart returns the current read-only snapshot.
func (m *Manager) Cart() domcart.Cart {
	return m.state.Snapshot()
}

func (m *Manager) AddProduct(ctx context.Context, productID int) {
	defer m.guard(ctx, notification.KindAddFailed, productID)
	_, err := m.add.Execute(ctx, AddProductInput{ProductID: productID})
	m.report(ctx, err, notification.KindAddFailed, productID)
}

func (m *Manager) RemoveProduct(ctx context.Context, productID int) {
	defer m.guard(ctx, notification.KindRemoveFailed, productID)
	_, err := m.remove.Execute(ctx, RemoveProductInput{ProductID: productID})
	m.report(ctx, err, notification.KindRemoveFailed, productID)
}

// UpdateProductAmount moves the line one unit toward in.Amount; see UpdateProductAmountUseCase.
func (m *Manager) UpdateProductAmount(ctx context.Context, in UpdateProductAmountInput) {
	defer m.guard(ctx, notification.KindUpdateFailed, in.ProductID)
	_, err := m.update.Execute(ctx, in)
	m.report(ctx, err, notification.KindUpdateFailed, in.ProductID)
}

// report translates a use case error into exactly one notification.
func (m *Manager) report(ctx context.Context, err error, fallback notification.Kind, productID int) {
	if err == nil {
		return
	}
	kind := fallback
	if errors.Is(err, domcart.ErrInsufficientStock) {
		kind = notification.KindInsufficientStock
	}
	m.notifier.Notify(ctx, notification.New(kind, productID))
}

// guard keeps panics from crossing the public boundary.
func (m *Manager) guard(ctx context.Context, kind notification.Kind, productID int) {
	r := recover()
	if r == nil {
		return
	}
	logctx.FromOr(ctx, m.log).Error("cart_operation_panic",
		observability.F("product_id", productID),
		observability.F("panic", fmt.Sprint(r)),
	)
	m.notifier.Notify(ctx, notification.New(kind, productID))
}
