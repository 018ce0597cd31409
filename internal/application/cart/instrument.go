package cart

import (
	"context"
	"time"

	domcart "github.com/Zhima-Mochi/minishop-cart/internal/domain/cart"
	domoutbox "github.com/Zhima-Mochi/minishop-cart/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	cartService       = "cart-service"
	spanPrefix        = "UC."
	peerInventory     = "inventory"
	peerOutbox        = "outbox"
	endpointStock     = "stock"
	endpointProduct   = "product"
	endpointCommitted = "cart.committed"
	publishTimeout    = 300 * time.Millisecond
)

// instruments holds the logger, tracer and RED metrics shared by the cart use cases.
type instruments struct {
	log    observability.Logger
	tracer observability.Tracer

	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

func newInstruments(tel observability.Observability) *instruments {
	if tel == nil {
		tel = observability.Nop()
	}
	metrics := tel.Metrics()
	return &instruments{
		log:          tel.Logger().With(observability.F("service", cartService)),
		tracer:       tel.Tracer(),
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
		extCounter:   metrics.Counter(observability.MExternalRequests),
		extHistogram: metrics.Histogram(observability.MExternalRequestDuration),
	}
}

// run tracks one use case execution from begin to end.
type run struct {
	inst      *instruments
	ctx       context.Context
	span      trace.Span
	logger    observability.Logger
	useCase   string
	productID int
	start     time.Time
	outcome   string
	status    string
}

func (i *instruments) begin(ctx context.Context, useCase, spanName string, productID int, attrs ...attribute.KeyValue) (context.Context, *run) {
	logger := logctx.FromOr(ctx, i.log).With(
		observability.F("use_case", useCase),
		observability.F("product_id", productID),
	)
	attrs = append([]attribute.KeyValue{
		attribute.String("use_case", useCase),
		attribute.Int("product.id", productID),
	}, attrs...)
	ctx, span := i.tracer.Start(ctx, spanPrefix+spanName, attrs...)
	ctx = logctx.With(ctx, logger)

	return ctx, &run{
		inst:      i,
		ctx:       ctx,
		span:      span,
		logger:    logger,
		useCase:   useCase,
		productID: productID,
		start:     time.Now(),
		outcome:   "success",
		status:    "OK",
	}
}

func (r *run) fail(status string) {
	r.outcome, r.status = "error", status
}

func (r *run) end(res *MutationResult, err error) {
	lat := time.Since(r.start).Seconds()

	if r.span != nil {
		if err != nil {
			r.span.RecordError(err)
			r.span.SetStatus(codes.Error, r.status)
		} else {
			r.span.SetStatus(codes.Ok, r.status)
		}
		r.span.End()
	}

	r.inst.reqCounter.Add(1,
		observability.L("use_case", r.useCase),
		observability.L("outcome", r.outcome),
	)
	r.inst.durHistogram.Observe(lat,
		observability.L("use_case", r.useCase),
	)

	fields := []observability.Field{
		observability.F("outcome", r.outcome),
		observability.F("status", r.status),
		observability.F("latency_seconds", lat),
	}
	if sc := trace.SpanContextFromContext(r.ctx); sc.IsValid() {
		fields = append(fields,
			observability.F("trace_id", sc.TraceID().String()),
			observability.F("span_id", sc.SpanID().String()),
		)
	}
	if res != nil {
		fields = append(fields, observability.F("cart_items", res.Cart.Len()))
		if res.FailureReason != "" {
			fields = append(fields, observability.F("failure_reason", res.FailureReason))
		}
	}
	if err != nil {
		fields = append(fields, observability.F("error", err.Error()))
	}

	r.logger.Info("use_case_done", fields...)
}

// callInventory times one inventory lookup and records it as an external request.
func callInventory[T any](ctx context.Context, r *run, endpoint string, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	v, err := fn(ctx)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}

	r.inst.extCounter.Add(1,
		observability.L("peer", peerInventory),
		observability.L("endpoint", endpoint),
		observability.L("outcome", outcome),
	)
	r.inst.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", peerInventory),
		observability.L("endpoint", endpoint),
	)
	if r.span != nil {
		r.span.AddEvent("inventory."+endpoint, trace.WithAttributes(
			attribute.String("outcome", outcome),
		))
	}
	return v, err
}

// publish hands an event to the bus without letting a slow or failed publish
// affect the already committed mutation.
func (r *run) publish(publisher domoutbox.Publisher, event domoutbox.Event) {
	if publisher == nil || event == nil {
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(r.ctx), publishTimeout)
	start := time.Now()
	err := publisher.Publish(pubCtx, event)
	outcome := "success"
	if err != nil {
		outcome = "error"
	} else if pubCtx.Err() != nil {
		outcome = "canceled"
		err = pubCtx.Err()
	}
	cancel()

	r.inst.extCounter.Add(1,
		observability.L("peer", peerOutbox),
		observability.L("endpoint", event.EventName()),
		observability.L("outcome", outcome),
	)
	r.inst.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", peerOutbox),
		observability.L("endpoint", event.EventName()),
	)
	if err != nil {
		r.logger.Warn("event_publish_failed",
			observability.F("event", event.EventName()),
			observability.F("error", err),
		)
	}
}

// commit persists next, swaps it in and announces it. A failed write leaves
// the state untouched and is reported as the result of the use case.
func commit(r *run, state *State, publisher domoutbox.Publisher, operation string, next domcart.Cart) (*MutationResult, error) {
	if err := state.Commit(r.ctx, next); err != nil {
		r.fail("COMMIT_FAILED")
		return failed(state.Snapshot(), err)
	}
	if r.span != nil {
		r.span.AddEvent(endpointCommitted, trace.WithAttributes(
			attribute.Int("cart.items", next.Len()),
			attribute.Int("cart.quantity", next.Quantity()),
		))
	}
	r.publish(publisher, domcart.NewCartCommittedEvent(operation, r.productID, next))
	return &MutationResult{Committed: true, Cart: next}, nil
}
