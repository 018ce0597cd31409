package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	appcart "github.com/Zhima-Mochi/minishop-cart/internal/application/cart"
	appnotification "github.com/Zhima-Mochi/minishop-cart/internal/application/notification"
	domcart "github.com/Zhima-Mochi/minishop-cart/internal/domain/cart"
	domnotification "github.com/Zhima-Mochi/minishop-cart/internal/domain/notification"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/notify"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability/logctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// CartManager is the cart surface the HTTP API drives.
type CartManager interface {
	Cart() domcart.Cart
	AddProduct(ctx context.Context, productID int)
	RemoveProduct(ctx context.Context, productID int)
	UpdateProductAmount(ctx context.Context, in appcart.UpdateProductAmountInput)
}

type Handler struct {
	cart     CartManager
	feed     *appnotification.Feed
	log      observability.Logger
	tracer   trace.Tracer
	requests observability.Counter
	latency  observability.Histogram
}

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
)

type Option func(*Handler)

// WithTracerProvider overrides the global OTel provider for server spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(h *Handler) {
		if tp != nil {
			h.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewHandler builds the cart API. The manager's notifier must include
// notify.Contextual for mutation responses to carry their notifications.
func NewHandler(cart CartManager, feed *appnotification.Feed, tel observability.Observability, opts ...Option) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	if feed == nil {
		feed = appnotification.NewFeed(0)
	}
	h := &Handler{
		cart:     cart,
		feed:     feed,
		log:      tel.Logger().With(observability.F("component", componentHTTPHandler)),
		tracer:   otel.Tracer(tracerName),
		requests: tel.Metrics().Counter(observability.MHTTPRequests),
		latency:  tel.Metrics().Histogram(observability.MHTTPRequestDuration),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()
	h.Register(mux)
	return mux
}

// Register mounts the cart routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	// Trace → request logger → metrics → access log → handler
	h.muxHandle(mux, "GET /cart", h.handleGetCart)
	h.muxHandle(mux, "POST /cart/items", h.handleAddProduct)
	h.muxHandle(mux, "PATCH /cart/items/{id}", h.handleUpdateProductAmount)
	h.muxHandle(mux, "DELETE /cart/items/{id}", h.handleRemoveProduct)
	h.muxHandle(mux, "GET /notifications", h.handleNotifications)
	h.muxHandle(mux, "GET /health", h.handleHealth)
}

func (h *Handler) muxHandle(mux *http.ServeMux, pattern string, handler http.HandlerFunc) {
	wrapped := h.withTrace(
		ObservabilityMiddleware(h.log, func(r *http.Request) string {
			return r.Header.Get(headerRequestID)
		})(
			h.withHTTPMetrics(
				h.withAccessLog(handler),
			),
		),
	)
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		wrapped.ServeHTTP(w, r.WithContext(contextWithRoute(r.Context(), pattern)))
	})
}

type cartView struct {
	Items    []domcart.Item  `json:"items"`
	Total    decimal.Decimal `json:"total"`
	Quantity int             `json:"quantity"`
}

func newCartView(c domcart.Cart) cartView {
	return cartView{Items: c.Items(), Total: c.Total(), Quantity: c.Quantity()}
}

type mutationResponse struct {
	Cart          cartView                       `json:"cart"`
	Notifications []domnotification.Notification `json:"notifications"`
}

type addProductRequest struct {
	ProductID int `json:"product_id"`
}

type updateAmountRequest struct {
	Amount int `json:"amount"`
}

func (h *Handler) handleGetCart(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newCartView(h.cart.Cart()))
}

func (h *Handler) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	var req addProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.mutate(w, r, req.ProductID, func(ctx context.Context) {
		h.cart.AddProduct(ctx, req.ProductID)
	})
}

func (h *Handler) handleUpdateProductAmount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req updateAmountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.mutate(w, r, id, func(ctx context.Context) {
		h.cart.UpdateProductAmount(ctx, appcart.UpdateProductAmountInput{ProductID: id, Amount: req.Amount})
	})
}

func (h *Handler) handleRemoveProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	h.mutate(w, r, id, func(ctx context.Context) {
		h.cart.RemoveProduct(ctx, id)
	})
}

// mutate runs fn with a request-scoped recorder and answers with the
// resulting snapshot and whatever notifications fn raised.
func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, productID int, fn func(context.Context)) {
	rec := &notify.Recorder{}
	ctx, _ := logctx.Enrich(r.Context(), h.log, observability.F("product_id", productID))
	fn(notify.WithRecorder(ctx, rec))

	notes := rec.Notifications()
	if notes == nil {
		notes = []domnotification.Notification{}
	}
	writeJSON(w, http.StatusOK, mutationResponse{
		Cart:          newCartView(h.cart.Cart()),
		Notifications: notes,
	})
}

func (h *Handler) handleNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": h.feed.Recent(limit)})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return 0, errors.New("id must be an integer")
	}
	return id, nil
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
