package httppresentation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	appcart "github.com/Zhima-Mochi/minishop-cart/internal/application/cart"
	appnotification "github.com/Zhima-Mochi/minishop-cart/internal/application/notification"
	domnotification "github.com/Zhima-Mochi/minishop-cart/internal/domain/notification"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/notify"
	infraobs "github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-cart/internal/infrastructure/observability/zaplogger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testServer struct {
	srv     *httptest.Server
	catalog *memory.Catalog
	feed    *appnotification.Feed
	reg     *prometheus.Registry
	spans   *tracetest.SpanRecorder
	logs    *observer.ObservedLogs
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	catalog := memory.NewCatalog()
	catalog.Seed(memory.DefaultSeed())

	core, logs := observer.New(zapcore.InfoLevel)
	reg := prometheus.NewRegistry()
	tel := infraobs.New(nil, zaplogger.New(zap.New(core)), prometrics.New(reg, "", ""))

	m, err := appcart.NewManager(context.Background(), appcart.Dependencies{
		Store:     memory.NewStore(),
		Inventory: catalog,
		Notifier:  notify.Contextual{},
		Telemetry: tel,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}

	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	feed := appnotification.NewFeed(5)
	srv := httptest.NewServer(NewHandler(m, feed, tel, WithTracerProvider(tp)).Router())
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, catalog: catalog, feed: feed, reg: reg, spans: spans, logs: logs}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, s.srv.URL+path, bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	return resp, buf.Bytes()
}

func decodeMutation(t *testing.T, body []byte) mutationResponse {
	t.Helper()
	var out mutationResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return out
}

func TestCartLifecycle(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodPost, "/cart/items", `{"product_id":3}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add: status %d", resp.StatusCode)
	}
	out := decodeMutation(t, body)
	if len(out.Cart.Items) != 1 || out.Cart.Items[0].ID != 3 || len(out.Notifications) != 0 {
		t.Fatalf("add: %s", body)
	}

	_, body = s.do(t, http.MethodPatch, "/cart/items/3", `{"amount":2}`)
	out = decodeMutation(t, body)
	if out.Cart.Quantity != 2 || out.Cart.Items[0].Amount != 2 {
		t.Fatalf("update: %s", body)
	}

	// product 3 has two units in stock
	_, body = s.do(t, http.MethodPost, "/cart/items", `{"product_id":3}`)
	out = decodeMutation(t, body)
	if len(out.Notifications) != 1 || out.Notifications[0].Kind != domnotification.KindInsufficientStock {
		t.Fatalf("expected insufficient stock notification: %s", body)
	}
	if out.Notifications[0].Message != "Requested quantity is out of stock" {
		t.Fatalf("unexpected message %q", out.Notifications[0].Message)
	}

	_, body = s.do(t, http.MethodGet, "/cart", "")
	var view cartView
	if err := json.Unmarshal(body, &view); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if view.Quantity != 2 || view.Total.String() != "439.8" {
		t.Fatalf("cart view: %s", body)
	}

	_, body = s.do(t, http.MethodDelete, "/cart/items/3", "")
	if out = decodeMutation(t, body); len(out.Cart.Items) != 0 {
		t.Fatalf("remove: %s", body)
	}

	_, body = s.do(t, http.MethodDelete, "/cart/items/3", "")
	out = decodeMutation(t, body)
	if len(out.Notifications) != 1 || out.Notifications[0].Kind != domnotification.KindRemoveFailed {
		t.Fatalf("expected remove failure: %s", body)
	}
}

func TestBadRequests(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		method, path, body string
		status             int
	}{
		{http.MethodPost, "/cart/items", `{"product_id":`, http.StatusBadRequest},
		{http.MethodPost, "/cart/items", `{"sku":1}`, http.StatusBadRequest},
		{http.MethodPatch, "/cart/items/abc", `{"amount":2}`, http.StatusBadRequest},
		{http.MethodDelete, "/cart/items/x", "", http.StatusBadRequest},
		{http.MethodGet, "/notifications?limit=-1", "", http.StatusBadRequest},
		{http.MethodPut, "/cart", "", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			resp, _ := s.do(t, tc.method, tc.path, tc.body)
			if resp.StatusCode != tc.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.status)
			}
		})
	}
}

func TestUpdateBelowOneIsReportedNotRejected(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/cart/items", `{"product_id":1}`)

	resp, body := s.do(t, http.MethodPatch, "/cart/items/1", `{"amount":0}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	out := decodeMutation(t, body)
	if len(out.Notifications) != 1 || out.Notifications[0].Kind != domnotification.KindUpdateFailed {
		t.Fatalf("expected update failure: %s", body)
	}
	if out.Cart.Items[0].Amount != 1 {
		t.Fatalf("cart changed: %s", body)
	}
}

func TestNotificationsFeed(t *testing.T) {
	s := newTestServer(t)
	for id := 1; id <= 3; id++ {
		s.feed.Append(domnotification.New(domnotification.KindAddFailed, id))
	}

	_, body := s.do(t, http.MethodGet, "/notifications?limit=2", "")
	var out struct {
		Notifications []domnotification.Notification `json:"notifications"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Notifications) != 2 || out.Notifications[1].ProductID != 3 {
		t.Fatalf("feed: %s", body)
	}
}

func TestObservabilityWrapping(t *testing.T) {
	s := newTestServer(t)

	req, _ := http.NewRequest(http.MethodGet, s.srv.URL+"/health", nil)
	req.Header.Set(headerRequestID, "req-42")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get(headerRequestID) != "req-42" {
		t.Fatalf("request id not echoed: %q", resp.Header.Get(headerRequestID))
	}

	spans := s.spans.Ended()
	if len(spans) != 1 || spans[0].Name() != "GET /health" {
		t.Fatalf("unexpected spans %v", spans)
	}

	access := s.logs.FilterMessage("http_access").All()
	if len(access) != 1 {
		t.Fatalf("expected one access log, got %d", len(access))
	}
	fields := access[0].ContextMap()
	if fields["request_id"] != "req-42" || fields["route"] != "GET /health" {
		t.Fatalf("access log fields %v", fields)
	}
	if _, ok := fields["trace_id"]; !ok {
		t.Fatalf("access log missing trace_id: %v", fields)
	}

	n, err := testutil.GatherAndCount(s.reg, "http_requests_total")
	if err != nil || n != 1 {
		t.Fatalf("http_requests_total series = %d, %v", n, err)
	}
}

var _ CartManager = (*appcart.Manager)(nil)
