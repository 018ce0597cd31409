package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	domain "github.com/Zhima-Mochi/minishop-cart/internal/domain/cart"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const (
	defaultTimeout = 5 * time.Second
	maxErrorBody   = 512
)

// Client talks to a json-server compatible inventory API:
// GET {base}/stock/{id} and GET {base}/products/{id}.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	prop    propagation.TextMapPropagator
}

var _ domain.Inventory = (*Client)(nil)

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request; zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("inventory client: base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("inventory client: base url %q must be absolute", baseURL)
	}
	c := &Client{
		base:    u,
		http:    &http.Client{},
		timeout: defaultTimeout,
		prop:    otel.GetTextMapPropagator(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Stock(ctx context.Context, productID int) (domain.Stock, error) {
	var s domain.Stock
	if err := c.get(ctx, "stock", productID, &s); err != nil {
		return domain.Stock{}, err
	}
	return s, nil
}

func (c *Client) Product(ctx context.Context, productID int) (domain.Product, error) {
	var p domain.Product
	if err := c.get(ctx, "products", productID, &p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (c *Client) get(ctx context.Context, resource string, id int, dst any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.base.JoinPath(resource, strconv.Itoa(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("inventory %s/%d: %w", resource, id, err)
	}
	req.Header.Set("Accept", "application/json")
	c.prop.Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("inventory %s/%d: %w", resource, id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("inventory %s/%d: %w", resource, id, domain.ErrProductNotFound)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("inventory %s/%d: unexpected status %d: %s", resource, id, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("inventory %s/%d: decode: %w", resource, id, err)
	}
	return nil
}
