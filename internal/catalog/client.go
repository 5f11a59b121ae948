// Package catalog implements the HTTP client for the remote catalog API.
//
// The catalog is a generic REST/JSON service exposing collection endpoints
// (/authors, /books, /stores, /inventory, /users). It is the single source
// of truth for all domain records; this app holds only request-scoped copies.
package catalog

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bookstandapp/bookstand-web/internal/domain"
	"github.com/bookstandapp/bookstand-web/internal/errors"
	"github.com/bookstandapp/bookstand-web/internal/ratelimit"
)

const (
	defaultTimeout = 15 * time.Second
	defaultRPS     = 10.0
	defaultBurst   = 20

	userAgent = "Bookstand/1.0"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the root of the catalog API, e.g. http://localhost:3000
	BaseURL string
	// Timeout bounds each outbound request. Zero means the default (15s).
	Timeout time.Duration
	// RPS and Burst configure the outbound rate limit per upstream host.
	// Zero values mean the defaults.
	RPS   float64
	Burst int
}

// Client is a rate-limited catalog API client.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// New creates a new catalog client.
func New(opts Options, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse catalog base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("catalog base URL must be absolute, got %q", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	rps := opts.RPS
	if rps == 0 {
		rps = defaultRPS
	}
	burst := opts.Burst
	if burst == 0 {
		burst = defaultBurst
	}

	return &Client{
		base: base,
		http: &http.Client{
			Timeout: timeout,
		},
		limiter: ratelimit.New(rps, burst),
		logger:  logger,
	}, nil
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// ListAuthors returns all author records.
func (c *Client) ListAuthors(ctx context.Context) ([]domain.Author, error) {
	return listCollection[domain.Author](ctx, c, "/authors", nil)
}

// ListBooks returns all book records.
func (c *Client) ListBooks(ctx context.Context) ([]domain.Book, error) {
	return listCollection[domain.Book](ctx, c, "/books", nil)
}

// ListStores returns all store records.
func (c *Client) ListStores(ctx context.Context) ([]domain.Store, error) {
	return listCollection[domain.Store](ctx, c, "/stores", nil)
}

// ListInventory returns all inventory records across stores.
func (c *Client) ListInventory(ctx context.Context) ([]domain.InventoryItem, error) {
	return listCollection[domain.InventoryItem](ctx, c, "/inventory", nil)
}

// FindUsers returns user records matching the given credentials exactly.
// The catalog treats query parameters as equality filters, so an empty
// result means the credentials match no account.
func (c *Client) FindUsers(ctx context.Context, username, password string) ([]domain.User, error) {
	query := url.Values{}
	query.Set("username", username)
	query.Set("password", password)
	return listCollection[domain.User](ctx, c, "/users", query)
}

// CreateInventoryParams carries the fields for a new inventory item.
type CreateInventoryParams struct {
	StoreID int64   `json:"store_id"`
	BookID  int64   `json:"book_id"`
	Price   float64 `json:"price"`
}

// CreateInventory attaches a book to a store at a price.
func (c *Client) CreateInventory(ctx context.Context, params CreateInventoryParams) (domain.InventoryItem, error) {
	var created domain.InventoryItem
	body, err := c.doSend(ctx, http.MethodPost, "/inventory", params)
	if err != nil {
		return created, err
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return created, errors.Wrap(err, errors.CodeUnavailable, "decode created inventory item")
	}
	return created, nil
}

// UpdateInventoryPrice issues a partial update changing only the price.
func (c *Client) UpdateInventoryPrice(ctx context.Context, id int64, price float64) (domain.InventoryItem, error) {
	var updated domain.InventoryItem
	body, err := c.doSend(ctx, http.MethodPatch, "/inventory/"+strconv.FormatInt(id, 10), map[string]float64{"price": price})
	if err != nil {
		return updated, err
	}
	if err := json.Unmarshal(body, &updated); err != nil {
		return updated, errors.Wrap(err, errors.CodeUnavailable, "decode updated inventory item")
	}
	return updated, nil
}

// DeleteInventory removes an inventory item.
func (c *Client) DeleteInventory(ctx context.Context, id int64) error {
	_, err := c.doSend(ctx, http.MethodDelete, "/inventory/"+strconv.FormatInt(id, 10), nil)
	return err
}

// listCollection fetches and decodes a JSON array endpoint.
func listCollection[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	body, err := c.doGet(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var items []T
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, errors.Wrapf(err, errors.CodeUnavailable, "decode %s response", path)
	}
	return items, nil
}

// doGet executes a rate-limited GET request.
func (c *Client) doGet(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

// doSend executes a rate-limited request with a JSON body (POST/PATCH/DELETE).
func (c *Client) doSend(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}
	return c.do(ctx, method, path, nil, body)
}

// do executes an HTTP request with rate limiting and maps failures to domain errors.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader) ([]byte, error) {
	// Wait for rate limit, keyed by upstream host.
	if err := c.limiter.Wait(ctx, c.base.Host); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := *c.base
	u.Path, _ = url.JoinPath(c.base.Path, path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("catalog request",
		"method", method,
		"path", path,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeUnavailable, "catalog %s %s", method, path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnavailable, "read catalog response")
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return respBody, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.NotFoundf("catalog %s not found", path)
	case resp.StatusCode >= 500:
		return nil, errors.Unavailablef("catalog returned %d for %s %s", resp.StatusCode, method, path)
	default:
		return nil, errors.Wrapf(
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody)),
			errors.CodeInternal, "catalog %s %s failed", method, path)
	}
}
