// Package catalog talks to the remote shop API and normalizes its records
// into the domain model. Every operation absorbs transport, response, and
// parse failures: callers always receive a well-defined empty or absent
// value and decide the user-facing message themselves.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"dealsbot/core/logger"
	"log/slog"
)

const (
	defaultTimeout    = 5 * time.Second
	defaultPageBudget = 5

	maxLoggedBody = 256
)

// Config carries the client settings resolved from configuration.
type Config struct {
	BaseURL string
	// Token authenticates against the API. Empty is allowed: every
	// operation then fails fast with a configuration error and no call is
	// attempted.
	Token   string
	Timeout time.Duration
	// PageBudget caps how many list pages a discounted scan may request.
	PageBudget int
}

// Client is a bearer-token HTTP client for the catalog API. All operations
// are read-only and idempotent; concurrent use is safe.
type Client struct {
	baseURL    string
	token      string
	http       *http.Client
	pageBudget int
}

// NewClient builds a catalog client with a bounded transport. There is no
// retry: a failed fetch surfaces once, immediately, as an empty result.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	pages := cfg.PageBudget
	if pages <= 0 {
		pages = defaultPageBudget
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		pageBudget: pages,
	}
}

// Configured reports whether the API token is present.
func (c *Client) Configured() bool {
	return c.token != ""
}

// ListProducts fetches one page of records for a category and maps every
// product record regardless of discount state, preserving source order.
// Any failure yields an empty slice.
func (c *Client) ListProducts(ctx context.Context, slug string) []Product {
	const op = "list"
	start := time.Now()

	records, err := c.fetchPage(ctx, op, slug, 1)
	if err != nil {
		logFetchFailure(ctx, op, slug, err, start)
		return nil
	}

	products := make([]Product, 0, len(records))
	for _, rec := range records {
		products = append(products, rec.Attributes.product())
	}

	logger.Debug(ctx, "catalog", "fetch.done",
		slog.String("status", "ok"),
		slog.String("operation", op),
		slog.String("slug", slug),
		slog.Int("products", len(products)),
		slog.Duration("duration", logger.Took(start)),
	)
	return products
}

// DiscountedProducts scans records for a category and keeps those with a
// discount, halting the scan the moment limit results are collected.
// Further pages are requested only while the limit is unmet and the page
// budget allows. Any failure before the first record yields an empty slice.
func (c *Client) DiscountedProducts(ctx context.Context, slug string, limit int) []Product {
	const op = "deals"
	start := time.Now()

	if limit <= 0 {
		return nil
	}

	var scanErr *apiError
	next := c.recordSource(ctx, op, slug, &scanErr)
	deals, examined := scanDiscounted(next, limit)
	if scanErr != nil {
		logFetchFailure(ctx, op, slug, scanErr, start)
		if len(deals) == 0 {
			return nil
		}
		// A later page failed after usable results were collected; the
		// partial list is still valid data.
	}

	logger.Debug(ctx, "catalog", "fetch.done",
		slog.String("status", "ok"),
		slog.String("operation", op),
		slog.String("slug", slug),
		slog.Int("deals", len(deals)),
		slog.Int("limit", limit),
		slog.Int("examined", examined),
		slog.Duration("duration", logger.Took(start)),
	)
	return deals
}

// GetProduct fetches a single record by its identifier. The second return
// value is false when the record is missing or any failure occurred.
func (c *Client) GetProduct(ctx context.Context, dkp string) (Product, bool) {
	const op = "product"
	start := time.Now()

	if dkp == "" {
		return Product{}, false
	}

	body, err := c.get(ctx, op, fmt.Sprintf("%s/products/%s", c.baseURL, dkp))
	if err != nil {
		logFetchFailure(ctx, op, dkp, err, start)
		return Product{}, false
	}

	var envelope itemEnvelope
	if jsonErr := json.Unmarshal(body, &envelope); jsonErr != nil {
		logFetchFailure(ctx, op, dkp, parseErr(op, jsonErr), start)
		return Product{}, false
	}
	if envelope.Data.Attributes.empty() {
		logger.Debug(ctx, "catalog", "fetch.miss",
			slog.String("status", "ok"),
			slog.String("operation", op),
			slog.String("dkp", dkp),
		)
		return Product{}, false
	}

	product := envelope.Data.Attributes.product()
	if product.DKP == "" {
		product.DKP = dkp
	}

	logger.Debug(ctx, "catalog", "fetch.done",
		slog.String("status", "ok"),
		slog.String("operation", op),
		slog.String("dkp", dkp),
		slog.Duration("duration", logger.Took(start)),
	)
	return product, true
}

// scanDiscounted consumes records one at a time and stops the moment limit
// discounted products are collected; records beyond that point are never
// examined. It reports how many records were pulled from the source.
func scanDiscounted(next func() (rawAttributes, bool), limit int) ([]Product, int) {
	var deals []Product
	examined := 0
	for len(deals) < limit {
		attrs, ok := next()
		if !ok {
			break
		}
		examined++
		if p := attrs.product(); p.Discounted() {
			deals = append(deals, p)
		}
	}
	return deals, examined
}

// recordSource returns an iterator over the product records of a category,
// fetching the next page lazily only when the current one is exhausted.
// The first fetch error stops iteration and is reported via scanErr.
func (c *Client) recordSource(ctx context.Context, op, slug string, scanErr **apiError) func() (rawAttributes, bool) {
	var buf []rawRecord
	page := 1
	done := false
	return func() (rawAttributes, bool) {
		for len(buf) == 0 {
			if done || page > c.pageBudget {
				return rawAttributes{}, false
			}
			records, err := c.fetchPage(ctx, op, slug, page)
			if err != nil {
				*scanErr = err
				done = true
				return rawAttributes{}, false
			}
			if len(records) == 0 {
				done = true
				return rawAttributes{}, false
			}
			page++
			buf = records
		}
		head := buf[0]
		buf = buf[1:]
		return head.Attributes, true
	}
}

// fetchPage retrieves one list page and keeps only product records.
func (c *Client) fetchPage(ctx context.Context, op, slug string, page int) ([]rawRecord, *apiError) {
	url := fmt.Sprintf("%s/category/products/%s", c.baseURL, slug)
	if page > 1 {
		url = fmt.Sprintf("%s?page=%d", url, page)
	}

	body, err := c.get(ctx, op, url)
	if err != nil {
		return nil, err
	}

	var envelope listEnvelope
	if jsonErr := json.Unmarshal(body, &envelope); jsonErr != nil {
		return nil, parseErr(op, jsonErr)
	}

	records := make([]rawRecord, 0, len(envelope.Data))
	for _, rec := range envelope.Data {
		if rec.Type != "products" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// get performs one bearer-authenticated GET bounded by the client timeout.
func (c *Client) get(ctx context.Context, op, url string) ([]byte, *apiError) {
	if c.token == "" {
		return nil, configErr(op)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.http.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, transportErr(op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportErr(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportErr(op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, responseErr(op, resp.StatusCode, logger.SanitizeLimit(string(body), maxLoggedBody))
	}
	return body, nil
}

func logFetchFailure(ctx context.Context, op, subject string, err *apiError, start time.Time) {
	logger.Error(ctx, "catalog", "fetch.fail",
		slog.String("status", "fail"),
		slog.String("operation", op),
		slog.String("slug", subject),
		slog.String("err", logger.SanitizeLimit(err.Error(), maxLoggedBody)),
		slog.String("err_code", err.Code()),
		slog.Duration("duration", logger.Took(start)),
	)
}
