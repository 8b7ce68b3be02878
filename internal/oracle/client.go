// Package oracle resolves sale prices from an external product-data API,
// falling back across an ordered list of markets until one returns usable
// data. Exhaustion is a soft failure: the pipeline continues with whatever
// local data exists.
package oracle

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/bgrierson/lead-filter-bot/internal/models"
	"github.com/bgrierson/lead-filter-bot/internal/util"
)

const (
	defaultTimeout = 30 * time.Second
	defaultRPM     = 20
	lookupRetries  = 1
)

type Config struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerMin    int
	PageTitleFallback bool
}

type Client struct {
	baseURL           string
	apiKey            string
	httpClient        *http.Client
	limiter           *rate.Limiter
	pageTitleFallback bool
}

// New builds a price-oracle client. Returns nil when no API key is
// configured; callers treat a nil client as "oracle disabled".
func New(cfg Config) *Client {
	if cfg.APIKey == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rpm := cfg.RequestsPerMin
	if rpm <= 0 {
		rpm = defaultRPM
	}
	return &Client{
		baseURL:           cfg.BaseURL,
		apiKey:            cfg.APIKey,
		httpClient:        &http.Client{Timeout: timeout},
		limiter:           rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
		pageTitleFallback: cfg.PageTitleFallback,
	}
}

// Lookup queries markets in order (preferred first, then the curated
// priority list) and returns the first usable positive price. When no
// market yields a price but one returned brand/title metadata, that
// metadata is retained as a degraded success. The diagnostic string
// accumulates one note per market attempted.
func (c *Client) Lookup(ctx context.Context, asin, preferredMarket string) models.PriceQuote {
	var quote models.PriceQuote
	diag := ""

	for _, market := range marketOrder(preferredMarket) {
		payload, err := c.lookupMarket(ctx, asin, market)
		if err != nil {
			diag += fmt.Sprintf("%s: %v; ", market.Code, err)
			continue
		}

		if payload.price != nil && *payload.price > 0 {
			diag += fmt.Sprintf("%s: price %.2f; ", market.Code, *payload.price)
			quote.Price = payload.price
			quote.Brand = payload.brand
			quote.Title = payload.title
			quote.SourceMarket = market.Code
			quote.Diagnostic = diag
			return quote
		}

		// Keep the first brand/title metadata as a degraded result.
		if quote.SourceMarket == "" && (payload.brand != "" || payload.title != "") {
			quote.Brand = payload.brand
			quote.Title = payload.title
			quote.SourceMarket = market.Code
		}
		diag += fmt.Sprintf("%s: no price; ", market.Code)
	}

	if quote.Price == nil && quote.Title == "" && c.pageTitleFallback {
		if title := c.fetchPageTitle(ctx, asin, preferredMarket); title != "" {
			quote.Title = title
			diag += "page-title: ok; "
		}
	}

	quote.Diagnostic = diag
	return quote
}

func (c *Client) lookupMarket(ctx context.Context, asin string, market Market) (quotePayload, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return quotePayload{}, fmt.Errorf("parse base url: %w", err)
	}
	q := endpoint.Query()
	q.Set("key", c.apiKey)
	q.Set("asin", asin)
	q.Set("domain", fmt.Sprintf("%d", market.ID))
	endpoint.RawQuery = q.Encode()

	var body []byte
	err = util.RetryWithBackoff(ctx, lookupRetries, 500*time.Millisecond, func(attempt int) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
		if err != nil {
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("status %s", resp.Status)
		}
		body, err = io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return err
	})
	if err != nil {
		return quotePayload{}, err
	}

	payload, err := decodeQuote(body)
	if err != nil {
		slog.Warn("Price response did not decode", "market", market.Code, "asin", asin, "error", err)
		return quotePayload{}, err
	}
	return payload, nil
}
