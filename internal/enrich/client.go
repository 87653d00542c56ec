// Package enrich calls the storefront backend's bulk product upload
// endpoints. A B2B buyer goes to the B2B GraphQL endpoint; a storefront
// shopper goes to the BigCommerce endpoint together with the channel id.
// Either way one request carries the whole parsed file and the backend
// answers with every row resolved against the catalog.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/bulkorder/internal/core"
	"golang.org/x/text/currency"
	"golang.org/x/time/rate"
)

const productUploadMutation = `mutation ProductUpload($productListData: ProductUploadInputType!) {
  productUpload(productListData: $productListData) {
    result
  }
}`

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 64 << 20

// Config configures the client. Zero values fall back to defaults.
type Config struct {
	B2BURL string
	BCURL  string
	Token  string

	// Timeout for one HTTP round trip (default: 30s).
	Timeout time.Duration

	// RateLimit in requests per second (default: 10) and burst (default: 5).
	RateLimit float64
	RateBurst int

	// Transport allows injecting a custom HTTP transport for tests.
	Transport http.RoundTripper
}

// Client is a rate-limited GraphQL client. It never retries: a failed
// enrichment sends the user back to pick the file again.
type Client struct {
	cfg         Config
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewClient validates cfg and builds a client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.B2BURL == "" || cfg.BCURL == "" {
		return nil, errors.New("enrich: both B2B and BC endpoint URLs are required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 10
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 5
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
	}, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type productUploadResponse struct {
	Data struct {
		ProductUpload *struct {
			Result *core.EnrichmentResult `json:"result"`
		} `json:"productUpload"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// BulkUpload implements core.Enricher. Every failure wraps
// core.ErrEnrichment.
func (c *Client) BulkUpload(ctx context.Context, req core.EnrichmentRequest) (*core.EnrichmentResult, error) {
	if _, err := currency.ParseISO(req.CurrencyCode); err != nil {
		return nil, fmt.Errorf("%w: %w: %q", core.ErrEnrichment, core.ErrInvalidCurrency, req.CurrencyCode)
	}

	endpoint := c.cfg.B2BURL
	data := map[string]any{
		"currencyCode": req.CurrencyCode,
		"productList":  req.ProductList,
	}
	if !req.IsB2BUser {
		endpoint = c.cfg.BCURL
		if req.ChannelID != nil {
			data["channelId"] = *req.ChannelID
		}
	}
	if req.ProductList == nil {
		data["productList"] = []core.ParsedRow{}
	}

	body, err := json.Marshal(graphQLRequest{
		Query:     productUploadMutation,
		Variables: map[string]any{"productListData": data},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", core.ErrEnrichment, err)
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", core.ErrEnrichment, err)
	}

	start := time.Now()
	respBody, status, err := c.post(ctx, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrEnrichment, err)
	}
	slog.Debug("product upload response",
		"b2b", req.IsB2BUser,
		"rows", len(req.ProductList),
		"status", status,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: status %d: %s", core.ErrEnrichment, status, truncate(respBody, 200))
	}

	var parsed productUploadResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", core.ErrEnrichment, err)
	}
	if len(parsed.Errors) > 0 {
		msgs := make([]string, 0, len(parsed.Errors))
		for _, e := range parsed.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("%w: %s", core.ErrEnrichment, strings.Join(msgs, "; "))
	}
	if parsed.Data.ProductUpload == nil || parsed.Data.ProductUpload.Result == nil {
		return nil, fmt.Errorf("%w: response has no productUpload result", core.ErrEnrichment)
	}
	return parsed.Data.ProductUpload.Result, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte) ([]byte, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return respBody, resp.StatusCode, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

var _ core.Enricher = (*Client)(nil)
