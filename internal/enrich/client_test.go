package enrich

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JonMunkholm/bulkorder/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okResponse = `{
  "data": {
    "productUpload": {
      "result": {
        "validProduct": [
          {
            "products": {
              "option": [{"option_id": 113, "id": "104"}],
              "isStock": "1",
              "stock": 20,
              "purchasingDisabled": "0",
              "maxQuantity": 0,
              "minQuantity": "2",
              "variantSku": "SKU-1",
              "variantId": 77,
              "productId": "12"
            },
            "qty": "3"
          }
        ],
        "stockErrorFile": "https://files.example.com/errors.csv",
        "stockErrorSkus": ["SKU-9"]
      }
    }
  }
}`

type captured struct {
	path   string
	auth   string
	body   map[string]any
	called int
}

func newBackend(t *testing.T, status int, response string) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.called++
		c.path = r.URL.Path
		c.auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &c.body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient(Config{
		B2BURL:    srv.URL + "/b2b",
		BCURL:     srv.URL + "/bc",
		Token:     "secret",
		RateLimit: 1000,
		RateBurst: 10,
	})
	require.NoError(t, err)
	return c
}

func productListData(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	vars, ok := body["variables"].(map[string]any)
	require.True(t, ok, "variables missing")
	data, ok := vars["productListData"].(map[string]any)
	require.True(t, ok, "productListData missing")
	return data
}

func TestNewClient_RequiresURLs(t *testing.T) {
	_, err := NewClient(Config{B2BURL: "http://x"})
	assert.Error(t, err)
}

func TestBulkUpload_B2B(t *testing.T) {
	srv, got := newBackend(t, http.StatusOK, okResponse)
	client := newTestClient(t, srv)
	channel := 5

	res, err := client.BulkUpload(context.Background(), core.EnrichmentRequest{
		CurrencyCode: "USD",
		ProductList:  []core.ParsedRow{{"variant_sku": "SKU-1", "qty": "3"}},
		ChannelID:    &channel,
		IsB2BUser:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, "/b2b", got.path)
	assert.Equal(t, "Bearer secret", got.auth)
	assert.Contains(t, got.body["query"], "productUpload")

	data := productListData(t, got.body)
	assert.Equal(t, "USD", data["currencyCode"])
	assert.NotContains(t, data, "channelId", "b2b requests carry no channel")
	assert.Len(t, data["productList"], 1)

	require.Len(t, res.ValidProduct, 1)
	row := res.ValidProduct[0]
	assert.Equal(t, "SKU-1", row.Product.VariantSku)
	assert.Equal(t, core.FlexString("20"), row.Product.Stock)
	assert.Equal(t, 77, row.Product.VariantID.Int())
	assert.Equal(t, float64(3), row.Quantity.Number())
	assert.Equal(t, core.FlexString("113"), row.Product.Options[0].OptionID)
	assert.Equal(t, "https://files.example.com/errors.csv", res.StockErrorFile)
	assert.Equal(t, []string{"SKU-9"}, res.StockErrorSkus)
}

func TestBulkUpload_StorefrontSendsChannel(t *testing.T) {
	srv, got := newBackend(t, http.StatusOK, okResponse)
	client := newTestClient(t, srv)
	channel := 5

	_, err := client.BulkUpload(context.Background(), core.EnrichmentRequest{
		CurrencyCode: "EUR",
		ChannelID:    &channel,
	})
	require.NoError(t, err)

	assert.Equal(t, "/bc", got.path)
	data := productListData(t, got.body)
	assert.EqualValues(t, 5, data["channelId"])
	assert.Equal(t, []any{}, data["productList"], "nil product list is sent as []")
}

func TestBulkUpload_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		response string
	}{
		{"server error", http.StatusInternalServerError, `{"message":"boom"}`},
		{"graphql errors", http.StatusOK, `{"data":null,"errors":[{"message":"not authorized"}]}`},
		{"invalid json", http.StatusOK, `{"data":`},
		{"missing productUpload", http.StatusOK, `{"data":{}}`},
		{"missing result", http.StatusOK, `{"data":{"productUpload":{}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newBackend(t, tt.status, tt.response)
			client := newTestClient(t, srv)

			res, err := client.BulkUpload(context.Background(), core.EnrichmentRequest{CurrencyCode: "USD", IsB2BUser: true})
			assert.Nil(t, res)
			assert.ErrorIs(t, err, core.ErrEnrichment)
		})
	}
}

func TestBulkUpload_InvalidCurrencyNeverCallsBackend(t *testing.T) {
	srv, got := newBackend(t, http.StatusOK, okResponse)
	client := newTestClient(t, srv)

	_, err := client.BulkUpload(context.Background(), core.EnrichmentRequest{CurrencyCode: "DOLLARS"})
	assert.ErrorIs(t, err, core.ErrInvalidCurrency)
	assert.ErrorIs(t, err, core.ErrEnrichment)
	assert.Zero(t, got.called)
}

func TestBulkUpload_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()
	client := newTestClient(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.BulkUpload(ctx, core.EnrichmentRequest{CurrencyCode: "USD", IsB2BUser: true})
	assert.ErrorIs(t, err, core.ErrEnrichment)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate([]byte("abc"), 5))
	assert.Equal(t, "ab...", truncate([]byte("abcdef"), 2))
}
