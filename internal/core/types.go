package core

import (
	"time"
)

// RawRow is the ordered fields of one CSV line, header excluded.
type RawRow []string

// ParsedRow maps a header column name to the row's value for that column.
// It is the unit sent to the enrichment backend.
type ParsedRow map[string]string

// ProductOption is one option selection as returned by enrichment.
type ProductOption struct {
	OptionID FlexString `json:"option_id"`
	ValueID  FlexString `json:"id"`
}

// EnrichedProduct is the catalog data the backend resolved for a row.
// Flags such as IsStock and PurchasingDisabled are "1"/"0" strings on the wire.
type EnrichedProduct struct {
	Options            []ProductOption `json:"option"`
	IsStock            FlexString      `json:"isStock"`
	Stock              FlexString      `json:"stock"`
	PurchasingDisabled FlexString      `json:"purchasingDisabled"`
	MaxQuantity        FlexString      `json:"maxQuantity"`
	MinQuantity        FlexString      `json:"minQuantity"`
	VariantSku         string          `json:"variantSku"`
	VariantID          FlexString      `json:"variantId"`
	ProductID          FlexString      `json:"productId"`
}

// EnrichedRow is one server-populated upload row. Immutable once returned.
type EnrichedRow struct {
	Product  EnrichedProduct `json:"products"`
	Quantity FlexString      `json:"qty"`
}

// EnrichmentResult is what the bulk-upload endpoint returns for a file.
type EnrichmentResult struct {
	ValidProduct   []EnrichedRow `json:"validProduct"`
	StockErrorFile string        `json:"stockErrorFile"`
	StockErrorSkus []string      `json:"stockErrorSkus"`
}

// OptionSelection is an accepted row's option in list line-item format.
type OptionSelection struct {
	OptionID    string `json:"optionId"`
	OptionValue string `json:"optionValue"`
}

// AcceptedProduct is a row shaped for an order or quote line item.
type AcceptedProduct struct {
	ProductID  int               `json:"productId"`
	VariantID  int               `json:"variantId"`
	Quantity   float64           `json:"quantity"`
	OptionList []OptionSelection `json:"optionList"`
}

// StockLimit reports a row rejected for insufficient stock.
type StockLimit struct {
	VariantSku      string  `json:"variantSku"`
	AvailableAmount float64 `json:"availableAmount"`
}

// MinQuantityLimit reports a row ordered below its minimum purchase quantity.
type MinQuantityLimit struct {
	VariantSku  string  `json:"variantSku"`
	MinQuantity float64 `json:"minQuantity"`
}

// MaxQuantityLimit reports a row ordered above its maximum purchase quantity.
type MaxQuantityLimit struct {
	VariantSku  string  `json:"variantSku"`
	MaxQuantity float64 `json:"maxQuantity"`
}

// Classification is the six-bucket outcome of an upload. Every enriched row
// lands in exactly one bucket.
type Classification struct {
	NotPurchasable    []string           `json:"notPurchaseSku"`
	Accepted          []AcceptedProduct  `json:"productItems"`
	InsufficientStock []StockLimit       `json:"limitProduct"`
	BelowMinQuantity  []MinQuantityLimit `json:"minLimitQuantity"`
	AboveMaxQuantity  []MaxQuantityLimit `json:"maxLimitQuantity"`
	OutOfStock        []string           `json:"outOfStock"`

	// StockErrorFile is set only when the backend reported stock-error skus.
	StockErrorFile string `json:"stockErrorFile,omitempty"`
}

// Total returns the number of rows across all buckets.
func (c Classification) Total() int {
	return len(c.NotPurchasable) + len(c.Accepted) + len(c.InsufficientStock) +
		len(c.BelowMinQuantity) + len(c.AboveMaxQuantity) + len(c.OutOfStock)
}

// Rejected returns the number of rows outside the accepted bucket.
func (c Classification) Rejected() int {
	return c.Total() - len(c.Accepted)
}

// Account describes who is uploading; it selects the enrichment variant.
type Account struct {
	IsB2BUser    bool   `json:"isB2BUser"`
	ChannelID    int    `json:"channelId,omitempty"`
	CurrencyCode string `json:"currencyCode,omitempty"`
}

// EnrichmentRequest is sent to the bulk-upload endpoint. ChannelID is only
// set for non-B2B shoppers.
type EnrichmentRequest struct {
	CurrencyCode string      `json:"currencyCode"`
	ProductList  []ParsedRow `json:"productList"`
	ChannelID    *int        `json:"channelId,omitempty"`
	IsB2BUser    bool        `json:"-"`
}

// UploadStep is the upload dialog state.
type UploadStep string

const (
	StepInit    UploadStep = "init"
	StepLoading UploadStep = "loading"
	StepEnd     UploadStep = "end"
)

// SessionSnapshot is a point-in-time copy of an upload session.
type SessionSnapshot struct {
	ID         string            `json:"id"`
	Step       UploadStep        `json:"step"`
	FileName   string            `json:"fileName,omitempty"`
	RowCount   int               `json:"rowCount"`
	Generation uint64            `json:"generation"`
	Confirmed  bool              `json:"confirmed"`
	Result     *EnrichmentResult `json:"result,omitempty"`
	Account    Account           `json:"account"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// ListAddition is what a list target receives on confirm.
type ListAddition struct {
	Items          []AcceptedProduct `json:"items"`
	StockErrorFile string            `json:"stockErrorFile,omitempty"`
}

// ConfirmResult is returned to the caller after confirming an upload.
type ConfirmResult struct {
	SessionID      string         `json:"sessionId"`
	Target         string         `json:"target"`
	Classification Classification `json:"classification"`
	Added          int            `json:"added"`
	ReportLocation string         `json:"reportLocation,omitempty"`
}
