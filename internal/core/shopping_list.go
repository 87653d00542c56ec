package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	db "github.com/JonMunkholm/bulkorder/internal/database"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// PageSizes are the page sizes the item table offers. Any other size is
// served as DefaultPageSize.
var PageSizes = []int{10, 20, 50}

const DefaultPageSize = 10

var validate = validator.New()

// ListQuery selects a page of shopping list items.
type ListQuery struct {
	Search string
	First  int
	Offset int
}

// ShoppingListItem is one line of a shopping list with its computed total.
type ShoppingListItem struct {
	ID           int64             `json:"itemId"`
	ProductID    int64             `json:"productId"`
	VariantID    int64             `json:"variantId"`
	ProductName  string            `json:"productName"`
	VariantSku   string            `json:"variantSku"`
	PrimaryImage string            `json:"primaryImage,omitempty"`
	Quantity     int               `json:"quantity"`
	BasePrice    decimal.Decimal   `json:"basePrice"`
	LineTotal    decimal.Decimal   `json:"lineTotal"`
	OptionList   []OptionSelection `json:"optionList"`
}

// ShoppingListPage is a page of items plus list-wide totals.
type ShoppingListPage struct {
	ListID     int64              `json:"listId"`
	Name       string             `json:"name"`
	ReadOnly   bool               `json:"readOnly"`
	Items      []ShoppingListItem `json:"items"`
	TotalCount int64              `json:"totalCount"`
	GrandTotal decimal.Decimal    `json:"grandTotal"`
	First      int                `json:"first"`
	Offset     int                `json:"offset"`
}

// ItemData is the editable part of a line item.
type ItemData struct {
	VariantID  int64             `json:"variantId" validate:"required,gt=0"`
	Quantity   int               `json:"quantity" validate:"gte=1,lte=2147483647"`
	OptionList []OptionSelection `json:"optionList"`
}

// storedOption is the option format persisted with an item.
type storedOption struct {
	OptionID    FlexString `json:"option_id"`
	OptionValue FlexString `json:"option_value"`
}

func normalizePageSize(first int) int {
	for _, size := range PageSizes {
		if first == size {
			return first
		}
	}
	return DefaultPageSize
}

// decodeOptions turns a stored option list into line-item selections.
func decodeOptions(raw []byte) ([]OptionSelection, error) {
	out := []OptionSelection{}
	if len(raw) == 0 {
		return out, nil
	}
	var stored []storedOption
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode option list: %w", err)
	}
	for _, o := range stored {
		out = append(out, OptionSelection{
			OptionID:    o.OptionID.String(),
			OptionValue: o.OptionValue.String(),
		})
	}
	return out, nil
}

// encodeOptions is the inverse of decodeOptions.
func encodeOptions(opts []OptionSelection) ([]byte, error) {
	stored := make([]storedOption, 0, len(opts))
	for _, o := range opts {
		stored = append(stored, storedOption{
			OptionID:    FlexString(o.OptionID),
			OptionValue: FlexString(o.OptionValue),
		})
	}
	return json.Marshal(stored)
}

func toListItem(row db.ShoppingListItem) ShoppingListItem {
	opts, err := decodeOptions(row.OptionList)
	if err != nil {
		slog.Warn("unreadable option list", "item_id", row.ID, "error", err)
		opts = []OptionSelection{}
	}
	price := NumericToDecimal(row.BasePrice)
	return ShoppingListItem{
		ID:           row.ID,
		ProductID:    row.ProductID,
		VariantID:    row.VariantID,
		ProductName:  row.ProductName,
		VariantSku:   row.VariantSku,
		PrimaryImage: row.PrimaryImage.String,
		Quantity:     int(row.Quantity),
		BasePrice:    price,
		LineTotal:    price.Mul(decimal.NewFromInt32(row.Quantity)).Round(2),
		OptionList:   opts,
	}
}

func (s *Service) store() (db.Store, error) {
	if s.deps.Store == nil {
		return nil, errors.New("shopping lists are not configured")
	}
	return s.deps.Store, nil
}

// loadList fetches a list, treating deleted lists as missing.
func loadList(ctx context.Context, q db.Querier, listID int64) (db.ShoppingList, error) {
	list, err := q.GetShoppingList(ctx, listID)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && list.Status == db.ShoppingListDeleted) {
		return db.ShoppingList{}, fmt.Errorf("%w: %d", ErrListNotFound, listID)
	}
	if err != nil {
		return db.ShoppingList{}, fmt.Errorf("get shopping list %d: %w", listID, err)
	}
	return list, nil
}

// loadEditableList is loadList plus the read-only check.
func loadEditableList(ctx context.Context, q db.Querier, listID int64) (db.ShoppingList, error) {
	list, err := loadList(ctx, q, listID)
	if err != nil {
		return list, err
	}
	if list.Status == db.ShoppingListReadyForApproval {
		return list, fmt.Errorf("%w: %d", ErrListReadOnly, listID)
	}
	return list, nil
}

// ListShoppingListItems returns one page of a list's items.
func (s *Service) ListShoppingListItems(ctx context.Context, listID int64, q ListQuery) (ShoppingListPage, error) {
	store, err := s.store()
	if err != nil {
		return ShoppingListPage{}, err
	}
	list, err := loadList(ctx, store, listID)
	if err != nil {
		return ShoppingListPage{}, err
	}

	first := normalizePageSize(q.First)
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	total, err := store.CountShoppingListItems(ctx, db.CountShoppingListItemsParams{
		ListID: listID,
		Search: q.Search,
	})
	if err != nil {
		return ShoppingListPage{}, fmt.Errorf("count items of list %d: %w", listID, err)
	}

	rows, err := store.ListShoppingListItems(ctx, db.ListShoppingListItemsParams{
		ListID: listID,
		Search: q.Search,
		Limit:  int32(first),
		Offset: int32(offset),
	})
	if err != nil {
		return ShoppingListPage{}, fmt.Errorf("list items of list %d: %w", listID, err)
	}

	grand, err := store.ShoppingListGrandTotal(ctx, listID)
	if err != nil {
		return ShoppingListPage{}, fmt.Errorf("grand total of list %d: %w", listID, err)
	}

	items := make([]ShoppingListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, toListItem(row))
	}

	return ShoppingListPage{
		ListID:     list.ID,
		Name:       list.Name,
		ReadOnly:   list.Status == db.ShoppingListReadyForApproval,
		Items:      items,
		TotalCount: total,
		GrandTotal: NumericToDecimal(grand).Round(2),
		First:      first,
		Offset:     offset,
	}, nil
}

// UpdateShoppingListItem replaces an item's variant, quantity and options.
func (s *Service) UpdateShoppingListItem(ctx context.Context, listID, itemID int64, data ItemData) error {
	if err := s.saveItem(ctx, listID, itemID, data); err != nil {
		return err
	}
	s.notify(ctx, TipSuccess, "Product updated successfully")
	return nil
}

// UpdateShoppingListItemQuantity changes only the quantity, keeping the
// item's stored variant and options.
func (s *Service) UpdateShoppingListItemQuantity(ctx context.Context, listID, itemID int64, quantity int) error {
	store, err := s.store()
	if err != nil {
		return err
	}

	row, err := store.GetShoppingListItem(ctx, db.GetShoppingListItemParams{ListID: listID, ItemID: itemID})
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %d", ErrItemNotFound, itemID)
	}
	if err != nil {
		return fmt.Errorf("get item %d: %w", itemID, err)
	}

	opts, err := decodeOptions(row.OptionList)
	if err != nil {
		return fmt.Errorf("item %d: %w", itemID, err)
	}

	if err := s.saveItem(ctx, listID, itemID, ItemData{
		VariantID:  row.VariantID,
		Quantity:   quantity,
		OptionList: opts,
	}); err != nil {
		return err
	}
	s.notify(ctx, TipSuccess, "Product quantity updated successfully")
	return nil
}

func (s *Service) saveItem(ctx context.Context, listID, itemID int64, data ItemData) error {
	if err := validate.Struct(data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	store, err := s.store()
	if err != nil {
		return err
	}
	options, err := encodeOptions(data.OptionList)
	if err != nil {
		return fmt.Errorf("encode options: %w", err)
	}

	return store.ExecTx(ctx, func(q db.Querier) error {
		if _, err := loadEditableList(ctx, q, listID); err != nil {
			return err
		}
		n, err := q.UpdateShoppingListItem(ctx, db.UpdateShoppingListItemParams{
			ListID:     listID,
			ItemID:     itemID,
			VariantID:  data.VariantID,
			Quantity:   int32(data.Quantity),
			OptionList: options,
		})
		if err != nil {
			return fmt.Errorf("update item %d: %w", itemID, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %d", ErrItemNotFound, itemID)
		}
		return q.TouchShoppingList(ctx, listID)
	})
}

// DeleteShoppingListItem removes an item from a list.
func (s *Service) DeleteShoppingListItem(ctx context.Context, listID, itemID int64) error {
	store, err := s.store()
	if err != nil {
		return err
	}
	return store.ExecTx(ctx, func(q db.Querier) error {
		if _, err := loadEditableList(ctx, q, listID); err != nil {
			return err
		}
		n, err := q.DeleteShoppingListItem(ctx, db.DeleteShoppingListItemParams{ListID: listID, ItemID: itemID})
		if err != nil {
			return fmt.Errorf("delete item %d: %w", itemID, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %d", ErrItemNotFound, itemID)
		}
		return q.TouchShoppingList(ctx, listID)
	})
}

// shoppingListTarget adds accepted upload rows to a Postgres shopping list.
// ref is the list id.
type shoppingListTarget struct {
	svc *Service
}

func (t *shoppingListTarget) Key() string   { return TargetShoppingList }
func (t *shoppingListTarget) Label() string { return "shopping list" }

func (t *shoppingListTarget) AddItems(ctx context.Context, ref string, addition ListAddition) (int, error) {
	listID, err := strconv.ParseInt(ref, 10, 64)
	if err != nil || listID <= 0 {
		return 0, fmt.Errorf("%w: shopping list id %q", ErrInvalidInput, ref)
	}
	store, err := t.svc.store()
	if err != nil {
		return 0, err
	}

	added := 0
	err = store.ExecTx(ctx, func(q db.Querier) error {
		added = 0
		if _, err := loadEditableList(ctx, q, listID); err != nil {
			return err
		}
		for _, item := range addition.Items {
			qty := math.Round(item.Quantity)
			if qty < 1 || qty > math.MaxInt32 {
				slog.Warn("skipping upload row with unusable quantity",
					"list_id", listID,
					"variant_id", item.VariantID,
					"quantity", item.Quantity,
				)
				continue
			}
			options, err := encodeOptions(item.OptionList)
			if err != nil {
				return fmt.Errorf("encode options: %w", err)
			}
			if _, err := q.AddShoppingListItem(ctx, db.AddShoppingListItemParams{
				ListID:     listID,
				ProductID:  int64(item.ProductID),
				VariantID:  int64(item.VariantID),
				Quantity:   int32(qty),
				OptionList: options,
			}); err != nil {
				return fmt.Errorf("add variant %d to list %d: %w", item.VariantID, listID, err)
			}
			added++
		}
		return q.TouchShoppingList(ctx, listID)
	})
	if err != nil {
		return 0, err
	}

	if addition.StockErrorFile != "" {
		slog.Info("upload had stock errors", "list_id", listID, "stock_error_file", addition.StockErrorFile)
	}
	return added, nil
}
