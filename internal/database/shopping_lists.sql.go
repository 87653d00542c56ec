package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getShoppingList = `-- name: GetShoppingList :one
SELECT id, company_id, name, description, status, created_at, updated_at
FROM shopping_lists
WHERE id = $1
`

func (q *Queries) GetShoppingList(ctx context.Context, id int64) (ShoppingList, error) {
	row := q.db.QueryRow(ctx, getShoppingList, id)
	var i ShoppingList
	err := row.Scan(
		&i.ID,
		&i.CompanyID,
		&i.Name,
		&i.Description,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

// itemColumns joins items to the catalog so name, sku and price come from
// the current variant.
const itemColumns = `
	i.id, i.list_id, i.product_id, i.variant_id, i.quantity, i.option_list,
	COALESCE(v.product_name, ''), COALESCE(v.variant_sku, ''),
	COALESCE(v.base_price, 0), v.primary_image, i.created_at, i.updated_at
FROM shopping_list_items i
LEFT JOIN catalog_variants v ON v.variant_id = i.variant_id
`

const searchFilter = `
	AND ($2::text = '' OR v.product_name ILIKE '%' || $2 || '%' OR v.variant_sku ILIKE '%' || $2 || '%')
`

const countShoppingListItems = `-- name: CountShoppingListItems :one
SELECT count(*)
FROM shopping_list_items i
LEFT JOIN catalog_variants v ON v.variant_id = i.variant_id
WHERE i.list_id = $1` + searchFilter

type CountShoppingListItemsParams struct {
	ListID int64  `json:"list_id"`
	Search string `json:"search"`
}

func (q *Queries) CountShoppingListItems(ctx context.Context, arg CountShoppingListItemsParams) (int64, error) {
	row := q.db.QueryRow(ctx, countShoppingListItems, arg.ListID, arg.Search)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listShoppingListItems = `-- name: ListShoppingListItems :many
SELECT` + itemColumns + `WHERE i.list_id = $1` + searchFilter + `
ORDER BY i.id
LIMIT $3 OFFSET $4
`

type ListShoppingListItemsParams struct {
	ListID int64  `json:"list_id"`
	Search string `json:"search"`
	Limit  int32  `json:"limit"`
	Offset int32  `json:"offset"`
}

func (q *Queries) ListShoppingListItems(ctx context.Context, arg ListShoppingListItemsParams) ([]ShoppingListItem, error) {
	rows, err := q.db.Query(ctx, listShoppingListItems, arg.ListID, arg.Search, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ShoppingListItem{}
	for rows.Next() {
		i, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const shoppingListGrandTotal = `-- name: ShoppingListGrandTotal :one
SELECT COALESCE(SUM(COALESCE(v.base_price, 0) * i.quantity), 0)::numeric
FROM shopping_list_items i
LEFT JOIN catalog_variants v ON v.variant_id = i.variant_id
WHERE i.list_id = $1
`

func (q *Queries) ShoppingListGrandTotal(ctx context.Context, listID int64) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, shoppingListGrandTotal, listID)
	var total pgtype.Numeric
	err := row.Scan(&total)
	return total, err
}

const getShoppingListItem = `-- name: GetShoppingListItem :one
SELECT` + itemColumns + `WHERE i.list_id = $1 AND i.id = $2
`

type GetShoppingListItemParams struct {
	ListID int64 `json:"list_id"`
	ItemID int64 `json:"item_id"`
}

func (q *Queries) GetShoppingListItem(ctx context.Context, arg GetShoppingListItemParams) (ShoppingListItem, error) {
	return scanItem(q.db.QueryRow(ctx, getShoppingListItem, arg.ListID, arg.ItemID))
}

const updateShoppingListItem = `-- name: UpdateShoppingListItem :execrows
UPDATE shopping_list_items
SET variant_id = $3, quantity = $4, option_list = $5, updated_at = now()
WHERE list_id = $1 AND id = $2
`

type UpdateShoppingListItemParams struct {
	ListID     int64  `json:"list_id"`
	ItemID     int64  `json:"item_id"`
	VariantID  int64  `json:"variant_id"`
	Quantity   int32  `json:"quantity"`
	OptionList []byte `json:"option_list"`
}

func (q *Queries) UpdateShoppingListItem(ctx context.Context, arg UpdateShoppingListItemParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateShoppingListItem,
		arg.ListID,
		arg.ItemID,
		arg.VariantID,
		arg.Quantity,
		arg.OptionList,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteShoppingListItem = `-- name: DeleteShoppingListItem :execrows
DELETE FROM shopping_list_items
WHERE list_id = $1 AND id = $2
`

type DeleteShoppingListItemParams struct {
	ListID int64 `json:"list_id"`
	ItemID int64 `json:"item_id"`
}

func (q *Queries) DeleteShoppingListItem(ctx context.Context, arg DeleteShoppingListItemParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteShoppingListItem, arg.ListID, arg.ItemID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const addShoppingListItem = `-- name: AddShoppingListItem :one
INSERT INTO shopping_list_items (list_id, product_id, variant_id, quantity, option_list)
VALUES ($1, $2, $3, $4, $5)
RETURNING id
`

type AddShoppingListItemParams struct {
	ListID     int64  `json:"list_id"`
	ProductID  int64  `json:"product_id"`
	VariantID  int64  `json:"variant_id"`
	Quantity   int32  `json:"quantity"`
	OptionList []byte `json:"option_list"`
}

func (q *Queries) AddShoppingListItem(ctx context.Context, arg AddShoppingListItemParams) (int64, error) {
	row := q.db.QueryRow(ctx, addShoppingListItem,
		arg.ListID,
		arg.ProductID,
		arg.VariantID,
		arg.Quantity,
		arg.OptionList,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const touchShoppingList = `-- name: TouchShoppingList :exec
UPDATE shopping_lists SET updated_at = now() WHERE id = $1
`

func (q *Queries) TouchShoppingList(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, touchShoppingList, id)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (ShoppingListItem, error) {
	var i ShoppingListItem
	err := row.Scan(
		&i.ID,
		&i.ListID,
		&i.ProductID,
		&i.VariantID,
		&i.Quantity,
		&i.OptionList,
		&i.ProductName,
		&i.VariantSku,
		&i.BasePrice,
		&i.PrimaryImage,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
