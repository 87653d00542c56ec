package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

type Querier interface {
	// shopping lists
	GetShoppingList(ctx context.Context, id int64) (ShoppingList, error)
	CountShoppingListItems(ctx context.Context, arg CountShoppingListItemsParams) (int64, error)
	ListShoppingListItems(ctx context.Context, arg ListShoppingListItemsParams) ([]ShoppingListItem, error)
	ShoppingListGrandTotal(ctx context.Context, listID int64) (pgtype.Numeric, error)
	GetShoppingListItem(ctx context.Context, arg GetShoppingListItemParams) (ShoppingListItem, error)
	UpdateShoppingListItem(ctx context.Context, arg UpdateShoppingListItemParams) (int64, error)
	DeleteShoppingListItem(ctx context.Context, arg DeleteShoppingListItemParams) (int64, error)
	AddShoppingListItem(ctx context.Context, arg AddShoppingListItemParams) (int64, error)
	TouchShoppingList(ctx context.Context, id int64) error

	// companies and masquerade
	ListCompanies(ctx context.Context, search string) ([]Company, error)
	GetCompany(ctx context.Context, id int64) (Company, error)
	EndMasqueradeSessions(ctx context.Context, salesRepID int64) (int64, error)
	StartMasqueradeSession(ctx context.Context, arg StartMasqueradeSessionParams) (MasqueradeSession, error)
	GetActiveMasquerade(ctx context.Context, salesRepID int64) (MasqueradeSession, error)

	// upload history
	InsertBulkUpload(ctx context.Context, arg InsertBulkUploadParams) error
	ListBulkUploads(ctx context.Context, arg ListBulkUploadsParams) ([]BulkUpload, error)
}

var _ Querier = (*Queries)(nil)
