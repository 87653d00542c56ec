package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// Shopping list status codes.
const (
	ShoppingListApproved         int32 = 0
	ShoppingListDeleted          int32 = 20
	ShoppingListDraft            int32 = 30
	ShoppingListReadyForApproval int32 = 40
)

type ShoppingList struct {
	ID          int64              `json:"id"`
	CompanyID   int64              `json:"company_id"`
	Name        string             `json:"name"`
	Description pgtype.Text        `json:"description"`
	Status      int32              `json:"status"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

// ShoppingListItem is an item joined with its catalog variant. OptionList is
// the stored JSON array of {option_id, option_value}.
type ShoppingListItem struct {
	ID           int64              `json:"id"`
	ListID       int64              `json:"list_id"`
	ProductID    int64              `json:"product_id"`
	VariantID    int64              `json:"variant_id"`
	Quantity     int32              `json:"quantity"`
	OptionList   []byte             `json:"option_list"`
	ProductName  string             `json:"product_name"`
	VariantSku   string             `json:"variant_sku"`
	BasePrice    pgtype.Numeric     `json:"base_price"`
	PrimaryImage pgtype.Text        `json:"primary_image"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}

type CatalogVariant struct {
	VariantID    int64          `json:"variant_id"`
	ProductID    int64          `json:"product_id"`
	ProductName  string         `json:"product_name"`
	VariantSku   string         `json:"variant_sku"`
	BasePrice    pgtype.Numeric `json:"base_price"`
	PrimaryImage pgtype.Text    `json:"primary_image"`
}

type Company struct {
	ID        int64              `json:"id"`
	Name      string             `json:"name"`
	AdminName string             `json:"admin_name"`
	Email     string             `json:"email"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

type MasqueradeSession struct {
	ID         pgtype.UUID        `json:"id"`
	SalesRepID int64              `json:"sales_rep_id"`
	CompanyID  int64              `json:"company_id"`
	StartedAt  pgtype.Timestamptz `json:"started_at"`
	EndedAt    pgtype.Timestamptz `json:"ended_at"`
}

type BulkUpload struct {
	ID             pgtype.UUID        `json:"id"`
	SessionID      string             `json:"session_id"`
	ClientID       string             `json:"client_id"`
	FileName       string             `json:"file_name"`
	Target         string             `json:"target"`
	TargetRef      string             `json:"target_ref"`
	TotalRows      int32              `json:"total_rows"`
	AcceptedRows   int32              `json:"accepted_rows"`
	RejectedRows   int32              `json:"rejected_rows"`
	ReportLocation pgtype.Text        `json:"report_location"`
	UploadedAt     pgtype.Timestamptz `json:"uploaded_at"`
}
