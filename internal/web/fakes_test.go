package web

import (
	"context"
	"strings"
	"sync"

	"github.com/JonMunkholm/bulkorder/internal/core"
	db "github.com/JonMunkholm/bulkorder/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type stubEnricher struct {
	result *core.EnrichmentResult
	err    error
}

func (e *stubEnricher) BulkUpload(ctx context.Context, req core.EnrichmentRequest) (*core.EnrichmentResult, error) {
	return e.result, e.err
}

// stubStore implements the queries the handlers reach. Anything else hits
// the nil embedded Querier and panics, which fails the test loudly.
type stubStore struct {
	db.Querier

	mu        sync.Mutex
	lists     map[int64]db.ShoppingList
	items     map[int64]db.ShoppingListItem
	companies []db.Company
	active    map[int64]int64
	uploads   []db.BulkUpload
}

func newStubStore() *stubStore {
	return &stubStore{
		lists:  make(map[int64]db.ShoppingList),
		items:  make(map[int64]db.ShoppingListItem),
		active: make(map[int64]int64),
	}
}

func (s *stubStore) ExecTx(ctx context.Context, fn func(db.Querier) error) error {
	return fn(s)
}

func (s *stubStore) GetShoppingList(ctx context.Context, id int64) (db.ShoppingList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lists[id]
	if !ok {
		return db.ShoppingList{}, pgx.ErrNoRows
	}
	return l, nil
}

func (s *stubStore) listItems(listID int64) []db.ShoppingListItem {
	var out []db.ShoppingListItem
	for _, it := range s.items {
		if it.ListID == listID {
			out = append(out, it)
		}
	}
	return out
}

func (s *stubStore) CountShoppingListItems(ctx context.Context, arg db.CountShoppingListItemsParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.listItems(arg.ListID))), nil
}

func (s *stubStore) ListShoppingListItems(ctx context.Context, arg db.ListShoppingListItemsParams) ([]db.ShoppingListItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listItems(arg.ListID), nil
}

func (s *stubStore) ShoppingListGrandTotal(ctx context.Context, listID int64) (pgtype.Numeric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, it := range s.listItems(listID) {
		total = total.Add(core.NumericToDecimal(it.BasePrice).Mul(decimal.NewFromInt32(it.Quantity)))
	}
	return core.DecimalToNumeric(total), nil
}

func (s *stubStore) GetShoppingListItem(ctx context.Context, arg db.GetShoppingListItemParams) (db.ShoppingListItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[arg.ItemID]
	if !ok || it.ListID != arg.ListID {
		return db.ShoppingListItem{}, pgx.ErrNoRows
	}
	return it, nil
}

func (s *stubStore) UpdateShoppingListItem(ctx context.Context, arg db.UpdateShoppingListItemParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[arg.ItemID]
	if !ok || it.ListID != arg.ListID {
		return 0, nil
	}
	it.VariantID = arg.VariantID
	it.Quantity = arg.Quantity
	it.OptionList = arg.OptionList
	s.items[arg.ItemID] = it
	return 1, nil
}

func (s *stubStore) DeleteShoppingListItem(ctx context.Context, arg db.DeleteShoppingListItemParams) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[arg.ItemID]
	if !ok || it.ListID != arg.ListID {
		return 0, nil
	}
	delete(s.items, arg.ItemID)
	return 1, nil
}

func (s *stubStore) TouchShoppingList(ctx context.Context, id int64) error {
	return nil
}

func (s *stubStore) ListCompanies(ctx context.Context, search string) ([]db.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.Company
	for _, c := range s.companies {
		if search == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubStore) GetCompany(ctx context.Context, id int64) (db.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return db.Company{}, pgx.ErrNoRows
}

func (s *stubStore) EndMasqueradeSessions(ctx context.Context, salesRepID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.active[salesRepID]; !ok {
		return 0, nil
	}
	delete(s.active, salesRepID)
	return 1, nil
}

func (s *stubStore) StartMasqueradeSession(ctx context.Context, arg db.StartMasqueradeSessionParams) (db.MasqueradeSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[arg.SalesRepID] = arg.CompanyID
	return db.MasqueradeSession{ID: arg.ID, SalesRepID: arg.SalesRepID, CompanyID: arg.CompanyID}, nil
}

func (s *stubStore) GetActiveMasquerade(ctx context.Context, salesRepID int64) (db.MasqueradeSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.active[salesRepID]
	if !ok {
		return db.MasqueradeSession{}, pgx.ErrNoRows
	}
	return db.MasqueradeSession{SalesRepID: salesRepID, CompanyID: id}, nil
}

func (s *stubStore) InsertBulkUpload(ctx context.Context, arg db.InsertBulkUploadParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, db.BulkUpload{
		ID:           arg.ID,
		SessionID:    arg.SessionID,
		ClientID:     arg.ClientID,
		FileName:     arg.FileName,
		Target:       arg.Target,
		TotalRows:    arg.TotalRows,
		AcceptedRows: arg.AcceptedRows,
		RejectedRows: arg.RejectedRows,
	})
	return nil
}

func (s *stubStore) ListBulkUploads(ctx context.Context, arg db.ListBulkUploadsParams) ([]db.BulkUpload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []db.BulkUpload
	for _, u := range s.uploads {
		if u.ClientID == arg.ClientID {
			out = append(out, u)
		}
	}
	return out, nil
}

type stubQuotes struct {
	mu     sync.Mutex
	quotes map[string]core.QuoteInfo
}

func (q *stubQuotes) LoadQuote(ctx context.Context, client string) (core.QuoteInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.quotes[client], nil
}

func (q *stubQuotes) SaveQuote(ctx context.Context, client string, info core.QuoteInfo) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.quotes[client] = info
	return nil
}
