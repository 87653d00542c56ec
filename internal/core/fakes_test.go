package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	db "github.com/JonMunkholm/bulkorder/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// ---- in-memory store ----

type fakeStore struct {
	mu        sync.Mutex
	lists     map[int64]db.ShoppingList
	items     map[int64]db.ShoppingListItem
	variants  map[int64]db.CatalogVariant
	companies []db.Company
	masq      []db.MasqueradeSession
	uploads   []db.BulkUpload
	nextID    int64

	insertUploadErr error
	txCount         int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lists:    make(map[int64]db.ShoppingList),
		items:    make(map[int64]db.ShoppingListItem),
		variants: make(map[int64]db.CatalogVariant),
		nextID:   100,
	}
}

func (f *fakeStore) addList(id int64, status int32) {
	f.lists[id] = db.ShoppingList{ID: id, Name: "List", Status: status}
}

func (f *fakeStore) addVariant(variantID int64, sku, price string) {
	f.variants[variantID] = db.CatalogVariant{
		VariantID:   variantID,
		ProductName: "Product " + sku,
		VariantSku:  sku,
		BasePrice:   ToPgNumeric(price),
	}
}

func (f *fakeStore) addItem(listID, itemID, variantID int64, qty int32, options string) {
	f.items[itemID] = db.ShoppingListItem{
		ID:         itemID,
		ListID:     listID,
		VariantID:  variantID,
		Quantity:   qty,
		OptionList: []byte(options),
	}
}

// joined fills catalog columns the way the LEFT JOIN does; caller holds mu.
func (f *fakeStore) joined(it db.ShoppingListItem) db.ShoppingListItem {
	if v, ok := f.variants[it.VariantID]; ok {
		it.ProductName = v.ProductName
		it.VariantSku = v.VariantSku
		it.BasePrice = v.BasePrice
	} else {
		it.BasePrice = DecimalToNumeric(decimal.Zero)
	}
	return it
}

func (f *fakeStore) listItems(listID int64, search string) []db.ShoppingListItem {
	var out []db.ShoppingListItem
	for _, it := range f.items {
		if it.ListID != listID {
			continue
		}
		it = f.joined(it)
		if search != "" {
			s := strings.ToLower(search)
			if !strings.Contains(strings.ToLower(it.ProductName), s) &&
				!strings.Contains(strings.ToLower(it.VariantSku), s) {
				continue
			}
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeStore) GetShoppingList(_ context.Context, id int64) (db.ShoppingList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.lists[id]
	if !ok {
		return db.ShoppingList{}, pgx.ErrNoRows
	}
	return l, nil
}

func (f *fakeStore) CountShoppingListItems(_ context.Context, arg db.CountShoppingListItemsParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.listItems(arg.ListID, arg.Search))), nil
}

func (f *fakeStore) ListShoppingListItems(_ context.Context, arg db.ListShoppingListItemsParams) ([]db.ShoppingListItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.listItems(arg.ListID, arg.Search)
	start := min(int(arg.Offset), len(all))
	end := min(start+int(arg.Limit), len(all))
	return all[start:end], nil
}

func (f *fakeStore) ShoppingListGrandTotal(_ context.Context, listID int64) (pgtype.Numeric, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := decimal.Zero
	for _, it := range f.listItems(listID, "") {
		total = total.Add(NumericToDecimal(it.BasePrice).Mul(decimal.NewFromInt32(it.Quantity)))
	}
	return DecimalToNumeric(total), nil
}

func (f *fakeStore) GetShoppingListItem(_ context.Context, arg db.GetShoppingListItemParams) (db.ShoppingListItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[arg.ItemID]
	if !ok || it.ListID != arg.ListID {
		return db.ShoppingListItem{}, pgx.ErrNoRows
	}
	return f.joined(it), nil
}

func (f *fakeStore) UpdateShoppingListItem(_ context.Context, arg db.UpdateShoppingListItemParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[arg.ItemID]
	if !ok || it.ListID != arg.ListID {
		return 0, nil
	}
	it.VariantID = arg.VariantID
	it.Quantity = arg.Quantity
	it.OptionList = arg.OptionList
	f.items[arg.ItemID] = it
	return 1, nil
}

func (f *fakeStore) DeleteShoppingListItem(_ context.Context, arg db.DeleteShoppingListItemParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[arg.ItemID]
	if !ok || it.ListID != arg.ListID {
		return 0, nil
	}
	delete(f.items, arg.ItemID)
	return 1, nil
}

func (f *fakeStore) AddShoppingListItem(_ context.Context, arg db.AddShoppingListItemParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.items[f.nextID] = db.ShoppingListItem{
		ID:         f.nextID,
		ListID:     arg.ListID,
		ProductID:  arg.ProductID,
		VariantID:  arg.VariantID,
		Quantity:   arg.Quantity,
		OptionList: arg.OptionList,
	}
	return f.nextID, nil
}

func (f *fakeStore) TouchShoppingList(_ context.Context, _ int64) error { return nil }

func (f *fakeStore) ListCompanies(_ context.Context, search string) ([]db.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db.Company
	for _, c := range f.companies {
		if search == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) GetCompany(_ context.Context, id int64) (db.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return db.Company{}, pgx.ErrNoRows
}

func (f *fakeStore) EndMasqueradeSessions(_ context.Context, salesRepID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for i, m := range f.masq {
		if m.SalesRepID == salesRepID && !m.EndedAt.Valid {
			f.masq[i].EndedAt = pgtype.Timestamptz{Valid: true}
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) StartMasqueradeSession(_ context.Context, arg db.StartMasqueradeSessionParams) (db.MasqueradeSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := db.MasqueradeSession{ID: arg.ID, SalesRepID: arg.SalesRepID, CompanyID: arg.CompanyID}
	f.masq = append(f.masq, m)
	return m, nil
}

func (f *fakeStore) GetActiveMasquerade(_ context.Context, salesRepID int64) (db.MasqueradeSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.masq) - 1; i >= 0; i-- {
		if m := f.masq[i]; m.SalesRepID == salesRepID && !m.EndedAt.Valid {
			return m, nil
		}
	}
	return db.MasqueradeSession{}, pgx.ErrNoRows
}

func (f *fakeStore) InsertBulkUpload(_ context.Context, arg db.InsertBulkUploadParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertUploadErr != nil {
		return f.insertUploadErr
	}
	f.uploads = append(f.uploads, db.BulkUpload{
		ID:             arg.ID,
		SessionID:      arg.SessionID,
		ClientID:       arg.ClientID,
		FileName:       arg.FileName,
		Target:         arg.Target,
		TargetRef:      arg.TargetRef,
		TotalRows:      arg.TotalRows,
		AcceptedRows:   arg.AcceptedRows,
		RejectedRows:   arg.RejectedRows,
		ReportLocation: arg.ReportLocation,
	})
	return nil
}

func (f *fakeStore) ListBulkUploads(_ context.Context, arg db.ListBulkUploadsParams) ([]db.BulkUpload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db.BulkUpload
	for i := len(f.uploads) - 1; i >= 0 && len(out) < int(arg.Limit); i-- {
		if f.uploads[i].ClientID == arg.ClientID {
			out = append(out, f.uploads[i])
		}
	}
	return out, nil
}

func (f *fakeStore) ExecTx(_ context.Context, fn func(db.Querier) error) error {
	f.mu.Lock()
	f.txCount++
	f.mu.Unlock()
	return fn(f)
}

var _ db.Store = (*fakeStore)(nil)

// ---- enricher ----

// fakeEnricher answers each call from respond. When block returns a channel
// the call waits for it to close first; unless ignoreCancel is set, a
// cancelled ctx ends the wait early.
type fakeEnricher struct {
	mu           sync.Mutex
	requests     []EnrichmentRequest
	block        func(req EnrichmentRequest) <-chan struct{}
	ignoreCancel bool
	respond      func(req EnrichmentRequest) (*EnrichmentResult, error)
}

func (e *fakeEnricher) BulkUpload(ctx context.Context, req EnrichmentRequest) (*EnrichmentResult, error) {
	e.mu.Lock()
	e.requests = append(e.requests, req)
	e.mu.Unlock()

	if e.block != nil {
		if gate := e.block(req); gate != nil {
			if e.ignoreCancel {
				<-gate
			} else {
				select {
				case <-gate:
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
		}
	}
	if e.respond == nil {
		return &EnrichmentResult{}, nil
	}
	return e.respond(req)
}

func (e *fakeEnricher) calls() []EnrichmentRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]EnrichmentRequest(nil), e.requests...)
}

// ---- quotes ----

type fakeQuotes struct {
	mu      sync.Mutex
	infos   map[string]QuoteInfo
	loadErr error
}

func newFakeQuotes() *fakeQuotes {
	return &fakeQuotes{infos: make(map[string]QuoteInfo)}
}

func (q *fakeQuotes) LoadQuote(_ context.Context, client string) (QuoteInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.loadErr != nil {
		return QuoteInfo{}, q.loadErr
	}
	return q.infos[client], nil
}

func (q *fakeQuotes) SaveQuote(_ context.Context, client string, info QuoteInfo) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.infos[client] = info
	return nil
}

// ---- tokens ----

type fakeTokens struct{ err error }

func (t fakeTokens) Issue(salesRepID, companyID int64) (string, time.Time, error) {
	if t.err != nil {
		return "", time.Time{}, t.err
	}
	return fmt.Sprintf("token-%d-%d", salesRepID, companyID), time.Unix(1700000000, 0), nil
}

// ---- report archiver ----

type fakeReports struct {
	mu       sync.Mutex
	archived []Classification
	err      error
}

func (r *fakeReports) Archive(_ context.Context, sessionID string, c Classification) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	r.archived = append(r.archived, c)
	return "s3://reports/" + sessionID + ".xlsx", nil
}

// ---- target ----

type recordingTarget struct {
	mu    sync.Mutex
	calls []ListAddition
	err   error
}

func (r *recordingTarget) Key() string   { return "recording" }
func (r *recordingTarget) Label() string { return "recording list" }

func (r *recordingTarget) AddItems(_ context.Context, _ string, addition ListAddition) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, addition)
	if r.err != nil {
		return 0, r.err
	}
	return len(addition.Items), nil
}

var errBackend = errors.New("backend exploded")
