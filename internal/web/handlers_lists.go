package web

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/bulkorder/internal/core"
)

type quantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=1,lte=2147483647"`
}

// listItemPath reads {listID} and {itemID}.
func listItemPath(r *http.Request) (listID, itemID int64, err error) {
	if listID, err = pathID(r, "listID"); err != nil {
		return 0, 0, err
	}
	if itemID, err = pathID(r, "itemID"); err != nil {
		return 0, 0, err
	}
	return listID, itemID, nil
}

// handleListItems returns one page of a shopping list. Query: search,
// first (10, 20 or 50) and offset.
func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	listID, err := pathID(r, "listID")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	page, err := s.service.ListShoppingListItems(r.Context(), listID, core.ListQuery{
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		First:  parseIntParam(r, "first", core.DefaultPageSize, 1),
		Offset: parseIntParam(r, "offset", 0, 0),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleUpdateItem replaces an item's variant, quantity and options.
func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	listID, itemID, err := listItemPath(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var data core.ItemData
	if err := decodeJSON(w, r, &data); err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.service.UpdateShoppingListItem(r.Context(), listID, itemID, data); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateItemQuantity changes only the quantity; stored options are kept.
func (s *Server) handleUpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	listID, itemID, err := listItemPath(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req quantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.service.UpdateShoppingListItemQuantity(r.Context(), listID, itemID, req.Quantity); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	listID, itemID, err := listItemPath(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.service.DeleteShoppingListItem(r.Context(), listID, itemID); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
