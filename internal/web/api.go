package web

import (
	"encoding/json/v2"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/bookstandapp/bookstand-web/internal/catalog"
	"github.com/bookstandapp/bookstand-web/internal/domain"
	"github.com/bookstandapp/bookstand-web/internal/http/response"
	"github.com/bookstandapp/bookstand-web/internal/merge"
	"github.com/bookstandapp/bookstand-web/internal/sse"
)

// Emitter broadcasts inventory change events to connected stream clients.
type Emitter interface {
	Emit(event sse.Event)
}

// handleCandidates returns the typeahead view for the add-to-inventory flow:
// books not yet in the store's inventory, filtered by q, capped at limit.
func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	storeID, err := strconv.ParseInt(chi.URLParam(r, "storeID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid store ID", s.logger)
		return
	}

	query := r.URL.Query().Get("q")
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, _ = strconv.Atoi(limitStr)
	}

	var (
		books     []domain.Book
		inventory []domain.InventoryItem
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		books, err = s.catalog.ListBooks(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		inventory, err = s.catalog.ListInventory(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to fetch candidates", "error", err, "store_id", storeID)
		response.HandleError(w, err, s.logger)
		return
	}

	candidates := merge.Candidates(books, inventory, storeID)
	response.Success(w, merge.TypeaheadView(candidates, query, limit), s.logger)
}

// createInventoryRequest is the POST /api/inventory body.
type createInventoryRequest struct {
	StoreID int64    `json:"store_id" validate:"required"`
	BookID  int64    `json:"book_id" validate:"required"`
	Price   *float64 `json:"price" validate:"required,gte=0"`
}

// handleCreateInventory attaches a book to a store. Validation runs before
// any catalog call so a bad price never reaches the upstream.
func (s *Server) handleCreateInventory(w http.ResponseWriter, r *http.Request) {
	var req createInventoryRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	item, err := s.catalog.CreateInventory(r.Context(), catalog.CreateInventoryParams{
		StoreID: req.StoreID,
		BookID:  req.BookID,
		Price:   *req.Price,
	})
	if err != nil {
		s.logger.Error("Failed to create inventory item", "error", err,
			"store_id", req.StoreID, "book_id", req.BookID)
		response.HandleError(w, err, s.logger)
		return
	}

	s.events.Emit(sse.NewInventoryCreatedEvent(item))
	response.Created(w, item, s.logger)
}

// updateInventoryRequest is the PATCH /api/inventory/{id} body.
type updateInventoryRequest struct {
	Price *float64 `json:"price" validate:"required,gte=0"`
}

// handleUpdateInventory changes the price of an inventory item.
func (s *Server) handleUpdateInventory(w http.ResponseWriter, r *http.Request) {
	inventoryID, err := strconv.ParseInt(chi.URLParam(r, "inventoryID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid inventory ID", s.logger)
		return
	}

	var req updateInventoryRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.validator.Validate(req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	item, err := s.catalog.UpdateInventoryPrice(r.Context(), inventoryID, *req.Price)
	if err != nil {
		s.logger.Error("Failed to update inventory price", "error", err, "inventory_id", inventoryID)
		response.HandleError(w, err, s.logger)
		return
	}

	s.events.Emit(sse.NewInventoryUpdatedEvent(item))
	response.Success(w, item, s.logger)
}

// handleDeleteInventory removes an inventory item. The optional store_id
// query parameter scopes the change event so listening store pages can tell
// whether the deletion concerns them.
func (s *Server) handleDeleteInventory(w http.ResponseWriter, r *http.Request) {
	inventoryID, err := strconv.ParseInt(chi.URLParam(r, "inventoryID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid inventory ID", s.logger)
		return
	}

	if err := s.catalog.DeleteInventory(r.Context(), inventoryID); err != nil {
		s.logger.Error("Failed to delete inventory item", "error", err, "inventory_id", inventoryID)
		response.HandleError(w, err, s.logger)
		return
	}

	storeID, _ := strconv.ParseInt(r.URL.Query().Get("store_id"), 10, 64)
	s.events.Emit(sse.NewInventoryDeletedEvent(inventoryID, storeID))
	response.NoContent(w)
}
