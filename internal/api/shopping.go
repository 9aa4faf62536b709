package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"matplan/internal/shopping"
)

// CreateShoppingListRequest dispatches list generation for a set of recipes.
type CreateShoppingListRequest struct {
	Title      string               `json:"title" validate:"required,max=100"`
	Selections []shopping.Selection `json:"selections" validate:"required,min=1"`
}

func (s *Server) createShoppingListHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req CreateShoppingListRequest
	if err := readJSON(w, r, &req); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(req); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}

	l, err := s.shopping.Generate(r.Context(), sess.HouseholdID, req.Title, req.Selections)
	if err != nil {
		s.shoppingError(w, r, err)
		return
	}

	// 202: the caller polls or subscribes to events for completion.
	if err := writeJSON(w, http.StatusAccepted, l); err != nil {
		s.internalServerError(w, r, err)
	}
}

func (s *Server) listShoppingListsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	lists, err := s.shopping.ListByHousehold(r.Context(), sess.HouseholdID)
	if err != nil {
		s.internalServerError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, lists); err != nil {
		s.internalServerError(w, r, err)
	}
}

func (s *Server) getShoppingListHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	l, err := s.shopping.Get(r.Context(), chi.URLParam(r, "id"), sess.HouseholdID)
	if err != nil {
		s.shoppingError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, l); err != nil {
		s.internalServerError(w, r, err)
	}
}

func (s *Server) deleteShoppingListHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	if err := s.shopping.Delete(r.Context(), chi.URLParam(r, "id"), sess.HouseholdID); err != nil {
		s.shoppingError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) retryShoppingListHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	l, err := s.shopping.Retry(r.Context(), chi.URLParam(r, "id"), sess.HouseholdID)
	if err != nil {
		s.shoppingError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusAccepted, l); err != nil {
		s.internalServerError(w, r, err)
	}
}

func (s *Server) shareShoppingListHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	token, err := s.shopping.Share(r.Context(), chi.URLParam(r, "id"), sess.HouseholdID)
	if err != nil {
		s.shoppingError(w, r, err)
		return
	}

	response := map[string]string{"token": token}
	if err := writeJSON(w, http.StatusOK, response); err != nil {
		s.internalServerError(w, r, err)
	}
}

func (s *Server) revokeShareHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	if err := s.shopping.Revoke(r.Context(), chi.URLParam(r, "id"), sess.HouseholdID); err != nil {
		s.shoppingError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleRequest flips the checked state of an item string.
type ToggleRequest struct {
	Item string `json:"item" validate:"required"`
}

// AddItemRequest appends an item to a category.
type AddItemRequest struct {
	Category string `json:"category" validate:"required"`
	Item     string `json:"item" validate:"required"`
}

// EditItemRequest replaces the item at a category position.
type EditItemRequest struct {
	Category string `json:"category" validate:"required"`
	Index    *int   `json:"index" validate:"required,gte=0"`
	Value    string `json:"value" validate:"required"`
}

// RemoveItemRequest deletes the item at a category position.
type RemoveItemRequest struct {
	Category string `json:"category" validate:"required"`
	Index    *int   `json:"index" validate:"required,gte=0"`
}

func (s *Server) toggleItemHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	key := shopping.Key{ID: chi.URLParam(r, "id"), HouseholdID: sess.HouseholdID}
	s.handleToggle(w, r, key)
}

func (s *Server) addItemHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	key := shopping.Key{ID: chi.URLParam(r, "id"), HouseholdID: sess.HouseholdID}
	s.handleAddItem(w, r, key)
}

func (s *Server) editItemHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	key := shopping.Key{ID: chi.URLParam(r, "id"), HouseholdID: sess.HouseholdID}
	s.handleEditItem(w, r, key)
}

func (s *Server) removeItemHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	key := shopping.Key{ID: chi.URLParam(r, "id"), HouseholdID: sess.HouseholdID}
	s.handleRemoveItem(w, r, key)
}

// The shared-route handlers reuse the same mutation plumbing keyed by token.

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request, key shopping.Key) {
	var req ToggleRequest
	if err := readJSON(w, r, &req); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(req); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}

	l, err := s.shopping.Toggle(r.Context(), key, req.Item)
	if err != nil {
		s.shoppingError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, l); err != nil {
		s.internalServerError(w, r, err)
	}
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request, key shopping.Key) {
	var req AddItemRequest
	if err := readJSON(w, r, &req); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(req); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}

	l, err := s.shopping.AddItem(r.Context(), key, req.Category, req.Item)
	if err != nil {
		s.shoppingError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, l); err != nil {
		s.internalServerError(w, r, err)
	}
}

func (s *Server) handleEditItem(w http.ResponseWriter, r *http.Request, key shopping.Key) {
	var req EditItemRequest
	if err := readJSON(w, r, &req); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(req); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}

	l, err := s.shopping.EditItem(r.Context(), key, req.Category, *req.Index, req.Value)
	if err != nil {
		s.shoppingError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, l); err != nil {
		s.internalServerError(w, r, err)
	}
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request, key shopping.Key) {
	var req RemoveItemRequest
	if err := readJSON(w, r, &req); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(req); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}

	l, err := s.shopping.RemoveItem(r.Context(), key, req.Category, *req.Index)
	if err != nil {
		s.shoppingError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, l); err != nil {
		s.internalServerError(w, r, err)
	}
}

func (s *Server) listEventsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	// Ownership check before opening the stream.
	l, err := s.shopping.Get(r.Context(), chi.URLParam(r, "id"), sess.HouseholdID)
	if err != nil {
		s.shoppingError(w, r, err)
		return
	}

	s.streamEvents(w, r, l.ID)
}
