package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"matplan/internal/shopping"
)

// Shared-list handlers. No session: holding the token grants full read and
// write access to the one list it names.

func (s *Server) getSharedListHandler(w http.ResponseWriter, r *http.Request) {
	l, err := s.shopping.GetByToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.shoppingError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, l); err != nil {
		s.internalServerError(w, r, err)
	}
}

func (s *Server) sharedToggleHandler(w http.ResponseWriter, r *http.Request) {
	s.handleToggle(w, r, shopping.Key{Token: chi.URLParam(r, "token")})
}

func (s *Server) sharedAddItemHandler(w http.ResponseWriter, r *http.Request) {
	s.handleAddItem(w, r, shopping.Key{Token: chi.URLParam(r, "token")})
}

func (s *Server) sharedEditItemHandler(w http.ResponseWriter, r *http.Request) {
	s.handleEditItem(w, r, shopping.Key{Token: chi.URLParam(r, "token")})
}

func (s *Server) sharedRemoveItemHandler(w http.ResponseWriter, r *http.Request) {
	s.handleRemoveItem(w, r, shopping.Key{Token: chi.URLParam(r, "token")})
}

func (s *Server) sharedEventsHandler(w http.ResponseWriter, r *http.Request) {
	l, err := s.shopping.GetByToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.shoppingError(w, r, err)
		return
	}

	s.streamEvents(w, r, l.ID)
}
