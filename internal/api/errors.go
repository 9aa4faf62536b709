package api

import (
	"errors"
	"net/http"

	"matplan/internal/household"
	"matplan/internal/recipe"
	"matplan/internal/shopping"
	"matplan/internal/tag"
)

func (s *Server) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err)
	_ = writeJSONError(w, http.StatusInternalServerError, "the server encountered a problem")
}

func (s *Server) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "error", err)
	_ = writeJSONError(w, http.StatusBadRequest, err.Error())
}

func (s *Server) notFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	_ = writeJSONError(w, http.StatusNotFound, err.Error())
}

func (s *Server) conflictResponse(w http.ResponseWriter, r *http.Request, err error) {
	_ = writeJSONError(w, http.StatusConflict, err.Error())
}

func (s *Server) unprocessableResponse(w http.ResponseWriter, r *http.Request, err error) {
	_ = writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
}

func (s *Server) forbiddenResponse(w http.ResponseWriter, r *http.Request, err error) {
	_ = writeJSONError(w, http.StatusForbidden, err.Error())
}

func (s *Server) unauthorizedResponse(w http.ResponseWriter, r *http.Request) {
	_ = writeJSONError(w, http.StatusUnauthorized, "authentication required")
}

// shoppingError maps shopping domain errors onto HTTP statuses. A stale
// client addressing a vanished index or category gets a 422 and is expected
// to re-fetch the canonical list.
func (s *Server) shoppingError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, shopping.ErrNotFound):
		s.notFoundResponse(w, r, err)
	case errors.Is(err, shopping.ErrNotReady),
		errors.Is(err, shopping.ErrNotFailed),
		errors.Is(err, shopping.ErrCategoryNotFound),
		errors.Is(err, shopping.ErrIndexOutOfRange):
		s.unprocessableResponse(w, r, err)
	case errors.Is(err, shopping.ErrEmptyItem),
		errors.Is(err, shopping.ErrNoSelections),
		errors.Is(err, shopping.ErrInvalidRequest):
		s.badRequestResponse(w, r, err)
	default:
		s.internalServerError(w, r, err)
	}
}

func (s *Server) recipeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recipe.ErrNotFound):
		s.notFoundResponse(w, r, err)
	case errors.Is(err, recipe.ErrReadOnly):
		s.forbiddenResponse(w, r, err)
	default:
		s.internalServerError(w, r, err)
	}
}

func (s *Server) tagError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tag.ErrNotFound):
		s.notFoundResponse(w, r, err)
	case errors.Is(err, tag.ErrDuplicate):
		s.conflictResponse(w, r, err)
	default:
		s.internalServerError(w, r, err)
	}
}

func (s *Server) householdError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, household.ErrNotFound):
		s.notFoundResponse(w, r, err)
	case errors.Is(err, household.ErrFull), errors.Is(err, household.ErrAlreadyMember):
		s.conflictResponse(w, r, err)
	default:
		s.internalServerError(w, r, err)
	}
}
