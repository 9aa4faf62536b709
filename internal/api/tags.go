package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) listTagsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	tags, err := s.tags.ListByHousehold(r.Context(), sess.HouseholdID)
	if err != nil {
		s.internalServerError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, tags); err != nil {
		s.internalServerError(w, r, err)
	}
}

// RenameTagRequest is the payload for renaming a tag.
type RenameTagRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

func (s *Server) renameTagHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req RenameTagRequest
	if err := readJSON(w, r, &req); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(req); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}

	if err := s.tags.Rename(r.Context(), sess.HouseholdID, chi.URLParam(r, "id"), req.Name); err != nil {
		s.tagError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteTagHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	if err := s.tags.Delete(r.Context(), sess.HouseholdID, chi.URLParam(r, "id")); err != nil {
		s.tagError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
