package api

import (
	"net/http"

	"matplan/internal/auth"
	"matplan/internal/household"
)

// CreateHouseholdRequest bootstraps a new household for a user.
type CreateHouseholdRequest struct {
	Name   string `json:"name" validate:"required,max=100"`
	UserID string `json:"user_id" validate:"required"`
}

// CreateHouseholdResponse carries the new household and a session token
// scoped to it, so the creator can call the authenticated routes right away.
type CreateHouseholdResponse struct {
	Household *household.Household `json:"household"`
	Token     string               `json:"token"`
}

func (s *Server) createHouseholdHandler(w http.ResponseWriter, r *http.Request) {
	var req CreateHouseholdRequest
	if err := readJSON(w, r, &req); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(req); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}

	h, err := s.households.Create(r.Context(), req.Name, req.UserID)
	if err != nil {
		s.householdError(w, r, err)
		return
	}

	token, err := s.auth.Issue(auth.Session{UserID: req.UserID, HouseholdID: h.ID})
	if err != nil {
		s.internalServerError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, CreateHouseholdResponse{Household: h, Token: token}); err != nil {
		s.internalServerError(w, r, err)
	}
}

func (s *Server) getHouseholdHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	h, err := s.households.Get(r.Context(), sess.HouseholdID)
	if err != nil {
		s.householdError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, h); err != nil {
		s.internalServerError(w, r, err)
	}
}

// UpdateHouseholdRequest replaces the household's list-generation settings.
type UpdateHouseholdRequest struct {
	DefaultServings int      `json:"default_servings" validate:"required,gt=0"`
	Categories      []string `json:"categories" validate:"required,min=1,dive,required"`
}

func (s *Server) updateHouseholdHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req UpdateHouseholdRequest
	if err := readJSON(w, r, &req); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(req); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}

	h, err := s.households.UpdateSettings(r.Context(), sess.HouseholdID, req.DefaultServings, req.Categories)
	if err != nil {
		s.householdError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, h); err != nil {
		s.internalServerError(w, r, err)
	}
}

func (s *Server) listMembersHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	members, err := s.households.Members(r.Context(), sess.HouseholdID)
	if err != nil {
		s.internalServerError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, members); err != nil {
		s.internalServerError(w, r, err)
	}
}

// AddMemberRequest adds a user to the session's household.
type AddMemberRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

func (s *Server) addMemberHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req AddMemberRequest
	if err := readJSON(w, r, &req); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(req); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}

	if err := s.households.AddMember(r.Context(), sess.HouseholdID, req.UserID); err != nil {
		s.householdError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
