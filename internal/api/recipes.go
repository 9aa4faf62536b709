package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"matplan/internal/llm"
	"matplan/internal/parse"
	"matplan/internal/recipe"
)

// RecipeRequest is the payload for creating or replacing a recipe.
type RecipeRequest struct {
	Title        string               `json:"title" validate:"required,max=100"`
	Servings     float64              `json:"servings" validate:"required,gt=0"`
	Icon         int                  `json:"icon" validate:"omitempty,min=1,max=10"`
	Description  string               `json:"description"`
	SourceURL    string               `json:"source_url" validate:"omitempty,url"`
	Ingredients  []string             `json:"ingredients"`
	Instructions []recipe.Instruction `json:"instructions"`
	Tags         []string             `json:"tags"`
}

func (s *Server) createRecipeHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req RecipeRequest
	if err := readJSON(w, r, &req); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(req); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}

	rec := &recipe.Recipe{
		HouseholdID:  sess.HouseholdID,
		Title:        req.Title,
		Servings:     req.Servings,
		Icon:         req.Icon,
		Description:  req.Description,
		SourceURL:    req.SourceURL,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		Tags:         req.Tags,
	}

	if err := s.recipes.Save(r.Context(), rec); err != nil {
		s.recipeError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, rec); err != nil {
		s.internalServerError(w, r, err)
	}
}

func (s *Server) listRecipesHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	recipes, err := s.recipes.ListByHousehold(r.Context(), sess.HouseholdID, r.URL.Query().Get("tag"))
	if err != nil {
		s.internalServerError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, recipes); err != nil {
		s.internalServerError(w, r, err)
	}
}

func (s *Server) listSystemRecipesHandler(w http.ResponseWriter, r *http.Request) {
	recipes, err := s.recipes.ListSystem(r.Context())
	if err != nil {
		s.internalServerError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, recipes); err != nil {
		s.internalServerError(w, r, err)
	}
}

func (s *Server) getRecipeHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	rec, err := s.recipes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.recipeError(w, r, err)
		return
	}
	if !rec.IsSystem() && rec.HouseholdID != sess.HouseholdID {
		s.notFoundResponse(w, r, recipe.ErrNotFound)
		return
	}

	if err := writeJSON(w, http.StatusOK, rec); err != nil {
		s.internalServerError(w, r, err)
	}
}

func (s *Server) updateRecipeHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	rec, err := s.recipes.GetForHousehold(r.Context(), chi.URLParam(r, "id"), sess.HouseholdID)
	if err != nil {
		s.recipeError(w, r, err)
		return
	}

	var req RecipeRequest
	if err := readJSON(w, r, &req); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(req); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}

	rec.Title = req.Title
	rec.Servings = req.Servings
	rec.Icon = req.Icon
	rec.Description = req.Description
	rec.SourceURL = req.SourceURL
	rec.Ingredients = req.Ingredients
	rec.Instructions = req.Instructions
	rec.Tags = req.Tags

	if err := s.recipes.Save(r.Context(), rec); err != nil {
		s.recipeError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, rec); err != nil {
		s.internalServerError(w, r, err)
	}
}

func (s *Server) deleteRecipeHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	if err := s.recipes.Delete(r.Context(), chi.URLParam(r, "id"), sess.HouseholdID); err != nil {
		s.recipeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) copySystemRecipeHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	cp, err := s.recipes.CopyToHousehold(r.Context(), chi.URLParam(r, "id"), sess.HouseholdID)
	if err != nil {
		s.recipeError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, cp); err != nil {
		s.internalServerError(w, r, err)
	}
}

// ParseURLRequest asks for a recipe draft extracted from a web page.
type ParseURLRequest struct {
	URL   string `json:"url" validate:"required,url"`
	Title string `json:"title" validate:"omitempty,max=100"`
}

func (s *Server) parseURLHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.session(w, r); !ok {
		return
	}
	if s.parser == nil {
		_ = writeJSONError(w, http.StatusServiceUnavailable, "recipe parsing is not configured")
		return
	}

	var req ParseURLRequest
	if err := readJSON(w, r, &req); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(req); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}

	rec, err := s.parser.ParseURL(r.Context(), req.URL)
	result := parse.ResultOf(rec, err)
	if result.Success && req.Title != "" {
		result.Recipe.Title = req.Title
	}

	if err := writeJSON(w, http.StatusOK, result); err != nil {
		s.internalServerError(w, r, err)
	}
}

var imageFormats = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/webp": "webp",
}

const maxImageBytes = 10 << 20 // 10 MB per request

func (s *Server) parseImageHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.session(w, r); !ok {
		return
	}
	if s.parser == nil {
		_ = writeJSONError(w, http.StatusServiceUnavailable, "recipe parsing is not configured")
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		s.badRequestResponse(w, r, fmt.Errorf("malformed multipart request: %w", err))
		return
	}

	var images []llm.Image
	for _, headers := range r.MultipartForm.File {
		for _, header := range headers {
			format, ok := imageFormats[header.Header.Get("Content-Type")]
			if !ok {
				s.badRequestResponse(w, r, fmt.Errorf("unsupported image type %q", header.Header.Get("Content-Type")))
				return
			}

			file, err := header.Open()
			if err != nil {
				s.internalServerError(w, r, err)
				return
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				s.internalServerError(w, r, err)
				return
			}

			images = append(images, llm.Image{Format: format, Data: data})
		}
	}

	if len(images) == 0 {
		s.badRequestResponse(w, r, fmt.Errorf("at least one image is required"))
		return
	}

	rec, err := s.parser.ParseImages(r.Context(), images)
	result := parse.ResultOf(rec, err)

	if err := writeJSON(w, http.StatusOK, result); err != nil {
		s.internalServerError(w, r, err)
	}
}
