package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"matplan/internal/auth"
	"matplan/internal/database"
	"matplan/internal/household"
	"matplan/internal/live"
	"matplan/internal/parse"
	"matplan/internal/recipe"
	"matplan/internal/shopping"
	"matplan/internal/tag"
)

// Server holds the HTTP layer's dependencies and mounts the route tree.
type Server struct {
	logger     *zap.SugaredLogger
	db         *database.DB
	auth       *auth.Authenticator
	recipes    *recipe.Repository
	tags       *tag.Repository
	households *household.Repository
	shopping   *shopping.Service
	parser     *parse.Parser
	events     *live.Publisher
}

// NewServer creates a new API server.
func NewServer(
	logger *zap.SugaredLogger,
	db *database.DB,
	authenticator *auth.Authenticator,
	recipes *recipe.Repository,
	tags *tag.Repository,
	households *household.Repository,
	shoppingService *shopping.Service,
	parser *parse.Parser,
	events *live.Publisher,
) *Server {
	return &Server{
		logger:     logger,
		db:         db,
		auth:       authenticator,
		recipes:    recipes,
		tags:       tags,
		households: households,
		shopping:   shoppingService,
		parser:     parser,
		events:     events,
	}
}

// Mount builds the route tree.
func (s *Server) Mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.healthCheckHandler)
		// Bootstrap: identity comes from the fronting auth provider, so
		// household creation itself needs no session yet.
		r.Post("/households", s.createHouseholdHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Middleware)

			r.Route("/recipes", func(r chi.Router) {
				r.Post("/", s.createRecipeHandler)
				r.Get("/", s.listRecipesHandler)
				r.Get("/system", s.listSystemRecipesHandler)
				r.Post("/system/{id}/copy", s.copySystemRecipeHandler)
				r.Post("/parse-url", s.parseURLHandler)
				r.Post("/parse-image", s.parseImageHandler)
				r.Get("/{id}", s.getRecipeHandler)
				r.Put("/{id}", s.updateRecipeHandler)
				r.Delete("/{id}", s.deleteRecipeHandler)
			})

			r.Route("/tags", func(r chi.Router) {
				r.Get("/", s.listTagsHandler)
				r.Put("/{id}", s.renameTagHandler)
				r.Delete("/{id}", s.deleteTagHandler)
			})

			r.Route("/household", func(r chi.Router) {
				r.Get("/", s.getHouseholdHandler)
				r.Put("/", s.updateHouseholdHandler)
				r.Get("/members", s.listMembersHandler)
				r.Post("/members", s.addMemberHandler)
			})

			r.Route("/shopping-lists", func(r chi.Router) {
				r.Post("/", s.createShoppingListHandler)
				r.Get("/", s.listShoppingListsHandler)
				r.Get("/{id}", s.getShoppingListHandler)
				r.Delete("/{id}", s.deleteShoppingListHandler)
				r.Post("/{id}/retry", s.retryShoppingListHandler)
				r.Post("/{id}/share", s.shareShoppingListHandler)
				r.Delete("/{id}/share", s.revokeShareHandler)
				r.Post("/{id}/toggle", s.toggleItemHandler)
				r.Post("/{id}/items", s.addItemHandler)
				r.Put("/{id}/items", s.editItemHandler)
				r.Delete("/{id}/items", s.removeItemHandler)
				r.Get("/{id}/events", s.listEventsHandler)
			})
		})
	})

	// Shared-list routes are keyed by token alone; possession grants access.
	r.Route("/delt/{token}", func(r chi.Router) {
		r.Get("/", s.getSharedListHandler)
		r.Post("/toggle", s.sharedToggleHandler)
		r.Post("/items", s.sharedAddItemHandler)
		r.Put("/items", s.sharedEditItemHandler)
		r.Delete("/items", s.sharedRemoveItemHandler)
		r.Get("/events", s.sharedEventsHandler)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (auth.Session, bool) {
	sess, ok := auth.FromContext(r.Context())
	if !ok {
		s.unauthorizedResponse(w, r)
		return auth.Session{}, false
	}
	return sess, true
}
