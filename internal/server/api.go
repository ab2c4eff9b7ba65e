// Package server exposes the blueprint stores, the resolver, the widget
// catalog, and builder sessions over HTTP.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"finboard/internal/builder"
	"finboard/internal/catalog"
	"finboard/internal/dashboard"
	"finboard/internal/persist"
	"finboard/pkg/bus"
)

// Options carries the dependencies for the HTTP layer. Recorder and Bus are
// optional; leaving them nil disables snapshot write-through and event
// publishing respectively.
type Options struct {
	Logger           zerolog.Logger
	Blueprints       *dashboard.BlueprintStore
	Assignments      *dashboard.AssignmentStore
	Catalog          *catalog.Catalog
	Sessions         *builder.Sessions
	Users            []dashboard.User
	Views            []dashboard.View
	GridColumns      int
	AllowedOrigins   []string
	RequestRateLimit int
	Recorder         *persist.Recorder
	Bus              *bus.Bus
}

// API wires stores, directories, and optional side channels for the HTTP
// handlers.
type API struct {
	log         zerolog.Logger
	blueprints  *dashboard.BlueprintStore
	assignments *dashboard.AssignmentStore
	catalog     *catalog.Catalog
	sessions    *builder.Sessions
	users       []dashboard.User
	usersByID   map[string]dashboard.User
	views       []dashboard.View
	gridCols    int
	origins     []string
	rateLimit   int
	recorder    *persist.Recorder
	bus         *bus.Bus
}

// New validates the options and builds the API layer.
func New(opts Options) (*API, error) {
	if opts.Blueprints == nil {
		return nil, errors.New("blueprint store is required")
	}
	if opts.Assignments == nil {
		return nil, errors.New("assignment store is required")
	}
	if opts.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("session registry is required")
	}
	if opts.GridColumns <= 0 {
		opts.GridColumns = builder.DefaultGridColumns
	}
	if opts.RequestRateLimit <= 0 {
		opts.RequestRateLimit = 100
	}

	usersByID := make(map[string]dashboard.User, len(opts.Users))
	for _, u := range opts.Users {
		usersByID[u.ID] = u
	}

	return &API{
		log:         opts.Logger,
		blueprints:  opts.Blueprints,
		assignments: opts.Assignments,
		catalog:     opts.Catalog,
		sessions:    opts.Sessions,
		users:       opts.Users,
		usersByID:   usersByID,
		views:       opts.Views,
		gridCols:    opts.GridColumns,
		origins:     opts.AllowedOrigins,
		rateLimit:   opts.RequestRateLimit,
		recorder:    opts.Recorder,
		bus:         opts.Bus,
	}, nil
}

// Routes constructs the chi router containing all endpoints.
func (a *API) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(a.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	allowed := a.origins
	if len(allowed) == 0 {
		allowed = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowed,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           int((10 * time.Minute).Seconds()),
	}))
	r.Use(httprate.Limit(a.rateLimit, time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/catalog", a.handleCatalog)
		r.Get("/views", a.handleListViews)
		r.Get("/users", a.handleListUsers)
		r.Get("/users/{userID}/dashboard", a.handleUserDashboard)

		r.Get("/blueprints", a.handleListBlueprints)
		r.Post("/blueprints", a.handleCreateBlueprint)
		r.Get("/blueprints/{blueprintID}", a.handleGetBlueprint)
		r.Put("/blueprints/{blueprintID}", a.handleUpdateBlueprint)
		r.Delete("/blueprints/{blueprintID}", a.handleDeleteBlueprint)

		r.Get("/assignments", a.handleListAssignments)
		r.Put("/assignments/{targetType}/{targetID}", a.handleUpsertAssignment)
		r.Delete("/assignments/{assignmentID}", a.handleRemoveAssignment)

		r.Route("/builder/sessions", func(r chi.Router) {
			r.Post("/", a.handleCreateSession)
			r.Get("/{sessionID}", a.handleGetSession)
			r.Delete("/{sessionID}", a.handleDiscardSession)
			r.Post("/{sessionID}/widgets", a.handleAddWidget)
			r.Delete("/{sessionID}/widgets/{widgetID}", a.handleRemoveWidget)
			r.Put("/{sessionID}/widgets/{widgetID}/span", a.handleSetSpan)
			r.Patch("/{sessionID}/widgets/{widgetID}/config", a.handleUpdateConfig)
			r.Put("/{sessionID}/order", a.handleReorder)
			r.Put("/{sessionID}/selection", a.handleSelect)
			r.Patch("/{sessionID}/metadata", a.handlePatchMetadata)
			r.Post("/{sessionID}/save", a.handleSaveSession)
			r.Post("/{sessionID}/reset", a.handleResetSession)
		})
	})

	return r
}

func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		a.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}
