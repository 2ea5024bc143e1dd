// Package httpserver wires the domain services onto a single mux and
// runs the HTTP (or HTTPS) listener.
package httpserver

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/grubapp/grub/internal/config"
	"github.com/grubapp/grub/internal/foods"
	"github.com/grubapp/grub/internal/lookup"
	"github.com/grubapp/grub/internal/meals"
	"github.com/grubapp/grub/internal/recipes"
	"github.com/grubapp/grub/internal/storage/sqlite"
	"github.com/grubapp/grub/internal/summary"
	"github.com/grubapp/grub/internal/sync"
	"github.com/grubapp/grub/internal/targets"
	"github.com/grubapp/grub/internal/transfer"
	"github.com/grubapp/grub/internal/watch"
	"github.com/grubapp/grub/internal/weights"
)

// Server represents the HTTP server.
type Server struct {
	config *config.Config
	mux    *http.ServeMux
	store  *sqlite.Store
	apiKey string
}

// New creates the server and registers all routes. An empty apiKey
// disables authentication.
func New(cfg *config.Config, store *sqlite.Store, apiKey string) *Server {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
		store:  store,
		apiKey: apiKey,
	}
	s.routes()
	return s
}

// routes registers all API routes.
func (s *Server) routes() {
	// Health check (no auth required)
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)

	// Foods API
	var provider foods.Provider
	if s.config.LookupEnabled {
		baseURL := s.config.LookupBaseURL
		if baseURL == "" {
			baseURL = lookup.DefaultBaseURL
		}
		provider = lookup.NewClient(baseURL)
	}
	foodsService := foods.NewService(s.store, provider)

	s.mux.HandleFunc("POST /api/foods", foods.HandleCreate(foodsService))
	s.mux.HandleFunc("GET /api/foods/search", foods.HandleSearch(foodsService))
	s.mux.HandleFunc("GET /api/foods/barcode/{code}", foods.HandleBarcode(foodsService))
	s.mux.HandleFunc("GET /api/foods/recent", foods.HandleRecent(foodsService))

	// Meals API
	mealsService := meals.NewService(s.store)

	s.mux.HandleFunc("POST /api/meals", meals.HandleLog(mealsService))
	s.mux.HandleFunc("PUT /api/meals/{id}", meals.HandleUpdate(mealsService))
	s.mux.HandleFunc("DELETE /api/meals/{id}", meals.HandleDelete(mealsService))

	// Summary API
	summaryService := summary.NewService(s.store)

	s.mux.HandleFunc("GET /api/summary/average", summary.HandleAverage(summaryService))
	s.mux.HandleFunc("GET /api/summary/{date}", summary.HandleDaily(summaryService))

	// Targets API
	targetsService := targets.NewService(s.store)

	s.mux.HandleFunc("GET /api/targets", targets.HandleGetAll(targetsService))
	s.mux.HandleFunc("DELETE /api/targets", targets.HandleClearAll(targetsService))
	s.mux.HandleFunc("GET /api/targets/{day}", targets.HandleGet(targetsService))
	s.mux.HandleFunc("PUT /api/targets/{day}", targets.HandleSet(targetsService))
	s.mux.HandleFunc("DELETE /api/targets/{day}", targets.HandleClear(targetsService))

	// Recipes API
	recipesService := recipes.NewService(s.store)

	s.mux.HandleFunc("POST /api/recipes", recipes.HandleCreate(recipesService))
	s.mux.HandleFunc("GET /api/recipes", recipes.HandleList(recipesService))
	s.mux.HandleFunc("GET /api/recipes/{id}", recipes.HandleGet(recipesService))
	s.mux.HandleFunc("PUT /api/recipes/{id}", recipes.HandleUpdate(recipesService))
	s.mux.HandleFunc("DELETE /api/recipes/{id}", recipes.HandleDelete(recipesService))

	// Weight API
	weightsService := weights.NewService(s.store)

	s.mux.HandleFunc("POST /api/weight", weights.HandleLog(weightsService))
	s.mux.HandleFunc("GET /api/weight", weights.HandleHistory(weightsService))
	s.mux.HandleFunc("GET /api/weight/{date}", weights.HandleGet(weightsService))
	s.mux.HandleFunc("DELETE /api/weight/entry/{id}", weights.HandleDelete(weightsService))

	// Export / Import API
	transferService := transfer.NewService(s.store, func() string {
		return time.Now().UTC().Format(time.RFC3339)
	})

	s.mux.HandleFunc("GET /api/export", transfer.HandleExport(transferService))
	s.mux.HandleFunc("POST /api/import", transfer.HandleImport(transferService))

	// Sync API
	syncService := sync.NewService(s.store)

	s.mux.HandleFunc("GET /api/sync", sync.HandlePull(syncService))
	s.mux.HandleFunc("POST /api/sync", sync.HandlePush(syncService))

	// Watch companion API
	watchService := watch.NewService(s.store, summaryService, mealsService)

	s.mux.HandleFunc("GET /api/watch/glance", watch.HandleGlance(watchService))
	s.mux.HandleFunc("GET /api/watch/glance/{date}", watch.HandleGlance(watchService))
	s.mux.HandleFunc("GET /api/watch/recent", watch.HandleRecent(watchService))
	s.mux.HandleFunc("POST /api/watch/quick-log", watch.HandleQuickLog(watchService))
}

// handleHealthz reports server liveness.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

// Handler builds the middleware chain (outermost first):
// Security headers -> Rate limit -> Body cap -> Auth -> Router.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	handler = AuthMiddleware(s.apiKey, handler)
	handler = MaxBodyMiddleware(handler)
	handler = RateLimitMiddleware(s.config, handler)
	handler = SecurityHeadersMiddleware(handler)
	return handler
}

// Start runs the listener until it fails.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.config.TLSEnabled {
		log.Printf("Listening on https://%s", s.config.Addr())
		return srv.ListenAndServeTLS(s.config.TLSCertFile, s.config.TLSKeyFile)
	}
	log.Printf("Listening on http://%s", s.config.Addr())
	return srv.ListenAndServe()
}

// Close releases the underlying store.
func (s *Server) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
