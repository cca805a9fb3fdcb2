package api

import (
	"context"
	"net/http"

	"family-meal-planner/internal/importer"
	"family-meal-planner/internal/metrics"
	"family-meal-planner/internal/recipe"
	"family-meal-planner/internal/settings"
	"family-meal-planner/internal/shopping"
	"family-meal-planner/internal/weekly"
)

// Notifier pushes the messages the bot would send when a request asks
// for it with ?notify=1. Implemented by telegram.Notifier; nil disables
// the feature.
type Notifier interface {
	NotifyPlan(ctx context.Context, text string) error
	NotifyShop(ctx context.Context, text string) error
}

// Server holds the dependencies of the REST API.
type Server struct {
	engine   *weekly.Engine
	recipes  *recipe.Repository
	settings *settings.Repository
	shop     *shopping.Service
	importer *importer.Service
	metrics  *metrics.Store
	notify   Notifier
	gitSHA   string
	dataPath string
}

// Config wires a Server.
type Config struct {
	Engine   *weekly.Engine
	Recipes  *recipe.Repository
	Settings *settings.Repository
	Shop     *shopping.Service
	Importer *importer.Service
	Metrics  *metrics.Store
	Notify   Notifier
	GitSHA   string
	DataPath string
}

// NewServer creates the API server.
func NewServer(cfg Config) *Server {
	return &Server{
		engine:   cfg.Engine,
		recipes:  cfg.Recipes,
		settings: cfg.Settings,
		shop:     cfg.Shop,
		importer: cfg.Importer,
		metrics:  cfg.Metrics,
		notify:   cfg.Notify,
		gitSHA:   cfg.GitSHA,
		dataPath: cfg.DataPath,
	}
}

// Handler builds the route table. Everything under /api/ except the
// health probe requires a bearer token when a secret is configured.
func (s *Server) Handler(tokenSecret string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/weekly/current", s.handleWeeklyCurrent)
	mux.HandleFunc("POST /api/weekly/plan", s.handleWeeklyPlan)
	mux.HandleFunc("POST /api/weekly/swap", s.handleWeeklySwap)
	mux.HandleFunc("POST /api/weekly/confirm", s.handleWeeklyConfirm)
	mux.HandleFunc("POST /api/weekly/cancel", s.handleWeeklyCancel)
	mux.HandleFunc("GET /api/weekly/shop", s.handleWeeklyShop)

	mux.HandleFunc("GET /api/recipes", s.handleRecipeList)
	mux.HandleFunc("POST /api/recipes", s.handleRecipeCreate)
	mux.HandleFunc("GET /api/recipes/tags", s.handleRecipeTags)
	mux.HandleFunc("POST /api/recipes/import/preview", s.handleImportPreview)
	mux.HandleFunc("POST /api/recipes/import", s.handleImportConfirm)
	mux.HandleFunc("GET /api/recipes/{id}", s.handleRecipeGet)
	mux.HandleFunc("PATCH /api/recipes/{id}", s.handleRecipeUpdate)
	mux.HandleFunc("DELETE /api/recipes/{id}", s.handleRecipeArchive)

	mux.HandleFunc("GET /api/settings", s.handleSettingsGet)
	mux.HandleFunc("GET /api/settings/pantry", s.handlePantryGet)
	mux.HandleFunc("PUT /api/settings/pantry", s.handlePantryPut)
	mux.HandleFunc("GET /api/settings/preferences", s.handlePreferencesGet)
	mux.HandleFunc("PUT /api/settings/preferences", s.handlePreferencesPut)
	mux.HandleFunc("GET /api/settings/telegram", s.handleTelegramGet)
	mux.HandleFunc("PUT /api/settings/telegram", s.handleTelegramPut)

	mux.HandleFunc("GET /api/metrics/usage", s.handleMetricsUsage)

	root := http.NewServeMux()
	root.HandleFunc("GET /api/health", s.handleHealth)
	root.Handle("/api/", requireAuth(tokenSecret, mux))
	return root
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sys := metrics.GetSysHealth(s.dataPath)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"git_sha":      s.gitSHA,
		"goroutines":   sys.Goroutines,
		"alloc_mb":     sys.AllocMB,
		"data_size":    sys.DataDiskSize,
		"current_week": s.engine.CurrentWeek(),
	})
}

func (s *Server) handleMetricsUsage(w http.ResponseWriter, r *http.Request) {
	days := intQuery(r, "days", 7)
	usage, err := s.metrics.GetDailyUsage(r.Context(), days)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days, "usage": usage})
}

func intQuery(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	var n int
	for _, c := range v {
		if c < '0' || c > '9' {
			return def
		}
		n = n*10 + int(c-'0')
	}
	if n <= 0 {
		return def
	}
	return n
}
