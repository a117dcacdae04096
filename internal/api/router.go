package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/cogpy/probreacog/internal/agent"
	"github.com/cogpy/probreacog/internal/api/handlers"
	mw "github.com/cogpy/probreacog/internal/api/middleware"
	"github.com/cogpy/probreacog/internal/attention"
	"github.com/cogpy/probreacog/internal/config"
	"github.com/cogpy/probreacog/internal/domain"
	"github.com/cogpy/probreacog/internal/orchestrator"
	"github.com/cogpy/probreacog/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App holds the router and engine for lifecycle management.
type App struct {
	Router       *chi.Mux
	Orchestrator *orchestrator.Orchestrator
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// NewApp wires the engine and the HTTP surface. db may be nil, which
// disables snapshot persistence.
func NewApp(db *pgxpool.Pool, logger *zap.Logger) (*App, error) {
	orch, err := orchestrator.New(orchestrator.Config{
		Attention: attention.DefaultConfig(),
		Tools:     toolConfigs(),
	}, logger)
	if err != nil {
		return nil, err
	}
	if db != nil {
		orch.SetSnapshotStore(store.NewSnapshotStore(db))
	}

	modelHandler := handlers.NewModelHandler(orch)
	workflowHandler := handlers.NewWorkflowHandler(orch)
	reasoningHandler := handlers.NewReasoningHandler(orch)
	attentionHandler := handlers.NewAttentionHandler(orch)
	stateHandler := handlers.NewStateHandler(orch)
	statusHandler := handlers.NewStatusHandler(orch)

	r := chi.NewRouter()

	app := &App{
		Router:       r,
		Orchestrator: orch,
		startTime:    time.Now(),
	}

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Metrics(&app.requestCount, &app.errorCount))
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	r.Get("/health", healthHandler(db))
	r.Get("/metrics", app.metricsHandler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/models", modelHandler.Load)

		r.Route("/workflows", func(r chi.Router) {
			r.Post("/", workflowHandler.Create)
			r.Post("/{id}/execute", workflowHandler.Execute)
		})

		r.Get("/goals/{name}/reasoning", reasoningHandler.Goal)

		r.Route("/attention", func(r chi.Router) {
			r.Post("/bias", attentionHandler.Bias)
			r.Get("/top", attentionHandler.Top)
		})

		r.Route("/state", func(r chi.Router) {
			r.Post("/export", stateHandler.Export)
			r.Post("/import", stateHandler.Import)
			r.Route("/snapshots", func(r chi.Router) {
				r.Get("/", stateHandler.List)
				r.Post("/", stateHandler.Save)
				r.Post("/restore", stateHandler.Restore)
			})
		})

		r.Get("/status", statusHandler.Get)
	})

	return app, nil
}

func toolConfigs() map[domain.Role]agent.Config {
	timeout := config.ToolTimeout()
	return map[domain.Role]agent.Config{
		domain.RoleSimulator: {ToolPath: config.SimulatorTool(), Timeout: timeout},
		domain.RoleVerifier:  {ToolPath: config.VerifierTool(), Timeout: timeout},
		domain.RoleAnalyzer:  {ToolPath: config.AnalyzerTool(), Timeout: timeout},
		domain.RoleOptimizer: {ToolPath: config.OptimizerTool(), Timeout: timeout},
	}
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}
