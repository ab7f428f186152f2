package api

import (
	"net/http"
	"time"

	"patternleader/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates and configures a Chi router with all routes
func NewRouter(h *Handler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(cfg.Collector.TimeoutSeconds+30) * time.Second))
	r.Use(CORSMiddleware(cfg.HTTP.CORSAllowedOrigins))
	r.Use(MetricsMiddleware)

	// Liveness probe
	r.Get("/health", h.HandleHealth)

	// Metrics endpoint for Prometheus
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Psychology analysis
		r.Route("/analysis", func(r chi.Router) {
			r.Get("/psychology/{symbol}", h.HandlePsychologyAnalysis)
			r.Get("/quick/{symbol}", h.HandleQuickAnalysis)
			r.Get("/distribution/{symbol}", h.HandleDistributionData)
			r.Get("/validate/{symbol}", h.HandleValidateSymbol)
			r.Get("/symbols", h.HandleSupportedSymbols)
			r.Get("/health", h.HandleAnalysisHealth)
			r.Delete("/cache", h.HandleInvalidateCache)
			r.Get("/cache/stats", h.HandleCacheStats)
		})

		// Market metadata
		r.Route("/market", func(r chi.Router) {
			r.Get("/types", h.HandleMarketTypes)
			r.Get("/periods", h.HandleAnalysisPeriods)
			r.Get("/risk-levels", h.HandleRiskLevels)
		})

		// Weather-based activity recommendations
		r.Route("/activities", func(r chi.Router) {
			r.Get("/weather", h.HandleWeather)
			r.Get("/recommend", h.HandleRecommendActivities)
			r.Get("/places", h.HandleSearchPlaces)
		})
	})

	return r
}

// CORSMiddleware returns CORS middleware with the specified allowed origins
func CORSMiddleware(allowedOrigins string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
