package routes

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sitebrief/toolboxtalk/backend/internal/api/handlers"
	"github.com/sitebrief/toolboxtalk/backend/internal/api/middleware"
	"github.com/sitebrief/toolboxtalk/backend/internal/domain/repositories"
	"github.com/sitebrief/toolboxtalk/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	meetingHandler     *handlers.MeetingHandler
	weatherHandler     *handlers.WeatherHandler
	hazardHandler      *handlers.HazardHandler
	geolocationHandler *handlers.GeolocationHandler

	sessionRepo     repositories.SessionRepository
	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
	logger          zerolog.Logger
	allowedOrigins  []string
}

// NewRouter creates a new router
func NewRouter(
	meetingHandler *handlers.MeetingHandler,
	weatherHandler *handlers.WeatherHandler,
	hazardHandler *handlers.HazardHandler,
	geolocationHandler *handlers.GeolocationHandler,
	sessionRepo repositories.SessionRepository,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
	logger zerolog.Logger,
	allowedOrigins []string,
) *Router {
	return &Router{
		mux:                http.NewServeMux(),
		meetingHandler:     meetingHandler,
		weatherHandler:     weatherHandler,
		hazardHandler:      hazardHandler,
		geolocationHandler: geolocationHandler,
		sessionRepo:        sessionRepo,
		cacheMiddleware:    cacheMiddleware,
		metrics:            metrics,
		logger:             logger,
		allowedOrigins:     allowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Form enrichment endpoints
	r.mux.HandleFunc("GET /api/weather", r.weatherHandler.GetSiteWeather)
	r.mux.HandleFunc("GET /api/geocode", r.geolocationHandler.Geocode)
	r.mux.HandleFunc("POST /api/analyze-hazards", r.hazardHandler.AnalyzeHazards)

	// Meeting endpoints require a session
	auth := middleware.AuthMiddleware(r.sessionRepo)
	r.mux.Handle("POST /api/meetings", auth(http.HandlerFunc(r.meetingHandler.CreateMeeting)))
	r.mux.Handle("GET /api/meetings", auth(http.HandlerFunc(r.meetingHandler.ListMeetings)))
	r.mux.Handle("GET /api/meetings/{id}", auth(http.HandlerFunc(r.meetingHandler.GetMeeting)))
	r.mux.Handle("PATCH /api/meetings/{id}/summary", auth(http.HandlerFunc(r.meetingHandler.UpdateSummary)))

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(r.logger)(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
