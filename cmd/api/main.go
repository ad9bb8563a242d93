package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sitebrief/toolboxtalk/backend/internal/adapters/cache"
	"github.com/sitebrief/toolboxtalk/backend/internal/adapters/database"
	"github.com/sitebrief/toolboxtalk/backend/internal/adapters/providers/geolocation"
	"github.com/sitebrief/toolboxtalk/backend/internal/adapters/providers/weather"
	"github.com/sitebrief/toolboxtalk/backend/internal/api/handlers"
	"github.com/sitebrief/toolboxtalk/backend/internal/api/middleware"
	"github.com/sitebrief/toolboxtalk/backend/internal/api/routes"
	"github.com/sitebrief/toolboxtalk/backend/internal/application/services"
	"github.com/sitebrief/toolboxtalk/backend/internal/domain/providers"
	"github.com/sitebrief/toolboxtalk/backend/internal/infrastructure/clients/openai"
	"github.com/sitebrief/toolboxtalk/backend/internal/infrastructure/clients/perplexity"
	"github.com/sitebrief/toolboxtalk/backend/internal/infrastructure/clients/postgres"
	"github.com/sitebrief/toolboxtalk/backend/internal/infrastructure/clients/redis"
	"github.com/sitebrief/toolboxtalk/backend/internal/infrastructure/observability"
	"github.com/sitebrief/toolboxtalk/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("APP_ENV"))

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized successfully")

	// Initialize Redis client. The application works without caching.
	var cacheProvider providers.CacheProvider
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis client, running without cache")
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		log.Info().Msg("Redis client initialized successfully")
	}

	// Initialize adapters
	meetingAdapter := database.NewMeetingAdapter(pgClient)
	sessionAdapter := database.NewSessionAdapter(pgClient)

	var geolocationProvider providers.GeolocationProvider
	if cfg.GoogleMaps.APIKey == "" {
		log.Warn().Msg("GOOGLE_MAPS_API_KEY is not set; using mock geolocation provider")
		geolocationProvider = geolocation.NewMockGeolocationProvider()
	} else {
		geolocationProvider = geolocation.NewGoogleGeolocationProvider(cfg.GoogleMaps.APIKey, cacheProvider)
	}

	var weatherProvider providers.WeatherProvider
	if cfg.Weather.APIKey == "" {
		log.Warn().Msg("WEATHER_API_KEY is not set; using mock weather provider")
		weatherProvider = weather.NewMockWeatherProvider()
	} else {
		weatherProvider = weather.NewTomorrowWeatherProvider(cfg.Weather.APIKey)
	}

	openaiClient, err := openai.NewClient(&cfg.OpenAI)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize OpenAI client")
	}

	perplexityClient, err := perplexity.NewClient(&cfg.Perplexity)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Perplexity client")
	}

	// Initialize services
	weatherService := services.NewWeatherService(geolocationProvider, weatherProvider, cacheProvider, metrics)
	hazardService := services.NewHazardService(openaiClient)
	meetingService := services.NewMeetingService(meetingAdapter, perplexityClient, openaiClient).
		WithSearchTimeout(cfg.Perplexity.Timeout)
	autosaveService := services.NewSummaryAutosaveService(meetingAdapter, log.Logger)

	// Initialize handlers
	meetingHandler := handlers.NewMeetingHandler(meetingService, autosaveService)
	weatherHandler := handlers.NewWeatherHandler(weatherService)
	hazardHandler := handlers.NewHazardHandler(hazardService)
	geolocationHandler := handlers.NewGeolocationHandler(weatherService)

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, log.Logger)
		log.Info().Msg("Cache middleware initialized successfully")
	}

	// Set up router
	router := routes.NewRouter(
		meetingHandler,
		weatherHandler,
		hazardHandler,
		geolocationHandler,
		sessionAdapter,
		cacheMiddleware,
		metrics,
		log.Logger,
		cfg.Server.AllowedOrigins,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	// Write out any summary edits still waiting on their idle timer
	autosaveService.Shutdown(shutdownCtx)

	log.Info().Msg("Server stopped")
}
