package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/pinpass/internal/api"
	"github.com/isdelr/pinpass/internal/api/handlers"
	"github.com/isdelr/pinpass/internal/config"
	"github.com/isdelr/pinpass/internal/database"
	"github.com/isdelr/pinpass/internal/logger"
	"github.com/isdelr/pinpass/internal/monitoring"
	"github.com/isdelr/pinpass/internal/notify"
	"github.com/isdelr/pinpass/internal/services"
	"github.com/isdelr/pinpass/internal/session"
	"github.com/isdelr/pinpass/internal/views"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := logger.Init(cfg.LogLevel, cfg.IsProduction()); err != nil {
		log.Warn().Err(err).Str("level", cfg.LogLevel).Msg("Unknown log level, using info")
	}

	// Set up database
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	mongoClient, db, err := database.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		cancel()
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}
	cancel()

	// Set up session storage
	var (
		store   session.Store
		janitor *monitoring.Janitor
		closers []func() error
	)
	switch cfg.SessionStore {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := database.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		closers = append(closers, rdb.Close)
		store = session.NewRedisStore(rdb, "pinpass:sess")
	case "memory":
		mem := session.NewMemoryStore()
		janitor, err = monitoring.NewJanitor(mem, cfg.SessionSweepSchedule)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to set up session janitor")
		}
		store = mem
	}
	log.Info().Str("store", cfg.SessionStore).Dur("ttl", cfg.SessionTTL).Msg("Session store ready")

	sessions := session.NewManager(store, cfg.SessionSecret, session.Options{
		TTL: cfg.SessionTTL,
		Cookie: session.CookieOptions{
			Secure:   cfg.CookieSecure,
			HTTPOnly: cfg.CookieHTTPOnly,
			SameSite: http.SameSiteLaxMode,
		},
	})

	// Set up services
	userService := services.NewUserService(db)
	eventService := services.NewEventService(db)

	mailer := notify.NewEmailJSClient(cfg.EmailJS)
	if !mailer.IsConfigured() {
		log.Warn().Msg("EmailJS credentials missing, PIN recovery emails will fail")
	}
	dispatcher := notify.NewBreaker(mailer, notify.BreakerOptions{})

	renderer, err := views.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse page templates")
	}

	// Set up router
	router := api.NewRouter(api.Dependencies{
		Sessions:   sessions,
		Users:      userService,
		Events:     eventService,
		Dispatcher: dispatcher,
		Views:      renderer,
		HealthChecks: map[string]handlers.HealthCheck{
			"mongo": func(ctx context.Context) error {
				return mongoClient.Ping(ctx, readpref.Primary())
			},
			"sessions": sessions.Ping,
		},
		AllowedOrigins: cfg.AllowedOrigins,
		SenderName:     cfg.EmailJS.SenderName,
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if janitor != nil {
		janitor.Run()
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	if janitor != nil {
		janitor.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to disconnect from MongoDB")
	}
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Error().Err(err).Msg("Failed to close connection")
		}
	}

	log.Info().Msg("Server exiting")
}
