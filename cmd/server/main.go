package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/AnshRaj112/serenify-care/internal/config"
	"github.com/AnshRaj112/serenify-care/internal/database"
	"github.com/AnshRaj112/serenify-care/internal/handlers"
	"github.com/AnshRaj112/serenify-care/internal/logging"
	"github.com/AnshRaj112/serenify-care/internal/middleware"
	"github.com/AnshRaj112/serenify-care/internal/routes"
	"github.com/AnshRaj112/serenify-care/internal/services"
	"github.com/AnshRaj112/serenify-care/internal/store"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load env
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	format := "text"
	if cfg.IsProduction() {
		format = "json"
	}
	log := logging.New(cfg.LogLevel, format)
	if envErr != nil {
		log.Debug("No .env file found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL and apply migrations
	log.Info("Connecting to PostgreSQL...")
	db, err := database.ConnectPostgres(cfg.PostgresURI, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to PostgreSQL")
	}
	defer db.Close()
	st := store.New(db)

	// Redis is optional
	rdb, err := database.ConnectRedis(cfg.RedisURI, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// MongoDB is optional
	mongoClient, mongoDB, err := database.ConnectMongo(cfg.MongoURI, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer database.DisconnectMongo(mongoClient)

	activity := services.NewActivityLogger(mongoDB, log)
	if err := activity.EnsureIndexes(ctx); err != nil {
		log.WithError(err).Warn("⚠️  failed to ensure activity indexes")
	}

	if _, err := services.SeedLicenses(ctx, st, cfg.LicenseAllowlistFile, log); err != nil {
		log.WithError(err).Fatal("Failed to seed verified licenses")
	}

	var uploader services.FileUploader
	if cfg.CloudinaryEnabled() {
		cld, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Cloudinary, file uploads will not be available")
		} else {
			uploader = cld
			log.Info("✅ Cloudinary service initialized")
		}
	} else {
		log.Warn("Cloudinary credentials not found. File uploads will not be available")
	}

	// Live chat: the hub owns local sockets; Redis fans events out across instances
	hub := services.NewChatHub(log)
	go hub.Run(ctx)
	services.StartRedisChatSubscriber(ctx, rdb, hub, log)
	messages := services.NewMessageService(st, services.NewChatPublisher(rdb, hub), activity, log)

	sweeper := services.NewAppointmentSweeper(st, cfg.AppointmentAutoCompleteAge, log)
	if err := sweeper.Start(services.DefaultSweepSchedule); err != nil {
		log.WithError(err).Fatal("Failed to start appointment sweeper")
	}

	sessions := services.NewSessionManager(cfg.JWTSecret, cfg.JWTTTL)
	if cfg.IsProduction() && cfg.JWTSecret == "your-secret-key-change-in-production" {
		log.Fatal("JWT_SECRET must be set in production")
	}

	h := handlers.New(handlers.Deps{
		Config:   cfg,
		Store:    st,
		Sessions: sessions,
		Cache:    services.NewCacheService(rdb),
		Messages: messages,
		Hub:      hub,
		Uploader: uploader,
		Activity: activity,
		Log:      log,
	})

	opts := routes.Options{
		Verify:         sessions.Verify,
		AllowedOrigins: cfg.AllowedOrigins,
		Metrics:        middleware.NewMetrics("serenify"),
		RedisLimiter:   middleware.NewRedisRateLimiter(rdb, log),
		Log:            log,
	}
	if cfg.IsProduction() {
		opts.Limiters = middleware.NewLimiters(ctx)
		log.Info("✅ Production security enabled (security headers, per-IP + login rate limiting)")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.NewRouter(h, opts),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("🚀 Serenify Care backend running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown incomplete")
	}
	sweeper.Stop(shutdownCtx)
	log.Info("Shutdown complete")
}
