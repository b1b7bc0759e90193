package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"launchpad/internal/botcheck"
	"launchpad/internal/config"
	"launchpad/internal/db"
	"launchpad/internal/email"
	apihttp "launchpad/internal/http"
	"launchpad/internal/repository"
	"launchpad/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	if cfg.IsDevelopment() {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	tokenRepo := repository.NewPgAuthTokenRepository(pool)
	courseRepo := repository.NewPgCourseRepository(pool)
	enrollmentRepo := repository.NewPgEnrollmentRepository(pool)
	progressRepo := repository.NewPgProgressRepository(pool)

	emailSender := email.NewDisabledSender(logger)
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS, cfg.AppName, cfg.BaseURL)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		dashLimiter service.RateLimiter
		tokenStore  service.RefreshTokenStore
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			dashLimiter = service.NewRedisRateLimiter(redisClient, service.DashboardRateWindow, service.DashboardRateLimit)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	tokenSvc := service.NewTokenService(logger, tokenRepo, userRepo)
	authSvc := service.NewAuthService(logger, userRepo, tokenSvc, emailSender, jwtSvc)
	catalogSvc := service.NewCatalogService(logger, courseRepo)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, userRepo)
	dashSvc := service.NewDashboardService(logger, catalogSvc, enrollmentSvc, courseRepo, progressRepo, dashLimiter, cfg.PricingURL, cfg.FreePreviewURL)
	verifier := botcheck.NewTurnstileVerifier(cfg.TurnstileSecret, logger)

	authHandler := apihttp.NewAuthHandler(logger, authSvc, jwtSvc, verifier, cfg.IsDevelopment())
	dashHandler := apihttp.NewDashboardHandler(logger, dashSvc, cfg.IsDevelopment())
	progressHandler := apihttp.NewProgressHandler(logger, courseRepo, progressRepo, cfg.IsDevelopment())
	router := apihttp.NewRouter(logger, jwtSvc, authHandler, dashHandler, progressHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
