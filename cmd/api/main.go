package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/arogyacare/platform-api/internal/config"
	"github.com/arogyacare/platform-api/internal/email"
	"github.com/arogyacare/platform-api/internal/handler"
	authHandler "github.com/arogyacare/platform-api/internal/handler/auth"
	provisionHandler "github.com/arogyacare/platform-api/internal/handler/provision"
	voiceHandler "github.com/arogyacare/platform-api/internal/handler/voice"
	"github.com/arogyacare/platform-api/internal/middleware"
	"github.com/arogyacare/platform-api/internal/repository/postgres"
	"github.com/arogyacare/platform-api/internal/router"
	authService "github.com/arogyacare/platform-api/internal/service/auth"
	otpService "github.com/arogyacare/platform-api/internal/service/otp"
	provisionService "github.com/arogyacare/platform-api/internal/service/provision"
	voiceService "github.com/arogyacare/platform-api/internal/service/voice"
	"github.com/arogyacare/platform-api/internal/sms"
	"github.com/arogyacare/platform-api/internal/sms/twilio"
	"github.com/arogyacare/platform-api/internal/worker"
	"github.com/arogyacare/platform-api/pkg/auth"
	"github.com/arogyacare/platform-api/pkg/circuitbreaker"
	"github.com/arogyacare/platform-api/pkg/logger"
	"github.com/arogyacare/platform-api/pkg/metrics"
	"github.com/arogyacare/platform-api/pkg/security"
	"github.com/arogyacare/platform-api/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := newLogger(cfg.Logging)

	if err := validator.RegisterCustomValidators(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	m := metrics.New("platform_api")

	base := postgres.NewBaseRepository(db)
	userRepo := postgres.NewUserRepository(base)
	otpRepo := postgres.NewOTPRepository(base)
	hospitalRepo := postgres.NewHospitalRepository(base)

	jwtSvc, err := auth.NewJWTService(auth.Config{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     time.Duration(cfg.JWT.AccessExpiryHours) * time.Hour,
		RefreshTTL:    time.Duration(cfg.JWT.RefreshExpiryDays) * 24 * time.Hour,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize token issuer")
	}

	smsSender := newSMSSender(cfg.SMS, appLogger)
	mailer := email.NewSMTPService(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, m)

	hasher := security.NewBcryptHasher(cfg.Login.BcryptCost)

	otpSvc := otpService.NewService(otpRepo, smsSender, rdb, otpService.Config{
		ExpiryWindow: time.Duration(cfg.OTP.ExpiryMinutes) * time.Minute,
		MaxAttempts:  cfg.OTP.MaxAttempts,
		ResendWindow: time.Duration(cfg.OTP.ResendSeconds) * time.Second,
	}, m, appLogger)

	authSvc := authService.NewService(userRepo, hospitalRepo, otpSvc, jwtSvc, hasher, authService.Config{
		MaxLoginAttempts: cfg.Login.MaxAttempts,
		LockoutDuration:  time.Duration(cfg.Login.LockoutMinutes) * time.Minute,
	}, m, appLogger)

	provisionSvc := provisionService.NewService(hospitalRepo, userRepo, hasher, mailer, appLogger)

	voiceSvc := voiceService.NewService(&voiceService.StaticProvider{
		Assistant: voiceService.AssistantConfig{
			AssistantID: cfg.Voice.AssistantID,
			BaseURL:     cfg.Voice.BaseURL,
		},
	}, voiceService.Config{
		SessionTTL: time.Duration(cfg.Voice.SessionTTLMinutes) * time.Minute,
	}, appLogger)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		provisionHandler.NewHandler(provisionSvc),
		voiceHandler.NewHandler(voiceSvc),
		handler.NewHandler(db, rdb),
		appLogger,
		router.Config{
			RateLimitRPS:   cfg.Server.RateLimitRPS,
			RateLimitBurst: cfg.Server.RateLimitBurst,
			Timeout:        cfg.Server.Timeout(),
			CORSConfig:     middleware.DefaultCORSConfig(),
			MetricsPrefix:  "platform_api",
		},
	)
	r.Setup()

	// Expired codes are also swept in-process so a standalone worker is
	// optional in small deployments.
	sweeper := worker.NewOTPSweepWorker(otpSvc, time.Duration(cfg.OTP.SweepIntervalMins)*time.Minute, appLogger)
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go sweeper.Start(sweepCtx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		appLogger.ZL.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.ZL.Info().Msg("shutting down server")

	stopSweeper()
	r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.ZL.Info().Msg("server exited")
}

func newLogger(cfg config.LoggingConfig) *logger.Logger {
	level := logger.InfoLevel
	switch cfg.Level {
	case "debug":
		level = logger.DebugLevel
	case "warn":
		level = logger.WarnLevel
	case "error":
		level = logger.ErrorLevel
	}
	return logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Pretty,
	})
}

func newSMSSender(cfg config.SMSConfig, appLogger *logger.Logger) sms.Sender {
	if cfg.Provider != "twilio" {
		appLogger.ZL.Warn().Msg("using log-only SMS sender; codes will not be delivered")
		return &sms.LogSender{Logger: appLogger}
	}

	breaker := circuitbreaker.New(circuitbreaker.Settings{
		Name:        "twilio",
		MaxFailures: 5,
		Cooldown:    30 * time.Second,
	})
	return twilio.NewSender(twilio.Config{
		AccountSID: cfg.AccountSID,
		AuthToken:  cfg.AuthToken,
		FromNumber: cfg.FromNumber,
	}, breaker, appLogger)
}
