package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/arogyacare/platform-api/internal/config"
	"github.com/arogyacare/platform-api/internal/repository/postgres"
	otpService "github.com/arogyacare/platform-api/internal/service/otp"
	"github.com/arogyacare/platform-api/internal/sms"
	"github.com/arogyacare/platform-api/internal/worker"
	"github.com/arogyacare/platform-api/pkg/logger"
	"github.com/arogyacare/platform-api/pkg/metrics"
)

// The worker binary runs the OTP sweep on its own schedule, for
// deployments that prefer housekeeping outside the API process.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.InfoLevel,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Logging.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	m := metrics.New("platform_worker")

	base := postgres.NewBaseRepository(db)
	otpRepo := postgres.NewOTPRepository(base)

	// The sweep never sends SMS; the sender is only needed to satisfy
	// the service constructor.
	otpSvc := otpService.NewService(otpRepo, &sms.LogSender{Logger: appLogger}, nil, otpService.Config{
		ExpiryWindow: time.Duration(cfg.OTP.ExpiryMinutes) * time.Minute,
		MaxAttempts:  cfg.OTP.MaxAttempts,
	}, m, appLogger)

	sweeper := worker.NewOTPSweepWorker(otpSvc, time.Duration(cfg.OTP.SweepIntervalMins)*time.Minute, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	go sweeper.Start(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port+1),
		Handler: mux,
	}

	go func() {
		appLogger.ZL.Info().Str("addr", srv.Addr).Msg("starting sweep worker")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start worker server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.ZL.Info().Msg("shutting down worker")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("worker forced to shutdown")
	}
}
