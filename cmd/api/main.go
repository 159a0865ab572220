package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/clinicore/scheduling-api/internal/config"
	"github.com/clinicore/scheduling-api/internal/handler"
	appointmentHandler "github.com/clinicore/scheduling-api/internal/handler/appointment"
	clinicHandler "github.com/clinicore/scheduling-api/internal/handler/clinic"
	clinicianHandler "github.com/clinicore/scheduling-api/internal/handler/clinician"
	patientHandler "github.com/clinicore/scheduling-api/internal/handler/patient"
	"github.com/clinicore/scheduling-api/internal/repository/postgres"
	"github.com/clinicore/scheduling-api/internal/router"
	clinicService "github.com/clinicore/scheduling-api/internal/service/clinic"
	clinicianService "github.com/clinicore/scheduling-api/internal/service/clinician"
	patientService "github.com/clinicore/scheduling-api/internal/service/patient"
	"github.com/clinicore/scheduling-api/internal/service/scheduling"
	"github.com/clinicore/scheduling-api/pkg/logger"
	"github.com/clinicore/scheduling-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	appointmentRepo := postgres.NewAppointmentRepository(db)
	clinicianRepo := postgres.NewClinicianRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	clinicRepo := postgres.NewClinicRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Clock and booking rules run in the canonical clinic timezone.
	clock, err := scheduling.NewClock(cfg.Scheduling.Timezone)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load scheduling timezone")
	}

	chain := scheduling.NewChain(
		scheduling.NewLeadTimeRule(clock, cfg.Scheduling.MinLeadTime),
		scheduling.NewOperatingHoursRule(clock, cfg.Scheduling.OpeningHour, cfg.Scheduling.ClosingHour),
	)

	registry := prometheus.NewRegistry()
	m := metrics.New("scheduling", registry)

	// Services
	schedulingSvc := scheduling.NewService(
		appointmentRepo,
		clinicianRepo,
		patientRepo,
		clinicRepo,
		outboxRepo,
		chain,
		clock,
		scheduling.Config{
			OpeningHour: cfg.Scheduling.OpeningHour,
			ClosingHour: cfg.Scheduling.ClosingHour,
		},
		m,
		appLogger,
	)
	patientSvc := patientService.NewService(patientRepo, appointmentRepo)
	clinicianSvc := clinicianService.NewService(clinicianRepo, appointmentRepo)
	clinicSvc := clinicService.NewService(clinicRepo, appointmentRepo)

	// Handlers
	healthHandler := handler.NewHealthHandler(db)
	apptHandler := appointmentHandler.NewHandler(schedulingSvc)
	patHandler := patientHandler.NewHandler(patientSvc)
	clnHandler := clinicianHandler.NewHandler(clinicianSvc)
	clcHandler := clinicHandler.NewHandler(clinicSvc)

	r := router.NewRouter(
		healthHandler,
		apptHandler,
		patHandler,
		clnHandler,
		clcHandler,
		registry,
		router.Config{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			RequestTimeout:   cfg.Server.RequestTimeout,
			MetricsPath:      cfg.Monitoring.MetricsPath,
			MetricsPrefix:    "scheduling_http",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
