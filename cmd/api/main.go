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
	"golang.org/x/time/rate"

	"github.com/medibook/booking-api/internal/config"
	"github.com/medibook/booking-api/internal/handler"
	appointmentHandler "github.com/medibook/booking-api/internal/handler/appointment"
	doctorHandler "github.com/medibook/booking-api/internal/handler/doctor"
	paymentHandler "github.com/medibook/booking-api/internal/handler/payment"
	"github.com/medibook/booking-api/internal/middleware"
	"github.com/medibook/booking-api/internal/repository/postgres"
	"github.com/medibook/booking-api/internal/router"
	bookingService "github.com/medibook/booking-api/internal/service/booking"
	eventService "github.com/medibook/booking-api/internal/service/event"
	paymentService "github.com/medibook/booking-api/internal/service/payment"
	"github.com/medibook/booking-api/pkg/auth"
	"github.com/medibook/booking-api/pkg/gateway/razorpay"
	"github.com/medibook/booking-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics("booking_api")

	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	eventSvc := eventService.NewService(outboxRepo, log.Logger)
	bookingSvc := bookingService.NewService(doctorRepo, patientRepo, appointmentRepo, eventSvc, m, log.Logger)

	gateway := razorpay.NewClient(razorpay.Config{
		KeyID:     cfg.Razorpay.KeyID,
		KeySecret: cfg.Razorpay.KeySecret,
		BaseURL:   cfg.Razorpay.BaseURL,
		Timeout:   cfg.Razorpay.Timeout,
	})
	paymentSvc := paymentService.NewService(appointmentRepo, gateway, eventSvc, m, log.Logger)

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	authMW := middleware.NewAuthMiddleware(jwtSvc)

	r := router.NewRouter(
		router.Config{
			RateLimit: rate.Limit(cfg.Server.RateLimit),
			RateBurst: cfg.Server.RateBurst,
		},
		authMW,
		handler.NewHealthHandler(db),
		appointmentHandler.NewHandler(bookingSvc),
		paymentHandler.NewHandler(paymentSvc),
		doctorHandler.NewHandler(bookingSvc),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
