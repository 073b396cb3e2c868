package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"support-desk/internal/app"
	"support-desk/internal/config"
	apihttp "support-desk/internal/http"
	"support-desk/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := app.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	redisClient := app.Redis(ctx, cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	repos := app.NewRepositories(pool)
	svcs, err := app.NewServices(ctx, cfg, logger, repos, redisClient, reg)
	if err != nil {
		logger.Fatal("services init", zap.Error(err))
	}

	sweeper, err := service.NewTokenSweeper(logger, repos.Tokens, cfg.TokenSweepSchedule, svcs.Metrics)
	if err != nil {
		logger.Fatal("token sweeper", zap.Error(err))
	}
	sweeper.Start()

	router := apihttp.NewRouter(logger, apihttp.RouterOptions{
		Production:  cfg.IsProduction(),
		CORSOrigins: cfg.CORSOrigins,
		Registry:    reg,
	}, svcs.JWT, svcs.Users, apihttp.Handlers{
		Auth:           apihttp.NewAuthHandler(logger, svcs.Auth, svcs.JWT, svcs.Users, cfg.IsProduction()),
		User:           apihttp.NewUserHandler(logger, svcs.Users),
		Booking:        apihttp.NewBookingHandler(logger, svcs.Bookings, svcs.Availability),
		ServiceRequest: apihttp.NewServiceRequestHandler(logger, svcs.Tickets),
		TicketLog:      apihttp.NewTicketLogHandler(svcs.TicketLogs),
		Health:         apihttp.NewHealthHandler(pool),
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	<-sweeper.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}
