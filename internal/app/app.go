// Package app arma las dependencias compartidas por el servidor y la CLI.
package app

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"support-desk/internal/config"
	"support-desk/internal/db"
	"support-desk/internal/email"
	"support-desk/internal/repository"
	"support-desk/internal/service"
	"support-desk/internal/storage"
)

// Repositories agrupa los repositorios respaldados por Postgres.
type Repositories struct {
	Users    *repository.PgUserRepository
	Tokens   *repository.PgTokenRepository
	Bookings *repository.PgBookingRepository
	Requests *repository.PgServiceRequestRepository
	Logs     *repository.PgTicketLogRepository
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:    repository.NewPgUserRepository(pool),
		Tokens:   repository.NewPgTokenRepository(pool),
		Bookings: repository.NewPgBookingRepository(pool),
		Requests: repository.NewPgServiceRequestRepository(pool),
		Logs:     repository.NewPgTicketLogRepository(pool),
	}
}

// NewLogger devuelve un logger de producción o de desarrollo según APP_ENV.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// Connect abre el pool y, si RUN_MIGRATIONS está activo, aplica las migraciones.
func Connect(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("migrations applied")
	}
	return pool, nil
}

// Redis devuelve un cliente si REDIS_ADDR está definido y responde al ping.
// Sin Redis los limitadores y el store de refresh caen a memoria.
func Redis(ctx context.Context, cfg *config.Config, logger *zap.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctxPing).Err(); err != nil {
		logger.Warn("redis ping failed, using in-memory stores", zap.Error(err))
		_ = client.Close()
		return nil
	}
	return client
}

// EmailSender usa SMTP cuando hay host configurado.
func EmailSender(cfg *config.Config, logger *zap.Logger) email.Sender {
	if cfg.SMTPHost == "" {
		return email.NewDisabledSender("email sender not configured")
	}
	sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName)
	if err != nil {
		logger.Warn("smtp sender init failed", zap.Error(err))
		return email.NewDisabledSender(err.Error())
	}
	return sender
}

// Services agrupa los servicios de dominio listos para los handlers.
type Services struct {
	JWT          *service.JWTService
	Auth         *service.AuthService
	Users        *service.UserService
	Availability *service.AvailabilityService
	Bookings     *service.BookingService
	Tickets      *service.TicketService
	TicketLogs   *service.TicketLogService
	Metrics      *service.Metrics
}

func NewServices(ctx context.Context, cfg *config.Config, logger *zap.Logger, repos Repositories, redisClient *redis.Client, reg prometheus.Registerer) (Services, error) {
	otpLimiter := service.NewOTPRateLimiter(cfg.OTPRateWindow, cfg.OTPRateMax)
	tokenStore := service.NewMemoryRefreshTokenStore()
	if redisClient != nil {
		otpLimiter = service.NewRedisOTPRateLimiter(redisClient, cfg.OTPRateWindow, cfg.OTPRateMax)
		tokenStore = service.NewRedisRefreshTokenStore(redisClient)
	}

	uploader, err := storage.New(ctx, cfg)
	if err != nil {
		return Services{}, err
	}

	metrics := service.NewMetrics(reg)
	sender := EmailSender(cfg, logger)
	loc := cfg.Location()

	jwtSvc := service.NewJWTService(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, tokenStore)
	return Services{
		JWT: jwtSvc,
		Auth: service.NewAuthService(logger, repos.Users, repos.Tokens, sender, service.AuthOptions{
			BcryptCost: cfg.BcryptCost,
			ClientURL:  cfg.ClientURL,
			OTPLimiter: otpLimiter,
			Metrics:    metrics,
		}),
		Users:        service.NewUserService(logger, repos.Users, uploader),
		Availability: service.NewAvailabilityService(repos.Bookings, loc),
		Bookings:     service.NewBookingService(logger, repos.Bookings, repos.Requests, metrics, loc),
		Tickets:      service.NewTicketService(logger, repos.Requests, uploader, sender, cfg.SupportEmail, metrics),
		TicketLogs:   service.NewTicketLogService(repos.Requests, repos.Logs),
		Metrics:      metrics,
	}, nil
}
