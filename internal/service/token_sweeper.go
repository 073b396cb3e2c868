package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"support-desk/internal/repository"
)

// TokenSweeper borra periódicamente los tokens de un solo uso vencidos.
// El borrado es idempotente, no necesita coordinarse con las solicitudes en curso.
type TokenSweeper struct {
	logger  *zap.Logger
	tokens  repository.TokenRepository
	metrics *Metrics
	cron    *cron.Cron
}

func NewTokenSweeper(logger *zap.Logger, tokens repository.TokenRepository, schedule string, metrics *Metrics) (*TokenSweeper, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	s := &TokenSweeper{
		logger:  logger,
		tokens:  tokens,
		metrics: metrics,
		cron:    cron.New(),
	}
	if _, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_, _ = s.RunOnce(ctx)
	}); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *TokenSweeper) Start() {
	s.cron.Start()
	s.logger.Info("token sweeper started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop detiene el scheduler y espera a que termine la corrida en curso.
func (s *TokenSweeper) Stop() context.Context {
	return s.cron.Stop()
}

func (s *TokenSweeper) RunOnce(ctx context.Context) (int64, error) {
	deleted, err := s.tokens.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error("sweep expired tokens failed", zap.Error(err))
		return 0, err
	}
	s.metrics.TokensSwept.Add(float64(deleted))
	s.logger.Info("expired tokens swept", zap.Int64("deleted", deleted))
	return deleted, nil
}
