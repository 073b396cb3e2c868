package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"support-desk/internal/config"
	"support-desk/internal/db/migrations"
)

const (
	codeUniqueViolation    = "23505"
	codeExclusionViolation = "23P01"
)

// NewPool construye y devuelve un pool de conexiones configurado.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	return pgxpool.NewWithConfig(ctx, poolCfg)
}

// Ping verifica conectividad con la base de datos.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return pool.Ping(ctx)
}

// Migrate aplica las migraciones pendientes.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	return runGoose(ctx, pool, "up")
}

// MigrationStatus imprime el estado de cada migración mediante el logger de goose.
func MigrationStatus(ctx context.Context, pool *pgxpool.Pool) error {
	return runGoose(ctx, pool, "status")
}

func runGoose(ctx context.Context, pool *pgxpool.Pool, command string) error {
	if pool == nil {
		return errors.New("nil pool provided")
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	sqlDB, err := goose.OpenDBWithDriver("pgx", pool.Config().ConnConfig.ConnString())
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return goose.RunContext(ctx, command, sqlDB, ".")
}

// IsUniqueViolation detecta errores de clave duplicada.
func IsUniqueViolation(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

// IsExclusionViolation detecta choques contra una restricción EXCLUDE (reservas solapadas).
func IsExclusionViolation(err error) bool {
	return hasCode(err, codeExclusionViolation)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
