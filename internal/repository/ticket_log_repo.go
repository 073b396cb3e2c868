package repository

import (
	"context"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"support-desk/internal/domain"
)

// TicketLogRepository guarda las notas y el tiempo trabajado de cada ticket.
type TicketLogRepository interface {
	AddNote(ctx context.Context, note domain.AdditionalInformation) (domain.AdditionalInformation, error)
	ListNotes(ctx context.Context, serviceRequestID int64) ([]domain.AdditionalInformation, error)
	AddSpentTime(ctx context.Context, entry domain.SpentTime) (domain.SpentTime, error)
	ListSpentTime(ctx context.Context, serviceRequestID int64) ([]domain.SpentTime, error)
}

type PgTicketLogRepository struct {
	pool *pgxpool.Pool
}

func NewPgTicketLogRepository(pool *pgxpool.Pool) *PgTicketLogRepository {
	return &PgTicketLogRepository{pool: pool}
}

func (r *PgTicketLogRepository) AddNote(ctx context.Context, note domain.AdditionalInformation) (domain.AdditionalInformation, error) {
	const query = `
		INSERT INTO additional_information (message, user_id, service_request_id)
		VALUES ($1, $2, $3)
		RETURNING id, message, user_id, service_request_id, created_at
	`
	var created domain.AdditionalInformation
	err := pgxscan.Get(ctx, r.pool, &created, query, note.Message, note.UserID, note.ServiceRequestID)
	return created, err
}

func (r *PgTicketLogRepository) ListNotes(ctx context.Context, serviceRequestID int64) ([]domain.AdditionalInformation, error) {
	const query = `
		SELECT id, message, user_id, service_request_id, created_at
		FROM additional_information
		WHERE service_request_id = $1
		ORDER BY created_at ASC, id ASC
	`
	var notes []domain.AdditionalInformation
	err := pgxscan.Select(ctx, r.pool, &notes, query, serviceRequestID)
	return notes, err
}

func (r *PgTicketLogRepository) AddSpentTime(ctx context.Context, entry domain.SpentTime) (domain.SpentTime, error) {
	const query = `
		INSERT INTO spent_times (time_spent, user_id, service_request_id)
		VALUES ($1, $2, $3)
		RETURNING id, time_spent, user_id, service_request_id, created_at
	`
	var created domain.SpentTime
	err := pgxscan.Get(ctx, r.pool, &created, query, entry.TimeSpent, entry.UserID, entry.ServiceRequestID)
	return created, err
}

func (r *PgTicketLogRepository) ListSpentTime(ctx context.Context, serviceRequestID int64) ([]domain.SpentTime, error) {
	const query = `
		SELECT id, time_spent, user_id, service_request_id, created_at
		FROM spent_times
		WHERE service_request_id = $1
		ORDER BY created_at ASC, id ASC
	`
	var entries []domain.SpentTime
	err := pgxscan.Select(ctx, r.pool, &entries, query, serviceRequestID)
	return entries, err
}
