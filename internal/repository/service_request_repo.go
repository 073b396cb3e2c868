package repository

import (
	"context"
	"errors"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"support-desk/internal/domain"
)

// ServiceRequestRepository persiste tickets y su catálogo de tipos.
type ServiceRequestRepository interface {
	Create(ctx context.Context, req domain.ServiceRequest) (domain.ServiceRequest, error)
	GetByID(ctx context.Context, id int64) (domain.ServiceRequest, error)
	ListByUser(ctx context.Context, userID string) ([]domain.ServiceRequest, error)
	ListAll(ctx context.Context) ([]domain.ServiceRequest, error)
	UpdateStatus(ctx context.Context, id int64, status domain.ServiceRequestStatus) (domain.ServiceRequest, error)
	GetRequestType(ctx context.Context, name string) (domain.RequestType, error)
	ListRequestTypes(ctx context.Context) ([]domain.RequestType, error)
}

type PgServiceRequestRepository struct {
	pool *pgxpool.Pool
}

func NewPgServiceRequestRepository(pool *pgxpool.Pool) *PgServiceRequestRepository {
	return &PgServiceRequestRepository{pool: pool}
}

const serviceRequestColumns = `id, name, email, subject, message, request_type_id, status, images,
		user_id, created_at, updated_at`

func (r *PgServiceRequestRepository) Create(ctx context.Context, req domain.ServiceRequest) (domain.ServiceRequest, error) {
	const query = `
		INSERT INTO service_requests (name, email, subject, message, request_type_id, status, images, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + serviceRequestColumns
	images := req.Images
	if images == nil {
		images = []string{}
	}
	var created domain.ServiceRequest
	err := pgxscan.Get(ctx, r.pool, &created, query,
		req.Name,
		req.Email,
		req.Subject,
		req.Message,
		req.RequestTypeID,
		string(req.Status),
		images,
		req.UserID,
	)
	return created, err
}

func (r *PgServiceRequestRepository) GetByID(ctx context.Context, id int64) (domain.ServiceRequest, error) {
	const query = `SELECT ` + serviceRequestColumns + ` FROM service_requests WHERE id = $1`
	var req domain.ServiceRequest
	err := pgxscan.Get(ctx, r.pool, &req, query, id)
	if pgxscan.NotFound(err) {
		return domain.ServiceRequest{}, pgx.ErrNoRows
	}
	return req, err
}

func (r *PgServiceRequestRepository) ListByUser(ctx context.Context, userID string) ([]domain.ServiceRequest, error) {
	const query = `
		SELECT ` + serviceRequestColumns + `
		FROM service_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	var reqs []domain.ServiceRequest
	err := pgxscan.Select(ctx, r.pool, &reqs, query, userID)
	return reqs, err
}

func (r *PgServiceRequestRepository) ListAll(ctx context.Context) ([]domain.ServiceRequest, error) {
	const query = `SELECT ` + serviceRequestColumns + ` FROM service_requests ORDER BY created_at DESC`
	var reqs []domain.ServiceRequest
	err := pgxscan.Select(ctx, r.pool, &reqs, query)
	return reqs, err
}

func (r *PgServiceRequestRepository) UpdateStatus(ctx context.Context, id int64, status domain.ServiceRequestStatus) (domain.ServiceRequest, error) {
	const query = `
		UPDATE service_requests
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + serviceRequestColumns
	var req domain.ServiceRequest
	err := pgxscan.Get(ctx, r.pool, &req, query, id, string(status))
	if pgxscan.NotFound(err) {
		return domain.ServiceRequest{}, pgx.ErrNoRows
	}
	return req, err
}

// GetRequestType busca el tipo sin distinguir mayúsculas.
func (r *PgServiceRequestRepository) GetRequestType(ctx context.Context, name string) (domain.RequestType, error) {
	const query = `SELECT id, type FROM request_types WHERE type = lower($1)`
	var rt domain.RequestType
	err := r.pool.QueryRow(ctx, query, name).Scan(&rt.ID, &rt.Type)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.RequestType{}, err
	}
	return rt, err
}

func (r *PgServiceRequestRepository) ListRequestTypes(ctx context.Context) ([]domain.RequestType, error) {
	var types []domain.RequestType
	err := pgxscan.Select(ctx, r.pool, &types, `SELECT id, type FROM request_types ORDER BY id`)
	return types, err
}
