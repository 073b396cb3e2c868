package repository

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"support-desk/internal/domain"
)

// BookingRepository consulta e inserta reservas sobre tickets.
type BookingRepository interface {
	Create(ctx context.Context, booking domain.Booking) (domain.Booking, error)
	// FindOverlapping devuelve las reservas del ticket que se solapan con [start, end).
	FindOverlapping(ctx context.Context, serviceRequestID int64, start, end time.Time) ([]domain.Booking, error)
	// ListStartingBetween devuelve las reservas cuyo inicio cae en [from, to).
	ListStartingBetween(ctx context.Context, serviceRequestID int64, from, to time.Time) ([]domain.Booking, error)
	ListByServiceRequest(ctx context.Context, serviceRequestID int64) ([]domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	ListAll(ctx context.Context) ([]domain.Booking, error)
}

type PgBookingRepository struct {
	pool *pgxpool.Pool
}

func NewPgBookingRepository(pool *pgxpool.Pool) *PgBookingRepository {
	return &PgBookingRepository{pool: pool}
}

const bookingColumns = `id, start_time, end_time, user_id, service_request_id, created_at`

func (r *PgBookingRepository) Create(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	const query = `
		INSERT INTO bookings (start_time, end_time, user_id, service_request_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + bookingColumns
	var created domain.Booking
	err := pgxscan.Get(ctx, r.pool, &created, query,
		booking.StartTime,
		booking.EndTime,
		booking.UserID,
		booking.ServiceRequestID,
	)
	return created, err
}

func (r *PgBookingRepository) FindOverlapping(ctx context.Context, serviceRequestID int64, start, end time.Time) ([]domain.Booking, error) {
	const query = `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE service_request_id = $1 AND start_time < $3 AND end_time > $2
		ORDER BY start_time
	`
	var bookings []domain.Booking
	err := pgxscan.Select(ctx, r.pool, &bookings, query, serviceRequestID, start, end)
	return bookings, err
}

func (r *PgBookingRepository) ListStartingBetween(ctx context.Context, serviceRequestID int64, from, to time.Time) ([]domain.Booking, error) {
	const query = `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE service_request_id = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time
	`
	var bookings []domain.Booking
	err := pgxscan.Select(ctx, r.pool, &bookings, query, serviceRequestID, from, to)
	return bookings, err
}

func (r *PgBookingRepository) ListByServiceRequest(ctx context.Context, serviceRequestID int64) ([]domain.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM bookings WHERE service_request_id = $1 ORDER BY start_time`
	var bookings []domain.Booking
	err := pgxscan.Select(ctx, r.pool, &bookings, query, serviceRequestID)
	return bookings, err
}

func (r *PgBookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY start_time`
	var bookings []domain.Booking
	err := pgxscan.Select(ctx, r.pool, &bookings, query, userID)
	return bookings, err
}

func (r *PgBookingRepository) ListAll(ctx context.Context) ([]domain.Booking, error) {
	const query = `SELECT ` + bookingColumns + ` FROM bookings ORDER BY start_time`
	var bookings []domain.Booking
	err := pgxscan.Select(ctx, r.pool, &bookings, query)
	return bookings, err
}
