package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"support-desk/internal/db"
	"support-desk/internal/domain"
	"support-desk/internal/repository"
)

// BookingService crea reservas sin solapamientos por ticket.
type BookingService struct {
	logger   *zap.Logger
	bookings repository.BookingRepository
	requests repository.ServiceRequestRepository
	metrics  *Metrics
	loc      *time.Location
}

func NewBookingService(logger *zap.Logger, bookings repository.BookingRepository, requests repository.ServiceRequestRepository, metrics *Metrics, loc *time.Location) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &BookingService{
		logger:   logger,
		bookings: bookings,
		requests: requests,
		metrics:  metrics,
		loc:      loc,
	}
}

type CreateBookingInput struct {
	UserID           string
	ServiceRequestID int64
	Date             string
	StartTime        string
	EndTime          string
}

func (s *BookingService) Create(ctx context.Context, input CreateBookingInput) (domain.Booking, error) {
	if s.bookings == nil || s.requests == nil {
		return domain.Booking{}, errors.New("booking service not configured")
	}

	if _, err := s.requests.GetByID(ctx, input.ServiceRequestID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Booking{}, ErrServiceRequestNotFound
		}
		return domain.Booking{}, err
	}

	interval, err := s.parseInterval(input.Date, input.StartTime, input.EndTime)
	if err != nil {
		return domain.Booking{}, err
	}

	if err := s.ensureFree(ctx, input.ServiceRequestID, interval); err != nil {
		return domain.Booking{}, err
	}

	booking := domain.Booking{
		StartTime:        interval.Start,
		EndTime:          interval.End,
		UserID:           input.UserID,
		ServiceRequestID: input.ServiceRequestID,
	}
	created, err := s.bookings.Create(ctx, booking)
	if db.IsExclusionViolation(err) {
		// La restricción EXCLUDE detectó una carrera: releer una vez y reintentar.
		s.logger.Info("booking insert hit exclusion constraint, retrying",
			zap.Int64("service_request_id", input.ServiceRequestID))
		if err := s.ensureFree(ctx, input.ServiceRequestID, interval); err != nil {
			return domain.Booking{}, err
		}
		created, err = s.bookings.Create(ctx, booking)
		if db.IsExclusionViolation(err) {
			s.metrics.BookingConflict.Inc()
			return domain.Booking{}, ErrSlotTaken
		}
	}
	if err != nil {
		return domain.Booking{}, err
	}

	s.metrics.Bookings.Inc()
	return created, nil
}

// List devuelve, para administradores, las reservas del ticket indicado (o todas);
// para el resto, solo las propias.
func (s *BookingService) List(ctx context.Context, user domain.User, serviceRequestID int64) ([]domain.Booking, error) {
	if s.bookings == nil {
		return nil, errors.New("booking service not configured")
	}
	var (
		bookings []domain.Booking
		err      error
	)
	switch {
	case isAdmin(user.Role) && serviceRequestID > 0:
		bookings, err = s.bookings.ListByServiceRequest(ctx, serviceRequestID)
	case isAdmin(user.Role):
		bookings, err = s.bookings.ListAll(ctx)
	default:
		bookings, err = s.bookings.ListByUser(ctx, user.ID)
	}
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}
	return bookings, nil
}

func (s *BookingService) ensureFree(ctx context.Context, serviceRequestID int64, interval domain.Interval) error {
	existing, err := s.bookings.FindOverlapping(ctx, serviceRequestID, interval.Start, interval.End)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		s.metrics.BookingConflict.Inc()
		return ErrSlotTaken
	}
	return nil
}

func (s *BookingService) parseInterval(date, startTime, endTime string) (domain.Interval, error) {
	const layout = dateLayout + " " + clockLayout
	start, err := time.ParseInLocation(layout, date+" "+startTime, s.loc)
	if err != nil {
		return domain.Interval{}, ErrInvalidSlot
	}
	end, err := time.ParseInLocation(layout, date+" "+endTime, s.loc)
	if err != nil {
		return domain.Interval{}, ErrInvalidSlot
	}
	if !start.Before(end) {
		return domain.Interval{}, ErrInvalidSlot
	}
	return domain.Interval{Start: start, End: end}, nil
}

func isAdmin(role domain.Role) bool {
	return role == domain.RoleAdmin || role == domain.RoleSuperAdmin
}
