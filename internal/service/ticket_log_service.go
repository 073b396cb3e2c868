package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"support-desk/internal/domain"
	"support-desk/internal/repository"
)

// TicketLogService registra notas adicionales y tiempo trabajado sobre un ticket.
type TicketLogService struct {
	requests repository.ServiceRequestRepository
	logs     repository.TicketLogRepository
}

func NewTicketLogService(requests repository.ServiceRequestRepository, logs repository.TicketLogRepository) *TicketLogService {
	return &TicketLogService{requests: requests, logs: logs}
}

func (s *TicketLogService) AddNote(ctx context.Context, userID string, serviceRequestID int64, message string) (domain.AdditionalInformation, error) {
	if strings.TrimSpace(message) == "" {
		return domain.AdditionalInformation{}, ErrMessageRequired
	}
	if err := s.ensureTicket(ctx, serviceRequestID); err != nil {
		return domain.AdditionalInformation{}, err
	}
	return s.logs.AddNote(ctx, domain.AdditionalInformation{
		Message:          message,
		UserID:           userID,
		ServiceRequestID: serviceRequestID,
	})
}

// ListNotes devuelve las notas del ticket, la más antigua primero.
func (s *TicketLogService) ListNotes(ctx context.Context, serviceRequestID int64) ([]domain.AdditionalInformation, error) {
	notes, err := s.logs.ListNotes(ctx, serviceRequestID)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []domain.AdditionalInformation{}
	}
	return notes, nil
}

func (s *TicketLogService) AddSpentTime(ctx context.Context, userID string, serviceRequestID int64, minutes int) (domain.SpentTime, error) {
	if minutes <= 0 {
		return domain.SpentTime{}, ErrInvalidMinutes
	}
	if err := s.ensureTicket(ctx, serviceRequestID); err != nil {
		return domain.SpentTime{}, err
	}
	return s.logs.AddSpentTime(ctx, domain.SpentTime{
		TimeSpent:        minutes,
		UserID:           userID,
		ServiceRequestID: serviceRequestID,
	})
}

type SpentTimeSummary struct {
	Entries      []domain.SpentTime `json:"entries"`
	TotalMinutes int                `json:"totalMinutes"`
}

func (s *TicketLogService) SpentTime(ctx context.Context, serviceRequestID int64) (SpentTimeSummary, error) {
	entries, err := s.logs.ListSpentTime(ctx, serviceRequestID)
	if err != nil {
		return SpentTimeSummary{}, err
	}
	summary := SpentTimeSummary{Entries: entries}
	if summary.Entries == nil {
		summary.Entries = []domain.SpentTime{}
	}
	for _, e := range entries {
		summary.TotalMinutes += e.TimeSpent
	}
	return summary, nil
}

func (s *TicketLogService) ensureTicket(ctx context.Context, id int64) error {
	if _, err := s.requests.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrServiceRequestNotFound
		}
		return err
	}
	return nil
}
