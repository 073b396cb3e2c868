package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"support-desk/internal/domain"
	"support-desk/internal/email"
	"support-desk/internal/repository"
	"support-desk/internal/storage"
)

const (
	maxTicketImages = 5
	ticketFolder    = "service-requests"
)

// TicketService administra los pedidos de servicio (tickets).
type TicketService struct {
	logger       *zap.Logger
	requests     repository.ServiceRequestRepository
	uploader     storage.Uploader
	emailSender  email.Sender
	supportEmail string
	metrics      *Metrics
}

func NewTicketService(logger *zap.Logger, requests repository.ServiceRequestRepository, uploader storage.Uploader, emailSender email.Sender, supportEmail string, metrics *Metrics) *TicketService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &TicketService{
		logger:       logger,
		requests:     requests,
		uploader:     uploader,
		emailSender:  emailSender,
		supportEmail: strings.TrimSpace(supportEmail),
		metrics:      metrics,
	}
}

type CreateTicketInput struct {
	Name        string
	Email       string
	Subject     string
	RequestType string
	Message     string
	Images      []storage.File
}

func (s *TicketService) Create(ctx context.Context, user domain.User, input CreateTicketInput) (domain.ServiceRequest, error) {
	if s.requests == nil {
		return domain.ServiceRequest{}, errors.New("ticket service not configured")
	}
	if len(input.Images) > maxTicketImages {
		return domain.ServiceRequest{}, ErrTooManyImages
	}

	requestType, err := s.requests.GetRequestType(ctx, strings.TrimSpace(input.RequestType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ServiceRequest{}, ErrInvalidRequestType
		}
		return domain.ServiceRequest{}, err
	}

	images := make([]string, 0, len(input.Images))
	for _, img := range input.Images {
		if s.uploader == nil {
			return domain.ServiceRequest{}, storage.ErrDisabled
		}
		url, err := s.uploader.Upload(ctx, ticketFolder, img)
		if err != nil {
			return domain.ServiceRequest{}, err
		}
		images = append(images, url)
	}

	created, err := s.requests.Create(ctx, domain.ServiceRequest{
		Name:          strings.TrimSpace(input.Name),
		Email:         normalizeEmail(input.Email),
		Subject:       strings.TrimSpace(input.Subject),
		Message:       input.Message,
		RequestTypeID: requestType.ID,
		Status:        domain.StatusPending,
		Images:        images,
		UserID:        user.ID,
	})
	if err != nil {
		return domain.ServiceRequest{}, err
	}

	s.notifySupport(ctx, created, requestType)
	return created, nil
}

// notifySupport avisa a la mesa de soporte; un fallo se registra pero no deshace el ticket.
func (s *TicketService) notifySupport(ctx context.Context, req domain.ServiceRequest, requestType domain.RequestType) {
	if s.emailSender == nil || s.supportEmail == "" {
		s.logger.Debug("support notice skipped", zap.Int64("service_request_id", req.ID))
		return
	}
	err := s.emailSender.SendServiceRequestNotice(ctx, s.supportEmail, email.ServiceRequestNotice{
		Name:        req.Name,
		Email:       req.Email,
		Subject:     req.Subject,
		RequestType: requestType.Type,
		Message:     req.Message,
	})
	if err != nil {
		s.metrics.emailFailed("service_request_notice")
		s.logger.Warn("send service request notice failed",
			zap.Error(err),
			zap.Int64("service_request_id", req.ID),
		)
	}
}

func (s *TicketService) ListOwn(ctx context.Context, userID string) ([]domain.ServiceRequest, error) {
	reqs, err := s.requests.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []domain.ServiceRequest{}
	}
	return reqs, nil
}

func (s *TicketService) ListAll(ctx context.Context) ([]domain.ServiceRequest, error) {
	reqs, err := s.requests.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []domain.ServiceRequest{}
	}
	return reqs, nil
}

func (s *TicketService) UpdateStatus(ctx context.Context, id int64, status domain.ServiceRequestStatus) (domain.ServiceRequest, error) {
	status = domain.ServiceRequestStatus(strings.ToLower(strings.TrimSpace(string(status))))
	if !status.Valid() {
		return domain.ServiceRequest{}, ErrInvalidStatus
	}
	req, err := s.requests.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ServiceRequest{}, ErrServiceRequestNotFound
		}
		return domain.ServiceRequest{}, err
	}
	return req, nil
}

func (s *TicketService) RequestTypes(ctx context.Context) ([]domain.RequestType, error) {
	types, err := s.requests.ListRequestTypes(ctx)
	if err != nil {
		return nil, err
	}
	if types == nil {
		types = []domain.RequestType{}
	}
	return types, nil
}
