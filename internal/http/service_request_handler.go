package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"support-desk/internal/domain"
	"support-desk/internal/service"
	"support-desk/internal/storage"
)

// ServiceRequestHandler expone los tickets de soporte.
type ServiceRequestHandler struct {
	logger     *zap.Logger
	ticketServ *service.TicketService
}

func NewServiceRequestHandler(logger *zap.Logger, ticketServ *service.TicketService) *ServiceRequestHandler {
	return &ServiceRequestHandler{
		logger:     logger,
		ticketServ: ticketServ,
	}
}

type createTicketRequest struct {
	Name        string `json:"name" form:"name" binding:"required"`
	Email       string `json:"email" form:"email" binding:"required,email"`
	Subject     string `json:"subject" form:"subject" binding:"required"`
	RequestType string `json:"requestType" form:"requestType" binding:"required"`
	Message     string `json:"message" form:"message" binding:"required"`
}

// Create maneja POST /api/service-request. Con multipart acepta hasta 5 "images".
func (h *ServiceRequestHandler) Create(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		_ = c.Error(newAPIError(http.StatusUnauthorized, "Unauthorize Access"))
		return
	}

	var (
		req    createTicketRequest
		images []storage.File
	)
	if isMultipart(c) {
		if err := c.ShouldBind(&req); err != nil {
			_ = c.Error(err)
			return
		}
		form, err := c.MultipartForm()
		if err != nil {
			_ = c.Error(newAPIError(http.StatusBadRequest, "Invalid multipart form"))
			return
		}
		files, closeAll, err := openFiles(form.File["images"])
		if err != nil {
			_ = c.Error(err)
			return
		}
		defer closeAll()
		images = files
	} else if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	ticket, err := h.ticketServ.Create(c.Request.Context(), user, service.CreateTicketInput{
		Name:        req.Name,
		Email:       req.Email,
		Subject:     req.Subject,
		RequestType: req.RequestType,
		Message:     req.Message,
		Images:      images,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusCreated, "Service request created successfully", ticket)
}

// ListOwn maneja GET /api/service-request.
func (h *ServiceRequestHandler) ListOwn(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		_ = c.Error(newAPIError(http.StatusUnauthorized, "Unauthorize Access"))
		return
	}
	tickets, err := h.ticketServ.ListOwn(c.Request.Context(), user.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, "Service request retrieved successfully", tickets)
}

// ListAll maneja GET /api/service-request/all (admin).
func (h *ServiceRequestHandler) ListAll(c *gin.Context) {
	tickets, err := h.ticketServ.ListAll(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, "Service request retrieved successfully", tickets)
}

// UpdateStatus maneja PATCH /api/service-request/:id/status (admin).
func (h *ServiceRequestHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(newAPIError(http.StatusBadRequest, "Invalid service request id"))
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	ticket, err := h.ticketServ.UpdateStatus(c.Request.Context(), id, domain.ServiceRequestStatus(req.Status))
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, "Service request status updated successfully", ticket)
}

// RequestTypes maneja GET /api/service-request/request-types (público).
func (h *ServiceRequestHandler) RequestTypes(c *gin.Context) {
	types, err := h.ticketServ.RequestTypes(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, "Request types retrieved successfully", types)
}
