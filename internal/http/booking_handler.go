package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"support-desk/internal/domain"
	"support-desk/internal/service"
)

// BookingHandler expone reservas y disponibilidad de turnos.
type BookingHandler struct {
	logger       *zap.Logger
	bookingServ  *service.BookingService
	availability *service.AvailabilityService
}

func NewBookingHandler(logger *zap.Logger, bookingServ *service.BookingService, availability *service.AvailabilityService) *BookingHandler {
	return &BookingHandler{
		logger:       logger,
		bookingServ:  bookingServ,
		availability: availability,
	}
}

// flexID acepta el id como número o como string numérico.
type flexID int64

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 {
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n)
	return nil
}

// CreateBooking maneja POST /api/booking.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		_ = c.Error(newAPIError(http.StatusUnauthorized, "Unauthorize Access"))
		return
	}

	var req struct {
		ServiceRequestID flexID `json:"serviceRequestId" binding:"required"`
		Date             string `json:"date" binding:"required"`
		StartTime        string `json:"startTime" binding:"required"`
		EndTime          string `json:"endTime" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	booking, err := h.bookingServ.Create(c.Request.Context(), service.CreateBookingInput{
		UserID:           user.ID,
		ServiceRequestID: int64(req.ServiceRequestID),
		Date:             req.Date,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.logger.Info("booking created",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("service_request_id", booking.ServiceRequestID),
	)
	respond(c, http.StatusCreated, "Booking created successfully", booking)
}

// ListBookings maneja GET /api/booking?serviceRequestId=.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		_ = c.Error(newAPIError(http.StatusUnauthorized, "Unauthorize Access"))
		return
	}

	var serviceRequestID int64
	if raw := c.Query("serviceRequestId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			_ = c.Error(newAPIError(http.StatusBadRequest, "Invalid serviceRequestId"))
			return
		}
		serviceRequestID = id
	}

	bookings, err := h.bookingServ.List(c.Request.Context(), user, serviceRequestID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	message := "Bookings retrieved successfully"
	if user.Role == domain.RoleAdmin || user.Role == domain.RoleSuperAdmin {
		message = "All Bookings retrieved successfully"
	}
	respond(c, http.StatusOK, message, bookings)
}

// AvailableSlots maneja POST /api/booking/available-slots (público).
func (h *BookingHandler) AvailableSlots(c *gin.Context) {
	var req struct {
		ServiceRequestID flexID `json:"serviceRequestId" binding:"required"`
		Date             string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	slots, err := h.availability.AvailableSlots(c.Request.Context(), int64(req.ServiceRequestID), req.Date)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"statusCode":     http.StatusOK,
		"message":        "Available time slots fetched successfully",
		"availableSlots": slots,
	})
}
