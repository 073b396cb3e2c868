package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"support-desk/internal/service"
)

// TicketLogHandler expone las notas adicionales y el tiempo trabajado de un ticket.
type TicketLogHandler struct {
	logServ *service.TicketLogService
}

func NewTicketLogHandler(logServ *service.TicketLogService) *TicketLogHandler {
	return &TicketLogHandler{logServ: logServ}
}

// AddNote maneja POST /api/additional-information.
func (h *TicketLogHandler) AddNote(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		_ = c.Error(newAPIError(http.StatusUnauthorized, "Unauthorize Access"))
		return
	}

	var req struct {
		ServiceRequestID flexID `json:"serviceRequestId" binding:"required"`
		Message          string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	note, err := h.logServ.AddNote(c.Request.Context(), user.ID, int64(req.ServiceRequestID), req.Message)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, "Additional Information added successfully", note)
}

// ListNotes maneja GET /api/additional-information/:id.
func (h *TicketLogHandler) ListNotes(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	notes, err := h.logServ.ListNotes(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, "Additional Information retrieved successfully", notes)
}

// AddSpentTime maneja POST /api/spent-time (admin).
func (h *TicketLogHandler) AddSpentTime(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		_ = c.Error(newAPIError(http.StatusUnauthorized, "Unauthorize Access"))
		return
	}

	var req struct {
		TotalMinutes int    `json:"totalMinutes" binding:"required,gt=0"`
		ServiceID    flexID `json:"serviceId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	entry, err := h.logServ.AddSpentTime(c.Request.Context(), user.ID, int64(req.ServiceID), req.TotalMinutes)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusCreated, "Time Spent added successfully", entry)
}

// SpentTime maneja GET /api/spent-time/:serviceId.
func (h *TicketLogHandler) SpentTime(c *gin.Context) {
	id, ok := pathID(c, "serviceId")
	if !ok {
		return
	}
	summary, err := h.logServ.SpentTime(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	respond(c, http.StatusOK, "Time Spent fetched successfully", summary)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(newAPIError(http.StatusBadRequest, "Invalid "+name))
		return 0, false
	}
	return id, true
}
