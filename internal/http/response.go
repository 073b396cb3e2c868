package http

import (
	"github.com/gin-gonic/gin"
)

// envelope es la respuesta estándar de éxito.
type envelope struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{
		Success:    true,
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}
