package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"support-desk/internal/db"
	"support-desk/internal/service"
	"support-desk/internal/storage"
)

const genericErrorMessage = "Something went wrong!"

// APIError lleva un status HTTP explícito hasta el middleware de errores.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

func newAPIError(status int, message string) *APIError {
	return &APIError{Status: status, Message: message}
}

type errorSource struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Success     bool          `json:"success"`
	Message     string        `json:"message"`
	ErrorSource []errorSource `json:"errorSource"`
	ErrorStack  string        `json:"errorStack"`
}

type mappedError struct {
	err     error
	status  int
	message string
}

// sentinelErrors traduce los errores de dominio a la taxonomía HTTP.
var sentinelErrors = []mappedError{
	{service.ErrUserNotFound, http.StatusNotFound, "User not found"},
	{service.ErrInvalidEmail, http.StatusBadRequest, "Invalid email"},
	{service.ErrInvalidPassword, http.StatusUnauthorized, "Incorrect password"},
	{service.ErrEmailTaken, http.StatusBadRequest, "This email already exists"},
	{service.ErrOTPNotRequested, http.StatusBadRequest, "OTP not found or already verified"},
	{service.ErrOTPInvalid, http.StatusBadRequest, "Invalid OTP"},
	{service.ErrOTPExpired, http.StatusBadRequest, "OTP has expired"},
	{service.ErrResetTokenInvalid, http.StatusBadRequest, "Invalid or expired token"},
	{service.ErrResetTokenExpired, http.StatusBadRequest, "Token has expired"},
	{service.ErrEmailSendFailure, http.StatusServiceUnavailable, "Email delivery unavailable"},
	{service.ErrRateLimited, http.StatusTooManyRequests, "Too many requests, please try again later"},
	{service.ErrServiceRequestNotFound, http.StatusNotFound, "Service request not found"},
	{service.ErrInvalidRequestType, http.StatusBadRequest, "Invalid request type"},
	{service.ErrInvalidStatus, http.StatusBadRequest, "Invalid service request status"},
	{service.ErrTooManyImages, http.StatusBadRequest, "You can upload at most 5 images"},
	{service.ErrInvalidDate, http.StatusBadRequest, "Invalid date format"},
	{service.ErrInvalidSlot, http.StatusBadRequest, "Invalid date or time format"},
	{service.ErrSlotTaken, http.StatusConflict, "This slot is already booked"},
	{service.ErrInvalidMinutes, http.StatusBadRequest, "Total minutes must be greater than zero"},
	{service.ErrMessageRequired, http.StatusBadRequest, "Message is required"},
	{service.ErrJWTInvalid, http.StatusUnauthorized, "Unauthorize Access"},
	{service.ErrJWTExpired, http.StatusUnauthorized, "Unauthorize Access"},
	{storage.ErrDisabled, http.StatusServiceUnavailable, "File uploads are not configured"},
}

// errorMiddleware convierte el último error registrado con c.Error en el sobre de error.
func errorMiddleware(logger *zap.Logger, production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, message, sources := classifyError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.Int("status", status),
			)
		}

		body := errorEnvelope{
			Success:     false,
			Message:     message,
			ErrorSource: sources,
		}
		if !production {
			body.ErrorStack = fmt.Sprintf("%+v", err)
		}
		c.JSON(status, body)
	}
}

func classifyError(err error) (int, string, []errorSource) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status, apiErr.Message, []errorSource{{Path: "", Message: apiErr.Message}}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		sources := make([]errorSource, 0, len(verrs))
		for _, fe := range verrs {
			sources = append(sources, errorSource{Path: fe.Field(), Message: validationMessage(fe)})
		}
		return http.StatusBadRequest, "Validation error", sources
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest, "Invalid request body", []errorSource{{Path: "", Message: "malformed JSON body"}}
	case errors.As(err, &typeErr):
		msg := fmt.Sprintf("expected %s", typeErr.Type)
		return http.StatusBadRequest, "Validation error", []errorSource{{Path: typeErr.Field, Message: msg}}
	}

	for _, m := range sentinelErrors {
		if errors.Is(err, m.err) {
			return m.status, m.message, []errorSource{{Path: "", Message: m.message}}
		}
	}

	if db.IsUniqueViolation(err) || db.IsExclusionViolation(err) {
		return http.StatusConflict, "Duplicate entry error", []errorSource{{Path: "", Message: "resource already exists"}}
	}

	return http.StatusInternalServerError, genericErrorMessage, []errorSource{{Path: "", Message: genericErrorMessage}}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must match %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
	}
}

var registerTagNames sync.Once

// useJSONFieldNames hace que los errores de validación usen el nombre JSON del campo.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	})
}
