package domain

import "time"

type ServiceRequestStatus string

const (
	StatusPending    ServiceRequestStatus = "pending"
	StatusInProgress ServiceRequestStatus = "in_progress"
	StatusFulfilled  ServiceRequestStatus = "fulfilled"
	StatusCancelled  ServiceRequestStatus = "cancelled"
)

func (s ServiceRequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusFulfilled, StatusCancelled:
		return true
	}
	return false
}

type RequestType struct {
	ID   int64  `json:"id" db:"id"`
	Type string `json:"type" db:"type"`
}

// ServiceRequest es un ticket de soporte.
type ServiceRequest struct {
	ID            int64                `json:"id" db:"id"`
	Name          string               `json:"name" db:"name"`
	Email         string               `json:"email" db:"email"`
	Subject       string               `json:"subject" db:"subject"`
	Message       string               `json:"message" db:"message"`
	RequestTypeID int64                `json:"requestTypeId" db:"request_type_id"`
	Status        ServiceRequestStatus `json:"status" db:"status"`
	Images        []string             `json:"images" db:"images"`
	UserID        string               `json:"userId" db:"user_id"`
	CreatedAt     time.Time            `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time            `json:"updatedAt" db:"updated_at"`
}

// AdditionalInformation es una nota agregada a un ticket.
type AdditionalInformation struct {
	ID               int64     `json:"id" db:"id"`
	Message          string    `json:"message" db:"message"`
	UserID           string    `json:"userId" db:"user_id"`
	ServiceRequestID int64     `json:"serviceRequestId" db:"service_request_id"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
}

// SpentTime registra minutos trabajados sobre un ticket.
type SpentTime struct {
	ID               int64     `json:"id" db:"id"`
	TimeSpent        int       `json:"timeSpent" db:"time_spent"`
	UserID           string    `json:"userId" db:"user_id"`
	ServiceRequestID int64     `json:"serviceRequestId" db:"service_request_id"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
}
