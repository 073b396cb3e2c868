package domain

import "time"

type Booking struct {
	ID               int64     `json:"id" db:"id"`
	StartTime        time.Time `json:"startTime" db:"start_time"`
	EndTime          time.Time `json:"endTime" db:"end_time"`
	UserID           string    `json:"userId" db:"user_id"`
	ServiceRequestID int64     `json:"serviceRequestId" db:"service_request_id"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
}

// Interval es un rango semiabierto [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps aplica el test de solapamiento semiabierto: tocarse en un borde no cuenta.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

// Slot es un turno de la grilla diaria en formato HH:MM.
type Slot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}
