package service

import (
	"context"
	"time"

	"support-desk/internal/domain"
	"support-desk/internal/repository"
)

// Horario de atención en minutos desde la medianoche local; el último turno termina a las 17:30.
const (
	slotMinutes        = 30
	windowStartMinutes = 8 * 60
	windowEndMinutes   = 17*60 + 30

	slotLength = slotMinutes * time.Minute

	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// GenerateSlotIntervals devuelve los 19 turnos de 30 minutos entre 08:00 y 17:30
// para el día indicado, en orden cronológico. Cada borde se arma con hora de reloj
// local, así los días con cambio de horario conservan la misma grilla.
func GenerateSlotIntervals(day time.Time) []domain.Interval {
	wall := func(minutes int) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, day.Location())
	}

	slots := make([]domain.Interval, 0, (windowEndMinutes-windowStartMinutes)/slotMinutes)
	for m := windowStartMinutes; m < windowEndMinutes; m += slotMinutes {
		slots = append(slots, domain.Interval{Start: wall(m), End: wall(m + slotMinutes)})
	}
	return slots
}

// GenerateSlots es la grilla del día en formato HH:MM.
func GenerateSlots(day time.Time) []domain.Slot {
	return toSlots(GenerateSlotIntervals(day))
}

// FilterAvailable conserva los turnos que no se solapan con ninguna reserva.
func FilterAvailable(slots []domain.Interval, booked []domain.Interval) []domain.Interval {
	free := make([]domain.Interval, 0, len(slots))
	for _, slot := range slots {
		taken := false
		for _, b := range booked {
			if slot.Overlaps(b) {
				taken = true
				break
			}
		}
		if !taken {
			free = append(free, slot)
		}
	}
	return free
}

// AvailabilityService calcula los turnos libres de un ticket para una fecha.
type AvailabilityService struct {
	bookings repository.BookingRepository
	loc      *time.Location
}

func NewAvailabilityService(bookings repository.BookingRepository, loc *time.Location) *AvailabilityService {
	if loc == nil {
		loc = time.UTC
	}
	return &AvailabilityService{bookings: bookings, loc: loc}
}

// ParseDate interpreta YYYY-MM-DD en la zona horaria de la grilla.
func (s *AvailabilityService) ParseDate(date string) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, date, s.loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return day, nil
}

func (s *AvailabilityService) AvailableSlots(ctx context.Context, serviceRequestID int64, date string) ([]domain.Slot, error) {
	day, err := s.ParseDate(date)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookings.ListStartingBetween(ctx, serviceRequestID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	booked := make([]domain.Interval, 0, len(bookings))
	for _, b := range bookings {
		booked = append(booked, domain.Interval{Start: b.StartTime, End: b.EndTime})
	}

	return toSlots(FilterAvailable(GenerateSlotIntervals(day), booked)), nil
}

func toSlots(intervals []domain.Interval) []domain.Slot {
	slots := make([]domain.Slot, 0, len(intervals))
	for _, iv := range intervals {
		slots = append(slots, domain.Slot{
			StartTime: iv.Start.Format(clockLayout),
			EndTime:   iv.End.Format(clockLayout),
		})
	}
	return slots
}
