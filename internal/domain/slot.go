package domain

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// DayType тип дня для тарификации
type DayType string

const (
	DayTypeWeekday DayType = "weekday"
	DayTypeWeekend DayType = "weekend"
)

// DayTypeOf возвращает тип дня для даты
func DayTypeOf(date time.Time) DayType {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return DayTypeWeekend
	default:
		return DayTypeWeekday
	}
}

// Schedule слот расписания корта: (корт, дата, время) с ценой и флагом доступности
// Available=false всегда соответствует ровно одному активному бронированию в BookingID
type Schedule struct {
	ID        int64
	CourtID   int64
	Date      time.Time
	TimeSlot  types.TimeString
	Price     int64
	DayType   DayType
	Available bool
	BookingID *int64
}

// IsHeldBy returns true if the slot is held by the given booking
func (s *Schedule) IsHeldBy(bookingID int64) bool {
	return !s.Available && s.BookingID != nil && *s.BookingID == bookingID
}
