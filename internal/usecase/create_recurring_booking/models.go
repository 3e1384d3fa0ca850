package create_recurring_booking

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// Options параметры из конфигурации
type Options struct {
	BaseTimeout          time.Duration
	PerOccurrenceTimeout time.Duration
	SlotDurationMinutes  int
	MaxOccurrences       int
}

// Request модель запроса на создание серии
type Request struct {
	UserID    int64
	CourtID   int64
	DayOfWeek int // 1=понедельник .. 7=воскресенье
	StartDate time.Time
	EndDate   time.Time
	TimeSlot  types.TimeString
}

// Response созданная серия, ее бронирования и платежная запись
type Response struct {
	Series        *domain.RecurringBooking
	Occurrences   []*domain.Booking
	Payment       *domain.Transaction
	Quote         domain.PriceQuote
	TotalPrice    int64
	TotalSessions int
}

// createdEvent payload события reservation.created
type createdEvent struct {
	RecurringBookingID int64     `json:"recurringBookingId"`
	UserID             int64     `json:"userId"`
	CourtID            int64     `json:"courtId"`
	Dates              []string  `json:"dates"`
	TimeSlot           string    `json:"timeSlot"`
	TotalAmount        int64     `json:"totalAmount"`
	OrderID            string    `json:"orderId"`
	CreatedAt          time.Time `json:"createdAt"`
}
