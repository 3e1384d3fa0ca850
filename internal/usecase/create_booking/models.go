package create_booking

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// Options параметры из конфигурации
type Options struct {
	Timeout             time.Duration
	SlotDurationMinutes int
}

// Request модель запроса на создание бронирования
type Request struct {
	UserID    int64            // ID пользователя
	CourtID   int64            // ID корта
	Date      time.Time        // Дата бронирования (без времени)
	StartTime types.TimeString // Время начала слота (например, "18:00")
}

// Response созданное бронирование и платежная запись
type Response struct {
	Booking *domain.Booking
	Payment *domain.Transaction
}

// createdEvent payload события booking.created
type createdEvent struct {
	BookingID int64     `json:"bookingId"`
	UserID    int64     `json:"userId"`
	CourtID   int64     `json:"courtId"`
	Date      string    `json:"date"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Amount    int64     `json:"amount"`
	OrderID   string    `json:"orderId"`
	CreatedAt time.Time `json:"createdAt"`
}
