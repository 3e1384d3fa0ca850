package availability

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

var (
	// ErrSlotConflict слот уже занят активным бронированием
	ErrSlotConflict = errors.New("availability: slot already booked")

	// ErrInternal ошибка хранилища при проверке
	ErrInternal = errors.New("availability: internal error")
)

// ConflictError конфликт с указанием первой занятой даты
type ConflictError struct {
	Date      time.Time
	BookingID int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot on %s is already booked", e.Date.Format(domain.DateFormat))
}

func (e *ConflictError) Unwrap() error {
	return ErrSlotConflict
}
