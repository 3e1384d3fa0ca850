package availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// ConflictFinder ищет активное бронирование, пересекающееся с интервалом в любом из дней
type ConflictFinder interface {
	FindFirstActiveConflict(ctx context.Context, courtID int64, startTime, endTime types.TimeString, windows []domain.DayWindow) (*domain.Booking, error)
}

// SlotStore операции над флагом доступности слотов
type SlotStore interface {
	GetSlot(ctx context.Context, courtID int64, date time.Time, timeSlot types.TimeString) (*domain.Schedule, error)
	ClaimSlot(ctx context.Context, courtID int64, date time.Time, timeSlot types.TimeString, bookingID int64) (bool, error)
	ReleaseSlots(ctx context.Context, bookingIDs []int64) (int64, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
