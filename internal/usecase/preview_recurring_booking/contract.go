package preview_recurring_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// CourtRepository интерфейс репозитория кортов
type CourtRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Court, error)
}

// ScheduleRepository интерфейс репозитория расписания
type ScheduleRepository interface {
	GetTemplate(ctx context.Context, courtID int64, timeSlot types.TimeString) (*domain.Schedule, error)
}

// DiscountProvider действующая таблица скидок
type DiscountProvider interface {
	GetDiscountTable(ctx context.Context) (*domain.DiscountTable, error)
}

// Cache кэш результатов предпросмотра
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
