package pricing

import (
	"context"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// DiscountRepository интерфейс репозитория ступеней скидок
type DiscountRepository interface {
	GetAll(ctx context.Context) ([]domain.DiscountTier, error)
	ReplaceAll(ctx context.Context, tiers []domain.DiscountTier) error
}

// AccessPolicy определяет администраторов сервиса
type AccessPolicy interface {
	IsAdmin(userID int64) bool
}

// GenerationCounter счетчик версий цен, по которому кэш предпросмотра отбрасывает устаревшие записи
type GenerationCounter interface {
	Incr(ctx context.Context, key string) (int64, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
