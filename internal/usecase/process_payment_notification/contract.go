package process_payment_notification

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/mq"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// SignatureVerifier проверка подписи уведомления
type SignatureVerifier interface {
	Verify(orderID, statusCode, grossAmount, signature string) error
}

// TransactionRepository интерфейс репозитория платежных записей
type TransactionRepository interface {
	GetByOrderID(ctx context.Context, orderID string) (*domain.Transaction, error)
	UpdateStatus(ctx context.Context, id int64, status domain.TransactionStatus, paymentMethod *string) error
}

// RecurringRepository интерфейс репозитория серий
type RecurringRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.RecurringBooking, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByRecurringBookingID(ctx context.Context, recurringID int64) ([]*domain.Booking, error)
	UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error
	UpdatePaymentStatusByRecurringID(ctx context.Context, recurringID int64, status domain.PaymentStatus) (int64, error)
	FindFirstActiveConflict(ctx context.Context, courtID int64, startTime, endTime types.TimeString, windows []domain.DayWindow) (*domain.Booking, error)
}

// SlotSynchronizer занятие и освобождение слотов бронирований
type SlotSynchronizer interface {
	ClaimForSettlement(ctx context.Context, bookings []*domain.Booking) (int, error)
	Release(ctx context.Context, bookings []*domain.Booking) (int64, error)
}

// EventPublisher публикация доменных событий
type EventPublisher interface {
	Publish(ctx context.Context, event *mq.Event) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder счетчик исходов обработки уведомлений
type MetricsRecorder interface {
	ObservePaymentNotification(status, outcome string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
