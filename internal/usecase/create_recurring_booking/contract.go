package create_recurring_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/payments"
	"github.com/m04kA/SMC-CourtBookingService/pkg/mq"
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

// RecurringRepository интерфейс репозитория серий
type RecurringRepository interface {
	Create(ctx context.Context, rb *domain.RecurringBooking) (*domain.RecurringBooking, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	CreateBulk(ctx context.Context, bookings []*domain.Booking) ([]*domain.Booking, error)
}

// AvailabilityChecker пакетная проверка конфликтов
type AvailabilityChecker interface {
	EnsureAvailable(ctx context.Context, courtID int64, startTime, endTime types.TimeString, dates []time.Time) error
}

// SlotClaimer условное занятие слотов
type SlotClaimer interface {
	ClaimAll(ctx context.Context, bookings []*domain.Booking) error
}

// DiscountProvider действующая таблица скидок
type DiscountProvider interface {
	GetDiscountTable(ctx context.Context) (*domain.DiscountTable, error)
}

// PaymentInitiator создание платежа в шлюзе и платежной записи
type PaymentInitiator interface {
	Initiate(ctx context.Context, target payments.Target) (*domain.Transaction, error)
}

// EventPublisher публикация доменных событий
type EventPublisher interface {
	Publish(ctx context.Context, event *mq.Event) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsRecorder счетчик исходов бронирования
type MetricsRecorder interface {
	ObserveReservation(kind, outcome string)
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
