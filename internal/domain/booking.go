package domain

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// PaymentStatus статус оплаты бронирования или серии
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentCanceled PaymentStatus = "canceled"
	PaymentRefunded PaymentStatus = "refunded"
)

// IsValid проверяет, что статус входит в допустимый набор
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentCanceled, PaymentRefunded:
		return true
	}
	return false
}

// IsActive активное бронирование удерживает слот
func (s PaymentStatus) IsActive() bool {
	return s == PaymentPending || s == PaymentPaid
}

// Booking одно бронирование корта на конкретную дату
type Booking struct {
	ID                 int64
	UserID             int64
	CourtID            int64
	Date               time.Time // календарный день, 00:00 UTC
	StartTime          types.TimeString
	EndTime            types.TimeString
	DurationMinutes    int
	Amount             int64 // цена одной сессии до скидки
	PaymentStatus      PaymentStatus
	RecurringBookingID *int64
	RescheduleCount    int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking holds its slot
func (b *Booking) IsActive() bool {
	return b.PaymentStatus.IsActive()
}

// IsRecurring returns true if the booking belongs to a recurring series
func (b *Booking) IsRecurring() bool {
	return b.RecurringBookingID != nil
}

// CourtBookingsFilter фильтр для получения бронирований корта
type CourtBookingsFilter struct {
	CourtID         int64          // Обязательный параметр
	StartDate       *time.Time     // Начало периода (включительно)
	EndDate         *time.Time     // Конец периода (включительно)
	Status          *PaymentStatus // Фильтр по статусу
	IncludeInactive bool           // Включать отмененные и возвращенные
}
