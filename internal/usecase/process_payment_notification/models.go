package process_payment_notification

import (
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
)

// Request уведомление платежного шлюза
type Request struct {
	OrderID           string
	StatusCode        string
	GrossAmount       string
	TransactionStatus string
	SignatureKey      string
	PaymentType       string
}

// Response результат применения уведомления
// DisplacedBookingIDs оплаченные бронирования, слот которых уже занят другим бронированием
type Response struct {
	OrderID             string
	TransactionStatus   domain.TransactionStatus
	BookingStatus       domain.PaymentStatus
	BookingID           *int64
	RecurringBookingID  *int64
	BookingsUpdated     int
	DisplacedBookingIDs []int64
	SlotsClaimed        int
	SlotsReleased       int64
}

// paymentEvent payload события payment.<status>
type paymentEvent struct {
	OrderID             string    `json:"orderId"`
	TransactionStatus   string    `json:"transactionStatus"`
	BookingStatus       string    `json:"bookingStatus"`
	BookingID           *int64    `json:"bookingId,omitempty"`
	RecurringBookingID  *int64    `json:"recurringBookingId,omitempty"`
	DisplacedBookingIDs []int64   `json:"displacedBookingIds,omitempty"`
	UserID              int64     `json:"userId"`
	Amount              int64     `json:"amount"`
	PaymentType         string    `json:"paymentType,omitempty"`
	ProcessedAt         time.Time `json:"processedAt"`
}
