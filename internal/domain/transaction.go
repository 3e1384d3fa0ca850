package domain

import (
	"errors"
	"time"
)

// ErrInvalidTransactionReference транзакция должна ссылаться ровно на одно: бронирование или серию
var ErrInvalidTransactionReference = errors.New("domain: transaction must reference exactly one of booking or recurring booking")

// TransactionStatus статус платежа на стороне платежного шлюза
type TransactionStatus string

const (
	TransactionPending    TransactionStatus = "pending"
	TransactionSettlement TransactionStatus = "settlement"
	TransactionExpire     TransactionStatus = "expire"
	TransactionCancel     TransactionStatus = "cancel"
	TransactionDeny       TransactionStatus = "deny"
	TransactionFailure    TransactionStatus = "failure"
)

// Transaction платежная запись для одного бронирования или для серии
type Transaction struct {
	ID                 int64
	BookingID          *int64
	RecurringBookingID *int64
	OrderID            string
	Amount             int64
	PaymentStatus      TransactionStatus
	PaymentMethod      *string
	SnapToken          string
	SnapURL            string
	ExpiryTime         *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate проверяет инвариант ссылки
func (t *Transaction) Validate() error {
	if (t.BookingID == nil) == (t.RecurringBookingID == nil) {
		return ErrInvalidTransactionReference
	}
	return nil
}

// IsForSeries returns true if the transaction pays for a recurring series
func (t *Transaction) IsForSeries() bool {
	return t.RecurringBookingID != nil
}
