package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTransactionStatus статус уведомления не входит в известный набор
var ErrUnknownTransactionStatus = errors.New("domain: unknown transaction status")

// PaymentEventKind вид перехода, который вызывает уведомление шлюза
type PaymentEventKind int

const (
	PaymentEventUnknown PaymentEventKind = iota
	PaymentEventSettlement
	PaymentEventPending
	PaymentEventRelease
)

func (k PaymentEventKind) String() string {
	switch k {
	case PaymentEventSettlement:
		return "settlement"
	case PaymentEventPending:
		return "pending"
	case PaymentEventRelease:
		return "release"
	default:
		return "unknown"
	}
}

// SlotAction что делать со слотами бронирований при переходе
type SlotAction int

const (
	SlotKeep SlotAction = iota
	SlotClaim
	SlotRelease
)

// PaymentEvent разобранный статус уведомления
//
//	settlement                    -> бронирования paid, слоты заняты
//	pending                       -> бронирования pending, слоты не трогаем
//	expire | cancel | deny | failure -> бронирования canceled, слоты освобождаются
//
// Любой другой статус дает ErrUnknownTransactionStatus
type PaymentEvent struct {
	Kind   PaymentEventKind
	Status TransactionStatus
}

// ParsePaymentEvent разбирает transaction_status из уведомления
func ParsePaymentEvent(raw string) (PaymentEvent, error) {
	status := TransactionStatus(strings.TrimSpace(raw))

	switch status {
	case TransactionSettlement:
		return PaymentEvent{Kind: PaymentEventSettlement, Status: status}, nil
	case TransactionPending:
		return PaymentEvent{Kind: PaymentEventPending, Status: status}, nil
	case TransactionExpire, TransactionCancel, TransactionDeny, TransactionFailure:
		return PaymentEvent{Kind: PaymentEventRelease, Status: status}, nil
	default:
		return PaymentEvent{Kind: PaymentEventUnknown, Status: status},
			fmt.Errorf("%w: %q", ErrUnknownTransactionStatus, raw)
	}
}

// BookingStatus статус, в который переводятся бронирования и серия
func (e PaymentEvent) BookingStatus() PaymentStatus {
	switch e.Kind {
	case PaymentEventSettlement:
		return PaymentPaid
	case PaymentEventRelease:
		return PaymentCanceled
	default:
		return PaymentPending
	}
}

// SlotAction действие над слотами для перехода
func (e PaymentEvent) SlotAction() SlotAction {
	switch e.Kind {
	case PaymentEventSettlement:
		return SlotClaim
	case PaymentEventRelease:
		return SlotRelease
	default:
		return SlotKeep
	}
}
