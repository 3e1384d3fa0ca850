package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/midtrans"
)

// Target что оплачивается: одно бронирование или серия
type Target struct {
	BookingID          *int64
	RecurringBookingID *int64
	Amount             int64
	ItemName           string
}

// Initiator создает платеж в шлюзе и платежную запись в БД
type Initiator struct {
	gateway       Gateway
	txRepo        TransactionRepository
	expiryMinutes int
	now           func() time.Time
	logger        Logger
}

// NewInitiator создает новый экземпляр Initiator
func NewInitiator(gateway Gateway, txRepo TransactionRepository, expiryMinutes int, logger Logger) *Initiator {
	return &Initiator{
		gateway:       gateway,
		txRepo:        txRepo,
		expiryMinutes: expiryMinutes,
		now:           time.Now,
		logger:        logger,
	}
}

// NewOrderID идентификатор заказа для шлюза: RB-<uuid> для серии, BK-<uuid> для бронирования
func NewOrderID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}

// Initiate вызывается последним шагом внутри транзакции бронирования.
// Платежная запись создается в статусе pending, затем создается заказ в шлюзе
func (i *Initiator) Initiate(ctx context.Context, target Target) (*domain.Transaction, error) {
	prefix := domain.OrderPrefixSingle
	itemID := ""
	switch {
	case target.BookingID != nil && target.RecurringBookingID == nil:
		itemID = fmt.Sprintf("booking-%d", *target.BookingID)
	case target.RecurringBookingID != nil && target.BookingID == nil:
		prefix = domain.OrderPrefixRecurring
		itemID = fmt.Sprintf("recurring-%d", *target.RecurringBookingID)
	default:
		return nil, ErrInvalidTarget
	}

	orderID := NewOrderID(prefix)

	snapReq := &midtrans.SnapRequest{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:     orderID,
			GrossAmount: target.Amount,
		},
		ItemDetails: []midtrans.ItemDetail{
			{ID: itemID, Price: target.Amount, Quantity: 1, Name: target.ItemName},
		},
	}

	var expiryTime *time.Time
	if i.expiryMinutes > 0 {
		snapReq.Expiry = &midtrans.Expiry{Unit: "minutes", Duration: i.expiryMinutes}
		t := i.now().Add(time.Duration(i.expiryMinutes) * time.Minute).UTC()
		expiryTime = &t
	}

	// Заказ в шлюзе создается только после сохранения записи
	record, err := i.txRepo.Create(ctx, &domain.Transaction{
		BookingID:          target.BookingID,
		RecurringBookingID: target.RecurringBookingID,
		OrderID:            orderID,
		Amount:             target.Amount,
		PaymentStatus:      domain.TransactionPending,
		ExpiryTime:         expiryTime,
	})
	if err != nil {
		i.logger.Error("Initiate: failed to store transaction order_id=%s: %v", orderID, err)
		return nil, fmt.Errorf("%w: Initiate - store transaction: %w", ErrInternal, err)
	}

	snapResp, err := i.gateway.CreateTransaction(ctx, snapReq)
	if err != nil {
		i.logger.Error("Initiate: gateway error for order_id=%s: %v", orderID, err)
		return nil, fmt.Errorf("%w: Initiate - order_id=%s: %w", ErrGateway, orderID, err)
	}

	if err := i.txRepo.SetSnapToken(ctx, record.ID, snapResp.Token, snapResp.RedirectURL); err != nil {
		i.logger.Error("Initiate: failed to store snap token order_id=%s: %v", orderID, err)
		return nil, fmt.Errorf("%w: Initiate - store snap token: %w", ErrInternal, err)
	}
	record.SnapToken = snapResp.Token
	record.SnapURL = snapResp.RedirectURL

	i.logger.Info("Initiate: payment created order_id=%s, amount=%d", orderID, target.Amount)
	return record, nil
}
