package process_payment_notification

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	transactionRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/transaction"
	"github.com/m04kA/SMC-CourtBookingService/pkg/mq"
)

// EventPaymentPrefix префикс типа события после применения уведомления: payment.<status>
const EventPaymentPrefix = "payment."

// UseCase use case синхронизации состояния бронирований по уведомлению шлюза
type UseCase struct {
	verifier      SignatureVerifier
	txRepo        TransactionRepository
	recurringRepo RecurringRepository
	bookingRepo   BookingRepository
	slots         SlotSynchronizer
	publisher     EventPublisher
	txManager     TransactionManager
	metrics       MetricsRecorder
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	verifier SignatureVerifier,
	txRepo TransactionRepository,
	recurringRepo RecurringRepository,
	bookingRepo BookingRepository,
	slots SlotSynchronizer,
	publisher EventPublisher,
	txManager TransactionManager,
	metrics MetricsRecorder,
	logger Logger,
) *UseCase {
	return &UseCase{
		verifier:      verifier,
		txRepo:        txRepo,
		recurringRepo: recurringRepo,
		bookingRepo:   bookingRepo,
		slots:         slots,
		publisher:     publisher,
		txManager:     txManager,
		metrics:       metrics,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// Execute проверяет подпись и применяет переход статуса к платежной записи,
// бронированию или серии со всеми бронированиями и их слотам одной транзакцией.
// Повторное уведомление с тем же статусом приводит к тому же состоянию
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty notification", ErrInvalidInput)
	}

	if err := uc.verifier.Verify(req.OrderID, req.StatusCode, req.GrossAmount, req.SignatureKey); err != nil {
		uc.logger.Warn("ProcessPaymentNotification: invalid signature for order_id=%s", req.OrderID)
		uc.metrics.ObservePaymentNotification(req.TransactionStatus, "invalid_signature")
		return nil, ErrInvalidSignature
	}

	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ProcessPaymentNotification: validation failed: %v", err)
		uc.metrics.ObservePaymentNotification(req.TransactionStatus, "validation")
		return nil, err
	}

	event, err := domain.ParsePaymentEvent(req.TransactionStatus)
	if err != nil {
		uc.logger.Warn("ProcessPaymentNotification: order_id=%s rejected: %v", req.OrderID, err)
		uc.metrics.ObservePaymentNotification("unknown", "unknown_status")
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, req.TransactionStatus)
	}

	uc.logger.Info("ProcessPaymentNotification: order_id=%s, status=%s, payment_type=%s",
		req.OrderID, event.Status, req.PaymentType)

	var (
		resp   *Response
		record *domain.Transaction
		userID int64
	)

	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 1. Платежная запись под блокировкой
		tx, err := uc.txRepo.GetByOrderID(txCtx, req.OrderID)
		if err != nil {
			if errors.Is(err, transactionRepo.ErrTransactionNotFound) {
				uc.logger.Warn("ProcessPaymentNotification: order_id=%s not found", req.OrderID)
				return ErrTransactionNotFound
			}
			return fmt.Errorf("%w: get transaction: %v", ErrInternal, err)
		}
		record = tx

		uc.checkGrossAmount(tx, req.GrossAmount)

		// 2. Статус платежной записи и способ оплаты
		var paymentMethod *string
		if pt := strings.TrimSpace(req.PaymentType); pt != "" {
			paymentMethod = &pt
		}
		if err := uc.txRepo.UpdateStatus(txCtx, tx.ID, event.Status, paymentMethod); err != nil {
			return fmt.Errorf("%w: update transaction: %v", ErrInternal, err)
		}

		resp = &Response{
			OrderID:            tx.OrderID,
			TransactionStatus:  event.Status,
			BookingStatus:      event.BookingStatus(),
			BookingID:          tx.BookingID,
			RecurringBookingID: tx.RecurringBookingID,
		}

		// 3. Бронирования, к которым относится платеж
		bookings, displaced, owner, err := uc.applyBookingStatus(txCtx, tx, event.BookingStatus())
		if err != nil {
			return err
		}
		userID = owner
		resp.BookingsUpdated = len(bookings)
		for _, b := range displaced {
			resp.DisplacedBookingIDs = append(resp.DisplacedBookingIDs, b.ID)
		}

		// 4. Слоты
		switch event.SlotAction() {
		case domain.SlotClaim:
			claimed, err := uc.slots.ClaimForSettlement(txCtx, bookings)
			if err != nil {
				return fmt.Errorf("%w: claim slots: %v", ErrInternal, err)
			}
			resp.SlotsClaimed = claimed
		case domain.SlotRelease:
			released, err := uc.slots.Release(txCtx, bookings)
			if err != nil {
				return fmt.Errorf("%w: release slots: %v", ErrInternal, err)
			}
			resp.SlotsReleased = released
		}

		return nil
	})

	if err != nil {
		outcome := "error"
		switch {
		case errors.Is(err, ErrTransactionNotFound):
			outcome = "not_found"
		default:
			uc.logger.Error("ProcessPaymentNotification: order_id=%s failed: %v", req.OrderID, err)
			if !errors.Is(err, ErrInternal) {
				err = fmt.Errorf("%w: %v", ErrInternal, err)
			}
		}
		uc.metrics.ObservePaymentNotification(string(event.Status), outcome)
		return nil, err
	}

	outcome := "success"
	if len(resp.DisplacedBookingIDs) > 0 {
		outcome = "displaced"
		uc.logger.Warn("ProcessPaymentNotification: order_id=%s applied, bookings %v lost their slots", resp.OrderID, resp.DisplacedBookingIDs)
	}
	uc.metrics.ObservePaymentNotification(string(event.Status), outcome)
	uc.logger.Info("ProcessPaymentNotification: order_id=%s applied, bookings=%d -> %s, slots claimed=%d, released=%d",
		resp.OrderID, resp.BookingsUpdated, resp.BookingStatus, resp.SlotsClaimed, resp.SlotsReleased)

	uc.publishApplied(ctx, resp, record, userID, req.PaymentType)

	return resp, nil
}

// applyBookingStatus переводит серию и все ее бронирования или одиночное бронирование в статус.
// Возвращает бронирования, получившие статус, вытесненные бронирования и владельца
func (uc *UseCase) applyBookingStatus(ctx context.Context, tx *domain.Transaction, status domain.PaymentStatus) ([]*domain.Booking, []*domain.Booking, int64, error) {
	if tx.IsForSeries() {
		seriesID := *tx.RecurringBookingID

		series, err := uc.recurringRepo.GetByID(ctx, seriesID)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("%w: get series id=%d: %v", ErrInternal, seriesID, err)
		}
		if err := uc.recurringRepo.UpdatePaymentStatus(ctx, seriesID, status); err != nil {
			return nil, nil, 0, fmt.Errorf("%w: update series id=%d: %v", ErrInternal, seriesID, err)
		}

		bookings, err := uc.bookingRepo.GetByRecurringBookingID(ctx, seriesID)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("%w: get series bookings: %v", ErrInternal, err)
		}

		if !status.IsActive() || allActive(bookings) {
			if _, err := uc.bookingRepo.UpdatePaymentStatusByRecurringID(ctx, seriesID, status); err != nil {
				return nil, nil, 0, fmt.Errorf("%w: update series bookings: %v", ErrInternal, err)
			}
			for _, b := range bookings {
				b.PaymentStatus = status
			}
			return bookings, nil, series.UserID, nil
		}

		applied, displaced, err := uc.reactivate(ctx, bookings, status)
		if err != nil {
			return nil, nil, 0, err
		}
		return applied, displaced, series.UserID, nil
	}

	if tx.BookingID == nil {
		return nil, nil, 0, fmt.Errorf("%w: transaction id=%d references nothing", ErrInternal, tx.ID)
	}
	bookingID := *tx.BookingID

	booking, err := uc.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%w: get booking id=%d: %v", ErrInternal, bookingID, err)
	}

	applied, displaced, err := uc.reactivate(ctx, []*domain.Booking{booking}, status)
	if err != nil {
		return nil, nil, 0, err
	}
	return applied, displaced, booking.UserID, nil
}

// reactivate применяет статус к каждому бронированию отдельно.
// Неактивное бронирование не возвращается в активный статус, если его слот уже занят
// другим активным бронированием: оно остается в прежнем статусе и попадает в displaced
func (uc *UseCase) reactivate(ctx context.Context, bookings []*domain.Booking, status domain.PaymentStatus) ([]*domain.Booking, []*domain.Booking, error) {
	applied := make([]*domain.Booking, 0, len(bookings))
	var displaced []*domain.Booking

	for _, b := range bookings {
		if status.IsActive() && !b.IsActive() {
			holder, err := uc.bookingRepo.FindFirstActiveConflict(ctx, b.CourtID, b.StartTime, b.EndTime,
				[]domain.DayWindow{domain.DayWindowOf(b.Date)})
			if err != nil {
				return nil, nil, fmt.Errorf("%w: check slot of booking id=%d: %v", ErrInternal, b.ID, err)
			}
			if holder != nil {
				uc.logger.Warn("ProcessPaymentNotification: booking=%d on %s %s stays %s, slot is held by booking=%d, refund required",
					b.ID, b.Date.Format(domain.DateFormat), b.StartTime, b.PaymentStatus, holder.ID)
				displaced = append(displaced, b)
				continue
			}
		}

		if b.PaymentStatus != status {
			if err := uc.bookingRepo.UpdatePaymentStatus(ctx, b.ID, status); err != nil {
				return nil, nil, fmt.Errorf("%w: update booking id=%d: %v", ErrInternal, b.ID, err)
			}
			b.PaymentStatus = status
		}
		applied = append(applied, b)
	}

	return applied, displaced, nil
}

func allActive(bookings []*domain.Booking) bool {
	for _, b := range bookings {
		if !b.IsActive() {
			return false
		}
	}
	return true
}

// checkGrossAmount сверяет сумму уведомления с суммой платежной записи
// Расхождение только логируется: подпись уже подтвердила подлинность
func (uc *UseCase) checkGrossAmount(tx *domain.Transaction, grossAmount string) {
	if grossAmount == "" {
		return
	}
	amount, err := strconv.ParseFloat(grossAmount, 64)
	if err != nil {
		uc.logger.Warn("ProcessPaymentNotification: order_id=%s has unparsable gross_amount=%q", tx.OrderID, grossAmount)
		return
	}
	if int64(math.Round(amount)) != tx.Amount {
		uc.logger.Warn("ProcessPaymentNotification: order_id=%s gross_amount=%s differs from stored amount=%d",
			tx.OrderID, grossAmount, tx.Amount)
	}
}

func (uc *UseCase) publishApplied(ctx context.Context, resp *Response, record *domain.Transaction, userID int64, paymentType string) {
	event, err := mq.NewEvent(EventPaymentPrefix+string(resp.TransactionStatus), paymentEvent{
		OrderID:             resp.OrderID,
		TransactionStatus:   string(resp.TransactionStatus),
		BookingStatus:       string(resp.BookingStatus),
		BookingID:           resp.BookingID,
		RecurringBookingID:  resp.RecurringBookingID,
		DisplacedBookingIDs: resp.DisplacedBookingIDs,
		UserID:              userID,
		Amount:              record.Amount,
		PaymentType:         paymentType,
		ProcessedAt:         uc.timeProvider.Now().UTC(),
	}, uc.timeProvider.Now())
	if err != nil {
		uc.logger.Error("ProcessPaymentNotification: build event: %v", err)
		return
	}

	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Warn("ProcessPaymentNotification: failed to publish %s for order_id=%s: %v", event.Type, resp.OrderID, err)
	}
}
