package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/booking"
	courtRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/court"
	"github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/pgerrors"
	scheduleRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/availability"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/payments"
	"github.com/m04kA/SMC-CourtBookingService/pkg/mq"
)

const (
	// EventBookingCreated тип события после фиксации бронирования
	EventBookingCreated = "booking.created"

	metricsKind = "single"
)

// UseCase use case для создания бронирования на одну дату
type UseCase struct {
	bookingRepo  BookingRepository
	courtRepo    CourtRepository
	scheduleRepo ScheduleRepository
	checker      AvailabilityChecker
	slots        SlotClaimer
	payments     PaymentInitiator
	publisher    EventPublisher
	txManager    TransactionManager
	metrics      MetricsRecorder
	timeProvider TimeProvider
	opts         Options
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	courtRepo CourtRepository,
	scheduleRepo ScheduleRepository,
	checker AvailabilityChecker,
	slots SlotClaimer,
	paymentInitiator PaymentInitiator,
	publisher EventPublisher,
	txManager TransactionManager,
	metrics MetricsRecorder,
	opts Options,
	logger Logger,
) *UseCase {
	if opts.SlotDurationMinutes <= 0 {
		opts.SlotDurationMinutes = domain.DefaultSlotDurationMinutes
	}

	return &UseCase{
		bookingRepo:  bookingRepo,
		courtRepo:    courtRepo,
		scheduleRepo: scheduleRepo,
		checker:      checker,
		slots:        slots,
		payments:     paymentInitiator,
		publisher:    publisher,
		txManager:    txManager,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		opts:         opts,
		logger:       logger,
	}
}

// Execute выполняет use case создания бронирования
// Использует сериализуемую транзакцию и тот же контракт занятия слота, что и серия
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		uc.metrics.ObserveReservation(metricsKind, "validation")
		return nil, err
	}

	uc.logger.Info("CreateBooking: user=%d, court=%d, date=%s, time=%s",
		req.UserID, req.CourtID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 2. Дата и время относительно текущего момента
	if err := validateDate(req.Date, req.StartTime, uc.timeProvider.Now()); err != nil {
		uc.logger.Warn("CreateBooking: date validation failed: %v", err)
		uc.metrics.ObserveReservation(metricsKind, "validation")
		return nil, err
	}

	endTime, err := req.StartTime.AddMinutes(uc.opts.SlotDurationMinutes)
	if err != nil {
		uc.metrics.ObserveReservation(metricsKind, "validation")
		return nil, fmt.Errorf("%w: startTime: %v", ErrInvalidInput, err)
	}

	if uc.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.opts.Timeout)
		defer cancel()
	}

	date := domain.NormalizeDate(req.Date)

	var resp *Response

	// 3. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Корт существует и не удален
		court, err := uc.courtRepo.GetByID(txCtx, req.CourtID)
		if err != nil {
			if errors.Is(err, courtRepo.ErrCourtNotFound) {
				uc.logger.Warn("CreateBooking: court id=%d not found", req.CourtID)
				return ErrCourtNotFound
			}
			return fmt.Errorf("%w: get court: %w", ErrInternal, err)
		}
		if court.IsDeleted() {
			uc.logger.Warn("CreateBooking: court id=%d is deleted", req.CourtID)
			return ErrCourtNotFound
		}

		// 3.2. Слот на дату задает цену и должен быть свободен
		slot, err := uc.scheduleRepo.GetSlot(txCtx, req.CourtID, date, req.StartTime)
		if err != nil {
			if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
				uc.logger.Warn("CreateBooking: no slot for court=%d, date=%s, time=%s",
					req.CourtID, date.Format(domain.DateFormat), req.StartTime)
				return ErrSlotNotFound
			}
			return fmt.Errorf("%w: get slot: %w", ErrInternal, err)
		}
		if !slot.Available {
			conflict := &availability.ConflictError{Date: date}
			if slot.BookingID != nil {
				conflict.BookingID = *slot.BookingID
			}
			uc.logger.Warn("CreateBooking: %v", conflict)
			return fmt.Errorf("%w: %w", ErrSlotConflict, conflict)
		}

		// 3.3. Пересечения с активными бронированиями
		if err := uc.checker.EnsureAvailable(txCtx, req.CourtID, req.StartTime, endTime, []time.Time{date}); err != nil {
			return uc.mapSlotError("conflict check", err)
		}

		// 3.4. Сохраняем бронирование
		created, err := uc.bookingRepo.Create(txCtx, &domain.Booking{
			UserID:          req.UserID,
			CourtID:         req.CourtID,
			Date:            date,
			StartTime:       req.StartTime,
			EndTime:         endTime,
			DurationMinutes: uc.opts.SlotDurationMinutes,
			Amount:          slot.Price,
			PaymentStatus:   domain.PaymentPending,
		})
		if err != nil {
			if errors.Is(err, bookingRepo.ErrSlotAlreadyBooked) {
				uc.logger.Warn("CreateBooking: concurrent booking detected by unique index: %v", err)
				return fmt.Errorf("%w: %v", ErrSlotConflict, err)
			}
			return fmt.Errorf("%w: create booking: %w", ErrInternal, err)
		}

		// 3.5. Условное занятие слота
		if err := uc.slots.ClaimAll(txCtx, []*domain.Booking{created}); err != nil {
			return uc.mapSlotError("claim slot", err)
		}

		// 3.6. Платеж на бронирование
		payment, err := uc.payments.Initiate(txCtx, payments.Target{
			BookingID: &created.ID,
			Amount:    created.Amount,
			ItemName:  fmt.Sprintf("Court %d %s %s", req.CourtID, date.Format(domain.DateFormat), req.StartTime),
		})
		if err != nil {
			return fmt.Errorf("%w: initiate payment: %w", ErrInternal, err)
		}

		resp = &Response{Booking: created, Payment: payment}
		return nil
	})

	if err != nil {
		outcome, mapped := uc.mapTxError(err)
		uc.metrics.ObserveReservation(metricsKind, outcome)
		if outcome == "error" {
			uc.logger.Error("CreateBooking: user=%d, court=%d failed: %v", req.UserID, req.CourtID, err)
		}
		return nil, mapped
	}

	uc.metrics.ObserveReservation(metricsKind, "success")
	uc.logger.Info("CreateBooking: successfully created booking id=%d, order_id=%s", resp.Booking.ID, resp.Payment.OrderID)

	uc.publishCreated(ctx, resp)

	return resp, nil
}

func (uc *UseCase) mapSlotError(step string, err error) error {
	var conflict *availability.ConflictError
	if errors.As(err, &conflict) {
		uc.logger.Warn("CreateBooking: %s: %v", step, conflict)
		return fmt.Errorf("%w: %w", ErrSlotConflict, conflict)
	}
	return fmt.Errorf("%w: %s: %w", ErrInternal, step, err)
}

func (uc *UseCase) mapTxError(err error) (string, error) {
	switch {
	case errors.Is(err, ErrCourtNotFound), errors.Is(err, ErrSlotNotFound):
		return "not_found", err
	case errors.Is(err, ErrSlotConflict):
		return "conflict", err
	case pgerrors.IsSerializationFailure(err):
		uc.logger.Warn("CreateBooking: serialization failure: %v", err)
		return "conflict", fmt.Errorf("%w: concurrent reservation for the same slot", ErrSlotConflict)
	case errors.Is(err, context.DeadlineExceeded):
		return "error", fmt.Errorf("%w: booking timed out: %w", ErrInternal, err)
	case errors.Is(err, ErrInternal):
		return "error", err
	default:
		return "error", fmt.Errorf("%w: %w", ErrInternal, err)
	}
}

func (uc *UseCase) publishCreated(ctx context.Context, resp *Response) {
	b := resp.Booking
	event, err := mq.NewEvent(EventBookingCreated, createdEvent{
		BookingID: b.ID,
		UserID:    b.UserID,
		CourtID:   b.CourtID,
		Date:      b.Date.Format(domain.DateFormat),
		StartTime: b.StartTime.String(),
		EndTime:   b.EndTime.String(),
		Amount:    b.Amount,
		OrderID:   resp.Payment.OrderID,
		CreatedAt: b.CreatedAt,
	}, uc.timeProvider.Now())
	if err != nil {
		uc.logger.Error("CreateBooking: build event: %v", err)
		return
	}

	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Warn("CreateBooking: failed to publish %s for booking id=%d: %v", event.Type, b.ID, err)
	}
}
