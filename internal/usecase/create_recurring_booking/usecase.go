package create_recurring_booking

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
	// EventReservationCreated тип события после фиксации серии
	EventReservationCreated = "reservation.created"

	metricsKind = "recurring"
)

// UseCase use case атомарного создания серии бронирований
type UseCase struct {
	courtRepo     CourtRepository
	scheduleRepo  ScheduleRepository
	recurringRepo RecurringRepository
	bookingRepo   BookingRepository
	checker       AvailabilityChecker
	slots         SlotClaimer
	discounts     DiscountProvider
	payments      PaymentInitiator
	publisher     EventPublisher
	txManager     TransactionManager
	metrics       MetricsRecorder
	timeProvider  TimeProvider
	opts          Options
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	courtRepo CourtRepository,
	scheduleRepo ScheduleRepository,
	recurringRepo RecurringRepository,
	bookingRepo BookingRepository,
	checker AvailabilityChecker,
	slots SlotClaimer,
	discounts DiscountProvider,
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
	if opts.MaxOccurrences <= 0 {
		opts.MaxOccurrences = domain.DefaultMaxOccurrences
	}

	return &UseCase{
		courtRepo:     courtRepo,
		scheduleRepo:  scheduleRepo,
		recurringRepo: recurringRepo,
		bookingRepo:   bookingRepo,
		checker:       checker,
		slots:         slots,
		discounts:     discounts,
		payments:      paymentInitiator,
		publisher:     publisher,
		txManager:     txManager,
		metrics:       metrics,
		timeProvider:  &RealTimeProvider{},
		opts:          opts,
		logger:        logger,
	}
}

// Execute создает серию, все ее бронирования, занимает слоты и создает платеж.
// Все шаги выполняются в одной сериализуемой транзакции: при любой ошибке ничего не сохраняется
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateRecurringBooking: validation failed: %v", err)
		uc.metrics.ObserveReservation(metricsKind, "validation")
		return nil, err
	}

	uc.logger.Info("CreateRecurringBooking: user=%d, court=%d, dayOfWeek=%d, period=%s..%s, time=%s",
		req.UserID, req.CourtID, req.DayOfWeek,
		req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat), req.TimeSlot)

	dates, err := domain.OccurrenceDates(req.DayOfWeek, req.StartDate, req.EndDate)
	if err != nil {
		uc.metrics.ObserveReservation(metricsKind, "validation")
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(dates) > uc.opts.MaxOccurrences {
		uc.logger.Warn("CreateRecurringBooking: %d occurrences exceed limit %d", len(dates), uc.opts.MaxOccurrences)
		uc.metrics.ObserveReservation(metricsKind, "validation")
		return nil, fmt.Errorf("%w: %d occurrences, limit is %d", ErrTooManyOccurrences, len(dates), uc.opts.MaxOccurrences)
	}

	endTime, err := req.TimeSlot.AddMinutes(uc.opts.SlotDurationMinutes)
	if err != nil {
		uc.metrics.ObserveReservation(metricsKind, "validation")
		return nil, fmt.Errorf("%w: timeSlot: %v", ErrInvalidInput, err)
	}

	timeout := uc.opts.BaseTimeout + time.Duration(len(dates))*uc.opts.PerOccurrenceTimeout
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var resp *Response

	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 1. Корт существует и не удален
		court, err := uc.courtRepo.GetByID(txCtx, req.CourtID)
		if err != nil {
			if errors.Is(err, courtRepo.ErrCourtNotFound) {
				uc.logger.Warn("CreateRecurringBooking: court id=%d not found", req.CourtID)
				return ErrCourtNotFound
			}
			return fmt.Errorf("%w: get court: %w", ErrInternal, err)
		}
		if court.IsDeleted() {
			uc.logger.Warn("CreateRecurringBooking: court id=%d is deleted", req.CourtID)
			return ErrCourtNotFound
		}

		// 2. Хотя бы одна дата в диапазоне
		if len(dates) == 0 {
			uc.logger.Warn("CreateRecurringBooking: no dates with dayOfWeek=%d in range", req.DayOfWeek)
			return fmt.Errorf("%w: no dates with dayOfWeek=%d between %s and %s", ErrNoOccurrences,
				req.DayOfWeek, req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))
		}

		// 3. Один запрос на конфликты по всем датам
		if err := uc.checker.EnsureAvailable(txCtx, req.CourtID, req.TimeSlot, endTime, dates); err != nil {
			return uc.mapSlotError("conflict check", err)
		}

		// 4. Шаблон слота задает цену за сессию
		template, err := uc.scheduleRepo.GetTemplate(txCtx, req.CourtID, req.TimeSlot)
		if err != nil {
			if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
				uc.logger.Warn("CreateRecurringBooking: no slot template for court=%d, time=%s", req.CourtID, req.TimeSlot)
				return ErrSlotTemplateNotFound
			}
			return fmt.Errorf("%w: get slot template: %w", ErrInternal, err)
		}

		// 5. Расчет стоимости
		table, err := uc.discounts.GetDiscountTable(txCtx)
		if err != nil {
			return fmt.Errorf("%w: get discount table: %w", ErrInternal, err)
		}
		quote := table.Quote(template.Price, len(dates))

		// 6. Серия с зафиксированной итоговой суммой
		series, err := uc.recurringRepo.Create(txCtx, &domain.RecurringBooking{
			UserID:             req.UserID,
			CourtID:            req.CourtID,
			DayOfWeek:          req.DayOfWeek,
			StartDate:          domain.NormalizeDate(req.StartDate),
			EndDate:            domain.NormalizeDate(req.EndDate),
			TimeSlot:           req.TimeSlot,
			TotalAmount:        quote.FinalTotal,
			OriginalAmount:     quote.OriginalTotal,
			DiscountPercentage: quote.DiscountPercentage,
			PaymentStatus:      domain.PaymentPending,
		})
		if err != nil {
			return fmt.Errorf("%w: create series: %w", ErrInternal, err)
		}

		// 7. Бронирования одной вставкой
		bookings := make([]*domain.Booking, 0, len(dates))
		for _, d := range dates {
			bookings = append(bookings, &domain.Booking{
				UserID:             req.UserID,
				CourtID:            req.CourtID,
				Date:               d,
				StartTime:          req.TimeSlot,
				EndTime:            endTime,
				DurationMinutes:    uc.opts.SlotDurationMinutes,
				Amount:             template.Price,
				PaymentStatus:      domain.PaymentPending,
				RecurringBookingID: &series.ID,
			})
		}

		created, err := uc.bookingRepo.CreateBulk(txCtx, bookings)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrSlotAlreadyBooked) {
				uc.logger.Warn("CreateRecurringBooking: concurrent booking detected by unique index: %v", err)
				return fmt.Errorf("%w: %v", ErrSlotConflict, err)
			}
			return fmt.Errorf("%w: create bookings: %w", ErrInternal, err)
		}

		// 8. Условное занятие слотов
		if err := uc.slots.ClaimAll(txCtx, created); err != nil {
			return uc.mapSlotError("claim slots", err)
		}

		// 9. Платеж на всю серию
		payment, err := uc.payments.Initiate(txCtx, payments.Target{
			RecurringBookingID: &series.ID,
			Amount:             quote.FinalTotal,
			ItemName:           fmt.Sprintf("Court %d weekly %s x%d", req.CourtID, req.TimeSlot, len(dates)),
		})
		if err != nil {
			return fmt.Errorf("%w: initiate payment: %w", ErrInternal, err)
		}

		resp = &Response{
			Series:        series,
			Occurrences:   created,
			Payment:       payment,
			Quote:         quote,
			TotalPrice:    quote.FinalTotal,
			TotalSessions: len(created),
		}
		return nil
	})

	if err != nil {
		outcome, mapped := uc.mapTxError(err)
		uc.metrics.ObserveReservation(metricsKind, outcome)
		if outcome == "error" {
			uc.logger.Error("CreateRecurringBooking: user=%d, court=%d failed: %v", req.UserID, req.CourtID, err)
		}
		return nil, mapped
	}

	uc.metrics.ObserveReservation(metricsKind, "success")
	uc.logger.Info("CreateRecurringBooking: created series id=%d with %d bookings, total=%d, order_id=%s",
		resp.Series.ID, resp.TotalSessions, resp.TotalPrice, resp.Payment.OrderID)

	uc.publishCreated(ctx, resp)

	return resp, nil
}

// mapSlotError переводит ошибки проверки и занятия слотов в ошибки use case
func (uc *UseCase) mapSlotError(step string, err error) error {
	var conflict *availability.ConflictError
	if errors.As(err, &conflict) {
		uc.logger.Warn("CreateRecurringBooking: %s: %v", step, conflict)
		return fmt.Errorf("%w: %w", ErrSlotConflict, conflict)
	}
	return fmt.Errorf("%w: %s: %w", ErrInternal, step, err)
}

// mapTxError классифицирует ошибку транзакции и возвращает метку исхода для метрик
func (uc *UseCase) mapTxError(err error) (string, error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNoOccurrences), errors.Is(err, ErrTooManyOccurrences):
		return "validation", err
	case errors.Is(err, ErrCourtNotFound), errors.Is(err, ErrSlotTemplateNotFound):
		return "not_found", err
	case errors.Is(err, ErrSlotConflict):
		return "conflict", err
	case pgerrors.IsSerializationFailure(err):
		uc.logger.Warn("CreateRecurringBooking: serialization failure: %v", err)
		return "conflict", fmt.Errorf("%w: concurrent reservation for the same slot", ErrSlotConflict)
	case errors.Is(err, context.DeadlineExceeded):
		return "error", fmt.Errorf("%w: reservation timed out: %w", ErrInternal, err)
	case errors.Is(err, ErrInternal):
		return "error", err
	default:
		return "error", fmt.Errorf("%w: %w", ErrInternal, err)
	}
}

func (uc *UseCase) publishCreated(ctx context.Context, resp *Response) {
	dates := make([]string, 0, len(resp.Occurrences))
	for _, b := range resp.Occurrences {
		dates = append(dates, b.Date.Format(domain.DateFormat))
	}

	event, err := mq.NewEvent(EventReservationCreated, createdEvent{
		RecurringBookingID: resp.Series.ID,
		UserID:             resp.Series.UserID,
		CourtID:            resp.Series.CourtID,
		Dates:              dates,
		TimeSlot:           resp.Series.TimeSlot.String(),
		TotalAmount:        resp.TotalPrice,
		OrderID:            resp.Payment.OrderID,
		CreatedAt:          resp.Series.CreatedAt,
	}, uc.timeProvider.Now())
	if err != nil {
		uc.logger.Error("CreateRecurringBooking: build event: %v", err)
		return
	}

	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Warn("CreateRecurringBooking: failed to publish %s for series id=%d: %v", event.Type, resp.Series.ID, err)
	}
}
