package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	courtRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/court"
)

// UseCase use case для получения расписания корта на день
type UseCase struct {
	courtRepo    CourtRepository
	scheduleRepo ScheduleRepository
	bookingRepo  BookingRepository
	slotDuration int
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	courtRepo CourtRepository,
	scheduleRepo ScheduleRepository,
	bookingRepo BookingRepository,
	slotDurationMinutes int,
	logger Logger,
) *UseCase {
	if slotDurationMinutes <= 0 {
		slotDurationMinutes = domain.DefaultSlotDurationMinutes
	}

	return &UseCase{
		courtRepo:    courtRepo,
		scheduleRepo: scheduleRepo,
		bookingRepo:  bookingRepo,
		slotDuration: slotDurationMinutes,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case получения слотов корта
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	date := domain.NormalizeDate(req.Date)
	uc.logger.Info("GetAvailableSlots: court=%d, date=%s", req.CourtID, date.Format(domain.DateFormat))

	// 2. Корт существует и не удален
	court, err := uc.courtRepo.GetByID(ctx, req.CourtID)
	if err != nil {
		if errors.Is(err, courtRepo.ErrCourtNotFound) {
			uc.logger.Warn("GetAvailableSlots: court id=%d not found", req.CourtID)
			return nil, ErrCourtNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get court id=%d: %v", req.CourtID, err)
		return nil, fmt.Errorf("%w: failed to get court: %v", ErrInternal, err)
	}
	if court.IsDeleted() {
		uc.logger.Warn("GetAvailableSlots: court id=%d is deleted", req.CourtID)
		return nil, ErrCourtNotFound
	}

	// 3. Слоты расписания на дату
	schedules, err := uc.scheduleRepo.GetByCourtAndDate(ctx, req.CourtID, date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get schedules: %v", err)
		return nil, fmt.Errorf("%w: failed to get schedules: %v", ErrInternal, err)
	}

	// 4. Активные бронирования корта на эту дату
	bookings, err := uc.bookingRepo.GetByCourtWithFilter(ctx, domain.CourtBookingsFilter{
		CourtID:   req.CourtID,
		StartDate: &date,
		EndDate:   &date,
	})
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
		return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	// 5. Доступность каждого слота
	slots := buildSlots(schedules, uc.slotDuration, bookings, date, uc.timeProvider.Now())

	uc.logger.Info("GetAvailableSlots: %d slots for court=%d, date=%s",
		len(slots), req.CourtID, date.Format(domain.DateFormat))

	return &Response{
		Date:    date,
		CourtID: req.CourtID,
		Slots:   slots,
	}, nil
}
