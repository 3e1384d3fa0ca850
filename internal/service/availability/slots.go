package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	scheduleRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/schedule"
)

// SlotKeeper единственная точка изменения флага available
// Занятие слота всегда условное, освобождение затрагивает только слоты указанных бронирований
type SlotKeeper struct {
	store  SlotStore
	logger Logger
}

// NewSlotKeeper создает новый экземпляр SlotKeeper
func NewSlotKeeper(store SlotStore, logger Logger) *SlotKeeper {
	return &SlotKeeper{store: store, logger: logger}
}

// ClaimAll занимает слоты для только что созданных бронирований
// Если слот занят другим бронированием, возвращает *ConflictError.
// Отсутствующая строка расписания не ошибка: бронирование защищено уникальным индексом
func (k *SlotKeeper) ClaimAll(ctx context.Context, bookings []*domain.Booking) error {
	for _, b := range bookings {
		claimed, err := k.store.ClaimSlot(ctx, b.CourtID, b.Date, b.StartTime, b.ID)
		if err != nil {
			return fmt.Errorf("%w: ClaimAll - booking=%d: %w", ErrInternal, b.ID, err)
		}
		if claimed {
			continue
		}

		slot, err := k.store.GetSlot(ctx, b.CourtID, b.Date, b.StartTime)
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			k.logger.Warn("ClaimAll: no schedule row for court=%d, date=%s, time=%s, booking=%d",
				b.CourtID, b.Date.Format(domain.DateFormat), b.StartTime, b.ID)
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: ClaimAll - get slot: %w", ErrInternal, err)
		}

		conflict := &ConflictError{Date: domain.NormalizeDate(slot.Date)}
		if slot.BookingID != nil {
			conflict.BookingID = *slot.BookingID
		}
		return conflict
	}

	return nil
}

// ClaimForSettlement занимает слоты оплаченных бронирований
// Слот, удерживаемый другим бронированием, не перезаписывается
func (k *SlotKeeper) ClaimForSettlement(ctx context.Context, bookings []*domain.Booking) (int, error) {
	claimedCount := 0
	for _, b := range bookings {
		claimed, err := k.store.ClaimSlot(ctx, b.CourtID, b.Date, b.StartTime, b.ID)
		if err != nil {
			return claimedCount, fmt.Errorf("%w: ClaimForSettlement - booking=%d: %w", ErrInternal, b.ID, err)
		}
		if claimed {
			claimedCount++
			continue
		}

		slot, err := k.store.GetSlot(ctx, b.CourtID, b.Date, b.StartTime)
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			k.logger.Warn("ClaimForSettlement: no schedule row for booking=%d", b.ID)
			continue
		}
		if err != nil {
			return claimedCount, fmt.Errorf("%w: ClaimForSettlement - get slot: %w", ErrInternal, err)
		}

		k.logger.Warn("ClaimForSettlement: slot court=%d, date=%s, time=%s is held by booking=%v, paid booking=%d left without slot",
			b.CourtID, b.Date.Format(domain.DateFormat), b.StartTime, slot.BookingID, b.ID)
	}

	return claimedCount, nil
}

// Release освобождает слоты, удерживаемые бронированиями
func (k *SlotKeeper) Release(ctx context.Context, bookings []*domain.Booking) (int64, error) {
	ids := make([]int64, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.ID)
	}

	released, err := k.store.ReleaseSlots(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("%w: Release - %w", ErrInternal, err)
	}

	return released, nil
}
