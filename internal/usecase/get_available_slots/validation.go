package get_available_slots

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.CourtID <= 0 {
		return fmt.Errorf("%w: courtID must be positive", ErrInvalidInput)
	}

	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	return nil
}

// buildSlots переводит слоты расписания в ответ и вычисляет, можно ли их бронировать
func buildSlots(
	schedules []*domain.Schedule,
	slotDuration int,
	bookings []*domain.Booking,
	requestDate time.Time,
	now time.Time,
) []Slot {
	result := make([]Slot, 0, len(schedules))
	past := isDateInPast(requestDate, now)
	today := isSameDay(requestDate, now)
	currentTime := types.NewTimeString(now)

	for _, s := range schedules {
		slot := Slot{
			ID:        s.ID,
			StartTime: s.TimeSlot,
			Price:     s.Price,
			DayType:   s.DayType,
			Available: s.Available,
		}

		end, err := s.TimeSlot.AddMinutes(slotDuration)
		if err != nil {
			// Слот не помещается в сутки
			result = append(result, slot)
			continue
		}
		slot.EndTime = end

		started := past || (today && !currentTime.IsBefore(s.TimeSlot))
		slot.Bookable = s.Available && !started && countOverlappingBookings(s.TimeSlot, end, bookings) == 0

		result = append(result, slot)
	}

	return result
}

// countOverlappingBookings подсчитывает количество активных бронирований, пересекающихся со слотом
// Граничные случаи не считаются пересечением:
// - Слот 18:00-19:00, бронирование 17:30-18:30 → ЕСТЬ пересечение
// - Слот 18:00-19:00, бронирование 17:00-18:00 → НЕТ пересечения
func countOverlappingBookings(slotStart, slotEnd types.TimeString, bookings []*domain.Booking) int {
	count := 0

	for _, booking := range bookings {
		if !booking.IsActive() {
			continue
		}

		if booking.StartTime.IsBefore(slotEnd) && booking.EndTime.IsAfter(slotStart) {
			count++
		}
	}

	return count
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
func isDateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return dateOnly.Before(nowOnly)
}
