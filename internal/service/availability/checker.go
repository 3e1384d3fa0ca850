package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// Checker проверяет свободность слота сразу на все даты серии
type Checker struct {
	finder ConflictFinder
}

// NewChecker создает новый экземпляр проверки доступности
func NewChecker(finder ConflictFinder) *Checker {
	return &Checker{finder: finder}
}

// EnsureAvailable возвращает *ConflictError с самой ранней занятой датой,
// если хотя бы на одну дату есть активное бронирование. Выполняет один запрос
func (c *Checker) EnsureAvailable(ctx context.Context, courtID int64, startTime, endTime types.TimeString, dates []time.Time) error {
	if len(dates) == 0 {
		return nil
	}

	windows := make([]domain.DayWindow, 0, len(dates))
	for _, d := range dates {
		windows = append(windows, domain.DayWindowOf(d))
	}

	conflict, err := c.finder.FindFirstActiveConflict(ctx, courtID, startTime, endTime, windows)
	if err != nil {
		return fmt.Errorf("%w: EnsureAvailable - %w", ErrInternal, err)
	}

	if conflict != nil {
		return &ConflictError{Date: domain.NormalizeDate(conflict.Date), BookingID: conflict.ID}
	}

	return nil
}
