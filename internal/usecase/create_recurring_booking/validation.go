package create_recurring_booking

import "fmt"

// validateRequest проверяет входные данные
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is empty", ErrInvalidInput)
	}
	if req.UserID <= 0 {
		return fmt.Errorf("%w: user id must be positive", ErrInvalidInput)
	}
	if req.CourtID <= 0 {
		return fmt.Errorf("%w: court id must be positive", ErrInvalidInput)
	}
	if req.DayOfWeek < 1 || req.DayOfWeek > 7 {
		return fmt.Errorf("%w: dayOfWeek must be between 1 and 7, got %d", ErrInvalidInput, req.DayOfWeek)
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return fmt.Errorf("%w: startDate and endDate are required", ErrInvalidInput)
	}
	if req.StartDate.After(req.EndDate) {
		return fmt.Errorf("%w: startDate is after endDate", ErrInvalidInput)
	}
	if err := req.TimeSlot.Validate(); err != nil {
		return fmt.Errorf("%w: timeSlot: %v", ErrInvalidInput, err)
	}
	return nil
}
