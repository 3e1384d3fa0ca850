package create_recurring_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_recurring_booking: invalid input data")

	// ErrNoOccurrences возвращается, если в диапазоне нет ни одной даты с нужным днем недели
	ErrNoOccurrences = errors.New("create_recurring_booking: no occurrences in date range")

	// ErrTooManyOccurrences возвращается, если серия длиннее допустимого
	ErrTooManyOccurrences = errors.New("create_recurring_booking: too many occurrences")

	// ErrCourtNotFound возвращается, когда корт не найден или удален
	ErrCourtNotFound = errors.New("create_recurring_booking: court not found")

	// ErrSlotTemplateNotFound возвращается, когда у корта нет слота на это время
	ErrSlotTemplateNotFound = errors.New("create_recurring_booking: slot template not found")

	// ErrSlotConflict возвращается, когда хотя бы одна дата уже занята
	ErrSlotConflict = errors.New("create_recurring_booking: slot already booked")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_recurring_booking: internal error")
)
