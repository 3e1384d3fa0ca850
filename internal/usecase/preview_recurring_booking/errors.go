package preview_recurring_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("preview_recurring_booking: invalid input data")

	// ErrNoOccurrences возвращается, если в диапазоне нет ни одной даты с нужным днем недели
	ErrNoOccurrences = errors.New("preview_recurring_booking: no occurrences in date range")

	// ErrCourtNotFound возвращается, когда корт не найден или удален
	ErrCourtNotFound = errors.New("preview_recurring_booking: court not found")

	// ErrSlotTemplateNotFound возвращается, когда у корта нет слота на это время
	ErrSlotTemplateNotFound = errors.New("preview_recurring_booking: slot template not found")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("preview_recurring_booking: internal error")
)
