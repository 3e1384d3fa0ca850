package create_booking

import "errors"

var (
	// ErrCourtNotFound возвращается, когда корт не найден или удален
	ErrCourtNotFound = errors.New("create_booking: court not found")

	// ErrSlotNotFound возвращается, когда у корта нет слота на эту дату и время
	ErrSlotNotFound = errors.New("create_booking: slot not found")

	// ErrInvalidDate возвращается при дате в прошлом
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrTooLateToBook возвращается, когда слот на сегодня уже начался
	ErrTooLateToBook = errors.New("create_booking: too late to book this slot")

	// ErrSlotConflict возвращается, когда слот уже занят
	ErrSlotConflict = errors.New("create_booking: slot already booked")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
