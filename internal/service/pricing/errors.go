package pricing

import "errors"

var (
	// ErrAccessDenied возвращается, когда пользователь не администратор
	ErrAccessDenied = errors.New("pricing: access denied")

	// ErrInvalidInput возвращается при некорректной таблице скидок
	ErrInvalidInput = errors.New("pricing: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("pricing: internal error")
)
