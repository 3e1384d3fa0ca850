package midtrans

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("midtrans client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе платежного шлюза
	ErrInvalidResponse = errors.New("midtrans client: invalid response")

	// ErrUnauthorized возвращается, если шлюз отклонил ключ сервера
	ErrUnauthorized = errors.New("midtrans client: unauthorized")

	// ErrInvalidSignature возвращается, если подпись уведомления не совпала
	ErrInvalidSignature = errors.New("midtrans: invalid signature")
)
