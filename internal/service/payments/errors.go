package payments

import "errors"

var (
	// ErrGateway возвращается, если шлюз не создал платеж
	ErrGateway = errors.New("payments: gateway error")

	// ErrInvalidTarget возвращается, если платеж не ссылается ровно на одну сущность
	ErrInvalidTarget = errors.New("payments: invalid payment target")

	// ErrInternal возвращается при ошибках хранилища
	ErrInternal = errors.New("payments: internal error")
)
