package process_payment_notification

import "errors"

var (
	// ErrInvalidInput уведомление без обязательных полей
	ErrInvalidInput = errors.New("invalid notification")

	// ErrInvalidSignature подпись не совпала
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrUnknownStatus статус транзакции не поддерживается
	ErrUnknownStatus = errors.New("unknown transaction status")

	// ErrTransactionNotFound платежная запись с таким order_id не найдена
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("internal error")
)
