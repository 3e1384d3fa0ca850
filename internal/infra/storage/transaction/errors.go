package transaction

import "errors"

var (
	// ErrTransactionNotFound возвращается, когда платежная запись не найдена
	ErrTransactionNotFound = errors.New("transaction.repository: transaction not found")

	// ErrDuplicateOrderID возвращается при повторном order_id
	ErrDuplicateOrderID = errors.New("transaction.repository: duplicate order id")

	// ErrInvalidReference возвращается, если запись ссылается не ровно на одну сущность
	ErrInvalidReference = errors.New("transaction.repository: invalid booking reference")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("transaction.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("transaction.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("transaction.repository: failed to scan row")
)
