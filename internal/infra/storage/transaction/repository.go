package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/pgerrors"
	"github.com/m04kA/SMC-CourtBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBookingService/pkg/psqlbuilder"
)

const table = "transactions"

// Repository репозиторий платежных записей
type Repository struct {
	db DBExecutor
}

func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает платежную запись
// Запись должна ссылаться ровно на одно: бронирование или серию
func (r *Repository) Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("%w: Create - %v", ErrInvalidReference, err)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"booking_id",
			"recurring_booking_id",
			"order_id",
			"amount",
			"payment_status",
			"payment_method",
			"snap_token",
			"snap_url",
			"expiry_time",
		).
		Values(
			tx.BookingID,
			tx.RecurringBookingID,
			tx.OrderID,
			tx.Amount,
			tx.PaymentStatus,
			tx.PaymentMethod,
			tx.SnapToken,
			tx.SnapURL,
			tx.ExpiryTime,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&tx.ID, &createdAt, &updatedAt)
	if err != nil {
		if pgerrors.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: Create - order_id=%s", ErrDuplicateOrderID, tx.OrderID)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	tx.CreatedAt = createdAt.Time
	tx.UpdatedAt = updatedAt.Time

	return tx, nil
}

// GetByOrderID получает платежную запись по order_id
// В транзакции строка блокируется (FOR UPDATE), чтобы параллельные уведомления применялись по очереди
func (r *Repository) GetByOrderID(ctx context.Context, orderID string) (*domain.Transaction, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"booking_id",
		"recurring_booking_id",
		"order_id",
		"amount",
		"payment_status",
		"payment_method",
		"snap_token",
		"snap_url",
		"expiry_time",
		"created_at",
		"updated_at",
	).
		From(table).
		Where(squirrel.Eq{"order_id": orderID})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByOrderID - build select query: %v", ErrBuildQuery, err)
	}

	var tx domain.Transaction
	var snapToken, snapURL sql.NullString
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&tx.ID,
		&tx.BookingID,
		&tx.RecurringBookingID,
		&tx.OrderID,
		&tx.Amount,
		&tx.PaymentStatus,
		&tx.PaymentMethod,
		&snapToken,
		&snapURL,
		&tx.ExpiryTime,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByOrderID - scan transaction: %w", ErrScanRow, err)
	}

	tx.SnapToken = snapToken.String
	tx.SnapURL = snapURL.String
	tx.CreatedAt = createdAt.Time
	tx.UpdatedAt = updatedAt.Time

	return &tx, nil
}

// UpdateStatus обновляет статус платежа и, если передан, способ оплаты
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.TransactionStatus, paymentMethod *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update(table).
		Set("payment_status", status).
		Set("updated_at", squirrel.Expr("NOW()"))

	if paymentMethod != nil {
		updateBuilder = updateBuilder.Set("payment_method", *paymentMethod)
	}

	query, args, err := updateBuilder.Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrTransactionNotFound
	}

	return nil
}

// SetSnapToken сохраняет токен и ссылку оплаты, полученные от шлюза
func (r *Repository) SetSnapToken(ctx context.Context, id int64, token, url string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("snap_token", token).
		Set("snap_url", url).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetSnapToken - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetSnapToken - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetSnapToken - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrTransactionNotFound
	}

	return nil
}
