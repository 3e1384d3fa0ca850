package recurring

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBookingService/pkg/psqlbuilder"
)

const table = "recurring_bookings"

// Repository репозиторий серий бронирований
type Repository struct {
	db DBExecutor
}

func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает серию с зафиксированной итоговой суммой
func (r *Repository) Create(ctx context.Context, rb *domain.RecurringBooking) (*domain.RecurringBooking, error) {
	if !rb.PaymentStatus.IsValid() {
		return nil, fmt.Errorf("%w: Create - %q", ErrInvalidStatus, rb.PaymentStatus)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"user_id",
			"court_id",
			"day_of_week",
			"start_date",
			"end_date",
			"time_slot",
			"total_amount",
			"original_amount",
			"discount_percentage",
			"payment_status",
		).
		Values(
			rb.UserID,
			rb.CourtID,
			rb.DayOfWeek,
			rb.StartDate,
			rb.EndDate,
			rb.TimeSlot,
			rb.TotalAmount,
			rb.OriginalAmount,
			rb.DiscountPercentage,
			rb.PaymentStatus,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&rb.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	rb.CreatedAt = createdAt.Time
	rb.UpdatedAt = updatedAt.Time

	return rb, nil
}

// GetByID получает серию по ID; в транзакции строка блокируется
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.RecurringBooking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"user_id",
		"court_id",
		"day_of_week",
		"start_date",
		"end_date",
		"time_slot",
		"total_amount",
		"original_amount",
		"discount_percentage",
		"payment_status",
		"created_at",
		"updated_at",
	).
		From(table).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var rb domain.RecurringBooking
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&rb.ID,
		&rb.UserID,
		&rb.CourtID,
		&rb.DayOfWeek,
		&rb.StartDate,
		&rb.EndDate,
		&rb.TimeSlot,
		&rb.TotalAmount,
		&rb.OriginalAmount,
		&rb.DiscountPercentage,
		&rb.PaymentStatus,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecurringBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan recurring booking: %w", ErrScanRow, err)
	}

	rb.StartDate = domain.NormalizeDate(rb.StartDate)
	rb.EndDate = domain.NormalizeDate(rb.EndDate)
	rb.CreatedAt = createdAt.Time
	rb.UpdatedAt = updatedAt.Time

	return &rb, nil
}

// UpdatePaymentStatus обновляет статус оплаты серии
func (r *Repository) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: UpdatePaymentStatus - %q", ErrInvalidStatus, status)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("payment_status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdatePaymentStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdatePaymentStatus - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdatePaymentStatus - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrRecurringBookingNotFound
	}

	return nil
}
