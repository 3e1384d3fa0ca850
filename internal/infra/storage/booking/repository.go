package booking

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
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

const table = "bookings"

var columns = []string{
	"id",
	"user_id",
	"court_id",
	"date",
	"start_time",
	"end_time",
	"duration_minutes",
	"amount",
	"payment_status",
	"recurring_booking_id",
	"reschedule_count",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает одно бронирование
// Нарушение уникального индекса активных бронирований возвращается как ErrSlotAlreadyBooked
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	created, err := r.CreateBulk(ctx, []*domain.Booking{booking})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

// CreateBulk создает несколько бронирований одним INSERT
// Порядок возвращаемых бронирований совпадает с порядком входных
func (r *Repository) CreateBulk(ctx context.Context, bookings []*domain.Booking) ([]*domain.Booking, error) {
	if len(bookings) == 0 {
		return bookings, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insert := psqlbuilder.Insert(table).
		Columns(
			"user_id",
			"court_id",
			"date",
			"start_time",
			"end_time",
			"duration_minutes",
			"amount",
			"payment_status",
			"recurring_booking_id",
		)

	for _, b := range bookings {
		if !b.PaymentStatus.IsValid() {
			return nil, fmt.Errorf("%w: CreateBulk - %q", ErrInvalidStatus, b.PaymentStatus)
		}
		insert = insert.Values(
			b.UserID,
			b.CourtID,
			b.Date,
			b.StartTime,
			b.EndTime,
			b.DurationMinutes,
			b.Amount,
			b.PaymentStatus,
			b.RecurringBookingID,
		)
	}

	query, args, err := insert.Suffix("RETURNING id, created_at, updated_at").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateBulk - build insert query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		if pgerrors.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: CreateBulk - %v", ErrSlotAlreadyBooked, err)
		}
		return nil, fmt.Errorf("%w: CreateBulk - execute insert: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if i >= len(bookings) {
			return nil, fmt.Errorf("%w: CreateBulk - more rows returned than inserted", ErrScanRow)
		}
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&bookings[i].ID, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: CreateBulk - scan returning: %w", ErrScanRow, err)
		}
		bookings[i].CreatedAt = createdAt.Time
		bookings[i].UpdatedAt = updatedAt.Time
		i++
	}

	if err := rows.Err(); err != nil {
		if pgerrors.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: CreateBulk - %v", ErrSlotAlreadyBooked, err)
		}
		return nil, fmt.Errorf("%w: CreateBulk - rows error: %w", ErrScanRow, err)
	}

	if i != len(bookings) {
		return nil, fmt.Errorf("%w: CreateBulk - inserted %d of %d rows", ErrExecQuery, i, len(bookings))
	}

	return bookings, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// GetByUserID получает список бронирований пользователя
// Опционально фильтрует по статусу
func (r *Repository) GetByUserID(ctx context.Context, userID int64, status *domain.PaymentStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("date DESC", "start_time DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"payment_status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetByRecurringBookingID получает все бронирования серии по возрастанию даты
// В транзакции строки блокируются (FOR UPDATE)
func (r *Repository) GetByRecurringBookingID(ctx context.Context, recurringID int64) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"recurring_booking_id": recurringID}).
		OrderBy("date ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByRecurringBookingID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByRecurringBookingID - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetByCourtWithFilter получает бронирования корта с фильтрацией по периоду и статусу
func (r *Repository) GetByCourtWithFilter(ctx context.Context, filter domain.CourtBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"court_id": filter.CourtID})

	if filter.StartDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"date": *filter.EndDate})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"payment_status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"payment_status": domain.StatusStrings(domain.ActiveStatuses)})
	}

	selectBuilder = selectBuilder.OrderBy("date ASC", "start_time ASC")

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCourtWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCourtWithFilter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// FindFirstActiveConflict одним запросом ищет активное бронирование корта,
// пересекающееся по времени с [startTime, endTime) в любом из дневных окон.
// Возвращает самое раннее по дате или nil, если конфликтов нет
func (r *Repository) FindFirstActiveConflict(
	ctx context.Context,
	courtID int64,
	startTime, endTime types.TimeString,
	windows []domain.DayWindow,
) (*domain.Booking, error) {
	if len(windows) == 0 {
		return nil, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	anyWindow := make(squirrel.Or, 0, len(windows))
	for _, w := range windows {
		anyWindow = append(anyWindow, squirrel.And{
			squirrel.GtOrEq{"date": w.From},
			squirrel.Lt{"date": w.To},
		})
	}

	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"court_id": courtID}).
		Where(squirrel.Eq{"payment_status": domain.StatusStrings(domain.ActiveStatuses)}).
		Where(squirrel.Lt{"start_time": endTime}).
		Where(squirrel.Gt{"end_time": startTime}).
		Where(anyWindow).
		OrderBy("date ASC").
		Limit(1)

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindFirstActiveConflict - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: FindFirstActiveConflict - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// UpdatePaymentStatus обновляет статус оплаты бронирования
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
		if pgerrors.IsUniqueViolation(err) {
			return fmt.Errorf("%w: UpdatePaymentStatus - %v", ErrSlotAlreadyBooked, err)
		}
		return fmt.Errorf("%w: UpdatePaymentStatus - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdatePaymentStatus - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// UpdatePaymentStatusByRecurringID обновляет статус всех бронирований серии
// Возвращает количество обновленных строк
func (r *Repository) UpdatePaymentStatusByRecurringID(ctx context.Context, recurringID int64, status domain.PaymentStatus) (int64, error) {
	if !status.IsValid() {
		return 0, fmt.Errorf("%w: UpdatePaymentStatusByRecurringID - %q", ErrInvalidStatus, status)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("payment_status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"recurring_booking_id": recurringID}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: UpdatePaymentStatusByRecurringID - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if pgerrors.IsUniqueViolation(err) {
			return 0, fmt.Errorf("%w: UpdatePaymentStatusByRecurringID - %v", ErrSlotAlreadyBooked, err)
		}
		return 0, fmt.Errorf("%w: UpdatePaymentStatusByRecurringID - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: UpdatePaymentStatusByRecurringID - get rows affected: %w", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.CourtID,
		&booking.Date,
		&booking.StartTime,
		&booking.EndTime,
		&booking.DurationMinutes,
		&booking.Amount,
		&booking.PaymentStatus,
		&booking.RecurringBookingID,
		&booking.RescheduleCount,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.Date = domain.NormalizeDate(booking.Date)
	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %w", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %w", ErrScanRow, err)
	}

	return bookings, nil
}
