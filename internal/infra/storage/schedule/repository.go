package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBookingService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

const table = "schedules"

var columns = []string{
	"id",
	"court_id",
	"date",
	"time_slot",
	"price",
	"day_type",
	"available",
	"booking_id",
}

// Repository репозиторий слотов расписания
// Флаг available меняется только через ClaimSlot и ReleaseSlots
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписания
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetTemplate возвращает первый по дате слот корта с указанным временем
// Используется как шаблон цены для серии
func (r *Repository) GetTemplate(ctx context.Context, courtID int64, timeSlot types.TimeString) (*domain.Schedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"court_id": courtID, "time_slot": timeSlot}).
		OrderBy("date ASC").
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetTemplate - build select query: %v", ErrBuildQuery, err)
	}

	schedule, err := scanSchedule(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetTemplate - scan schedule: %w", ErrScanRow, err)
	}

	return schedule, nil
}

// GetSlot возвращает слот корта на дату и время
func (r *Repository) GetSlot(ctx context.Context, courtID int64, date time.Time, timeSlot types.TimeString) (*domain.Schedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"court_id": courtID, "date": domain.NormalizeDate(date), "time_slot": timeSlot}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetSlot - build select query: %v", ErrBuildQuery, err)
	}

	schedule, err := scanSchedule(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetSlot - scan schedule: %w", ErrScanRow, err)
	}

	return schedule, nil
}

// GetByCourtAndDate возвращает все слоты корта на день, упорядоченные по времени
func (r *Repository) GetByCourtAndDate(ctx context.Context, courtID int64, date time.Time) ([]*domain.Schedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"court_id": courtID, "date": domain.NormalizeDate(date)}).
		OrderBy("time_slot ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByCourtAndDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByCourtAndDate - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	schedules := make([]*domain.Schedule, 0)
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: GetByCourtAndDate - scan row: %w", ErrScanRow, err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByCourtAndDate - rows error: %w", ErrScanRow, err)
	}

	return schedules, nil
}

// ClaimSlot помечает слот занятым бронированием bookingID.
// Обновление условное: слот должен быть свободен или уже принадлежать этому бронированию.
// Возвращает false, если ни одна строка не обновилась (слот занят другим или отсутствует)
func (r *Repository) ClaimSlot(ctx context.Context, courtID int64, date time.Time, timeSlot types.TimeString, bookingID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("available", false).
		Set("booking_id", bookingID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"court_id": courtID, "date": domain.NormalizeDate(date), "time_slot": timeSlot}).
		Where(squirrel.Or{
			squirrel.Eq{"available": true},
			squirrel.Eq{"booking_id": bookingID},
		}).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: ClaimSlot - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: ClaimSlot - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: ClaimSlot - get rows affected: %w", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}

// ReleaseSlots освобождает слоты, которые удерживаются указанными бронированиями.
// Слоты, занятые другими бронированиями, не затрагиваются
func (r *Repository) ReleaseSlots(ctx context.Context, bookingIDs []int64) (int64, error) {
	if len(bookingIDs) == 0 {
		return 0, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("available", true).
		Set("booking_id", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"booking_id": bookingIDs}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: ReleaseSlots - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: ReleaseSlots - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: ReleaseSlots - get rows affected: %w", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSchedule(row rowScanner) (*domain.Schedule, error) {
	var s domain.Schedule
	err := row.Scan(
		&s.ID,
		&s.CourtID,
		&s.Date,
		&s.TimeSlot,
		&s.Price,
		&s.DayType,
		&s.Available,
		&s.BookingID,
	)
	if err != nil {
		return nil, err
	}
	s.Date = domain.NormalizeDate(s.Date)
	return &s, nil
}
