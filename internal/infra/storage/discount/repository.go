package discount

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-CourtBookingService/pkg/psqlbuilder"
)

const table = "discount_tiers"

// Repository репозиторий ступеней скидок за количество сессий
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория скидок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetAll возвращает ступени по убыванию min_sessions
// Пустой результат не является ошибкой: вызывающий решает, какую таблицу использовать
func (r *Repository) GetAll(ctx context.Context) ([]domain.DiscountTier, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("min_sessions", "percentage").
		From(table).
		OrderBy("min_sessions DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetAll - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetAll - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	tiers := make([]domain.DiscountTier, 0)
	for rows.Next() {
		var tier domain.DiscountTier
		if err := rows.Scan(&tier.MinSessions, &tier.Percentage); err != nil {
			return nil, fmt.Errorf("%w: GetAll - scan row: %w", ErrScanRow, err)
		}
		tiers = append(tiers, tier)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetAll - rows error: %w", ErrScanRow, err)
	}

	return tiers, nil
}

// ReplaceAll заменяет всю таблицу скидок
// Вызывать внутри транзакции: удаление и вставка должны примениться вместе
func (r *Repository) ReplaceAll(ctx context.Context, tiers []domain.DiscountTier) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(table).ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceAll - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceAll - execute delete: %w", ErrExecQuery, err)
	}

	if len(tiers) == 0 {
		return nil
	}

	insertBuilder := psqlbuilder.Insert(table).Columns("min_sessions", "percentage")
	for _, tier := range tiers {
		insertBuilder = insertBuilder.Values(tier.MinSessions, tier.Percentage)
	}

	query, args, err = insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: ReplaceAll - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ReplaceAll - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}
