package booking

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/pgerrors"
	"github.com/m04kA/SMC-CourtBookingService/pkg/dbmetrics"
)

func setupMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(dbmetrics.Wrap(db, nil)), mock
}

func day(s string) time.Time {
	d, _ := time.Parse(domain.DateFormat, s)
	return d
}

func bookingRow(id int64, date string, status domain.PaymentStatus, recurringID interface{}) []driver.Value {
	now := time.Date(2024, 2, 20, 10, 0, 0, 0, time.UTC)
	return []driver.Value{id, int64(7), int64(3), day(date), "18:00:00", "19:00:00", 60, int64(100000), string(status), recurringID, 0, now, now}
}

func TestCreateBulk(t *testing.T) {
	repo, mock := setupMock(t)
	seriesID := int64(11)

	bookings := []*domain.Booking{
		{UserID: 7, CourtID: 3, Date: day("2024-03-01"), StartTime: "18:00", EndTime: "19:00", DurationMinutes: 60, Amount: 100000, PaymentStatus: domain.PaymentPending, RecurringBookingID: &seriesID},
		{UserID: 7, CourtID: 3, Date: day("2024-03-08"), StartTime: "18:00", EndTime: "19:00", DurationMinutes: 60, Amount: 100000, PaymentStatus: domain.PaymentPending, RecurringBookingID: &seriesID},
	}

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO bookings \(user_id,court_id,date,start_time,end_time,duration_minutes,amount,payment_status,recurring_booking_id\) VALUES \(\$1,.*\),\(\$10,.*\) RETURNING id, created_at, updated_at`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(101, now, now).
			AddRow(102, now, now))

	created, err := repo.CreateBulk(context.Background(), bookings)
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, int64(101), created[0].ID)
	assert.Equal(t, int64(102), created[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBulk_UniqueViolation(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectQuery(`INSERT INTO bookings`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint \"uq_bookings_active_slot\""})

	_, err := repo.Create(context.Background(), &domain.Booking{
		UserID: 7, CourtID: 3, Date: day("2024-03-01"), StartTime: "18:00", EndTime: "19:00",
		DurationMinutes: 60, Amount: 100000, PaymentStatus: domain.PaymentPending,
	})
	assert.ErrorIs(t, err, ErrSlotAlreadyBooked)
}

func TestCreateBulk_InvalidStatus(t *testing.T) {
	repo, _ := setupMock(t)

	_, err := repo.CreateBulk(context.Background(), []*domain.Booking{{PaymentStatus: "confirmed"}})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestGetByID(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectQuery(`SELECT id, user_id, court_id, date, start_time, end_time, .* FROM bookings WHERE id = \$1`).
		WithArgs(int64(101)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(bookingRow(101, "2024-03-01", domain.PaymentPaid, int64(11))...))

	b, err := repo.GetByID(context.Background(), 101)
	require.NoError(t, err)
	assert.Equal(t, int64(101), b.ID)
	assert.Equal(t, domain.PaymentPaid, b.PaymentStatus)
	assert.Equal(t, "18:00", b.StartTime.String())
	require.NotNil(t, b.RecurringBookingID)
	assert.Equal(t, int64(11), *b.RecurringBookingID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectQuery(`SELECT .* FROM bookings WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := repo.GetByID(context.Background(), 5)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetByUserID_WithStatus(t *testing.T) {
	repo, mock := setupMock(t)
	status := domain.PaymentPending

	mock.ExpectQuery(`SELECT .* FROM bookings WHERE user_id = \$1 AND payment_status = \$2 ORDER BY date DESC, start_time DESC`).
		WithArgs(int64(7), domain.PaymentPending).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(bookingRow(1, "2024-03-08", domain.PaymentPending, nil)...).
			AddRow(bookingRow(2, "2024-03-01", domain.PaymentPending, nil)...))

	list, err := repo.GetByUserID(context.Background(), 7, &status)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Nil(t, list[0].RecurringBookingID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByRecurringBookingID_LocksInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	wrapped := dbmetrics.Wrap(db, nil)
	repo := NewRepository(wrapped)

	mock.ExpectBegin()
	tx, err := wrapped.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	txCtx := dbmetrics.WithTx(context.Background(), tx)

	mock.ExpectQuery(`SELECT .* FROM bookings WHERE recurring_booking_id = \$1 ORDER BY date ASC FOR UPDATE`).
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(bookingRow(101, "2024-03-01", domain.PaymentPending, int64(11))...))

	list, err := repo.GetByRecurringBookingID(txCtx, 11)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindFirstActiveConflict(t *testing.T) {
	repo, mock := setupMock(t)

	windows := []domain.DayWindow{
		domain.DayWindowOf(day("2024-03-01")),
		domain.DayWindowOf(day("2024-03-08")),
		domain.DayWindowOf(day("2024-03-15")),
	}

	mock.ExpectQuery(`SELECT .* FROM bookings WHERE court_id = \$1 AND payment_status IN \(\$2,\$3\) AND start_time < \$4 AND end_time > \$5 AND \(\(date >= \$6 AND date < \$7\) OR \(date >= \$8 AND date < \$9\) OR \(date >= \$10 AND date < \$11\)\) ORDER BY date ASC LIMIT 1`).
		WithArgs(int64(3), "pending", "paid", "19:00", "18:00",
			windows[0].From, windows[0].To,
			windows[1].From, windows[1].To,
			windows[2].From, windows[2].To).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(bookingRow(55, "2024-03-15", domain.PaymentPaid, nil)...))

	conflict, err := repo.FindFirstActiveConflict(context.Background(), 3, "18:00", "19:00", windows)
	require.NoError(t, err)
	require.NotNil(t, conflict)
	assert.Equal(t, day("2024-03-15"), conflict.Date)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindFirstActiveConflict_None(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectQuery(`SELECT .* FROM bookings WHERE court_id = \$1`).
		WillReturnRows(sqlmock.NewRows(columns))

	conflict, err := repo.FindFirstActiveConflict(context.Background(), 3, "18:00", "19:00",
		[]domain.DayWindow{domain.DayWindowOf(day("2024-03-01"))})
	require.NoError(t, err)
	assert.Nil(t, conflict)
}

func TestFindFirstActiveConflict_NoWindowsSkipsQuery(t *testing.T) {
	repo, mock := setupMock(t)

	conflict, err := repo.FindFirstActiveConflict(context.Background(), 3, "18:00", "19:00", nil)
	require.NoError(t, err)
	assert.Nil(t, conflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePaymentStatus(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectExec(`UPDATE bookings SET payment_status = \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WithArgs(domain.PaymentPaid, int64(101)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdatePaymentStatus(context.Background(), 101, domain.PaymentPaid))

	mock.ExpectExec(`UPDATE bookings`).
		WithArgs(domain.PaymentPaid, int64(999)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdatePaymentStatus(context.Background(), 999, domain.PaymentPaid), ErrBookingNotFound)

	assert.ErrorIs(t, repo.UpdatePaymentStatus(context.Background(), 1, "bogus"), ErrInvalidStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePaymentStatusByRecurringID(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectExec(`UPDATE bookings SET payment_status = \$1, updated_at = NOW\(\) WHERE recurring_booking_id = \$2`).
		WithArgs(domain.PaymentCanceled, int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.UpdatePaymentStatusByRecurringID(context.Background(), 11, domain.PaymentCanceled)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	mock.ExpectExec(`UPDATE bookings`).WillReturnError(errors.New("connection reset"))
	_, err = repo.UpdatePaymentStatusByRecurringID(context.Background(), 11, domain.PaymentPaid)
	assert.ErrorIs(t, err, ErrExecQuery)
}

func TestCreateBulk_SerializationFailureKeepsDriverError(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectQuery(`INSERT INTO bookings`).WillReturnError(&pq.Error{Code: "40001"})

	_, err := repo.CreateBulk(context.Background(), []*domain.Booking{{
		UserID: 7, CourtID: 3, Date: day("2024-03-01"), StartTime: "18:00", EndTime: "19:00",
		DurationMinutes: 60, Amount: 100000, PaymentStatus: domain.PaymentPending,
	}})
	assert.ErrorIs(t, err, ErrExecQuery)
	assert.True(t, pgerrors.IsSerializationFailure(err))
}

func TestUpdatePaymentStatus_ReactivationHitsActiveSlotIndex(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectExec(`UPDATE bookings`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint \"uq_bookings_active_slot\""})

	err := repo.UpdatePaymentStatus(context.Background(), 101, domain.PaymentPaid)
	assert.ErrorIs(t, err, ErrSlotAlreadyBooked)
}
