package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/booking"
)

var mar1 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func pending(date time.Time) *domain.Booking {
	return &domain.Booking{UserID: 7, CourtID: 3, Date: date, StartTime: "18:00", EndTime: "19:00", PaymentStatus: domain.PaymentPending}
}

func TestTxManager_RollbackRestoresSnapshot(t *testing.T) {
	store := New()
	store.AddSchedule(domain.Schedule{CourtID: 3, Date: mar1, TimeSlot: "18:00", Available: true})
	before := store.Snapshot()

	err := NewTxManager(store).DoSerializable(context.Background(), func(ctx context.Context) error {
		created, err := store.Bookings().CreateBulk(ctx, []*domain.Booking{pending(mar1)})
		require.NoError(t, err)
		ok, err := store.Schedules().ClaimSlot(ctx, 3, mar1, "18:00", created[0].ID)
		require.NoError(t, err)
		require.True(t, ok)
		return errors.New("abort")
	})
	require.Error(t, err)
	assert.Equal(t, before, store.Snapshot())
}

func TestTxManager_ExpiredContextRollsBack(t *testing.T) {
	store := New()
	before := store.Snapshot()

	ctx, cancel := context.WithCancel(context.Background())
	err := NewTxManager(store).Do(ctx, func(ctx context.Context) error {
		_, err := store.Bookings().Create(ctx, pending(mar1))
		cancel()
		return err
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, before, store.Snapshot())
}

func TestCreateBulk_ActiveSlotIsUnique(t *testing.T) {
	store := New()
	_, err := store.Bookings().Create(context.Background(), pending(mar1))
	require.NoError(t, err)

	_, err = store.Bookings().CreateBulk(context.Background(), []*domain.Booking{pending(mar1.AddDate(0, 0, 7)), pending(mar1)})
	assert.ErrorIs(t, err, bookingRepo.ErrSlotAlreadyBooked)
	assert.Len(t, store.Snapshot().Bookings, 1)

	canceled := pending(mar1)
	canceled.PaymentStatus = domain.PaymentCanceled
	_, err = store.Bookings().Create(context.Background(), canceled)
	assert.NoError(t, err)
}

func TestClaimSlot_Conditional(t *testing.T) {
	store := New()
	store.AddSchedule(domain.Schedule{CourtID: 3, Date: mar1, TimeSlot: "18:00", Available: true})
	repo := store.Schedules()

	ok, err := repo.ClaimSlot(context.Background(), 3, mar1, "18:00", 10)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = repo.ClaimSlot(context.Background(), 3, mar1, "18:00", 10)
	assert.True(t, ok, "re-claim by holder")

	ok, _ = repo.ClaimSlot(context.Background(), 3, mar1, "18:00", 11)
	assert.False(t, ok)

	n, err := repo.ReleaseSlots(context.Background(), []int64{11})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, _ = repo.ReleaseSlots(context.Background(), []int64{10})
	assert.Equal(t, int64(1), n)
	slot, _ := store.Slot(3, mar1, "18:00")
	assert.True(t, slot.Available)
	assert.Nil(t, slot.BookingID)
}

func TestUpdatePaymentStatus_ReactivationRespectsActiveSlotIndex(t *testing.T) {
	store := New()
	ctx := context.Background()
	seriesID := int64(50)

	first := pending(mar1)
	first.PaymentStatus = domain.PaymentCanceled
	first.RecurringBookingID = &seriesID
	second := pending(mar1.AddDate(0, 0, 7))
	second.PaymentStatus = domain.PaymentCanceled
	second.RecurringBookingID = &seriesID
	created, err := store.Bookings().CreateBulk(ctx, []*domain.Booking{first, second})
	require.NoError(t, err)

	rebooked := pending(mar1.AddDate(0, 0, 7))
	rebooked.UserID = 99
	_, err = store.Bookings().Create(ctx, rebooked)
	require.NoError(t, err)
	before := store.Snapshot()

	_, err = store.Bookings().UpdatePaymentStatusByRecurringID(ctx, seriesID, domain.PaymentPaid)
	assert.ErrorIs(t, err, bookingRepo.ErrSlotAlreadyBooked)
	assert.Equal(t, before, store.Snapshot())

	err = store.Bookings().UpdatePaymentStatus(ctx, created[1].ID, domain.PaymentPaid)
	assert.ErrorIs(t, err, bookingRepo.ErrSlotAlreadyBooked)

	require.NoError(t, store.Bookings().UpdatePaymentStatus(ctx, created[0].ID, domain.PaymentPaid))

	n, err := store.Bookings().UpdatePaymentStatusByRecurringID(ctx, seriesID, domain.PaymentRefunded)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestTxManager_SerializesConcurrentTransactions(t *testing.T) {
	store := New()
	manager := NewTxManager(store)

	entered := make(chan struct{})
	release := make(chan struct{})
	firstDone := make(chan error, 1)

	go func() {
		firstDone <- manager.DoSerializable(context.Background(), func(ctx context.Context) error {
			if _, err := store.Bookings().Create(ctx, pending(mar1)); err != nil {
				return err
			}
			close(entered)
			<-release
			return errors.New("abort")
		})
	}()

	<-entered
	secondDone := make(chan error, 1)
	go func() {
		secondDone <- manager.DoSerializable(context.Background(), func(ctx context.Context) error {
			_, err := store.Bookings().Create(ctx, pending(mar1.AddDate(0, 0, 7)))
			return err
		})
	}()

	select {
	case <-secondDone:
		t.Fatal("second transaction ran while the first one was open")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	require.Error(t, <-firstDone)
	require.NoError(t, <-secondDone)

	bookings := store.Snapshot().Bookings
	require.Len(t, bookings, 1)
	for _, b := range bookings {
		assert.Equal(t, mar1.AddDate(0, 0, 7), b.Date)
	}
}
