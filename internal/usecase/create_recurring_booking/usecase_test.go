package create_recurring_booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/booking"
	"github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/memstore"
	scheduleRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/midtrans"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/availability"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/payments"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/pricing"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
	"github.com/m04kA/SMC-CourtBookingService/pkg/mq"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

type stubGateway struct {
	mu    sync.Mutex
	err   error
	block bool
	calls int
}

func (g *stubGateway) CreateTransaction(ctx context.Context, req *midtrans.SnapRequest) (*midtrans.SnapResponse, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if g.err != nil {
		return nil, g.err
	}
	return &midtrans.SnapResponse{
		Token:       "tok-" + req.TransactionDetails.OrderID,
		RedirectURL: "https://pay.example/" + req.TransactionDetails.OrderID,
	}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*mq.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event *mq.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes []string
}

func (m *recordingMetrics) ObserveReservation(kind, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, kind+":"+outcome)
}

type fixture struct {
	store     *memstore.Store
	gateway   *stubGateway
	publisher *recordingPublisher
	metrics   *recordingMetrics
	uc        *UseCase
}

const (
	courtID = int64(3)
	userID  = int64(7)
	friday  = 5
)

var (
	mar1  = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mar8  = mar1.AddDate(0, 0, 7)
	mar15 = mar1.AddDate(0, 0, 14)
	mar22 = mar1.AddDate(0, 0, 21)
)

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	store := memstore.New()
	store.AddCourt(domain.Court{ID: courtID, Name: "Court A", Type: "indoor", Capacity: 4})
	for _, d := range []time.Time{mar1, mar8, mar15, mar22} {
		store.AddSchedule(domain.Schedule{
			CourtID:   courtID,
			Date:      d,
			TimeSlot:  "18:00",
			Price:     100000,
			DayType:   domain.DayTypeOf(d),
			Available: true,
		})
	}

	log := logger.NewNop()
	txManager := memstore.NewTxManager(store)
	gateway := &stubGateway{}
	publisher := &recordingPublisher{}
	metrics := &recordingMetrics{}

	uc := NewUseCase(
		store.Courts(),
		store.Schedules(),
		store.Recurring(),
		store.Bookings(),
		availability.NewChecker(store.Bookings()),
		availability.NewSlotKeeper(store.Schedules(), log),
		pricing.NewService(store.Discounts(), txManager, nil, nil, nil, log),
		payments.NewInitiator(gateway, store.Transactions(), 60, log),
		publisher,
		txManager,
		metrics,
		opts,
		log,
	)

	return &fixture{store: store, gateway: gateway, publisher: publisher, metrics: metrics, uc: uc}
}

func fridaysInMarch() *Request {
	return &Request{
		UserID:    userID,
		CourtID:   courtID,
		DayOfWeek: friday,
		StartDate: mar1,
		EndDate:   mar22,
		TimeSlot:  "18:00",
	}
}

func TestExecute_CreatesWholeSeries(t *testing.T) {
	f := newFixture(t, Options{})

	resp, err := f.uc.Execute(context.Background(), fridaysInMarch())
	require.NoError(t, err)

	assert.Equal(t, 4, resp.TotalSessions)
	assert.Equal(t, int64(380000), resp.TotalPrice)
	assert.Equal(t, int64(400000), resp.Series.OriginalAmount)
	assert.Equal(t, 5, resp.Series.DiscountPercentage)
	assert.Equal(t, domain.PaymentPending, resp.Series.PaymentStatus)

	state := f.store.Snapshot()
	require.Len(t, state.Recurring, 1)
	require.Len(t, state.Bookings, 4)
	require.Len(t, state.Transactions, 1)

	for i, b := range resp.Occurrences {
		assert.Equal(t, mar1.AddDate(0, 0, 7*i), b.Date)
		assert.Equal(t, types.TimeString("19:00"), b.EndTime)
		assert.Equal(t, int64(100000), b.Amount)
		assert.Equal(t, domain.PaymentPending, b.PaymentStatus)
		require.NotNil(t, b.RecurringBookingID)
		assert.Equal(t, resp.Series.ID, *b.RecurringBookingID)

		slot, ok := f.store.Slot(courtID, b.Date, "18:00")
		require.True(t, ok)
		assert.True(t, slot.IsHeldBy(b.ID))
	}

	assert.True(t, strings.HasPrefix(resp.Payment.OrderID, "RB-"))
	assert.Equal(t, int64(380000), resp.Payment.Amount)
	assert.Equal(t, domain.TransactionPending, resp.Payment.PaymentStatus)
	require.NotNil(t, resp.Payment.RecurringBookingID)
	assert.Nil(t, resp.Payment.BookingID)
	assert.NotEmpty(t, resp.Payment.SnapToken)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, EventReservationCreated, f.publisher.events[0].Type)
	var payload createdEvent
	require.NoError(t, json.Unmarshal(f.publisher.events[0].Payload, &payload))
	assert.Equal(t, []string{"2024-03-01", "2024-03-08", "2024-03-15", "2024-03-22"}, payload.Dates)

	assert.Equal(t, []string{"recurring:success"}, f.metrics.outcomes)
}

func TestExecute_ConflictNamesFirstTakenDateAndChangesNothing(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.AddBooking(domain.Booking{
		UserID: 99, CourtID: courtID, Date: mar15, StartTime: "18:00", EndTime: "19:00",
		PaymentStatus: domain.PaymentPaid,
	})
	f.store.AddBooking(domain.Booking{
		UserID: 98, CourtID: courtID, Date: mar22, StartTime: "18:30", EndTime: "19:30",
		PaymentStatus: domain.PaymentPending,
	})
	before := f.store.Snapshot()

	_, err := f.uc.Execute(context.Background(), fridaysInMarch())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSlotConflict)

	var conflict *availability.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, mar15, conflict.Date)

	assert.Equal(t, before, f.store.Snapshot())
	assert.Zero(t, f.gateway.calls)
	assert.Empty(t, f.publisher.events)
	assert.Equal(t, []string{"recurring:conflict"}, f.metrics.outcomes)
}

func TestExecute_InactiveBookingsDoNotConflict(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.AddBooking(domain.Booking{
		UserID: 99, CourtID: courtID, Date: mar8, StartTime: "18:00", EndTime: "19:00",
		PaymentStatus: domain.PaymentCanceled,
	})

	resp, err := f.uc.Execute(context.Background(), fridaysInMarch())
	require.NoError(t, err)
	assert.Equal(t, 4, resp.TotalSessions)
}

func TestExecute_NoOccurrencesInRange(t *testing.T) {
	f := newFixture(t, Options{})
	before := f.store.Snapshot()

	req := fridaysInMarch()
	req.StartDate = mar1.AddDate(0, 0, 1)
	req.EndDate = mar1.AddDate(0, 0, 6)

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrNoOccurrences)
	assert.Equal(t, before, f.store.Snapshot())
}

func TestExecute_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Request)
		want   error
	}{
		{name: "weekday zero", mutate: func(r *Request) { r.DayOfWeek = 0 }, want: ErrInvalidInput},
		{name: "weekday eight", mutate: func(r *Request) { r.DayOfWeek = 8 }, want: ErrInvalidInput},
		{name: "inverted range", mutate: func(r *Request) { r.StartDate, r.EndDate = r.EndDate, r.StartDate }, want: ErrInvalidInput},
		{name: "bad time slot", mutate: func(r *Request) { r.TimeSlot = "25:00" }, want: ErrInvalidInput},
		{name: "slot past midnight", mutate: func(r *Request) { r.TimeSlot = "23:30" }, want: ErrInvalidInput},
		{name: "no user", mutate: func(r *Request) { r.UserID = 0 }, want: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Options{})
			req := fridaysInMarch()
			tt.mutate(req)

			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.store.Snapshot().Bookings)
		})
	}
}

func TestExecute_TooManyOccurrences(t *testing.T) {
	f := newFixture(t, Options{MaxOccurrences: 3})

	_, err := f.uc.Execute(context.Background(), fridaysInMarch())
	assert.ErrorIs(t, err, ErrTooManyOccurrences)
}

func TestExecute_CourtMissingOrDeleted(t *testing.T) {
	f := newFixture(t, Options{})

	req := fridaysInMarch()
	req.CourtID = 404
	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrCourtNotFound)

	deletedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.store.AddCourt(domain.Court{ID: courtID, Name: "Court A", DeletedAt: &deletedAt})
	_, err = f.uc.Execute(context.Background(), fridaysInMarch())
	assert.ErrorIs(t, err, ErrCourtNotFound)
	assert.Empty(t, f.store.Snapshot().Recurring)
}

func TestExecute_SlotTemplateMissing(t *testing.T) {
	f := newFixture(t, Options{})

	req := fridaysInMarch()
	req.TimeSlot = "07:00"
	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotTemplateNotFound)
}

func TestExecute_PaymentFailureRollsBackEverything(t *testing.T) {
	f := newFixture(t, Options{})
	f.gateway.err = midtrans.ErrUnauthorized
	before := f.store.Snapshot()

	_, err := f.uc.Execute(context.Background(), fridaysInMarch())
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, before, f.store.Snapshot())
	assert.Empty(t, f.publisher.events)
	assert.Equal(t, []string{"recurring:error"}, f.metrics.outcomes)
}

func TestExecute_StorageFailureMidwayRollsBack(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.FailOn("schedules.ClaimSlot", errors.New("connection reset"))
	before := f.store.Snapshot()

	_, err := f.uc.Execute(context.Background(), fridaysInMarch())
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, before, f.store.Snapshot())
}

func TestExecute_SlotTakenWithoutBookingRowIsConflict(t *testing.T) {
	f := newFixture(t, Options{})
	other := int64(500)
	f.store.AddSchedule(domain.Schedule{
		CourtID: courtID, Date: mar22, TimeSlot: "18:00", Price: 100000,
		DayType: domain.DayTypeWeekday, Available: false, BookingID: &other,
	})
	before := f.store.Snapshot()

	_, err := f.uc.Execute(context.Background(), fridaysInMarch())

	var conflict *availability.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, mar22, conflict.Date)
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Equal(t, before, f.store.Snapshot())
}

func TestExecute_MissingScheduleRowIsTolerated(t *testing.T) {
	f := newFixture(t, Options{})

	req := fridaysInMarch()
	req.EndDate = mar22.AddDate(0, 0, 7)

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 5, resp.TotalSessions)
	assert.Equal(t, 5, resp.Series.DiscountPercentage)
}

func TestExecute_TimeoutRollsBack(t *testing.T) {
	f := newFixture(t, Options{BaseTimeout: 20 * time.Millisecond, PerOccurrenceTimeout: time.Millisecond})
	f.gateway.block = true
	before := f.store.Snapshot()

	_, err := f.uc.Execute(context.Background(), fridaysInMarch())
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, before, f.store.Snapshot())
}

func TestExecute_SixteenSessionsGetTopTier(t *testing.T) {
	f := newFixture(t, Options{})

	req := fridaysInMarch()
	req.EndDate = mar1.AddDate(0, 0, 7*15)

	resp, err := f.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 16, resp.TotalSessions)
	assert.Equal(t, 15, resp.Quote.DiscountPercentage)
	assert.Equal(t, int64(1600000), resp.Quote.OriginalTotal)
	assert.Equal(t, int64(1360000), resp.TotalPrice)
}

func TestExecute_SecondIdenticalRequestConflicts(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := f.uc.Execute(context.Background(), fridaysInMarch())
	require.NoError(t, err)
	after := f.store.Snapshot()

	_, err = f.uc.Execute(context.Background(), fridaysInMarch())
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Equal(t, after, f.store.Snapshot())
}

func TestExecute_SerializationFailureIsConflict(t *testing.T) {
	serialization := &pq.Error{Code: "40001", Message: "could not serialize access due to concurrent update"}
	failures := map[string]error{
		"schedules.ClaimSlot": fmt.Errorf("%w: ClaimSlot - execute update: %w", scheduleRepo.ErrExecQuery, serialization),
		"bookings.CreateBulk": fmt.Errorf("%w: CreateBulk - execute insert: %w", bookingRepo.ErrExecQuery, serialization),
		"transactions.Create": serialization,
		"recurring.Create":    serialization,
	}

	for op, failure := range failures {
		t.Run(op, func(t *testing.T) {
			f := newFixture(t, Options{})
			f.store.FailOn(op, failure)
			before := f.store.Snapshot()

			_, err := f.uc.Execute(context.Background(), fridaysInMarch())
			assert.ErrorIs(t, err, ErrSlotConflict)
			assert.NotErrorIs(t, err, ErrInternal)
			assert.Equal(t, before, f.store.Snapshot())
			assert.Equal(t, []string{"recurring:conflict"}, f.metrics.outcomes)
		})
	}
}

func TestExecute_ConcurrentRequestsForSameSlotYieldOneSeries(t *testing.T) {
	f := newFixture(t, Options{})
	const attempts = 4

	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make([]error, attempts)
	responses := make([]*Response, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			req := fridaysInMarch()
			req.UserID = userID + int64(i)
			responses[i], errs[i] = f.uc.Execute(context.Background(), req)
		}(i)
	}
	close(start)
	wg.Wait()

	var winner *Response
	for i, err := range errs {
		if err == nil {
			require.Nil(t, winner, "more than one reservation succeeded")
			winner = responses[i]
			continue
		}
		assert.ErrorIs(t, err, ErrSlotConflict)
	}
	require.NotNil(t, winner)
	assert.Equal(t, 4, winner.TotalSessions)

	state := f.store.Snapshot()
	assert.Len(t, state.Recurring, 1)
	assert.Len(t, state.Bookings, 4)
	assert.Len(t, state.Transactions, 1)
	for _, d := range []time.Time{mar1, mar8, mar15, mar22} {
		slot, ok := f.store.Slot(courtID, d, "18:00")
		require.True(t, ok)
		require.NotNil(t, slot.BookingID)
		assert.Equal(t, winner.Series.ID, *state.Bookings[*slot.BookingID].RecurringBookingID)
	}
}
