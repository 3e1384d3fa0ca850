package memstore

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/booking"
	courtRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/court"
	recurringRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/recurring"
	scheduleRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/schedule"
	transactionRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/transaction"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// Courts репозиторий кортов
func (s *Store) Courts() *CourtRepo { return &CourtRepo{s: s} }

// Schedules репозиторий расписания
func (s *Store) Schedules() *ScheduleRepo { return &ScheduleRepo{s: s} }

// Recurring репозиторий серий
func (s *Store) Recurring() *RecurringRepo { return &RecurringRepo{s: s} }

// Bookings репозиторий бронирований
func (s *Store) Bookings() *BookingRepo { return &BookingRepo{s: s} }

// Transactions репозиторий платежных записей
func (s *Store) Transactions() *TransactionRepo { return &TransactionRepo{s: s} }

// Discounts репозиторий ступеней скидок
func (s *Store) Discounts() *DiscountRepo { return &DiscountRepo{s: s} }

type CourtRepo struct{ s *Store }

func (r *CourtRepo) GetByID(_ context.Context, id int64) (*domain.Court, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("courts.GetByID"); err != nil {
		return nil, err
	}
	c, ok := r.s.state.Courts[id]
	if !ok {
		return nil, courtRepo.ErrCourtNotFound
	}
	return &c, nil
}

type ScheduleRepo struct{ s *Store }

func (r *ScheduleRepo) GetTemplate(_ context.Context, courtID int64, timeSlot types.TimeString) (*domain.Schedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("schedules.GetTemplate"); err != nil {
		return nil, err
	}
	var found *domain.Schedule
	for _, sc := range r.s.state.Schedules {
		if sc.CourtID != courtID || sc.TimeSlot != timeSlot {
			continue
		}
		if found == nil || sc.Date.Before(found.Date) {
			c := sc
			found = &c
		}
	}
	if found == nil {
		return nil, scheduleRepo.ErrScheduleNotFound
	}
	return found, nil
}

func (r *ScheduleRepo) GetSlot(_ context.Context, courtID int64, date time.Time, timeSlot types.TimeString) (*domain.Schedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sc, ok := r.s.state.Schedules[scheduleKey(courtID, date, timeSlot)]
	if !ok {
		return nil, scheduleRepo.ErrScheduleNotFound
	}
	return &sc, nil
}

func (r *ScheduleRepo) GetByCourtAndDate(_ context.Context, courtID int64, date time.Time) ([]*domain.Schedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	day := domain.NormalizeDate(date)
	out := make([]*domain.Schedule, 0)
	for _, sc := range r.s.state.Schedules {
		if sc.CourtID == courtID && sc.Date.Equal(day) {
			c := sc
			out = append(out, &c)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].TimeSlot.IsBefore(out[j-1].TimeSlot); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func (r *ScheduleRepo) ClaimSlot(_ context.Context, courtID int64, date time.Time, timeSlot types.TimeString, bookingID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("schedules.ClaimSlot"); err != nil {
		return false, err
	}
	key := scheduleKey(courtID, date, timeSlot)
	sc, ok := r.s.state.Schedules[key]
	if !ok {
		return false, nil
	}
	if !sc.Available && (sc.BookingID == nil || *sc.BookingID != bookingID) {
		return false, nil
	}
	id := bookingID
	sc.Available = false
	sc.BookingID = &id
	r.s.state.Schedules[key] = sc
	return true, nil
}

func (r *ScheduleRepo) ReleaseSlots(_ context.Context, bookingIDs []int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("schedules.ReleaseSlots"); err != nil {
		return 0, err
	}
	ids := make(map[int64]struct{}, len(bookingIDs))
	for _, id := range bookingIDs {
		ids[id] = struct{}{}
	}
	var n int64
	for key, sc := range r.s.state.Schedules {
		if sc.BookingID == nil {
			continue
		}
		if _, ok := ids[*sc.BookingID]; !ok {
			continue
		}
		sc.Available = true
		sc.BookingID = nil
		r.s.state.Schedules[key] = sc
		n++
	}
	return n, nil
}

type RecurringRepo struct{ s *Store }

func (r *RecurringRepo) Create(_ context.Context, rb *domain.RecurringBooking) (*domain.RecurringBooking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("recurring.Create"); err != nil {
		return nil, err
	}
	if !rb.PaymentStatus.IsValid() {
		return nil, recurringRepo.ErrInvalidStatus
	}
	rb.ID = r.s.nextID()
	rb.CreatedAt = r.s.now()
	rb.UpdatedAt = rb.CreatedAt
	r.s.state.Recurring[rb.ID] = *rb
	return rb, nil
}

func (r *RecurringRepo) GetByID(_ context.Context, id int64) (*domain.RecurringBooking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rb, ok := r.s.state.Recurring[id]
	if !ok {
		return nil, recurringRepo.ErrRecurringBookingNotFound
	}
	return &rb, nil
}

func (r *RecurringRepo) UpdatePaymentStatus(_ context.Context, id int64, status domain.PaymentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("recurring.UpdatePaymentStatus"); err != nil {
		return err
	}
	rb, ok := r.s.state.Recurring[id]
	if !ok {
		return recurringRepo.ErrRecurringBookingNotFound
	}
	rb.PaymentStatus = status
	r.s.state.Recurring[id] = rb
	return nil
}

type BookingRepo struct{ s *Store }

func (r *BookingRepo) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	created, err := r.CreateBulk(ctx, []*domain.Booking{b})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

// CreateBulk вставляет все или ничего, повторяя частичный уникальный индекс активных бронирований
func (r *BookingRepo) CreateBulk(_ context.Context, bookings []*domain.Booking) ([]*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("bookings.CreateBulk"); err != nil {
		return nil, err
	}

	taken := make(map[string]struct{})
	for _, b := range r.s.state.Bookings {
		if b.IsActive() {
			taken[scheduleKey(b.CourtID, b.Date, b.StartTime)] = struct{}{}
		}
	}
	for _, b := range bookings {
		if !b.PaymentStatus.IsValid() {
			return nil, bookingRepo.ErrInvalidStatus
		}
		if !b.IsActive() {
			continue
		}
		key := scheduleKey(b.CourtID, b.Date, b.StartTime)
		if _, dup := taken[key]; dup {
			return nil, fmt.Errorf("%w: CreateBulk - %s", bookingRepo.ErrSlotAlreadyBooked, key)
		}
		taken[key] = struct{}{}
	}

	now := r.s.now()
	for _, b := range bookings {
		b.ID = r.s.nextID()
		b.Date = domain.NormalizeDate(b.Date)
		b.CreatedAt = now
		b.UpdatedAt = now
		r.s.state.Bookings[b.ID] = *b
	}
	return bookings, nil
}

func (r *BookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.state.Bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return &b, nil
}

func (r *BookingRepo) GetByUserID(_ context.Context, userID int64, status *domain.PaymentStatus) ([]*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Booking, 0)
	for _, b := range r.s.state.Bookings {
		if b.UserID != userID || (status != nil && b.PaymentStatus != *status) {
			continue
		}
		c := b
		out = append(out, &c)
	}
	sortBookings(out, func(a, b *domain.Booking) bool { return a.Date.After(b.Date) })
	return out, nil
}

func (r *BookingRepo) GetByRecurringBookingID(_ context.Context, recurringID int64) ([]*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Booking, 0)
	for _, b := range r.s.state.Bookings {
		if b.RecurringBookingID != nil && *b.RecurringBookingID == recurringID {
			c := b
			out = append(out, &c)
		}
	}
	sortBookings(out, func(a, b *domain.Booking) bool { return a.Date.Before(b.Date) })
	return out, nil
}

func (r *BookingRepo) GetByCourtWithFilter(_ context.Context, filter domain.CourtBookingsFilter) ([]*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Booking, 0)
	for _, b := range r.s.state.Bookings {
		if b.CourtID != filter.CourtID {
			continue
		}
		if filter.StartDate != nil && b.Date.Before(domain.NormalizeDate(*filter.StartDate)) {
			continue
		}
		if filter.EndDate != nil && b.Date.After(domain.NormalizeDate(*filter.EndDate)) {
			continue
		}
		if filter.Status != nil {
			if b.PaymentStatus != *filter.Status {
				continue
			}
		} else if !filter.IncludeInactive && !b.IsActive() {
			continue
		}
		c := b
		out = append(out, &c)
	}
	sortBookings(out, func(a, b *domain.Booking) bool {
		if a.Date.Equal(b.Date) {
			return a.StartTime.IsBefore(b.StartTime)
		}
		return a.Date.Before(b.Date)
	})
	return out, nil
}

func (r *BookingRepo) FindFirstActiveConflict(_ context.Context, courtID int64, startTime, endTime types.TimeString, windows []domain.DayWindow) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("bookings.FindFirstActiveConflict"); err != nil {
		return nil, err
	}
	var first *domain.Booking
	for _, b := range r.s.state.Bookings {
		if b.CourtID != courtID || !b.IsActive() {
			continue
		}
		if !b.StartTime.IsBefore(endTime) || !b.EndTime.IsAfter(startTime) {
			continue
		}
		inWindow := false
		for _, w := range windows {
			if !b.Date.Before(w.From) && b.Date.Before(w.To) {
				inWindow = true
				break
			}
		}
		if inWindow && (first == nil || b.Date.Before(first.Date)) {
			c := b
			first = &c
		}
	}
	return first, nil
}

func (r *BookingRepo) UpdatePaymentStatus(_ context.Context, id int64, status domain.PaymentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("bookings.UpdatePaymentStatus"); err != nil {
		return err
	}
	if !status.IsValid() {
		return bookingRepo.ErrInvalidStatus
	}
	b, ok := r.s.state.Bookings[id]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	if status.IsActive() && !b.IsActive() {
		if holder, taken := r.s.activeHolder(b, map[int64]struct{}{id: {}}); taken {
			return fmt.Errorf("%w: UpdatePaymentStatus - booking=%d, holder=%d", bookingRepo.ErrSlotAlreadyBooked, id, holder)
		}
	}
	b.PaymentStatus = status
	r.s.state.Bookings[id] = b
	return nil
}

func (r *BookingRepo) UpdatePaymentStatusByRecurringID(_ context.Context, recurringID int64, status domain.PaymentStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("bookings.UpdatePaymentStatusByRecurringID"); err != nil {
		return 0, err
	}
	if !status.IsValid() {
		return 0, bookingRepo.ErrInvalidStatus
	}
	members := make(map[int64]struct{})
	for id, b := range r.s.state.Bookings {
		if b.RecurringBookingID != nil && *b.RecurringBookingID == recurringID {
			members[id] = struct{}{}
		}
	}

	if status.IsActive() {
		for id := range members {
			b := r.s.state.Bookings[id]
			if b.IsActive() {
				continue
			}
			if holder, taken := r.s.activeHolder(b, members); taken {
				return 0, fmt.Errorf("%w: UpdatePaymentStatusByRecurringID - booking=%d, holder=%d",
					bookingRepo.ErrSlotAlreadyBooked, id, holder)
			}
		}
	}

	for id := range members {
		b := r.s.state.Bookings[id]
		b.PaymentStatus = status
		r.s.state.Bookings[id] = b
	}
	return int64(len(members)), nil
}

// activeHolder ищет другое активное бронирование того же слота, как частичный уникальный индекс.
// Вызывается под s.mu
func (s *Store) activeHolder(b domain.Booking, except map[int64]struct{}) (int64, bool) {
	key := scheduleKey(b.CourtID, b.Date, b.StartTime)
	for id, other := range s.state.Bookings {
		if _, skip := except[id]; skip || !other.IsActive() {
			continue
		}
		if scheduleKey(other.CourtID, other.Date, other.StartTime) == key {
			return id, true
		}
	}
	return 0, false
}

type TransactionRepo struct{ s *Store }

func (r *TransactionRepo) Create(_ context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("transactions.Create"); err != nil {
		return nil, err
	}
	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("%w: Create - %v", transactionRepo.ErrInvalidReference, err)
	}
	for _, existing := range r.s.state.Transactions {
		if existing.OrderID == tx.OrderID {
			return nil, transactionRepo.ErrDuplicateOrderID
		}
	}
	tx.ID = r.s.nextID()
	tx.CreatedAt = r.s.now()
	tx.UpdatedAt = tx.CreatedAt
	r.s.state.Transactions[tx.ID] = *tx
	return tx, nil
}

func (r *TransactionRepo) GetByOrderID(_ context.Context, orderID string) (*domain.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, tx := range r.s.state.Transactions {
		if tx.OrderID == orderID {
			c := tx
			return &c, nil
		}
	}
	return nil, transactionRepo.ErrTransactionNotFound
}

func (r *TransactionRepo) UpdateStatus(_ context.Context, id int64, status domain.TransactionStatus, paymentMethod *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("transactions.UpdateStatus"); err != nil {
		return err
	}
	tx, ok := r.s.state.Transactions[id]
	if !ok {
		return transactionRepo.ErrTransactionNotFound
	}
	tx.PaymentStatus = status
	if paymentMethod != nil {
		m := *paymentMethod
		tx.PaymentMethod = &m
	}
	r.s.state.Transactions[id] = tx
	return nil
}

func (r *TransactionRepo) SetSnapToken(_ context.Context, id int64, token, url string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.failure("transactions.SetSnapToken"); err != nil {
		return err
	}
	tx, ok := r.s.state.Transactions[id]
	if !ok {
		return transactionRepo.ErrTransactionNotFound
	}
	tx.SnapToken = token
	tx.SnapURL = url
	r.s.state.Transactions[id] = tx
	return nil
}

type DiscountRepo struct{ s *Store }

func (r *DiscountRepo) GetAll(_ context.Context) ([]domain.DiscountTier, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]domain.DiscountTier{}, r.s.state.Tiers...), nil
}

func (r *DiscountRepo) ReplaceAll(_ context.Context, tiers []domain.DiscountTier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.state.Tiers = append([]domain.DiscountTier(nil), tiers...)
	return nil
}
