// Package memstore хранилище в памяти с теми же контрактами, что и PostgreSQL репозитории.
// Используется в тестах usecase. Транзакции выполняются строго по очереди и откатываются
// восстановлением снимка. Частичный уникальный индекс активных бронирований проверяется
// при вставке и при смене статуса, занятие слотов условное.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/pkg/types"
)

// State полный снимок данных. Сравнивается через assert.Equal
type State struct {
	Courts       map[int64]domain.Court
	Schedules    map[string]domain.Schedule
	Recurring    map[int64]domain.RecurringBooking
	Bookings     map[int64]domain.Booking
	Transactions map[int64]domain.Transaction
	Tiers        []domain.DiscountTier
	NextID       int64
}

// Store хранилище в памяти
type Store struct {
	mu       sync.Mutex
	txMu     sync.Mutex // удерживается на все время транзакции
	state    State
	failures map[string]error
	now      func() time.Time
}

// New создает пустое хранилище
func New() *Store {
	return &Store{
		state: State{
			Courts:       make(map[int64]domain.Court),
			Schedules:    make(map[string]domain.Schedule),
			Recurring:    make(map[int64]domain.RecurringBooking),
			Bookings:     make(map[int64]domain.Booking),
			Transactions: make(map[int64]domain.Transaction),
			NextID:       1,
		},
		failures: make(map[string]error),
		now:      time.Now,
	}
}

// Snapshot глубокая копия текущего состояния
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *Store) restore(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st.clone()
}

// FailOn заставляет следующий вызов операции op вернуть err.
// op в формате "<repo>.<Method>", например "bookings.CreateBulk"
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *Store) failure(op string) error {
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		return err
	}
	return nil
}

func (s *Store) nextID() int64 {
	id := s.state.NextID
	s.state.NextID++
	return id
}

// AddCourt добавляет корт
func (s *Store) AddCourt(c domain.Court) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Courts[c.ID] = c
}

// AddSchedule добавляет слот расписания
func (s *Store) AddSchedule(sc domain.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc.ID == 0 {
		sc.ID = s.nextID()
	}
	sc.Date = domain.NormalizeDate(sc.Date)
	s.state.Schedules[scheduleKey(sc.CourtID, sc.Date, sc.TimeSlot)] = sc
}

// AddBooking добавляет бронирование в обход проверок (исходные данные теста)
func (s *Store) AddBooking(b domain.Booking) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = s.nextID()
	}
	b.Date = domain.NormalizeDate(b.Date)
	s.state.Bookings[b.ID] = b
	return b.ID
}

// Slot возвращает слот или false
func (s *Store) Slot(courtID int64, date time.Time, timeSlot types.TimeString) (domain.Schedule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.state.Schedules[scheduleKey(courtID, date, timeSlot)]
	return sc, ok
}

func scheduleKey(courtID int64, date time.Time, timeSlot types.TimeString) string {
	return fmt.Sprintf("%d|%s|%s", courtID, domain.NormalizeDate(date).Format(domain.DateFormat), timeSlot)
}

func (st State) clone() State {
	out := State{
		Courts:       make(map[int64]domain.Court, len(st.Courts)),
		Schedules:    make(map[string]domain.Schedule, len(st.Schedules)),
		Recurring:    make(map[int64]domain.RecurringBooking, len(st.Recurring)),
		Bookings:     make(map[int64]domain.Booking, len(st.Bookings)),
		Transactions: make(map[int64]domain.Transaction, len(st.Transactions)),
		NextID:       st.NextID,
	}
	for k, v := range st.Courts {
		out.Courts[k] = v
	}
	for k, v := range st.Schedules {
		if v.BookingID != nil {
			id := *v.BookingID
			v.BookingID = &id
		}
		out.Schedules[k] = v
	}
	for k, v := range st.Recurring {
		out.Recurring[k] = v
	}
	for k, v := range st.Bookings {
		out.Bookings[k] = v
	}
	for k, v := range st.Transactions {
		if v.PaymentMethod != nil {
			m := *v.PaymentMethod
			v.PaymentMethod = &m
		}
		out.Transactions[k] = v
	}
	if st.Tiers != nil {
		out.Tiers = append([]domain.DiscountTier(nil), st.Tiers...)
	}
	return out
}

func sortBookings(list []*domain.Booking, less func(a, b *domain.Booking) bool) {
	sort.SliceStable(list, func(i, j int) bool { return less(list[i], list[j]) })
}

type txKey struct{}

// TxManager транзакции поверх снимков: при ошибке fn состояние восстанавливается.
// Параллельные транзакции сериализуются, поэтому откат не затирает чужие изменения
type TxManager struct {
	store *Store
}

// NewTxManager создает менеджер транзакций для хранилища
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.store.txMu.Lock()
	defer m.store.txMu.Unlock()

	before := m.store.Snapshot()

	defer func() {
		if p := recover(); p != nil {
			m.store.restore(before)
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.store.restore(before)
		return err
	}

	// истекший контекст не дает зафиксировать транзакцию
	if ctxErr := ctx.Err(); ctxErr != nil {
		m.store.restore(before)
		return ctxErr
	}

	return nil
}
