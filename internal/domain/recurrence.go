package domain

import (
	"errors"
	"time"
)

var (
	// ErrInvalidWeekday день недели вне диапазона 1..7
	ErrInvalidWeekday = errors.New("domain: weekday must be between 1 (Monday) and 7 (Sunday)")

	// ErrInvalidDateRange дата начала позже даты окончания
	ErrInvalidDateRange = errors.New("domain: start date is after end date")
)

// NormalizeDate отбрасывает время суток, возвращает календарный день в UTC
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ISOWeekday день недели в нумерации 1=понедельник .. 7=воскресенье
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// OccurrenceDates возвращает все даты с днем недели weekday в [start, end] по возрастанию
// Пустой результат не ошибка: вызывающий сам решает, как на него реагировать
func OccurrenceDates(weekday int, start, end time.Time) ([]time.Time, error) {
	if weekday < 1 || weekday > 7 {
		return nil, ErrInvalidWeekday
	}

	from := NormalizeDate(start)
	to := NormalizeDate(end)
	if from.After(to) {
		return nil, ErrInvalidDateRange
	}

	offset := (weekday - ISOWeekday(from) + 7) % 7
	dates := make([]time.Time, 0, int(to.Sub(from).Hours()/24/7)+1)
	for d := from.AddDate(0, 0, offset); !d.After(to); d = d.AddDate(0, 0, 7) {
		dates = append(dates, d)
	}

	return dates, nil
}

// DayWindow полуинтервал [начало дня, начало следующего дня)
type DayWindow struct {
	From time.Time
	To   time.Time
}

// DayWindowOf окно для календарного дня даты
func DayWindowOf(date time.Time) DayWindow {
	from := NormalizeDate(date)
	return DayWindow{From: from, To: from.AddDate(0, 0, 1)}
}
