package domain

import (
	"errors"
	"fmt"
	"sort"
)

// PricingGenerationKey ключ счетчика версий цен в кэше.
// Увеличивается при каждой замене таблицы скидок
const PricingGenerationKey = "pricing:generation"

// ErrInvalidDiscountTier некорректная ступень скидки
var ErrInvalidDiscountTier = errors.New("domain: invalid discount tier")

// DiscountTier ступень скидки: от MinSessions сессий скидка Percentage процентов
type DiscountTier struct {
	MinSessions int
	Percentage  int
}

// DiscountTable упорядоченная по убыванию MinSessions таблица скидок
type DiscountTable struct {
	tiers []DiscountTier
}

// DefaultDiscountTiers таблица скидок по умолчанию
var DefaultDiscountTiers = []DiscountTier{
	{MinSessions: 16, Percentage: 15},
	{MinSessions: 8, Percentage: 10},
	{MinSessions: 4, Percentage: 5},
}

// NewDiscountTable проверяет ступени и сортирует их
func NewDiscountTable(tiers []DiscountTier) (*DiscountTable, error) {
	sorted := make([]DiscountTier, len(tiers))
	copy(sorted, tiers)

	seen := make(map[int]struct{}, len(sorted))
	for _, t := range sorted {
		if t.MinSessions <= 0 {
			return nil, fmt.Errorf("%w: min sessions must be positive, got %d", ErrInvalidDiscountTier, t.MinSessions)
		}
		if t.Percentage < 0 || t.Percentage > 100 {
			return nil, fmt.Errorf("%w: percentage must be in [0, 100], got %d", ErrInvalidDiscountTier, t.Percentage)
		}
		if _, dup := seen[t.MinSessions]; dup {
			return nil, fmt.Errorf("%w: duplicate min sessions %d", ErrInvalidDiscountTier, t.MinSessions)
		}
		seen[t.MinSessions] = struct{}{}
	}

	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinSessions > sorted[j].MinSessions })

	return &DiscountTable{tiers: sorted}, nil
}

// DefaultDiscountTable таблица {16:15, 8:10, 4:5}
func DefaultDiscountTable() *DiscountTable {
	table, _ := NewDiscountTable(DefaultDiscountTiers)
	return table
}

// Tiers копия ступеней по убыванию MinSessions
func (t *DiscountTable) Tiers() []DiscountTier {
	out := make([]DiscountTier, len(t.tiers))
	copy(out, t.tiers)
	return out
}

// PercentageFor процент скидки для количества сессий
func (t *DiscountTable) PercentageFor(sessions int) int {
	for _, tier := range t.tiers {
		if sessions >= tier.MinSessions {
			return tier.Percentage
		}
	}
	return 0
}

// PriceQuote расчет стоимости серии
type PriceQuote struct {
	PricePerSession    int64
	Sessions           int
	OriginalTotal      int64
	DiscountPercentage int
	DiscountAmount     int64
	FinalTotal         int64
}

// Quote считает стоимость: скидка округляется вниз до целой минимальной единицы
func (t *DiscountTable) Quote(pricePerSession int64, sessions int) PriceQuote {
	if sessions < 0 {
		sessions = 0
	}
	original := pricePerSession * int64(sessions)
	pct := t.PercentageFor(sessions)
	discount := original * int64(pct) / 100

	return PriceQuote{
		PricePerSession:    pricePerSession,
		Sessions:           sessions,
		OriginalTotal:      original,
		DiscountPercentage: pct,
		DiscountAmount:     discount,
		FinalTotal:         original - discount,
	}
}
