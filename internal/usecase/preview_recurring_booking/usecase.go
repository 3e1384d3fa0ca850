package preview_recurring_booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	courtRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/court"
	scheduleRepo "github.com/m04kA/SMC-CourtBookingService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-CourtBookingService/pkg/cache"
)

// UseCase предпросмотр серии: даты и стоимость без побочных эффектов
type UseCase struct {
	courtRepo    CourtRepository
	scheduleRepo ScheduleRepository
	discounts    DiscountProvider
	cache        Cache
	ttl          time.Duration
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
// cache может быть cache.NopCache, тогда каждый запрос считается заново
func NewUseCase(
	courtRepo CourtRepository,
	scheduleRepo ScheduleRepository,
	discounts DiscountProvider,
	c Cache,
	ttl time.Duration,
	logger Logger,
) *UseCase {
	if c == nil {
		c = cache.NopCache{}
	}

	return &UseCase{
		courtRepo:    courtRepo,
		scheduleRepo: scheduleRepo,
		discounts:    discounts,
		cache:        c,
		ttl:          ttl,
		logger:       logger,
	}
}

// Execute выполняет use case предпросмотра
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("PreviewRecurringBooking: validation failed: %v", err)
		return nil, err
	}

	key, cacheable := uc.cacheKey(ctx, req)
	if cacheable {
		if cached, ok := uc.fromCache(ctx, key); ok {
			return cached, nil
		}
	}

	court, err := uc.courtRepo.GetByID(ctx, req.CourtID)
	if err != nil {
		if errors.Is(err, courtRepo.ErrCourtNotFound) {
			return nil, ErrCourtNotFound
		}
		uc.logger.Error("PreviewRecurringBooking: failed to get court id=%d: %v", req.CourtID, err)
		return nil, fmt.Errorf("%w: get court: %v", ErrInternal, err)
	}
	if court.IsDeleted() {
		return nil, ErrCourtNotFound
	}

	dates, err := domain.OccurrenceDates(req.DayOfWeek, req.StartDate, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("%w: no dates with dayOfWeek=%d between %s and %s", ErrNoOccurrences,
			req.DayOfWeek, req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))
	}

	template, err := uc.scheduleRepo.GetTemplate(ctx, req.CourtID, req.TimeSlot)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			return nil, ErrSlotTemplateNotFound
		}
		uc.logger.Error("PreviewRecurringBooking: failed to get slot template: %v", err)
		return nil, fmt.Errorf("%w: get slot template: %v", ErrInternal, err)
	}

	table, err := uc.discounts.GetDiscountTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: get discount table: %v", ErrInternal, err)
	}
	quote := table.Quote(template.Price, len(dates))

	resp := &Response{
		CourtID:            req.CourtID,
		TimeSlot:           req.TimeSlot.String(),
		Dates:              make([]string, 0, len(dates)),
		TotalSessions:      quote.Sessions,
		PricePerSession:    quote.PricePerSession,
		OriginalTotalPrice: quote.OriginalTotal,
		DiscountPercentage: quote.DiscountPercentage,
		DiscountAmount:     quote.DiscountAmount,
		TotalPrice:         quote.FinalTotal,
	}
	for _, d := range dates {
		resp.Dates = append(resp.Dates, d.Format(domain.DateFormat))
	}

	if cacheable {
		uc.toCache(ctx, key, resp)
	}

	return resp, nil
}

// cacheKey ключ записи для текущей версии цен
// Возвращает false, если кэш выключен или недоступен
func (uc *UseCase) cacheKey(ctx context.Context, req *Request) (string, bool) {
	if uc.ttl <= 0 {
		return "", false
	}

	var generation int64
	raw, err := uc.cache.Get(ctx, domain.PricingGenerationKey)
	switch {
	case errors.Is(err, cache.ErrMiss):
	case err != nil:
		uc.logger.Warn("PreviewRecurringBooking: cache unavailable: %v", err)
		return "", false
	default:
		generation, err = strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			uc.logger.Warn("PreviewRecurringBooking: broken pricing generation %q: %v", raw, err)
			return "", false
		}
	}

	return req.cacheKey(generation), true
}

func (uc *UseCase) fromCache(ctx context.Context, key string) (*Response, bool) {
	raw, err := uc.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			uc.logger.Warn("PreviewRecurringBooking: cache get failed: %v", err)
		}
		return nil, false
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		uc.logger.Warn("PreviewRecurringBooking: broken cache entry %s: %v", key, err)
		return nil, false
	}
	return &resp, true
}

func (uc *UseCase) toCache(ctx context.Context, key string, resp *Response) {
	if uc.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := uc.cache.Set(ctx, key, raw, uc.ttl); err != nil {
		uc.logger.Warn("PreviewRecurringBooking: cache set failed: %v", err)
	}
}
