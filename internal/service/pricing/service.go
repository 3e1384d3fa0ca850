package pricing

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/pricing/models"
)

// Service сервис таблицы скидок за количество сессий
// Таблица хранится в БД, при пустой таблице используется значение из конфигурации
type Service struct {
	discountRepo DiscountRepository
	txManager    TransactionManager
	access       AccessPolicy
	fallback     *domain.DiscountTable
	generations  GenerationCounter
	logger       Logger
}

// NewService создает новый экземпляр сервиса скидок
func NewService(
	discountRepo DiscountRepository,
	txManager TransactionManager,
	access AccessPolicy,
	fallback *domain.DiscountTable,
	generations GenerationCounter,
	logger Logger,
) *Service {
	if fallback == nil {
		fallback = domain.DefaultDiscountTable()
	}

	return &Service{
		discountRepo: discountRepo,
		txManager:    txManager,
		access:       access,
		fallback:     fallback,
		generations:  generations,
		logger:       logger,
	}
}

// GetDiscountTable возвращает действующую таблицу скидок
func (s *Service) GetDiscountTable(ctx context.Context) (*domain.DiscountTable, error) {
	tiers, err := s.discountRepo.GetAll(ctx)
	if err != nil {
		s.logger.Error("GetDiscountTable: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetDiscountTable - repository error: %w", ErrInternal, err)
	}

	if len(tiers) == 0 {
		return s.fallback, nil
	}

	table, err := domain.NewDiscountTable(tiers)
	if err != nil {
		s.logger.Error("GetDiscountTable: stored tiers are invalid, using fallback: %v", err)
		return s.fallback, nil
	}

	return table, nil
}

// GetTiers возвращает таблицу скидок для API
func (s *Service) GetTiers(ctx context.Context) (*models.DiscountTiersResponse, error) {
	table, err := s.GetDiscountTable(ctx)
	if err != nil {
		return nil, err
	}

	return models.FromDomainTable(table), nil
}

// ReplaceTiers заменяет таблицу скидок целиком
// Доступно только администраторам
func (s *Service) ReplaceTiers(ctx context.Context, req *models.ReplaceTiersRequest) (*models.DiscountTiersResponse, error) {
	s.logger.Info("ReplaceTiers: user=%d, tiers=%d", req.UserID, len(req.Tiers))

	if !s.access.IsAdmin(req.UserID) {
		s.logger.Warn("ReplaceTiers: user=%d is not an admin", req.UserID)
		return nil, ErrAccessDenied
	}

	table, err := domain.NewDiscountTable(req.ToDomainTiers())
	if err != nil {
		s.logger.Warn("ReplaceTiers: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		return s.discountRepo.ReplaceAll(txCtx, table.Tiers())
	})
	if err != nil {
		s.logger.Error("ReplaceTiers: repository error: %v", err)
		return nil, fmt.Errorf("%w: ReplaceTiers - repository error: %w", ErrInternal, err)
	}

	s.bumpGeneration(ctx)

	s.logger.Info("ReplaceTiers: discount table replaced by user=%d", req.UserID)
	return models.FromDomainTable(table), nil
}

// bumpGeneration делает недействительными закэшированные расчеты стоимости
func (s *Service) bumpGeneration(ctx context.Context) {
	if s.generations == nil {
		return
	}
	generation, err := s.generations.Incr(ctx, domain.PricingGenerationKey)
	if err != nil {
		s.logger.Warn("ReplaceTiers: failed to bump pricing generation: %v", err)
		return
	}
	s.logger.Info("ReplaceTiers: pricing generation is now %d", generation)
}
