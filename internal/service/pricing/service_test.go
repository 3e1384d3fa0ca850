package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/service/pricing/models"
	"github.com/m04kA/SMC-CourtBookingService/pkg/logger"
)

type MockDiscountRepo struct{ mock.Mock }

func (m *MockDiscountRepo) GetAll(ctx context.Context) ([]domain.DiscountTier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DiscountTier), args.Error(1)
}

func (m *MockDiscountRepo) ReplaceAll(ctx context.Context, tiers []domain.DiscountTier) error {
	return m.Called(ctx, tiers).Error(0)
}

type inlineTx struct{}

func (inlineTx) Do(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

type admins map[int64]bool

func (a admins) IsAdmin(userID int64) bool { return a[userID] }

type MockGenerations struct{ mock.Mock }

func (m *MockGenerations) Incr(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func newService(fallback *domain.DiscountTable) (*Service, *MockDiscountRepo) {
	repo := new(MockDiscountRepo)
	return NewService(repo, inlineTx{}, admins{1: true}, fallback, nil, logger.NewNop()), repo
}

func TestGetDiscountTable_FromStorage(t *testing.T) {
	svc, repo := newService(nil)
	repo.On("GetAll", mock.Anything).Return([]domain.DiscountTier{{MinSessions: 2, Percentage: 50}}, nil)

	table, err := svc.GetDiscountTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, table.PercentageFor(3))
}

func TestGetDiscountTable_EmptyStorageUsesFallback(t *testing.T) {
	fallback, err := domain.NewDiscountTable([]domain.DiscountTier{{MinSessions: 3, Percentage: 7}})
	require.NoError(t, err)

	svc, repo := newService(fallback)
	repo.On("GetAll", mock.Anything).Return([]domain.DiscountTier{}, nil)

	table, err := svc.GetDiscountTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, table.PercentageFor(3))
}

func TestGetDiscountTable_DefaultFallback(t *testing.T) {
	svc, repo := newService(nil)
	repo.On("GetAll", mock.Anything).Return([]domain.DiscountTier{}, nil)

	resp, err := svc.GetTiers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.DiscountTier{
		{MinSessions: 16, Percentage: 15},
		{MinSessions: 8, Percentage: 10},
		{MinSessions: 4, Percentage: 5},
	}, resp.Tiers)
}

func TestGetDiscountTable_RepositoryError(t *testing.T) {
	svc, repo := newService(nil)
	repo.On("GetAll", mock.Anything).Return(nil, errors.New("db down"))

	_, err := svc.GetDiscountTable(context.Background())
	assert.ErrorIs(t, err, ErrInternal)
}

func TestReplaceTiers(t *testing.T) {
	svc, repo := newService(nil)
	repo.On("ReplaceAll", mock.Anything, []domain.DiscountTier{
		{MinSessions: 10, Percentage: 20},
		{MinSessions: 5, Percentage: 10},
	}).Return(nil)

	resp, err := svc.ReplaceTiers(context.Background(), &models.ReplaceTiersRequest{
		UserID: 1,
		Tiers:  []models.DiscountTier{{MinSessions: 5, Percentage: 10}, {MinSessions: 10, Percentage: 20}},
	})
	require.NoError(t, err)
	assert.Equal(t, 10, resp.Tiers[0].MinSessions)
	repo.AssertExpectations(t)
}

func TestReplaceTiers_Rejections(t *testing.T) {
	svc, repo := newService(nil)

	_, err := svc.ReplaceTiers(context.Background(), &models.ReplaceTiersRequest{UserID: 7})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.ReplaceTiers(context.Background(), &models.ReplaceTiersRequest{
		UserID: 1,
		Tiers:  []models.DiscountTier{{MinSessions: 4, Percentage: 120}},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	repo.AssertNotCalled(t, "ReplaceAll", mock.Anything, mock.Anything)
}

func TestReplaceTiers_BumpsPricingGeneration(t *testing.T) {
	repo := new(MockDiscountRepo)
	generations := new(MockGenerations)
	svc := NewService(repo, inlineTx{}, admins{1: true}, nil, generations, logger.NewNop())

	repo.On("ReplaceAll", mock.Anything, mock.Anything).Return(nil)
	generations.On("Incr", mock.Anything, domain.PricingGenerationKey).Return(int64(2), nil).Once()

	_, err := svc.ReplaceTiers(context.Background(), &models.ReplaceTiersRequest{
		UserID: 1,
		Tiers:  []models.DiscountTier{{MinSessions: 4, Percentage: 5}},
	})
	require.NoError(t, err)
	generations.AssertExpectations(t)

	generations.On("Incr", mock.Anything, domain.PricingGenerationKey).Return(int64(0), errors.New("connection reset")).Once()
	_, err = svc.ReplaceTiers(context.Background(), &models.ReplaceTiersRequest{
		UserID: 1,
		Tiers:  []models.DiscountTier{{MinSessions: 4, Percentage: 5}},
	})
	assert.NoError(t, err)
}

func TestReplaceTiers_StorageFailureKeepsGeneration(t *testing.T) {
	repo := new(MockDiscountRepo)
	generations := new(MockGenerations)
	svc := NewService(repo, inlineTx{}, admins{1: true}, nil, generations, logger.NewNop())

	repo.On("ReplaceAll", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	_, err := svc.ReplaceTiers(context.Background(), &models.ReplaceTiersRequest{
		UserID: 1,
		Tiers:  []models.DiscountTier{{MinSessions: 4, Percentage: 5}},
	})
	assert.ErrorIs(t, err, ErrInternal)
	generations.AssertNotCalled(t, "Incr", mock.Anything, mock.Anything)
}
