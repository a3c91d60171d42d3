package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vkuznetsov/paperdesk-backend/internal/models"
)

type mockCatalogRepo struct {
	mock.Mock
}

func (m *mockCatalogRepo) ListAcademicLevels(ctx context.Context) ([]models.AcademicLevel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AcademicLevel), args.Error(1)
}

func (m *mockCatalogRepo) ListAcademicRates(ctx context.Context, levelID *uuid.UUID) ([]models.AcademicRate, error) {
	args := m.Called(ctx, levelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AcademicRate), args.Error(1)
}

func (m *mockCatalogRepo) ListSubjects(ctx context.Context) ([]models.PricingModifier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PricingModifier), args.Error(1)
}

func (m *mockCatalogRepo) ListServiceTypes(ctx context.Context) ([]models.PricingModifier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PricingModifier), args.Error(1)
}

func (m *mockCatalogRepo) ListLanguages(ctx context.Context) ([]models.PricingModifier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PricingModifier), args.Error(1)
}

func (m *mockCatalogRepo) ListAdditionalFeatures(ctx context.Context) ([]models.AdditionalFeature, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AdditionalFeature), args.Error(1)
}

func (m *mockCatalogRepo) CreateAcademicRate(ctx context.Context, levelID uuid.UUID, deadlineHours int, pricePerPage float64) (*models.AcademicRate, error) {
	args := m.Called(ctx, levelID, deadlineHours, pricePerPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AcademicRate), args.Error(1)
}

func (m *mockCatalogRepo) UpdateAcademicRate(ctx context.Context, id uuid.UUID, pricePerPage float64) (*models.AcademicRate, error) {
	args := m.Called(ctx, id, pricePerPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AcademicRate), args.Error(1)
}

func (m *mockCatalogRepo) SoftDeleteAcademicRate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockCatalogRepo) BulkAdjustRates(ctx context.Context, percent, flat float64) (int64, error) {
	args := m.Called(ctx, percent, flat)
	return args.Get(0).(int64), args.Error(1)
}

// fakeCatalogCache — кэш в памяти для тестов.
type fakeCatalogCache struct {
	data map[string][]byte
}

func newFakeCatalogCache() *fakeCatalogCache {
	return &fakeCatalogCache{data: make(map[string][]byte)}
}

func (c *fakeCatalogCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *fakeCatalogCache) SetJSON(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *fakeCatalogCache) Invalidate(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range c.data {
		if strings.HasPrefix(key, prefix) {
			delete(c.data, key)
		}
	}
	return nil
}

func TestCatalogServiceLevelsCached(t *testing.T) {
	levels := []models.AcademicLevel{{ID: uuid.New(), Name: "PhD"}}

	repo := new(mockCatalogRepo)
	repo.On("ListAcademicLevels", mock.Anything).Return(levels, nil).Once()

	svc := NewCatalogService(repo, newFakeCatalogCache())

	first, err := svc.Levels(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, levels, first)

	// Второе чтение обслуживает кэш, репозиторий больше не вызывается.
	second, err := svc.Levels(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, levels, second)
	repo.AssertNumberOfCalls(t, "ListAcademicLevels", 1)
}

func TestCatalogServiceMutationInvalidatesCache(t *testing.T) {
	levelID := uuid.New()
	rates := []models.AcademicRate{{ID: uuid.New(), AcademicLevelID: levelID, DeadlineHours: 72, PricePerPage: 12.0}}

	repo := new(mockCatalogRepo)
	repo.On("ListAcademicRates", mock.Anything, (*uuid.UUID)(nil)).Return(rates, nil)
	repo.On("CreateAcademicRate", mock.Anything, levelID, 24, 15.0).
		Return(&models.AcademicRate{ID: uuid.New(), AcademicLevelID: levelID, DeadlineHours: 24, PricePerPage: 15.0}, nil)

	svc := NewCatalogService(repo, newFakeCatalogCache())

	_, err := svc.Rates(context.Background(), nil)
	assert.NoError(t, err)

	_, err = svc.CreateRate(context.Background(), levelID, 24, 15.0)
	assert.NoError(t, err)

	_, err = svc.Rates(context.Background(), nil)
	assert.NoError(t, err)
	repo.AssertNumberOfCalls(t, "ListAcademicRates", 2)
}

func TestCatalogServiceWorksWithoutCache(t *testing.T) {
	repo := new(mockCatalogRepo)
	repo.On("ListSubjects", mock.Anything).Return([]models.PricingModifier{}, nil)

	svc := NewCatalogService(repo, nil)

	_, err := svc.Subjects(context.Background())
	assert.NoError(t, err)
}

func TestCatalogServiceBulkAdjustValidation(t *testing.T) {
	svc := NewCatalogService(new(mockCatalogRepo), nil)

	_, err := svc.BulkAdjustRates(context.Background(), 0, 0)
	assert.Error(t, err)
}
