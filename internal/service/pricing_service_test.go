package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vkuznetsov/paperdesk-backend/internal/models"
	"github.com/vkuznetsov/paperdesk-backend/internal/repository"
)

type mockPricingCatalog struct {
	mock.Mock
}

func (m *mockPricingCatalog) GetAcademicRate(ctx context.Context, levelID uuid.UUID, deadlineHours int) (*models.AcademicRate, error) {
	args := m.Called(ctx, levelID, deadlineHours)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AcademicRate), args.Error(1)
}

func (m *mockPricingCatalog) GetServiceType(ctx context.Context, id uuid.UUID) (*models.PricingModifier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PricingModifier), args.Error(1)
}

func (m *mockPricingCatalog) GetLanguage(ctx context.Context, id uuid.UUID) (*models.PricingModifier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PricingModifier), args.Error(1)
}

func (m *mockPricingCatalog) GetAdditionalFeature(ctx context.Context, id uuid.UUID) (*models.AdditionalFeature, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdditionalFeature), args.Error(1)
}

func (m *mockPricingCatalog) GetPricingPreset(ctx context.Context, levelID, serviceTypeID uuid.UUID, deadlineType string) (*models.PricingPreset, error) {
	args := m.Called(ctx, levelID, serviceTypeID, deadlineType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PricingPreset), args.Error(1)
}

func TestPricingServiceEstimate(t *testing.T) {
	levelID := uuid.New()
	serviceTypeID := uuid.New()
	languageID := uuid.New()

	catalog := new(mockPricingCatalog)
	catalog.On("GetAcademicRate", mock.Anything, levelID, 72).
		Return(&models.AcademicRate{AcademicLevelID: levelID, DeadlineHours: 72, PricePerPage: 12.0}, nil)
	catalog.On("GetServiceType", mock.Anything, serviceTypeID).
		Return(&models.PricingModifier{ID: serviceTypeID, IncrementType: models.IncrementTypePercent, Increment: 20}, nil)
	catalog.On("GetLanguage", mock.Anything, languageID).
		Return(&models.PricingModifier{ID: languageID, IncrementType: models.IncrementTypePercent, Increment: 0}, nil)

	svc := NewPricingService(catalog, 0)

	estimate, err := svc.Estimate(context.Background(), EstimateInput{
		AcademicLevelID: &levelID,
		ServiceTypeID:   &serviceTypeID,
		LanguageID:      &languageID,
		DeadlineHours:   72,
		Pages:           5,
	})

	assert.NoError(t, err)
	// 12.00 * 5 * 1.2 * 1.0 = 72.00
	assert.Equal(t, 72.0, estimate.Total)
	assert.Equal(t, 14.4, estimate.PerPage)
	assert.Equal(t, 12.0, estimate.Breakdown.BasePricePerPage)
	assert.Equal(t, 1.2, estimate.Breakdown.ServiceMultiplier)
	assert.Equal(t, 1.0, estimate.Breakdown.LanguageMultiplier)
	assert.Equal(t, estimate.Total, estimate.Breakdown.Base+estimate.Breakdown.FeaturesCost)
}

func TestPricingServiceEstimateMissingRateUsesDefault(t *testing.T) {
	levelID := uuid.New()

	catalog := new(mockPricingCatalog)
	catalog.On("GetAcademicRate", mock.Anything, levelID, 24).
		Return(nil, repository.ErrRateNotFound)

	svc := NewPricingService(catalog, 0)

	estimate, err := svc.Estimate(context.Background(), EstimateInput{
		AcademicLevelID: &levelID,
		DeadlineHours:   24,
		Pages:           3,
	})

	assert.NoError(t, err)
	assert.Equal(t, DefaultBasePricePerPage, estimate.Breakdown.BasePricePerPage)
	assert.Equal(t, 30.0, estimate.Total)
}

func TestPricingServiceEstimateFixedIncrementBehavesAsPercent(t *testing.T) {
	serviceTypeID := uuid.New()

	catalog := new(mockPricingCatalog)
	catalog.On("GetServiceType", mock.Anything, serviceTypeID).
		Return(&models.PricingModifier{ID: serviceTypeID, IncrementType: models.IncrementTypeFixed, Increment: 50}, nil)

	svc := NewPricingService(catalog, 0)

	estimate, err := svc.Estimate(context.Background(), EstimateInput{
		ServiceTypeID: &serviceTypeID,
		Pages:         2,
	})

	assert.NoError(t, err)
	assert.Equal(t, 1.5, estimate.Breakdown.ServiceMultiplier)
	assert.Equal(t, 30.0, estimate.Total)
}

func TestPricingServiceEstimateFeatures(t *testing.T) {
	knownID := uuid.New()
	missingID := uuid.New()

	catalog := new(mockPricingCatalog)
	catalog.On("GetAdditionalFeature", mock.Anything, knownID).
		Return(&models.AdditionalFeature{ID: knownID, Name: "Plagiarism report", IncrementType: models.IncrementTypeFixed, Amount: 5.0}, nil)
	catalog.On("GetAdditionalFeature", mock.Anything, missingID).
		Return(nil, nil)

	svc := NewPricingService(catalog, 0)

	estimate, err := svc.Estimate(context.Background(), EstimateInput{
		Pages: 4,
		Features: []FeatureSelection{
			{ID: &knownID},
			{ID: &missingID},
			{Name: "Rush delivery", Type: models.IncrementTypePercent, Amount: 10},
		},
	})

	assert.NoError(t, err)
	// base = 10.00 * 4 = 40.00, features = 5.00 + 40.00*10% = 9.00
	assert.Equal(t, 40.0, estimate.Breakdown.Base)
	assert.Equal(t, 9.0, estimate.Breakdown.FeaturesCost)
	assert.Equal(t, 49.0, estimate.Total)
	assert.Len(t, estimate.Features, 2)
	assert.Equal(t, "Plagiarism report", estimate.Features[0].Name)
}

func TestPricingServiceEstimateSkipsInvalidInlineFeature(t *testing.T) {
	catalog := new(mockPricingCatalog)
	svc := NewPricingService(catalog, 0)

	estimate, err := svc.Estimate(context.Background(), EstimateInput{
		Pages: 1,
		Features: []FeatureSelection{
			{Name: "Broken", Type: "unknown", Amount: 99},
			{Name: "Negative", Type: models.IncrementTypeFixed, Amount: -5},
		},
	})

	assert.NoError(t, err)
	assert.Empty(t, estimate.Features)
	assert.Equal(t, 10.0, estimate.Total)
}

func TestPricingServicePresetPrice(t *testing.T) {
	levelID := uuid.New()
	serviceTypeID := uuid.New()

	catalog := new(mockPricingCatalog)
	catalog.On("GetPricingPreset", mock.Anything, levelID, serviceTypeID, "standard").
		Return(&models.PricingPreset{BasePricePerPage: 8.0, Multiplier: 1.25}, nil)
	catalog.On("GetPricingPreset", mock.Anything, levelID, serviceTypeID, "urgent").
		Return(nil, repository.ErrPresetNotFound)

	svc := NewPricingService(catalog, 0)

	price, err := svc.PresetPrice(context.Background(), levelID, serviceTypeID, "standard", 10)
	assert.NoError(t, err)
	assert.Equal(t, 100.0, price)

	price, err = svc.PresetPrice(context.Background(), levelID, serviceTypeID, "urgent", 10)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, price)
}

func TestPricingServiceEffectiveBasePricePerPage(t *testing.T) {
	levelID := uuid.New()

	catalog := new(mockPricingCatalog)
	catalog.On("GetAcademicRate", mock.Anything, levelID, 48).
		Return(&models.AcademicRate{AcademicLevelID: levelID, DeadlineHours: 48, PricePerPage: 15.0}, nil)

	svc := NewPricingService(catalog, 0)

	order := &models.Order{
		AcademicLevelID: &levelID,
		DeadlineHours:   48,
		Pages:           4,
		Features: models.FeatureSnapshots{
			{Name: "Plagiarism report", Type: models.IncrementTypeFixed, Amount: 5.0},
		},
	}

	perPage, err := svc.EffectiveBasePricePerPage(context.Background(), order)
	assert.NoError(t, err)
	// (15.00*4 + 5.00) / 4 = 16.25
	assert.Equal(t, 16.25, perPage)
}
