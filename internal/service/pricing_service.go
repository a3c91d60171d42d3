package service

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"

	"github.com/vkuznetsov/paperdesk-backend/internal/models"
	"github.com/vkuznetsov/paperdesk-backend/internal/repository"
)

// DefaultBasePricePerPage — базовая цена страницы, когда в каталоге нет
// ставки для пары (уровень, срок). Расчёт цены никогда не падает из-за
// дыры в каталоге: заказ всегда должен быть оцениваемым.
const DefaultBasePricePerPage = 10.0

// PricingCatalog описывает доступ движка цен к каталогу тарифов.
type PricingCatalog interface {
	GetAcademicRate(ctx context.Context, levelID uuid.UUID, deadlineHours int) (*models.AcademicRate, error)
	GetServiceType(ctx context.Context, id uuid.UUID) (*models.PricingModifier, error)
	GetLanguage(ctx context.Context, id uuid.UUID) (*models.PricingModifier, error)
	GetAdditionalFeature(ctx context.Context, id uuid.UUID) (*models.AdditionalFeature, error)
	GetPricingPreset(ctx context.Context, levelID, serviceTypeID uuid.UUID, deadlineType string) (*models.PricingPreset, error)
}

// FeatureSelection — выбранная дополнительная услуга: либо ссылка на каталог
// по ID, либо встроенный снимок {type, amount}. Нормализуется в
// models.FeatureSnapshot до цикла расчёта.
type FeatureSelection struct {
	ID     *uuid.UUID `json:"id,omitempty"`
	Name   string     `json:"name,omitempty"`
	Type   string     `json:"type,omitempty"`
	Amount float64    `json:"amount,omitempty"`
}

// EstimateInput — атрибуты будущего заказа для расчёта цены.
// Pages валидируется вызывающей стороной: движок полагается на pages >= 1.
type EstimateInput struct {
	AcademicLevelID *uuid.UUID
	ServiceTypeID   *uuid.UUID
	LanguageID      *uuid.UUID
	DeadlineHours   int
	Pages           int
	Features        []FeatureSelection
}

// PriceBreakdown — разложение цены, показываемое пользователю.
// Инвариант: Base + FeaturesCost всегда в точности равно Total.
type PriceBreakdown struct {
	BasePricePerPage   float64 `json:"base_price_per_page"`
	Pages              int     `json:"pages"`
	ServiceMultiplier  float64 `json:"service_multiplier"`
	LanguageMultiplier float64 `json:"language_multiplier"`
	Base               float64 `json:"base"`
	FeaturesCost       float64 `json:"features_cost"`
}

// PriceEstimate — результат расчёта цены.
type PriceEstimate struct {
	Total     float64                 `json:"total"`
	PerPage   float64                 `json:"per_page"`
	Breakdown PriceBreakdown          `json:"breakdown"`
	Features  models.FeatureSnapshots `json:"features"`
}

// PricingService считает цены заказов по каталогу тарифов.
type PricingService struct {
	catalog   PricingCatalog
	basePrice float64
}

// NewPricingService создаёт движок цен. basePrice <= 0 означает дефолт.
func NewPricingService(catalog PricingCatalog, basePrice float64) *PricingService {
	if basePrice <= 0 {
		basePrice = DefaultBasePricePerPage
	}
	return &PricingService{catalog: catalog, basePrice: basePrice}
}

// Estimate считает цену заказа. Не имеет побочных эффектов и не падает из-за
// неполного каталога: отсутствующая ставка заменяется дефолтной, нерешаемые
// ID услуг молча пропускаются.
func (s *PricingService) Estimate(ctx context.Context, input EstimateInput) (*PriceEstimate, error) {
	basePrice := s.basePrice
	if input.AcademicLevelID != nil {
		rate, err := s.catalog.GetAcademicRate(ctx, *input.AcademicLevelID, input.DeadlineHours)
		if err != nil && !errors.Is(err, repository.ErrRateNotFound) {
			return nil, err
		}
		if rate != nil {
			basePrice = rate.PricePerPage
		}
	}

	serviceMultiplier, err := s.multiplier(ctx, input.ServiceTypeID, s.catalog.GetServiceType)
	if err != nil {
		return nil, err
	}
	languageMultiplier, err := s.multiplier(ctx, input.LanguageID, s.catalog.GetLanguage)
	if err != nil {
		return nil, err
	}

	base := round2(basePrice * float64(input.Pages) * serviceMultiplier * languageMultiplier)

	features, err := s.ResolveFeatures(ctx, input.Features)
	if err != nil {
		return nil, err
	}
	featuresCost := round2(FeaturesCost(features, base))

	total := round2(base + featuresCost)

	return &PriceEstimate{
		Total:   total,
		PerPage: round2(total / float64(input.Pages)),
		Breakdown: PriceBreakdown{
			BasePricePerPage:   basePrice,
			Pages:              input.Pages,
			ServiceMultiplier:  serviceMultiplier,
			LanguageMultiplier: languageMultiplier,
			Base:               base,
			FeaturesCost:       featuresCost,
		},
		Features: features,
	}, nil
}

// EffectiveBasePricePerPage перерасчитывает действующую цену страницы заказа
// по его сохранённым атрибутам и снимку услуг. Допродажа услуг считается
// против той же ставки, по которой заказ был оценён изначально, а не против
// сегодняшнего каталога.
func (s *PricingService) EffectiveBasePricePerPage(ctx context.Context, order *models.Order) (float64, error) {
	selections := make([]FeatureSelection, 0, len(order.Features))
	for _, f := range order.Features {
		selections = append(selections, FeatureSelection{Name: f.Name, Type: f.Type, Amount: f.Amount})
	}

	estimate, err := s.Estimate(ctx, EstimateInput{
		AcademicLevelID: order.AcademicLevelID,
		ServiceTypeID:   order.ServiceTypeID,
		LanguageID:      order.LanguageID,
		DeadlineHours:   order.DeadlineHours,
		Pages:           order.Pages,
		Features:        selections,
	})
	if err != nil {
		return 0, err
	}
	return estimate.PerPage, nil
}

// PresetPrice — устаревший плоский расчёт по пресету:
// base_price_per_page * multiplier * pages. Без активного пресета
// возвращает 0, никогда не считает это ошибкой.
func (s *PricingService) PresetPrice(ctx context.Context, levelID, serviceTypeID uuid.UUID, deadlineType string, pages int) (float64, error) {
	preset, err := s.catalog.GetPricingPreset(ctx, levelID, serviceTypeID, deadlineType)
	if err != nil {
		if errors.Is(err, repository.ErrPresetNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return round2(preset.BasePricePerPage * preset.Multiplier * float64(pages)), nil
}

// ResolveFeatures нормализует выбор услуг в снимок для заказа. Ссылки по ID
// решаются через каталог; неизвестные и выключенные услуги пропускаются,
// одна плохая позиция не валит весь расчёт.
func (s *PricingService) ResolveFeatures(ctx context.Context, selections []FeatureSelection) (models.FeatureSnapshots, error) {
	snapshots := make(models.FeatureSnapshots, 0, len(selections))
	for _, sel := range selections {
		if sel.ID != nil {
			feature, err := s.catalog.GetAdditionalFeature(ctx, *sel.ID)
			if err != nil {
				return nil, err
			}
			if feature == nil {
				continue
			}
			snapshots = append(snapshots, models.FeatureSnapshot{
				ID:     feature.ID,
				Name:   feature.Name,
				Type:   feature.IncrementType,
				Amount: feature.Amount,
			})
			continue
		}
		if sel.Type != models.IncrementTypePercent && sel.Type != models.IncrementTypeFixed {
			continue
		}
		if sel.Amount < 0 {
			continue
		}
		snapshots = append(snapshots, models.FeatureSnapshot{
			Name:   sel.Name,
			Type:   sel.Type,
			Amount: sel.Amount,
		})
	}
	return snapshots, nil
}

// FeaturesCost считает суммарную стоимость услуг против базовой стоимости
// заказа: fixed добавляет фиксированную сумму, percent — долю от базы.
func FeaturesCost(features models.FeatureSnapshots, base float64) float64 {
	var total float64
	for _, f := range features {
		switch f.Type {
		case models.IncrementTypeFixed:
			total += f.Amount
		case models.IncrementTypePercent:
			total += base * f.Amount / 100
		}
	}
	return total
}

// multiplier возвращает множитель надбавки типа услуги или языка.
// Исторически надбавка типа fixed применяется той же формулой 1+amount/100,
// что и percent, то есть ведёт себя как процент. Поведение сохранено:
// молчаливое "исправление" изменило бы цены уже размещённых конфигураций.
func (s *PricingService) multiplier(ctx context.Context, id *uuid.UUID, get func(context.Context, uuid.UUID) (*models.PricingModifier, error)) (float64, error) {
	if id == nil {
		return 1.0, nil
	}
	modifier, err := get(ctx, *id)
	if err != nil {
		return 0, err
	}
	if modifier == nil {
		return 1.0, nil
	}
	return 1 + modifier.Increment/100, nil
}

// round2 округляет денежную сумму до двух знаков.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
