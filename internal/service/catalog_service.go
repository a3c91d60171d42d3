package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/vkuznetsov/paperdesk-backend/internal/logger"
	"github.com/vkuznetsov/paperdesk-backend/internal/models"
)

type CatalogRepository interface {
	ListAcademicLevels(ctx context.Context) ([]models.AcademicLevel, error)
	ListAcademicRates(ctx context.Context, levelID *uuid.UUID) ([]models.AcademicRate, error)
	ListSubjects(ctx context.Context) ([]models.PricingModifier, error)
	ListServiceTypes(ctx context.Context) ([]models.PricingModifier, error)
	ListLanguages(ctx context.Context) ([]models.PricingModifier, error)
	ListAdditionalFeatures(ctx context.Context) ([]models.AdditionalFeature, error)
	CreateAcademicRate(ctx context.Context, levelID uuid.UUID, deadlineHours int, pricePerPage float64) (*models.AcademicRate, error)
	UpdateAcademicRate(ctx context.Context, id uuid.UUID, pricePerPage float64) (*models.AcademicRate, error)
	SoftDeleteAcademicRate(ctx context.Context, id uuid.UUID) error
	BulkAdjustRates(ctx context.Context, percent, flat float64) (int64, error)
}

// CatalogCache — контракт с кэшом каталога. Кэш необязателен: без него
// каждый запрос идёт в базу.
type CatalogCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}) error
	Invalidate(ctx context.Context, pattern string) error
}

// CatalogService отдаёт справочники каталога и выполняет их правку.
// Чтение кэшируется: каталог меняется редко, а читается на каждом расчёте
// цены. Любая мутация сбрасывает кэш целиком.
type CatalogService struct {
	repo  CatalogRepository
	cache CatalogCache
}

func NewCatalogService(repo CatalogRepository, cache CatalogCache) *CatalogService {
	return &CatalogService{repo: repo, cache: cache}
}

// Levels возвращает активные академические уровни.
func (s *CatalogService) Levels(ctx context.Context) ([]models.AcademicLevel, error) {
	return cachedList(ctx, s.cache, "catalog:levels", func() ([]models.AcademicLevel, error) {
		return s.repo.ListAcademicLevels(ctx)
	})
}

// Rates возвращает живые ставки, опционально по одному уровню.
func (s *CatalogService) Rates(ctx context.Context, levelID *uuid.UUID) ([]models.AcademicRate, error) {
	key := "catalog:rates"
	if levelID != nil {
		key = "catalog:rates:" + levelID.String()
	}
	return cachedList(ctx, s.cache, key, func() ([]models.AcademicRate, error) {
		return s.repo.ListAcademicRates(ctx, levelID)
	})
}

// Subjects возвращает активные предметы.
func (s *CatalogService) Subjects(ctx context.Context) ([]models.PricingModifier, error) {
	return cachedList(ctx, s.cache, "catalog:subjects", func() ([]models.PricingModifier, error) {
		return s.repo.ListSubjects(ctx)
	})
}

// ServiceTypes возвращает активные типы услуг.
func (s *CatalogService) ServiceTypes(ctx context.Context) ([]models.PricingModifier, error) {
	return cachedList(ctx, s.cache, "catalog:service_types", func() ([]models.PricingModifier, error) {
		return s.repo.ListServiceTypes(ctx)
	})
}

// Languages возвращает активные языки.
func (s *CatalogService) Languages(ctx context.Context) ([]models.PricingModifier, error) {
	return cachedList(ctx, s.cache, "catalog:languages", func() ([]models.PricingModifier, error) {
		return s.repo.ListLanguages(ctx)
	})
}

// Features возвращает активные дополнительные услуги.
func (s *CatalogService) Features(ctx context.Context) ([]models.AdditionalFeature, error) {
	return cachedList(ctx, s.cache, "catalog:features", func() ([]models.AdditionalFeature, error) {
		return s.repo.ListAdditionalFeatures(ctx)
	})
}

// CreateRate добавляет ставку для пары (уровень, срок).
func (s *CatalogService) CreateRate(ctx context.Context, levelID uuid.UUID, deadlineHours int, pricePerPage float64) (*models.AcademicRate, error) {
	if deadlineHours <= 0 {
		return nil, fmt.Errorf("срок ставки должен быть положительным")
	}
	if pricePerPage < 0 {
		return nil, fmt.Errorf("цена страницы не может быть отрицательной")
	}
	rate, err := s.repo.CreateAcademicRate(ctx, levelID, deadlineHours, pricePerPage)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return rate, nil
}

// UpdateRate меняет цену страницы существующей ставки.
func (s *CatalogService) UpdateRate(ctx context.Context, id uuid.UUID, pricePerPage float64) (*models.AcademicRate, error) {
	if pricePerPage < 0 {
		return nil, fmt.Errorf("цена страницы не может быть отрицательной")
	}
	rate, err := s.repo.UpdateAcademicRate(ctx, id, pricePerPage)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return rate, nil
}

// DeleteRate мягко удаляет ставку. Исторические заказы не затрагиваются.
func (s *CatalogService) DeleteRate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDeleteAcademicRate(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// BulkAdjustRates массово корректирует все живые ставки: сначала процент,
// затем фиксированная прибавка, результат не опускается ниже нуля.
func (s *CatalogService) BulkAdjustRates(ctx context.Context, percent, flat float64) (int64, error) {
	if percent == 0 && flat == 0 {
		return 0, fmt.Errorf("не задано ни одной корректировки")
	}
	affected, err := s.repo.BulkAdjustRates(ctx, percent, flat)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx)
	return affected, nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "catalog:*"); err != nil {
		logger.Log.WithError(err).Warn("не удалось сбросить кэш каталога")
	}
}

// cachedList читает срез из кэша, при промахе загружает из базы и кладёт
// в кэш. Ошибки кэша деградируют до похода в базу.
func cachedList[T any](ctx context.Context, cache CatalogCache, key string, load func() ([]T, error)) ([]T, error) {
	if cache != nil {
		var cached []T
		hit, err := cache.GetJSON(ctx, key, &cached)
		if err != nil {
			logger.Log.WithError(err).WithField("key", key).Warn("кэш каталога недоступен")
		} else if hit {
			return cached, nil
		}
	}

	items, err := load()
	if err != nil {
		return nil, err
	}

	if cache != nil {
		if err := cache.SetJSON(ctx, key, items); err != nil {
			logger.Log.WithError(err).WithField("key", key).Warn("не удалось записать кэш каталога")
		}
	}
	return items, nil
}
