package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vkuznetsov/paperdesk-backend/internal/models"
	"github.com/vkuznetsov/paperdesk-backend/internal/repository/common"
)

// Доменные sentinel ошибки оборачивают базовые из common, чтобы вызывающая
// сторона могла проверять и конкретный случай, и общую категорию.
var (
	ErrRateNotFound   = fmt.Errorf("academic rate not found: %w", common.ErrNotFound)
	ErrRateExists     = fmt.Errorf("academic rate already exists for this level and deadline: %w", common.ErrAlreadyExists)
	ErrPresetNotFound = fmt.Errorf("pricing preset not found: %w", common.ErrNotFound)
)

// CatalogRepository — единственная точка доступа к справочникам тарифов.
// Фильтрация по is_active / is_deleted выполняется только здесь, чтобы
// все потребители видели одинаковый "живой" каталог.
type CatalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListAcademicLevels возвращает активные академические уровни.
func (r *CatalogRepository) ListAcademicLevels(ctx context.Context) ([]models.AcademicLevel, error) {
	var levels []models.AcademicLevel
	err := r.db.SelectContext(ctx, &levels, `
		SELECT id, name, sort_order, is_active, created_at
		FROM academic_levels WHERE is_active = TRUE ORDER BY sort_order, name
	`)
	return levels, err
}

// ListAcademicRates возвращает живые ставки; levelID == nil — для всех уровней.
func (r *CatalogRepository) ListAcademicRates(ctx context.Context, levelID *uuid.UUID) ([]models.AcademicRate, error) {
	var rates []models.AcademicRate
	if levelID != nil {
		err := r.db.SelectContext(ctx, &rates, `
			SELECT id, academic_level_id, deadline_hours, price_per_page, is_deleted, created_at, updated_at
			FROM academic_rates WHERE is_deleted = FALSE AND academic_level_id = $1
			ORDER BY deadline_hours
		`, *levelID)
		return rates, err
	}
	err := r.db.SelectContext(ctx, &rates, `
		SELECT id, academic_level_id, deadline_hours, price_per_page, is_deleted, created_at, updated_at
		FROM academic_rates WHERE is_deleted = FALSE
		ORDER BY academic_level_id, deadline_hours
	`)
	return rates, err
}

// GetAcademicRate возвращает живую ставку для пары (уровень, срок).
func (r *CatalogRepository) GetAcademicRate(ctx context.Context, levelID uuid.UUID, deadlineHours int) (*models.AcademicRate, error) {
	var rate models.AcademicRate
	err := r.db.GetContext(ctx, &rate, `
		SELECT id, academic_level_id, deadline_hours, price_per_page, is_deleted, created_at, updated_at
		FROM academic_rates
		WHERE is_deleted = FALSE AND academic_level_id = $1 AND deadline_hours = $2
	`, levelID, deadlineHours)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRateNotFound
		}
		return nil, fmt.Errorf("catalog repository: get academic rate: %w", err)
	}
	return &rate, nil
}

// ListSubjects возвращает активные предметы с их надбавками.
func (r *CatalogRepository) ListSubjects(ctx context.Context) ([]models.PricingModifier, error) {
	return r.listModifiers(ctx, "subjects")
}

// ListServiceTypes возвращает активные типы услуг с их надбавками.
func (r *CatalogRepository) ListServiceTypes(ctx context.Context) ([]models.PricingModifier, error) {
	return r.listModifiers(ctx, "service_types")
}

// ListLanguages возвращает активные языки с их надбавками.
func (r *CatalogRepository) ListLanguages(ctx context.Context) ([]models.PricingModifier, error) {
	return r.listModifiers(ctx, "languages")
}

func (r *CatalogRepository) listModifiers(ctx context.Context, table string) ([]models.PricingModifier, error) {
	var modifiers []models.PricingModifier
	query := fmt.Sprintf(`
		SELECT id, name, increment_type, increment, is_active, created_at
		FROM %s WHERE is_active = TRUE ORDER BY name
	`, table)
	err := r.db.SelectContext(ctx, &modifiers, query)
	return modifiers, err
}

// GetServiceType возвращает тип услуги по ID независимо от активности:
// исторические заказы хранят ссылку на выбранный модификатор.
func (r *CatalogRepository) GetServiceType(ctx context.Context, id uuid.UUID) (*models.PricingModifier, error) {
	return r.getModifier(ctx, "service_types", id)
}

// GetLanguage возвращает язык по ID независимо от активности.
func (r *CatalogRepository) GetLanguage(ctx context.Context, id uuid.UUID) (*models.PricingModifier, error) {
	return r.getModifier(ctx, "languages", id)
}

func (r *CatalogRepository) getModifier(ctx context.Context, table string, id uuid.UUID) (*models.PricingModifier, error) {
	var modifier models.PricingModifier
	query := fmt.Sprintf(`
		SELECT id, name, increment_type, increment, is_active, created_at
		FROM %s WHERE id = $1
	`, table)
	err := r.db.GetContext(ctx, &modifier, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("catalog repository: get modifier from %s: %w", table, err)
	}
	return &modifier, nil
}

// ListAdditionalFeatures возвращает активные дополнительные услуги по порядку показа.
func (r *CatalogRepository) ListAdditionalFeatures(ctx context.Context) ([]models.AdditionalFeature, error) {
	var features []models.AdditionalFeature
	err := r.db.SelectContext(ctx, &features, `
		SELECT id, name, increment_type, amount, sort_order, is_active, created_at
		FROM additional_features WHERE is_active = TRUE ORDER BY sort_order, name
	`)
	return features, err
}

// GetAdditionalFeature возвращает активную дополнительную услугу по ID.
// Для неизвестной или выключенной услуги возвращает (nil, nil): расчёт цены
// молча пропускает такие позиции.
func (r *CatalogRepository) GetAdditionalFeature(ctx context.Context, id uuid.UUID) (*models.AdditionalFeature, error) {
	var feature models.AdditionalFeature
	err := r.db.GetContext(ctx, &feature, `
		SELECT id, name, increment_type, amount, sort_order, is_active, created_at
		FROM additional_features WHERE id = $1 AND is_active = TRUE
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("catalog repository: get feature: %w", err)
	}
	return &feature, nil
}

// GetPricingPreset возвращает активный пресет для тройки (уровень, услуга, тип срока).
func (r *CatalogRepository) GetPricingPreset(ctx context.Context, levelID, serviceTypeID uuid.UUID, deadlineType string) (*models.PricingPreset, error) {
	var preset models.PricingPreset
	err := r.db.GetContext(ctx, &preset, `
		SELECT id, academic_level_id, service_type_id, deadline_type, base_price_per_page, multiplier, is_active, created_at
		FROM pricing_presets
		WHERE is_active = TRUE AND academic_level_id = $1 AND service_type_id = $2 AND deadline_type = $3
	`, levelID, serviceTypeID, deadlineType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPresetNotFound
		}
		return nil, fmt.Errorf("catalog repository: get pricing preset: %w", err)
	}
	return &preset, nil
}

// CreateAcademicRate добавляет ставку; на пару (уровень, срок) может
// существовать не более одной живой ставки.
func (r *CatalogRepository) CreateAcademicRate(ctx context.Context, levelID uuid.UUID, deadlineHours int, pricePerPage float64) (*models.AcademicRate, error) {
	var rate models.AcademicRate
	err := r.db.GetContext(ctx, &rate, `
		INSERT INTO academic_rates (academic_level_id, deadline_hours, price_per_page)
		VALUES ($1, $2, $3)
		RETURNING id, academic_level_id, deadline_hours, price_per_page, is_deleted, created_at, updated_at
	`, levelID, deadlineHours, pricePerPage)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrRateExists
		}
		return nil, fmt.Errorf("catalog repository: create academic rate: %w", err)
	}
	return &rate, nil
}

// UpdateAcademicRate меняет цену живой ставки.
func (r *CatalogRepository) UpdateAcademicRate(ctx context.Context, id uuid.UUID, pricePerPage float64) (*models.AcademicRate, error) {
	var rate models.AcademicRate
	err := r.db.GetContext(ctx, &rate, `
		UPDATE academic_rates SET price_per_page = $2, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
		RETURNING id, academic_level_id, deadline_hours, price_per_page, is_deleted, created_at, updated_at
	`, id, pricePerPage)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRateNotFound
		}
		return nil, fmt.Errorf("catalog repository: update academic rate: %w", err)
	}
	return &rate, nil
}

// SoftDeleteAcademicRate помечает ставку удалённой. Физическое удаление
// запрещено: старые заказы ссылаются на исторические цены.
func (r *CatalogRepository) SoftDeleteAcademicRate(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE academic_rates SET is_deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE
	`, id)
	if err != nil {
		return fmt.Errorf("catalog repository: soft delete academic rate: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrRateNotFound
	}
	return nil
}

// BulkAdjustRates изменяет все живые ставки на процент или фиксированную
// сумму; цена не опускается ниже нуля.
func (r *CatalogRepository) BulkAdjustRates(ctx context.Context, percent, flat float64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE academic_rates
		SET price_per_page = GREATEST(0, ROUND(price_per_page * (1 + $1 / 100) + $2, 2)),
		    updated_at = NOW()
		WHERE is_deleted = FALSE
	`, percent, flat)
	if err != nil {
		return 0, fmt.Errorf("catalog repository: bulk adjust rates: %w", err)
	}
	return res.RowsAffected()
}

// isUniqueViolation распознаёт нарушение уникального индекса Postgres.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
