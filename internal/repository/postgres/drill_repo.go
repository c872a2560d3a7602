package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/updrill-api/internal/domain/entity"
	"github.com/yourusername/updrill-api/internal/domain/repository"
	apperrors "github.com/yourusername/updrill-api/internal/pkg/errors"
)

// DrillRepo реализует repository.DrillRepository поверх PostgreSQL
type DrillRepo struct {
	db *gorm.DB
}

// NewDrillRepo создает новый репозиторий дриллов
func NewDrillRepo(db *gorm.DB) *DrillRepo {
	return &DrillRepo{db: db}
}

// GetByID возвращает дрилл по ID
func (r *DrillRepo) GetByID(ctx context.Context, id string) (*entity.Drill, error) {
	var drill entity.Drill
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&drill).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &drill, nil
}

// GetByIDs возвращает дриллы по списку ID
func (r *DrillRepo) GetByIDs(ctx context.Context, ids []string) ([]entity.Drill, error) {
	drills := []entity.Drill{}
	if len(ids) == 0 {
		return drills, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&drills).Error
	return drills, err
}

// List возвращает страницу дриллов по фильтру, новые первыми
func (r *DrillRepo) List(ctx context.Context, filter repository.DrillFilter, limit, offset int) ([]entity.Drill, int64, error) {
	var total int64
	if err := applyDrillFilter(r.db.WithContext(ctx).Model(&entity.Drill{}), filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count drills: %w", err)
	}

	drills := []entity.Drill{}
	err := applyDrillFilter(r.db.WithContext(ctx), filter).
		Order("created_at DESC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&drills).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find drills: %w", err)
	}
	return drills, total, nil
}

// Upsert создает или заменяет дрилл по ID
func (r *DrillRepo) Upsert(ctx context.Context, drill *entity.Drill) error {
	now := time.Now().UTC()
	if drill.CreatedAt.IsZero() {
		drill.CreatedAt = now
	}
	drill.UpdatedAt = now

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "difficulty", "tags", "questions", "updated_at"}),
	}).Create(drill).Error
}

func applyDrillFilter(db *gorm.DB, f repository.DrillFilter) *gorm.DB {
	if f.Difficulty != "" {
		db = db.Where("difficulty = ?", f.Difficulty)
	}
	if len(f.Tags) > 0 {
		db = db.Where("jsonb_exists_any(tags, ?)", pq.Array(f.Tags))
	}
	if f.Search != "" {
		pattern := containsPattern(f.Search)
		db = db.Where(
			`(title ILIKE ? ESCAPE '\' OR EXISTS (SELECT 1 FROM jsonb_array_elements_text(tags) AS t(tag) WHERE t.tag ILIKE ? ESCAPE '\'))`,
			pattern, pattern,
		)
	}
	return db
}
