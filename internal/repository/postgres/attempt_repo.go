package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/updrill-api/internal/domain/entity"
	apperrors "github.com/yourusername/updrill-api/internal/pkg/errors"
)

// AttemptRepo реализует repository.AttemptRepository поверх PostgreSQL
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий попыток
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// Create сохраняет новую попытку
func (r *AttemptRepo) Create(ctx context.Context, attempt *entity.Attempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(attempt).Error
}

// GetByID возвращает попытку по ID
func (r *AttemptRepo) GetByID(ctx context.Context, id string) (*entity.Attempt, error) {
	var attempt entity.Attempt
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// ListByUser возвращает попытки пользователя, новые первыми
func (r *AttemptRepo) ListByUser(ctx context.Context, userID string, limit int) ([]entity.Attempt, error) {
	attempts := []entity.Attempt{}
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&attempts).Error
	return attempts, err
}

// OverallStats считает агрегаты по попыткам пользователя одним запросом
func (r *AttemptRepo) OverallStats(ctx context.Context, userID string) (*entity.OverallStats, error) {
	var stats entity.OverallStats
	err := r.db.WithContext(ctx).Model(&entity.Attempt{}).
		Select(`COUNT(*) AS total_attempts,
			COALESCE(AVG(score), 0) AS average_score,
			COALESCE(MAX(score), 0) AS highest_score,
			COALESCE(MIN(score), 0) AS lowest_score`).
		Where("user_id = ?", userID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// TopDrills возвращает дриллы пользователя с лучшими результатами
func (r *AttemptRepo) TopDrills(ctx context.Context, userID string, limit int) ([]entity.DrillStats, error) {
	stats := []entity.DrillStats{}
	err := r.db.WithContext(ctx).Model(&entity.Attempt{}).
		Select("drill_id, COUNT(*) AS attempts, MAX(score) AS best_score, AVG(score) AS average_score").
		Where("user_id = ?", userID).
		Group("drill_id").
		Order("best_score DESC, drill_id ASC").
		Limit(limit).
		Scan(&stats).Error
	return stats, err
}
