package repository

import (
	"context"

	"github.com/yourusername/updrill-api/internal/domain/entity"
)

// AttemptRepository определяет методы для работы с попытками.
// Попытки только добавляются: обновления и удаления не предусмотрены.
type AttemptRepository interface {
	// Create сохраняет попытку. ID и CreatedAt назначаются, если не заданы.
	Create(ctx context.Context, attempt *entity.Attempt) error

	// GetByID возвращает попытку или apperrors.ErrNotFound
	GetByID(ctx context.Context, id string) (*entity.Attempt, error)

	// ListByUser возвращает попытки пользователя, новые первыми.
	// limit <= 0 означает "все попытки".
	ListByUser(ctx context.Context, userID string, limit int) ([]entity.Attempt, error)

	// OverallStats считает агрегаты по всем попыткам пользователя
	OverallStats(ctx context.Context, userID string) (*entity.OverallStats, error)

	// TopDrills возвращает статистику по дриллам, отсортированную по лучшему результату
	TopDrills(ctx context.Context, userID string, limit int) ([]entity.DrillStats, error)
}
