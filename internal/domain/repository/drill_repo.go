package repository

import (
	"context"

	"github.com/yourusername/updrill-api/internal/domain/entity"
)

// DrillFilter описывает фильтры каталога дриллов
type DrillFilter struct {
	Difficulty entity.Difficulty
	Tags       []string
	Search     string
}

// IsEmpty сообщает, что фильтры не заданы
func (f DrillFilter) IsEmpty() bool {
	return f.Difficulty == "" && len(f.Tags) == 0 && f.Search == ""
}

// DrillRepository определяет методы для работы с каталогом дриллов
type DrillRepository interface {
	// GetByID возвращает дрилл или apperrors.ErrNotFound
	GetByID(ctx context.Context, id string) (*entity.Drill, error)

	// GetByIDs возвращает найденные дриллы; отсутствующие id пропускаются
	GetByIDs(ctx context.Context, ids []string) ([]entity.Drill, error)

	// List возвращает страницу дриллов (новые первыми) и общее количество по фильтру
	List(ctx context.Context, filter DrillFilter, limit, offset int) ([]entity.Drill, int64, error)

	// Upsert создает или заменяет дрилл по ID (используется при загрузке каталога)
	Upsert(ctx context.Context, drill *entity.Drill) error
}
