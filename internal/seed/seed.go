// Package seed загружает стартовый каталог дриллов
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gosimple/slug"

	"github.com/yourusername/updrill-api/internal/domain/entity"
	"github.com/yourusername/updrill-api/internal/domain/repository"
)

//go:embed drills.json
var catalogJSON []byte

// Catalog возвращает стартовые дриллы. ID строится из названия,
// поэтому повторный запуск обновляет те же записи.
func Catalog() ([]entity.Drill, error) {
	var drills []entity.Drill
	if err := json.Unmarshal(catalogJSON, &drills); err != nil {
		return nil, fmt.Errorf("failed to parse seed catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(drills))
	for i := range drills {
		d := &drills[i]
		d.ID = slug.Make(d.Title)
		if _, dup := seen[d.ID]; dup {
			return nil, fmt.Errorf("duplicate drill id %q", d.ID)
		}
		seen[d.ID] = struct{}{}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("drill %q: %w", d.Title, err)
		}
	}
	return drills, nil
}

// Apply записывает каталог в хранилище.
// Более поздние элементы каталога получают более позднее время создания.
func Apply(ctx context.Context, repo repository.DrillRepository, now time.Time) (int, error) {
	drills, err := Catalog()
	if err != nil {
		return 0, err
	}

	for i := range drills {
		d := &drills[i]
		d.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		if err := repo.Upsert(ctx, d); err != nil {
			return i, fmt.Errorf("failed to upsert drill %s: %w", d.ID, err)
		}
		log.Printf("[Seed] - %s (%s) -> %s", d.Title, d.Difficulty, d.ID)
	}
	return len(drills), nil
}
