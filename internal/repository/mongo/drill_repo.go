package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/yourusername/updrill-api/internal/domain/entity"
	"github.com/yourusername/updrill-api/internal/domain/repository"
	apperrors "github.com/yourusername/updrill-api/internal/pkg/errors"
)

const drillsCollection = "drills"

// DrillRepo реализует repository.DrillRepository поверх MongoDB
type DrillRepo struct {
	collection *mongo.Collection
}

// NewDrillRepo создает новый репозиторий дриллов
func NewDrillRepo(db *mongo.Database) *DrillRepo {
	return &DrillRepo{collection: db.Collection(drillsCollection)}
}

// InitializeIndexes создает индексы для фильтров каталога
func (r *DrillRepo) InitializeIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "difficulty", Value: 1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create drill indexes: %w", err)
	}
	return nil
}

// GetByID возвращает дрилл по ID
func (r *DrillRepo) GetByID(ctx context.Context, id string) (*entity.Drill, error) {
	var drill entity.Drill
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&drill)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &drill, nil
}

// GetByIDs возвращает дриллы по списку ID
func (r *DrillRepo) GetByIDs(ctx context.Context, ids []string) ([]entity.Drill, error) {
	if len(ids) == 0 {
		return []entity.Drill{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	drills := []entity.Drill{}
	if err := cursor.All(ctx, &drills); err != nil {
		return nil, err
	}
	return drills, nil
}

// List возвращает страницу дриллов по фильтру, новые первыми
func (r *DrillRepo) List(ctx context.Context, filter repository.DrillFilter, limit, offset int) ([]entity.Drill, int64, error) {
	query := buildDrillFilter(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count drills: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find drills: %w", err)
	}
	defer cursor.Close(ctx)

	drills := []entity.Drill{}
	if err := cursor.All(ctx, &drills); err != nil {
		return nil, 0, fmt.Errorf("failed to decode drills: %w", err)
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

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": drill.ID}, drill, options.Replace().SetUpsert(true))
	return err
}

// buildDrillFilter переводит фильтр каталога в запрос MongoDB.
// Поиск экранируется: пользовательский ввод не интерпретируется как регулярное выражение.
func buildDrillFilter(f repository.DrillFilter) bson.M {
	query := bson.M{}
	if f.Difficulty != "" {
		query["difficulty"] = string(f.Difficulty)
	}
	if len(f.Tags) > 0 {
		query["tags"] = bson.M{"$in": f.Tags}
	}
	if f.Search != "" {
		pattern := regexp.QuoteMeta(f.Search)
		query["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"tags": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	return query
}
