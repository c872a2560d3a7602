package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/yourusername/updrill-api/internal/domain/entity"
	apperrors "github.com/yourusername/updrill-api/internal/pkg/errors"
)

const attemptsCollection = "attempts"

// AttemptRepo реализует repository.AttemptRepository поверх MongoDB
type AttemptRepo struct {
	collection *mongo.Collection
}

// NewAttemptRepo создает новый репозиторий попыток
func NewAttemptRepo(db *mongo.Database) *AttemptRepo {
	return &AttemptRepo{collection: db.Collection(attemptsCollection)}
}

// InitializeIndexes создает индекс для выборки истории пользователя
func (r *AttemptRepo) InitializeIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "drill_id", Value: 1}}},
	}
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create attempt indexes: %w", err)
	}
	return nil
}

// Create сохраняет новую попытку
func (r *AttemptRepo) Create(ctx context.Context, attempt *entity.Attempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, attempt)
	return err
}

// GetByID возвращает попытку по ID
func (r *AttemptRepo) GetByID(ctx context.Context, id string) (*entity.Attempt, error) {
	var attempt entity.Attempt
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&attempt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// ListByUser возвращает попытки пользователя, новые первыми
func (r *AttemptRepo) ListByUser(ctx context.Context, userID string, limit int) ([]entity.Attempt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	attempts := []entity.Attempt{}
	if err := cursor.All(ctx, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

// OverallStats считает агрегаты по попыткам пользователя
func (r *AttemptRepo) OverallStats(ctx context.Context, userID string) (*entity.OverallStats, error) {
	cursor, err := r.collection.Aggregate(ctx, overallStatsPipeline(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate overall stats: %w", err)
	}
	defer cursor.Close(ctx)

	var results []entity.OverallStats
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode overall stats: %w", err)
	}
	return firstOverall(results), nil
}

// TopDrills возвращает дриллы пользователя с лучшими результатами
func (r *AttemptRepo) TopDrills(ctx context.Context, userID string, limit int) ([]entity.DrillStats, error) {
	cursor, err := r.collection.Aggregate(ctx, topDrillsPipeline(userID, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate drill stats: %w", err)
	}
	defer cursor.Close(ctx)

	stats := []entity.DrillStats{}
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode drill stats: %w", err)
	}
	return stats, nil
}

// overallStatsPipeline сводит все попытки пользователя в один документ.
// Без попыток $group ничего не возвращает.
func overallStatsPipeline(userID string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":            nil,
			"total_attempts": bson.M{"$sum": 1},
			"average_score":  bson.M{"$avg": "$score"},
			"highest_score":  bson.M{"$max": "$score"},
			"lowest_score":   bson.M{"$min": "$score"},
		}}},
	}
}

// topDrillsPipeline группирует попытки по дриллу; порядок: лучший результат, затем id дрилла
func topDrillsPipeline(userID string, limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":           "$drill_id",
			"attempts":      bson.M{"$sum": 1},
			"best_score":    bson.M{"$max": "$score"},
			"average_score": bson.M{"$avg": "$score"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "best_score", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
	}
}

func firstOverall(results []entity.OverallStats) *entity.OverallStats {
	if len(results) == 0 {
		return &entity.OverallStats{}
	}
	return &results[0]
}
