package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/updrill-api/internal/domain/entity"
	"github.com/yourusername/updrill-api/internal/domain/repository"
	"github.com/yourusername/updrill-api/internal/event"
)

// ============================================================================
// Моки репозиториев
// ============================================================================

// MockAttemptRepo реализует repository.AttemptRepository
type MockAttemptRepo struct {
	mock.Mock
}

func (m *MockAttemptRepo) Create(ctx context.Context, attempt *entity.Attempt) error {
	args := m.Called(ctx, attempt)
	if args.Error(0) == nil && attempt.ID == "" {
		attempt.ID = "attempt-1"
	}
	return args.Error(0)
}

func (m *MockAttemptRepo) GetByID(ctx context.Context, id string) (*entity.Attempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepo) ListByUser(ctx context.Context, userID string, limit int) ([]entity.Attempt, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Attempt), args.Error(1)
}

func (m *MockAttemptRepo) OverallStats(ctx context.Context, userID string) (*entity.OverallStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.OverallStats), args.Error(1)
}

func (m *MockAttemptRepo) TopDrills(ctx context.Context, userID string, limit int) ([]entity.DrillStats, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.DrillStats), args.Error(1)
}

// MockDrillRepo реализует repository.DrillRepository
type MockDrillRepo struct {
	mock.Mock
}

func (m *MockDrillRepo) GetByID(ctx context.Context, id string) (*entity.Drill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Drill), args.Error(1)
}

func (m *MockDrillRepo) GetByIDs(ctx context.Context, ids []string) ([]entity.Drill, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Drill), args.Error(1)
}

func (m *MockDrillRepo) List(ctx context.Context, filter repository.DrillFilter, limit, offset int) ([]entity.Drill, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Drill), args.Get(1).(int64), args.Error(2)
}

func (m *MockDrillRepo) Upsert(ctx context.Context, drill *entity.Drill) error {
	return m.Called(ctx, drill).Error(0)
}

// MockUserRepo реализует repository.UserRepository
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID == "" {
		user.ID = "user-new"
	}
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, user *entity.User) error {
	return m.Called(ctx, user).Error(0)
}

// MockPublisher реализует event.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishAttemptCreated(ctx context.Context, evt *event.AttemptCreated) error {
	return m.Called(ctx, evt).Error(0)
}

func (m *MockPublisher) Close() error {
	return m.Called().Error(0)
}

// ============================================================================
// Кеш с управляемыми часами
// ============================================================================

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
