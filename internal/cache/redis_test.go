package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/updrill-api/internal/pkg/errors"
)

// MockCacheRepo мок repository.CacheRepository
type MockCacheRepo struct {
	mock.Mock
}

func (m *MockCacheRepo) Increment(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockCacheRepo) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}
func (m *MockCacheRepo) GetJSON(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	if raw, ok := args.Get(0).([]byte); ok && raw != nil {
		if err := json.Unmarshal(raw, dest); err != nil {
			return err
		}
	}
	return args.Error(1)
}
func (m *MockCacheRepo) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.Called(ctx, key, expiration).Error(0)
}
func (m *MockCacheRepo) TTL(ctx context.Context, key string) (time.Duration, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(time.Duration), args.Error(1)
}

func TestRedisSlot_Hit(t *testing.T) {
	repo := new(MockCacheRepo)
	raw, _ := json.Marshal(listing(7))
	repo.On("GetJSON", mock.Anything, DefaultListingKey, mock.Anything).Return(raw, nil)

	got, ok := NewRedisSlot(repo).Get(context.Background(), DefaultListingKey)

	require.True(t, ok)
	assert.Equal(t, int64(7), got.Pagination.Total)
	repo.AssertExpectations(t)
}

func TestRedisSlot_MissAndErrorAreMisses(t *testing.T) {
	for _, err := range []error{apperrors.ErrNotFound, errors.New("connection refused")} {
		repo := new(MockCacheRepo)
		repo.On("GetJSON", mock.Anything, DefaultListingKey, mock.Anything).Return(nil, err)

		_, ok := NewRedisSlot(repo).Get(context.Background(), DefaultListingKey)
		assert.False(t, ok)
	}
}

func TestRedisSlot_SetPassesTTL(t *testing.T) {
	repo := new(MockCacheRepo)
	value := listing(1)
	repo.On("SetJSON", mock.Anything, DefaultListingKey, value, 60*time.Second).Return(errors.New("down"))

	assert.NotPanics(t, func() {
		NewRedisSlot(repo).Set(context.Background(), DefaultListingKey, value, 60*time.Second)
	})
	repo.AssertExpectations(t)
}
