package service

import (
	"context"
	"errors"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/updrill-api/internal/cache"
	"github.com/yourusername/updrill-api/internal/domain/entity"
	"github.com/yourusername/updrill-api/internal/domain/repository"
	apperrors "github.com/yourusername/updrill-api/internal/pkg/errors"
)

func newTestDrillService() (*DrillService, *MockDrillRepo, *fakeClock) {
	repo := new(MockDrillRepo)
	clock := &fakeClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	svc := NewDrillService(repo, cache.NewMemorySlot(clock.Now), 60*time.Second)
	return svc, repo, clock
}

func TestDrillList_DefaultQueryIsCached(t *testing.T) {
	svc, repo, clock := newTestDrillService()
	ctx := context.Background()

	repo.On("List", ctx, repository.DrillFilter{}, 50, 0).
		Return([]entity.Drill{*closureDrill()}, int64(1), nil)

	first, err := svc.List(ctx, DrillQuery{})
	require.NoError(t, err)
	second, err := svc.List(ctx, DrillQuery{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	repo.AssertNumberOfCalls(t, "List", 1)

	// Через 59 секунд значение еще свежее
	clock.Advance(59 * time.Second)
	_, err = svc.List(ctx, DrillQuery{})
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "List", 1)

	// Ровно на TTL значение устаревает
	clock.Advance(time.Second)
	_, err = svc.List(ctx, DrillQuery{})
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "List", 2)
}

func TestDrillList_ExplicitDefaultsUseCache(t *testing.T) {
	svc, repo, _ := newTestDrillService()
	ctx := context.Background()
	repo.On("List", ctx, repository.DrillFilter{}, 50, 0).Return([]entity.Drill{}, int64(0), nil)

	_, err := svc.List(ctx, DrillQuery{Page: "1", Limit: "50"})
	require.NoError(t, err)
	_, err = svc.List(ctx, DrillQuery{})
	require.NoError(t, err)

	repo.AssertNumberOfCalls(t, "List", 1)
}

func TestDrillList_FilteredQueriesBypassCache(t *testing.T) {
	svc, repo, _ := newTestDrillService()
	ctx := context.Background()

	filter := repository.DrillFilter{
		Difficulty: entity.DifficultyEasy,
		Tags:       []string{"javascript", "react"},
		Search:     "hooks",
	}
	repo.On("List", ctx, filter, 50, 0).Return([]entity.Drill{}, int64(0), nil)

	q := DrillQuery{Difficulty: "Easy", Tags: "javascript, react,", Search: " hooks "}
	_, err := svc.List(ctx, q)
	require.NoError(t, err)
	_, err = svc.List(ctx, q)
	require.NoError(t, err)

	repo.AssertNumberOfCalls(t, "List", 2)
}

func TestDrillList_Pagination(t *testing.T) {
	tests := []struct {
		name      string
		query     DrillQuery
		limit     int
		offset    int
		total     int64
		wantPage  int
		wantLimit int
		wantPages int
	}{
		{"second page", DrillQuery{Page: "2", Limit: "10"}, 10, 10, 25, 2, 10, 3},
		{"limit clamped", DrillQuery{Limit: "500"}, 100, 0, 100, 1, 100, 1},
		{"zero limit", DrillQuery{Limit: "0"}, 1, 0, 3, 1, 1, 3},
		{"bad page", DrillQuery{Page: "x", Limit: "20"}, 20, 0, 0, 1, 20, 0},
		{"negative page", DrillQuery{Page: "-4", Limit: "20"}, 20, 0, 41, 1, 20, 3},
		{"huge page", DrillQuery{Page: strconv.Itoa(math.MaxInt)}, 50, (math.MaxInt/50 - 1) * 50, 7, math.MaxInt / 50, 50, 1},
		{"page beyond int", DrillQuery{Page: "99999999999999999999", Limit: "10"}, 10, 0, 7, 1, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestDrillService()
			ctx := context.Background()
			repo.On("List", ctx, repository.DrillFilter{}, tt.limit, tt.offset).Return([]entity.Drill{}, tt.total, nil)

			listing, err := svc.List(ctx, tt.query)

			require.NoError(t, err)
			assert.GreaterOrEqual(t, tt.offset, 0)
			assert.Equal(t, entity.Pagination{Page: tt.wantPage, Limit: tt.wantLimit, Total: tt.total, Pages: tt.wantPages}, listing.Pagination)
		})
	}
}

func TestDrillList_InvalidDifficulty(t *testing.T) {
	svc, repo, _ := newTestDrillService()

	_, err := svc.List(context.Background(), DrillQuery{Difficulty: "impossible"})

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindValidation, appErr.Kind)
	assert.Equal(t, "difficulty", appErr.Fields[0].Field)
	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDrillList_RepoErrorNotCached(t *testing.T) {
	svc, repo, _ := newTestDrillService()
	ctx := context.Background()
	repo.On("List", ctx, repository.DrillFilter{}, 50, 0).Return(nil, int64(0), errors.New("conn reset")).Once()
	repo.On("List", ctx, repository.DrillFilter{}, 50, 0).Return([]entity.Drill{}, int64(0), nil).Once()

	_, err := svc.List(ctx, DrillQuery{})
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))

	listing, err := svc.List(ctx, DrillQuery{})
	require.NoError(t, err)
	assert.NotNil(t, listing)
	repo.AssertNumberOfCalls(t, "List", 2)
}

func TestDrillGetByID(t *testing.T) {
	svc, repo, _ := newTestDrillService()
	ctx := context.Background()
	repo.On("GetByID", ctx, "js-fundamentals").Return(closureDrill(), nil)
	repo.On("GetByID", ctx, "missing").Return(nil, apperrors.ErrNotFound)

	drill, err := svc.GetByID(ctx, "js-fundamentals")
	require.NoError(t, err)
	assert.Equal(t, "JavaScript Fundamentals", drill.Title)

	_, err = svc.GetByID(ctx, "missing")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestNewDrillService_DefaultTTL(t *testing.T) {
	svc := NewDrillService(new(MockDrillRepo), nil, 0)
	assert.Equal(t, 60*time.Second, svc.CacheTTL())
}
