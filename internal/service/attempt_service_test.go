package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/updrill-api/internal/domain/entity"
	"github.com/yourusername/updrill-api/internal/event"
	apperrors "github.com/yourusername/updrill-api/internal/pkg/errors"
)

func closureDrill() *entity.Drill {
	return &entity.Drill{
		ID:         "js-fundamentals",
		Title:      "JavaScript Fundamentals",
		Difficulty: entity.DifficultyEasy,
		Tags:       entity.StringArray{"javascript"},
		Questions: entity.Questions{
			{ID: "q1", Prompt: "What is a closure?", Keywords: entity.StringArray{"closure", "scope"}},
			{ID: "q2", Prompt: "What is hoisting?", Keywords: entity.StringArray{"hoisting"}},
		},
	}
}

func newTestAttemptService() (*AttemptService, *MockAttemptRepo, *MockDrillRepo, *MockPublisher) {
	attempts := new(MockAttemptRepo)
	drills := new(MockDrillRepo)
	pub := new(MockPublisher)
	svc := NewAttemptService(attempts, drills, pub)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	return svc, attempts, drills, pub
}

// ============================================================================
// Submit
// ============================================================================

func TestSubmit_ScoresAndPersists(t *testing.T) {
	svc, attempts, drills, pub := newTestAttemptService()
	ctx := context.Background()

	drills.On("GetByID", ctx, "js-fundamentals").Return(closureDrill(), nil)
	attempts.On("Create", ctx, mock.MatchedBy(func(a *entity.Attempt) bool {
		return a.UserID == "user-1" && a.DrillID == "js-fundamentals" && a.Score == 50
	})).Return(nil)
	pub.On("PublishAttemptCreated", ctx, mock.MatchedBy(func(e *event.AttemptCreated) bool {
		return e.AttemptID == "attempt-1" && e.Score == 50 && e.EventType == event.AttemptCreatedKey
	})).Return(nil)

	view, err := svc.Submit(ctx, "user-1", SubmitAttemptInput{
		DrillID: "js-fundamentals",
		Answers: []entity.Answer{{QID: "q1", Text: "  A closure captures scope.  "}},
	})

	require.NoError(t, err)
	assert.Equal(t, "attempt-1", view.ID)
	assert.Equal(t, 50, view.Score, "1 из 2 вопросов полностью → 50")
	assert.Equal(t, "JavaScript Fundamentals", view.DrillTitle)
	assert.Equal(t, entity.DifficultyEasy, view.DrillDifficulty)
	assert.Equal(t, "A closure captures scope.", view.Answers[0].Text, "Текст ответа обрезается")
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), view.CreatedAt)
	attempts.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestSubmit_PublishFailureDoesNotFail(t *testing.T) {
	svc, attempts, drills, pub := newTestAttemptService()
	ctx := context.Background()

	drills.On("GetByID", ctx, "js-fundamentals").Return(closureDrill(), nil)
	attempts.On("Create", ctx, mock.Anything).Return(nil)
	pub.On("PublishAttemptCreated", ctx, mock.Anything).Return(errors.New("broker down"))

	view, err := svc.Submit(ctx, "user-1", SubmitAttemptInput{
		DrillID: "js-fundamentals",
		Answers: []entity.Answer{{QID: "q2", Text: "hoisting"}},
	})

	require.NoError(t, err)
	assert.Equal(t, 50, view.Score)
}

func TestSubmit_Unauthorized(t *testing.T) {
	svc, attempts, drills, _ := newTestAttemptService()

	_, err := svc.Submit(context.Background(), "", SubmitAttemptInput{DrillID: "d", Answers: []entity.Answer{{QID: "q1", Text: "x"}}})

	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))
	drills.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	attempts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmit_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  SubmitAttemptInput
		fields []string
	}{
		{
			name:   "empty drill and answers",
			input:  SubmitAttemptInput{},
			fields: []string{"drillId", "answers"},
		},
		{
			name:   "blank text",
			input:  SubmitAttemptInput{DrillID: "d", Answers: []entity.Answer{{QID: "q1", Text: "   "}}},
			fields: []string{"answers[0].text"},
		},
		{
			name:   "missing qid",
			input:  SubmitAttemptInput{DrillID: "d", Answers: []entity.Answer{{QID: "", Text: "x"}}},
			fields: []string{"answers[0].qid"},
		},
		{
			name: "duplicate qid",
			input: SubmitAttemptInput{DrillID: "d", Answers: []entity.Answer{
				{QID: "q1", Text: "a"},
				{QID: "q1", Text: "b"},
			}},
			fields: []string{"answers[1].qid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, attempts, drills, _ := newTestAttemptService()

			_, err := svc.Submit(context.Background(), "user-1", tt.input)

			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.KindValidation, appErr.Kind)
			var got []string
			for _, f := range appErr.Fields {
				got = append(got, f.Field)
			}
			assert.Equal(t, tt.fields, got)
			drills.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
			attempts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmit_DrillNotFound(t *testing.T) {
	svc, attempts, drills, _ := newTestAttemptService()
	ctx := context.Background()
	drills.On("GetByID", ctx, "missing").Return(nil, apperrors.ErrNotFound)

	_, err := svc.Submit(ctx, "user-1", SubmitAttemptInput{DrillID: "missing", Answers: []entity.Answer{{QID: "q1", Text: "x"}}})

	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	attempts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmit_PersistenceFailureIsInternal(t *testing.T) {
	svc, attempts, drills, pub := newTestAttemptService()
	ctx := context.Background()
	drills.On("GetByID", ctx, "js-fundamentals").Return(closureDrill(), nil)
	attempts.On("Create", ctx, mock.Anything).Return(errors.New("disk full"))

	_, err := svc.Submit(ctx, "user-1", SubmitAttemptInput{DrillID: "js-fundamentals", Answers: []entity.Answer{{QID: "q1", Text: "x"}}})

	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
	attempts.AssertNumberOfCalls(t, "Create", 1)
	pub.AssertNotCalled(t, "PublishAttemptCreated", mock.Anything, mock.Anything)
}

func TestSubmit_UnknownQIDScoresZero(t *testing.T) {
	svc, attempts, drills, pub := newTestAttemptService()
	ctx := context.Background()
	drills.On("GetByID", ctx, "js-fundamentals").Return(closureDrill(), nil)
	attempts.On("Create", ctx, mock.Anything).Return(nil)
	pub.On("PublishAttemptCreated", ctx, mock.Anything).Return(nil)

	view, err := svc.Submit(ctx, "user-1", SubmitAttemptInput{
		DrillID: "js-fundamentals",
		Answers: []entity.Answer{{QID: "stale", Text: "closure scope hoisting"}},
	})

	require.NoError(t, err)
	assert.Equal(t, 0, view.Score)
}

// ============================================================================
// GetByID
// ============================================================================

func TestGetByID_Owner(t *testing.T) {
	svc, attempts, drills, _ := newTestAttemptService()
	ctx := context.Background()
	attempts.On("GetByID", ctx, "a1").Return(&entity.Attempt{ID: "a1", UserID: "user-1", DrillID: "js-fundamentals", Score: 70}, nil)
	drills.On("GetByID", ctx, "js-fundamentals").Return(closureDrill(), nil)

	view, err := svc.GetByID(ctx, "user-1", "a1")

	require.NoError(t, err)
	assert.Equal(t, 70, view.Score)
	assert.Equal(t, "JavaScript Fundamentals", view.DrillTitle)
	assert.Len(t, view.DrillQuestions, 2)
}

func TestGetByID_NotOwnerIsForbidden(t *testing.T) {
	svc, attempts, drills, _ := newTestAttemptService()
	ctx := context.Background()
	attempts.On("GetByID", ctx, "a1").Return(&entity.Attempt{ID: "a1", UserID: "user-1"}, nil)

	_, err := svc.GetByID(ctx, "user-2", "a1")

	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
	drills.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetByID_MissingIsNotFoundForAnyone(t *testing.T) {
	svc, attempts, _, _ := newTestAttemptService()
	ctx := context.Background()
	attempts.On("GetByID", ctx, "nope").Return(nil, apperrors.ErrNotFound)

	_, err := svc.GetByID(ctx, "user-2", "nope")

	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err), "Несуществующая попытка → NotFound, а не Forbidden")
}

func TestGetByID_DeletedDrillStillReturnsAttempt(t *testing.T) {
	svc, attempts, drills, _ := newTestAttemptService()
	ctx := context.Background()
	attempts.On("GetByID", ctx, "a1").Return(&entity.Attempt{ID: "a1", UserID: "user-1", DrillID: "gone", Score: 40}, nil)
	drills.On("GetByID", ctx, "gone").Return(nil, apperrors.ErrNotFound)

	view, err := svc.GetByID(ctx, "user-1", "a1")

	require.NoError(t, err)
	assert.Equal(t, 40, view.Score)
	assert.Empty(t, view.DrillTitle)
}

// ============================================================================
// ListByUser / ExportByUser
// ============================================================================

func TestParseLimit(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 5},
		{"abc", 5},
		{"10", 10},
		{"0", 1},
		{"-3", 1},
		{"51", 50},
		{"1000", 50},
		{" 7 ", 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLimit(tt.raw), "limit=%q", tt.raw)
	}
}

func TestListByUser_JoinsDrillsAndClampsLimit(t *testing.T) {
	svc, attempts, drills, _ := newTestAttemptService()
	ctx := context.Background()

	newer := entity.Attempt{ID: "a2", UserID: "user-1", DrillID: "js-fundamentals", Score: 90}
	older := entity.Attempt{ID: "a1", UserID: "user-1", DrillID: "js-fundamentals", Score: 10}
	attempts.On("ListByUser", ctx, "user-1", 5).Return([]entity.Attempt{newer, older}, nil)
	drills.On("GetByIDs", ctx, []string{"js-fundamentals"}).Return([]entity.Drill{*closureDrill()}, nil)

	views, err := svc.ListByUser(ctx, "user-1", "abc")

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "a2", views[0].ID, "Порядок репозитория (новые первыми) сохраняется")
	assert.Equal(t, "JavaScript Fundamentals", views[1].DrillTitle)
	assert.Equal(t, entity.StringArray{"javascript"}, views[0].DrillTags)
}

func TestListByUser_Empty(t *testing.T) {
	svc, attempts, drills, _ := newTestAttemptService()
	ctx := context.Background()
	attempts.On("ListByUser", ctx, "user-1", 50).Return([]entity.Attempt{}, nil)

	views, err := svc.ListByUser(ctx, "user-1", "99")

	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
	drills.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything)
}

func TestExportByUser_NoLimit(t *testing.T) {
	svc, attempts, drills, _ := newTestAttemptService()
	ctx := context.Background()
	attempts.On("ListByUser", ctx, "user-1", 0).Return([]entity.Attempt{{ID: "a1", UserID: "user-1", DrillID: "x"}}, nil)
	drills.On("GetByIDs", ctx, []string{"x"}).Return([]entity.Drill{}, nil)

	views, err := svc.ExportByUser(ctx, "user-1")

	require.NoError(t, err)
	assert.Len(t, views, 1)
}

// ============================================================================
// StatsByUser
// ============================================================================

func TestStatsByUser_ZeroAttempts(t *testing.T) {
	svc, attempts, drills, _ := newTestAttemptService()
	ctx := context.Background()
	attempts.On("OverallStats", ctx, "user-1").Return(&entity.OverallStats{}, nil)
	attempts.On("TopDrills", ctx, "user-1", entity.TopDrillsLimit).Return([]entity.DrillStats{}, nil)

	stats, err := svc.StatsByUser(ctx, "user-1")

	require.NoError(t, err)
	assert.Equal(t, entity.OverallStats{}, stats.Overall)
	assert.NotNil(t, stats.TopDrills)
	assert.Empty(t, stats.TopDrills)
	drills.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything)
}

func TestStatsByUser_TopDrillsGetTitles(t *testing.T) {
	svc, attempts, drills, _ := newTestAttemptService()
	ctx := context.Background()
	attempts.On("OverallStats", ctx, "user-1").Return(&entity.OverallStats{TotalAttempts: 3, AverageScore: 60, HighestScore: 90, LowestScore: 30}, nil)
	attempts.On("TopDrills", ctx, "user-1", 5).Return([]entity.DrillStats{
		{DrillID: "js-fundamentals", Attempts: 2, BestScore: 90, AverageScore: 75},
		{DrillID: "gone", Attempts: 1, BestScore: 30, AverageScore: 30},
	}, nil)
	drills.On("GetByIDs", ctx, []string{"js-fundamentals", "gone"}).Return([]entity.Drill{*closureDrill()}, nil)

	stats, err := svc.StatsByUser(ctx, "user-1")

	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Overall.TotalAttempts)
	require.Len(t, stats.TopDrills, 2)
	assert.Equal(t, "JavaScript Fundamentals", stats.TopDrills[0].DrillTitle)
	assert.Empty(t, stats.TopDrills[1].DrillTitle)
}

func TestStatsByUser_RepoError(t *testing.T) {
	svc, attempts, _, _ := newTestAttemptService()
	ctx := context.Background()
	attempts.On("OverallStats", ctx, "user-1").Return(nil, errors.New("timeout"))

	_, err := svc.StatsByUser(ctx, "user-1")

	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
}
