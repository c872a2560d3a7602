package handler

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/updrill-api/internal/domain/entity"
	"github.com/yourusername/updrill-api/internal/domain/repository"
	apperrors "github.com/yourusername/updrill-api/internal/pkg/errors"
)

// ============================================================================
// Репозитории в памяти
// ============================================================================

type memDrillRepo struct {
	mu        sync.Mutex
	drills    map[string]entity.Drill
	listCalls int
}

func newMemDrillRepo(drills ...entity.Drill) *memDrillRepo {
	r := &memDrillRepo{drills: map[string]entity.Drill{}}
	for _, d := range drills {
		r.drills[d.ID] = d
	}
	return r
}

func (r *memDrillRepo) GetByID(_ context.Context, id string) (*entity.Drill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drills[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &d, nil
}

func (r *memDrillRepo) GetByIDs(_ context.Context, ids []string) ([]entity.Drill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Drill
	for _, id := range ids {
		if d, ok := r.drills[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *memDrillRepo) List(_ context.Context, f repository.DrillFilter, limit, offset int) ([]entity.Drill, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++

	var all []entity.Drill
	for _, d := range r.drills {
		if f.Difficulty != "" && d.Difficulty != f.Difficulty {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(d.Title), strings.ToLower(f.Search)) {
			continue
		}
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := int64(len(all))
	if offset >= len(all) {
		return []entity.Drill{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *memDrillRepo) Upsert(_ context.Context, d *entity.Drill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drills[d.ID] = *d
	return nil
}

type memAttemptRepo struct {
	mu       sync.Mutex
	attempts []entity.Attempt
}

func (r *memAttemptRepo) Create(_ context.Context, a *entity.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	r.attempts = append(r.attempts, *a)
	return nil
}

func (r *memAttemptRepo) GetByID(_ context.Context, id string) (*entity.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attempts {
		if a.ID == id {
			a := a
			return &a, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memAttemptRepo) ListByUser(_ context.Context, userID string, limit int) ([]entity.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.Attempt{}
	for i := len(r.attempts) - 1; i >= 0; i-- {
		if r.attempts[i].UserID == userID {
			out = append(out, r.attempts[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memAttemptRepo) OverallStats(ctx context.Context, userID string) (*entity.OverallStats, error) {
	all, _ := r.ListByUser(ctx, userID, 0)
	stats := &entity.OverallStats{}
	for i, a := range all {
		stats.TotalAttempts++
		stats.AverageScore += float64(a.Score)
		if i == 0 || a.Score > stats.HighestScore {
			stats.HighestScore = a.Score
		}
		if i == 0 || a.Score < stats.LowestScore {
			stats.LowestScore = a.Score
		}
	}
	if stats.TotalAttempts > 0 {
		stats.AverageScore /= float64(stats.TotalAttempts)
	}
	return stats, nil
}

func (r *memAttemptRepo) TopDrills(ctx context.Context, userID string, limit int) ([]entity.DrillStats, error) {
	all, _ := r.ListByUser(ctx, userID, 0)
	byDrill := map[string]*entity.DrillStats{}
	var order []string
	for _, a := range all {
		s, ok := byDrill[a.DrillID]
		if !ok {
			s = &entity.DrillStats{DrillID: a.DrillID}
			byDrill[a.DrillID] = s
			order = append(order, a.DrillID)
		}
		s.AverageScore = (s.AverageScore*float64(s.Attempts) + float64(a.Score)) / float64(s.Attempts+1)
		s.Attempts++
		if a.Score > s.BestScore {
			s.BestScore = a.Score
		}
	}
	out := make([]entity.DrillStats, 0, len(order))
	for _, id := range order {
		out = append(out, *byDrill[id])
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BestScore != out[j].BestScore {
			return out[i].BestScore > out[j].BestScore
		}
		return out[i].DrillID < out[j].DrillID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]entity.User
}

func newMemUserRepo(users ...entity.User) *memUserRepo {
	r := &memUserRepo{users: map[string]entity.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return apperrors.ErrConflict
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	r.users[u.ID] = *u
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &u, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memUserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.users[u.ID] = *u
	return nil
}
