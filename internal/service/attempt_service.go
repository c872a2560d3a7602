package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/updrill-api/internal/domain/entity"
	"github.com/yourusername/updrill-api/internal/domain/repository"
	"github.com/yourusername/updrill-api/internal/event"
	"github.com/yourusername/updrill-api/internal/metrics"
	apperrors "github.com/yourusername/updrill-api/internal/pkg/errors"
	"github.com/yourusername/updrill-api/internal/service/scoring"
)

// Границы limit для истории попыток
const (
	DefaultAttemptsLimit = 5
	MaxAttemptsLimit     = 50
)

// SubmitAttemptInput — данные отправки попытки
type SubmitAttemptInput struct {
	DrillID string
	Answers []entity.Answer
}

// AttemptService управляет жизненным циклом попыток: оценка, сохранение, чтение
type AttemptService struct {
	attemptRepo repository.AttemptRepository
	drillRepo   repository.DrillRepository
	publisher   event.Publisher
	now         func() time.Time
}

// NewAttemptService создает новый сервис попыток
func NewAttemptService(
	attemptRepo repository.AttemptRepository,
	drillRepo repository.DrillRepository,
	publisher event.Publisher,
) *AttemptService {
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}
	return &AttemptService{
		attemptRepo: attemptRepo,
		drillRepo:   drillRepo,
		publisher:   publisher,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Submit проверяет ответы, оценивает их по дриллу и сохраняет новую попытку.
// Чтение дрилла и запись попытки не транзакционны: если дрилл удален между ними,
// попытка сохранится с оценкой по прочитанной версии.
func (s *AttemptService) Submit(ctx context.Context, userID string, input SubmitAttemptInput) (*entity.AttemptView, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized()
	}

	drillID, answers, err := validateSubmit(input)
	if err != nil {
		return nil, err
	}

	drill, err := s.drillRepo.GetByID(ctx, drillID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("Drill not found")
		}
		log.Printf("[AttemptService] Ошибка получения дрилла %s: %v", drillID, err)
		return nil, apperrors.Internal("failed to load drill", err)
	}

	attempt := &entity.Attempt{
		UserID:    userID,
		DrillID:   drill.ID,
		Answers:   answers,
		Score:     scoring.Score(drill, answers),
		CreatedAt: s.now(),
	}

	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		log.Printf("[AttemptService] Ошибка сохранения попытки пользователя %s для дрилла %s: %v", userID, drill.ID, err)
		return nil, apperrors.Internal("failed to save attempt", err)
	}

	metrics.AttemptsSubmitted.Inc()
	metrics.AttemptScores.Observe(float64(attempt.Score))
	log.Printf("[AttemptService] Попытка %s сохранена: пользователь %s, дрилл %s, оценка %d",
		attempt.ID, userID, drill.ID, attempt.Score)

	evt := event.NewAttemptCreated(attempt.ID, userID, drill.ID, attempt.Score, attempt.CreatedAt)
	if err := s.publisher.PublishAttemptCreated(ctx, evt); err != nil {
		log.Printf("[AttemptService] Не удалось опубликовать событие %s для попытки %s: %v", evt.EventType, attempt.ID, err)
	}

	view := entity.NewAttemptView(*attempt, drill)
	return &view, nil
}

// GetByID возвращает попытку владельцу. Сначала проверяется существование, затем владелец.
func (s *AttemptService) GetByID(ctx context.Context, requesterID, attemptID string) (*entity.AttemptView, error) {
	if requesterID == "" {
		return nil, apperrors.Unauthorized()
	}

	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("Attempt not found")
		}
		log.Printf("[AttemptService] Ошибка получения попытки %s: %v", attemptID, err)
		return nil, apperrors.Internal("failed to load attempt", err)
	}

	if !attempt.IsOwnedBy(requesterID) {
		log.Printf("[AttemptService] Пользователь %s запросил чужую попытку %s", requesterID, attemptID)
		return nil, apperrors.Forbidden("Access denied")
	}

	drill, err := s.drillRepo.GetByID(ctx, attempt.DrillID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[AttemptService] Ошибка получения дрилла %s для попытки %s: %v", attempt.DrillID, attemptID, err)
		return nil, apperrors.Internal("failed to load drill", err)
	}

	view := entity.NewAttemptView(*attempt, drill)
	if drill != nil {
		view.DrillQuestions = drill.Questions
	}
	return &view, nil
}

// ListByUser возвращает последние попытки пользователя, новые первыми
func (s *AttemptService) ListByUser(ctx context.Context, userID string, rawLimit string) ([]entity.AttemptView, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized()
	}
	return s.listViews(ctx, userID, ParseLimit(rawLimit))
}

// ExportByUser возвращает всю историю попыток пользователя для выгрузки
func (s *AttemptService) ExportByUser(ctx context.Context, userID string) ([]entity.AttemptView, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized()
	}
	return s.listViews(ctx, userID, 0)
}

// StatsByUser считает сводную статистику пользователя
func (s *AttemptService) StatsByUser(ctx context.Context, userID string) (*entity.UserStats, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized()
	}

	overall, err := s.attemptRepo.OverallStats(ctx, userID)
	if err != nil {
		log.Printf("[AttemptService] Ошибка подсчета статистики пользователя %s: %v", userID, err)
		return nil, apperrors.Internal("failed to compute stats", err)
	}

	top, err := s.attemptRepo.TopDrills(ctx, userID, entity.TopDrillsLimit)
	if err != nil {
		log.Printf("[AttemptService] Ошибка подсчета статистики по дриллам пользователя %s: %v", userID, err)
		return nil, apperrors.Internal("failed to compute drill stats", err)
	}

	if len(top) > 0 {
		ids := make([]string, 0, len(top))
		for _, d := range top {
			ids = append(ids, d.DrillID)
		}
		drills, err := s.drillsByID(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range top {
			if d, ok := drills[top[i].DrillID]; ok {
				top[i].DrillTitle = d.Title
			}
		}
	}
	if top == nil {
		top = []entity.DrillStats{}
	}

	return &entity.UserStats{Overall: *overall, TopDrills: top}, nil
}

// ParseLimit разбирает limit истории: по умолчанию 5, ограничение [1, 50].
// Нечисловое значение не является ошибкой и дает значение по умолчанию.
func ParseLimit(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultAttemptsLimit
	}
	if n < 1 {
		return 1
	}
	if n > MaxAttemptsLimit {
		return MaxAttemptsLimit
	}
	return n
}

func (s *AttemptService) listViews(ctx context.Context, userID string, limit int) ([]entity.AttemptView, error) {
	attempts, err := s.attemptRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		log.Printf("[AttemptService] Ошибка получения попыток пользователя %s: %v", userID, err)
		return nil, apperrors.Internal("failed to list attempts", err)
	}

	ids := make([]string, 0, len(attempts))
	seen := make(map[string]struct{}, len(attempts))
	for _, a := range attempts {
		if _, ok := seen[a.DrillID]; !ok {
			seen[a.DrillID] = struct{}{}
			ids = append(ids, a.DrillID)
		}
	}
	drills, err := s.drillsByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]entity.AttemptView, 0, len(attempts))
	for _, a := range attempts {
		var drill *entity.Drill
		if d, ok := drills[a.DrillID]; ok {
			drill = &d
		}
		views = append(views, entity.NewAttemptView(a, drill))
	}
	return views, nil
}

func (s *AttemptService) drillsByID(ctx context.Context, ids []string) (map[string]entity.Drill, error) {
	result := make(map[string]entity.Drill, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	drills, err := s.drillRepo.GetByIDs(ctx, ids)
	if err != nil {
		log.Printf("[AttemptService] Ошибка получения дриллов %v: %v", ids, err)
		return nil, apperrors.Internal("failed to load drills", err)
	}
	for _, d := range drills {
		result[d.ID] = d
	}
	return result, nil
}

// validateSubmit проверяет форму запроса и возвращает нормализованные данные
func validateSubmit(input SubmitAttemptInput) (string, []entity.Answer, error) {
	var fields []apperrors.FieldError

	drillID := strings.TrimSpace(input.DrillID)
	if drillID == "" {
		fields = append(fields, apperrors.FieldError{Field: "drillId", Message: "Drill ID is required"})
	}

	if len(input.Answers) == 0 {
		fields = append(fields, apperrors.FieldError{Field: "answers", Message: "At least one answer is required"})
	}

	answers := make([]entity.Answer, 0, len(input.Answers))
	seen := make(map[string]int, len(input.Answers))
	for i, a := range input.Answers {
		qid := strings.TrimSpace(a.QID)
		text := strings.TrimSpace(a.Text)

		if qid == "" {
			fields = append(fields, apperrors.FieldError{
				Field:   fmt.Sprintf("answers[%d].qid", i),
				Message: "Question ID is required",
			})
		} else if first, dup := seen[qid]; dup {
			fields = append(fields, apperrors.FieldError{
				Field:   fmt.Sprintf("answers[%d].qid", i),
				Message: fmt.Sprintf("Duplicate answer for question %q (already answered at answers[%d])", qid, first),
			})
		} else {
			seen[qid] = i
		}

		if text == "" {
			fields = append(fields, apperrors.FieldError{
				Field:   fmt.Sprintf("answers[%d].text", i),
				Message: "Answer text is required",
			})
		}
		answers = append(answers, entity.Answer{QID: qid, Text: text})
	}

	if len(fields) > 0 {
		return "", nil, apperrors.Validation(fields...)
	}
	return drillID, answers, nil
}
