// Package scoring вычисляет оценку попытки по совпадению ключевых слов.
//
// Оценка — чистая функция от (дрилл, ответы): без ввода-вывода, без общего
// состояния, поэтому безопасна для одновременного вызова из любого числа запросов.
package scoring

import (
	"math"
	"strings"

	"github.com/yourusername/updrill-api/internal/domain/entity"
)

const (
	// PointsPerQuestion — максимум очков за один вопрос
	PointsPerQuestion = 10
	// MaxScore — верхняя граница итоговой оценки
	MaxScore = 100
)

// QuestionResult — результат оценки одного вопроса
type QuestionResult struct {
	QID      string `json:"qid"`
	Answered bool   `json:"answered"`
	Matched  int    `json:"matched"`
	Total    int    `json:"total"`
	Points   int    `json:"points"`
}

// Result — полная разбивка оценки
type Result struct {
	Score       int              `json:"score"`
	TotalPoints int              `json:"totalPoints"`
	MaxPoints   int              `json:"maxPoints"`
	Questions   []QuestionResult `json:"questions"`
}

// Score возвращает итоговую оценку 0..100
func Score(drill *entity.Drill, answers []entity.Answer) int {
	return Evaluate(drill, answers).Score
}

// Evaluate считает оценку с разбивкой по вопросам.
// Ответы ищут вопрос по qid; ответы на несуществующие вопросы игнорируются.
// Если на один qid пришло несколько ответов, учитывается последний.
func Evaluate(drill *entity.Drill, answers []entity.Answer) Result {
	if drill == nil || drill.QuestionCount() == 0 {
		return Result{Questions: []QuestionResult{}}
	}

	lastAnswer := make(map[string]string, len(answers))
	for _, a := range answers {
		lastAnswer[a.QID] = a.Text
	}

	result := Result{
		MaxPoints: drill.QuestionCount() * PointsPerQuestion,
		Questions: make([]QuestionResult, 0, drill.QuestionCount()),
	}

	for _, q := range drill.Questions {
		qr := QuestionResult{QID: q.ID, Total: len(q.Keywords)}
		if text, ok := lastAnswer[q.ID]; ok {
			qr.Answered = true
			qr.Matched = MatchKeywords(text, q.Keywords)
			qr.Points = questionPoints(qr.Matched, qr.Total)
		}
		result.TotalPoints += qr.Points
		result.Questions = append(result.Questions, qr)
	}

	result.Score = clamp(int(math.Round(float64(result.TotalPoints)/float64(result.MaxPoints)*MaxScore)), 0, MaxScore)
	return result
}

// MatchKeywords считает ключевые слова, входящие в текст как подстрока (без учета регистра)
func MatchKeywords(text string, keywords []string) int {
	lower := strings.ToLower(text)
	matched := 0
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			matched++
		}
	}
	return matched
}

func questionPoints(matched, total int) int {
	if total == 0 {
		return 0
	}
	points := int(math.Round(float64(matched) / float64(total) * PointsPerQuestion))
	return clamp(points, 0, PointsPerQuestion)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
