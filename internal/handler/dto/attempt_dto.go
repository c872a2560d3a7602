package dto

import (
	"time"

	"github.com/yourusername/updrill-api/internal/domain/entity"
)

// AnswerRequest — ответ на один вопрос
type AnswerRequest struct {
	QID  string `json:"qid"`
	Text string `json:"text"`
}

// SubmitAttemptRequest — тело POST /api/attempts.
// Поля проверяются в сервисе, чтобы вернуть ошибки по каждому полю.
type SubmitAttemptRequest struct {
	DrillID string          `json:"drillId"`
	Answers []AnswerRequest `json:"answers"`
}

// ToAnswers переводит ответы запроса в доменные
func (r SubmitAttemptRequest) ToAnswers() []entity.Answer {
	answers := make([]entity.Answer, 0, len(r.Answers))
	for _, a := range r.Answers {
		answers = append(answers, entity.Answer{QID: a.QID, Text: a.Text})
	}
	return answers
}

// AttemptResponse — попытка в ответах API
type AttemptResponse struct {
	ID              string             `json:"id"`
	DrillID         string             `json:"drillId"`
	DrillTitle      string             `json:"drillTitle"`
	DrillDifficulty entity.Difficulty  `json:"drillDifficulty"`
	DrillTags       entity.StringArray `json:"drillTags,omitempty"`
	Answers         entity.Answers     `json:"answers,omitempty"`
	Score           int                `json:"score"`
	CreatedAt       time.Time          `json:"createdAt"`
	DrillQuestions  entity.Questions   `json:"drillQuestions,omitempty"`
}

// NewAttemptResponse создает ответ; withAnswers=false для списка истории
func NewAttemptResponse(view *entity.AttemptView, withAnswers bool) AttemptResponse {
	resp := AttemptResponse{
		ID:              view.ID,
		DrillID:         view.DrillID,
		DrillTitle:      view.DrillTitle,
		DrillDifficulty: view.DrillDifficulty,
		DrillTags:       view.DrillTags,
		Score:           view.Score,
		CreatedAt:       view.CreatedAt,
		DrillQuestions:  view.DrillQuestions,
	}
	if withAnswers {
		resp.Answers = view.Answers
	}
	return resp
}

// AttemptListResponse — ответ GET /api/attempts
type AttemptListResponse struct {
	Attempts []AttemptResponse `json:"attempts"`
	Count    int               `json:"count"`
}

// NewAttemptListResponse создает ответ списка попыток
func NewAttemptListResponse(views []entity.AttemptView) AttemptListResponse {
	attempts := make([]AttemptResponse, 0, len(views))
	for i := range views {
		attempts = append(attempts, NewAttemptResponse(&views[i], false))
	}
	return AttemptListResponse{Attempts: attempts, Count: len(attempts)}
}
