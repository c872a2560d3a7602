package event

import "time"

// Ключи маршрутизации событий
const (
	AttemptCreatedKey = "attempt.created"
)

// AttemptCreated публикуется после сохранения попытки
type AttemptCreated struct {
	EventType  string    `json:"eventType"`
	AttemptID  string    `json:"attemptId"`
	UserID     string    `json:"userId"`
	DrillID    string    `json:"drillId"`
	Score      int       `json:"score"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewAttemptCreated создает событие о новой попытке
func NewAttemptCreated(attemptID, userID, drillID string, score int, at time.Time) *AttemptCreated {
	return &AttemptCreated{
		EventType:  AttemptCreatedKey,
		AttemptID:  attemptID,
		UserID:     userID,
		DrillID:    drillID,
		Score:      score,
		OccurredAt: at,
	}
}
