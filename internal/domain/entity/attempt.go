package entity

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Answer — ответ пользователя на один вопрос
type Answer struct {
	QID  string `json:"qid" bson:"qid"`
	Text string `json:"text" bson:"text"`
}

// Answers — упорядоченный список ответов, хранится в JSONB
type Answers []Answer

// Scan реализует интерфейс sql.Scanner для Answers
func (a *Answers) Scan(value interface{}) error {
	if value == nil {
		*a = Answers{}
		return nil
	}
	return scanJSONB(value, a)
}

// Value реализует интерфейс driver.Valuer для Answers
func (a Answers) Value() (driver.Value, error) {
	if len(a) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

// Attempt — неизменяемая запись одной оценки.
// Score вычисляется один раз при создании и больше не пересчитывается.
type Attempt struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	UserID    string    `gorm:"size:36;not null;index:idx_attempts_user_created,priority:1" json:"userId" bson:"user_id"`
	DrillID   string    `gorm:"size:64;not null;index" json:"drillId" bson:"drill_id"`
	Answers   Answers   `gorm:"type:jsonb;not null" json:"answers" bson:"answers"`
	Score     int       `gorm:"not null;check:score >= 0 AND score <= 100" json:"score" bson:"score"`
	CreatedAt time.Time `gorm:"not null;index:idx_attempts_user_created,priority:2,sort:desc" json:"createdAt" bson:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Attempt) TableName() string {
	return "attempts"
}

// IsOwnedBy проверяет владельца попытки
func (a *Attempt) IsOwnedBy(userID string) bool {
	return userID != "" && a.UserID == userID
}

// AttemptView — попытка вместе с данными дрилла, подтянутыми при чтении
type AttemptView struct {
	Attempt
	DrillTitle      string      `json:"drillTitle"`
	DrillDifficulty Difficulty  `json:"drillDifficulty"`
	DrillTags       StringArray `json:"drillTags"`
	// DrillQuestions заполняется только для детального просмотра попытки
	DrillQuestions Questions `json:"drillQuestions,omitempty"`
}

// NewAttemptView объединяет попытку с дриллом. drill может быть nil (дрилл удален).
func NewAttemptView(attempt Attempt, drill *Drill) AttemptView {
	view := AttemptView{Attempt: attempt}
	if drill != nil {
		view.DrillTitle = drill.Title
		view.DrillDifficulty = drill.Difficulty
		view.DrillTags = drill.Tags
	}
	return view
}
