package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Difficulty — уровень сложности дрилла
type Difficulty string

// Допустимые уровни сложности
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty разбирает строку в Difficulty (без учета регистра)
func ParseDifficulty(s string) (Difficulty, bool) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	return d, d.Valid()
}

// Valid проверяет, что значение входит в допустимый набор
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Question — один вопрос дрилла с ключевыми словами для оценки
type Question struct {
	ID       string      `json:"id" bson:"id"`
	Prompt   string      `json:"prompt" bson:"prompt"`
	Keywords StringArray `json:"keywords" bson:"keywords"`
}

// Questions — упорядоченный список вопросов, хранится в JSONB
type Questions []Question

// Scan реализует интерфейс sql.Scanner для Questions
func (q *Questions) Scan(value interface{}) error {
	if value == nil {
		*q = Questions{}
		return nil
	}
	return scanJSONB(value, q)
}

// Value реализует интерфейс driver.Valuer для Questions
func (q Questions) Value() (driver.Value, error) {
	if len(q) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(q)
}

// Drill представляет набор вопросов для тренировки
type Drill struct {
	ID         string      `gorm:"primaryKey;size:64" json:"id" bson:"_id"`
	Title      string      `gorm:"size:200;not null" json:"title" bson:"title"`
	Difficulty Difficulty  `gorm:"size:10;not null;default:'medium';index" json:"difficulty" bson:"difficulty"`
	Tags       StringArray `gorm:"type:jsonb;not null" json:"tags" bson:"tags"`
	Questions  Questions   `gorm:"type:jsonb;not null" json:"questions" bson:"questions"`
	CreatedAt  time.Time   `gorm:"index" json:"createdAt" bson:"created_at"`
	UpdatedAt  time.Time   `json:"updatedAt" bson:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Drill) TableName() string {
	return "drills"
}

// QuestionCount возвращает количество вопросов
func (d *Drill) QuestionCount() int {
	return len(d.Questions)
}

// Validate проверяет инварианты дрилла перед сохранением
func (d *Drill) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("drill title is required")
	}
	if d.Difficulty == "" {
		d.Difficulty = DifficultyMedium
	}
	if !d.Difficulty.Valid() {
		return fmt.Errorf("invalid difficulty %q", d.Difficulty)
	}
	seen := make(map[string]struct{}, len(d.Questions))
	for i, q := range d.Questions {
		if q.ID == "" {
			return fmt.Errorf("question #%d has empty id", i)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}

// Pagination описывает параметры страницы списка
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// DrillListing — ответ списка дриллов, именно он кешируется
type DrillListing struct {
	Drills     []Drill    `json:"drills"`
	Pagination Pagination `json:"pagination"`
}
