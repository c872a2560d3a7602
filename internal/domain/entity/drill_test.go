package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDrill() *Drill {
	return &Drill{
		ID:         "js-fundamentals",
		Title:      "JavaScript Fundamentals",
		Difficulty: DifficultyEasy,
		Tags:       StringArray{"javascript", "fundamentals"},
		Questions: Questions{
			{ID: "js-1", Prompt: "var vs let vs const?", Keywords: StringArray{"var", "let", "const"}},
			{ID: "js-2", Prompt: "What is a closure?", Keywords: StringArray{"closure", "scope"}},
		},
	}
}

func TestDrill_QuestionCount(t *testing.T) {
	assert.Equal(t, 2, newTestDrill().QuestionCount())
	assert.Equal(t, 0, (&Drill{}).QuestionCount())
}

func TestDrill_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, newTestDrill().Validate())
	})

	t.Run("default difficulty", func(t *testing.T) {
		drill := newTestDrill()
		drill.Difficulty = ""
		require.NoError(t, drill.Validate())
		assert.Equal(t, DifficultyMedium, drill.Difficulty, "По умолчанию сложность medium")
	})

	t.Run("duplicate question id", func(t *testing.T) {
		drill := newTestDrill()
		drill.Questions = append(drill.Questions, Question{ID: "js-1", Prompt: "dup"})
		assert.Error(t, drill.Validate())
	})

	t.Run("invalid difficulty", func(t *testing.T) {
		drill := newTestDrill()
		drill.Difficulty = "extreme"
		assert.Error(t, drill.Validate())
	})

	t.Run("empty title", func(t *testing.T) {
		drill := newTestDrill()
		drill.Title = "  "
		assert.Error(t, drill.Validate())
	})
}

func TestParseDifficulty(t *testing.T) {
	d, ok := ParseDifficulty(" Hard ")
	assert.True(t, ok)
	assert.Equal(t, DifficultyHard, d)

	_, ok = ParseDifficulty("impossible")
	assert.False(t, ok)
}

func TestQuestions_ValueScan(t *testing.T) {
	questions := newTestDrill().Questions

	value, err := questions.Value()
	require.NoError(t, err)

	var scanned Questions
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, questions, scanned, "Порядок вопросов должен сохраняться")
}

func TestStringArray_EmptyValue(t *testing.T) {
	value, err := StringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), value, "Пустой массив пишется как [] а не null")
}
