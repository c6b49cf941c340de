package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewQuizQuestion_HasFourSlots(t *testing.T) {
	q := NewQuizQuestion("What is Go?")

	assert.Equal(t, "What is Go?", q.Question)
	assert.Len(t, q.Options, 4)
	for _, label := range OptionLabels {
		v, ok := q.Options[label]
		assert.True(t, ok)
		assert.Empty(t, v)
	}
}

func TestQuizQuestion_Valid(t *testing.T) {
	full := func() QuizQuestion {
		q := NewQuizQuestion("Q?")
		q.Options["A"] = "one"
		q.Options["B"] = "two"
		q.Options["C"] = "three"
		q.Options["D"] = "four"
		return q
	}

	t.Run("no answer is valid", func(t *testing.T) {
		assert.True(t, full().Valid())
	})

	t.Run("populated answer is valid", func(t *testing.T) {
		q := full()
		q.CorrectAnswer = "B"
		assert.True(t, q.Valid())
	})

	t.Run("answer pointing at empty option is invalid", func(t *testing.T) {
		q := full()
		q.Options["D"] = ""
		q.CorrectAnswer = "D"
		assert.False(t, q.Valid())
	})

	t.Run("missing slot is invalid", func(t *testing.T) {
		q := full()
		delete(q.Options, "C")
		assert.False(t, q.Valid())
	})

	t.Run("extra slot is invalid", func(t *testing.T) {
		q := full()
		q.Options["E"] = "five"
		assert.False(t, q.Valid())
	})

	t.Run("empty text is invalid", func(t *testing.T) {
		q := full()
		q.Question = ""
		assert.False(t, q.Valid())
	})
}

func TestParseDifficulty(t *testing.T) {
	tests := map[string]Difficulty{
		"Easy":          DifficultyEasy,
		" medium ":      DifficultyMedium,
		"HARD":          DifficultyHard,
		"Hard (recall)": DifficultyHard,
		"":              "",
		"tricky":        "",
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseDifficulty(in), in)
	}
}

func TestQuizRequest_WithDefaults(t *testing.T) {
	r := QuizRequest{ScopeID: "course_demo"}.WithDefaults()

	assert.Equal(t, DefaultTopic, r.Topic)
	assert.Equal(t, 5, r.NumQuestions)
	assert.Equal(t, 3, r.TopK)

	custom := QuizRequest{Topic: "overview", NumQuestions: 2, TopK: 7}.WithDefaults()
	assert.Equal(t, "overview", custom.Topic)
	assert.Equal(t, 2, custom.NumQuestions)
	assert.Equal(t, 7, custom.TopK)
}
