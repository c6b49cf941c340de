package domain

import (
	"strings"
	"time"
)

// OptionLabels are the four option slots every question carries, in order.
var OptionLabels = []string{"A", "B", "C", "D"}

// Default request values.
const (
	DefaultNumQuestions = 5
	DefaultTopK         = 3
	DefaultTopic        = "Generate a comprehensive quiz covering the lecture content."
)

// Structured error messages reported to callers.
const (
	MsgNoRelevantContent = "No relevant content found for quiz generation."
	MsgNoGeneration      = "Failed to generate MCQs."
	MsgGenerationFailed  = "Quiz generation failed"
)

// Difficulty is the optional difficulty tag of a question.
type Difficulty string

// Known difficulty levels.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty normalises free text to a known level, or "" if unrecognised.
func ParseDifficulty(s string) Difficulty {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		if strings.HasPrefix(s, string(d)) {
			return d
		}
	}
	return ""
}

// QuizQuestion is a single multiple-choice question.
type QuizQuestion struct {
	// Question is the question text.
	Question string `json:"question" yaml:"question"`

	// Options always holds exactly the labels A-D; missing options are "".
	Options map[string]string `json:"options" yaml:"options"`

	// CorrectAnswer is a populated option label, or "" when undetermined.
	CorrectAnswer string `json:"correct_answer" yaml:"correct_answer"`

	// Explanation defaults to "".
	Explanation string `json:"explanation" yaml:"explanation"`

	// Difficulty is empty when the model did not provide a recognisable one.
	Difficulty Difficulty `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
}

// NewQuizQuestion returns a question with all four option slots present.
func NewQuizQuestion(text string) QuizQuestion {
	options := make(map[string]string, len(OptionLabels))
	for _, label := range OptionLabels {
		options[label] = ""
	}
	return QuizQuestion{Question: text, Options: options}
}

// Valid reports whether the question satisfies the schema invariants:
// non-empty text, exactly the four option slots, and a correct answer that is
// either empty or a populated option label.
func (q QuizQuestion) Valid() bool {
	if q.Question == "" || len(q.Options) != len(OptionLabels) {
		return false
	}
	for _, label := range OptionLabels {
		if _, ok := q.Options[label]; !ok {
			return false
		}
	}
	if q.CorrectAnswer == "" {
		return true
	}
	return q.Options[q.CorrectAnswer] != ""
}

// QuizStatus is the outcome of a generation request.
type QuizStatus string

// Quiz statuses.
const (
	QuizStatusSuccess QuizStatus = "success"
	QuizStatusError   QuizStatus = "error"
)

// QuizDocument is the artifact returned for a generation request.
// It is immutable once returned.
type QuizDocument struct {
	ID           string         `json:"id" yaml:"id"`
	ScopeID      string         `json:"scope_id" yaml:"scope_id"`
	Topic        string         `json:"topic" yaml:"topic"`
	NumQuestions int            `json:"num_questions" yaml:"num_questions"`
	Status       QuizStatus     `json:"status" yaml:"status"`
	Questions    []QuizQuestion `json:"questions,omitempty" yaml:"questions,omitempty"`
	GeneratedAt  time.Time      `json:"generated_at" yaml:"generated_at"`
	Message      string         `json:"message,omitempty" yaml:"message,omitempty"`

	// Trace lists the pipeline states the run passed through, in order.
	Trace []PipelineState `json:"trace,omitempty" yaml:"trace,omitempty"`
}

// Succeeded returns true when the document carries questions.
func (d QuizDocument) Succeeded() bool {
	return d.Status == QuizStatusSuccess
}

// QuizRequest asks the orchestrator for one quiz.
type QuizRequest struct {
	// ScopeID selects the vector scope to retrieve from.
	ScopeID string

	// Sources are ingested (or skipped if already ingested) before retrieval.
	Sources []Source

	// Topic is the retrieval query. Defaults to DefaultTopic.
	Topic string

	// NumQuestions defaults to DefaultNumQuestions.
	NumQuestions int

	// TopK defaults to DefaultTopK.
	TopK int

	// ForceIngest re-ingests sources even when a marker exists.
	ForceIngest bool
}

// WithDefaults fills unset fields.
func (r QuizRequest) WithDefaults() QuizRequest {
	if strings.TrimSpace(r.Topic) == "" {
		r.Topic = DefaultTopic
	}
	if r.NumQuestions <= 0 {
		r.NumQuestions = DefaultNumQuestions
	}
	if r.TopK <= 0 {
		r.TopK = DefaultTopK
	}
	return r
}
