package quizparser

import (
	"regexp"
	"strings"
)

// Format names the tokens a prompt template asks the model to use.
// The prompt and the parser must agree on these.
type Format struct {
	// Separator is the line that delimits question blocks.
	Separator string

	// QuestionLabel starts the question line ("Question:" or "Question 3:").
	QuestionLabel string

	// AnswerLabel starts the line naming the correct option.
	AnswerLabel string

	// ExplanationLabel starts the explanation line.
	ExplanationLabel string

	// DifficultyLabel starts the difficulty line.
	DifficultyLabel string
}

// DefaultFormat returns the format requested by the built-in quiz prompt.
func DefaultFormat() Format {
	return Format{
		Separator:        "---",
		QuestionLabel:    "Question",
		AnswerLabel:      "Correct Answer",
		ExplanationLabel: "Explanation",
		DifficultyLabel:  "Difficulty",
	}
}

// withDefaults fills empty tokens from DefaultFormat.
func (f Format) withDefaults() Format {
	d := DefaultFormat()
	if strings.TrimSpace(f.Separator) == "" {
		f.Separator = d.Separator
	}
	if strings.TrimSpace(f.QuestionLabel) == "" {
		f.QuestionLabel = d.QuestionLabel
	}
	if strings.TrimSpace(f.AnswerLabel) == "" {
		f.AnswerLabel = d.AnswerLabel
	}
	if strings.TrimSpace(f.ExplanationLabel) == "" {
		f.ExplanationLabel = d.ExplanationLabel
	}
	if strings.TrimSpace(f.DifficultyLabel) == "" {
		f.DifficultyLabel = d.DifficultyLabel
	}
	f.Separator = strings.TrimSpace(f.Separator)
	return f
}

// decoration is markdown emphasis or heading markup models wrap labels in.
const decoration = `[*#_\s]*`

// labelPattern matches a label at the start of a line, case-insensitively,
// tolerating markdown decoration and an optional number ("**Question 2:**").
// The remainder of the line is captured in group 1.
func labelPattern(label string, numbered bool) *regexp.Regexp {
	words := strings.Fields(label)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	num := ``
	if numbered {
		num = `\s*\d*`
	}
	return regexp.MustCompile(`(?i)^` + decoration + strings.Join(words, `\s+`) + num + `\s*[*_]*\s*:[*_]*\s*(.*)$`)
}

// boundaryPattern matches the start of a numbered question ("Question 3:")
// anywhere in a multi-line text. It is used when no separator lines exist.
func boundaryPattern(label string) *regexp.Regexp {
	words := strings.Fields(label)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?im)^[ \t*#_]*` + strings.Join(words, `\s+`) + `\s*\d+\s*[*_]*\s*:`)
}
