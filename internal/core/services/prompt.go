package services

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/core/ports/driven"
	"github.com/custodia-labs/quizrag/internal/quizparser"
)

// Ensure PromptBuilder accepts a prompt store.
var _ driven.PromptStoreAware = (*PromptBuilder)(nil)

// PromptBuilder renders the quiz generation prompt.
// Rendering is deterministic for a given template, content and count.
type PromptBuilder struct {
	format  quizparser.Format
	prompts driven.PromptStore
}

// NewPromptBuilder creates a prompt builder whose instructions request format.
func NewPromptBuilder(format quizparser.Format) *PromptBuilder {
	return &PromptBuilder{format: format}
}

// SetPromptStore sets the store for user-customised templates.
func (b *PromptBuilder) SetPromptStore(store driven.PromptStore) {
	b.prompts = store
}

// Build renders the prompt for content and numQuestions.
func (b *PromptBuilder) Build(content string, numQuestions int) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", domain.ErrInsufficientContent
	}
	if numQuestions <= 0 {
		return "", fmt.Errorf("%w: number of questions must be positive", domain.ErrInvalidInput)
	}

	tmpl, err := template.New(driven.PromptQuizGeneration).Option("missingkey=error").Parse(b.template())
	if err != nil {
		return "", fmt.Errorf("parse prompt template: %w", err)
	}

	var out strings.Builder
	data := quizparser.PromptData{Format: b.format, Content: content, NumQuestions: numQuestions}
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("render prompt template: %w", err)
	}
	return out.String(), nil
}

// template returns the stored template, or the built-in one.
func (b *PromptBuilder) template() string {
	if b.prompts != nil {
		if t, err := b.prompts.Load(driven.PromptQuizGeneration); err == nil && strings.TrimSpace(t) != "" {
			return t
		}
	}
	return quizparser.DefaultPromptTemplate
}
