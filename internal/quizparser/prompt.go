package quizparser

// DefaultPromptTemplate is the built-in quiz generation prompt, a text/template
// rendered with PromptData. Its instruction wording may be overridden, but the
// layout it requests is what Parser expects.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
const DefaultPromptTemplate = `Generate {{.NumQuestions}} multiple-choice questions (MCQs) strictly based on the following content. Each question should be directly answerable solely from the information provided below and should not incorporate any external or inferred details.

Content:
{{.Content}}

Ensure each question:
- Is derived exclusively from the provided text.
- Covers different aspects of the content.
- Varies in difficulty (Easy, Medium, Hard).
- Tests factual recall or understanding of details present in the content.

Format each question as:
{{.QuestionLabel}}:
[Question text]
(A) Option 1
(B) Option 2
(C) Option 3
(D) Option 4
{{.AnswerLabel}}: (the option label, e.g., (A))
{{.ExplanationLabel}}: Brief explanation of the correct answer
{{.DifficultyLabel}}: [Easy/Medium/Hard]

Separate each question with a line containing exactly '{{.Separator}}'
`

// PromptData is the data a prompt template is rendered with.
type PromptData struct {
	Format

	// Content is the retrieved transcript text.
	Content string

	// NumQuestions is the number of questions requested.
	NumQuestions int
}
