package quizparser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quizrag/internal/core/domain"
)

const twoBlocks = `Question:
What does a vector index store?
(A) Raw audio
(B) Embeddings with payloads
(C) Video frames
(D) User passwords
Correct Answer: (B)
Explanation: The index stores vectors alongside their payload.
Difficulty: Easy
---
Question: Which metric do scopes use?
(A) Euclidean
(B) Cosine
(C) Manhattan
(D) Hamming
Correct Answer: (B)
Explanation: Scopes are created with cosine similarity.
Difficulty: Medium
`

func assertFourOptions(t *testing.T, q domain.QuizQuestion) {
	t.Helper()
	assert.Len(t, q.Options, 4)
	for _, label := range domain.OptionLabels {
		_, ok := q.Options[label]
		assert.True(t, ok, "missing option %s", label)
	}
}

func TestParse_WellFormedBlocks(t *testing.T) {
	questions := New(DefaultFormat()).Parse(twoBlocks)

	require.Len(t, questions, 2)

	first := questions[0]
	assert.Equal(t, "What does a vector index store?", first.Question)
	assert.Equal(t, "Embeddings with payloads", first.Options["B"])
	assert.Equal(t, "B", first.CorrectAnswer)
	assert.Equal(t, "The index stores vectors alongside their payload.", first.Explanation)
	assert.Equal(t, domain.DifficultyEasy, first.Difficulty)

	second := questions[1]
	assert.Equal(t, "Which metric do scopes use?", second.Question)
	assert.Equal(t, "B", second.CorrectAnswer)
	assert.Equal(t, domain.DifficultyMedium, second.Difficulty)

	for _, q := range questions {
		assertFourOptions(t, q)
		assert.True(t, q.Valid())
	}
}

func TestParse_MissingCorrectAnswer(t *testing.T) {
	raw := `Question: What is chunking?
(A) Splitting text
(B) Joining text
(C) Encrypting text
(D) Deleting text
Explanation: Chunking splits text into windows.`

	questions := New(DefaultFormat()).Parse(raw)

	require.Len(t, questions, 1)
	assert.Equal(t, "", questions[0].CorrectAnswer)
	assert.Equal(t, "Chunking splits text into windows.", questions[0].Explanation)
	assertFourOptions(t, questions[0])
}

func TestParse_MalformedBlockSkipped(t *testing.T) {
	raw := twoBlocks + `---
Here are some thoughts
that are not a question
---
Question: Is ingestion idempotent?
(A) Yes
(B) No
(C) Sometimes
(D) Never
Correct Answer: (A)
`

	questions := New(DefaultFormat()).Parse(raw)

	require.Len(t, questions, 3)
	assert.Equal(t, "What does a vector index store?", questions[0].Question)
	assert.Equal(t, "Which metric do scopes use?", questions[1].Question)
	assert.Equal(t, "Is ingestion idempotent?", questions[2].Question)
	assert.Equal(t, "A", questions[2].CorrectAnswer)
}

func TestParse_DuplicateOptionFirstWins(t *testing.T) {
	raw := `Question: Pick one
(A) first
(B) second
(A) overwritten
(C) third
(D) fourth
Correct Answer: (A)`

	questions := New(DefaultFormat()).Parse(raw)

	require.Len(t, questions, 1)
	assert.Equal(t, "first", questions[0].Options["A"])
	assert.Equal(t, "A", questions[0].CorrectAnswer)
}

func TestParse_AnswerReferencesUnknownOption(t *testing.T) {
	tests := []struct {
		name   string
		answer string
	}{
		{name: "empty option", answer: "Correct Answer: (D)"},
		{name: "no label", answer: "Correct Answer: the second one"},
		{name: "out of range label", answer: "Correct Answer: (E)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := "Question: Which?\n(A) one\n(B) two\n(C) three\n" + tt.answer

			questions := New(DefaultFormat()).Parse(raw)

			require.Len(t, questions, 1)
			assert.Equal(t, "", questions[0].CorrectAnswer)
			assert.Equal(t, "", questions[0].Options["D"])
			assertFourOptions(t, questions[0])
		})
	}
}

func TestParse_AnswerLabelVariants(t *testing.T) {
	tests := []struct {
		answer   string
		expected string
	}{
		{"Correct Answer: (C)", "C"},
		{"Correct Answer: (c)", "C"},
		{"Correct Answer: (C) three", "C"},
		{"Correct Answer: C", "C"},
		{"Correct Answer: C) three", "C"},
		{"Correct Answer: C. three", "C"},
		{"Correct Answer: Option C", "C"},
		{"**Correct Answer:** (C)", "C"},
		{"correct answer: (c)", "C"},
		{"Correct Answer: A quick guess", ""},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			raw := "Question: Which?\n(A) one\n(B) two\n(C) three\n(D) four\n" + tt.answer

			questions := New(DefaultFormat()).Parse(raw)

			require.Len(t, questions, 1)
			assert.Equal(t, tt.expected, questions[0].CorrectAnswer)
		})
	}
}

func TestParse_OptionVariants(t *testing.T) {
	raw := `Question: Mixed option styles?
(a) lower paren
B) close paren
C. dot
D: colon
Correct Answer: (D)`

	questions := New(DefaultFormat()).Parse(raw)

	require.Len(t, questions, 1)
	q := questions[0]
	assert.Equal(t, "lower paren", q.Options["A"])
	assert.Equal(t, "close paren", q.Options["B"])
	assert.Equal(t, "dot", q.Options["C"])
	assert.Equal(t, "colon", q.Options["D"])
	assert.Equal(t, "D", q.CorrectAnswer)
}

func TestParse_LowerCaseBareOptions(t *testing.T) {
	raw := `Question: What is 2 + 2?
a) 3
b) 4
c. 5
d: 6
Correct Answer: b)`

	questions := New(DefaultFormat()).Parse(raw)

	require.Len(t, questions, 1)
	q := questions[0]
	assert.Equal(t, "3", q.Options["A"])
	assert.Equal(t, "4", q.Options["B"])
	assert.Equal(t, "5", q.Options["C"])
	assert.Equal(t, "6", q.Options["D"])
	assert.Equal(t, "B", q.CorrectAnswer)
}

func TestParse_BareLabelNeedsWhitespace(t *testing.T) {
	raw := `Question: Which city is the capital of the United States?
D.C. is mentioned in the lecture as the seat of government.
(A) New York
(B) Boston
(C) Chicago
(D) Washington
Correct Answer: (D)`

	questions := New(DefaultFormat()).Parse(raw)

	require.Len(t, questions, 1)
	assert.Equal(t, "Washington", questions[0].Options["D"])
	assert.Equal(t, "D", questions[0].CorrectAnswer)

	tight := New(DefaultFormat()).Parse("Question: Odd?\nA.b\nB:c")
	require.Len(t, tight, 1)
	assert.Empty(t, tight[0].Options["A"], "no whitespace after the label")
	assert.Empty(t, tight[0].Options["B"])
}

func TestParse_QuestionTextOnNextLine(t *testing.T) {
	raw := `Question 3:
What is top-k?
(A) The number of hits returned
(B) A sort order
(C) A vector norm
(D) A chunk size
Correct Answer: (A)`

	questions := New(DefaultFormat()).Parse(raw)

	require.Len(t, questions, 1)
	assert.Equal(t, "What is top-k?", questions[0].Question)
	assert.Equal(t, "The number of hits returned", questions[0].Options["A"])
}

func TestParse_EmptyQuestionLabelFollowedByOption(t *testing.T) {
	raw := `Question:
(A) one
(B) two
(C) three`

	questions := New(DefaultFormat()).Parse(raw)

	assert.Empty(t, questions)
}

func TestParse_OptionsBeforeQuestionIgnored(t *testing.T) {
	raw := `(A) stray
Question: Real question?
(B) two
Correct Answer: (B)`

	questions := New(DefaultFormat()).Parse(raw)

	require.Len(t, questions, 1)
	assert.Equal(t, "", questions[0].Options["A"])
	assert.Equal(t, "two", questions[0].Options["B"])
	assert.Equal(t, "B", questions[0].CorrectAnswer)
}

func TestParse_NumberedFallback(t *testing.T) {
	raw := `Here are your questions.

Question 1:
What is an embedding?
(A) A vector
(B) A file
(C) A scope
(D) A prompt
Correct Answer: (A)
Explanation: Embeddings are vectors.
Difficulty: Easy

Question 2:
What does upsert do?
(A) Appends
(B) Inserts or overwrites by id
(C) Deletes
(D) Nothing
Correct Answer: (B)
Explanation: It overwrites existing ids.
Difficulty: Hard
`

	questions := New(DefaultFormat()).Parse(raw)

	require.Len(t, questions, 2)
	assert.Equal(t, "What is an embedding?", questions[0].Question)
	assert.Equal(t, "A", questions[0].CorrectAnswer)
	assert.Equal(t, "What does upsert do?", questions[1].Question)
	assert.Equal(t, "B", questions[1].CorrectAnswer)
	assert.Equal(t, domain.DifficultyHard, questions[1].Difficulty)
}

func TestParse_NumberedWithTrailingSeparator(t *testing.T) {
	raw := `Question 1: What is an embedding?
(A) A vector
(B) A file
(C) A scope
(D) A prompt
Correct Answer: (A)

Question 2: What does upsert do?
(A) Appends
(B) Inserts or overwrites by id
(C) Deletes
(D) Nothing
Correct Answer: (B)
---`

	questions := New(DefaultFormat()).Parse(raw)

	require.Len(t, questions, 2)
	assert.Equal(t, "What is an embedding?", questions[0].Question)
	assert.Equal(t, "A", questions[0].CorrectAnswer)
	assert.Equal(t, "What does upsert do?", questions[1].Question)
	assert.Equal(t, "B", questions[1].CorrectAnswer)
}

func TestParse_MarkdownDecoration(t *testing.T) {
	raw := `**Question 1:** What is RAG?
(A) Retrieval-augmented generation
(B) Random access graph
(C) Rapid answer generator
(D) None
**Correct Answer:** (A)
**Explanation:** Retrieval feeds the prompt.
-----
## Question 2: What is a scope?
(A) A course or lecture collection
(B) A file
(C) A prompt
(D) A user
*Correct Answer*: (A)`

	questions := New(DefaultFormat()).Parse(raw)

	require.Len(t, questions, 2)
	assert.Equal(t, "What is RAG?", questions[0].Question)
	assert.Equal(t, "A", questions[0].CorrectAnswer)
	assert.Equal(t, "Retrieval feeds the prompt.", questions[0].Explanation)
	assert.Equal(t, "What is a scope?", questions[1].Question)
	assert.Equal(t, "A", questions[1].CorrectAnswer)
}

func TestParse_CRLF(t *testing.T) {
	raw := strings.ReplaceAll(twoBlocks, "\n", "\r\n")

	questions := New(DefaultFormat()).Parse(raw)

	require.Len(t, questions, 2)
	assert.Equal(t, "B", questions[1].CorrectAnswer)
}

func TestParse_UnknownDifficulty(t *testing.T) {
	raw := "Question: Q?\n(A) a\n(B) b\nDifficulty: Tricky"

	questions := New(DefaultFormat()).Parse(raw)

	require.Len(t, questions, 1)
	assert.Equal(t, domain.Difficulty(""), questions[0].Difficulty)
}

func TestParse_NeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"---",
		"---\n---\n---",
		"Question:",
		"Question:\n",
		"(",
		"()",
		"(A)",
		"Correct Answer:",
		"Explanation:",
		"Question: x\nCorrect Answer: (",
		"Question 1:\nQuestion 2:\nQuestion 3:",
		"\x00\xff\xfe",
		strings.Repeat("Question: q\n", 50),
	}

	p := New(DefaultFormat())
	for i, in := range inputs {
		t.Run(fmt.Sprintf("input_%d", i), func(t *testing.T) {
			assert.NotPanics(t, func() {
				for _, q := range p.Parse(in) {
					assert.NotEmpty(t, q.Question)
					assertFourOptions(t, q)
				}
			})
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	p := New(DefaultFormat())
	assert.Equal(t, p.Parse(twoBlocks), p.Parse(twoBlocks))
}

func TestParse_CustomFormat(t *testing.T) {
	format := Format{
		Separator:        "###",
		QuestionLabel:    "Q",
		AnswerLabel:      "Answer",
		ExplanationLabel: "Why",
	}
	raw := `Q: First?
(A) one
(B) two
Answer: (B)
Why: because
###
Q: Second?
(A) one
Answer: A`

	p := New(format)
	questions := p.Parse(raw)

	require.Len(t, questions, 2)
	assert.Equal(t, "First?", questions[0].Question)
	assert.Equal(t, "B", questions[0].CorrectAnswer)
	assert.Equal(t, "because", questions[0].Explanation)
	assert.Equal(t, "A", questions[1].CorrectAnswer)
	assert.Equal(t, "Difficulty", p.Format().DifficultyLabel)
}

func TestParse_FiveBlocks(t *testing.T) {
	var blocks []string
	for i := 1; i <= 5; i++ {
		blocks = append(blocks, fmt.Sprintf(
			"Question: Question number %d?\n(A) a%d\n(B) b%d\n(C) c%d\n(D) d%d\nCorrect Answer: (C)\nExplanation: e%d",
			i, i, i, i, i, i))
	}

	questions := New(DefaultFormat()).Parse(strings.Join(blocks, "\n---\n"))

	require.Len(t, questions, 5)
	for i, q := range questions {
		assert.Equal(t, fmt.Sprintf("Question number %d?", i+1), q.Question)
		assert.Equal(t, "C", q.CorrectAnswer)
		assertFourOptions(t, q)
	}
}
