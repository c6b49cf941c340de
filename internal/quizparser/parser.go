// Package quizparser turns free-form model output into structured quiz questions.
//
// Parsing is a best-effort, line-oriented scan rather than a strict grammar.
// It never fails: malformed blocks are dropped and missing fields are left
// empty. Identical input always yields identical output.
package quizparser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/quizrag/internal/core/domain"
)

var (
	// optionPattern matches "(A) text", "A) text", "A. text" and "A: text"
	// in either case. A bare label must be followed by whitespace or the end
	// of the line, so prose such as "D.C. is" is not read as option D.
	optionPattern = regexp.MustCompile(`^[*_\s]*(?:\(\s*([A-Da-d])\s*\)[*_]*|([A-Da-d])[).:][*_]*(?:\s|$))\s*(.*)$`)

	// parenLabelPattern and bareLabelPattern extract the referenced label from
	// an answer line. A bare letter must stand alone or be followed by a
	// delimiter, so "A quick sort" is not read as option A.
	parenLabelPattern = regexp.MustCompile(`\(\s*([A-Da-d])\s*\)`)
	bareLabelPattern  = regexp.MustCompile(`^[*_\s]*(?i:option\s+)?([A-Da-d])[*_]*(?:\s*$|[).:])`)
)

// Parser parses generated quiz text in a given Format.
// A Parser is immutable and safe for concurrent use.
type Parser struct {
	format      Format
	question    *regexp.Regexp
	answer      *regexp.Regexp
	explanation *regexp.Regexp
	difficulty  *regexp.Regexp
	boundary    *regexp.Regexp
}

// New creates a parser for the given format. Empty tokens take their defaults.
func New(format Format) *Parser {
	f := format.withDefaults()
	return &Parser{
		format:      f,
		question:    labelPattern(f.QuestionLabel, true),
		answer:      labelPattern(f.AnswerLabel, false),
		explanation: labelPattern(f.ExplanationLabel, false),
		difficulty:  labelPattern(f.DifficultyLabel, false),
		boundary:    boundaryPattern(f.QuestionLabel),
	}
}

// Format returns the parser's effective format.
func (p *Parser) Format() Format {
	return p.format
}

// Parse splits raw into question blocks and parses each one.
// Blocks without an identifiable question line are omitted.
func (p *Parser) Parse(raw string) []domain.QuizQuestion {
	var questions []domain.QuizQuestion
	for _, block := range p.splitBlocks(raw) {
		if q, ok := p.parseBlock(block); ok {
			questions = append(questions, q)
		}
	}
	return questions
}

// splitBlocks splits on separator lines, then splits any block holding more
// than one numbered question boundary. Without any separator line it falls
// back to numbered boundaries, and failing that treats the whole text as one
// block.
func (p *Parser) splitBlocks(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	var blocks []string
	var current []string
	found := false
	for _, line := range strings.Split(raw, "\n") {
		if p.isSeparator(line) {
			found = true
			blocks = appendBlock(blocks, current)
			current = nil
			continue
		}
		current = append(current, line)
	}
	if !found {
		return p.splitNumbered(nil, raw, 1)
	}

	// A separator block may still hold several numbered questions, as when
	// the model emits only a trailing separator.
	var out []string
	for _, block := range appendBlock(blocks, current) {
		out = p.splitNumbered(out, block, 2)
	}
	return out
}

// splitNumbered appends text to blocks, split at numbered question
// boundaries when it holds at least min of them.
func (p *Parser) splitNumbered(blocks []string, text string, min int) []string {
	starts := p.boundary.FindAllStringIndex(text, -1)
	if len(starts) < min || len(starts) == 0 {
		return appendBlock(blocks, []string{text})
	}

	// Text before the first boundary is a preamble block; it has no
	// question line and is dropped by parseBlock.
	blocks = appendBlock(blocks, []string{text[:starts[0][0]]})
	for i, loc := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		blocks = appendBlock(blocks, []string{text[loc[0]:end]})
	}
	return blocks
}

func appendBlock(blocks []string, lines []string) []string {
	block := strings.TrimSpace(strings.Join(lines, "\n"))
	if block == "" {
		return blocks
	}
	return append(blocks, block)
}

// isSeparator reports whether a line is exactly the separator token. A longer
// run of the same character ("-----") also counts.
func (p *Parser) isSeparator(line string) bool {
	line = strings.TrimSpace(line)
	sep := p.format.Separator
	if line == sep {
		return true
	}
	r, size := utf8.DecodeRuneInString(sep)
	if len(line) < len(sep) || strings.Trim(sep, string(r)) != "" || size == 0 {
		return false
	}
	return strings.Trim(line, string(r)) == ""
}

// parseBlock extracts one question from a block.
func (p *Parser) parseBlock(block string) (domain.QuizQuestion, bool) {
	lines := splitLines(block)

	qIndex := -1
	var text string
	for i, line := range lines {
		if m := p.question.FindStringSubmatch(line); m != nil {
			qIndex = i
			text = clean(m[1])
			break
		}
	}
	if qIndex == -1 {
		return domain.QuizQuestion{}, false
	}

	optionsFrom := qIndex + 1
	if text == "" && qIndex+1 < len(lines) && !p.isStructural(lines[qIndex+1]) {
		text = clean(lines[qIndex+1])
		optionsFrom = qIndex + 2
	}
	if text == "" {
		return domain.QuizQuestion{}, false
	}

	q := domain.NewQuizQuestion(text)

	seen := make(map[string]bool, len(domain.OptionLabels))
	for _, line := range lines[optionsFrom:] {
		label, value, ok := parseOption(line)
		if !ok || seen[label] {
			continue
		}
		seen[label] = true
		q.Options[label] = value
	}

	if rest, ok := firstLabelled(lines, p.answer); ok {
		if label := answerLabel(rest); label != "" && q.Options[label] != "" {
			q.CorrectAnswer = label
		}
	}

	if rest, ok := firstLabelled(lines, p.explanation); ok {
		q.Explanation = clean(rest)
	}

	if rest, ok := firstLabelled(lines, p.difficulty); ok {
		q.Difficulty = domain.ParseDifficulty(clean(rest))
	}

	return q, true
}

// isStructural reports whether a line is an option or a labelled field,
// so it cannot stand in for missing question text.
func (p *Parser) isStructural(line string) bool {
	if _, _, ok := parseOption(line); ok {
		return true
	}
	return p.answer.MatchString(line) || p.explanation.MatchString(line) || p.difficulty.MatchString(line)
}

// parseOption returns the upper-case label and text of an option line.
func parseOption(line string) (label, value string, ok bool) {
	m := optionPattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	label = m[1]
	if label == "" {
		label = m[2]
	}
	return strings.ToUpper(label), clean(m[3]), true
}

// answerLabel extracts the option label an answer line refers to:
// "(B)", "(b) Paris", "B", "B) Paris" or "Option B".
func answerLabel(rest string) string {
	if m := parenLabelPattern.FindStringSubmatch(rest); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := bareLabelPattern.FindStringSubmatch(rest); m != nil {
		return strings.ToUpper(m[1])
	}
	return ""
}

// firstLabelled returns the text after the label on the first matching line.
func firstLabelled(lines []string, label *regexp.Regexp) (string, bool) {
	for _, line := range lines {
		if m := label.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// splitLines returns the non-empty trimmed lines of a block.
func splitLines(block string) []string {
	raw := strings.Split(block, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// clean trims whitespace and stray markdown emphasis around a value.
func clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.Trim(s, "*"))
	return s
}
