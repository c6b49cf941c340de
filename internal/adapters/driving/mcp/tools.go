package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/logger"
)

// IngestInput is the input schema for the ingest_transcript tool.
type IngestInput struct {
	ScopeID  string `json:"scope_id" jsonschema:"the course or lecture scope to ingest into"`
	SourceID string `json:"source_id" jsonschema:"identifier of the transcript, typically the lecture id"`
	Text     string `json:"text" jsonschema:"the plain-text transcript"`
	Force    bool   `json:"force,omitempty" jsonschema:"re-ingest even if the transcript was ingested before"`
}

// IngestOutput is the output schema for the ingest_transcript tool.
type IngestOutput struct {
	ScopeID  string `json:"scope_id"`
	SourceID string `json:"source_id"`
	Chunks   int    `json:"chunks"`
	Skipped  bool   `json:"skipped"`
}

// StatusInput is the input schema for the scope_status tool.
type StatusInput struct {
	ScopeID string `json:"scope_id" jsonschema:"the course or lecture scope to inspect"`
}

// StatusOutput is the output schema for the scope_status tool.
type StatusOutput struct {
	ScopeID string   `json:"scope_id"`
	Exists  bool     `json:"exists"`
	Chunks  int      `json:"chunks"`
	Sources []string `json:"sources"`
}

// QuizInput is the input schema for the generate_quiz tool.
type QuizInput struct {
	ScopeID      string `json:"scope_id" jsonschema:"the scope to retrieve lecture content from"`
	Topic        string `json:"topic,omitempty" jsonschema:"retrieval query; defaults to a whole-lecture quiz"`
	NumQuestions int    `json:"num_questions,omitempty" jsonschema:"number of questions to generate (default 5)"`
	TopK         int    `json:"top_k,omitempty" jsonschema:"number of chunks to retrieve (default 3)"`
	Save         bool   `json:"save,omitempty" jsonschema:"archive the generated quiz"`
}

// QuizOutput is the output schema for the generate_quiz tool.
type QuizOutput struct {
	ID           string           `json:"id"`
	ScopeID      string           `json:"scope_id"`
	Topic        string           `json:"topic"`
	NumQuestions int              `json:"num_questions"`
	Status       string           `json:"status"`
	Message      string           `json:"message,omitempty"`
	GeneratedAt  string           `json:"generated_at"`
	Questions    []QuestionOutput `json:"questions,omitempty"`
}

// QuestionOutput represents a single generated question.
type QuestionOutput struct {
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   string            `json:"explanation"`
	Difficulty    string            `json:"difficulty,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_transcript",
		Description: "Chunk, embed and store a lecture transcript in a scope",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "scope_status",
		Description: "Show how many chunks and which transcripts are stored in a scope",
	}, s.handleStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_quiz",
		Description: "Generate multiple-choice questions from the lecture content of a scope",
	}, s.handleGenerateQuiz)
}

// handleIngest handles the ingest_transcript tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	source := domain.Source{ID: input.SourceID, Text: input.Text}
	result, err := s.ports.Ingestion.Ingest(ctx, input.ScopeID, source, input.Force)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{
		ScopeID:  result.ScopeID,
		SourceID: result.SourceID,
		Chunks:   result.Chunks,
		Skipped:  result.Skipped,
	}, nil
}

// handleStatus handles the scope_status tool invocation.
func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	status, err := s.ports.Ingestion.Status(ctx, input.ScopeID)
	if err != nil {
		return nil, StatusOutput{}, err
	}

	output := StatusOutput{
		ScopeID: status.ScopeID,
		Exists:  status.Exists,
		Chunks:  status.Records,
		Sources: make([]string, len(status.Sources)),
	}
	for i, m := range status.Sources {
		output.Sources[i] = m.SourceID
	}
	return nil, output, nil
}

// handleGenerateQuiz handles the generate_quiz tool invocation.
func (s *Server) handleGenerateQuiz(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuizInput,
) (*mcp.CallToolResult, QuizOutput, error) {
	req := domain.QuizRequest{
		ScopeID:      input.ScopeID,
		Topic:        input.Topic,
		NumQuestions: input.NumQuestions,
		TopK:         input.TopK,
	}

	doc, err := s.ports.Quiz.GenerateQuiz(ctx, req)
	if err != nil {
		return nil, QuizOutput{}, err
	}

	if input.Save && doc.Succeeded() {
		if s.ports.Archive == nil {
			logger.Warn("quiz %s not archived: no archive configured", doc.ID)
		} else if err := s.ports.Archive.Save(ctx, doc); err != nil {
			return nil, QuizOutput{}, fmt.Errorf("archiving quiz: %w", err)
		}
	}

	return nil, toQuizOutput(doc), nil
}

func toQuizOutput(doc *domain.QuizDocument) QuizOutput {
	output := QuizOutput{
		ID:           doc.ID,
		ScopeID:      doc.ScopeID,
		Topic:        doc.Topic,
		NumQuestions: doc.NumQuestions,
		Status:       string(doc.Status),
		Message:      doc.Message,
		GeneratedAt:  doc.GeneratedAt.UTC().Format(time.RFC3339),
		Questions:    make([]QuestionOutput, len(doc.Questions)),
	}

	for i, q := range doc.Questions {
		output.Questions[i] = QuestionOutput{
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			Difficulty:    string(q.Difficulty),
		}
	}

	return output
}
