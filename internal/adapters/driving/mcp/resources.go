package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/quizrag/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for quizrag resources.
	uriScheme = "quizrag://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing archived quizzes.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "quizzes",
		Name:        "quizzes",
		Description: "Summaries of all archived quizzes",
		MIMEType:    "application/json",
	}, s.handleQuizzesResource)

	// Template for a single archived quiz.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "quizzes/{quizId}",
		Name:        "quiz",
		Description: "A generated quiz with all of its questions",
		MIMEType:    "application/json",
	}, s.handleQuizResource)
}

// handleQuizzesResource returns a summary of every archived quiz.
func (s *Server) handleQuizzesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Archive == nil {
		return jsonResult(req.Params.URI, "[]"), nil
	}

	quizzes, err := s.ports.Archive.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing quizzes: %w", err)
	}

	type quizInfo struct {
		ID          string `json:"id"`
		ScopeID     string `json:"scope_id"`
		Topic       string `json:"topic"`
		Questions   int    `json:"questions"`
		GeneratedAt string `json:"generated_at"`
		URI         string `json:"uri"`
	}

	infos := make([]quizInfo, len(quizzes))
	for i := range quizzes {
		infos[i] = quizInfo{
			ID:          quizzes[i].ID,
			ScopeID:     quizzes[i].ScopeID,
			Topic:       quizzes[i].Topic,
			Questions:   len(quizzes[i].Questions),
			GeneratedAt: quizzes[i].GeneratedAt.UTC().Format(time.RFC3339),
			URI:         uriScheme + "quizzes/" + quizzes[i].ID,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling quizzes: %w", err)
	}

	return jsonResult(req.Params.URI, string(data)), nil
}

// handleQuizResource returns one archived quiz.
func (s *Server) handleQuizResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Archive == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract quizId from URI: quizrag://quizzes/{quizId}
	quizID := extractQuizID(req.Params.URI)
	if quizID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Archive.Get(ctx, quizID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting quiz: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling quiz: %w", err)
	}

	return jsonResult(req.Params.URI, string(data)), nil
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractQuizID extracts the quiz ID from a URI like quizrag://quizzes/{quizId}.
func extractQuizID(uri string) string {
	const prefix = uriScheme + "quizzes/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
