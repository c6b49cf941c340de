package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/core/ports/driven"
)

func newTestService(t *testing.T, timeout time.Duration, handler http.HandlerFunc) *GenerationService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewGenerationService(Config{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "llama-3.3-70b-versatile",
		Timeout: timeout,
	})
	require.NoError(t, err)
	return svc
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestNewGenerationService_RequiresAPIKey(t *testing.T) {
	_, err := NewGenerationService(Config{})
	require.Error(t, err)
}

func TestNewGenerationService_Defaults(t *testing.T) {
	svc, err := NewGenerationService(Config{APIKey: "k"})
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, svc.ModelName())
	assert.Equal(t, DefaultTimeout, svc.timeout)
}

func TestGenerate_ReturnsFirstChoice(t *testing.T) {
	svc := newTestService(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama-3.3-70b-versatile", req["model"])
		assert.EqualValues(t, 256, req["max_tokens"])

		messages := req["messages"].([]any)
		require.Len(t, messages, 1)
		assert.Equal(t, "user", messages[0].(map[string]any)["role"])
		assert.Equal(t, "make a quiz", messages[0].(map[string]any)["content"])

		writeJSON(w, `{"id":"x","object":"chat.completion","choices":[
			{"index":0,"message":{"role":"assistant","content":"first"},"finish_reason":"stop"},
			{"index":1,"message":{"role":"assistant","content":"second"},"finish_reason":"stop"}
		]}`)
	})

	out, err := svc.Generate(context.Background(), "make a quiz", driven.GenerateOptions{MaxTokens: 256})
	require.NoError(t, err)
	assert.Equal(t, "first", out)
}

func TestGenerate_NoChoices(t *testing.T) {
	svc := newTestService(t, time.Second, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"id":"x","object":"chat.completion","choices":[]}`)
	})

	_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrNoCandidates)
	assert.ErrorIs(t, err, domain.ErrGeneration)
}

func TestGenerate_EmptyContent(t *testing.T) {
	svc := newTestService(t, time.Second, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, `{"choices":[{"index":0,"message":{"role":"assistant","content":"  "},"finish_reason":"length"}]}`)
	})

	_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.ErrorIs(t, err, domain.ErrNoCandidates)
	assert.Contains(t, err.Error(), `finish reason "length"`)
}

func TestGenerate_Timeout(t *testing.T) {
	svc := newTestService(t, 50*time.Millisecond, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.Contains(t, err.Error(), "timed out")
}

func TestGenerate_RateLimited(t *testing.T) {
	svc := newTestService(t, time.Second, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit reached","type":"requests"}}`))
	})

	_, err := svc.Generate(context.Background(), "p", driven.GenerateOptions{})
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestPing(t *testing.T) {
	svc := newTestService(t, time.Second, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		writeJSON(w, `{"object":"list","data":[{"id":"llama-3.3-70b-versatile","object":"model"}]}`)
	})

	assert.NoError(t, svc.Ping(context.Background()))
}
