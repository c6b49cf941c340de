package ai

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/quizrag/internal/core/domain"
	"github.com/custodia-labs/quizrag/internal/core/ports/driven"
)

// Ensure the wrappers implement the interfaces.
var (
	_ driven.GenerationService = (*RateLimitedGeneration)(nil)
	_ driven.EmbeddingService  = (*RateLimitedEmbedding)(nil)
)

// DefaultBackoff is the pause after a provider reports a rate limit.
const DefaultBackoff = 30 * time.Second

// RateLimiter throttles calls to a remote AI provider.
// It uses a token bucket plus a backoff window opened by rate-limit errors.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	backoff time.Duration
}

// NewRateLimiter allows requestsPerMinute calls per minute with a burst of one.
// A non-positive rate returns nil, which disables throttling.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
		backoff: DefaultBackoff,
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if r == nil {
		return nil
	}

	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError opens a backoff window.
func (r *RateLimiter) RecordRateLimitError() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt = time.Now().Add(r.backoff)
}

// observe opens a backoff window when err reports a provider rate limit.
func (r *RateLimiter) observe(err error) {
	if err != nil && errors.Is(err, domain.ErrRateLimited) {
		r.RecordRateLimitError()
	}
}

// RateLimitedGeneration throttles a GenerationService.
type RateLimitedGeneration struct {
	next    driven.GenerationService
	limiter *RateLimiter
}

// NewRateLimitedGeneration wraps next. A nil limiter passes calls through.
func NewRateLimitedGeneration(next driven.GenerationService, limiter *RateLimiter) *RateLimitedGeneration {
	return &RateLimitedGeneration{next: next, limiter: limiter}
}

// Generate waits for the limiter, then delegates.
// A wait cancelled by ctx is reported as a generation error.
func (g *RateLimitedGeneration) Generate(
	ctx context.Context,
	prompt string,
	opts driven.GenerateOptions,
) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", errors.Join(domain.ErrGeneration, err)
	}
	out, err := g.next.Generate(ctx, prompt, opts)
	g.limiter.observe(err)
	return out, err
}

// ModelName returns the wrapped model name.
func (g *RateLimitedGeneration) ModelName() string { return g.next.ModelName() }

// Ping delegates without throttling.
func (g *RateLimitedGeneration) Ping(ctx context.Context) error { return g.next.Ping(ctx) }

// Close closes the wrapped service.
func (g *RateLimitedGeneration) Close() error { return g.next.Close() }

// RateLimitedEmbedding throttles an EmbeddingService. A batch counts as one call.
type RateLimitedEmbedding struct {
	next    driven.EmbeddingService
	limiter *RateLimiter
}

// NewRateLimitedEmbedding wraps next. A nil limiter passes calls through.
func NewRateLimitedEmbedding(next driven.EmbeddingService, limiter *RateLimiter) *RateLimitedEmbedding {
	return &RateLimitedEmbedding{next: next, limiter: limiter}
}

// Embed waits for the limiter, then delegates.
func (e *RateLimitedEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, errors.Join(domain.ErrEmbedding, err)
	}
	v, err := e.next.Embed(ctx, text)
	e.limiter.observe(err)
	return v, err
}

// EmbedBatch waits for the limiter, then delegates.
func (e *RateLimitedEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, errors.Join(domain.ErrEmbedding, err)
	}
	v, err := e.next.EmbedBatch(ctx, texts)
	e.limiter.observe(err)
	return v, err
}

// Dimensions returns the wrapped vector size.
func (e *RateLimitedEmbedding) Dimensions() int { return e.next.Dimensions() }

// ModelName returns the wrapped model name.
func (e *RateLimitedEmbedding) ModelName() string { return e.next.ModelName() }

// Ping delegates without throttling.
func (e *RateLimitedEmbedding) Ping(ctx context.Context) error { return e.next.Ping(ctx) }

// Close closes the wrapped service.
func (e *RateLimitedEmbedding) Close() error { return e.next.Close() }
