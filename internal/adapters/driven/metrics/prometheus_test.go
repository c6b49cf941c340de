package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_Counters(t *testing.T) {
	m := NewPrometheus("")

	m.ChunksIngested("course_demo", 3)
	m.ChunksIngested("course_demo", 2)
	m.ChunksIngested("course_other", 0)
	m.IngestSkipped("course_demo")
	m.StepFailed("generating")
	m.StepFailed("generating")
	m.QuestionsParsed(5)
	m.QuestionsParsed(-1)

	assert.InDelta(t, 5.0, testutil.ToFloat64(m.chunksIngested.WithLabelValues("course_demo")), 1e-9)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.ingestSkipped.WithLabelValues("course_demo")), 1e-9)
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.stepFailures.WithLabelValues("generating")), 1e-9)
	assert.InDelta(t, 5.0, testutil.ToFloat64(m.questionsParsed), 1e-9)

	// Zero counts do not create a series
	assert.Equal(t, 1, testutil.CollectAndCount(m.chunksIngested))
}

func TestPrometheus_GenerationLatency(t *testing.T) {
	m := NewPrometheus("")

	m.GenerationLatency(1500 * time.Millisecond)
	m.GenerationLatency(3 * time.Second)

	assert.Equal(t, 1, testutil.CollectAndCount(m.generationLatency))
}

func TestPrometheus_Handler(t *testing.T) {
	m := NewPrometheus("testns")
	m.QuestionsParsed(2)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "testns_questions_parsed_total 2")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestPrometheus_SeparateRegistries(t *testing.T) {
	// Each instance has its own registry so constructing twice does not panic.
	a := NewPrometheus("")
	b := NewPrometheus("")

	a.IngestSkipped("s")

	assert.NotSame(t, a.Registry(), b.Registry())
	assert.Equal(t, 0, testutil.CollectAndCount(b.ingestSkipped))
}
