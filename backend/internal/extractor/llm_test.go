package extractor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fitgraph/backend/internal/constants"
	"fitgraph/backend/pkg/config"
	apperrors "fitgraph/backend/pkg/errors"
)

type mockCompleter struct {
	content    string
	err        error
	lastSystem string
	lastUser   string
}

func (m *mockCompleter) Complete(ctx context.Context, systemPrompt, userMsg string) (string, error) {
	m.lastSystem = systemPrompt
	m.lastUser = userMsg
	return m.content, m.err
}

// blockingCompleter waits until its context is done
type blockingCompleter struct{}

func (blockingCompleter) Complete(ctx context.Context, systemPrompt, userMsg string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestLLMExtractor_Extract(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		constraint string
		confidence float64
	}{
		{"plain json", `{"detected_constraint": "Broad Back", "confidence": 0.91}`, "Broad Back", 0.91},
		{"fenced json", "```json\n{\"detected_constraint\": \"Broad Shoulders\", \"confidence\": 0.88}\n```", "Broad Shoulders", 0.88},
		{"unknown", `{"detected_constraint": "Unknown", "confidence": 0}`, "Unknown", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &mockCompleter{content: tt.content}
			insight, err := NewLLMExtractor(llm, time.Second).Extract(context.Background(), "user_123", "feedback text")
			require.NoError(t, err)
			assert.Equal(t, tt.constraint, insight.Constraint)
			assert.Equal(t, tt.confidence, insight.Confidence)
			assert.Equal(t, SourceLLM, insight.Source)
			assert.Equal(t, "feedback text", llm.lastUser)
			assert.Contains(t, llm.lastSystem, "Broad Shoulders")
		})
	}
}

func TestLLMExtractor_Failures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		err     error
	}{
		{"completion error", "", errors.New("rate limited")},
		{"prose answer", "The customer has broad shoulders.", nil},
		{"empty constraint", `{"detected_constraint": "", "confidence": 0.9}`, nil},
		{"negative confidence", `{"detected_constraint": "Broad Back", "confidence": -0.1}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &mockCompleter{content: tt.content, err: tt.err}
			_, err := NewLLMExtractor(llm, time.Second).Extract(context.Background(), "user_123", "feedback")
			require.Error(t, err)
			assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeExtraction))
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence(`  {"a":1}  `))
}

func TestLLMExtractor_BoundedByTimeout(t *testing.T) {
	start := time.Now()
	_, err := NewLLMExtractor(blockingCompleter{}, 100*time.Millisecond).Extract(context.Background(), "user_123", "shoulders")
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeExtraction))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNew_HungLLMFallsBackToRules(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/v1/chat/completions", func(c *gin.Context) {
		select {
		case <-time.After(10 * time.Second):
		case <-c.Request.Context().Done():
		}
		c.Status(http.StatusGatewayTimeout)
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		LiveMemMachine:    true,
		MemMachineTimeout: time.Second,
		LiteLLMURL:        srv.URL,
		ModelID:           "m",
		LLMTimeout:        300 * time.Millisecond,
	}

	start := time.Now()
	insight, err := New(cfg, zap.NewNop()).Extract(context.Background(), "user_123", "too tight on my shoulders")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, constants.ConstraintBroadShoulders, insight.Constraint)
	assert.Equal(t, constants.ShoulderConfidence, insight.Confidence)
	assert.Equal(t, SourceRules, insight.Source)
}
