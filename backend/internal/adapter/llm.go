package adapter

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"fitgraph/backend/pkg/logger"
	"go.uber.org/zap"
)

// LLMAdapter handles communication with the LLM via LiteLLM
type LLMAdapter struct {
	client       *openai.Client
	model        string
	maxRetries   int
	retryBackoff time.Duration
	logger       *zap.Logger
}

// NewLLMAdapter creates a new LLM adapter. Each HTTP attempt is bounded by timeout.
func NewLLMAdapter(baseURL, apiKey, modelID string, timeout time.Duration) *LLMAdapter {
	// For LiteLLM, we can use a dummy API key if not provided
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"
	config.HTTPClient = &http.Client{Timeout: timeout}

	return &LLMAdapter{
		client:       openai.NewClientWithConfig(config),
		model:        modelID,
		maxRetries:   3,
		retryBackoff: time.Second,
		logger:       logger.Get(),
	}
}

// Model returns the configured model
func (a *LLMAdapter) Model() string {
	return a.model
}

// Complete sends a system and user message and returns the text of the first choice
func (a *LLMAdapter) Complete(ctx context.Context, systemPrompt, userMsg string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMsg},
		},
		Temperature: 0,
	}

	// Retry logic with linear backoff
	var resp openai.ChatCompletionResponse
	var err error
	for attempt := 0; attempt < a.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * a.retryBackoff
			a.logger.Warn("Retrying LLM request",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("LLM request cancelled: %w", ctx.Err())
			case <-time.After(backoff):
			}
		}

		resp, err = a.client.CreateChatCompletion(ctx, req)
		if err == nil {
			break
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("LLM request cancelled: %w", ctx.Err())
		}

		a.logger.Error("LLM request failed",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.String("model", a.model),
		)
	}

	if err != nil {
		return "", fmt.Errorf("failed to generate response after %d attempts: %w", a.maxRetries, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in LLM response")
	}

	content := resp.Choices[0].Message.Content
	a.logger.Debug("LLM response generated",
		zap.String("model", a.model),
		zap.Int("length", len(content)),
	)
	return content, nil
}
