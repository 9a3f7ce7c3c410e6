package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"fitgraph/backend/internal/constants"
	apperrors "fitgraph/backend/pkg/errors"
	"fitgraph/backend/pkg/logger"
	"go.uber.org/zap"
)

// Completer is the slice of the LLM adapter the extractor needs
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userMsg string) (string, error)
}

// LLMExtractor asks a chat model to classify feedback
type LLMExtractor struct {
	llm     Completer
	timeout time.Duration
	logger  *zap.Logger
}

// NewLLMExtractor creates an extractor backed by a chat model. timeout bounds
// the whole call, retries included.
func NewLLMExtractor(llm Completer, timeout time.Duration) *LLMExtractor {
	return &LLMExtractor{llm: llm, timeout: timeout, logger: logger.Get()}
}

var llmSystemPrompt = fmt.Sprintf(`You classify apparel return feedback into a body-fit constraint.

Respond with ONLY valid JSON (no markdown, no explanation):
{"detected_constraint": "<constraint>", "confidence": <number between 0 and 1>}

Known constraints: %q, %q.
If the feedback is not about body fit, answer %q with confidence 0.`,
	constants.ConstraintBroadShoulders, constants.ConstraintBroadBack, constants.ConstraintUnknown)

// Extract implements Extractor
func (e *LLMExtractor) Extract(ctx context.Context, userID, text string) (*Insight, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	content, err := e.llm.Complete(ctx, llmSystemPrompt, text)
	if err != nil {
		return nil, apperrors.NewExtractionFailed(SourceLLM, "completion failed", err)
	}

	var insight Insight
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &insight); err != nil {
		return nil, apperrors.NewExtractionFailed(SourceLLM, "response is not JSON", err)
	}
	if err := insight.validate(SourceLLM); err != nil {
		return nil, err
	}
	insight.Source = SourceLLM

	e.logger.Debug("LLM insight extracted",
		zap.String("user_id", userID),
		zap.String("constraint", insight.Constraint),
		zap.Float64("confidence", insight.Confidence),
	)
	return &insight, nil
}

// stripCodeFence removes a surrounding ```json fence some models add
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
