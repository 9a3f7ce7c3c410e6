package extractor

import (
	"context"
	"fmt"
	"strings"

	"fitgraph/backend/internal/adapter"
	"fitgraph/backend/pkg/config"
	apperrors "fitgraph/backend/pkg/errors"
	"go.uber.org/zap"
)

// Extraction sources
const (
	SourceRules      = "rules"
	SourceMemMachine = "memmachine"
	SourceLLM        = "llm"
)

// Insight is a typed constraint inferred from free-text feedback
type Insight struct {
	Constraint string  `json:"detected_constraint"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source,omitempty"`
}

// Extractor turns feedback text into an insight
type Extractor interface {
	Extract(ctx context.Context, userID, text string) (*Insight, error)
}

// validate rejects insights a remote service should never have returned
func (i *Insight) validate(source string) error {
	if strings.TrimSpace(i.Constraint) == "" {
		return apperrors.NewExtractionFailed(source, "missing detected_constraint", nil)
	}
	if i.Confidence < 0 || i.Confidence > 1 {
		return apperrors.NewExtractionFailed(source, fmt.Sprintf("confidence %v out of range", i.Confidence), nil)
	}
	return nil
}

// New builds the extraction chain from configuration:
// MemMachine (when live) -> LLM (when live and configured) -> local rules.
// In simulated mode only the local rules run.
func New(cfg *config.Config, log *zap.Logger) Extractor {
	var links []Extractor

	if cfg.UseLiveMemMachine() {
		links = append(links, NewMemMachineExtractor(cfg.MemMachineURL, cfg.MemMachineAPIKey, cfg.MemMachineTimeout))
		log.Info("MemMachine extraction enabled", zap.String("url", cfg.MemMachineURL))
	} else {
		log.Info("MemMachine simulated (LIVE_MEMMACHINE unset or no API key)")
	}

	if cfg.UseLLM() {
		llm := adapter.NewLLMAdapter(cfg.LiteLLMURL, cfg.OpenRouterAPIKey, cfg.ModelID, cfg.LLMTimeout)
		links = append(links, NewLLMExtractor(llm, cfg.LLMTimeout))
		log.Info("LLM extraction enabled",
			zap.String("model", llm.Model()),
			zap.Duration("timeout", cfg.LLMTimeout),
		)
	}

	links = append(links, NewRuleExtractor())
	return Chain(log, links...)
}
