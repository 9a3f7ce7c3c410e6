package extractor

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

var errNilInsight = errors.New("extractor returned no insight")

// Fallback tries Primary and answers from Secondary on any failure
type Fallback struct {
	Primary   Extractor
	Secondary Extractor
	logger    *zap.Logger
}

// NewFallback composes two extractors
func NewFallback(primary, secondary Extractor, log *zap.Logger) *Fallback {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fallback{Primary: primary, Secondary: secondary, logger: log}
}

// Extract implements Extractor
func (f *Fallback) Extract(ctx context.Context, userID, text string) (*Insight, error) {
	insight, err := f.Primary.Extract(ctx, userID, text)
	if err == nil && insight != nil {
		return insight, nil
	}
	if err == nil {
		err = errNilInsight
	}

	f.logger.Warn("Extraction failed, falling back",
		zap.String("user_id", userID),
		zap.Error(err),
	)
	return f.Secondary.Extract(ctx, userID, text)
}

// Chain folds extractors right-to-left into nested fallbacks, so the
// last one answers when all others fail.
func Chain(log *zap.Logger, links ...Extractor) Extractor {
	if len(links) == 0 {
		return NewRuleExtractor()
	}
	result := links[len(links)-1]
	for i := len(links) - 2; i >= 0; i-- {
		result = NewFallback(links[i], result, log)
	}
	return result
}
