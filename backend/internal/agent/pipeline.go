package agent

import (
	"context"
	"fmt"

	"fitgraph/backend/internal/extractor"
	"fitgraph/backend/internal/graph"
	"fitgraph/backend/pkg/logger"
	"go.uber.org/zap"
)

// FitStore is the store surface available to routine operations.
// It deliberately has no reset.
type FitStore interface {
	RecordConstraint(ctx context.Context, userID, productID, constraint, reason string) error
	EvaluateConflict(ctx context.Context, userID, productID string) (*graph.Verdict, error)
}

// FeedbackOutcome is what happened to one piece of feedback
type FeedbackOutcome struct {
	UserID    string             `json:"user_id"`
	ProductID string             `json:"product_id"`
	Insight   *extractor.Insight `json:"insight"`
	Stored    bool               `json:"stored"`
}

// Pipeline turns feedback into stored constraints and answers fit-risk checks
type Pipeline struct {
	extractor extractor.Extractor
	store     FitStore
	threshold float64
	logger    *zap.Logger
}

// NewPipeline creates a pipeline that persists insights above threshold
func NewPipeline(ext extractor.Extractor, store FitStore, threshold float64) *Pipeline {
	return &Pipeline{
		extractor: ext,
		store:     store,
		threshold: threshold,
		logger:    logger.Get(),
	}
}

// Threshold returns the persistence threshold
func (p *Pipeline) Threshold() float64 {
	return p.threshold
}

// ProcessFeedback extracts an insight and records it when its confidence
// is strictly above the threshold. Extraction never fails; only the store
// write can return an error.
func (p *Pipeline) ProcessFeedback(ctx context.Context, userID, productID, text string) (*FeedbackOutcome, error) {
	insight, err := p.extractor.Extract(ctx, userID, text)
	if err != nil {
		// The chain ends in the rule set, so this only happens with a custom extractor
		return nil, fmt.Errorf("failed to extract insight: %w", err)
	}

	outcome := &FeedbackOutcome{
		UserID:    userID,
		ProductID: productID,
		Insight:   insight,
	}

	if insight.Confidence <= p.threshold {
		p.logger.Info("No high-confidence insight; nothing stored",
			zap.String("user_id", userID),
			zap.String("constraint", insight.Constraint),
			zap.Float64("confidence", insight.Confidence),
		)
		return outcome, nil
	}

	if err := p.store.RecordConstraint(ctx, userID, productID, insight.Constraint, ""); err != nil {
		return nil, fmt.Errorf("failed to record constraint: %w", err)
	}
	outcome.Stored = true
	return outcome, nil
}

// CheckFitRisk evaluates a candidate product for a user
func (p *Pipeline) CheckFitRisk(ctx context.Context, userID, productID string) (*graph.Verdict, error) {
	verdict, err := p.store.EvaluateConflict(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate fit risk: %w", err)
	}
	return verdict, nil
}
