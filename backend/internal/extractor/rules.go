package extractor

import (
	"context"
	"strings"

	"fitgraph/backend/internal/constants"
)

// rule maps any of its keywords to a constraint
type rule struct {
	keywords   []string
	constraint string
	confidence float64
}

// defaultRules are evaluated in order; the first match wins
var defaultRules = []rule{
	{keywords: []string{"shoulder", "shoulders"}, constraint: constants.ConstraintBroadShoulders, confidence: constants.ShoulderConfidence},
	{keywords: []string{"back"}, constraint: constants.ConstraintBroadBack, confidence: constants.BackConfidence},
}

// RuleExtractor is the deterministic local rule set. It never fails.
type RuleExtractor struct {
	rules []rule
}

// NewRuleExtractor creates the keyword extractor
func NewRuleExtractor() *RuleExtractor {
	return &RuleExtractor{rules: defaultRules}
}

// Extract matches the lower-cased text against the rules
func (e *RuleExtractor) Extract(_ context.Context, _ string, text string) (*Insight, error) {
	return e.match(text), nil
}

func (e *RuleExtractor) match(text string) *Insight {
	lower := strings.ToLower(text)
	for _, r := range e.rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return &Insight{Constraint: r.constraint, Confidence: r.confidence, Source: SourceRules}
			}
		}
	}
	return &Insight{Constraint: constants.ConstraintUnknown, Confidence: constants.UnknownConfidence, Source: SourceRules}
}
