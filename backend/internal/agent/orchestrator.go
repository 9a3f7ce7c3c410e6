package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"fitgraph/backend/internal/constants"
	"fitgraph/backend/internal/extractor"
	"fitgraph/backend/internal/graph"
	"fitgraph/backend/pkg/logger"
	"go.uber.org/zap"
)

// Stage is a step of the demo run
type Stage int

const (
	StageInit Stage = iota
	StageFeedbackProcessed
	StageConstraintEvaluated
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageInit:
		return "INIT"
	case StageFeedbackProcessed:
		return "FEEDBACK_PROCESSED"
	case StageConstraintEvaluated:
		return "CONSTRAINT_EVALUATED"
	case StageDone:
		return "DONE"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// DemoStore is the full store surface the demo needs, including the
// destructive reset
type DemoStore interface {
	FitStore
	ResetAndSeed(ctx context.Context, catalog []graph.Product) error
}

// Scenario is the scripted input of one demo run
type Scenario struct {
	UserID             string
	Feedback           string
	ReturnedProductID  string
	CandidateProductID string
	Catalog            []graph.Product
}

// DefaultScenario returns the scripted blazer/jacket scenario
func DefaultScenario() Scenario {
	return Scenario{
		UserID:             constants.DemoUserID,
		Feedback:           constants.DemoFeedback,
		ReturnedProductID:  constants.DemoReturnedProductID,
		CandidateProductID: constants.DemoCandidateProductID,
		Catalog:            graph.SeedCatalog(),
	}
}

// Result records how far a run got and what it found
type Result struct {
	Stage   Stage
	Outcome *FeedbackOutcome
	Verdict *graph.Verdict
}

// Orchestrator runs the demo stages in order:
// INIT -> FEEDBACK_PROCESSED -> CONSTRAINT_EVALUATED -> DONE
type Orchestrator struct {
	store    DemoStore
	pipeline *Pipeline
	prompter Prompter
	out      io.Writer
	logger   *zap.Logger
}

// NewOrchestrator creates a new demo orchestrator
func NewOrchestrator(store DemoStore, ext extractor.Extractor, threshold float64, prompter Prompter, out io.Writer) *Orchestrator {
	return &Orchestrator{
		store:    store,
		pipeline: NewPipeline(ext, store, threshold),
		prompter: prompter,
		out:      out,
		logger:   logger.Get(),
	}
}

// Run executes the scenario. The returned Result is never nil and its Stage
// is the last stage reached, even when an error is returned.
func (o *Orchestrator) Run(ctx context.Context, sc Scenario) (*Result, error) {
	result := &Result{Stage: StageInit}

	o.logger.Info("Demo started",
		zap.String("user_id", sc.UserID),
		zap.Float64("threshold", o.pipeline.Threshold()),
	)

	fmt.Fprintln(o.out, "\n=== FITGRAPH: MemMachine + Neo4j Demo ===")

	// INIT
	if err := o.prompter.Wait(ctx, "\n[1] Press ENTER to initialize the database..."); err != nil {
		return result, err
	}
	if err := o.store.ResetAndSeed(ctx, sc.Catalog); err != nil {
		return result, fmt.Errorf("failed to initialize database: %w", err)
	}
	fmt.Fprintln(o.out, "[NEO4J] Initialized catalog with sample products.")

	// FEEDBACK_PROCESSED
	if err := o.prompter.Wait(ctx, "\n[2] Press ENTER to simulate user return and process feedback..."); err != nil {
		return result, err
	}
	outcome, err := o.pipeline.ProcessFeedback(ctx, sc.UserID, sc.ReturnedProductID, sc.Feedback)
	if err != nil {
		return result, err
	}
	result.Outcome = outcome
	result.Stage = StageFeedbackProcessed

	insightJSON, _ := json.Marshal(outcome.Insight)
	fmt.Fprintf(o.out, "[MEMMACHINE] Insight: %s\n", insightJSON)
	if outcome.Stored {
		fmt.Fprintf(o.out, "[NEO4J] Saved constraint '%s' for user '%s' and product '%s'.\n",
			outcome.Insight.Constraint, sc.UserID, sc.ReturnedProductID)
		fmt.Fprintf(o.out, "[AGENT] Stored constraint: %s\n", outcome.Insight.Constraint)
	} else {
		fmt.Fprintln(o.out, "[AGENT] No high-confidence insight extracted; nothing stored.")
	}

	// CONSTRAINT_EVALUATED
	if err := o.prompter.Wait(ctx, "\n[3] Press ENTER to simulate shopping for the candidate product..."); err != nil {
		return result, err
	}
	verdict, err := o.pipeline.CheckFitRisk(ctx, sc.UserID, sc.CandidateProductID)
	if err != nil {
		return result, err
	}
	result.Verdict = verdict
	result.Stage = StageConstraintEvaluated

	// DONE
	fmt.Fprintf(o.out, "\n[AGENT] %s\n", verdict.Message)
	result.Stage = StageDone

	o.logger.Info("Demo completed",
		zap.String("user_id", sc.UserID),
		zap.Bool("stored", outcome.Stored),
		zap.Bool("blocked", verdict.Blocked),
	)
	return result, nil
}
