package constants

// Constraint names produced by extraction
const (
	ConstraintBroadShoulders = "Broad Shoulders"
	ConstraintBroadBack      = "Broad Back"
	ConstraintUnknown        = "Unknown"

	// BroadMarker is the substring that makes a constraint conflict with slim cuts
	BroadMarker = "Broad"
)

// Extraction confidences for the local rule set
const (
	ShoulderConfidence = 0.98
	BackConfidence     = 0.95
	UnknownConfidence  = 0.0
)

// Persistence policy
const (
	// DefaultConfidenceThreshold is exclusive: a constraint is stored only above it
	DefaultConfidenceThreshold = 0.8

	// DefaultReturnReason labels a RETURNED edge when no reason is given
	DefaultReturnReason = "Feedback Processed by MemMachine"
)

// Demo scenario
const (
	DemoUserID             = "user_123"
	DemoReturnedProductID  = "zara_blazer_001"
	DemoCandidateProductID = "hm_jacket_002"
	DemoFeedback           = "I'm returning this Zara blazer because it's too tight on my shoulders."
)
