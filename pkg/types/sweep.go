package types

// SweepOutcome classifies what happened to one subscription during a billing
// sweep. Every subscription evaluated in a run gets exactly one outcome.
type SweepOutcome string

const (
	SweepOutcomeCharged         SweepOutcome = "charged"
	SweepOutcomeFailed          SweepOutcome = "failed"
	SweepOutcomeSkippedNoBatch  SweepOutcome = "skipped_no_batch"
	SweepOutcomeSkippedOversold SweepOutcome = "skipped_oversold"
	SweepOutcomeSkippedOverCap  SweepOutcome = "skipped_over_cap"
)
