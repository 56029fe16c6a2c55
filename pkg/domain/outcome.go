package domain

// StepOutcome is the result of a single step.
type StepOutcome struct {
	// Applied is false when the instance was already halted or halted on this call.
	Applied bool
	// Record is set when a transition was applied and history is enabled.
	Record   *StepRecord
	Snapshot Snapshot
}

// RunOutcome is the result of a bounded run.
type RunOutcome struct {
	// Applied counts the transitions performed by this call.
	Applied int
	// Records holds every record produced by this call when history is enabled.
	Records  []StepRecord
	Snapshot Snapshot
}
