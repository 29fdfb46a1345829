package metrics

// Common metric attribute keys to keep telemetry consistent/searchable.
const (
	AttrMethod   = "method"
	AttrPath     = "path"
	AttrStatus   = "status"
	AttrEndpoint = "endpoint"
	AttrIntent   = "intent"
	AttrOutcome  = "outcome"
)

// Reconciliation and bootstrap outcome labels.
const (
	OutcomeConfirmed  = "confirmed"
	OutcomeRolledBack = "rolled_back"

	BootstrapRestored  = "restored"
	BootstrapCleared   = "cleared"
	BootstrapPreserved = "preserved"
	BootstrapSkipped   = "skipped"
)
