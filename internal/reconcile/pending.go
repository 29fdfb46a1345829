package reconcile

import (
	"context"

	"github.com/preston-bernstein/pickem-client/internal/domain/picks"
)

// op is one toggle from optimistic apply to confirmation.
type op struct {
	id     string
	intent Intent
	gameID int64
	teamID int64

	// before is the game's record as this toggle found it (nil for no pick)
	// and beforeIndex its position. beforeSource is the still-unconfirmed
	// toggle that produced it, nil once it reflects confirmed data.
	before       *picks.Pick
	beforeIndex  int
	beforeSource *op

	done    chan struct{}
	failure *Failure
}

// Pending tracks one dispatched toggle.
type Pending struct {
	op *op
}

// ID is the reconciliation ID, also sent as the request ID.
func (p *Pending) ID() string { return p.op.id }

// Intent reports what the toggle was interpreted as.
func (p *Pending) Intent() Intent { return p.op.intent }

// Done closes when the backend answered and the engine reconciled.
func (p *Pending) Done() <-chan struct{} { return p.op.done }

// Err returns the failure after Done closes, nil on success or while pending.
func (p *Pending) Err() error {
	select {
	case <-p.op.done:
	default:
		return nil
	}
	if p.op.failure == nil {
		return nil
	}
	return p.op.failure
}

// Wait blocks until reconciliation finishes or ctx ends. Ending ctx does not
// cancel the request.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.op.done:
		return p.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
