package actions

import (
	"fmt"
	"time"
)

// Phase is a step of a reconcile run.
type Phase string

const (
	PhaseInit           Phase = "init"
	PhaseConfigLoaded   Phase = "config-loaded"
	PhaseStateDetected  Phase = "state-detected"
	PhaseBackupComplete Phase = "backup-complete"
	PhaseRendered       Phase = "rendered"
	PhaseApplied        Phase = "applied"
	PhaseDone           Phase = "done"
	PhaseFailed         Phase = "failed"
)

// Transition is one entry of the run history.
type Transition struct {
	From Phase
	To   Phase
	At   time.Time
	Err  error
}

func isAllowedTransition(from, to Phase) bool {
	if to == PhaseFailed {
		return from != PhaseDone && from != PhaseFailed
	}

	switch from {
	case PhaseInit:
		return to == PhaseConfigLoaded
	case PhaseConfigLoaded:
		return to == PhaseStateDetected
	case PhaseStateDetected:
		// the backup is skipped for an absent installation
		return to == PhaseBackupComplete || to == PhaseRendered
	case PhaseBackupComplete:
		return to == PhaseRendered
	case PhaseRendered:
		return to == PhaseApplied
	case PhaseApplied:
		return to == PhaseDone
	default:
		return false
	}
}

func checkTransition(from, to Phase) error {
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("disallowed transition: %s -> %s", from, to)
	}
	return nil
}
