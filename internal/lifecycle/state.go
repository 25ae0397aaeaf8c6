// ABOUTME: Capability interfaces, per-surface states and lifecycle events
// ABOUTME: Render instances are checked against Instance once, at creation

package lifecycle

import (
	"fmt"

	"github.com/mauromedda/overlay-wizard/internal/settings"
)

// Instance is a live binding between a settings record and one surface.
type Instance interface {
	ApplyProperties(rec settings.Record) error
	Dispose() error
}

// Validator is implemented by instances that can check their own shape
// before a property push.
type Validator interface {
	Validate() error
}

// Factory creates the instance for a surface.
type Factory func(surface string) (Instance, error)

// State is the lifecycle state of one surface.
type State int

const (
	Empty State = iota
	Loading
	Bound
	Error
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Loading:
		return "loading"
	case Bound:
		return "bound"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// EventKind identifies a lifecycle event.
type EventKind int

const (
	EventCreated EventKind = iota
	EventDisposed
	EventFailed
	EventRecoveryScheduled
	EventRecovering
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventDisposed:
		return "disposed"
	case EventFailed:
		return "failed"
	case EventRecoveryScheduled:
		return "recovery_scheduled"
	case EventRecovering:
		return "recovering"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event reports a lifecycle transition.
type Event struct {
	Kind    EventKind
	Surface string
	Err     error
	Attempt int
}
