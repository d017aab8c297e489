package app

import (
	"sync"

	"github.com/bft-labs/rc522assist/internal/domain"
	"github.com/bft-labs/rc522assist/internal/ports"
)

// State represents the lifecycle state of a reader helper.
type State int

const (
	// StateCreated means the polling worker has not been started yet.
	StateCreated State = iota
	// StateActive means the worker is started and polling is permitted.
	StateActive
	// StatePaused means the worker is started but parked.
	StatePaused
	// StateTerminated means the worker exited and the device was released.
	StateTerminated
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateActive:
		return "Active"
	case StatePaused:
		return "Paused"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// EventEmitter is called when lifecycle state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Lifecycle manages the state machine for a reader helper.
type Lifecycle struct {
	mu           sync.RWMutex
	state        State
	logger       ports.Logger
	eventEmitter EventEmitter
}

// NewLifecycle creates a new lifecycle manager in StateCreated.
func NewLifecycle(logger ports.Logger, emitter EventEmitter) *Lifecycle {
	return &Lifecycle{
		state:        StateCreated,
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// TransitionTo attempts to transition to a new state.
// Returns ErrTerminated from the terminal state and ErrInvalidTransition for
// any other transition that is not allowed.
func (l *Lifecycle) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state

	if err := validateTransition(oldState, newState); err != nil {
		l.mu.Unlock()
		return err
	}

	l.state = newState
	l.mu.Unlock()

	// Emit event outside of lock
	if l.eventEmitter != nil {
		l.eventEmitter.OnStateChange(oldState, newState, reason)
	}

	l.logger.Info("state transition",
		ports.String("from", oldState.String()),
		ports.String("to", newState.String()),
		ports.String("reason", reason),
	)

	return nil
}

func validateTransition(from, to State) error {
	switch from {
	case StateCreated:
		if to == StateActive || to == StateTerminated {
			return nil
		}
	case StateActive:
		if to == StatePaused || to == StateTerminated {
			return nil
		}
	case StatePaused:
		if to == StateActive || to == StateTerminated {
			return nil
		}
	case StateTerminated:
		return domain.ErrTerminated
	}
	return domain.ErrInvalidTransition
}

// CanActivate returns true if Activate() has work to do.
func (l *Lifecycle) CanActivate() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateCreated || l.state == StatePaused
}

// CanDeactivate returns true if Deactivate() has work to do.
func (l *Lifecycle) CanDeactivate() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateActive
}

// IsTerminal returns true once the helper has been terminated.
func (l *Lifecycle) IsTerminal() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateTerminated
}
