package rfidhelper

import (
	"fmt"
	"sync"

	"github.com/bft-labs/rc522assist/internal/app"
	"github.com/bft-labs/rc522assist/internal/domain"
	"github.com/bft-labs/rc522assist/internal/ports"
)

// State is the lifecycle state of a Helper.
type State = app.State

// Lifecycle states.
const (
	StateCreated    = app.StateCreated
	StateActive     = app.StateActive
	StatePaused     = app.StatePaused
	StateTerminated = app.StateTerminated
)

// StateChangeEvent describes a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// CardReadEvent describes a successful read.
type CardReadEvent struct {
	Card Card
}

// PollErrorEvent describes a failed read.
//
// Recoverable errors (request or anticoll failures) do not interrupt
// polling. A non-recoverable error ended the polling phase: the worker is
// parked until the next Deactivate/Activate cycle.
type PollErrorEvent struct {
	Error       error
	Recoverable bool
}

// EventHandler receives helper events.
//
// OnStateChange runs on the goroutine that called the control operation,
// after the helper has been unlocked; it may call Activate, Deactivate or
// Terminate. OnCardRead and OnPollError run on the worker goroutine and must
// not call Deactivate or Terminate, which wait for that goroutine.
// A panicking handler is logged and otherwise ignored.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnCardRead(event CardReadEvent)
	OnPollError(event PollErrorEvent)
}

// eventEmitterWrapper adapts EventHandler to the internal emitter interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
	logger  ports.Logger
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.call("state_change", func() {
		e.handler.OnStateChange(StateChangeEvent{
			Previous: previous,
			Current:  current,
			Reason:   reason,
		})
	})
}

func (e *eventEmitterWrapper) OnCardRead(card domain.Card) {
	if e.handler == nil {
		return
	}
	e.call("card_read", func() {
		e.handler.OnCardRead(CardReadEvent{Card: card})
	})
}

func (e *eventEmitterWrapper) OnPollError(err error, recoverable bool) {
	if e.handler == nil {
		return
	}
	e.call("poll_error", func() {
		e.handler.OnPollError(PollErrorEvent{Error: err, Recoverable: recoverable})
	})
}

// call runs a handler callback, containing panics.
func (e *eventEmitterWrapper) call(event string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("event handler panicked",
				ports.String("event", event),
				ports.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	fn()
}

// stateQueue collects lifecycle transitions made under the helper lock.
type stateQueue struct {
	mu     sync.Mutex
	events []StateChangeEvent
}

func (q *stateQueue) OnStateChange(previous, current app.State, reason string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, StateChangeEvent{
		Previous: previous,
		Current:  current,
		Reason:   reason,
	})
}

func (q *stateQueue) drain() []StateChangeEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	events := q.events
	q.events = nil
	return events
}
