package rfidhelper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bft-labs/rc522assist/internal/app"
	"github.com/bft-labs/rc522assist/internal/domain"
	"github.com/bft-labs/rc522assist/internal/ports"
)

// Helper polls a reader device from a background worker and reports the
// identifiers of presented cards.
//
// Activate, Deactivate and Terminate are serialized; IsActivated, State and
// Stats may be called concurrently from any goroutine.
type Helper struct {
	name      string
	device    ports.ReaderDevice
	logger    ports.Logger
	lifecycle *app.Lifecycle
	poller    *app.Poller
	emitter   *eventEmitterWrapper
	changes   *stateQueue

	// mu serializes control operations and guards the fields below it.
	mu          sync.Mutex
	initialised bool
	cancelPhase context.CancelFunc

	// Written by the controller, read by the worker.
	run  atomic.Bool
	stop atomic.Bool

	// wake carries the context of the polling phase it starts.
	wake   chan context.Context
	done   chan struct{}
	exited chan struct{}
}

// New creates a Helper in StateCreated. No goroutine is started until the
// first Activate.
func New(device ReaderDevice, opts ...Option) (*Helper, error) {
	if device == nil {
		return nil, errors.New("rfidhelper: device cannot be nil")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = defaultOptions().logger
	}

	name := o.name
	if name == "" {
		name = "ReaderDevice"
		if s, ok := device.(fmt.Stringer); ok {
			name = s.String()
		}
	}

	emitter := &eventEmitterWrapper{handler: o.eventHandler, logger: o.logger}
	changes := &stateQueue{}

	return &Helper{
		name:      name,
		device:    device,
		logger:    o.logger,
		emitter:   emitter,
		changes:   changes,
		lifecycle: app.NewLifecycle(o.logger, changes),
		poller: app.NewPoller(
			app.PollerConfig{PollInterval: o.pollInterval},
			device, o.reporter, o.logger, emitter,
		),
		wake:   make(chan context.Context, 1),
		done:   make(chan struct{}, 1),
		exited: make(chan struct{}),
	}, nil
}

// Activate permits polling, starting the worker on first use.
// It is a no-op while active and returns ErrTerminated after Terminate.
func (h *Helper) Activate() error {
	defer h.publishStateChanges()
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.lifecycle.IsTerminal() {
		return domain.ErrTerminated
	}
	if !h.lifecycle.CanActivate() {
		return nil
	}

	if !h.initialised {
		h.logger.Debug("starting worker", ports.String("helper", h.name))
		h.stop.Store(false)
		go h.work()
		h.initialised = true
	}

	h.logger.Debug("activating", ports.String("helper", h.name))
	ctx, cancel := context.WithCancel(context.Background())
	h.cancelPhase = cancel
	h.run.Store(true)
	h.signalWake(ctx)

	return h.lifecycle.TransitionTo(app.StateActive, "Activate() called")
}

// Deactivate stops polling and blocks until the worker has left the polling
// phase. It is a no-op unless the helper is active.
func (h *Helper) Deactivate() error {
	defer h.publishStateChanges()
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.lifecycle.CanDeactivate() {
		return nil
	}

	h.logger.Debug("deactivating", ports.String("helper", h.name))
	h.run.Store(false)
	h.cancelPhase()

	// Receiving consumes the signal for the next handshake.
	<-h.done

	return h.lifecycle.TransitionTo(app.StatePaused, "Deactivate() called")
}

// Terminate stops the worker for good and releases the device.
// It blocks until the worker has exited. Calling it again is a no-op.
func (h *Helper) Terminate() error {
	defer h.publishStateChanges()
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.lifecycle.IsTerminal() {
		h.logger.Debug("already terminated", ports.String("helper", h.name))
		return nil
	}

	h.logger.Debug("terminating", ports.String("helper", h.name))
	h.stop.Store(true)
	h.run.Store(false)
	if h.cancelPhase != nil {
		h.cancelPhase()
	}

	if h.initialised {
		// A parked worker needs a wake to observe the stop flag.
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		h.signalWake(ctx)
		<-h.exited
	}

	if err := h.lifecycle.TransitionTo(app.StateTerminated, "Terminate() called"); err != nil {
		return err
	}

	if err := h.device.Cleanup(); err != nil {
		h.logger.Error("device cleanup failed", ports.String("helper", h.name), ports.Err(err))
		return fmt.Errorf("cleanup reader: %w", err)
	}
	h.logger.Debug("terminated", ports.String("helper", h.name))
	return nil
}

// IsActivated reports whether polling is currently permitted.
func (h *Helper) IsActivated() bool {
	return h.lifecycle.State() == app.StateActive
}

// State returns the current lifecycle state.
func (h *Helper) State() State {
	return h.lifecycle.State()
}

// Stats returns cumulative polling counters.
func (h *Helper) Stats() Stats {
	return h.poller.Stats()
}

// String identifies the helper in diagnostics.
func (h *Helper) String() string {
	return "Helper " + h.name
}

// work is the worker goroutine: park on wake, poll while run is set, then
// acknowledge with done.
func (h *Helper) work() {
	defer close(h.exited)

	for {
		ctx := <-h.wake

		if err := h.poller.Run(ctx, h.run.Load); err != nil {
			h.logger.Error("polling phase ended", ports.String("helper", h.name), ports.Err(err))
			h.emitter.OnPollError(err, false)
		}

		h.signalDone()
		if h.stop.Load() {
			h.logger.Debug("worker exiting", ports.String("helper", h.name))
			return
		}
	}
}

// publishStateChanges hands queued transitions to the event handler once
// the control lock is released, so a handler may call back into the helper.
func (h *Helper) publishStateChanges() {
	for _, ev := range h.changes.drain() {
		h.emitter.OnStateChange(ev.Previous, ev.Current, ev.Reason)
	}
}

// signalWake sets the wake signal; an already pending wake is kept.
func (h *Helper) signalWake(ctx context.Context) {
	select {
	case h.wake <- ctx:
	default:
	}
}

// signalDone sets the done signal; an already pending done is kept.
func (h *Helper) signalDone() {
	select {
	case h.done <- struct{}{}:
	default:
	}
}
