package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bft-labs/rc522assist/internal/domain"
	"github.com/bft-labs/rc522assist/internal/ports"
)

// DefaultPollInterval bounds the poll rate between two reads.
const DefaultPollInterval = 100 * time.Millisecond

// PollerConfig contains configuration for the polling phase.
type PollerConfig struct {
	PollInterval time.Duration
}

// PollEventEmitter is called on reads and read failures.
type PollEventEmitter interface {
	OnCardRead(card domain.Card)
	OnPollError(err error, recoverable bool)
}

// PollStats are cumulative counters over all polling phases.
type PollStats struct {
	Cycles int64 // cards signalled by WaitForTag
	Cards  int64 // identifiers reported
	Errors int64 // request/anticoll failures
}

// Poller runs the device-facing polling phase.
//
// Run is called by a single worker goroutine; Stats may be read from any goroutine.
type Poller struct {
	config   PollerConfig
	device   ports.ReaderDevice
	reporter ports.CardReporter
	logger   ports.Logger
	emitter  PollEventEmitter

	cycles atomic.Int64
	cards  atomic.Int64
	errors atomic.Int64
}

// NewPoller creates a poller. reporter and emitter may be nil.
func NewPoller(
	config PollerConfig,
	device ports.ReaderDevice,
	reporter ports.CardReporter,
	logger ports.Logger,
	emitter PollEventEmitter,
) *Poller {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	return &Poller{
		config:   config,
		device:   device,
		reporter: reporter,
		logger:   logger,
		emitter:  emitter,
	}
}

// Run polls the device while running() reports true.
//
// It returns nil when running() turns false or ctx is canceled. Failures of
// Request and Anticoll are logged and polling continues. A WaitForTag failure
// or a panic ends the phase and is returned.
func (p *Poller) Run(ctx context.Context, running func() bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", domain.ErrPollPanic, r)
		}
	}()

	for running() {
		if err := p.device.WaitForTag(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("wait for tag: %w", err)
		}
		// Deactivated while the device was blocked: do not touch the card.
		if ctx.Err() != nil || !running() {
			return nil
		}

		p.cycles.Add(1)
		p.readCard()

		if !p.sleep(ctx) {
			return nil
		}
	}
	return nil
}

// readCard performs one request/anticoll exchange and reports the identifier.
func (p *Poller) readCard() {
	tagType, err := p.device.Request()
	if err != nil {
		p.readFailed("request failed", err)
		return
	}

	uid, err := p.device.Anticoll()
	if err != nil {
		p.readFailed("anticoll failed", err)
		return
	}

	card := domain.Card{UID: uid, Type: tagType, ReadAt: time.Now()}
	p.cards.Add(1)

	p.logger.Info("card read",
		ports.String("uid", uid.String()),
		ports.String("type", tagType.String()),
	)

	if p.reporter != nil {
		if err := p.reporter.Report(card); err != nil {
			p.logger.Warn("report failed", ports.String("uid", uid.String()), ports.Err(err))
		}
	}
	if p.emitter != nil {
		p.emitter.OnCardRead(card)
	}
}

func (p *Poller) readFailed(msg string, err error) {
	p.errors.Add(1)
	if errors.Is(err, domain.ErrNoTag) {
		// card left the field between the IRQ and the request
		p.logger.Debug(msg, ports.Err(err))
	} else {
		p.logger.Error(msg, ports.Err(err))
	}
	if p.emitter != nil {
		p.emitter.OnPollError(err, true)
	}
}

// sleep waits one poll interval. Returns false if ctx was canceled first.
func (p *Poller) sleep(ctx context.Context) bool {
	t := time.NewTimer(p.config.PollInterval)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Stats returns the cumulative counters.
func (p *Poller) Stats() PollStats {
	return PollStats{
		Cycles: p.cycles.Load(),
		Cards:  p.cards.Load(),
		Errors: p.errors.Load(),
	}
}
