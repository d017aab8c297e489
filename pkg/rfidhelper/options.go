package rfidhelper

import (
	"time"

	"github.com/bft-labs/rc522assist/internal/app"
	"github.com/bft-labs/rc522assist/internal/domain"
	"github.com/bft-labs/rc522assist/internal/ports"
	"github.com/bft-labs/rc522assist/pkg/log"
)

// Re-export types so that callers outside this module can implement devices
// and reporters.
type (
	// ReaderDevice is the proximity-card reader collaborator.
	ReaderDevice = ports.ReaderDevice

	// CardReporter publishes cards read by the worker.
	CardReporter = ports.CardReporter

	// Card is a single successful read.
	Card = domain.Card

	// UID is a card identifier.
	UID = domain.UID

	// TagType is the ATQA answer of a card.
	TagType = domain.TagType

	// Stats are cumulative polling counters.
	Stats = app.PollStats
)

// Errors returned by the Helper.
var (
	ErrTerminated = domain.ErrTerminated
	ErrNoTag      = domain.ErrNoTag
)

// Option configures optional behavior of a Helper.
type Option func(*options)

// options holds the optional configuration for a Helper instance.
type options struct {
	logger       log.Logger
	reporter     ports.CardReporter
	eventHandler EventHandler
	pollInterval time.Duration
	name         string
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		logger:       log.NewNoopLogger(),
		pollInterval: app.DefaultPollInterval,
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithReporter sets where read cards are published.
// If not provided, reads are only logged and emitted as events.
func WithReporter(reporter CardReporter) Option {
	return func(o *options) {
		o.reporter = reporter
	}
}

// WithEventHandler sets a handler for helper events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPollInterval sets the pause between two reads. Default: 100ms.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		o.pollInterval = d
	}
}

// WithName sets the name used by String(). Defaults to the device's
// fmt.Stringer form.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}
