package ports

import "github.com/bft-labs/rc522assist/internal/domain"

// CardReporter publishes cards read by the polling worker.
// Report is called from the worker goroutine and should return quickly.
type CardReporter interface {
	Report(card domain.Card) error
}
