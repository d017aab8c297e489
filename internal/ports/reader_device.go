package ports

import (
	"context"

	"github.com/bft-labs/rc522assist/internal/domain"
)

// ReaderDevice is the proximity-card reader collaborator.
//
// Only the polling worker calls WaitForTag, Request and Anticoll; Cleanup is
// called once, after the worker has exited. Implementations therefore do not
// need to be safe for concurrent use.
type ReaderDevice interface {
	// WaitForTag blocks until a card is in range.
	// Implementations should return ctx.Err() promptly when ctx is canceled;
	// those that cannot keep the caller waiting until the next device event.
	WaitForTag(ctx context.Context) error

	// Request asks the card in range for its type.
	Request() (domain.TagType, error)

	// Anticoll runs anti-collision and returns the identifier of the selected card.
	Anticoll() (domain.UID, error)

	// Cleanup releases all hardware resources held by the device.
	Cleanup() error
}
