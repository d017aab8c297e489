package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/bft-labs/rc522assist/internal/domain"
)

// Writer implements ports.CardReporter by printing one line per card.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter creates a reporter writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Report prints "UID: <hex>".
func (r *Writer) Report(card domain.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := fmt.Fprintf(r.w, "UID: %s\n", card.UID); err != nil {
		return fmt.Errorf("write card %s: %w", card.UID, err)
	}
	return nil
}
