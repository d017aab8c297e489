package domain

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// UID is a card identifier as returned by anti-collision, without the
// trailing check byte.
type UID []byte

// String renders the identifier as upper-case hex, e.g. "04A1B2C3".
func (u UID) String() string {
	return strings.ToUpper(hex.EncodeToString(u))
}


// ParseUID decodes a hex identifier. Separators commonly printed by readers
// (':', '-', ' ') and an optional "0x" prefix are accepted.
func ParseUID(s string) (UID, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(strings.TrimPrefix(clean, "0x"), "0X")
	clean = strings.NewReplacer(":", "", "-", "", " ", "").Replace(clean)
	if clean == "" {
		return nil, fmt.Errorf("%w: empty", ErrMalformedUID)
	}
	b, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMalformedUID, s, err)
	}
	switch len(b) {
	case 4, 7, 10:
	default:
		return nil, fmt.Errorf("%w: %q has %d bytes", ErrMalformedUID, s, len(b))
	}
	return UID(b), nil
}

// TagType is the two byte ATQA answer to a request command.
type TagType uint16

// String renders the tag type as "0x0400".
func (t TagType) String() string {
	return fmt.Sprintf("0x%04X", uint16(t))
}

// TagTypeMifare1K is the ATQA reported by MIFARE Classic 1K cards.
const TagTypeMifare1K TagType = 0x0400

// Card is a single successful read.
type Card struct {
	UID    UID
	Type   TagType
	ReadAt time.Time
}
