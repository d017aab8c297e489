package ports

import "github.com/bft-labs/rc522assist/pkg/log"

// Logger is the structured logger used by the application layer.
type Logger = log.Logger

// Field is a structured log field.
type Field = log.Field

// Field constructors re-exported for the application layer.
var (
	String   = log.String
	Duration = log.Duration
	Err      = log.Err
)
