package rfidhelper

// Version information for the rfidhelper module.
const (
	// Version is the current version of the rfidhelper module.
	Version = "1.0.0"
)
