package cliconfig

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/bft-labs/rc522assist/internal/domain"
	"github.com/bft-labs/rc522assist/pkg/log"
)

// Reader device kinds.
const (
	DeviceRC522 = "rc522"
	DeviceFile  = "file"
)

// Config holds CLI configuration for rc522assist.
type Config struct {
	Device string

	SPIPort     string
	ResetPin    string
	IRQPin      string
	EdgeTimeout time.Duration

	CardFile string

	PollInterval    time.Duration
	ReadWindow      time.Duration // 0 reads until a signal arrives
	PauseWindow     time.Duration
	Cycles          int
	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// DefaultConfig returns a Config with default values: one ten second read
// window followed by a two second pause.
func DefaultConfig() Config {
	return Config{
		Device:          DeviceRC522,
		ResetPin:        "GPIO25",
		IRQPin:          "GPIO24",
		EdgeTimeout:     500 * time.Millisecond,
		PollInterval:    100 * time.Millisecond,
		ReadWindow:      10 * time.Second,
		PauseWindow:     2 * time.Second,
		Cycles:          1,
		ShutdownTimeout: 30 * time.Second,
		LogLevel:        "info",
		LogFormat:       string(log.FormatConsole),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Device {
	case DeviceRC522:
		if c.ResetPin == "" || c.IRQPin == "" {
			return fmt.Errorf("%w: reset-pin and irq-pin are required for the rc522 device", domain.ErrInvalidConfig)
		}
		if c.EdgeTimeout <= 0 {
			return fmt.Errorf("%w: edge timeout must be positive", domain.ErrInvalidConfig)
		}
	case DeviceFile:
		if c.CardFile == "" {
			return fmt.Errorf("%w: card-file is required for the file device", domain.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown device %q (want %s or %s)", domain.ErrInvalidConfig, c.Device, DeviceRC522, DeviceFile)
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive", domain.ErrInvalidConfig)
	}
	if c.ReadWindow < 0 || c.PauseWindow < 0 {
		return fmt.Errorf("%w: read and pause windows cannot be negative", domain.ErrInvalidConfig)
	}
	if c.Cycles < 1 {
		return fmt.Errorf("%w: cycles must be at least 1", domain.ErrInvalidConfig)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown timeout must be positive", domain.ErrInvalidConfig)
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}
	switch log.Format(c.LogFormat) {
	case log.FormatConsole, log.FormatJSON:
	default:
		return fmt.Errorf("%w: invalid log format %q", domain.ErrInvalidConfig, c.LogFormat)
	}

	return nil
}

// NewLogger builds the zerolog-backed logger described by the configuration.
func (c *Config) NewLogger(w io.Writer) (*log.ZerologAdapter, error) {
	return log.New(w, log.Format(c.LogFormat), c.LogLevel)
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
// "0s" is a valid value.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}
