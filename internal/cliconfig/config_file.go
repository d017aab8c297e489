package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Device          string `toml:"device"`
	SPIPort         string `toml:"spi_port"`
	ResetPin        string `toml:"reset_pin"`
	IRQPin          string `toml:"irq_pin"`
	EdgeTimeout     string `toml:"edge_timeout"`
	CardFile        string `toml:"card_file"`
	PollInterval    string `toml:"poll_interval"`
	ReadWindow      string `toml:"read_window"`
	PauseWindow     string `toml:"pause_window"`
	Cycles          int    `toml:"cycles"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
	LogLevel        string `toml:"log_level"`
	LogFormat       string `toml:"log_format"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.rc522assist/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".rc522assist", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("device", fc.Device, &cfg.Device)
	s.setString("spi-port", fc.SPIPort, &cfg.SPIPort)
	s.setString("reset-pin", fc.ResetPin, &cfg.ResetPin)
	s.setString("irq-pin", fc.IRQPin, &cfg.IRQPin)
	s.setString("card-file", fc.CardFile, &cfg.CardFile)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)

	if err := s.setDuration("edge-timeout", fc.EdgeTimeout, &cfg.EdgeTimeout); err != nil {
		return err
	}
	if err := s.setDuration("poll", fc.PollInterval, &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("read-window", fc.ReadWindow, &cfg.ReadWindow); err != nil {
		return err
	}
	if err := s.setDuration("pause-window", fc.PauseWindow, &cfg.PauseWindow); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout); err != nil {
		return err
	}

	s.setInt("cycles", fc.Cycles, &cfg.Cycles)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
