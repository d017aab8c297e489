package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (RC522ASSIST_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("device", os.Getenv("RC522ASSIST_DEVICE"), &cfg.Device)
	s.setString("spi-port", os.Getenv("RC522ASSIST_SPI_PORT"), &cfg.SPIPort)
	s.setString("reset-pin", os.Getenv("RC522ASSIST_RESET_PIN"), &cfg.ResetPin)
	s.setString("irq-pin", os.Getenv("RC522ASSIST_IRQ_PIN"), &cfg.IRQPin)
	s.setString("card-file", os.Getenv("RC522ASSIST_CARD_FILE"), &cfg.CardFile)
	s.setString("log-level", os.Getenv("RC522ASSIST_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", os.Getenv("RC522ASSIST_LOG_FORMAT"), &cfg.LogFormat)

	if err := s.setDuration("edge-timeout", os.Getenv("RC522ASSIST_EDGE_TIMEOUT"), &cfg.EdgeTimeout); err != nil {
		return err
	}
	if err := s.setDuration("poll", os.Getenv("RC522ASSIST_POLL_INTERVAL"), &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("read-window", os.Getenv("RC522ASSIST_READ_WINDOW"), &cfg.ReadWindow); err != nil {
		return err
	}
	if err := s.setDuration("pause-window", os.Getenv("RC522ASSIST_PAUSE_WINDOW"), &cfg.PauseWindow); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", os.Getenv("RC522ASSIST_SHUTDOWN_TIMEOUT"), &cfg.ShutdownTimeout); err != nil {
		return err
	}

	if err := s.setIntFromString("cycles", os.Getenv("RC522ASSIST_CYCLES"), &cfg.Cycles); err != nil {
		return err
	}

	return nil
}
