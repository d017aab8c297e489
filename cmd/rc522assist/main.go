package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/rc522assist/internal/adapters/filereader"
	"github.com/bft-labs/rc522assist/internal/adapters/rc522"
	"github.com/bft-labs/rc522assist/internal/adapters/report"
	"github.com/bft-labs/rc522assist/internal/cliconfig"
	"github.com/bft-labs/rc522assist/pkg/log"
	"github.com/bft-labs/rc522assist/pkg/rfidhelper"
)

const helpDescription = `
Poll an MFRC522 (RC522) proximity-card reader in the background and print
the identifier of every presented card as "UID: <hex>".

The reader is activated for a read window, deactivated for a pause window,
and the cycle repeats --cycles times before the reader is released.
SIGINT or SIGTERM ends the current window and releases the reader.

A virtual reader fed by a text file (--device file) is available for
machines without SPI hardware: append one identifier per line.
`

var exampleUsage = strings.TrimSpace(`
  rc522assist
  rc522assist --read-window 0 --log-level debug
  rc522assist --reset-pin GPIO25 --irq-pin GPIO24 --cycles 3 --pause-window 5s
  rc522assist --device file --card-file /tmp/cards.txt --read-window 0
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return rfidhelper.Version
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	bootstrap := log.NewZerologAdapterWithLogger(
		zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger(),
	)

	root := &cobra.Command{
		Use:          "rc522assist",
		Short:        "Print the identifiers of cards presented to an RC522 reader",
		Long:         strings.TrimSpace(helpDescription),
		Example:      exampleUsage,
		Version:      fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Environment overrides the file, flags override both.
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := cfg.NewLogger(os.Stderr)
			if err != nil {
				return err
			}
			logger.Info("configuration", log.Any("config", cfg))

			device, err := openDevice(cfg, logger)
			if err != nil {
				return err
			}

			helper, err := rfidhelper.New(device,
				rfidhelper.WithLogger(logger),
				rfidhelper.WithReporter(report.NewWriter(cmd.OutOrStdout())),
				rfidhelper.WithPollInterval(cfg.PollInterval),
			)
			if err != nil {
				_ = device.Cleanup()
				return fmt.Errorf("create helper: %w", err)
			}

			// Setup signal handling for graceful shutdown
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			go func() {
				select {
				case sig := <-sigCh:
					logger.Info("received signal, stopping", log.String("signal", sig.String()))
					cancel()
				case <-ctx.Done():
				}
			}()

			runErr := runCycles(ctx, helper, cfg, logger)
			stopErr := terminateWithin(helper, cfg.ShutdownTimeout)

			stats := helper.Stats()
			logger.Info("reader stopped",
				log.Stringer("helper", helper),
				log.Bool("released", stopErr == nil),
				log.Int64("cycles", stats.Cycles),
				log.Int64("cards", stats.Cards),
				log.Int64("errors", stats.Errors),
			)

			return errors.Join(runErr, stopErr)
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.rc522assist/config.toml)")
	root.Flags().StringVar(&cfg.Device, "device", cfg.Device, "reader device: rc522 or file")

	root.Flags().StringVar(&cfg.SPIPort, "spi-port", cfg.SPIPort, "SPI port name (default: first available port)")
	root.Flags().StringVar(&cfg.ResetPin, "reset-pin", cfg.ResetPin, "GPIO wired to the reader RST line")
	root.Flags().StringVar(&cfg.IRQPin, "irq-pin", cfg.IRQPin, "GPIO wired to the reader IRQ line")
	root.Flags().DurationVar(&cfg.EdgeTimeout, "edge-timeout", cfg.EdgeTimeout, "longest single wait on the IRQ line")

	root.Flags().StringVar(&cfg.CardFile, "card-file", cfg.CardFile, "card file watched by the file device")

	root.Flags().DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "pause between two reads")
	root.Flags().DurationVar(&cfg.ReadWindow, "read-window", cfg.ReadWindow, "how long the reader stays active per cycle (0 reads until a signal)")
	root.Flags().DurationVar(&cfg.PauseWindow, "pause-window", cfg.PauseWindow, "how long the reader stays paused per cycle")
	root.Flags().IntVar(&cfg.Cycles, "cycles", cfg.Cycles, "number of read/pause cycles")
	root.Flags().DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "how long to wait for the reader to be released")
	if err := root.Flags().MarkHidden("shutdown-timeout"); err != nil {
		bootstrap.Info("failed to hide shutdown-timeout flag", log.Err(err))
	}

	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	root.Flags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: console or json")

	if err := root.Execute(); err != nil {
		bootstrap.Error("rc522assist", log.Err(err))
		os.Exit(1)
	}
}

// openDevice opens the reader selected by cfg.Device.
func openDevice(cfg cliconfig.Config, logger log.Logger) (rfidhelper.ReaderDevice, error) {
	switch cfg.Device {
	case cliconfig.DeviceRC522:
		d, err := rc522.Open(rc522.Config{
			SPIPort:     cfg.SPIPort,
			ResetPin:    cfg.ResetPin,
			IRQPin:      cfg.IRQPin,
			EdgeTimeout: cfg.EdgeTimeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("open rc522: %w", err)
		}
		return d, nil
	case cliconfig.DeviceFile:
		d, err := filereader.Open(filereader.Config{Path: cfg.CardFile}, logger)
		if err != nil {
			return nil, fmt.Errorf("open card file: %w", err)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unknown device %q", cfg.Device)
	}
}
