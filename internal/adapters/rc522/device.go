// Package rc522 drives an MFRC522 reader wired to SPI through periph.
package rc522

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/mfrc522"
	"periph.io/x/devices/v3/mfrc522/commands"
	"periph.io/x/host/v3"

	"github.com/bft-labs/rc522assist/internal/domain"
	"github.com/bft-labs/rc522assist/internal/ports"
)

// Config holds the wiring of the reader.
type Config struct {
	// SPIPort is the spireg name of the port. Empty selects the first port.
	SPIPort string

	// ResetPin is the gpioreg name of the RST line.
	// Default: GPIO25 (header pin 22)
	ResetPin string

	// IRQPin is the gpioreg name of the IRQ line.
	// Default: GPIO24 (header pin 18)
	IRQPin string

	// EdgeTimeout bounds a single wait on the IRQ line; cancellation is
	// observed between two waits.
	// Default: 500 milliseconds
	EdgeTimeout time.Duration
}

// DefaultConfig returns the wiring of the common Raspberry Pi breakout.
func DefaultConfig() Config {
	return Config{
		ResetPin:    "GPIO25",
		IRQPin:      "GPIO24",
		EdgeTimeout: 500 * time.Millisecond,
	}
}

// lowLevel is the subset of *commands.LowLevel used by the device.
type lowLevel interface {
	WaitForEdge(timeout time.Duration) error
	Init() error
	DevWrite(address int, data byte) error
	CardWrite(command byte, data []byte) ([]byte, int, error)
}

// Device implements ports.ReaderDevice for an MFRC522.
type Device struct {
	name        string
	ll          lowLevel
	halt        func() error
	port        io.Closer
	edgeTimeout time.Duration
	logger      ports.Logger

	retryInitial time.Duration
	retryMax     time.Duration
}

// Open initialises the periph host drivers and connects to the reader.
func Open(cfg Config, logger ports.Logger) (*Device, error) {
	if cfg.EdgeTimeout <= 0 {
		cfg.EdgeTimeout = DefaultConfig().EdgeTimeout
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	resetPin, err := pinByName(cfg.ResetPin)
	if err != nil {
		return nil, err
	}
	irqPin, err := pinByName(cfg.IRQPin)
	if err != nil {
		return nil, err
	}

	port, err := spireg.Open(cfg.SPIPort)
	if err != nil {
		return nil, fmt.Errorf("open spi port %q: %w", cfg.SPIPort, err)
	}

	dev, err := mfrc522.NewSPI(port, resetPin, irqPin)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("connect mfrc522: %w", err)
	}

	d := &Device{
		name:        "rc522@" + port.String(),
		ll:          dev.LowLevel,
		halt:        dev.Halt,
		port:        port,
		edgeTimeout: cfg.EdgeTimeout,
		logger:      logger,

		retryInitial: DefaultRetryInitial,
		retryMax:     DefaultRetryMax,
	}
	logger.Info("reader opened",
		ports.String("device", d.name),
		ports.String("reset_pin", cfg.ResetPin),
		ports.String("irq_pin", cfg.IRQPin),
	)
	return d, nil
}

func pinByName(name string) (gpio.PinIO, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: gpio pin name is required", domain.ErrInvalidConfig)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: unknown gpio pin %q", domain.ErrInvalidConfig, name)
	}
	return p, nil
}

// WaitForTag waits for the IRQ line to signal a card, then re-initialises
// the chip for the next exchange. An edge wait that times out is retried at
// once; a hardware error is retried with backoff.
func (d *Device) WaitForTag(ctx context.Context) error {
	retry := newBackoff(d.retryInitial, d.retryMax)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		if err := d.ll.WaitForEdge(d.edgeTimeout); err != nil {
			if time.Since(start) >= d.edgeTimeout {
				d.logger.Debug("no irq edge", ports.Err(err))
				retry.Reset()
				continue
			}
			d.logger.Warn("wait for irq edge failed",
				ports.Err(err),
				ports.Duration("retry_in", retry.Current()),
			)
			if !retry.Wait(ctx) {
				return ctx.Err()
			}
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.ll.Init(); err != nil {
			d.logger.Warn("reinitialise reader failed",
				ports.Err(err),
				ports.Duration("retry_in", retry.Current()),
			)
			if !retry.Wait(ctx) {
				return ctx.Err()
			}
			continue
		}
		return nil
	}
}

// Request sends REQIDL and returns the ATQA of the answering card.
func (d *Device) Request() (domain.TagType, error) {
	if err := d.ll.DevWrite(commands.BitFramingReg, 0x07); err != nil {
		return 0, fmt.Errorf("set bit framing: %w", err)
	}

	data, backBits, err := d.ll.CardWrite(commands.PCD_TRANSCEIVE, []byte{commands.PICC_REQIDL})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrNoTag, err)
	}
	if backBits != 0x10 || len(data) < 2 {
		return 0, fmt.Errorf("%w: answer has %d bits", domain.ErrNoTag, backBits)
	}
	return domain.TagType(uint16(data[0])<<8 | uint16(data[1])), nil
}

// Anticoll runs cascade level 1 anti-collision and returns the 4 byte UID.
func (d *Device) Anticoll() (domain.UID, error) {
	if err := d.ll.DevWrite(commands.BitFramingReg, 0x00); err != nil {
		return nil, fmt.Errorf("set bit framing: %w", err)
	}

	data, _, err := d.ll.CardWrite(commands.PCD_TRANSCEIVE, []byte{commands.PICC_ANTICOLL, 0x20})
	if err != nil {
		return nil, fmt.Errorf("anticoll: %w", err)
	}
	if len(data) != 5 {
		return nil, fmt.Errorf("anticoll: expected 5 bytes, got %d", len(data))
	}

	var bcc byte
	for _, b := range data[:4] {
		bcc ^= b
	}
	if bcc != data[4] {
		return nil, fmt.Errorf("%w: expected %02X, got %02X", domain.ErrChecksum, bcc, data[4])
	}
	return domain.UID(append([]byte(nil), data[:4]...)), nil
}

// Cleanup halts the chip and closes the SPI port.
func (d *Device) Cleanup() error {
	var errs []error
	if d.halt != nil {
		if err := d.halt(); err != nil {
			errs = append(errs, fmt.Errorf("halt: %w", err))
		}
	}
	if d.port != nil {
		if err := d.port.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close spi port: %w", err))
		}
	}
	return errors.Join(errs...)
}

// String identifies the device.
func (d *Device) String() string {
	return d.name
}
