package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bft-labs/rc522assist/internal/cliconfig"
	"github.com/bft-labs/rc522assist/internal/domain"
	"github.com/bft-labs/rc522assist/pkg/log"
)

// controller is the part of rfidhelper.Helper driven by the CLI.
type controller interface {
	Activate() error
	Deactivate() error
	Terminate() error
}

// runCycles alternates read and pause windows. It returns early, without
// error, once ctx is canceled.
func runCycles(ctx context.Context, c controller, cfg cliconfig.Config, logger log.Logger) error {
	for cycle := 1; cycle <= cfg.Cycles; cycle++ {
		logger.Info("reading",
			log.Int("cycle", cycle),
			log.Duration("window", cfg.ReadWindow),
		)
		if err := c.Activate(); err != nil {
			return fmt.Errorf("activate: %w", err)
		}

		if cfg.ReadWindow == 0 {
			<-ctx.Done()
			return nil
		}
		if !sleep(ctx, cfg.ReadWindow) {
			return nil
		}

		if err := c.Deactivate(); err != nil {
			return fmt.Errorf("deactivate: %w", err)
		}
		logger.Info("paused",
			log.Int("cycle", cycle),
			log.Duration("window", cfg.PauseWindow),
		)
		if !sleep(ctx, cfg.PauseWindow) {
			return nil
		}
	}
	return nil
}

// terminateWithin terminates c and gives up after timeout.
func terminateWithin(c controller, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- c.Terminate() }()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("%w: reader not released after %s", domain.ErrShutdownTimeout, timeout)
	}
}

// sleep waits for d. Returns false if ctx was canceled first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
