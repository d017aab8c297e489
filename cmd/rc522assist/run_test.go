package main

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/rc522assist/internal/cliconfig"
	"github.com/bft-labs/rc522assist/internal/domain"
	"github.com/bft-labs/rc522assist/pkg/log"
)

type mockController struct {
	mu          sync.Mutex
	calls       []string
	activateErr error
	block       chan struct{} // Terminate waits on it when set
}

func (m *mockController) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *mockController) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.calls...)
}

func (m *mockController) Activate() error {
	m.record("activate")
	return m.activateErr
}

func (m *mockController) Deactivate() error {
	m.record("deactivate")
	return nil
}

func (m *mockController) Terminate() error {
	m.record("terminate")
	if m.block != nil {
		<-m.block
	}
	return nil
}

func testConfig() cliconfig.Config {
	cfg := cliconfig.DefaultConfig()
	cfg.ReadWindow = 5 * time.Millisecond
	cfg.PauseWindow = time.Millisecond
	return cfg
}

func TestRunCycles(t *testing.T) {
	tests := []struct {
		name   string
		cycles int
		want   []string
	}{
		{"single cycle", 1, []string{"activate", "deactivate"}},
		{"three cycles", 3, []string{"activate", "deactivate", "activate", "deactivate", "activate", "deactivate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Cycles = tt.cycles
			c := &mockController{}

			if err := runCycles(context.Background(), c, cfg, log.NewNoopLogger()); err != nil {
				t.Fatalf("runCycles() error = %v", err)
			}
			if got := c.Calls(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("calls = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRunCycles_CanceledDuringReadWindow(t *testing.T) {
	cfg := testConfig()
	cfg.ReadWindow = time.Hour
	cfg.Cycles = 2
	c := &mockController{}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	if err := runCycles(ctx, c, cfg, log.NewNoopLogger()); err != nil {
		t.Fatalf("runCycles() error = %v", err)
	}
	// Termination follows directly, no deactivate is needed.
	if got, want := c.Calls(), []string{"activate"}; !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestRunCycles_ReadUntilSignal(t *testing.T) {
	cfg := testConfig()
	cfg.ReadWindow = 0
	c := &mockController{}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := runCycles(ctx, c, cfg, log.NewNoopLogger()); err != nil {
		t.Fatalf("runCycles() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("runCycles() returned after %v, before the context ended", elapsed)
	}
}

func TestRunCycles_ActivateError(t *testing.T) {
	c := &mockController{activateErr: domain.ErrTerminated}

	err := runCycles(context.Background(), c, testConfig(), log.NewNoopLogger())
	if !errors.Is(err, domain.ErrTerminated) {
		t.Errorf("runCycles() error = %v, want ErrTerminated", err)
	}
}

func TestTerminateWithin(t *testing.T) {
	c := &mockController{}
	if err := terminateWithin(c, time.Second); err != nil {
		t.Errorf("terminateWithin() error = %v", err)
	}
}

func TestTerminateWithin_Timeout(t *testing.T) {
	c := &mockController{block: make(chan struct{})}
	defer close(c.block)

	err := terminateWithin(c, 10*time.Millisecond)
	if !errors.Is(err, domain.ErrShutdownTimeout) {
		t.Errorf("terminateWithin() error = %v, want ErrShutdownTimeout", err)
	}
}

func TestOpenDevice_File(t *testing.T) {
	cfg := cliconfig.DefaultConfig()
	cfg.Device = cliconfig.DeviceFile
	cfg.CardFile = t.TempDir() + "/cards.txt"

	d, err := openDevice(cfg, log.NewNoopLogger())
	if err != nil {
		t.Fatalf("openDevice() error = %v", err)
	}
	if err := d.Cleanup(); err != nil {
		t.Errorf("Cleanup() error = %v", err)
	}
}

func TestOpenDevice_Unknown(t *testing.T) {
	cfg := cliconfig.DefaultConfig()
	cfg.Device = "pn532"

	if _, err := openDevice(cfg, log.NewNoopLogger()); err == nil {
		t.Error("openDevice() should reject an unknown device")
	}
}
