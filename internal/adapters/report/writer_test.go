package report

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/bft-labs/rc522assist/internal/domain"
)

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestWriter_Report(t *testing.T) {
	var buf bytes.Buffer
	r := NewWriter(&buf)

	cards := []domain.UID{
		{0x04, 0xA1, 0xB2, 0xC3},
		{0xDE, 0xAD, 0xBE, 0xEF},
	}
	for _, uid := range cards {
		if err := r.Report(domain.Card{UID: uid}); err != nil {
			t.Fatalf("Report() error = %v", err)
		}
	}

	want := "UID: 04A1B2C3\nUID: DEADBEEF\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestWriter_ReportError(t *testing.T) {
	r := NewWriter(failingWriter{})

	err := r.Report(domain.Card{UID: domain.UID{0x01, 0x02, 0x03, 0x04}})
	if err == nil {
		t.Fatal("Report() should fail when the writer fails")
	}
	if !strings.Contains(err.Error(), "01020304") {
		t.Errorf("error %q should name the card", err)
	}
}

func TestWriter_ConcurrentLinesDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	r := NewWriter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = r.Report(domain.Card{UID: domain.UID{byte(i), 0, 0, 0}})
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 50 {
		t.Fatalf("got %d lines, want 50", len(lines))
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "UID: ") || len(line) != len("UID: 00000000") {
			t.Errorf("malformed line %q", line)
		}
	}
}
