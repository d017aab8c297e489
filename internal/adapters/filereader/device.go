// Package filereader provides a virtual reader device fed by a text file.
//
// Every non-empty line appended to the file is a card presented to the
// reader. Lines starting with '#' are ignored. The file may be created
// after the device is opened.
package filereader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/rc522assist/internal/domain"
	"github.com/bft-labs/rc522assist/internal/ports"
)

var errWatcherClosed = errors.New("file watcher closed")

// Config holds the file reader configuration.
type Config struct {
	// Path of the card file.
	Path string

	// TagType answered to Request. Default: domain.TagTypeMifare1K
	TagType domain.TagType
}

// Device implements ports.ReaderDevice on top of a watched file.
type Device struct {
	path    string
	tagType domain.TagType
	logger  ports.Logger
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	file    os.FileInfo // identity of the file offset belongs to
	offset  int64       // bytes of the file already consumed
	pending []string    // unread card lines
}

// Open starts watching cfg.Path. Lines already in the file are skipped.
func Open(cfg Config, logger ports.Logger) (*Device, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: card file path is required", domain.ErrInvalidConfig)
	}
	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve card file: %w", err)
	}
	if cfg.TagType == 0 {
		cfg.TagType = domain.TagTypeMifare1K
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory so the file may be created or replaced later.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	d := &Device{
		path:    path,
		tagType: cfg.TagType,
		logger:  logger,
		watcher: watcher,
	}
	if info, err := os.Stat(path); err == nil {
		d.file = info
		d.offset = info.Size()
	}

	logger.Info("card file reader opened", ports.String("path", path))
	return d, nil
}

// WaitForTag blocks until an unread card line exists or ctx is done.
func (d *Device) WaitForTag(ctx context.Context) error {
	for {
		if err := d.refill(); err != nil {
			return err
		}
		if d.hasPending() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-d.watcher.Events:
			if !ok {
				return errWatcherClosed
			}
			if filepath.Clean(event.Name) != d.path {
				continue
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				d.rewind()
			}

		case err, ok := <-d.watcher.Errors:
			if !ok {
				return errWatcherClosed
			}
			d.logger.Warn("card file watcher error", ports.Err(err))
		}
	}
}

// Request answers with the configured tag type while a card line is unread.
func (d *Device) Request() (domain.TagType, error) {
	if !d.hasPending() {
		return 0, domain.ErrNoTag
	}
	return d.tagType, nil
}

// Anticoll consumes the next card line and parses it.
func (d *Device) Anticoll() (domain.UID, error) {
	d.mu.Lock()
	if len(d.pending) == 0 {
		d.mu.Unlock()
		return nil, domain.ErrNoTag
	}
	line := d.pending[0]
	d.pending = d.pending[1:]
	d.mu.Unlock()

	return domain.ParseUID(line)
}

// Cleanup stops watching the file.
func (d *Device) Cleanup() error {
	return d.watcher.Close()
}

// String identifies the device.
func (d *Device) String() string {
	return "file:" + d.path
}

func (d *Device) hasPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending) > 0
}

func (d *Device) rewind() {
	d.mu.Lock()
	d.offset = 0
	d.mu.Unlock()
}

// refill reads complete lines appended since the last call.
func (d *Device) refill() error {
	f, err := os.Open(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open card file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat card file: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// Replaced (e.g. renamed over) or truncated.
	if d.file != nil && !os.SameFile(d.file, info) {
		d.logger.Debug("card file replaced", ports.String("path", d.path))
		d.offset = 0
	} else if info.Size() < d.offset {
		d.offset = 0
	}
	d.file = info
	if info.Size() == d.offset {
		return nil
	}

	if _, err := f.Seek(d.offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek card file: %w", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read card file: %w", err)
	}

	// A trailing partial line is left for the next call.
	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		return nil
	}
	d.offset += int64(end + 1)

	for _, line := range strings.Split(string(data[:end]), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		d.pending = append(d.pending, line)
	}
	return nil
}
