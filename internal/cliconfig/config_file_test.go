package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				Device:      "file",
				CardFile:    "/var/lib/cards.txt",
				IRQPin:      "GPIO17",
				ReadWindow:  "30s",
				PauseWindow: "0s",
				Cycles:      3,
				LogFormat:   "json",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Device:      "file",
				CardFile:    "/var/lib/cards.txt",
				IRQPin:      "GPIO17",
				ReadWindow:  30 * time.Second,
				PauseWindow: 0,
				Cycles:      3,
				LogFormat:   "json",
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Device:   "file",
				CardFile: "/config/cards.txt",
			},
			changed: map[string]bool{"device": true},
			initial: Config{
				Device: "rc522",
			},
			expected: Config{
				Device:   "rc522", // unchanged because flag was set
				CardFile: "/config/cards.txt",
			},
		},
		{
			name: "empty values keep defaults",
			fileConfig: FileConfig{
				Cycles: 0,
			},
			changed: map[string]bool{},
			initial: Config{
				Device: "rc522",
				Cycles: 1,
			},
			expected: Config{
				Device: "rc522",
				Cycles: 1,
			},
		},
		{
			name: "returns error for invalid duration",
			fileConfig: FileConfig{
				ReadWindow: "ten seconds",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyFileConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg != tt.expected {
				t.Errorf("config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	// Create a temporary TOML file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.toml")

	tomlContent := `
device = "rc522"
spi_port = "/dev/spidev0.0"
reset_pin = "GPIO25"
irq_pin = "GPIO24"
edge_timeout = "250ms"
read_window = "0s"
cycles = 2
log_level = "debug"
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	want := FileConfig{
		Device:      "rc522",
		SPIPort:     "/dev/spidev0.0",
		ResetPin:    "GPIO25",
		IRQPin:      "GPIO24",
		EdgeTimeout: "250ms",
		ReadWindow:  "0s",
		Cycles:      2,
		LogLevel:    "debug",
	}
	if fc != want {
		t.Errorf("LoadFileConfig() = %+v, want %+v", fc, want)
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.toml")

	invalidContent := `
device = "rc522"
this is not valid toml
`

	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	_, err := LoadFileConfig(configPath)
	if err == nil {
		t.Error("LoadFileConfig() expected error for invalid TOML")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if path != "" && !strings.Contains(path, ".rc522assist") {
		t.Errorf("DefaultConfigPath() = %v, should contain .rc522assist", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")

	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Error("FileExists() = false, want true for existing file")
	}

	if FileExists(filepath.Join(tmpDir, "nonexistent.txt")) {
		t.Error("FileExists() = true, want false for nonexistent file")
	}
}
