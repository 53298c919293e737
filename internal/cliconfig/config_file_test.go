package cliconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
variant = "HE"
delivery_mode = "BATCHED_FILE"
integer_size = 16
batch_size = 8
batch_number = 10
data_dir = "/var/lib/transpipe"
relay_endpoint = "nats://relay:4222/sym"
linger = "2s"
wait = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}
	if fc.Variant != "HE" || fc.DeliveryMode != "BATCHED_FILE" {
		t.Errorf("variant/mode = %v/%v", fc.Variant, fc.DeliveryMode)
	}
	if fc.IntegerSize != 16 || fc.BatchSize != 8 || fc.BatchNumber != 10 {
		t.Errorf("shape = %d/%d/%d", fc.IntegerSize, fc.BatchSize, fc.BatchNumber)
	}
	if fc.Wait == nil || !*fc.Wait {
		t.Error("Wait not parsed")
	}
}

func TestLoadFileConfigMissingFile(t *testing.T) {
	if _, err := LoadFileConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyFileConfig(t *testing.T) {
	trueVal := true

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
				Variant:        "HE",
				DeliveryMode:   "BULK_REPLAY_A",
				BatchSize:      16,
				Linger:         "3s",
				ArchiveDrained: &trueVal,
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				Variant:        "HE",
				DeliveryMode:   "BULK_REPLAY_A",
				BatchSize:      16,
				Linger:         3 * time.Second,
				ArchiveDrained: true,
			},
			wantErr: false,
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Variant:   "HE",
				BatchSize: 16,
			},
			changed: map[string]bool{"variant": true},
			initial: Config{
				Variant:   "HHE",
				BatchSize: 4,
			},
			expected: Config{
				Variant:   "HHE", // unchanged because flag was set
				BatchSize: 16,
			},
			wantErr: false,
		},
		{
			name: "invalid duration errors",
			fileConfig: FileConfig{
				Linger: "soon",
			},
			changed: map[string]bool{},
			initial: Config{},
			wantErr: true,
		},
		{
			name:       "empty file config leaves defaults alone",
			fileConfig: FileConfig{},
			changed:    map[string]bool{},
			initial:    DefaultConfig(),
			expected:   DefaultConfig(),
			wantErr:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyFileConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cfg != tt.expected {
				t.Errorf("config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestFileExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.toml")
	if FileExists(path) {
		t.Error("FileExists() = true for missing file")
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if !FileExists(path) {
		t.Error("FileExists() = false for existing file")
	}
}
