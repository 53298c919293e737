package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML
// friendly.
type FileConfig struct {
	Variant      string `toml:"variant"`
	DeliveryMode string `toml:"delivery_mode"`
	IntegerSize  int    `toml:"integer_size"`
	BatchSize    int    `toml:"batch_size"`
	BatchNumber  int    `toml:"batch_number"`

	DataDir     string `toml:"data_dir"`
	KeyDir      string `toml:"key_dir"`
	TimelineDir string `toml:"timeline_dir"`

	RelayEndpoint    string `toml:"relay_endpoint"`
	ResolverEndpoint string `toml:"resolver_endpoint"`

	MetricsAddr    string `toml:"metrics_addr"`
	SampleInterval string `toml:"sample_interval"`

	Linger string `toml:"linger"`
	Settle string `toml:"settle"`

	Wait            *bool `toml:"wait"`
	RemoveAfterSend *bool `toml:"remove_after_send"`
	ArchiveDrained  *bool `toml:"archive_drained"`
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
// Returns ~/.transpipe/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".transpipe", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("variant", fc.Variant, &cfg.Variant)
	s.setString("mode", fc.DeliveryMode, &cfg.DeliveryMode)
	s.setString("data-dir", fc.DataDir, &cfg.DataDir)
	s.setString("key-dir", fc.KeyDir, &cfg.KeyDir)
	s.setString("timeline-dir", fc.TimelineDir, &cfg.TimelineDir)
	s.setString("relay-endpoint", fc.RelayEndpoint, &cfg.RelayEndpoint)
	s.setString("resolver-endpoint", fc.ResolverEndpoint, &cfg.ResolverEndpoint)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)

	s.setInt("int-size", fc.IntegerSize, &cfg.IntegerSize)
	s.setInt("batch-size", fc.BatchSize, &cfg.BatchSize)
	s.setInt("batch-number", fc.BatchNumber, &cfg.BatchNumber)

	if err := s.setDuration("sample-interval", fc.SampleInterval, &cfg.SampleInterval); err != nil {
		return err
	}
	if err := s.setDuration("linger", fc.Linger, &cfg.Linger); err != nil {
		return err
	}
	if err := s.setDuration("settle", fc.Settle, &cfg.Settle); err != nil {
		return err
	}

	s.setBool("wait", fc.Wait, &cfg.Wait)
	s.setBool("remove-after-send", fc.RemoveAfterSend, &cfg.RemoveAfterSend)
	s.setBool("archive-drained", fc.ArchiveDrained, &cfg.ArchiveDrained)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
