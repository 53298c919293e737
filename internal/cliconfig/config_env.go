package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables
// (TRANSPIPE_*). It respects flags that have been explicitly set (changed
// map). Returns an error if any variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("variant", os.Getenv("TRANSPIPE_VARIANT"), &cfg.Variant)
	s.setString("mode", os.Getenv("TRANSPIPE_DELIVERY_MODE"), &cfg.DeliveryMode)
	s.setString("data-dir", os.Getenv("TRANSPIPE_DATA_DIR"), &cfg.DataDir)
	s.setString("key-dir", os.Getenv("TRANSPIPE_KEY_DIR"), &cfg.KeyDir)
	s.setString("timeline-dir", os.Getenv("TRANSPIPE_TIMELINE_DIR"), &cfg.TimelineDir)
	s.setString("relay-endpoint", os.Getenv("TRANSPIPE_RELAY_ENDPOINT"), &cfg.RelayEndpoint)
	s.setString("resolver-endpoint", os.Getenv("TRANSPIPE_RESOLVER_ENDPOINT"), &cfg.ResolverEndpoint)
	s.setString("metrics-addr", os.Getenv("TRANSPIPE_METRICS_ADDR"), &cfg.MetricsAddr)

	if err := s.setIntFromString("int-size", os.Getenv("TRANSPIPE_INTEGER_SIZE"), &cfg.IntegerSize); err != nil {
		return err
	}
	if err := s.setIntFromString("batch-size", os.Getenv("TRANSPIPE_BATCH_SIZE"), &cfg.BatchSize); err != nil {
		return err
	}
	if err := s.setIntFromString("batch-number", os.Getenv("TRANSPIPE_BATCH_NUMBER"), &cfg.BatchNumber); err != nil {
		return err
	}

	if err := s.setDuration("sample-interval", os.Getenv("TRANSPIPE_SAMPLE_INTERVAL"), &cfg.SampleInterval); err != nil {
		return err
	}
	if err := s.setDuration("linger", os.Getenv("TRANSPIPE_LINGER"), &cfg.Linger); err != nil {
		return err
	}
	if err := s.setDuration("settle", os.Getenv("TRANSPIPE_SETTLE"), &cfg.Settle); err != nil {
		return err
	}

	s.setBoolFromString("wait", os.Getenv("TRANSPIPE_WAIT"), &cfg.Wait)
	s.setBoolFromString("remove-after-send", os.Getenv("TRANSPIPE_REMOVE_AFTER_SEND"), &cfg.RemoveAfterSend)
	s.setBoolFromString("archive-drained", os.Getenv("TRANSPIPE_ARCHIVE_DRAINED"), &cfg.ArchiveDrained)

	return nil
}
