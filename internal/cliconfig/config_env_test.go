package cliconfig

import (
	"testing"
	"time"
)

func TestApplyEnvConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		changed map[string]bool
		check   func(t *testing.T, cfg Config)
		wantErr bool
	}{
		{
			name: "applies string and int values",
			env: map[string]string{
				"TRANSPIPE_VARIANT":       "HE",
				"TRANSPIPE_DELIVERY_MODE": "BATCHED_FILE",
				"TRANSPIPE_BATCH_SIZE":    "16",
				"TRANSPIPE_DATA_DIR":      "/env/data",
			},
			changed: map[string]bool{},
			check: func(t *testing.T, cfg Config) {
				if cfg.Variant != "HE" {
					t.Errorf("Variant = %v", cfg.Variant)
				}
				if cfg.DeliveryMode != "BATCHED_FILE" {
					t.Errorf("DeliveryMode = %v", cfg.DeliveryMode)
				}
				if cfg.BatchSize != 16 {
					t.Errorf("BatchSize = %v", cfg.BatchSize)
				}
				if cfg.DataDir != "/env/data" {
					t.Errorf("DataDir = %v", cfg.DataDir)
				}
			},
		},
		{
			name: "applies durations and bools",
			env: map[string]string{
				"TRANSPIPE_LINGER":            "5s",
				"TRANSPIPE_REMOVE_AFTER_SEND": "true",
				"TRANSPIPE_WAIT":              "1",
			},
			changed: map[string]bool{},
			check: func(t *testing.T, cfg Config) {
				if cfg.Linger != 5*time.Second {
					t.Errorf("Linger = %v", cfg.Linger)
				}
				if !cfg.RemoveAfterSend || !cfg.Wait {
					t.Errorf("bools = %v/%v", cfg.RemoveAfterSend, cfg.Wait)
				}
			},
		},
		{
			name: "flags win over environment",
			env: map[string]string{
				"TRANSPIPE_VARIANT":    "HE",
				"TRANSPIPE_BATCH_SIZE": "16",
			},
			changed: map[string]bool{"variant": true},
			check: func(t *testing.T, cfg Config) {
				if cfg.Variant != "HHE" {
					t.Errorf("Variant = %v, want flag value kept", cfg.Variant)
				}
				if cfg.BatchSize != 16 {
					t.Errorf("BatchSize = %v, want env applied", cfg.BatchSize)
				}
			},
		},
		{
			name: "invalid int errors",
			env: map[string]string{
				"TRANSPIPE_BATCH_SIZE": "many",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "invalid duration errors",
			env: map[string]string{
				"TRANSPIPE_LINGER": "later",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg := DefaultConfig()
			err := ApplyEnvConfig(&cfg, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyEnvConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil && err == nil {
				tt.check(t, cfg)
			}
		})
	}
}
