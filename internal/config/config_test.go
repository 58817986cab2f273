package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/senutpal/primesieve/internal/protocol"
	"github.com/senutpal/primesieve/internal/runerr"
)

func TestDecodeOverridesDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
bound: 101
workers: 4
oracle: broadcast
output_dir: out
stall_warning: 250ms
max_slice_len: 1000
`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if cfg.N != 101 || cfg.Workers != 4 || cfg.OutputDir != "out" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.StallWarning != 250*time.Millisecond {
		t.Errorf("StallWarning = %v", cfg.StallWarning)
	}
	if cfg.InboxSize != Default().InboxSize {
		t.Errorf("InboxSize default lost: %d", cfg.InboxSize)
	}
	if cfg.MaxSliceLen != 1000 || cfg.MaxBatchLen != DefaultMaxBatchLen {
		t.Errorf("limits = %d, %d", cfg.MaxSliceLen, cfg.MaxBatchLen)
	}
	mode, err := cfg.Mode()
	if err != nil || mode != protocol.ModeBroadcast {
		t.Errorf("Mode() = %q, %v", mode, err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestDecodeEmptyGivesDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader("  \n"))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("got %+v, want defaults", cfg)
	}
}

func TestDefaultsCapAllocation(t *testing.T) {
	cfg := Default()
	if cfg.MaxSliceLen <= 0 || cfg.MaxBatchLen <= 0 {
		t.Fatalf("default limits must be set, got %d, %d", cfg.MaxSliceLen, cfg.MaxBatchLen)
	}
}

func TestMarshalUsesPlainKeys(t *testing.T) {
	cfg := Default()
	cfg.N = 30
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.HasPrefix(string(data), "bound: 30\n") {
		t.Errorf("bound key not emitted plainly:\n%s", data)
	}
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode(strings.NewReader("bound: 10\nthreads: 3\n"))
	if !errors.Is(err, runerr.ErrInput) {
		t.Fatalf("expected input error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := Default()
	base.N = 10

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"ok", func(*Config) {}, nil},
		{"more workers than candidates", func(c *Config) { c.N = 2; c.Workers = 4 }, nil},
		{"bound too small", func(c *Config) { c.N = 1 }, ErrBound},
		{"zero bound", func(c *Config) { c.N = 0 }, ErrBound},
		{"no workers", func(c *Config) { c.Workers = 0 }, ErrWorkers},
		{"negative limit", func(c *Config) { c.MaxSliceLen = -1 }, ErrLimit},
		{"bad oracle", func(c *Config) { c.Oracle = "gossip" }, protocol.ErrUnknownMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) || !errors.Is(err, runerr.ErrInput) {
				t.Fatalf("expected input error wrapping %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sieve.yaml")
	if err := os.WriteFile(path, []byte("bound: 30\nworkers: 3\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.N != 30 || cfg.Workers != 3 {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, runerr.ErrInput) {
		t.Fatalf("expected input error for missing file, got %v", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.N = 1000
	cfg.Trace = true
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	back, err := Decode(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if back != cfg {
		t.Fatalf("got %+v, want %+v", back, cfg)
	}
}
