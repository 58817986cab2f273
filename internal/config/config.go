// Package config loads run settings from YAML and validates them before any
// worker starts.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/senutpal/primesieve/internal/protocol"
	"github.com/senutpal/primesieve/internal/runerr"
)

var (
	ErrBound   = errors.New("bound must be an integer >= 2")
	ErrWorkers = errors.New("workers must be >= 1")
	ErrLimit   = errors.New("limits must not be negative")
)

type Config struct {
	N       int    `yaml:"bound"`
	Workers int    `yaml:"workers"`
	Oracle  string `yaml:"oracle"`

	OutputDir string `yaml:"output_dir"`
	// Report, if set, is where the YAML run report is written.
	Report string `yaml:"report,omitempty"`

	StallWarning time.Duration `yaml:"stall_warning"`
	InboxSize    int           `yaml:"inbox_size"`
	MaxSliceLen  int           `yaml:"max_slice_len"`
	MaxBatchLen  int           `yaml:"max_batch_len"`
	Trace        bool          `yaml:"trace"`
}

// Per-worker limits used unless the config sets its own. A slot is one
// byte, so DefaultMaxSliceLen keeps each worker's slice near 256 MiB.
const (
	DefaultMaxSliceLen = 1 << 28
	DefaultMaxBatchLen = 1 << 28
)

func Default() Config {
	return Config{
		Workers:      runtime.NumCPU(),
		Oracle:       string(protocol.ModeLocal),
		OutputDir:    ".",
		StallWarning: 10 * time.Second,
		InboxSize:    16,
		MaxSliceLen:  DefaultMaxSliceLen,
		MaxBatchLen:  DefaultMaxBatchLen,
	}
}

// Load reads path on top of Default. Unknown keys are rejected.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, runerr.Input("config", err)
	}
	defer f.Close()
	return Decode(f)
}

func Decode(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, runerr.Input("config", err)
	}
	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, runerr.Input("config", fmt.Errorf("decode yaml: %w", err))
	}
	return cfg, nil
}

// Mode returns the parsed oracle mode.
func (c Config) Mode() (protocol.Mode, error) {
	m, err := protocol.ParseMode(c.Oracle)
	if err != nil {
		return "", runerr.Input("config", err)
	}
	return m, nil
}

// Validate rejects input errors. It does not reject Workers > N-1; those
// workers get empty ranges.
func (c Config) Validate() error {
	if c.N < 2 {
		return runerr.Input("config", fmt.Errorf("%w: got %d", ErrBound, c.N))
	}
	if c.Workers < 1 {
		return runerr.Input("config", fmt.Errorf("%w: got %d", ErrWorkers, c.Workers))
	}
	if c.InboxSize < 0 || c.MaxSliceLen < 0 || c.MaxBatchLen < 0 || c.StallWarning < 0 {
		return runerr.Input("config", ErrLimit)
	}
	_, err := c.Mode()
	return err
}

func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
