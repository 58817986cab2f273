package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// FileSink keeps one "<N>.txt" file per bound in Dir.
type FileSink struct {
	Dir string
}

func NewFileSink(dir string) (*FileSink, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &FileSink{Dir: dir}, nil
}

// Path returns the file name used for bound n.
func (f *FileSink) Path(n int) string {
	return filepath.Join(f.Dir, strconv.Itoa(n)+".txt")
}

// Save writes to a temp file in Dir and renames it over the final name.
func (f *FileSink) Save(n int, primes []int) (err error) {
	tmp, err := os.CreateTemp(f.Dir, strconv.Itoa(n)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = Format(tmp, primes); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod output: %w", err)
	}
	if err = os.Rename(tmp.Name(), f.Path(n)); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

func (f *FileSink) Load(n int) ([]int, error) {
	data, err := os.ReadFile(f.Path(n))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, n)
	}
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func (f *FileSink) Location(n int) string { return f.Path(n) }

func (f *FileSink) Close() error { return nil }
