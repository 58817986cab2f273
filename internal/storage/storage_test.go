package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		primes []int
		want   string
	}{
		{"empty", nil, ""},
		{"single", []int{2}, "2 "},
		{"ten", []int{2, 3, 5, 7}, "2 3 5 7 "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Format(&buf, tt.primes); err != nil {
				t.Fatalf("Format failed: %v", err)
			}
			if buf.String() != tt.want {
				t.Fatalf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("2 3 x ")); err == nil {
		t.Fatal("expected error")
	}
}

func TestFileSinkWritesNamedFile(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewFileSink(filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}
	defer sink.Close()

	primes := []int{2, 3, 5, 7, 11, 13, 17, 19, 23, 29}
	if err := sink.Save(30, primes); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "out", "30.txt"))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "2 3 5 7 11 13 17 19 23 29 " {
		t.Fatalf("file contents = %q", data)
	}

	got, err := sink.Load(30)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got, primes) {
		t.Fatalf("Load = %v", got)
	}

	entries, _ := os.ReadDir(filepath.Join(dir, "out"))
	if len(entries) != 1 {
		t.Fatalf("expected only the result file, found %d entries", len(entries))
	}
}

func TestFileSinkOverwriteIsByteIdentical(t *testing.T) {
	sink, err := NewFileSink(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}
	primes := []int{2, 3, 5, 7}
	if err := sink.Save(10, primes); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	first, _ := os.ReadFile(sink.Path(10))
	if err := sink.Save(10, primes); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	second, _ := os.ReadFile(sink.Path(10))
	if !bytes.Equal(first, second) {
		t.Fatalf("outputs differ: %q vs %q", first, second)
	}
}

func TestSinksReportMissing(t *testing.T) {
	fileSink, err := NewFileSink(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}
	for name, sink := range map[string]Sink{"file": fileSink, "memory": NewMemorySink()} {
		if _, err := sink.Load(99); !errors.Is(err, ErrNotFound) {
			t.Errorf("%s sink: expected ErrNotFound, got %v", name, err)
		}
	}
}

func TestMemorySinkCopies(t *testing.T) {
	sink := NewMemorySink()
	primes := []int{2, 3}
	if err := sink.Save(3, primes); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	primes[0] = 99

	got, err := sink.Load(3)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got[0] != 2 {
		t.Fatal("sink aliases caller slice")
	}

	sink.Reset()
	if _, err := sink.Load(3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Reset kept results: %v", err)
	}
}

func TestSinkLocations(t *testing.T) {
	dir := t.TempDir()
	fileSink, err := NewFileSink(dir)
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}
	tests := []struct {
		sink Sink
		want string
	}{
		{fileSink, filepath.Join(dir, "30.txt")},
		{NewMemorySink(), "memory:30"},
	}
	for _, tt := range tests {
		if got := tt.sink.Location(30); got != tt.want {
			t.Errorf("Location(30) = %q, want %q", got, tt.want)
		}
	}
}
