// =============================================================================
// STORAGE INTERFACE - Where the Final Prime Sequence Goes
// =============================================================================
//
// The collector hands the global prime sequence to a Sink once, after
// aggregation. The sieve does not care what the sink does with it:
//
// - FileSink writes "<N>.txt" in a directory (the command's default)
// - MemorySink keeps results in a map (tests, embedding)
//
// =============================================================================
// OUTPUT FORMAT
// =============================================================================
//
// ASCII decimal primes in ascending order, each followed by one space, no
// newline:
//
//   N=10  →  "2 3 5 7 "
//
// The format is fixed so re-running with the same N produces a
// byte-identical file regardless of the worker count.
//
// =============================================================================
// INVARIANT THIS FILE MUST UPHOLD
// =============================================================================
//
// INVARIANT: Save either stores the complete sequence or returns an error.
//            A partial file is never left under the final name.
//
// =============================================================================

package storage

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

var ErrNotFound = errors.New("no result stored for bound")

// Sink stores and reloads the prime sequence for a bound N.
type Sink interface {
	Save(n int, primes []int) error
	Load(n int) ([]int, error)
	// Location names where the result for n is kept, for log lines.
	Location(n int) string
	Close() error
}

// Format writes primes in the output format.
func Format(w io.Writer, primes []int) error {
	bw := bufio.NewWriter(w)
	var num [20]byte
	for _, p := range primes {
		if _, err := bw.Write(strconv.AppendInt(num[:0], int64(p), 10)); err != nil {
			return err
		}
		if err := bw.WriteByte(' '); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Parse reads the output format back.
func Parse(data []byte) ([]int, error) {
	fields := bytes.Fields(data)
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(string(f))
		if err != nil {
			return nil, fmt.Errorf("parse prime %q: %w", f, err)
		}
		out = append(out, v)
	}
	return out, nil
}
