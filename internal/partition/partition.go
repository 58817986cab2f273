// =============================================================================
// RANGE PARTITIONER - Splitting [2, N] Across Workers
// =============================================================================
//
// Every worker calls Partition with the same (N, P) and its own index, and
// gets back the contiguous slice of candidates it owns. No coordination is
// needed: the function is pure, so all workers agree by construction.
//
//   candidates:  2 ............................................ N
//                [ worker 0 ][ worker 1 ][ worker 2 ]...[ worker P-1 ]
//
// With span = N-1 candidates, s = span / P and r = span % P:
//
//   size(i) = s + 1   if i < r
//           = s       otherwise
//   low(i)  = 2 + i*s + min(i, r)
//   high(i) = low(i) + size(i) - 1
//
// low(i) is the number of candidates owned by workers 0..i-1, offset by 2.
// The last worker ends at 2 + P*s + r - 1 = N, so the union is exactly [2, N].
//
// =============================================================================
// INVARIANT THIS FILE MUST UPHOLD
// =============================================================================
//
// INVARIANT: ranges are pairwise disjoint, ascending by worker index,
//            contiguous, cover exactly [2, N], and differ in size by at most 1.
//
// When P > N-1 the trailing workers receive an empty range (Low = High+1).
// An empty range is valid and yields no local primes.
//
// =============================================================================
// COMMON BUG TO AVOID
// =============================================================================
//
// BUG: Patching the remainder into each bound separately
//
// Shifting low by i and high by i+1 for the first r workers, then by r for
// the rest, is easy to get off by one, and forcing the last high to N hides
// the mistake instead of fixing it. Derive low from the number of candidates
// owned by earlier workers and every other bound follows from it.
//
// =============================================================================

package partition

import (
	"errors"
	"fmt"

	"github.com/senutpal/primesieve/internal/runerr"
)

// First is the smallest candidate.
const First = 2

var (
	ErrBoundTooSmall = errors.New("bound must be at least 2")
	ErrNoWorkers     = errors.New("worker count must be at least 1")
	ErrWorkerIndex   = errors.New("worker index out of range")
)

// WorkRange is an inclusive range of candidates. Low > High means empty.
type WorkRange struct {
	Low  int `yaml:"low"`
	High int `yaml:"high"`
}

// Len returns the number of candidates in the range.
func (w WorkRange) Len() int {
	if w.High < w.Low {
		return 0
	}
	return w.High - w.Low + 1
}

// Empty reports whether the range holds no candidates.
func (w WorkRange) Empty() bool { return w.Len() == 0 }

// Contains reports whether Low <= v <= High.
func (w WorkRange) Contains(v int) bool { return v >= w.Low && v <= w.High }

func (w WorkRange) String() string {
	if w.Empty() {
		return "[]"
	}
	return fmt.Sprintf("[%d, %d]", w.Low, w.High)
}

// Partition returns the range owned by worker out of p workers for bound n.
func Partition(n, p, worker int) (WorkRange, error) {
	if n < First {
		return WorkRange{}, runerr.Input("partition", fmt.Errorf("%w: got %d", ErrBoundTooSmall, n))
	}
	if p < 1 {
		return WorkRange{}, runerr.Input("partition", fmt.Errorf("%w: got %d", ErrNoWorkers, p))
	}
	if worker < 0 || worker >= p {
		return WorkRange{}, runerr.Partition(worker, "partition", fmt.Errorf("%w: %d not in [0, %d)", ErrWorkerIndex, worker, p))
	}

	span := n - First + 1
	s := span / p
	r := span % p

	size := s
	if worker < r {
		size++
	}
	low := First + worker*s + min(worker, r)
	high := low + size - 1

	if worker == p-1 {
		high = n
	}
	return WorkRange{Low: low, High: high}, nil
}

// All returns every worker's range in worker order.
func All(n, p int) ([]WorkRange, error) {
	if p < 1 {
		return nil, runerr.Input("partition", fmt.Errorf("%w: got %d", ErrNoWorkers, p))
	}
	ranges := make([]WorkRange, p)
	for i := range ranges {
		wr, err := Partition(n, p, i)
		if err != nil {
			return nil, err
		}
		ranges[i] = wr
	}
	return ranges, nil
}
