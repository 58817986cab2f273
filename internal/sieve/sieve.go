// =============================================================================
// LOCAL SIEVE - One Worker's Candidate Slice
// =============================================================================
//
// Each worker owns a CandidateSlice covering its WorkRange. Every round k
// with is_prime(k) == true, the worker strikes the multiples of k inside its
// own slice. Nobody else reads or writes the slice.
//
//   range [12, 21]:  12 13 14 15 16 17 18 19 20 21
//   after k=2:        x 13  x 15  x 17  x 19  x 21
//   after k=3:        x 13  x  x  x 17  x 19  x  x
//   compact:            13          17    19
//
// Liveness is an explicit mask. Values are implied by position (Low + i), so
// there is no sentinel value to confuse with real data.
//
// =============================================================================
// INVARIANT THIS FILE MUST UPHOLD
// =============================================================================
//
// INVARIANT: after rounds k = 2..⌊√N⌋ have been applied, a slot is live if
//            and only if its value is prime.
//
// Elimination starts at max(k*k, first multiple of k in range), so k itself
// is never struck. Any composite c <= N has a prime factor p <= √c <= √N
// with c >= p*p, so it is reached by round p.
//
// =============================================================================

package sieve

import (
	"errors"
	"fmt"

	"github.com/senutpal/primesieve/internal/partition"
)

// ErrSliceTooLarge is returned when a range exceeds the configured slice
// limit or MaxSlots.
var ErrSliceTooLarge = errors.New("candidate slice exceeds limit")

// MaxSlots caps every slice regardless of the configured limit, so an
// oversized range fails with ErrSliceTooLarge instead of inside make.
const MaxSlots = 1<<31 - 1

// PrimeList is the ascending list of surviving candidates of one worker.
type PrimeList []int

// CandidateSlice tracks which values of a WorkRange are still live.
type CandidateSlice struct {
	rng  partition.WorkRange
	live []bool
}

// NewSlice allocates a slice for wr with every slot live. A limit <= 0
// leaves only the MaxSlots ceiling.
func NewSlice(wr partition.WorkRange, limit int) (*CandidateSlice, error) {
	n := wr.Len()
	if limit <= 0 || limit > MaxSlots {
		limit = MaxSlots
	}
	if n > limit {
		return nil, fmt.Errorf("%w: %d slots for %v, limit %d", ErrSliceTooLarge, n, wr, limit)
	}
	live := make([]bool, n)
	for i := range live {
		live[i] = true
	}
	return &CandidateSlice{rng: wr, live: live}, nil
}

// Range returns the WorkRange the slice covers.
func (c *CandidateSlice) Range() partition.WorkRange { return c.rng }

// Len returns the number of slots, live or not.
func (c *CandidateSlice) Len() int { return len(c.live) }

// Live reports whether v is in range and not yet eliminated.
func (c *CandidateSlice) Live(v int) bool {
	if !c.rng.Contains(v) {
		return false
	}
	return c.live[v-c.rng.Low]
}

// Eliminate strikes the proper multiples of k when isPrime is true and
// returns how many live slots it cleared.
func (c *CandidateSlice) Eliminate(k int, isPrime bool) int {
	if !isPrime || k < 2 || len(c.live) == 0 {
		return 0
	}

	start := k * k
	if start < c.rng.Low {
		start = ((c.rng.Low + k - 1) / k) * k
	}

	cleared := 0
	for v := start; v <= c.rng.High; v += k {
		i := v - c.rng.Low
		if c.live[i] {
			c.live[i] = false
			cleared++
		}
	}
	return cleared
}

// Compact returns the live values in ascending order.
func (c *CandidateSlice) Compact() PrimeList {
	out := make(PrimeList, 0, c.countLive())
	for i, ok := range c.live {
		if ok {
			out = append(out, c.rng.Low+i)
		}
	}
	return out
}

func (c *CandidateSlice) countLive() int {
	n := 0
	for _, ok := range c.live {
		if ok {
			n++
		}
	}
	return n
}
