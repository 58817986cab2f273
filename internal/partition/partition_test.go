package partition

import (
	"errors"
	"testing"

	"github.com/senutpal/primesieve/internal/runerr"
)

// TestPartitionCoversBoundExactly sweeps (N, P) pairs, including P > N-1,
// and checks the ranges tile [2, N] in worker order.
func TestPartitionCoversBoundExactly(t *testing.T) {
	for n := 2; n <= 200; n++ {
		for p := 1; p <= 40; p++ {
			ranges, err := All(n, p)
			if err != nil {
				t.Fatalf("All(%d, %d) failed: %v", n, p, err)
			}
			if len(ranges) != p {
				t.Fatalf("All(%d, %d) returned %d ranges", n, p, len(ranges))
			}

			next := First
			for i, wr := range ranges {
				if wr.Empty() {
					if wr.Low != next {
						t.Fatalf("N=%d P=%d: empty range %d at %d, expected %d", n, p, i, wr.Low, next)
					}
					continue
				}
				if wr.Low != next {
					t.Fatalf("N=%d P=%d: range %d starts at %d, expected %d", n, p, i, wr.Low, next)
				}
				next = wr.High + 1
			}
			if next != n+1 {
				t.Fatalf("N=%d P=%d: ranges end at %d, expected %d", n, p, next-1, n)
			}
		}
	}
}

func TestPartitionFairness(t *testing.T) {
	for n := 2; n <= 300; n += 7 {
		for p := 1; p <= 64; p++ {
			ranges, err := All(n, p)
			if err != nil {
				t.Fatalf("All(%d, %d) failed: %v", n, p, err)
			}
			lo, hi := ranges[0].Len(), ranges[0].Len()
			total := 0
			for _, wr := range ranges {
				l := wr.Len()
				total += l
				if l < lo {
					lo = l
				}
				if l > hi {
					hi = l
				}
			}
			if hi-lo > 1 {
				t.Errorf("N=%d P=%d: sizes range from %d to %d", n, p, lo, hi)
			}
			if total != n-1 {
				t.Errorf("N=%d P=%d: sizes sum to %d, want %d", n, p, total, n-1)
			}
		}
	}
}

func TestPartitionScenarios(t *testing.T) {
	tests := []struct {
		name string
		n, p int
		want []WorkRange
	}{
		{"single worker", 10, 1, []WorkRange{{2, 10}}},
		{"even split", 30, 3, []WorkRange{{2, 11}, {12, 21}, {22, 30}}},
		{"more workers than candidates", 2, 4, []WorkRange{{2, 2}, {3, 2}, {3, 2}, {3, 2}}},
		{"remainder to first workers", 101, 4, []WorkRange{{2, 26}, {27, 51}, {52, 76}, {77, 101}}},
		{"remainder of two", 13, 5, []WorkRange{{2, 4}, {5, 7}, {8, 9}, {10, 11}, {12, 13}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := All(tt.n, tt.p)
			if err != nil {
				t.Fatalf("All failed: %v", err)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("range %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPartitionScenarioCCoversTwoOnce(t *testing.T) {
	ranges, err := All(2, 4)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	owners := 0
	for _, wr := range ranges {
		if wr.Contains(2) {
			owners++
		}
	}
	if owners != 1 {
		t.Fatalf("2 is owned by %d workers, want 1", owners)
	}
}

func TestPartitionRejectsBadInput(t *testing.T) {
	tests := []struct {
		name      string
		n, p, w   int
		sentinel  error
		kindCheck error
	}{
		{"bound below two", 1, 1, 0, ErrBoundTooSmall, runerr.ErrInput},
		{"negative bound", -5, 2, 0, ErrBoundTooSmall, runerr.ErrInput},
		{"no workers", 10, 0, 0, ErrNoWorkers, runerr.ErrInput},
		{"index too large", 10, 2, 2, ErrWorkerIndex, runerr.ErrPartition},
		{"negative index", 10, 2, -1, ErrWorkerIndex, runerr.ErrPartition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Partition(tt.n, tt.p, tt.w)
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("expected %v, got %v", tt.sentinel, err)
			}
			if !errors.Is(err, tt.kindCheck) {
				t.Fatalf("expected kind %v, got %v", tt.kindCheck, err)
			}
		})
	}
}

func TestWorkRangeHelpers(t *testing.T) {
	empty := WorkRange{Low: 5, High: 4}
	if !empty.Empty() || empty.Len() != 0 || empty.Contains(4) || empty.Contains(5) {
		t.Errorf("empty range misbehaves: %+v", empty)
	}
	if empty.String() != "[]" {
		t.Errorf("empty String() = %q", empty.String())
	}
	wr := WorkRange{Low: 2, High: 11}
	if wr.Len() != 10 || !wr.Contains(2) || !wr.Contains(11) || wr.Contains(12) {
		t.Errorf("range misbehaves: %+v", wr)
	}
	if wr.String() != "[2, 11]" {
		t.Errorf("String() = %q", wr.String())
	}
}
