// =============================================================================
// RESULT AGGREGATOR - Draining Every Worker Into the Collector
// =============================================================================
//
// After the last round each worker holds an ascending PrimeList of its own
// range. The collector builds the global sequence:
//
//   collector:  local list ─┐
//   worker 1:   Submit ─────┼─▶ Collect: append in ascending worker order
//   worker 2:   Submit ─────┤
//   ...                     │
//   worker P-1: Submit ─────┘
//
// Ranges are ascending by worker index and each list is ascending, so plain
// concatenation is already sorted. Collect still checks the seams: a batch
// that starts at or below the previous maximum means the partition broke,
// and that is reported rather than re-sorted away.
//
// =============================================================================
// INVARIANT THIS FILE MUST UPHOLD
// =============================================================================
//
// INVARIANT: The collector posts exactly one receive per non-collector
//            worker, in ascending index order, and every worker sends
//            exactly one batch.
//
// =============================================================================

package protocol

import (
	"context"
	"errors"
	"fmt"

	"github.com/senutpal/primesieve/internal/transport"
)

var (
	ErrNotCollector = errors.New("only the collector can collect")
	ErrIsCollector  = errors.New("the collector does not submit")
	ErrSeam         = errors.New("batches overlap across workers")
)

type Aggregator struct {
	transport transport.Transport
	// limit caps a received batch's declared count; <= 0 means no cap.
	limit int
}

func NewAggregator(t transport.Transport, receiveLimit int) *Aggregator {
	return &Aggregator{transport: t, limit: receiveLimit}
}

// Submit sends this worker's primes to the collector as one frame.
func (a *Aggregator) Submit(ctx context.Context, primes []int) error {
	if a.transport.ID() == Collector {
		return ErrIsCollector
	}
	batch := PrimeBatch{From: a.transport.ID(), Payload: EncodePrimes(primes)}
	if err := a.transport.Send(ctx, Collector, batch); err != nil {
		return fmt.Errorf("submit batch: %w", err)
	}
	return nil
}

// Collect returns the global prime sequence: local first, then one batch
// per worker in ascending index order.
func (a *Aggregator) Collect(ctx context.Context, local []int) ([]int, error) {
	if a.transport.ID() != Collector {
		return nil, ErrNotCollector
	}

	out := make([]int, len(local))
	copy(out, local)

	for w := 0; w < a.transport.Peers(); w++ {
		if w == Collector {
			continue
		}
		values, err := a.receiveBatch(ctx, w)
		if err != nil {
			return nil, err
		}
		if len(values) > 0 && len(out) > 0 && values[0] <= out[len(out)-1] {
			return nil, fmt.Errorf("%w: worker %d starts at %d after %d", ErrSeam, w, values[0], out[len(out)-1])
		}
		out = append(out, values...)
	}
	return out, nil
}

func (a *Aggregator) receiveBatch(ctx context.Context, from int) ([]int, error) {
	msg, err := a.transport.ReceiveFrom(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("receive batch from worker %d: %w", from, err)
	}
	batch, ok := msg.(PrimeBatch)
	if !ok {
		return nil, fmt.Errorf("%w: %T from worker %d", ErrUnexpectedType, msg, from)
	}
	if batch.From != from {
		return nil, fmt.Errorf("%w: batch claims worker %d, read from %d", ErrUnexpectedSender, batch.From, from)
	}
	values, err := DecodePrimes(batch.Payload, a.limit)
	if err != nil {
		return nil, fmt.Errorf("decode batch from worker %d: %w", from, err)
	}
	return values, nil
}
