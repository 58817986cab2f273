// =============================================================================
// PRIMALITY ORACLE - Deciding Each Round
// =============================================================================
//
// Round k (2 <= k <= ⌊√N⌋) asks one question: is k prime? Every worker needs
// the answer before it sieves multiples of k.
//
// Two oracles give the same answers:
//
// LOCAL (default)
//   Every worker runs trial division itself. k never exceeds √N, so the
//   repeated work is tiny and no worker ever waits on another.
//
// BROADCAST
//   The collector decides and broadcasts a RoundDecision; everyone else
//   blocks until it arrives.
//
//     round k:   collector: decide → Broadcast ──┐
//                worker 1:  ReceiveFrom(0) ◀─────┤
//                worker 2:  ReceiveFrom(0) ◀─────┘
//
//   Every worker must call Decide exactly once per round, in increasing k.
//   A worker that skips a round reads the wrong decision, which the round
//   check below turns into an error instead of a silent mis-sieve.
//
// =============================================================================
// COMMON BUG TO AVOID
// =============================================================================
//
// BUG: Sieving before the decision arrives
//
// In broadcast mode, a follower that defaults is_prime to false and proceeds
// would skip eliminating multiples of a real prime. Decide blocks until the
// decision is in hand; there is no default.
//
// =============================================================================

package protocol

import (
	"context"
	"errors"
	"fmt"

	"github.com/senutpal/primesieve/internal/sieve"
	"github.com/senutpal/primesieve/internal/transport"
)

type Mode string

const (
	ModeLocal     Mode = "local"
	ModeBroadcast Mode = "broadcast"
)

var (
	ErrUnknownMode      = errors.New("unknown oracle mode")
	ErrRoundMismatch    = errors.New("round decision out of order")
	ErrUnexpectedSender = errors.New("message from unexpected sender")
	ErrUnexpectedType   = errors.New("unexpected message type")
)

// ParseMode accepts "local" or "broadcast". Empty selects local.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeLocal:
		return ModeLocal, nil
	case ModeBroadcast:
		return ModeBroadcast, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Oracle answers is_prime(k) for one worker.
type Oracle interface {
	Decide(ctx context.Context, k int) (bool, error)
}

// NewOracle builds the oracle for mode on top of t.
func NewOracle(mode Mode, t transport.Transport) (Oracle, error) {
	switch mode {
	case ModeLocal:
		return LocalOracle{}, nil
	case ModeBroadcast:
		return &BroadcastOracle{transport: t}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
}

type LocalOracle struct{}

func (LocalOracle) Decide(_ context.Context, k int) (bool, error) {
	return sieve.IsPrime(k), nil
}

// BroadcastOracle centralizes decisions on the collector.
type BroadcastOracle struct {
	transport transport.Transport
}

func (o *BroadcastOracle) Decide(ctx context.Context, k int) (bool, error) {
	if o.transport.ID() == Collector {
		isPrime := sieve.IsPrime(k)
		msg := RoundDecision{Round: k, IsPrime: isPrime, From: Collector}
		if err := o.transport.Broadcast(ctx, msg); err != nil {
			return false, fmt.Errorf("broadcast round %d: %w", k, err)
		}
		return isPrime, nil
	}

	msg, err := o.transport.ReceiveFrom(ctx, Collector)
	if err != nil {
		return false, fmt.Errorf("receive round %d: %w", k, err)
	}
	decision, ok := msg.(RoundDecision)
	if !ok {
		return false, fmt.Errorf("%w: %T in round %d", ErrUnexpectedType, msg, k)
	}
	if decision.From != Collector {
		return false, fmt.Errorf("%w: %d in round %d", ErrUnexpectedSender, decision.From, k)
	}
	if decision.Round != k {
		return false, fmt.Errorf("%w: got %d, want %d", ErrRoundMismatch, decision.Round, k)
	}
	return decision.IsPrime, nil
}
