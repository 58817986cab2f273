// =============================================================================
// SIEVE MESSAGE TYPES
// =============================================================================
//
// Only two kinds of messages ever cross the network:
//
// ROUND DECISION (broadcast oracle only)
// ──────────────────────────────────────
//
// ┌──────────────┐  RoundDecision(k, prime?)  ┌──────────────┐
// │  COLLECTOR   │ ──────────────────────────▶│   WORKER i   │
// └──────────────┘        one per round       └──────────────┘
//
// PRIME BATCH (aggregation)
// ─────────────────────────
//
// ┌──────────────┐  PrimeBatch(frame)  ┌──────────────┐
// │   WORKER i   │ ───────────────────▶│  COLLECTOR   │
// └──────────────┘     exactly once    └──────────────┘
//
// A batch carries its own length inside the frame (see codec.go). There is
// no separate "count" message, so a receiver can never pair a count from
// one send with data from another.
//
// =============================================================================
// INVARIANT THIS FILE MUST UPHOLD
// =============================================================================
//
// INVARIANT: Every message names its sender, and a RoundDecision names its
//            round, so a receiver can detect a message it did not expect.
//
// =============================================================================

package protocol

// Collector is the worker that aggregates results and, in broadcast mode,
// decides every round.
const Collector = 0

type RoundDecision struct {
	Round   int
	IsPrime bool
	From    int
}

func (r RoundDecision) GetFrom() int { return r.From }

type PrimeBatch struct {
	From    int
	Payload []byte
}

func (b PrimeBatch) GetFrom() int { return b.From }
