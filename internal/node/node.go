// =============================================================================
// NODE - One Worker of the Sieve
// =============================================================================
//
// Every worker runs the same program, differentiated only by its index:
//
//   ┌─────────────────────────────────────────────────────────┐
//   │                        NODE i                           │
//   │  ┌────────────┐   ┌────────────┐   ┌────────────┐       │
//   │  │ PARTITION  │──▶│   SIEVE    │──▶│ AGGREGATOR │       │
//   │  │ [low,high] │   │ k=2..√N    │   │ submit or  │       │
//   │  └────────────┘   └─────┬──────┘   │ collect    │       │
//   │                         │          └─────┬──────┘       │
//   │                   ┌─────┴──────┐         │              │
//   │                   │   ORACLE   │         │              │
//   │                   └─────┬──────┘         │              │
//   │                         └───────┬────────┘              │
//   │                           ┌─────┴─────┐                 │
//   │                           │ TRANSPORT │                 │
//   │                           └───────────┘                 │
//   └─────────────────────────────────────────────────────────┘
//
// Phases, in order:
// 1. Partition: compute this worker's WorkRange from (N, P, i)
// 2. Rounds:    for k = 2..⌊√N⌋ ask the oracle, then eliminate locally
// 3. Compact:   keep live values in ascending order
// 4. Aggregate: workers 1..P-1 submit, worker 0 collects
//
// =============================================================================
// ERROR HANDLING
// =============================================================================
//
// Every failure is fatal and classified before it leaves the node:
//
// 1. Bad (N, P, i):            input / partition error
// 2. Slice or batch too large: allocation error
// 3. Send/receive failure:     communication error
//
// Nothing is retried. The node returns the error and the cluster cancels
// every other worker.
//
// =============================================================================
// INVARIANT THIS FILE MUST UPHOLD
// =============================================================================
//
// INVARIANT: Every worker calls the oracle once per round in increasing k,
//            and performs exactly one aggregation step.
//
// Skipping a round when the range is empty would desynchronize broadcast
// mode, so empty workers still walk every round.
//
// =============================================================================

package node

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/senutpal/primesieve/internal/partition"
	"github.com/senutpal/primesieve/internal/protocol"
	"github.com/senutpal/primesieve/internal/runerr"
	"github.com/senutpal/primesieve/internal/sieve"
	"github.com/senutpal/primesieve/internal/transport"
)

var ErrAlreadyStarted = errors.New("node already started")

type Config struct {
	N       int
	Workers int
	Mode    protocol.Mode

	// SliceLimit caps the local candidate slice; <= 0 leaves sieve.MaxSlots.
	SliceLimit int
	// ReceiveLimit caps the declared size of a received batch; <= 0 means no cap.
	ReceiveLimit int
}

// Result is what one worker produced.
type Result struct {
	Worker     int
	Range      partition.WorkRange
	Local      sieve.PrimeList
	Eliminated int
	Rounds     int

	// Primes is the global sequence; set on the collector only.
	Primes []int
	// Elapsed covers partition through collection; set on the collector only.
	Elapsed time.Duration

	Traffic transport.Stats
}

type Node struct {
	id         int
	cfg        Config
	transport  transport.Transport
	oracle     protocol.Oracle
	aggregator *protocol.Aggregator
	logger     *log.Logger

	mu      sync.Mutex
	started bool
	done    chan struct{}
	result  Result
	err     error
}

// NewNode builds worker t.ID(). A nil logger discards output.
func NewNode(cfg Config, t transport.Transport, logger *log.Logger) (*Node, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	oracle, err := protocol.NewOracle(cfg.Mode, t)
	if err != nil {
		return nil, runerr.Input("oracle", err)
	}
	return &Node{
		id:         t.ID(),
		cfg:        cfg,
		transport:  t,
		oracle:     oracle,
		aggregator: protocol.NewAggregator(t, cfg.ReceiveLimit),
		logger:     logger,
		done:       make(chan struct{}),
	}, nil
}

func (n *Node) ID() int { return n.id }

// Start runs the worker in its own goroutine. Use Wait for the outcome.
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.started {
		return ErrAlreadyStarted
	}
	n.started = true

	go func() {
		defer close(n.done)
		res, err := n.Run(ctx)
		n.mu.Lock()
		n.result, n.err = res, err
		n.mu.Unlock()
	}()
	return nil
}

// Wait blocks until a started worker finishes.
func (n *Node) Wait() (Result, error) {
	<-n.done
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.result, n.err
}

// Run executes all phases on the calling goroutine.
func (n *Node) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	res := Result{Worker: n.id}

	wr, err := partition.Partition(n.cfg.N, n.cfg.Workers, n.id)
	if err != nil {
		return res, err
	}
	res.Range = wr
	n.logger.Printf("[worker-%d] range %v (%d candidates)", n.id, wr, wr.Len())

	slice, err := sieve.NewSlice(wr, n.cfg.SliceLimit)
	if err != nil {
		return res, runerr.Allocation(n.id, "candidate slice", err)
	}

	last := sieve.LastRound(n.cfg.N)
	for k := 2; k <= last; k++ {
		isPrime, err := n.oracle.Decide(ctx, k)
		if err != nil {
			return res, runerr.Communication(n.id, "oracle", err)
		}
		res.Eliminated += slice.Eliminate(k, isPrime)
		res.Rounds++
	}

	res.Local = slice.Compact()
	n.logger.Printf("[worker-%d] %d rounds, %d eliminated, %d primes", n.id, res.Rounds, res.Eliminated, len(res.Local))

	if n.id != protocol.Collector {
		if err := n.aggregator.Submit(ctx, res.Local); err != nil {
			return res, runerr.Communication(n.id, "aggregate", err)
		}
		res.Traffic = n.transport.Stats()
		return res, nil
	}

	primes, err := n.aggregator.Collect(ctx, res.Local)
	if err != nil {
		return res, classifyCollect(n.id, err)
	}
	res.Primes = primes
	res.Elapsed = time.Since(start)
	res.Traffic = n.transport.Stats()
	n.logger.Printf("[worker-%d] collected %d primes in %s", n.id, len(primes), res.Elapsed)
	return res, nil
}

func classifyCollect(id int, err error) error {
	switch {
	case errors.Is(err, protocol.ErrBatchTooLarge):
		return runerr.Allocation(id, "receive buffer", err)
	case errors.Is(err, protocol.ErrSeam):
		return runerr.Partition(id, "aggregate", err)
	}
	return runerr.Communication(id, "aggregate", fmt.Errorf("collect: %w", err))
}
