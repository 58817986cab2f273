// =============================================================================
// CLUSTER - Launching P Workers on One Network
// =============================================================================
//
// A run is single-program-multiple-data: P identical workers, started once,
// differentiated only by index. Here each worker is a goroutine and the
// network is the in-memory transport.
//
//   Run(N, P)
//     ├─ validate (N >= 2, P >= 1)
//     ├─ network with P endpoints
//     ├─ start node 0..P-1
//     ├─ wait for all
//     └─ collector's sequence + per-worker report
//
// =============================================================================
// FAILURE MODEL
// =============================================================================
//
// No fault tolerance. The first worker error cancels the shared context so
// peers blocked in a send or receive return instead of hanging, then Run
// reports that first error. Errors caused by the cancellation are logged,
// not returned.
//
// Without a failure, nothing times out: a stuck worker keeps its peers
// waiting, and the transport logs the stall periodically. Stall warnings
// always go to Logger; worker progress and per-message lines only with Trace.
//
// =============================================================================

package cluster

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/senutpal/primesieve/internal/node"
	"github.com/senutpal/primesieve/internal/partition"
	"github.com/senutpal/primesieve/internal/protocol"
	"github.com/senutpal/primesieve/internal/runerr"
	"github.com/senutpal/primesieve/internal/transport"
)

type Options struct {
	N       int
	Workers int
	Mode    protocol.Mode

	SliceLimit   int
	ReceiveLimit int
	InboxSize    int
	StallWarning time.Duration
	Trace        bool

	// Logger receives stall warnings and failures. Nil discards them.
	Logger *log.Logger

	// Prepare, if set, runs on the network before any worker starts.
	// Tests use it to sever or delay links.
	Prepare func(*transport.Network)
}

type WorkerReport struct {
	Worker     int                 `yaml:"worker"`
	Range      partition.WorkRange `yaml:"range"`
	Primes     int                 `yaml:"primes"`
	Eliminated int                 `yaml:"eliminated"`
	Traffic    transport.Stats     `yaml:"traffic"`
}

type Report struct {
	N       int           `yaml:"bound"`
	Workers int           `yaml:"workers"`
	Mode    protocol.Mode `yaml:"oracle"`
	Rounds  int           `yaml:"rounds"`
	Count   int           `yaml:"count"`
	Elapsed time.Duration `yaml:"elapsed"`

	PerWorker []WorkerReport `yaml:"per_worker"`

	// Primes is the global sequence, ascending.
	Primes []int `yaml:"-"`
}

func (r *Report) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}

// Run sieves [2, N] across opts.Workers workers and returns the collector's
// result.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.N < partition.First {
		return nil, runerr.Input("cluster", fmt.Errorf("%w: got %d", partition.ErrBoundTooSmall, opts.N))
	}
	if opts.Workers < 1 {
		return nil, runerr.Input("cluster", fmt.Errorf("%w: got %d", partition.ErrNoWorkers, opts.Workers))
	}
	if opts.Mode == "" {
		opts.Mode = protocol.ModeLocal
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	nodeLog := log.New(io.Discard, "", 0)
	if opts.Trace {
		nodeLog = logger
	}

	netOpts := []transport.NetworkOption{
		transport.WithLogger(logger),
		transport.WithStallWarning(opts.StallWarning),
		transport.WithTrace(opts.Trace),
	}
	if opts.InboxSize > 0 {
		netOpts = append(netOpts, transport.WithInboxSize(opts.InboxSize))
	}
	net := transport.NewNetwork(opts.Workers, netOpts...)
	defer net.Close()
	if opts.Prepare != nil {
		opts.Prepare(net)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg := node.Config{
		N:            opts.N,
		Workers:      opts.Workers,
		Mode:         opts.Mode,
		SliceLimit:   opts.SliceLimit,
		ReceiveLimit: opts.ReceiveLimit,
	}

	nodes := make([]*node.Node, opts.Workers)
	for i := range nodes {
		t, err := net.Node(i)
		if err != nil {
			return nil, runerr.Partition(i, "cluster", err)
		}
		n, err := node.NewNode(cfg, t, nodeLog)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}

	var (
		mu       sync.Mutex
		firstErr error
		results  = make([]node.Result, len(nodes))
		wg       sync.WaitGroup
	)
	for _, n := range nodes {
		if err := n.Start(ctx); err != nil {
			return nil, err
		}
	}
	for i, n := range nodes {
		wg.Add(1)
		go func(i int, n *node.Node) {
			defer wg.Done()
			res, err := n.Wait()
			results[i] = res

			if err == nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if firstErr == nil {
				firstErr = err
				cancel()
				return
			}
			logger.Printf("[worker-%d] stopped after failure: %v", i, err)
		}(i, n)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	collector := results[protocol.Collector]
	report := &Report{
		N:         opts.N,
		Workers:   opts.Workers,
		Mode:      opts.Mode,
		Rounds:    collector.Rounds,
		Count:     len(collector.Primes),
		Elapsed:   collector.Elapsed,
		Primes:    collector.Primes,
		PerWorker: make([]WorkerReport, len(results)),
	}
	for i, res := range results {
		report.PerWorker[i] = WorkerReport{
			Worker:     res.Worker,
			Range:      res.Range,
			Primes:     len(res.Local),
			Eliminated: res.Eliminated,
			Traffic:    res.Traffic,
		}
	}
	return report, nil
}
