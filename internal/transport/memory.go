// =============================================================================
// IN-MEMORY TRANSPORT - Workers as Goroutines on One Network
// =============================================================================
//
// All workers run in the same process and talk through channels:
//
//   ┌──────────┐  inbox[0→1]  ┌──────────┐
//   │ Worker 0 │ ───────────▶ │ Worker 1 │
//   │          │ ◀─────────── │          │
//   └──────────┘  inbox[1→0]  └──────────┘
//
// Each endpoint owns one buffered channel per peer. Send(to) writes into the
// destination's channel for this sender, so ReceiveFrom(from) reads exactly
// one sender's FIFO.
//
// Channels are never closed. Close() closes a done channel instead, which
// unblocks pending senders and receivers without risking a send on a closed
// channel.
//
// =============================================================================
// FAILURE INJECTION
// =============================================================================
//
// Sever(a, b) makes every later Send from a to b fail with ErrUnreachable.
// Tests use it to check that a communication failure aborts the whole run.
//
// Delay(a, b, d) holds every later Send from a to b for d before delivery,
// which is how a slow peer looks to the receiver.
//
// =============================================================================

package transport

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

const DefaultInboxSize = 16

type NetworkOption func(*Network)

// WithInboxSize sets the per-peer buffer. Zero makes sends rendezvous.
func WithInboxSize(n int) NetworkOption {
	return func(net *Network) {
		if n >= 0 {
			net.inboxSize = n
		}
	}
}

// WithLogger sets the logger used for stall warnings and tracing.
func WithLogger(l *log.Logger) NetworkOption {
	return func(net *Network) {
		if l != nil {
			net.logger = l
		}
	}
}

// WithStallWarning logs a warning every d while a receive is blocked.
// Zero disables the warning; the receive still waits.
func WithStallWarning(d time.Duration) NetworkOption {
	return func(net *Network) { net.stallWarning = d }
}

// WithTrace logs every send and receive.
func WithTrace(on bool) NetworkOption {
	return func(net *Network) { net.trace = on }
}

// Network is the shared registry of endpoints.
type Network struct {
	inboxSize    int
	logger       *log.Logger
	stallWarning time.Duration
	trace        bool

	mu      sync.RWMutex
	nodes   []*MemoryTransport
	severed map[[2]int]bool
	delays  map[[2]int]time.Duration
}

// NewNetwork creates a network with `size` endpoints, indexed 0..size-1.
func NewNetwork(size int, opts ...NetworkOption) *Network {
	net := &Network{
		inboxSize: DefaultInboxSize,
		logger:    log.New(io.Discard, "", 0),
		severed:   make(map[[2]int]bool),
		delays:    make(map[[2]int]time.Duration),
	}
	for _, opt := range opts {
		opt(net)
	}

	net.nodes = make([]*MemoryTransport, size)
	for i := range net.nodes {
		inbox := make([]chan Message, size)
		for j := range inbox {
			if j != i {
				inbox[j] = make(chan Message, net.inboxSize)
			}
		}
		net.nodes[i] = &MemoryTransport{
			id:      i,
			network: net,
			inbox:   inbox,
			done:    make(chan struct{}),
		}
	}
	return net
}

func (n *Network) Size() int { return len(n.nodes) }

// Node returns the endpoint for worker id.
func (n *Network) Node(id int) (*MemoryTransport, error) {
	if id < 0 || id >= len(n.nodes) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	return n.nodes[id], nil
}

// Sever drops the link from worker a to worker b.
func (n *Network) Sever(a, b int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.severed[[2]int{a, b}] = true
}

// Heal restores the link from worker a to worker b.
func (n *Network) Heal(a, b int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.severed, [2]int{a, b})
}

// Delay holds sends from worker a to worker b for d. Zero removes the delay.
func (n *Network) Delay(a, b int, d time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if d <= 0 {
		delete(n.delays, [2]int{a, b})
		return
	}
	n.delays[[2]int{a, b}] = d
}

func (n *Network) delay(a, b int) time.Duration {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.delays[[2]int{a, b}]
}

func (n *Network) isSevered(a, b int) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.severed[[2]int{a, b}]
}

// Close shuts down every endpoint.
func (n *Network) Close() error {
	for _, node := range n.nodes {
		node.Close()
	}
	return nil
}

// MemoryTransport is a single worker's endpoint.
type MemoryTransport struct {
	id      int
	network *Network
	inbox   []chan Message // indexed by sender

	closeOnce sync.Once
	done      chan struct{}

	sent     atomic.Int64
	received atomic.Int64
}

func (t *MemoryTransport) ID() int { return t.id }

func (t *MemoryTransport) Peers() int { return len(t.network.nodes) }

func (t *MemoryTransport) Send(ctx context.Context, to int, msg Message) error {
	if t.isClosed() {
		return ErrClosed
	}
	if to == t.id {
		return ErrSelfSend
	}
	dest, err := t.network.Node(to)
	if err != nil {
		return err
	}
	if t.network.isSevered(t.id, to) {
		return fmt.Errorf("%w: %d → %d", ErrUnreachable, t.id, to)
	}

	if t.network.trace {
		t.network.logger.Printf("[worker-%d] → [worker-%d]: %T", t.id, to, msg)
	}

	if d := t.network.delay(t.id, to); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-dest.done:
			return fmt.Errorf("%w: worker %d", ErrClosed, to)
		case <-t.done:
			return ErrClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	select {
	case dest.inbox[t.id] <- msg:
		t.sent.Add(1)
		return nil
	case <-dest.done:
		return fmt.Errorf("%w: worker %d", ErrClosed, to)
	case <-t.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *MemoryTransport) Broadcast(ctx context.Context, msg Message) error {
	for to := range t.network.nodes {
		if to == t.id {
			continue
		}
		if err := t.Send(ctx, to, msg); err != nil {
			return err
		}
	}
	return nil
}

func (t *MemoryTransport) ReceiveFrom(ctx context.Context, from int) (Message, error) {
	if from == t.id {
		return nil, ErrSelfSend
	}
	if from < 0 || from >= len(t.inbox) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, from)
	}
	if t.isClosed() {
		return nil, ErrClosed
	}

	var stall <-chan time.Time
	if d := t.network.stallWarning; d > 0 {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		stall = ticker.C
	}
	started := time.Now()

	for {
		select {
		case msg := <-t.inbox[from]:
			t.received.Add(1)
			if t.network.trace {
				t.network.logger.Printf("[worker-%d] ← [worker-%d]: %T", t.id, from, msg)
			}
			return msg, nil
		case <-stall:
			t.network.logger.Printf("[worker-%d] still waiting on worker-%d after %s",
				t.id, from, time.Since(started).Round(time.Millisecond))
		case <-t.done:
			return nil, ErrClosed
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (t *MemoryTransport) Stats() Stats {
	return Stats{Sent: t.sent.Load(), Received: t.received.Load()}
}

func (t *MemoryTransport) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	return nil
}

func (t *MemoryTransport) isClosed() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
