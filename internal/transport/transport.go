// =============================================================================
// TRANSPORT INTERFACE - Message Passing Between Workers
// =============================================================================
//
// Workers never share memory. The per-round primality decision and the final
// prime batches move between them as messages, and this interface is the only
// way those messages travel.
//
// Workers are identified by their ordinal index 0..P-1. Worker 0 is the
// collector.
//
// =============================================================================
// TRANSPORT SEMANTICS
// =============================================================================
//
// The sieve protocol assumes a RELIABLE, SYNCHRONOUS network, the opposite of
// what a consensus protocol plans for:
//
// - Messages are never lost, duplicated, or corrupted
// - Messages from one sender to one receiver arrive in send order
// - Send blocks while the receiver's inbox is full
// - Receive blocks until the expected sender delivers
//
// Receives are always addressed to a specific sender (ReceiveFrom). The
// collector drains workers in ascending index order, and followers wait on
// the collector only, so there is no need for a "receive from anyone" call.
//
// There are no timeouts. A worker that never sends stalls its receiver until
// the context is cancelled. The stall is logged, never hidden.
//
// =============================================================================
// INVARIANT THIS FILE MUST UPHOLD
// =============================================================================
//
// INVARIANT: Messages sent from A to B are received by B, in the order A
//            sent them, and by nobody else.
//
// =============================================================================
// COMMON BUG TO AVOID
// =============================================================================
//
// BUG: One shared inbox per receiver
//
// If all senders write to a single inbox, the collector that wants worker 1's
// batch first may pop worker 2's batch instead. Keep one FIFO per
// (sender, receiver) pair so "receive from worker i" is exact.
//
// =============================================================================

package transport

import (
	"context"
	"errors"
)

var (
	ErrClosed      = errors.New("transport closed")
	ErrUnknownNode = errors.New("unknown worker")
	ErrUnreachable = errors.New("worker unreachable")
	ErrSelfSend    = errors.New("cannot send to self")
)

// Message is anything a worker can send. GetFrom identifies the sender.
type Message interface {
	GetFrom() int
}

// Transport is one worker's endpoint on the network.
type Transport interface {
	// ID returns the worker index this endpoint belongs to.
	ID() int

	// Peers returns the number of workers on the network, including self.
	Peers() int

	// Send delivers msg to worker `to`, blocking while its inbox is full.
	Send(ctx context.Context, to int, msg Message) error

	// Broadcast sends msg to every other worker in ascending index order.
	Broadcast(ctx context.Context, msg Message) error

	// ReceiveFrom blocks until the next message from worker `from` arrives.
	ReceiveFrom(ctx context.Context, from int) (Message, error)

	// Stats returns message counters for this endpoint.
	Stats() Stats

	Close() error
}

// Stats counts traffic through one endpoint.
type Stats struct {
	Sent     int64 `yaml:"sent"`
	Received int64 `yaml:"received"`
}
