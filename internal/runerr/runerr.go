// Package runerr classifies the failures that terminate a sieve run.
//
// Every failure is fatal. The category only decides how the run is reported
// and which exit code the command returns.
package runerr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInput Kind = iota + 1
	KindPartition
	KindAllocation
	KindCommunication
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindPartition:
		return "partition"
	case KindAllocation:
		return "allocation"
	case KindCommunication:
		return "communication"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrInput         = errors.New("input error")
	ErrPartition     = errors.New("partition error")
	ErrAllocation    = errors.New("allocation error")
	ErrCommunication = errors.New("communication error")
)

// NoWorker marks an error that is not tied to a single worker.
const NoWorker = -1

type Error struct {
	Kind   Kind
	Worker int
	Op     string
	Err    error
}

func (e *Error) Error() string {
	if e.Worker == NoWorker {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: worker %d: %s: %v", e.Kind, e.Worker, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == sentinel(e.Kind)
}

func sentinel(k Kind) error {
	switch k {
	case KindInput:
		return ErrInput
	case KindPartition:
		return ErrPartition
	case KindAllocation:
		return ErrAllocation
	case KindCommunication:
		return ErrCommunication
	}
	return nil
}

func Input(op string, err error) error {
	return &Error{Kind: KindInput, Worker: NoWorker, Op: op, Err: err}
}

func Partition(worker int, op string, err error) error {
	return &Error{Kind: KindPartition, Worker: worker, Op: op, Err: err}
}

func Allocation(worker int, op string, err error) error {
	return &Error{Kind: KindAllocation, Worker: worker, Op: op, Err: err}
}

func Communication(worker int, op string, err error) error {
	return &Error{Kind: KindCommunication, Worker: worker, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// ExitCode maps err to a process exit status. Each Kind has its own code so
// scripts can tell failures apart.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case KindInput:
		return 2
	case KindPartition:
		return 3
	case KindAllocation:
		return 4
	case KindCommunication:
		return 5
	}
	return 1
}
