package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	ErrTruncated     = errors.New("batch frame truncated")
	ErrTrailingData  = errors.New("batch frame has trailing bytes")
	ErrNotAscending  = errors.New("batch values not strictly ascending")
	ErrBatchTooLarge = errors.New("batch count exceeds receive limit")
	ErrValueOverflow = errors.New("batch value overflows int")
)

// EncodePrimes packs an ascending list into one self-describing frame:
//
//	uvarint(count) uvarint(v0) uvarint(v1-v0) ... uvarint(vn-vn-1)
//
// Deltas keep dense prime lists close to one byte per value.
func EncodePrimes(values []int) []byte {
	buf := make([]byte, 0, binary.MaxVarintLen64+len(values)*2)
	buf = binary.AppendUvarint(buf, uint64(len(values)))
	prev := 0
	for _, v := range values {
		buf = binary.AppendUvarint(buf, uint64(v-prev))
		prev = v
	}
	return buf
}

// DecodePrimes unpacks a frame written by EncodePrimes. limit caps the
// declared count before any buffer is allocated; limit <= 0 means no cap.
func DecodePrimes(frame []byte, limit int) ([]int, error) {
	count, n := binary.Uvarint(frame)
	if n <= 0 {
		return nil, fmt.Errorf("%w: missing count", ErrTruncated)
	}
	rest := frame[n:]

	if limit > 0 && count > uint64(limit) {
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, count, limit)
	}
	// Every value takes at least one byte.
	if count > uint64(len(rest)) {
		return nil, fmt.Errorf("%w: count %d, %d bytes left", ErrTruncated, count, len(rest))
	}

	values := make([]int, 0, count)
	prev := 0
	for i := uint64(0); i < count; i++ {
		delta, n := binary.Uvarint(rest)
		if n <= 0 {
			return nil, fmt.Errorf("%w: value %d of %d", ErrTruncated, i, count)
		}
		rest = rest[n:]
		if delta == 0 && i > 0 {
			return nil, fmt.Errorf("%w: repeated %d", ErrNotAscending, prev)
		}
		if delta > uint64(math.MaxInt-prev) {
			return nil, fmt.Errorf("%w: %d + %d", ErrValueOverflow, prev, delta)
		}
		prev += int(delta)
		values = append(values, prev)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingData, len(rest))
	}
	return values, nil
}
