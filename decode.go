package xmd

import (
	"fmt"
	"io"
	"math"
)

// Decode reads an XMD container from r.
//
// The decoding process:
//  1. Removes a gzip, zstd or LZ4 envelope if the input starts with one
//  2. Checks the "XMD" tag and reads the entry count
//  3. Reads the offsets, lengths and ids tables
//  4. Reads every payload by absolute offset
//
// Offsets need not be ordered or disjoint. If an id appears more than once
// the later table row wins.
//
// Use ReadOption functions to customize this behavior:
//   - WithReadLimits(l): set custom size limits
//   - WithStrictReserved(true): require the reserved header bytes to match Reserved
//
// Decode returns ErrFormatMismatch if the input is not an XMD container,
// ErrTruncatedData if a table or payload extends past the end of the data,
// ErrLimitExceeded if a limit is exceeded and ErrIO if the envelope cannot
// be decompressed. On error the returned Archive is nil.
func Decode(r io.Reader, opts ...ReadOption) (*Archive, error) {
	cfg := newReadConfig(opts)
	limit := int64(math.MaxInt64)
	if cfg.limits.MaxInflatedLen < math.MaxInt64 {
		limit = int64(cfg.limits.MaxInflatedLen) + 1
	}
	b, err := readAll(io.LimitReader(r, limit))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return decode(b, cfg)
}

// DecodeBytes decodes an XMD container held in memory. See Decode.
func DecodeBytes(b []byte, opts ...ReadOption) (*Archive, error) {
	return decode(b, newReadConfig(opts))
}

func decode(b []byte, cfg readConfig) (*Archive, error) {
	container, _, err := unwrap(b, cfg.limits.MaxInflatedLen)
	if err != nil {
		return nil, err
	}

	r := newReader(container)
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if cfg.strictReserved && h.Reserved != Reserved {
		return nil, fmt.Errorf("%w: reserved bytes % x", ErrUnsupportedVersion, h.Reserved[:])
	}
	if h.Count > cfg.limits.MaxEntries {
		return nil, fmt.Errorf("%w: %d entries", ErrLimitExceeded, h.Count)
	}
	t, err := readTable(r, h.Count)
	if err != nil {
		return nil, err
	}

	a := &Archive{}
	for i, id := range t.IDs {
		if t.Lengths[i] > cfg.limits.MaxEntryLen {
			return nil, fmt.Errorf("%w: entry %d is %d bytes", ErrLimitExceeded, id, t.Lengths[i])
		}
		if err := r.seek(uint64(t.Offsets[i])); err != nil {
			return nil, fmt.Errorf("entry %d: %w", id, err)
		}
		data, err := r.bytes(uint64(t.Lengths[i]))
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", id, err)
		}
		a.Set(EntryID(id), data)
	}
	return a, nil
}
