package xmd

import (
	"fmt"
	"io"
)

// Encode writes a to w as an XMD container.
//
// Entries are laid out in ascending id order, so the output depends only on
// the archive's content. The container is built in memory and written with a
// single call; nothing is written if encoding fails.
//
// By default no envelope is applied. Use WriteOption functions to change
// this:
//   - WithEnvelope(EnvelopeGzip): gzip the container, as packed .xmd files usually are
//   - WithGzipLevel(level): deflate level for the gzip envelope
//   - WithWriteLimits(l): reject archives beyond custom limits
//
// Encode returns ErrSizeOverflow if an offset or length would not fit in
// 32 bits, ErrLimitExceeded if a limit is exceeded and ErrIO if compression
// fails.
func Encode(w io.Writer, a *Archive, opts ...WriteOption) error {
	b, err := EncodeBytes(a, opts...)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

// EncodeBytes returns the encoded form of a. See Encode.
func EncodeBytes(a *Archive, opts ...WriteOption) ([]byte, error) {
	cfg := newWriteConfig(opts)
	size, err := validateArchive(a, cfg.limits)
	if err != nil {
		return nil, err
	}
	entries := a.Entries()

	w := &writer{buf: make([]byte, 0, size)}
	writeHeader(w, header{Reserved: Reserved, Count: uint32(len(entries))})

	lengths := make([]uint32, len(entries))
	ids := make([]uint32, len(entries))
	// Offsets are unknown until every preceding payload is placed.
	for i, e := range entries {
		w.reserve(e.Data)
		lengths[i] = uint32(len(e.Data))
		ids[i] = uint32(e.ID)
	}
	w.align(Alignment)
	w.u32s(lengths)
	w.align(Alignment)
	w.u32s(ids)
	w.align(Alignment)

	container, err := w.finish()
	if err != nil {
		return nil, err
	}
	return wrap(container, cfg)
}
