package xmd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// reader is a positioned little-endian cursor over an in-memory buffer.
type reader struct {
	buf []byte
	pos int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

func (r *reader) need(n uint64) error {
	if n > uint64(r.remaining()) {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncatedData, n, r.pos, r.remaining())
	}
	return nil
}

func (r *reader) seek(off uint64) error {
	if off > uint64(len(r.buf)) {
		return fmt.Errorf("%w: seek to %d beyond end %d", ErrTruncatedData, off, len(r.buf))
	}
	r.pos = int(off)
	return nil
}

func (r *reader) u32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// u32s reads n consecutive integers. Bounds are checked before allocating.
func (r *reader) u32s(n uint32) ([]uint32, error) {
	if err := r.need(uint64(n) * 4); err != nil {
		return nil, err
	}
	out := make([]uint32, n)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(r.buf[r.pos:])
		r.pos += 4
	}
	return out, nil
}

// bytes returns a copy of the next n bytes.
func (r *reader) bytes(n uint64) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:])
	r.pos += int(n)
	return out, nil
}

// cstring reads a null-terminated string of at most limit bytes, consuming
// the terminator.
func (r *reader) cstring(limit int) (string, error) {
	window := r.buf[r.pos:]
	if len(window) > limit+1 {
		window = window[:limit+1]
	}
	i := bytes.IndexByte(window, 0)
	if i < 0 {
		return "", fmt.Errorf("%w: unterminated string at offset %d", ErrTruncatedData, r.pos)
	}
	s := string(window[:i])
	r.pos += i + 1
	return s, nil
}

// align skips forward to the next multiple of n.
func (r *reader) align(n int) error {
	return r.seek(uint64(alignUp(r.pos, n)))
}

// writer is an append-only little-endian cursor with deferred offset slots.
type writer struct {
	buf     []byte
	pending []deferred
}

// deferred is a 32-bit slot whose value is the final offset of block.
type deferred struct {
	slot  int
	block []byte
}

type fixup struct {
	slot  int
	value uint64
}

func (w *writer) u32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *writer) u32s(vs []uint32) {
	for _, v := range vs {
		w.u32(v)
	}
}

func (w *writer) raw(p []byte) {
	w.buf = append(w.buf, p...)
}

func (w *writer) cstring(s string) {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

// align zero-pads to the next multiple of n.
func (w *writer) align(n int) {
	for pad := alignUp(len(w.buf), n) - len(w.buf); pad > 0; pad-- {
		w.buf = append(w.buf, 0)
	}
}

// reserve writes a zeroed offset slot and schedules block to be laid out
// by finish.
func (w *writer) reserve(block []byte) {
	w.pending = append(w.pending, deferred{slot: len(w.buf), block: block})
	w.u32(0)
}

// finish appends every scheduled block in order, each padded to Alignment,
// then patches the reserved slots with the blocks' absolute offsets.
func (w *writer) finish() ([]byte, error) {
	fixups := make([]fixup, 0, len(w.pending))
	for _, d := range w.pending {
		fixups = append(fixups, fixup{slot: d.slot, value: uint64(len(w.buf))})
		w.raw(d.block)
		w.align(Alignment)
	}
	w.pending = nil
	if err := resolve(w.buf, fixups); err != nil {
		return nil, err
	}
	return w.buf, nil
}

// resolve writes each fixup's value into its 32-bit slot.
func resolve(buf []byte, fixups []fixup) error {
	for _, f := range fixups {
		if f.value > math.MaxUint32 {
			return fmt.Errorf("%w: offset %d", ErrSizeOverflow, f.value)
		}
		binary.LittleEndian.PutUint32(buf[f.slot:], uint32(f.value))
	}
	return nil
}

func alignUp(pos, n int) int {
	if rem := pos % n; rem != 0 {
		return pos + n - rem
	}
	return pos
}
