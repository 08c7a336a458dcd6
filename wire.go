package xmd

import "fmt"

type header struct {
	Reserved [reservedSize]byte
	Count    uint32
}

// table is the three parallel per-entry arrays that follow the header.
// Row i of each array describes the same entry.
type table struct {
	Offsets []uint32
	Lengths []uint32
	IDs     []uint32
}

// readHeader reads the magic tag, reserved bytes and entry count. Any
// failure to find a terminated "XMD" tag is a format mismatch.
func readHeader(r *reader) (header, error) {
	tag, err := r.cstring(len(Magic))
	if err != nil || tag != Magic {
		return header{}, ErrFormatMismatch
	}
	var h header
	reserved, err := r.bytes(reservedSize)
	if err != nil {
		return header{}, err
	}
	copy(h.Reserved[:], reserved)
	if h.Count, err = r.u32(); err != nil {
		return header{}, err
	}
	return h, nil
}

func writeHeader(w *writer, h header) {
	w.cstring(Magic)
	w.raw(h.Reserved[:])
	w.u32(h.Count)
}

// readTable reads the offsets, lengths and ids arrays.
func readTable(r *reader, n uint32) (table, error) {
	// Three arrays of n words must fit in what is left of the buffer.
	if uint64(n)*12 > uint64(r.remaining()) {
		return table{}, fmt.Errorf("%w: %d entries do not fit in %d bytes", ErrTruncatedData, n, r.remaining())
	}
	var t table
	var err error
	if t.Offsets, err = readAligned(r, n); err != nil {
		return table{}, err
	}
	if t.Lengths, err = readAligned(r, n); err != nil {
		return table{}, err
	}
	// Payloads are located by absolute offset, so the padding after the
	// ids array is never consumed.
	if t.IDs, err = r.u32s(n); err != nil {
		return table{}, err
	}
	return t, nil
}

func readAligned(r *reader, n uint32) ([]uint32, error) {
	vs, err := r.u32s(n)
	if err != nil {
		return nil, err
	}
	if err := r.align(Alignment); err != nil {
		return nil, err
	}
	return vs, nil
}
