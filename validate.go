package xmd

import (
	"fmt"
	"math"
)

// validateArchive checks a against limits and the 32-bit addressing of the
// container, returning the size of the encoded container.
func validateArchive(a *Archive, limits Limits) (uint64, error) {
	n := a.Len()
	if uint64(n) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d entries", ErrSizeOverflow, n)
	}
	if uint32(n) > limits.MaxEntries {
		return 0, fmt.Errorf("%w: %d entries", ErrLimitExceeded, n)
	}
	pos := uint64(headerSize) + 3*uint64(alignUp(4*n, Alignment))
	var err error
	a.Range(func(id EntryID, data []byte) bool {
		size := uint64(len(data))
		switch {
		case size > math.MaxUint32:
			err = fmt.Errorf("%w: entry %d is %d bytes", ErrSizeOverflow, id, size)
		case size > uint64(limits.MaxEntryLen):
			err = fmt.Errorf("%w: entry %d is %d bytes", ErrLimitExceeded, id, size)
		case pos > math.MaxUint32:
			err = fmt.Errorf("%w: entry %d would start at offset %d", ErrSizeOverflow, id, pos)
		}
		if err != nil {
			return false
		}
		pos += uint64(alignUp(len(data), Alignment))
		return true
	})
	if err != nil {
		return 0, err
	}
	return pos, nil
}
