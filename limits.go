package xmd

import "math"

// Limits bounds what Decode will allocate and what Encode will accept.
// Zero fields take the defaults.
type Limits struct {
	MaxEntries     uint32
	MaxEntryLen    uint32 // single payload length
	MaxInflatedLen uint64 // container size after removing the envelope
}

func defaultLimits() Limits {
	return Limits{
		MaxEntries:     math.MaxUint32,
		MaxEntryLen:    1<<32 - 1,
		MaxInflatedLen: 4 << 30, // 32-bit offsets cannot address more
	}
}

// DefaultLimits returns the limits used when none are given.
func DefaultLimits() Limits {
	return defaultLimits()
}

func (l Limits) withDefaults() Limits {
	d := defaultLimits()
	if l.MaxEntries == 0 {
		l.MaxEntries = d.MaxEntries
	}
	if l.MaxEntryLen == 0 {
		l.MaxEntryLen = d.MaxEntryLen
	}
	if l.MaxInflatedLen == 0 {
		l.MaxInflatedLen = d.MaxInflatedLen
	}
	return l
}
