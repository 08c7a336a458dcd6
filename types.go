package xmd

import (
	"bytes"
	"encoding/binary"

	"github.com/huandu/skiplist"
)

// Magic is the null-terminated tag every XMD container starts with.
const Magic = "XMD"

// Alignment is the boundary every table and payload block is padded to.
const Alignment = 16

const (
	headerSize   = 16 // magic + NUL, reserved, entry count
	reservedSize = 8
)

// Reserved holds the eight bytes that follow the magic tag. They are
// written verbatim on encode and only checked on decode when
// WithStrictReserved is set.
var Reserved = [reservedSize]byte{'0', '0', '1', 0, 3, 0, 0, 0}

// FormatVersion returns the version word carried in the last four
// reserved bytes.
func FormatVersion() uint32 {
	return binary.LittleEndian.Uint32(Reserved[4:])
}

// EntryID identifies one asset within an archive.
type EntryID uint32

// Entry is one (id, payload) pair.
type Entry struct {
	ID   EntryID
	Data []byte
}

// Archive is an ordered mapping from EntryID to payload. Iteration is
// always in ascending id order, which is also the serialization order.
//
// The zero value is an empty archive ready to use. An Archive is not safe
// for concurrent mutation.
type Archive struct {
	list *skiplist.SkipList
}

// NewArchive returns an archive holding the given entries. Later entries
// replace earlier ones with the same id.
func NewArchive(entries ...Entry) *Archive {
	a := &Archive{}
	for _, e := range entries {
		a.Set(e.ID, e.Data)
	}
	return a
}

func (a *Archive) init() {
	if a.list == nil {
		a.list = skiplist.New(skiplist.Uint32)
	}
}

// Set stores data under id, replacing any previous payload. A nil payload
// is stored as an empty one.
func (a *Archive) Set(id EntryID, data []byte) {
	a.init()
	if data == nil {
		data = []byte{}
	}
	a.list.Set(uint32(id), data)
}

// Get returns the payload stored under id.
func (a *Archive) Get(id EntryID) ([]byte, bool) {
	if a == nil || a.list == nil {
		return nil, false
	}
	elem := a.list.Get(uint32(id))
	if elem == nil {
		return nil, false
	}
	return elem.Value.([]byte), true
}

// Delete removes id from the archive and reports whether it was present.
func (a *Archive) Delete(id EntryID) bool {
	if a == nil || a.list == nil {
		return false
	}
	return a.list.Remove(uint32(id)) != nil
}

// Len returns the number of entries.
func (a *Archive) Len() int {
	if a == nil || a.list == nil {
		return 0
	}
	return a.list.Len()
}

// Range calls fn for each entry in ascending id order until fn returns false.
func (a *Archive) Range(fn func(id EntryID, data []byte) bool) {
	if a == nil || a.list == nil {
		return
	}
	for elem := a.list.Front(); elem != nil; elem = elem.Next() {
		if !fn(EntryID(elem.Key().(uint32)), elem.Value.([]byte)) {
			return
		}
	}
}

// Entries returns a snapshot of the archive in ascending id order. The
// payload slices are shared with the archive.
func (a *Archive) Entries() []Entry {
	out := make([]Entry, 0, a.Len())
	a.Range(func(id EntryID, data []byte) bool {
		out = append(out, Entry{ID: id, Data: data})
		return true
	})
	return out
}

// IDs returns the entry ids in ascending order.
func (a *Archive) IDs() []EntryID {
	out := make([]EntryID, 0, a.Len())
	a.Range(func(id EntryID, _ []byte) bool {
		out = append(out, id)
		return true
	})
	return out
}

// Equal reports whether a and b hold the same ids with byte-identical
// payloads. Nil and empty archives are equal.
func (a *Archive) Equal(b *Archive) bool {
	if a.Len() != b.Len() {
		return false
	}
	ea, eb := a.Entries(), b.Entries()
	for i := range ea {
		if ea[i].ID != eb[i].ID || !bytes.Equal(ea[i].Data, eb[i].Data) {
			return false
		}
	}
	return true
}
