package xmd

import (
	"reflect"
	"testing"
)

func TestArchiveOrdering(t *testing.T) {
	var a Archive
	for _, id := range []EntryID{50, 3, 4294967295, 0, 17} {
		a.Set(id, []byte{byte(id)})
	}
	want := []EntryID{0, 3, 17, 50, 4294967295}
	if got := a.IDs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v got %v", want, got)
	}

	a.Set(3, []byte("replaced"))
	if got, ok := a.Get(3); !ok || string(got) != "replaced" {
		t.Fatalf("Get(3) = %q, %v", got, ok)
	}
	if a.Len() != 5 {
		t.Fatalf("expected 5 entries, got %d", a.Len())
	}
	if !a.Delete(50) || a.Delete(50) {
		t.Fatal("unexpected Delete result")
	}
	if _, ok := a.Get(50); ok {
		t.Fatal("deleted entry still present")
	}
}

func TestArchiveRangeStops(t *testing.T) {
	a := NewArchive(Entry{ID: 1}, Entry{ID: 2}, Entry{ID: 3})
	var seen []EntryID
	a.Range(func(id EntryID, _ []byte) bool {
		seen = append(seen, id)
		return id < 2
	})
	if !reflect.DeepEqual(seen, []EntryID{1, 2}) {
		t.Fatalf("got %v", seen)
	}
}

func TestArchiveNilAndEmpty(t *testing.T) {
	var nilArchive *Archive
	if nilArchive.Len() != 0 || len(nilArchive.Entries()) != 0 {
		t.Fatal("nil archive not empty")
	}
	if _, ok := nilArchive.Get(1); ok {
		t.Fatal("nil archive has entries")
	}
	if !nilArchive.Equal(&Archive{}) {
		t.Fatal("nil and empty archives differ")
	}

	a := NewArchive(Entry{ID: 9})
	got, ok := a.Get(9)
	if !ok || got == nil || len(got) != 0 {
		t.Fatal("nil payload not stored as empty")
	}
}

func TestArchiveEqual(t *testing.T) {
	a := NewArchive(Entry{ID: 1, Data: []byte("a")}, Entry{ID: 2, Data: []byte("b")})
	b := NewArchive(Entry{ID: 2, Data: []byte("b")}, Entry{ID: 1, Data: []byte("a")})
	if !a.Equal(b) {
		t.Fatal("expected equal")
	}
	b.Set(2, []byte("c"))
	if a.Equal(b) {
		t.Fatal("expected payload difference")
	}
	b.Set(2, []byte("b"))
	b.Delete(1)
	b.Set(3, []byte("a"))
	if a.Equal(b) {
		t.Fatal("expected id difference")
	}
}

func TestFormatVersion(t *testing.T) {
	if got := FormatVersion(); got != 3 {
		t.Fatalf("want 3 got %d", got)
	}
}
