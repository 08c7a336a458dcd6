package xmd

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func TestParseEntryID(t *testing.T) {
	cases := []struct {
		in   string
		want EntryID
		ok   bool
	}{
		{"a12.bin", 12, true},
		{"007", 7, true},
		{"readme.txt", 0, false},
		{"Foo_Bar_5.nud", 5, true},
		{"7.nut", 7, true},
		{"1.2.3", 12, true},
		{"4294967295", 4294967295, true},
		{"4294967296", 0, false},
		{".hidden", 0, false},
		{"12", 12, true},
	}
	for _, tc := range cases {
		got, ok := ParseEntryID(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("%q: want (%d, %v) got (%d, %v)", tc.in, tc.want, tc.ok, got, ok)
		}
	}
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestReadDir(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a12.bin":    "twelve",
		"007":        "seven",
		"readme.txt": "ignored",
	})
	if err := os.Mkdir(filepath.Join(dir, "99"), 0o755); err != nil {
		t.Fatal(err)
	}

	a, err := ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := NewArchive(
		Entry{ID: 7, Data: []byte("seven")},
		Entry{ID: 12, Data: []byte("twelve")},
	)
	if !a.Equal(want) {
		t.Fatalf("got %v", a.Entries())
	}
}

func TestReadDir_FollowsSymlinks(t *testing.T) {
	dir, other := t.TempDir(), t.TempDir()
	writeFiles(t, other, map[string]string{"payload": "linked"})
	links := map[string]string{
		"5.bin": filepath.Join(other, "payload"),
		"8":     other,
		"9":     filepath.Join(other, "missing"),
	}
	for name, target := range links {
		if err := os.Symlink(target, filepath.Join(dir, name)); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}
	}

	a, err := ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := NewArchive(Entry{ID: 5, Data: []byte("linked")})
	if !a.Equal(want) {
		t.Fatalf("got %v", a.Entries())
	}
}

func TestReadDir_DuplicateIDsLogged(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"12.bin":  "first",
		"a12.bin": "second",
	})
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	a, err := ReadDir(dir, WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	got, _ := a.Get(12)
	if string(got) != "second" {
		t.Fatalf("expected later file to win, got %q", got)
	}
	if !strings.Contains(logs.String(), "duplicate entry id") {
		t.Fatalf("expected duplicate warning, got %q", logs.String())
	}
}

func TestReadDir_Missing(t *testing.T) {
	if _, err := ReadDir(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
}

func TestExtract(t *testing.T) {
	a := NewArchive(
		Entry{ID: 5, Data: modelPayload(0, 4, 8, 4, "Foo_Bar1\x00")},
		Entry{ID: 7, Data: []byte("NTWDtexture")},
		Entry{ID: 3, Data: []byte("ZZZZ")},
		Entry{ID: 8, Data: []byte("NDWD")},
	)
	dir := filepath.Join(t.TempDir(), "out")
	if err := Extract(a, dir, WithFileMode(0o600)); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	want := []string{"3", "7.nut", "8", "Foo_Bar_5.nud"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("want %v got %v", want, names)
	}
	info, err := os.Stat(filepath.Join(dir, "7.nut"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("unexpected mode %v", info.Mode())
	}

	// Extracted names map back to the same ids.
	back, err := ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(a) {
		t.Fatalf("round trip mismatch: %v", back.IDs())
	}
}

func TestExtract_ExistingDirUntouched(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"keep": "me"})
	if err := Extract(sampleArchive(), dir); !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "keep"))
	if err != nil || string(b) != "me" {
		t.Fatalf("existing directory modified: %q %v", b, err)
	}
}

func TestExtract_WriteFailureRemovesDir(t *testing.T) {
	orig := writeFile
	calls := 0
	writeFile = func(name string, data []byte, perm fs.FileMode) error {
		calls++
		if calls == 2 {
			return fs.ErrPermission
		}
		return orig(name, data, perm)
	}
	defer func() { writeFile = orig }()

	dir := filepath.Join(t.TempDir(), "out")
	if err := Extract(sampleArchive(), dir); !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	if _, err := os.Stat(dir); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected partial output removed, got %v", err)
	}
}

func TestWriteFileReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.xmd")
	a := sampleArchive()
	if err := WriteFile(path, a, WithEncodeOptions(WithEnvelope(EnvelopeGzip))); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if DetectEnvelope(raw) != EnvelopeGzip {
		t.Fatal("expected gzip envelope")
	}
	got, err := ReadFile(path, WithDecodeOptions(WithStrictReserved(true)))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(a) {
		t.Fatal("archive mismatch")
	}
}

func TestWriteFile_FailureKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "assets.xmd")
	writeFiles(t, dir, map[string]string{"assets.xmd": "old"})

	orig := rename
	rename = func(string, string) error { return fs.ErrPermission }
	err := WriteFile(path, sampleArchive())
	rename = orig
	if !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil || string(b) != "old" {
		t.Fatalf("existing file modified: %q %v", b, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("temporary file left behind: %d entries", len(entries))
	}

	// Encoding errors never touch the file system.
	if err := WriteFile(path, sampleArchive(), WithEncodeOptions(WithWriteLimits(Limits{MaxEntries: 1}))); !errors.Is(err, ErrLimitExceeded) {
		t.Fatalf("expected ErrLimitExceeded, got %v", err)
	}
}

func TestReadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadFile(filepath.Join(dir, "missing.xmd")); !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
	writeFiles(t, dir, map[string]string{"bad.xmd": "not an archive"})
	if _, err := ReadFile(filepath.Join(dir, "bad.xmd")); !errors.Is(err, ErrFormatMismatch) {
		t.Fatalf("expected ErrFormatMismatch, got %v", err)
	}
}
