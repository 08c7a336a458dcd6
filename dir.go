package xmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type dirConfig struct {
	logger   *slog.Logger
	fileMode fs.FileMode
	read     []ReadOption
	write    []WriteOption
}

type DirOption func(*dirConfig)

// WithLogger sets the logger used by the directory and file helpers.
func WithLogger(l *slog.Logger) DirOption {
	return func(c *dirConfig) { c.logger = l }
}

// WithFileMode sets the permission bits of files created by Extract and
// WriteFile.
func WithFileMode(m fs.FileMode) DirOption {
	return func(c *dirConfig) { c.fileMode = m }
}

// WithDecodeOptions passes options through to Decode in ReadFile.
func WithDecodeOptions(opts ...ReadOption) DirOption {
	return func(c *dirConfig) { c.read = append(c.read, opts...) }
}

// WithEncodeOptions passes options through to Encode in WriteFile.
func WithEncodeOptions(opts ...WriteOption) DirOption {
	return func(c *dirConfig) { c.write = append(c.write, opts...) }
}

func newDirConfig(opts []DirOption) dirConfig {
	cfg := dirConfig{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		fileMode: 0o644,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Function variables for testing injection.
var (
	writeFile = os.WriteFile
	rename    = os.Rename
)

// ParseEntryID derives an entry id from a loose file name: the last
// extension is dropped and every non-digit removed from what remains.
// It reports false if no digits remain or the number does not fit in 32
// bits.
func ParseEntryID(name string) (EntryID, bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	digits := strings.Map(func(c rune) rune {
		if c >= '0' && c <= '9' {
			return c
		}
		return -1
	}, stem)
	if digits == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return 0, false
	}
	return EntryID(v), true
}

// ReadDir builds an archive from the regular files directly inside dir.
// Files are visited in name order; when two files map to the same id the
// later one wins. Files without digits in their stem are skipped.
func ReadDir(dir string, opts ...DirOption) (*Archive, error) {
	cfg := newDirConfig(opts)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	a := &Archive{}
	for _, de := range entries {
		if !isRegular(dir, de) {
			continue
		}
		id, ok := ParseEntryID(de.Name())
		if !ok {
			cfg.logger.Debug("skipping file without entry id", "file", de.Name())
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, de.Name()))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIO, err)
		}
		if _, dup := a.Get(id); dup {
			cfg.logger.Warn("duplicate entry id, replacing earlier file", "id", id, "file", de.Name())
		}
		a.Set(id, data)
	}
	cfg.logger.Debug("read directory", "dir", dir, "entries", a.Len())
	return a, nil
}

// Extract creates dir and writes every entry of a into it under its
// sniffed display name. dir must not already exist. If any write fails the
// directory is removed again.
func Extract(a *Archive, dir string, opts ...DirOption) (err error) {
	cfg := newDirConfig(opts)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(dir)
		}
	}()

	a.Range(func(id EntryID, data []byte) bool {
		kind := Sniff(data)
		name, nerr := kind.DisplayName(id, data)
		if nerr != nil {
			cfg.logger.Warn("falling back to numeric name", "id", id, "error", nerr)
			name = strconv.FormatUint(uint64(id), 10)
		}
		if werr := writeFile(filepath.Join(dir, name), data, cfg.fileMode); werr != nil {
			err = fmt.Errorf("%w: %v", ErrIO, werr)
			return false
		}
		cfg.logger.Debug("extracted entry", "id", id, "kind", kind, "name", name, "bytes", len(data))
		return true
	})
	return err
}

// ReadFile decodes the archive stored at path.
func ReadFile(path string, opts ...DirOption) (*Archive, error) {
	cfg := newDirConfig(opts)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	a, err := DecodeBytes(b, cfg.read...)
	if err != nil {
		return nil, err
	}
	cfg.logger.Debug("decoded archive", "path", path, "envelope", DetectEnvelope(b), "entries", a.Len())
	return a, nil
}

// WriteFile encodes a and stores it at path. The container is written to
// a temporary file next to path and renamed into place, so an existing
// file is left untouched on failure.
func WriteFile(path string, a *Archive, opts ...DirOption) error {
	cfg := newDirConfig(opts)
	b, err := EncodeBytes(a, cfg.write...)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	tmpName := tmp.Name()
	_, werr := tmp.Write(b)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr, os.Chmod(tmpName, cfg.fileMode)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	cfg.logger.Debug("wrote archive", "path", path, "entries", a.Len(), "bytes", len(b))
	return nil
}

// isRegular reports whether de is a regular file, following symlinks.
// Broken links are skipped.
func isRegular(dir string, de fs.DirEntry) bool {
	if de.Type()&fs.ModeSymlink == 0 {
		return de.Type().IsRegular()
	}
	info, err := os.Stat(filepath.Join(dir, de.Name()))
	return err == nil && info.Mode().IsRegular()
}
