package xmd

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Envelope is the compression wrapped around a whole container.
type Envelope uint8

const (
	EnvelopeNone Envelope = iota
	EnvelopeGzip
	EnvelopeZstd
	EnvelopeLZ4
)

var (
	gzipMagic = []byte{0x1F, 0x8B, 0x08}
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

// Function variables for testing injection.
var (
	newGzipWriter = func(w io.Writer, level int) (*gzip.Writer, error) { return gzip.NewWriterLevel(w, level) }
	newZstdWriter = func(w io.Writer) (*zstd.Encoder, error) { return zstd.NewWriter(w) }
	newZstdReader = func(r io.Reader) (*zstd.Decoder, error) { return zstd.NewReader(r) }
	lz4Close      = func(w *lz4.Writer) error { return w.Close() }
	readAll       = io.ReadAll
)

func (e Envelope) String() string {
	switch e {
	case EnvelopeNone:
		return "none"
	case EnvelopeGzip:
		return "gzip"
	case EnvelopeZstd:
		return "zstd"
	case EnvelopeLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(e))
	}
}

// ParseEnvelope maps a name as printed by String back to an Envelope.
func ParseEnvelope(name string) (Envelope, error) {
	for _, e := range []Envelope{EnvelopeNone, EnvelopeGzip, EnvelopeZstd, EnvelopeLZ4} {
		if e.String() == name {
			return e, nil
		}
	}
	return 0, fmt.Errorf("xmd: unknown envelope %q", name)
}

// DetectEnvelope reports which envelope, if any, b starts with.
func DetectEnvelope(b []byte) Envelope {
	switch {
	case bytes.HasPrefix(b, gzipMagic):
		return EnvelopeGzip
	case bytes.HasPrefix(b, zstdMagic):
		return EnvelopeZstd
	case bytes.HasPrefix(b, lz4Magic):
		return EnvelopeLZ4
	default:
		return EnvelopeNone
	}
}

// unwrap removes the envelope detected at the start of b, once. The
// inflated container may not exceed maxLen bytes.
func unwrap(b []byte, maxLen uint64) ([]byte, Envelope, error) {
	env := DetectEnvelope(b)
	var rc io.ReadCloser
	switch env {
	case EnvelopeNone:
		if uint64(len(b)) > maxLen {
			return nil, env, fmt.Errorf("%w: container is %d bytes", ErrLimitExceeded, len(b))
		}
		return b, env, nil
	case EnvelopeGzip:
		zr, err := gzip.NewReader(bytes.NewReader(b))
		if err != nil {
			return nil, env, fmt.Errorf("%w: gzip: %v", ErrIO, err)
		}
		rc = zr
	case EnvelopeZstd:
		zr, err := newZstdReader(bytes.NewReader(b))
		if err != nil {
			return nil, env, fmt.Errorf("%w: zstd: %v", ErrIO, err)
		}
		rc = zr.IOReadCloser()
	case EnvelopeLZ4:
		rc = io.NopCloser(lz4.NewReader(bytes.NewReader(b)))
	}
	defer rc.Close()

	limit := int64(math.MaxInt64)
	if maxLen < math.MaxInt64 {
		limit = int64(maxLen) + 1
	}
	out, err := readAll(io.LimitReader(rc, limit))
	if err != nil {
		return nil, env, fmt.Errorf("%w: %s: %v", ErrIO, env, err)
	}
	if uint64(len(out)) > maxLen {
		return nil, env, fmt.Errorf("%w: %s expanded beyond %d bytes", ErrLimitExceeded, env, maxLen)
	}
	return out, env, nil
}

// wrap compresses a finished container with the configured envelope.
func wrap(container []byte, cfg writeConfig) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch cfg.envelope {
	case EnvelopeNone:
		return container, nil
	case EnvelopeGzip:
		err = gzipCompressTo(&buf, container, cfg.gzipLevel)
	case EnvelopeZstd:
		err = zstdCompressTo(&buf, container)
	case EnvelopeLZ4:
		err = lz4CompressTo(&buf, container)
	default:
		return nil, fmt.Errorf("xmd: unknown envelope %d", cfg.envelope)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrIO, cfg.envelope, err)
	}
	return buf.Bytes(), nil
}

func gzipCompressTo(w io.Writer, in []byte, level int) error {
	zw, err := newGzipWriter(w, level)
	if err != nil {
		return err
	}
	if _, err := zw.Write(in); err != nil {
		_ = zw.Close()
		return err
	}
	return zw.Close()
}

func zstdCompressTo(w io.Writer, in []byte) error {
	enc, err := newZstdWriter(w)
	if err != nil {
		return err
	}
	if _, err := enc.Write(in); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func lz4CompressTo(w io.Writer, in []byte) error {
	zw := lz4.NewWriter(w)
	if _, err := zw.Write(in); err != nil {
		_ = lz4Close(zw)
		return err
	}
	return lz4Close(zw)
}
