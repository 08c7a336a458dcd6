package xmd

import "github.com/klauspost/compress/gzip"

type readConfig struct {
	limits         Limits
	strictReserved bool
}

type ReadOption func(*readConfig)

func WithReadLimits(l Limits) ReadOption {
	return func(c *readConfig) { c.limits = l }
}

// WithStrictReserved makes Decode reject containers whose reserved header
// bytes differ from Reserved.
func WithStrictReserved(v bool) ReadOption {
	return func(c *readConfig) { c.strictReserved = v }
}

type writeConfig struct {
	limits    Limits
	envelope  Envelope
	gzipLevel int
}

type WriteOption func(*writeConfig)

func WithWriteLimits(l Limits) WriteOption {
	return func(c *writeConfig) { c.limits = l }
}

// WithEnvelope selects the compression wrapped around the container.
// The default is EnvelopeNone.
func WithEnvelope(e Envelope) WriteOption {
	return func(c *writeConfig) { c.envelope = e }
}

// WithGzipLevel sets the deflate level used by EnvelopeGzip.
func WithGzipLevel(level int) WriteOption {
	return func(c *writeConfig) { c.gzipLevel = level }
}

func newReadConfig(opts []ReadOption) readConfig {
	cfg := readConfig{limits: defaultLimits()}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()
	return cfg
}

func newWriteConfig(opts []WriteOption) writeConfig {
	cfg := writeConfig{
		limits:    defaultLimits(),
		envelope:  EnvelopeNone,
		gzipLevel: gzip.DefaultCompression,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()
	return cfg
}
