// Package xmd implements the XMD indexed archive format.
//
// XMD bundles numbered game assets (3-D models, textures) into a single
// file. An archive is an ordered mapping from 32-bit entry ids to opaque
// payloads; ids are always serialized in ascending order.
//
// # File Format Overview
//
// All integers are 32-bit little-endian. Tables and payloads are
// zero-padded to 16-byte boundaries.
//
//   - The tag "XMD" followed by a NUL byte
//   - 8 reserved bytes (see [Reserved])
//   - The entry count N
//   - N payload offsets, padded
//   - N payload lengths, padded
//   - N entry ids, padded
//   - N payload blocks, each padded
//
// Row i of the three tables describes the same entry. A whole container may
// be wrapped in a gzip stream, which is detected by its magic bytes. Zstd and
// LZ4 frames are recognized the same way.
//
// # Basic Usage
//
// To pack a directory of numbered files:
//
//	a, err := xmd.ReadDir("assets")
//	if err != nil { ... }
//	err = xmd.WriteFile("assets.xmd", a,
//		xmd.WithEncodeOptions(xmd.WithEnvelope(xmd.EnvelopeGzip)))
//
// To unpack an archive into named loose files:
//
//	a, err := xmd.ReadFile("assets.xmd")
//	if err != nil { ... }
//	err = xmd.Extract(a, "assets_xmd")
//
// # Naming
//
// On extraction each payload is named by sniffing its first four bytes:
// "NDWD" model containers are named after the model name embedded in them
// ("<name>_<id>.nud"), "NTWD" texture containers become "<id>.nut", and
// anything else is named by its decimal id. Naming never affects the
// archive itself.
package xmd
