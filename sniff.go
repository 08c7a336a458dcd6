package xmd

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is a sub-format recognized inside an archive payload by its
// four-byte tag. It only drives naming on extraction and is never stored.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindModel is an "NDWD" model container.
	KindModel
	// KindTexture is an "NTWD" texture container.
	KindTexture
)

var kindTags = map[string]Kind{
	"NDWD": KindModel,
	"NTWD": KindTexture,
}

// Model container field offsets.
const (
	modelPolyStartField = 0x10
	modelPolyStartBase  = 0x30
)

// Sniff classifies a payload by its leading four bytes.
func Sniff(data []byte) Kind {
	if len(data) < 4 {
		return KindUnknown
	}
	return kindTags[string(data[:4])]
}

func (k Kind) String() string {
	switch k {
	case KindModel:
		return "model"
	case KindTexture:
		return "texture"
	default:
		return "unknown"
	}
}

// Extension returns the file extension used for k, including the dot, or
// "" for unknown payloads.
func (k Kind) Extension() string {
	switch k {
	case KindModel:
		return ".nud"
	case KindTexture:
		return ".nut"
	default:
		return ""
	}
}

// DisplayName derives a file name for the payload stored under id.
// Models are named after the name string embedded after their vertex data;
// it fails with ErrNaming if that string cannot be located.
func (k Kind) DisplayName(id EntryID, data []byte) (string, error) {
	base := strconv.FormatUint(uint64(id), 10)
	if k != KindModel {
		return base + k.Extension(), nil
	}
	name, err := modelName(data)
	if err != nil {
		return "", fmt.Errorf("%w: entry %d: %v", ErrNaming, id, err)
	}
	return name + "_" + base + k.Extension(), nil
}

// DisplayName sniffs data and derives its file name, falling back to the
// decimal id when the name cannot be derived.
func DisplayName(id EntryID, data []byte) string {
	name, err := Sniff(data).DisplayName(id, data)
	if err != nil {
		return strconv.FormatUint(uint64(id), 10)
	}
	return name
}

// modelName locates the name string of a model container: the polygon
// section starts at the relative value at 0x10 plus 0x30, and the name
// follows the polygon, vertex and vertex-extra sections whose sizes come
// right after that field.
func modelName(data []byte) (string, error) {
	r := newReader(data)
	if err := r.seek(modelPolyStartField); err != nil {
		return "", err
	}
	fields, err := r.u32s(4)
	if err != nil {
		return "", err
	}
	pos := uint64(fields[0]) + modelPolyStartBase
	for _, size := range fields[1:] {
		pos += uint64(size)
	}
	if err := r.seek(pos); err != nil {
		return "", err
	}
	raw, err := r.cstring(r.remaining())
	if err != nil {
		return "", err
	}
	return cleanName(raw), nil
}

// cleanName keeps only ASCII letters and underscores.
func cleanName(s string) string {
	return strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
			return c
		default:
			return -1
		}
	}, s)
}
