// Package main provides C-compatible exports for the xmd library.
// Build with: go build -buildmode=c-shared -o xmd.dll
package main

/*
#include <stdlib.h>
#include <stdint.h>

// Result structure for operations that return data
typedef struct {
    char* data;
    int   data_len;
    char* error;
} XmdResult;

// Entry for creating archives
typedef struct {
    uint32_t id;
    char*    data;
    int      data_len;
} CXmdEntry;
*/
import "C"

import (
	"encoding/json"
	"fmt"
	"unsafe"

	"github.com/logicossoftware/go-xmd"
)

func main() {}

// XmdVersion returns the XMD format version written by this library.
//
//export XmdVersion
func XmdVersion() C.uint32_t { return C.uint32_t(xmd.FormatVersion()) }

// XmdAlignment returns the block alignment of the XMD container format.
//
//export XmdAlignment
func XmdAlignment() C.int {
	return C.int(xmd.Alignment)
}

// XmdFreeResult frees memory allocated by other Xmd functions.
// Must be called to avoid memory leaks.
//
//export XmdFreeResult
func XmdFreeResult(result C.XmdResult) {
	if result.data != nil {
		C.free(unsafe.Pointer(result.data))
	}
	if result.error != nil {
		C.free(unsafe.Pointer(result.error))
	}
}

// XmdFreeString frees a C string allocated by Go.
//
//export XmdFreeString
func XmdFreeString(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

// makeResult creates a result with data.
func makeResult(data []byte) C.XmdResult {
	var result C.XmdResult
	if len(data) > 0 {
		result.data = (*C.char)(C.CBytes(data))
		result.data_len = C.int(len(data))
	}
	return result
}

// makeError creates a result with an error message.
func makeError(err error) C.XmdResult {
	var result C.XmdResult
	result.error = C.CString(err.Error())
	return result
}

func decode(data *C.char, dataLen C.int) (*xmd.Archive, error) {
	return xmd.DecodeBytes(C.GoBytes(unsafe.Pointer(data), dataLen))
}

// XmdEncode encodes entries into an XMD archive.
// Parameters:
//   - entries: array of CXmdEntry structs
//   - count: number of entries
//   - envelope: compression envelope (0=None, 1=gzip, 2=zstd, 3=LZ4)
//
// Entries may be given in any order; duplicate ids keep the last entry.
// Returns XmdResult with encoded data or error. Call XmdFreeResult when done.
//
//export XmdEncode
func XmdEncode(entries *C.CXmdEntry, count C.int, envelope C.uint8_t) C.XmdResult {
	a := xmd.NewArchive()
	if count > 0 && entries != nil {
		for _, e := range unsafe.Slice(entries, int(count)) {
			a.Set(xmd.EntryID(e.id), C.GoBytes(unsafe.Pointer(e.data), e.data_len))
		}
	}

	b, err := xmd.EncodeBytes(a, xmd.WithEnvelope(xmd.Envelope(envelope)))
	if err != nil {
		return makeError(err)
	}
	return makeResult(b)
}

// XmdDecode decodes an XMD archive and returns a JSON listing of its entries.
// Parameters:
//   - data: pointer to XMD file bytes
//   - dataLen: length of the data
//
// Returns XmdResult with JSON string or error. Call XmdFreeResult when done.
// The JSON structure contains: envelope and entries (id, name, kind, length),
// in ascending id order.
//
//export XmdDecode
func XmdDecode(data *C.char, dataLen C.int) C.XmdResult {
	goData := C.GoBytes(unsafe.Pointer(data), dataLen)
	a, err := xmd.DecodeBytes(goData)
	if err != nil {
		return makeError(err)
	}

	entries := make([]map[string]any, 0, a.Len())
	a.Range(func(id xmd.EntryID, payload []byte) bool {
		entries = append(entries, map[string]any{
			"id":     id,
			"name":   xmd.DisplayName(id, payload),
			"kind":   xmd.Sniff(payload).String(),
			"length": len(payload),
		})
		return true
	})
	result := map[string]any{
		"envelope": xmd.DetectEnvelope(goData).String(),
		"entries":  entries,
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return makeError(err)
	}
	return makeResult(jsonBytes)
}

// XmdGetEntryData retrieves the raw payload of one entry.
// Parameters:
//   - data: pointer to XMD file bytes
//   - dataLen: length of the data
//   - id: the entry id to retrieve
//
// Returns XmdResult with payload data or error. Call XmdFreeResult when done.
//
//export XmdGetEntryData
func XmdGetEntryData(data *C.char, dataLen C.int, id C.uint32_t) C.XmdResult {
	a, err := decode(data, dataLen)
	if err != nil {
		return makeError(err)
	}
	payload, ok := a.Get(xmd.EntryID(id))
	if !ok {
		return makeError(fmt.Errorf("entry not found: %d", uint32(id)))
	}
	return makeResult(payload)
}

// XmdValidate checks that data decodes as an XMD archive.
// Returns NULL on success, or an error message string on failure.
// Call XmdFreeString on the result if non-NULL.
//
//export XmdValidate
func XmdValidate(data *C.char, dataLen C.int) *C.char {
	if _, err := decode(data, dataLen); err != nil {
		return C.CString(err.Error())
	}
	return nil
}

// XmdGetEntryCount returns the number of entries in an XMD archive.
// Returns -1 on error.
//
//export XmdGetEntryCount
func XmdGetEntryCount(data *C.char, dataLen C.int) C.int {
	a, err := decode(data, dataLen)
	if err != nil {
		return -1
	}
	return C.int(a.Len())
}
