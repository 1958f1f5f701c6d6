package pk2

import (
	"bytes"
	"encoding/binary"

	"golang.org/x/text/encoding/korean"
)

// u32LE decodes the first 4 bytes of b as a little-endian uint32.
func u32LE(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// u64LE decodes the first 8 bytes of b as a little-endian uint64.
func u64LE(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}

// decodePath interprets raw as an EUC-KR encoded, null-terminated name and
// returns the decoded, null-trimmed path segment. Malformed byte sequences
// are replaced with the Unicode replacement character rather than failing —
// a legacy archive with a handful of garbled names should still index.
func decodePath(raw []byte) string {
	trimmed := bytes.TrimRight(raw, "\x00")
	if len(trimmed) == 0 {
		return ""
	}

	decoded, err := korean.EUCKR.NewDecoder().Bytes(trimmed)
	if err != nil {
		decoded = bytes.ToValidUTF8(decoded, []byte("�"))
	}
	return string(decoded)
}
