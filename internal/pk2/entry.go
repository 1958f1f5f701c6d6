package pk2

import "fmt"

// EntrySize is the fixed on-disk size of one directory entry, in bytes.
const EntrySize = 128

const nameFieldSize = 81

// EntryKind is the byte tag distinguishing an Entry's role in the archive.
type EntryKind uint8

const (
	EntryEmpty     EntryKind = 0
	EntryDirectory EntryKind = 1
	EntryFile      EntryKind = 2
)

func (k EntryKind) String() string {
	switch k {
	case EntryEmpty:
		return "Empty"
	case EntryDirectory:
		return "Directory"
	case EntryFile:
		return "File"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(k))
	}
}

// Entry is one 128-byte directory record: an empty slot, a subdirectory, or
// a file. The canonical on-disk layout (name[81] + three FILETIME-style
// timestamps) is the one spec.md picks between the two historical layouts.
type Entry struct {
	kind    EntryKind
	rawName [nameFieldSize]byte

	AccessTime uint64
	CreateTime uint64
	ModifyTime uint64

	// Position is the absolute byte offset of the directory's first child
	// block (for directories) or of the file payload (for files).
	Position uint64
	// Size is the file payload length; always 0 for directories.
	Size uint32
	// NextChain is only meaningful on the 20th entry of a block: 0 ends the
	// chain, otherwise it is the offset of the next 2560-byte block.
	NextChain uint64
}

// ParseEntry decodes a fixed 128-byte slice into an Entry. The 2 trailing
// padding bytes are ignored.
func ParseEntry(buf []byte) (Entry, error) {
	if len(buf) != EntrySize {
		return Entry{}, InvalidBlock(fmt.Sprintf("entry buffer must be %d bytes, got %d", EntrySize, len(buf)))
	}

	var e Entry
	e.kind = EntryKind(buf[0])
	copy(e.rawName[:], buf[1:1+nameFieldSize])

	off := 1 + nameFieldSize
	e.AccessTime = u64LE(buf[off : off+8])
	off += 8
	e.CreateTime = u64LE(buf[off : off+8])
	off += 8
	e.ModifyTime = u64LE(buf[off : off+8])
	off += 8
	e.Position = u64LE(buf[off : off+8])
	off += 8
	e.Size = u32LE(buf[off : off+4])
	off += 4
	e.NextChain = u64LE(buf[off : off+8])

	return e, nil
}

// Kind returns the entry's on-disk type tag.
func (e Entry) Kind() EntryKind { return e.kind }

func (e Entry) IsEmpty() bool { return e.kind == EntryEmpty }
func (e Entry) IsDir() bool   { return e.kind == EntryDirectory }
func (e Entry) IsFile() bool  { return e.kind == EntryFile }

// isDotOrDotDot reports whether this entry is the "." or ".." placeholder
// every PK2 directory block carries; both start with 0x2E ('.').
func (e Entry) isDotOrDotDot() bool {
	return e.rawName[0] == 0x2E
}

// PathSegment decodes the entry's name field (EUC-KR, null-terminated).
func (e Entry) PathSegment() string {
	return decodePath(e.rawName[:])
}

// clearName zeroes the name field. Used once, on the synthetic root entry,
// so the root Directory's own path segment is empty.
func (e *Entry) clearName() {
	e.rawName = [nameFieldSize]byte{}
}
