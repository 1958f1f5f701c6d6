package pk2

import (
	"encoding/binary"
	"testing"
)

// buildEntryBytes assembles a single 128-byte entry record.
func buildEntryBytes(kind EntryKind, name string, access, create, modify, position uint64, size uint32, nextChain uint64) []byte {
	buf := make([]byte, EntrySize)
	buf[0] = byte(kind)
	copy(buf[1:1+nameFieldSize], []byte(name))

	off := 1 + nameFieldSize
	binary.LittleEndian.PutUint64(buf[off:off+8], access)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:off+8], create)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:off+8], modify)
	off += 8
	binary.LittleEndian.PutUint64(buf[off:off+8], position)
	off += 8
	binary.LittleEndian.PutUint32(buf[off:off+4], size)
	off += 4
	binary.LittleEndian.PutUint64(buf[off:off+8], nextChain)

	return buf
}

func TestParseEntryRoundTrip(t *testing.T) {
	buf := buildEntryBytes(EntryFile, "quest.txt", 1, 2, 3, 1024, 512, 0)

	e, err := ParseEntry(buf)
	if err != nil {
		t.Fatalf("ParseEntry: %v", err)
	}
	if !e.IsFile() {
		t.Error("IsFile() = false, want true")
	}
	if e.IsDir() || e.IsEmpty() {
		t.Error("expected only IsFile to be true")
	}
	if e.AccessTime != 1 || e.CreateTime != 2 || e.ModifyTime != 3 {
		t.Errorf("timestamps = %d,%d,%d, want 1,2,3", e.AccessTime, e.CreateTime, e.ModifyTime)
	}
	if e.Position != 1024 {
		t.Errorf("Position = %d, want 1024", e.Position)
	}
	if e.Size != 512 {
		t.Errorf("Size = %d, want 512", e.Size)
	}
	if got := e.PathSegment(); got != "quest.txt" {
		t.Errorf("PathSegment() = %q, want %q", got, "quest.txt")
	}
}

func TestParseEntryWrongSize(t *testing.T) {
	if _, err := ParseEntry(make([]byte, 4)); err == nil {
		t.Fatal("expected error for short buffer")
	}
}

func TestEntryKindPredicates(t *testing.T) {
	empty, _ := ParseEntry(buildEntryBytes(EntryEmpty, "", 0, 0, 0, 0, 0, 0))
	if !empty.IsEmpty() {
		t.Error("expected IsEmpty() for kind=0")
	}

	dir, _ := ParseEntry(buildEntryBytes(EntryDirectory, "quests", 0, 0, 0, 2560, 0, 0))
	if !dir.IsDir() {
		t.Error("expected IsDir() for kind=1")
	}
}

func TestIsDotOrDotDot(t *testing.T) {
	dot, _ := ParseEntry(buildEntryBytes(EntryDirectory, ".", 0, 0, 0, 0, 0, 0))
	if !dot.isDotOrDotDot() {
		t.Error("expected isDotOrDotDot() for \".\"")
	}

	dotdot, _ := ParseEntry(buildEntryBytes(EntryDirectory, "..", 0, 0, 0, 0, 0, 0))
	if !dotdot.isDotOrDotDot() {
		t.Error("expected isDotOrDotDot() for \"..\"")
	}

	regular, _ := ParseEntry(buildEntryBytes(EntryDirectory, "quests", 0, 0, 0, 0, 0, 0))
	if regular.isDotOrDotDot() {
		t.Error("did not expect isDotOrDotDot() for \"quests\"")
	}
}

func TestEntryKindString(t *testing.T) {
	cases := map[EntryKind]string{
		EntryEmpty:     "Empty",
		EntryDirectory: "Directory",
		EntryFile:      "File",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", kind, got, want)
		}
	}
}
