package pk2

import (
	"bytes"
	"testing"
)

// fakeFile is an io.ReaderAt backed by an in-memory buffer, standing in for
// an on-disk archive in tests.
type fakeFile struct {
	data []byte
}

func (f *fakeFile) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(f.data)) {
		return 0, errShortRead
	}
	n := copy(p, f.data[off:])
	if n < len(p) {
		return n, errShortRead
	}
	return n, nil
}

// buildEncryptedBlock assembles entryBufs (each already EntrySize bytes)
// into a BlockSize buffer, padding with empty entries, then encrypts it.
func buildEncryptedBlock(t *testing.T, entryBufs ...[]byte) []byte {
	t.Helper()

	block := make([]byte, BlockSize)
	for i, buf := range entryBufs {
		copy(block[i*EntrySize:(i+1)*EntrySize], buf)
	}

	cipher, err := sharedCipher()
	if err != nil {
		t.Fatalf("sharedCipher: %v", err)
	}
	if err := cipher.encrypt(block); err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	return block
}

func TestReadBlockSingleBlock(t *testing.T) {
	fileEntry := buildEntryBytes(EntryFile, "a.txt", 0, 0, 0, 100, 10, 0)
	block := buildEncryptedBlock(t, fileEntry)

	f := &fakeFile{data: block}
	entries, err := ReadBlock(f, 0)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].PathSegment() != "a.txt" {
		t.Errorf("entries[0].PathSegment() = %q, want %q", entries[0].PathSegment(), "a.txt")
	}
}

func TestReadBlockDropsEmpties(t *testing.T) {
	emptyEntry := buildEntryBytes(EntryEmpty, "", 0, 0, 0, 0, 0, 0)
	fileEntry := buildEntryBytes(EntryFile, "a.txt", 0, 0, 0, 100, 10, 0)
	block := buildEncryptedBlock(t, emptyEntry, fileEntry)

	f := &fakeFile{data: block}
	entries, err := ReadBlock(f, 0)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1 (empty slot dropped)", len(entries))
	}
}

func TestReadBlockFollowsNextChain(t *testing.T) {
	padEntries := make([][]byte, 19)
	for i := range padEntries {
		padEntries[i] = buildEntryBytes(EntryEmpty, "", 0, 0, 0, 0, 0, 0)
	}
	nextChainOffset := int64(BlockSize)
	last := buildEntryBytes(EntryEmpty, "", 0, 0, 0, 0, 0, uint64(nextChainOffset))

	firstBlockEntries := append(padEntries, last)
	firstBlock := buildEncryptedBlock(t, firstBlockEntries...)

	fileEntry := buildEntryBytes(EntryFile, "b.txt", 0, 0, 0, 200, 20, 0)
	secondBlock := buildEncryptedBlock(t, fileEntry)

	f := &fakeFile{data: append(firstBlock, secondBlock...)}

	entries, err := ReadBlock(f, 0)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1 (19 empties + next_chain dropped, 1 file from second block)", len(entries))
	}
	if entries[0].PathSegment() != "b.txt" {
		t.Errorf("entries[0].PathSegment() = %q, want %q", entries[0].PathSegment(), "b.txt")
	}
}

func TestReadBlockDetectsCyclicChain(t *testing.T) {
	padEntries := make([][]byte, 19)
	for i := range padEntries {
		padEntries[i] = buildEntryBytes(EntryEmpty, "", 0, 0, 0, 0, 0, 0)
	}
	// next_chain is 0 (chain end); the cycle comes from offset 0 already
	// being in visited below.
	last := buildEntryBytes(EntryEmpty, "", 0, 0, 0, 0, 0, 0)
	block := buildEncryptedBlock(t, append(padEntries, last)...)

	f := &fakeFile{data: block}

	// Simulates readBlockChain already having visited offset 0 once, as it
	// would mid-chain; a well-formed chain never revisits an offset.
	visited := map[int64]struct{}{0: {}}
	if _, err := readBlockChain(f, 0, visited); err == nil {
		t.Fatal("expected InvalidBlock error for cyclic chain")
	}
}

func TestReadBlockShortRead(t *testing.T) {
	f := &fakeFile{data: make([]byte, 100)} // shorter than BlockSize
	if _, err := ReadBlock(f, 0); err == nil {
		t.Fatal("expected error for short block read")
	}
}

var errShortRead = bytes.ErrTooLarge
