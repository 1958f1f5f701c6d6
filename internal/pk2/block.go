package pk2

import (
	"fmt"
	"io"
)

const (
	entriesPerBlock = 20
	// BlockSize is the fixed on-disk size of one directory block (20 entries
	// of 128 bytes each), before decryption.
	BlockSize = entriesPerBlock * EntrySize
)

// readBlockChain reads the block at offset and every block its 20th entry's
// next_chain links to, decrypting each and concatenating their entries in
// chain order. visited guards against a corrupt archive whose next_chain
// pointers loop back on themselves; it is local to one call's chain, distinct
// from the archive-wide directory-cycle guard in directory.go.
func readBlockChain(r io.ReaderAt, offset int64, visited map[int64]struct{}) ([]Entry, error) {
	if _, seen := visited[offset]; seen {
		return nil, InvalidBlock(fmt.Sprintf("cyclic next_chain at offset %d", offset))
	}
	visited[offset] = struct{}{}

	raw := make([]byte, BlockSize)
	n, err := r.ReadAt(raw, offset)
	if err != nil && err != io.EOF {
		return nil, IOErr(err)
	}
	if n != BlockSize {
		return nil, InvalidBlock(fmt.Sprintf("short block read at offset %d: got %d of %d bytes", offset, n, BlockSize))
	}

	cipher, err := sharedCipher()
	if err != nil {
		return nil, IOErr(err)
	}
	if err := cipher.decrypt(raw); err != nil {
		return nil, InvalidBlock(err.Error())
	}

	entries := make([]Entry, entriesPerBlock)
	for i := 0; i < entriesPerBlock; i++ {
		e, err := ParseEntry(raw[i*EntrySize : (i+1)*EntrySize])
		if err != nil {
			return nil, err
		}
		entries[i] = e
	}

	result := make([]Entry, 0, entriesPerBlock)
	result = append(result, entries...)

	if next := entries[entriesPerBlock-1].NextChain; next != 0 {
		more, err := readBlockChain(r, int64(next), visited)
		if err != nil {
			return nil, err
		}
		result = append(result, more...)
	}

	return result, nil
}

// ReadBlock reads the full block chain rooted at offset, decrypts it, and
// returns every non-empty entry in on-disk order, chain order preserved
// across block boundaries.
func ReadBlock(r io.ReaderAt, offset int64) ([]Entry, error) {
	all, err := readBlockChain(r, offset, make(map[int64]struct{}))
	if err != nil {
		return nil, err
	}

	nonEmpty := make([]Entry, 0, len(all))
	for _, e := range all {
		if e.IsEmpty() {
			continue
		}
		nonEmpty = append(nonEmpty, e)
	}
	return nonEmpty, nil
}
