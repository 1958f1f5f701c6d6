package pk2

import (
	"fmt"
	"os"
)

// rootBlockOffset is where the first directory block — containing the
// synthetic "." root entry — always lives, immediately after the header.
const rootBlockOffset = HeaderSize

// Archive owns an open PK2 file, its parsed Header, and the indexed
// Directory tree. Immutable once Open returns; Close releases the file
// handle.
type Archive struct {
	file   *os.File
	header Header
	root   *Directory
}

// Open parses and verifies the archive's header, locates the root directory
// entry, and recursively indexes the entire tree. The returned Archive owns
// path's file handle until Close is called.
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, IOErr(err)
	}

	a, err := open(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return a, nil
}

func open(f *os.File) (*Archive, error) {
	raw := make([]byte, HeaderSize)
	if _, err := f.ReadAt(raw, 0); err != nil {
		return nil, IOErr(err)
	}

	header, err := ParseHeader(raw)
	if err != nil {
		return nil, err
	}
	if err := header.Verify(); err != nil {
		return nil, err
	}

	rootEntry, err := findRootEntry(f)
	if err != nil {
		return nil, err
	}

	root := newDirectory(rootEntry)
	if err := root.expand(f, make(map[int64]struct{})); err != nil {
		return nil, err
	}

	return &Archive{file: f, header: header, root: root}, nil
}

// findRootEntry reads the block at rootBlockOffset and returns the unique
// directory entry whose name starts with "." — the synthetic root of the
// archive's tree.
func findRootEntry(r *os.File) (Entry, error) {
	entries, err := ReadBlock(r, rootBlockOffset)
	if err != nil {
		return Entry{}, err
	}

	for _, e := range entries {
		if e.IsDir() && e.isDotOrDotDot() {
			e.clearName()
			e.Position = rootBlockOffset
			return e, nil
		}
	}
	return Entry{}, InvalidBlock(fmt.Sprintf("no root directory entry found at offset %d", rootBlockOffset))
}

// Root returns the archive's indexed root directory.
func (a *Archive) Root() *Directory {
	return a.root
}

// ExtractAll writes every file in the archive to targetDir, recreating the
// directory structure rooted there.
func (a *Archive) ExtractAll(targetDir string) error {
	return a.root.Extract(a.file, targetDir)
}

// Close releases the archive's underlying file handle.
func (a *Archive) Close() error {
	return a.file.Close()
}
