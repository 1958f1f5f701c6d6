package pk2

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// Directory is one node of the indexed archive tree: the Entry that owns it,
// every child Entry (files and subdirectories alike) keyed by relative path,
// and the expanded subdirectories keyed by relative path. Built once during Archive.Open and read-only
// afterward.
type Directory struct {
	self     Entry
	entries  map[string]Entry
	children map[string]*Directory
}

// newDirectory wraps entry as an (as yet unexpanded) Directory. entry must
// satisfy IsDir; violating that is a programming error, not a runtime
// failure, so this panics rather than returning an error — mirroring the
// original's fail-loudly precondition.
func newDirectory(entry Entry) *Directory {
	if !entry.IsDir() {
		panic(fmt.Sprintf("pk2: newDirectory called with non-directory entry kind %s", entry.Kind()))
	}
	return &Directory{
		self:     entry,
		entries:  make(map[string]Entry),
		children: make(map[string]*Directory),
	}
}

// expand reads the directory's block chain and populates entries/children,
// recursing into subdirectories. visitedDirs guards against a malformed
// archive whose directory tree is actually cyclic (a subdirectory pointing
// back at an ancestor's block offset) — distinct from the within-chain
// next_chain guard in block.go.
func (d *Directory) expand(r io.ReaderAt, visitedDirs map[int64]struct{}) error {
	offset := int64(d.self.Position)
	if _, seen := visitedDirs[offset]; seen {
		return InvalidBlock(fmt.Sprintf("cyclic directory tree at offset %d", offset))
	}
	visitedDirs[offset] = struct{}{}

	entries, err := ReadBlock(r, offset)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e.isDotOrDotDot() {
			continue
		}

		name := e.PathSegment()
		if name == "" {
			continue
		}

		d.entries[name] = e

		if e.IsDir() {
			child := newDirectory(e)
			if err := child.expand(r, visitedDirs); err != nil {
				return err
			}
			d.children[name] = child
		}
	}

	return nil
}

// List returns a recursive, human-readable rendering of the directory tree
// rooted at d, directories before files at each level.
func (d *Directory) List() string {
	var sb []byte
	sb = d.writeList(sb, 0)
	return string(sb)
}

func (d *Directory) writeList(sb []byte, depth int) []byte {
	indent := make([]byte, depth*2)
	for i := range indent {
		indent[i] = ' '
	}

	for _, name := range d.sortedChildNames() {
		sb = append(sb, indent...)
		sb = append(sb, name+"/\n"...)
		sb = d.children[name].writeList(sb, depth+1)
	}

	for _, name := range d.sortedFileNames() {
		sb = append(sb, indent...)
		sb = append(sb, name+"\n"...)
	}

	return sb
}

func (d *Directory) sortedChildNames() []string {
	names := make([]string, 0, len(d.children))
	for name := range d.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Directory) sortedFileNames() []string {
	names := make([]string, 0, len(d.entries))
	for name, e := range d.entries {
		if e.IsFile() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Extract writes every file under d to targetDir, recreating the
// subdirectory structure. File payloads are read from the archive without
// decryption — PK2 stores file contents in the clear.
func (d *Directory) Extract(r io.ReaderAt, targetDir string) error {
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return IOErr(err)
	}

	for name, e := range d.entries {
		if !e.IsFile() {
			continue
		}
		if err := extractFile(r, e, filepath.Join(targetDir, name)); err != nil {
			return err
		}
	}

	for name, child := range d.children {
		if err := child.Extract(r, filepath.Join(targetDir, name)); err != nil {
			return err
		}
	}

	return nil
}

// extractFile reads e.Size bytes at e.Position and writes them to dest. A
// short read is logged and the partial buffer is written as-is, matching
// the original extractor's tolerance for truncated archives.
func extractFile(r io.ReaderAt, e Entry, dest string) error {
	buf := make([]byte, e.Size)
	n, err := r.ReadAt(buf, int64(e.Position))
	if err != nil && err != io.EOF {
		return IOErr(err)
	}
	if uint32(n) != e.Size {
		slog.Warn("pk2: short file read", "dest", dest, "want", e.Size, "got", n)
		buf = buf[:n]
	}

	if err := os.WriteFile(dest, buf, 0o644); err != nil {
		return IOErr(err)
	}
	return nil
}
