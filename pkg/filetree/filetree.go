// Package filetree builds the canonical in-memory directory tree the image
// director lays out and the ISO 9660/Joliet/UDF writers emit from. Nodes are
// constructed once from a sorted input set and then mutated in place by the
// later sizing and layout passes, exactly as spec.md §3/§4.4 describes.
package filetree

import (
	"fmt"
	"strings"
	"time"
)

// FileDescriptor is one input entry: a requested internal path, a host path
// to read bytes from, its size, and its flags.
type FileDescriptor struct {
	InternalPath string
	HostPath     string
	Size         uint64
	IsDir        bool
	Imported     bool

	// Imported-node fields, used verbatim when Imported is true (spec §4.5
	// "Imported-session nodes"): pre-assigned extent location/length, file
	// flags, file unit size, interleave gap, volume sequence number, and
	// timestamp. None of these are reinterpreted by the writer.
	ImportedExtentLoc     uint32
	ImportedDataLen       uint32
	ImportedFileFlags     byte
	ImportedFileUnitSize  byte
	ImportedInterleaveGap byte
	ImportedVolSeqNum     uint16
	ImportedTimestamp     time.Time
}

// FilenameTreeNode is one node in the canonical tree: a directory or a file.
// Derived fields start at their zero value and are filled in by the ISO
// 9660/Joliet sizing pass (§4.5), the UDF sizing pass (§4.6), and the
// director's data-layout pass (§4.8).
type FilenameTreeNode struct {
	Parent   *FilenameTreeNode
	Children []*FilenameTreeNode

	Name     string
	HostPath string
	RawSize  uint64
	IsDir    bool
	Imported bool
	Descriptor *FileDescriptor

	// Derived: frozen names, filled by the per-namespace uniqueness pass.
	ISO9660Name []byte
	JolietName  []byte

	// Derived: data placement, filled by the director's layout pass.
	DataPosNormal  uint64
	DataPosJoliet  uint64
	DataSizeNormal uint64
	DataSizeJoliet uint64
	DataPadSectors uint64

	// Multi-extent chain, filled when the node's data is fragmented
	// (interchange level 3, size > consts.ISO_MAX_EXTENT).
	ExtentChain []Extent

	// Derived: UDF identity. UDFUniqueID is assigned by udf.AssignUniqueIDs.
	// UDFSize, UDFSizeTotal, UDFLinkTotal and UDFPartLoc are not assigned by
	// any pass and stay zero; the builder keeps UDF sizes and locations in
	// its own per-node table instead.
	UDFSize      uint64
	UDFSizeTotal uint64
	UDFLinkTotal uint64
	UDFPartLoc   uint64
	UDFUniqueID  uint64

	// Skipped is set by a layout pass that drops a node (directory-depth
	// cap, oversized file with fragmentation disallowed) rather than
	// mutating the tree shape mid-walk.
	Skipped       bool
	SkippedReason string
}

// Extent is one range of a multi-extent file, in absolute image sectors.
type Extent struct {
	StartSector uint64
	Length      uint64
}

// Tree is the single-owner directory tree built from a sorted FileDescriptor
// set.
type Tree struct {
	Root               *FilenameTreeNode
	DirCount           int
	FileCount          int
}

// New creates an empty tree with a synthetic root directory.
func New() *Tree {
	return &Tree{
		Root: &FilenameTreeNode{
			Name:  "",
			IsDir: true,
		},
	}
}

// Build consumes descriptors, which must already be sorted by byte-wise
// comparison of InternalPath (the caller's responsibility per spec.md §3),
// and constructs the tree. Every ancestor directory of a descriptor must
// already exist in the tree by the time the descriptor is reached; this is
// guaranteed by sorted input plus directories themselves being present as
// descriptors (or synthesized below when a directory entry is implied by a
// file's path but never listed explicitly).
func Build(descriptors []*FileDescriptor) (*Tree, error) {
	t := New()

	for _, d := range descriptors {
		if d.InternalPath == "" || d.InternalPath == "/" {
			continue
		}
		if err := t.insert(d); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func (t *Tree) insert(d *FileDescriptor) error {
	components := splitPath(d.InternalPath)
	if len(components) == 0 {
		return fmt.Errorf("invalid internal path %q", d.InternalPath)
	}

	parent := t.Root
	for i, comp := range components[:len(components)-1] {
		child := findChild(parent, comp)
		if child == nil {
			// A directory implied by a deeper file path but not itself
			// present as a descriptor earlier in the input; synthesize it so
			// traversal never breaks. A directory descriptor for the same
			// path that arrives later is rejected as a duplicate internal
			// path, so a synthesized node never takes on a descriptor's
			// metadata. Sorted input lists a directory before its contents,
			// so this only happens for directories absent from the input.
			child = &FilenameTreeNode{
				Parent: parent,
				Name:   comp,
				IsDir:  true,
			}
			parent.Children = append(parent.Children, child)
			t.DirCount++
		}
		if !child.IsDir {
			return fmt.Errorf("path component %q in %q is not a directory", strings.Join(components[:i+1], "/"), d.InternalPath)
		}
		parent = child
	}

	name := components[len(components)-1]
	if existing := findChild(parent, name); existing != nil {
		return fmt.Errorf("duplicate internal path %q", d.InternalPath)
	}

	node := &FilenameTreeNode{
		Parent:     parent,
		Name:       name,
		HostPath:   d.HostPath,
		RawSize:    d.Size,
		IsDir:      d.IsDir,
		Imported:   d.Imported,
		Descriptor: d,
	}
	parent.Children = append(parent.Children, node)
	if d.IsDir {
		t.DirCount++
	} else {
		t.FileCount++
	}
	return nil
}

func splitPath(p string) []string {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func findChild(parent *FilenameTreeNode, name string) *FilenameTreeNode {
	for _, c := range parent.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// NodeFromPath walks the tree from the root using a linear child scan at
// each level, matching spec.md §4.4's O(depth × siblings) lookup contract.
func (t *Tree) NodeFromPath(path string) *FilenameTreeNode {
	components := splitPath(path)
	node := t.Root
	for _, comp := range components {
		node = findChild(node, comp)
		if node == nil {
			return nil
		}
	}
	return node
}

// Walk visits every node in the tree depth-first, in child-list (input) order,
// calling fn on each node including the root. Returning an error from fn
// stops the walk and propagates the error.
func (t *Tree) Walk(fn func(*FilenameTreeNode, int) error) error {
	return walk(t.Root, 0, fn)
}

func walk(n *FilenameTreeNode, depth int, fn func(*FilenameTreeNode, int) error) error {
	if err := fn(n, depth); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := walk(c, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}
