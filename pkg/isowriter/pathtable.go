package isowriter

import (
	"github.com/bgrewell/iso-forge/pkg/filetree"
	"github.com/bgrewell/iso-forge/pkg/iso9660/pathtable"
)

// pathTableRecordSize is the path-table record size for a directory
// identifier of nameLen bytes: 8-byte header plus the name, padded to even
// length (spec §4.5).
func pathTableRecordSize(nameLen int) int {
	sz := 8 + nameLen
	if sz%2 != 0 {
		sz++
	}
	return sz
}

// PathTableEntry is one directory's path-table bookkeeping: its assigned
// directory number (1-based, root is 1), its parent's directory number, and
// the frozen name to record.
type PathTableEntry struct {
	Node         *filetree.FilenameTreeNode
	DirNumber    uint16
	ParentNumber uint16
	Name         []byte
}

// BuildPathTableEntries numbers every non-skipped directory in the same
// depth-first order used for DIR_ENTRIES sizing (root first, satisfying the
// "ancestors seen before descendants" requirement) and records each one's
// parent number.
func BuildPathTableEntries(tree *filetree.Tree, joliet bool) []*PathTableEntry {
	var entries []*PathTableEntry
	numbers := make(map[*filetree.FilenameTreeNode]uint16)

	tree.Walk(func(n *filetree.FilenameTreeNode, depth int) error {
		if !n.IsDir || n.Skipped {
			return nil
		}
		num := uint16(len(entries) + 1)
		numbers[n] = num

		name := nameOf(n, joliet)
		parentNum := num
		if n.Parent != nil {
			if pn, ok := numbers[n.Parent]; ok {
				parentNum = pn
			}
		}

		entries = append(entries, &PathTableEntry{
			Node:         n,
			DirNumber:    num,
			ParentNumber: parentNum,
			Name:         name,
		})
		return nil
	})

	return entries
}

// SizePathTable returns the total byte length of a path table built from
// entries (the root's name is a single zero byte, per spec §4.5).
func SizePathTable(entries []*PathTableEntry) uint32 {
	var total int
	for _, e := range entries {
		nameLen := len(e.Name)
		if nameLen == 0 {
			nameLen = 1
		}
		total += pathTableRecordSize(nameLen)
	}
	return uint32(total)
}

// BuildPathTable constructs the pathtable.PathTable records for one
// endianness, given each directory's already-resolved extent location
// (absolute sector). littleEndian selects the L-type vs M-type record
// layout.
func BuildPathTable(entries []*PathTableEntry, extentOf func(*filetree.FilenameTreeNode) uint32, littleEndian bool) *pathtable.PathTable {
	records := make([]*pathtable.PathTableRecord, 0, len(entries))
	for _, e := range entries {
		identifier := string(e.Name)
		if len(e.Name) == 0 {
			identifier = "\x00"
		}
		records = append(records, pathtable.NewPathTableRecordForWrite(
			extentOf(e.Node), e.ParentNumber, identifier, littleEndian,
		))
	}
	return &pathtable.PathTable{Records: records}
}
