package isowriter

import (
	"github.com/bgrewell/iso-forge/pkg/consts"
	"github.com/bgrewell/iso-forge/pkg/filetree"
)

// recordSize returns the byte size of a directory record carrying a name of
// nameLen bytes, including the mandatory pad-to-even byte (spec §4.5: "33 +
// transformed-name-length + pad-to-even").
func recordSize(nameLen int) int {
	sz := 33 + nameLen
	if sz%2 != 0 {
		sz++
	}
	return sz
}

// DirLayout is one directory's sizing result for one namespace: the number
// of sectors its own `.`/`..`/children records occupy (never spanning a
// sector boundary, per spec §4.5), and, once the region's total size is
// known, its starting sector relative to the region.
type DirLayout struct {
	Node        *filetree.FilenameTreeNode
	SectorCount uint64
	StartSector uint64
}

// nameOf returns the frozen name bytes for child in the given namespace.
func nameOf(child *filetree.FilenameTreeNode, joliet bool) []byte {
	if joliet {
		return child.JolietName
	}
	return child.ISO9660Name
}

// sizeDirectoryRecords packs the `.` self-entry, the `..` parent entry, and
// one entry per non-skipped child into whole sectors, pushing a record that
// would cross a sector boundary to the next sector (spec §4.5 "a record
// that would span a sector is pushed to the next sector and the preceding
// tail is zero-padded").
func sizeDirectoryRecords(dir *filetree.FilenameTreeNode, joliet bool) uint64 {
	const sectorSize = consts.ISO9660_SECTOR_SIZE

	offset := 0
	sectors := uint64(1)

	place := func(size int) {
		if offset+size > sectorSize {
			sectors++
			offset = 0
		}
		offset += size
	}

	place(recordSize(1)) // self
	place(recordSize(1)) // parent

	for _, child := range dir.Children {
		if child.Skipped {
			continue
		}
		nameLen := len(nameOf(child, joliet))
		n := 1
		if !child.IsDir && len(child.ExtentChain) > 1 {
			n = len(child.ExtentChain)
		}
		for i := 0; i < n; i++ {
			place(recordSize(nameLen))
		}
	}

	return sectors
}

// SizeDirectories walks the tree depth-first (matching the required emission
// order) and returns one DirLayout per non-skipped directory for the given
// namespace, with StartSector filled relative to the region's own start (the
// director adds the allocator's base sector when it allocates DIR_ENTRIES).
func SizeDirectories(tree *filetree.Tree, joliet bool) ([]*DirLayout, error) {
	var layouts []*DirLayout
	var cursor uint64

	err := tree.Walk(func(n *filetree.FilenameTreeNode, depth int) error {
		if !n.IsDir || n.Skipped {
			return nil
		}
		sectors := sizeDirectoryRecords(n, joliet)
		layouts = append(layouts, &DirLayout{Node: n, SectorCount: sectors, StartSector: cursor})
		cursor += sectors
		return nil
	})
	if err != nil {
		return nil, err
	}
	return layouts, nil
}

// TotalSectors sums every directory's sector count.
func TotalSectors(layouts []*DirLayout) uint64 {
	var total uint64
	for _, l := range layouts {
		total += l.SectorCount
	}
	return total
}
