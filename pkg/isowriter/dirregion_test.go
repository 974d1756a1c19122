package isowriter

import (
	"testing"

	"github.com/bgrewell/iso-forge/pkg/filetree"
	"github.com/stretchr/testify/require"
)

func TestRecordSize_PadsToEven(t *testing.T) {
	require.Equal(t, 34, recordSize(1)) // 33+1=34, already even
	require.Equal(t, 36, recordSize(2)) // 33+2=35, pad to 36
}

func TestSizeDirectoryRecords_CountsSelfAndParent(t *testing.T) {
	dir := &filetree.FilenameTreeNode{IsDir: true}
	sectors := sizeDirectoryRecords(dir, false)
	require.Equal(t, uint64(1), sectors)
}

func TestSizeDirectoryRecords_MultiExtentChildCountsEveryExtent(t *testing.T) {
	dir := &filetree.FilenameTreeNode{IsDir: true}
	child := &filetree.FilenameTreeNode{
		ISO9660Name: []byte("BIG.BIN"),
		ExtentChain: []filetree.Extent{{StartSector: 1}, {StartSector: 2}, {StartSector: 3}},
	}
	dir.Children = []*filetree.FilenameTreeNode{child}

	withMulti := sizeDirectoryRecords(dir, false)

	dirSingle := &filetree.FilenameTreeNode{IsDir: true}
	single := &filetree.FilenameTreeNode{ISO9660Name: []byte("BIG.BIN")}
	dirSingle.Children = []*filetree.FilenameTreeNode{single}
	withoutMulti := sizeDirectoryRecords(dirSingle, false)

	require.GreaterOrEqual(t, withMulti, withoutMulti)
}

func TestSizeDirectoryRecords_SkipsSkippedChildren(t *testing.T) {
	dir := &filetree.FilenameTreeNode{IsDir: true}
	dropped := &filetree.FilenameTreeNode{ISO9660Name: []byte("DROP.TXT"), Skipped: true}
	dir.Children = []*filetree.FilenameTreeNode{dropped}

	withDropped := sizeDirectoryRecords(dir, false)

	empty := &filetree.FilenameTreeNode{IsDir: true}
	withoutDropped := sizeDirectoryRecords(empty, false)

	require.Equal(t, withoutDropped, withDropped)
}

func TestSizeDirectories_WalksDepthFirst(t *testing.T) {
	tree, err := filetree.Build([]*filetree.FileDescriptor{
		{InternalPath: "/DOCS", IsDir: true},
		{InternalPath: "/DOCS/SUB", IsDir: true},
	})
	require.NoError(t, err)

	layouts, err := SizeDirectories(tree, false)
	require.NoError(t, err)
	require.Len(t, layouts, 3) // root, DOCS, SUB

	require.Equal(t, tree.Root, layouts[0].Node)
	require.Equal(t, uint64(0), layouts[0].StartSector)
	require.Equal(t, layouts[0].StartSector+layouts[0].SectorCount, layouts[1].StartSector)
}

func TestTotalSectors_SumsAllLayouts(t *testing.T) {
	layouts := []*DirLayout{{SectorCount: 1}, {SectorCount: 3}}
	require.Equal(t, uint64(4), TotalSectors(layouts))
}
