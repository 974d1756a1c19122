package isowriter

import (
	"testing"

	"github.com/bgrewell/iso-forge/pkg/filetree"
	"github.com/stretchr/testify/require"
)

func TestPathTableRecordSize_PadsToEven(t *testing.T) {
	require.Equal(t, 8, pathTableRecordSize(0))
	require.Equal(t, 10, pathTableRecordSize(1)) // 8+1=9, pad to 10
	require.Equal(t, 10, pathTableRecordSize(2))
}

func TestBuildPathTableEntries_NumbersRootFirst(t *testing.T) {
	tree, err := filetree.Build([]*filetree.FileDescriptor{
		{InternalPath: "/DOCS", IsDir: true},
		{InternalPath: "/DOCS/SUB", IsDir: true},
	})
	require.NoError(t, err)

	entries := BuildPathTableEntries(tree, false)
	require.Len(t, entries, 3)

	require.Equal(t, uint16(1), entries[0].DirNumber)
	require.Equal(t, uint16(1), entries[0].ParentNumber) // root is its own parent

	docs := entries[1]
	require.Equal(t, uint16(2), docs.DirNumber)
	require.Equal(t, uint16(1), docs.ParentNumber)

	sub := entries[2]
	require.Equal(t, uint16(3), sub.DirNumber)
	require.Equal(t, uint16(2), sub.ParentNumber)
}

func TestSizePathTable_RootUsesSingleZeroByte(t *testing.T) {
	entries := []*PathTableEntry{{Name: nil}}
	require.Equal(t, uint32(pathTableRecordSize(1)), SizePathTable(entries))
}

func TestBuildPathTable_ProducesOneRecordPerEntry(t *testing.T) {
	tree, err := filetree.Build([]*filetree.FileDescriptor{
		{InternalPath: "/DOCS", IsDir: true},
	})
	require.NoError(t, err)
	entries := BuildPathTableEntries(tree, false)

	locations := map[*filetree.FilenameTreeNode]uint32{
		tree.Root:             20,
		tree.NodeFromPath("/DOCS"): 21,
	}
	pt := BuildPathTable(entries, func(n *filetree.FilenameTreeNode) uint32 { return locations[n] }, true)
	require.Len(t, pt.Records, 2)

	out, err := pt.Marshal()
	require.NoError(t, err)
	require.NotEmpty(t, out)
}
