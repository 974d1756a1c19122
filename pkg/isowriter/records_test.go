package isowriter

import (
	"bytes"
	"testing"
	"time"

	"github.com/bgrewell/iso-forge/pkg/filetree"
	"github.com/stretchr/testify/require"
)

func TestSelfAndParentRecords_RootIsOwnParent(t *testing.T) {
	root := &filetree.FilenameTreeNode{IsDir: true, DataPosNormal: 20, DataSizeNormal: 2048}

	self, parent := selfAndParentRecords(root, false, time.Now())
	require.Equal(t, uint32(20), self.LocationOfExtent)
	require.Equal(t, uint32(20), parent.LocationOfExtent)
	require.True(t, self.FileFlags.Directory)
	require.True(t, parent.FileFlags.Directory)
}

func TestSelfAndParentRecords_PointsAtParentExtent(t *testing.T) {
	root := &filetree.FilenameTreeNode{IsDir: true, DataPosNormal: 20, DataSizeNormal: 2048}
	dir := &filetree.FilenameTreeNode{IsDir: true, Parent: root, DataPosNormal: 25, DataSizeNormal: 2048}

	self, parent := selfAndParentRecords(dir, false, time.Now())
	require.Equal(t, uint32(25), self.LocationOfExtent)
	require.Equal(t, uint32(20), parent.LocationOfExtent)
}

func TestChildRecords_SingleExtentFile(t *testing.T) {
	child := &filetree.FilenameTreeNode{
		ISO9660Name:    []byte("FOO.TXT"),
		DataPosNormal:  30,
		DataSizeNormal: 100,
	}
	recs := childRecords(child, false, time.Now())
	require.Len(t, recs, 1)
	require.False(t, recs[0].FileFlags.MultiExtent)
	require.Equal(t, uint32(30), recs[0].LocationOfExtent)
}

func TestChildRecords_MultiExtentFile_FlagsAllButLast(t *testing.T) {
	child := &filetree.FilenameTreeNode{
		ISO9660Name: []byte("BIG.BIN"),
		ExtentChain: []filetree.Extent{
			{StartSector: 100, Length: 4096},
			{StartSector: 200, Length: 4096},
			{StartSector: 300, Length: 10},
		},
	}
	recs := childRecords(child, false, time.Now())
	require.Len(t, recs, 3)
	require.True(t, recs[0].FileFlags.MultiExtent)
	require.True(t, recs[1].FileFlags.MultiExtent)
	require.False(t, recs[2].FileFlags.MultiExtent)
	require.Equal(t, uint32(100), recs[0].LocationOfExtent)
	require.Equal(t, uint32(300), recs[2].LocationOfExtent)
	require.Equal(t, uint32(10), recs[2].DataLength)
}

func TestChildRecords_DirectoryNeverMultiExtent(t *testing.T) {
	child := &filetree.FilenameTreeNode{
		IsDir:       true,
		ISO9660Name: []byte("SUB"),
		ExtentChain: []filetree.Extent{{StartSector: 1, Length: 1}, {StartSector: 2, Length: 1}},
	}
	recs := childRecords(child, false, time.Now())
	require.Len(t, recs, 1)
	require.False(t, recs[0].FileFlags.MultiExtent)
}

func TestEmitDirectoryEntries_ProducesWholeSectors(t *testing.T) {
	root := &filetree.FilenameTreeNode{IsDir: true, DataPosNormal: 20, DataSizeNormal: 2048}
	child := &filetree.FilenameTreeNode{
		Parent:         root,
		ISO9660Name:    []byte("A.TXT"),
		DataPosNormal:  21,
		DataSizeNormal: 10,
	}
	root.Children = []*filetree.FilenameTreeNode{child}

	layout := &DirLayout{Node: root, SectorCount: sizeDirectoryRecords(root, false)}

	var buf bytes.Buffer
	err := EmitDirectoryEntries(&buf, layout, false, time.Now())
	require.NoError(t, err)
	require.Equal(t, int(layout.SectorCount)*2048, buf.Len())
}

func TestEmitDirectoryEntries_SkipsSkippedChildren(t *testing.T) {
	root := &filetree.FilenameTreeNode{IsDir: true, DataPosNormal: 20, DataSizeNormal: 2048}
	kept := &filetree.FilenameTreeNode{Parent: root, ISO9660Name: []byte("KEPT.TXT"), DataPosNormal: 21}
	dropped := &filetree.FilenameTreeNode{Parent: root, ISO9660Name: []byte("DROP.TXT"), Skipped: true}
	root.Children = []*filetree.FilenameTreeNode{kept, dropped}

	layout := &DirLayout{Node: root, SectorCount: sizeDirectoryRecords(root, false)}

	var buf bytes.Buffer
	err := EmitDirectoryEntries(&buf, layout, false, time.Now())
	require.NoError(t, err)
	require.Equal(t, int(layout.SectorCount)*2048, buf.Len())
}
