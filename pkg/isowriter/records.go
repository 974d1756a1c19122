package isowriter

import (
	"fmt"
	"io"
	"time"

	"github.com/bgrewell/iso-forge/pkg/consts"
	"github.com/bgrewell/iso-forge/pkg/filetree"
	"github.com/bgrewell/iso-forge/pkg/iso9660/directory"
)

// buildRecord constructs one directory record. name is the already-frozen,
// namespace-specific name bytes (or nil for self/parent, which use the
// reserved 0x00/0x01 identifiers); extentLoc/dataLen describe the extent
// this record points at; multiExtent marks all but the last record of a
// fragmented file's chain.
func buildRecord(name []byte, isDir bool, extentLoc, dataLen uint32, ts time.Time, multiExtent bool) *directory.DirectoryRecord {
	identifier := string(name)
	return &directory.DirectoryRecord{
		LocationOfExtent:     extentLoc,
		DataLength:           dataLen,
		RecordingDateAndTime: ts,
		FileFlags: directory.FileFlags{
			Directory:   isDir,
			MultiExtent: multiExtent,
		},
		FileIdentifier: identifier,
	}
}

// selfAndParentRecords returns the `.` and `..` records for dir, pointing at
// dir's own extent and its parent's (the root's parent is itself).
func selfAndParentRecords(dir *filetree.FilenameTreeNode, joliet bool, ts time.Time) (self, parent *directory.DirectoryRecord) {
	selfLoc := uint32(extentOf(dir, joliet))
	selfLen := uint32(sizeOf(dir, joliet))

	parentNode := dir.Parent
	if parentNode == nil {
		parentNode = dir
	}
	parentLoc := uint32(extentOf(parentNode, joliet))
	parentLen := uint32(sizeOf(parentNode, joliet))

	self = buildRecord([]byte{0x00}, true, selfLoc, selfLen, ts, false)
	parent = buildRecord([]byte{0x01}, true, parentLoc, parentLen, ts, false)
	return
}

func extentOf(n *filetree.FilenameTreeNode, joliet bool) uint64 {
	if joliet {
		return n.DataPosJoliet
	}
	return n.DataPosNormal
}

func sizeOf(n *filetree.FilenameTreeNode, joliet bool) uint64 {
	if joliet {
		return n.DataSizeJoliet
	}
	return n.DataSizeNormal
}

// childRecords returns the directory records for one child, including a
// repeated record per extent of a multi-extent file.
func childRecords(child *filetree.FilenameTreeNode, joliet bool, ts time.Time) []*directory.DirectoryRecord {
	name := nameOf(child, joliet)

	if child.IsDir || len(child.ExtentChain) <= 1 {
		return []*directory.DirectoryRecord{
			buildRecord(name, child.IsDir, uint32(extentOf(child, joliet)), uint32(sizeOf(child, joliet)), ts, false),
		}
	}

	records := make([]*directory.DirectoryRecord, 0, len(child.ExtentChain))
	for i, ext := range child.ExtentChain {
		records = append(records, buildRecord(name, false, uint32(ext.StartSector), uint32(ext.Length), ts, i != len(child.ExtentChain)-1))
	}
	return records
}

// EmitDirectoryEntries writes one directory's `.`, `..`, and child records
// into w, packed into whole sectors without crossing a sector boundary
// (spec §4.5) and zero-padded to the directory's allocated sector count.
func EmitDirectoryEntries(w io.Writer, layout *DirLayout, joliet bool, ts time.Time) error {
	const sectorSize = consts.ISO9660_SECTOR_SIZE

	self, parent := selfAndParentRecords(layout.Node, joliet, ts)
	records := []*directory.DirectoryRecord{self, parent}
	for _, child := range layout.Node.Children {
		if child.Skipped {
			continue
		}
		records = append(records, childRecords(child, joliet, ts)...)
	}

	buf := make([]byte, 0, layout.SectorCount*sectorSize)
	sectorOffset := 0

	flushPad := func() {
		pad := sectorSize - sectorOffset
		for i := 0; i < pad; i++ {
			buf = append(buf, 0)
		}
		sectorOffset = 0
	}

	for _, rec := range records {
		rb, err := rec.Marshal()
		if err != nil {
			return fmt.Errorf("isowriter: marshal directory record for %q: %w", layout.Node.Name, err)
		}
		if sectorOffset+len(rb) > sectorSize {
			flushPad()
		}
		buf = append(buf, rb...)
		sectorOffset += len(rb)
	}
	if sectorOffset != 0 {
		flushPad()
	}

	want := int(layout.SectorCount) * sectorSize
	if len(buf) != want {
		return fmt.Errorf("isowriter: directory %q produced %d bytes, expected %d (sector count mismatch with sizing pass)", layout.Node.Name, len(buf), want)
	}

	_, err := w.Write(buf)
	return err
}
