package builder

import (
	"io"

	"github.com/bgrewell/iso-forge/pkg/consts"
	"github.com/bgrewell/iso-forge/pkg/filetree"
	"github.com/bgrewell/iso-forge/pkg/sectoralloc"
	"github.com/bgrewell/iso-forge/pkg/udf"
)

// udfLocations records the absolute sector positions of every fixed UDF
// structure, assigned in allocateUDFBridge.
type udfLocations struct {
	bridgeStart     uint64 // BEA01/NSR02/TEA01, 3 sectors
	mainVDS         uint64
	reserveVDS      uint64
	anchorSector    uint64
	fileSetDescSec  uint64
	integritySec    uint64
	partitionStart  uint64
}

const anchorFixedSector = 256

// allocateUDFBridge lays out the structures that precede the UDF partition:
// the ISO 9660 bridge identifiers, the main and reserve volume descriptor
// sequences (each padded to vdsLengthSectors), and the anchor volume
// descriptor pointer, which UDF fixes at sector 256 (spec §4.6).
func (d *Director) allocateUDFBridge(alloc *sectoralloc.Allocator) udfLocations {
	var loc udfLocations
	loc.bridgeStart = alloc.AllocSectors(clientUDF, tagUDFBridge, 3)
	loc.mainVDS = alloc.AllocSectors(clientUDF, tagUDFMainVDS, 16)
	loc.reserveVDS = alloc.AllocSectors(clientUDF, tagUDFReserveVDS, 16)

	if next := alloc.NextFree(); next < anchorFixedSector {
		alloc.AllocSectors(clientUDF, tagUDFPadToAnchor, anchorFixedSector-next)
	}
	loc.anchorSector = alloc.AllocSectors(clientUDF, tagUDFAnchor, 1)

	loc.fileSetDescSec = alloc.AllocSectors(clientUDF, tagUDFFileSetDescriptor, 1)
	loc.integritySec = alloc.AllocSectors(clientUDF, tagUDFIntegrity, 1)
	loc.partitionStart = alloc.NextFree()
	return loc
}

// sizeUDFNodes allocates one File Entry sector per filesystem node, plus
// (for directories) a sector-rounded region for its File Identifier
// Descriptor stream.
func (d *Director) sizeUDFNodes(tree *filetree.Tree, alloc *sectoralloc.Allocator, nodes map[*filetree.FilenameTreeNode]*udfNodeInfo) {
	tree.Walk(func(n *filetree.FilenameTreeNode, depth int) error {
		if n.Skipped {
			return nil
		}
		info := &udfNodeInfo{}
		info.fileEntrySector = alloc.AllocSectors(clientUDF, tagUDFPerNode, 1)

		if n.IsDir {
			size := udf.EstimateFileIdentifierSize("", true) // ".." entry
			for _, c := range n.Children {
				if c.Skipped {
					continue
				}
				size += udf.EstimateFileIdentifierSize(c.Name, false)
			}
			sectors := (uint64(size) + consts.UDF_SECTOR_SIZE - 1) / consts.UDF_SECTOR_SIZE
			if sectors == 0 {
				sectors = 1
			}
			info.dataSector = alloc.AllocSectors(clientUDF, tagUDFPerNode, sectors)
			info.dataLength = uint64(size)
		} else {
			// File data is shared with the ISO 9660/Joliet extent,
			// assigned later in sizeFileData; recorded there.
		}
		nodes[n] = info
		return nil
	})
}

// emitUDF writes the bridge identifiers, volume descriptor sequences,
// anchor, file set descriptor, integrity descriptor, and per-node file
// entries/identifier streams.
func (d *Director) emitUDF(out io.WriterAt, tree *filetree.Tree, loc udfLocations, nodes map[*filetree.FilenameTreeNode]*udfNodeInfo) error {
	writeAt := func(sector uint64, data []byte) error {
		_, err := out.WriteAt(data, int64(sector)*consts.UDF_SECTOR_SIZE)
		return err
	}

	bea := udf.BuildBEA01()
	nsr := udf.BuildNSR02()
	tea := udf.BuildTEA01()
	if err := writeAt(loc.bridgeStart, bea[:]); err != nil {
		return err
	}
	if err := writeAt(loc.bridgeStart+1, nsr[:]); err != nil {
		return err
	}
	if err := writeAt(loc.bridgeStart+2, tea[:]); err != nil {
		return err
	}

	udfCfg := udf.Config{VolumeLabel: d.cfg.VolumeLabel, Timestamp: d.cfg.Timestamp}

	root := tree.Root
	rootInfo := nodes[root]

	writeSequence := func(base uint64) error {
		pvd := udf.BuildPrimaryVolumeDescriptor(udfCfg, base, 1)
		if err := writeAt(base, pvd); err != nil {
			return err
		}
		partLen := uint64(0)
		if nextFreeInfo := lastUDFSector(nodes); nextFreeInfo > loc.partitionStart {
			partLen = nextFreeInfo - loc.partitionStart
		}
		pd := udf.BuildPartitionDescriptor(base+1, 2, loc.partitionStart, partLen)
		if err := writeAt(base+1, pd); err != nil {
			return err
		}
		lvd := udf.BuildLogicalVolumeDescriptor(udfCfg, base+2, 3, loc.integritySec, 1)
		if err := writeAt(base+2, lvd); err != nil {
			return err
		}
		usd := udf.BuildUnallocatedSpaceDescriptor(base+3, 4)
		if err := writeAt(base+3, usd); err != nil {
			return err
		}
		term := udf.BuildTerminatingDescriptor(base + 4)
		return writeAt(base+4, term)
	}

	if err := writeSequence(loc.mainVDS); err != nil {
		return err
	}
	if err := writeSequence(loc.reserveVDS); err != nil {
		return err
	}

	anchor := udf.BuildAnchor(loc.anchorSector, loc.mainVDS, loc.reserveVDS)
	if err := writeAt(loc.anchorSector, anchor); err != nil {
		return err
	}

	fsd := udf.BuildFileSetDescriptor(loc.fileSetDescSec, d.cfg.Timestamp, rootInfo.fileEntrySector)
	if err := writeAt(loc.fileSetDescSec, fsd); err != nil {
		return err
	}

	nextUniqueID, _ := udf.AssignUniqueIDs(tree)
	integrity := udf.BuildLogicalVolumeIntegrityDescriptor(loc.integritySec, d.cfg.Timestamp, nextUniqueID, uint32(countFiles(tree)), uint32(countDirs(tree)))
	if err := writeAt(loc.integritySec, integrity); err != nil {
		return err
	}

	return tree.Walk(func(n *filetree.FilenameTreeNode, depth int) error {
		if n.Skipped {
			return nil
		}
		info := nodes[n]
		kind := udf.KindFile
		dataSector, dataLength := n.DataPosNormal, n.DataSizeNormal
		if n.IsDir {
			kind = udf.KindDirectory
			dataSector, dataLength = info.dataSector, info.dataLength
		}

		entry := udf.BuildFileEntry(info.fileEntrySector, kind, n.UDFUniqueID, d.cfg.Timestamp, dataSector, dataLength)
		if err := writeAt(info.fileEntrySector, entry); err != nil {
			return err
		}

		if !n.IsDir {
			return nil
		}

		fidStream := make([]byte, 0, dataLength)
		parentInfo := nodes[root]
		if n.Parent != nil {
			parentInfo = nodes[n.Parent]
		}
		fidStream = append(fidStream, udf.BuildFileIdentifierDescriptor("", true, true, parentInfo.fileEntrySector)...)
		for _, c := range n.Children {
			if c.Skipped {
				continue
			}
			childInfo := nodes[c]
			fidStream = append(fidStream, udf.BuildFileIdentifierDescriptor(c.Name, c.IsDir, false, childInfo.fileEntrySector)...)
		}
		return writeAt(info.dataSector, fidStream)
	})
}

func lastUDFSector(nodes map[*filetree.FilenameTreeNode]*udfNodeInfo) uint64 {
	var max uint64
	for _, n := range nodes {
		if n.fileEntrySector > max {
			max = n.fileEntrySector
		}
		if n.dataSector > max {
			max = n.dataSector
		}
	}
	return max + 1
}

func countFiles(tree *filetree.Tree) int {
	n := 0
	tree.Walk(func(node *filetree.FilenameTreeNode, depth int) error {
		if !node.IsDir && !node.Skipped {
			n++
		}
		return nil
	})
	return n
}

func countDirs(tree *filetree.Tree) int {
	n := 0
	tree.Walk(func(node *filetree.FilenameTreeNode, depth int) error {
		if node.IsDir && !node.Skipped {
			n++
		}
		return nil
	})
	return n
}
