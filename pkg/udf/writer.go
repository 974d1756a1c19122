// Package udf implements UDF 1.02 image construction (spec §4.6): the
// BEA01/NSR02/TEA01 initial descriptors, the main and reserve volume
// descriptor sequences, the anchor volume descriptor pointer (one per image,
// at sector 256; no trailing copy at the last sector), the logical
// volume integrity descriptor, the file set descriptor, and per-node file
// entries and identifiers. Reading back an existing UDF filesystem (the
// Open/UDF struct in udf.go) is a separate, still-stubbed surface inherited
// unimplemented from the teacher; this file only ever writes.
package udf

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/bgrewell/iso-forge/pkg/consts"
	"github.com/bgrewell/iso-forge/pkg/filetree"
	"github.com/bgrewell/iso-forge/pkg/iso9660/encoding"
	"github.com/bgrewell/iso-forge/pkg/udf/tagging"
)

const (
	sectorSize = consts.UDF_SECTOR_SIZE

	anchorSector1 = 256

	vdsLengthSectors = 16 // padded length of each volume descriptor sequence

	firstUniqueID = consts.UDF_FIRST_UNIQUE_ID
)

// Layout is the set of absolute sector positions the writer needs, assigned
// by the allocator before any descriptor bytes are produced.
type Layout struct {
	MainVDSStart    uint64
	ReserveVDSStart uint64
	LastSector      uint64 // last sector of the volume, for the trailing anchor

	PartitionStart  uint64
	PartitionLength uint64 // in sectors

	FileSetDescriptorSector uint64
	IntegritySector         uint64

	// RootFileEntrySector and the rest of the node layout are supplied via
	// NodeLayout, keyed by tree node.
}

// NodeLayout records, per filesystem node, the absolute sector(s) UDF needs:
// the node's File Entry sector, and for directories the sector/length of its
// file identifier descriptor stream.
type NodeLayout struct {
	FileEntrySector uint64
	DataSector      uint64 // file data extent, or the FID stream for a directory
	DataLength      uint64 // bytes
	UniqueID        uint64
}

// Config mirrors the subset of isowriter.Config the UDF writer needs plus
// its own volume identifier fields (spec §3 configuration record).
type Config struct {
	VolumeLabel string
	Timestamp   time.Time
}

func pad(b []byte, n int) []byte {
	out := make([]byte, n)
	copy(out, b)
	return out
}

// BuildBEA01 / BuildNSR02 / BuildTEA01 build the three CD-ROM Volume
// Structure Descriptors UDF requires; the director places them directly
// after the ISO 9660 volume descriptor set.
func BuildBEA01() [sectorSize]byte {
	return buildVolumeStructureDescriptor(0, "BEA01")
}

func BuildNSR02() [sectorSize]byte {
	return buildVolumeStructureDescriptor(0, "NSR02")
}

func BuildTEA01() [sectorSize]byte {
	return buildVolumeStructureDescriptor(0xFF, "TEA01")
}

func buildVolumeStructureDescriptor(structureType byte, identifier string) [sectorSize]byte {
	var sector [sectorSize]byte
	sector[0] = structureType
	copy(sector[1:6], identifier)
	sector[6] = 0x01
	return sector
}

// anchorBody is the 512-byte body of an Anchor Volume Descriptor Pointer:
// two extent descriptors (length, location) for the main and reserve volume
// descriptor sequences.
func anchorBody(mainStart, reserveStart uint64) []byte {
	b := make([]byte, 512-tagging.TagLength)
	binary.LittleEndian.PutUint32(b[0:4], uint32(vdsLengthSectors*sectorSize))
	binary.LittleEndian.PutUint32(b[4:8], uint32(mainStart))
	binary.LittleEndian.PutUint32(b[8:12], uint32(vdsLengthSectors*sectorSize))
	binary.LittleEndian.PutUint32(b[12:16], uint32(reserveStart))
	return b
}

// BuildAnchor builds one Anchor Volume Descriptor Pointer (ECMA-167 3/10.2),
// tagged with its own absolute sector location.
func BuildAnchor(location, mainVDSStart, reserveVDSStart uint64) []byte {
	body := anchorBody(mainVDSStart, reserveVDSStart)
	tag := tagging.Tag{
		Identifier: tagging.TagIdentifierAnchorVolumeDescriptorPointer,
		Version:    2,
		Location:   uint32(location),
	}
	return tag.Marshal(body)
}

// regID builds a 32-byte Entity Identifier (domain identifier) suffix-style:
// flags byte, 23-byte identifier, 8 bytes of identifier suffix.
func regID(identifier string) []byte {
	b := make([]byte, 32)
	copy(b[1:24], identifier)
	return b
}

// udfCompressedString encodes s as a UDF 8/16-bit compressed unicode dstring
// padded to length bytes (the last byte holds the source string's encoded
// byte count, per ECMA-167 1/7.2.12).
func udfCompressedString(s string, length int) []byte {
	b := make([]byte, length)
	body := make([]byte, 0, length-1)
	body = append(body, 8)
	for _, r := range s {
		if len(body) >= length-1 {
			break
		}
		body = append(body, byte(r))
	}
	n := copy(b, body)
	if length > 0 {
		b[length-1] = byte(n - 1)
	}
	return b
}

// buildPrimaryVolumeDescriptorBody builds a UDF Primary Volume Descriptor body
// (ECMA-167 3/10.1).
func buildPrimaryVolumeDescriptorBody(cfg Config, vdsNumber uint32) []byte {
	b := make([]byte, 512-tagging.TagLength)
	binary.LittleEndian.PutUint32(b[0:4], vdsNumber)
	binary.LittleEndian.PutUint32(b[4:8], 1) // primary volume descriptor number
	copy(b[8:40], udfCompressedString(cfg.VolumeLabel, 32))
	binary.LittleEndian.PutUint16(b[40:42], 1) // volume sequence number
	binary.LittleEndian.PutUint16(b[42:44], 1) // max volume sequence number
	binary.LittleEndian.PutUint16(b[44:46], 3) // interchange level
	binary.LittleEndian.PutUint16(b[46:48], 3) // max interchange level
	binary.LittleEndian.PutUint32(b[48:52], 1) // character set list
	binary.LittleEndian.PutUint32(b[52:56], 1) // max character set list
	copy(b[56:184], udfCompressedString(cfg.VolumeLabel, 128)) // volume set identifier
	ts := encoding.MarshalUDFTimestamp(cfg.Timestamp)
	copy(b[312:324], ts[:])
	copy(b[324:356], regID("*iso-forge UDF"))
	b[363] = 0 // predecessor VDS location, left zero: no predecessor
	return b
}

// BuildPrimaryVolumeDescriptor builds the tagged Primary Volume Descriptor.
func BuildPrimaryVolumeDescriptor(cfg Config, location uint64, vdsNumber uint32) []byte {
	body := buildPrimaryVolumeDescriptorBody(cfg, vdsNumber)
	tag := tagging.Tag{
		Identifier: tagging.TagIdentifierPrimaryVolumeDescriptor,
		Version:    2,
		Location:   uint32(location),
	}
	return tag.Marshal(body)
}

// BuildPartitionDescriptor builds the Partition Descriptor describing the
// single read-write partition this writer ever emits (ECMA-167 3/10.5).
func BuildPartitionDescriptor(location uint64, vdsNumber uint32, partitionStart, partitionLength uint64) []byte {
	b := make([]byte, 512-tagging.TagLength)
	binary.LittleEndian.PutUint32(b[0:4], vdsNumber)
	binary.LittleEndian.PutUint16(b[4:6], 1) // partition flags: allocated
	binary.LittleEndian.PutUint16(b[6:8], 0) // partition number
	copy(b[8:40], regID("*OSTA UDF Compliant"))
	binary.LittleEndian.PutUint16(b[40:42], 0) // access type: read/write
	binary.LittleEndian.PutUint32(b[44:48], uint32(partitionStart))
	binary.LittleEndian.PutUint32(b[48:52], uint32(partitionLength))

	tag := tagging.Tag{
		Identifier: tagging.TagIdentifierPartitionDescriptor,
		Version:    2,
		Location:   uint32(location),
	}
	return tag.Marshal(b)
}

// BuildLogicalVolumeDescriptor builds the Logical Volume Descriptor, mapping
// logical block 0 of the one logical volume onto the one partition
// (ECMA-167 3/10.6).
func BuildLogicalVolumeDescriptor(cfg Config, location uint64, vdsNumber uint32, integritySector, integrityLength uint64) []byte {
	b := make([]byte, 512-tagging.TagLength)
	binary.LittleEndian.PutUint32(b[0:4], vdsNumber)
	binary.LittleEndian.PutUint32(b[4:8], 1) // character set list
	copy(b[8:136], udfCompressedString(cfg.VolumeLabel, 128))
	binary.LittleEndian.PutUint32(b[136:140], sectorSize)
	copy(b[140:172], regID("*OSTA UDF Compliant"))

	// Partition map: type 1, length 6, partition number 0.
	pmOffset := 440
	binary.LittleEndian.PutUint32(b[212:216], 1)  // number of partition maps
	binary.LittleEndian.PutUint32(b[216:220], 6)  // map table length
	b[pmOffset] = 1
	b[pmOffset+1] = 6
	binary.LittleEndian.PutUint16(b[pmOffset+2:pmOffset+4], 0) // volume sequence number
	binary.LittleEndian.PutUint16(b[pmOffset+4:pmOffset+6], 0) // partition number

	binary.LittleEndian.PutUint32(b[432:436], uint32(integrityLength))
	binary.LittleEndian.PutUint32(b[436:440], uint32(integritySector))

	tag := tagging.Tag{
		Identifier: tagging.TagIdentifierLogicalVolumeDescriptor,
		Version:    2,
		Location:   uint32(location),
	}
	return tag.Marshal(b)
}

// BuildUnallocatedSpaceDescriptor builds an empty Unallocated Space
// Descriptor (this writer never leaves unallocated space inside the
// partition it describes, so the descriptor always has zero entries).
func BuildUnallocatedSpaceDescriptor(location uint64, vdsNumber uint32) []byte {
	b := make([]byte, 512-tagging.TagLength)
	binary.LittleEndian.PutUint32(b[0:4], vdsNumber)
	tag := tagging.Tag{
		Identifier: tagging.TagIdentifierUnallocatedSpaceDescriptor,
		Version:    2,
		Location:   uint32(location),
	}
	return tag.Marshal(b)
}

// BuildTerminatingDescriptor marks the end of a volume descriptor sequence.
func BuildTerminatingDescriptor(location uint64) []byte {
	b := make([]byte, 512-tagging.TagLength)
	tag := tagging.Tag{
		Identifier: tagging.TagIdentifierTerminatingDescriptor,
		Version:    2,
		Location:   uint32(location),
	}
	return tag.Marshal(b)
}

// BuildLogicalVolumeIntegrityDescriptor builds the integrity descriptor
// recording this is a closed ("consistent") volume and the next free unique
// ID to hand out (ECMA-167 3/10.10).
func BuildLogicalVolumeIntegrityDescriptor(location uint64, ts time.Time, nextUniqueID uint64, numFiles, numDirs uint32) []byte {
	b := make([]byte, 512-tagging.TagLength)
	timestamp := encoding.MarshalUDFTimestamp(ts)
	copy(b[0:12], timestamp[:])
	binary.LittleEndian.PutUint32(b[12:16], 1) // integrity type: close
	binary.LittleEndian.PutUint32(b[40:48], 0) // next unique ID low
	binary.LittleEndian.PutUint32(b[44:48], uint32(nextUniqueID))
	binary.LittleEndian.PutUint32(b[48:52], 0) // size table: num partitions
	binary.LittleEndian.PutUint32(b[56:60], numFiles)
	binary.LittleEndian.PutUint32(b[60:64], numDirs)

	tag := tagging.Tag{
		Identifier: tagging.TagIdentifierLogicalVolumeIntegrityDesc,
		Version:    2,
		Location:   uint32(location),
	}
	return tag.Marshal(b)
}

// BuildFileSetDescriptor builds the File Set Descriptor, pointing at the
// root directory's File Identifier Descriptor stream (ECMA-167 4/14.1).
func BuildFileSetDescriptor(location uint64, ts time.Time, rootFileEntrySector uint64) []byte {
	b := make([]byte, 512-tagging.TagLength)
	timestamp := encoding.MarshalUDFTimestamp(ts)
	copy(b[0:12], timestamp[:])
	binary.LittleEndian.PutUint16(b[12:14], 3) // interchange level
	binary.LittleEndian.PutUint16(b[14:16], 3) // max interchange level
	binary.LittleEndian.PutUint32(b[20:24], 1) // character set list
	binary.LittleEndian.PutUint32(b[24:28], 1) // max character set list
	binary.LittleEndian.PutUint32(b[28:32], 0) // file set number
	binary.LittleEndian.PutUint32(b[32:36], 0) // file set desc number

	// root directory ICB: long_ad{extent length, extent location (partition 0, lbn), implementation use}
	icbOffset := 400
	binary.LittleEndian.PutUint32(b[icbOffset:icbOffset+4], sectorSize)
	binary.LittleEndian.PutUint32(b[icbOffset+4:icbOffset+8], uint32(rootFileEntrySector))
	binary.LittleEndian.PutUint16(b[icbOffset+8:icbOffset+10], 0) // partition reference number

	tag := tagging.Tag{
		Identifier: tagging.TagIdentifierFileSetDescriptor,
		Version:    2,
		Location:   uint32(location),
	}
	return tag.Marshal(b)
}

// shortAD builds a short_ad (8 bytes): extent length (with 2-bit type in the
// high bits left zero, "recorded and allocated") and extent position.
func shortAD(length uint32, position uint32) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint32(b[0:4], length)
	binary.LittleEndian.PutUint32(b[4:8], position)
	return b
}

// FileEntryKind distinguishes directory from regular-file ICB tags.
type FileEntryKind int

const (
	KindDirectory FileEntryKind = iota
	KindFile
)

// BuildFileEntry builds a File Entry (ECMA-167 4/14.9): ICB tag, permissions,
// timestamps, and a single allocation descriptor pointing at the node's data
// (file data for a plain file, the FID stream for a directory).
func BuildFileEntry(location uint64, kind FileEntryKind, uniqueID uint64, ts time.Time, dataSector uint64, dataLength uint64) []byte {
	b := make([]byte, 512-tagging.TagLength)

	// ICB tag (20 bytes).
	fileType := byte(5) // directory
	if kind == KindFile {
		fileType = 4
	}
	binary.LittleEndian.PutUint32(b[0:4], 0)   // prior recorded number of direct entries
	binary.LittleEndian.PutUint16(b[4:6], 4)   // strategy type: 4
	binary.LittleEndian.PutUint16(b[8:10], 0)  // strategy parameter
	binary.LittleEndian.PutUint16(b[10:12], 1) // max number of entries
	b[13] = fileType
	binary.LittleEndian.PutUint16(b[16:18], 0) // flags

	binary.LittleEndian.PutUint32(b[20:24], 0)      // uid
	binary.LittleEndian.PutUint32(b[24:28], 0)      // gid
	binary.LittleEndian.PutUint32(b[28:32], 0x1CA5) // permissions: rwxr-xr-x equivalent bitfield
	binary.LittleEndian.PutUint16(b[32:34], 1)      // file link count
	binary.LittleEndian.PutUint64(b[40:48], dataLength)
	binary.LittleEndian.PutUint64(b[48:56], (dataLength+sectorSize-1)/sectorSize*sectorSize)

	tsBytes := encoding.MarshalUDFTimestamp(ts)
	copy(b[56:68], tsBytes[:])  // access time
	copy(b[68:80], tsBytes[:])  // modification time
	copy(b[80:92], tsBytes[:])  // attribute time
	binary.LittleEndian.PutUint32(b[92:96], 0) // checkpoint
	binary.LittleEndian.PutUint64(b[104:112], uniqueID)

	adLength := 176
	binary.LittleEndian.PutUint32(b[168:172], uint32(adLength)) // extended attr length
	binary.LittleEndian.PutUint32(b[172:176], 8)                // allocation descriptor length (one short_ad)
	copy(b[176+168:176+176], shortAD(uint32(dataLength), uint32(dataSector)))

	tag := tagging.Tag{
		Identifier: tagging.TagIdentifierFileEntry,
		Version:    2,
		Location:   uint32(location),
	}
	return tag.Marshal(b)
}

// BuildFileIdentifierDescriptor builds one File Identifier Descriptor
// (directory entry) for name, pointing at the child's File Entry
// (ECMA-167 4/14.4). isParent marks the reserved ".." entry.
func BuildFileIdentifierDescriptor(name string, isDir, isParent bool, childFileEntrySector uint64) []byte {
	var nameBytes []byte
	if !isParent {
		nameBytes = udfCompressedString(name, len(name)+1)
	}

	fileCharacteristics := byte(0)
	if isDir {
		fileCharacteristics |= 0x02
	}
	if isParent {
		fileCharacteristics |= 0x08
	}

	body := make([]byte, 0, 38+len(nameBytes))
	fixed := make([]byte, 38)
	binary.LittleEndian.PutUint16(fixed[0:2], 0) // file version number
	fixed[2] = fileCharacteristics
	fixed[3] = byte(len(nameBytes))
	// ICB (short_ad, 8 bytes at offset 4) — only first 4 of its 8 bytes
	// are length, the rest position.
	copy(fixed[4:12], shortAD(sectorSize, uint32(childFileEntrySector)))
	binary.LittleEndian.PutUint16(fixed[12:14], 0) // implementation use length
	body = append(body, fixed...)
	body = append(body, nameBytes...)

	for len(body)%4 != 0 {
		body = append(body, 0)
	}

	tag := tagging.Tag{
		Identifier: tagging.TagIdentifierFileIdentifierDescriptor,
		Version:    2,
	}
	return tag.Marshal(body)
}

// EstimateFileIdentifierSize returns the padded byte length a File
// Identifier Descriptor for name will occupy, for sizing passes.
func EstimateFileIdentifierSize(name string, isParent bool) int {
	nameLen := 0
	if !isParent {
		nameLen = len(name) + 1
	}
	total := tagging.TagLength + 38 + nameLen
	for total%4 != 0 {
		total++
	}
	return total
}

// AssignUniqueIDs walks the tree depth-first and assigns each node a UDF
// unique ID starting at firstUniqueID (0-15 are reserved, spec §4.6).
func AssignUniqueIDs(tree *filetree.Tree) (next uint64, err error) {
	id := uint64(firstUniqueID)
	err = tree.Walk(func(n *filetree.FilenameTreeNode, depth int) error {
		if n.Skipped {
			return nil
		}
		n.UDFUniqueID = id
		id++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("udf: assigning unique ids: %w", err)
	}
	return id, nil
}
