package isowriter

import (
	"encoding/binary"
	"fmt"

	"github.com/bgrewell/iso-forge/pkg/consts"
	"github.com/bgrewell/iso-forge/pkg/filetree"
	"github.com/bgrewell/iso-forge/pkg/iso9660/descriptor"
	"github.com/bgrewell/iso-forge/pkg/iso9660/directory"
	"github.com/bgrewell/iso-forge/pkg/iso9660/encoding"
)

// VolumeLayout carries everything the descriptor builders need to know
// about the image's overall shape once the allocator has run.
type VolumeLayout struct {
	VolumeSpaceSize uint32

	PathTableSizeNormal uint32
	LocTypeLNormal      uint32
	LocTypeMNormal      uint32

	PathTableSizeJoliet uint32
	LocTypeLJoliet      uint32
	LocTypeMJoliet      uint32

	BootCatalogSector uint32 // 0 if no El Torito
}

// rootRecord builds the 34-byte directory record a volume descriptor embeds
// for its own root directory.
func rootRecord(root *filetree.FilenameTreeNode, joliet bool) *directory.DirectoryRecord {
	return &directory.DirectoryRecord{
		LocationOfExtent: uint32(extentOf(root, joliet)),
		DataLength:       uint32(sizeOf(root, joliet)),
		FileFlags:        directory.FileFlags{Directory: true},
		FileIdentifier:   string([]byte{0x00}),
	}
}

// BuildPrimaryDescriptor constructs the primary volume descriptor (spec
// §4.5/§6.2). Timestamps come from cfg.Timestamp; expiration/effective are
// left zero, which encoding.MarshalDateTime renders as the ASCII-zero
// "unspecified" sentinel.
func BuildPrimaryDescriptor(cfg Config, root *filetree.FilenameTreeNode, layout VolumeLayout) *descriptor.PrimaryVolumeDescriptor {
	return &descriptor.PrimaryVolumeDescriptor{
		VolumeDescriptorHeader: descriptor.VolumeDescriptorHeader{
			VolumeDescriptorType:    descriptor.TYPE_PRIMARY_DESCRIPTOR,
			StandardIdentifier:      consts.ISO9660_STD_IDENTIFIER,
			VolumeDescriptorVersion: consts.ISO9660_VOLUME_DESC_VERSION,
		},
		PrimaryVolumeDescriptorBody: descriptor.PrimaryVolumeDescriptorBody{
			SystemIdentifier:                 cfg.SystemIdent,
			VolumeIdentifier:                 cfg.VolumeLabel,
			VolumeSpaceSize:                  layout.VolumeSpaceSize,
			VolumeSetSize:                    1,
			VolumeSequenceNumber:             1,
			LogicalBlockSize:                 consts.ISO9660_SECTOR_SIZE,
			PathTableSize:                    layout.PathTableSizeNormal,
			LocationOfTypeLPathTable:         layout.LocTypeLNormal,
			LocationOfTypeMPathTable:         layout.LocTypeMNormal,
			RootDirectoryRecord:              rootRecord(root, false),
			VolumeSetIdentifier:              cfg.VolumeSetIdent,
			PublisherIdentifier:              cfg.Publisher,
			DataPreparerIdentifier:           cfg.Preparer,
			ApplicationIdentifier:            cfg.Application,
			CopyrightFileIdentifier:          cfg.CopyrightFile,
			AbstractFileIdentifier:           cfg.AbstractFile,
			BibliographicFileIdentifier:      cfg.BibliographicFile,
			VolumeCreationDateAndTime:        cfg.Timestamp,
			VolumeModificationDateAndTime:    cfg.Timestamp,
			FileStructureVersion:             1,
		},
	}
}

// jolietEscapeSequence returns the level-3 Joliet escape sequence this
// builder always emits (spec §4.5 "25 2F 45"), placed at the start of the
// 32-byte escape-sequence field with the remaining bytes zero.
func jolietEscapeSequence() [32]byte {
	var b [32]byte
	copy(b[:], []byte{0x25, 0x2F, 0x45})
	return b
}

// BuildSupplementaryDescriptor constructs the Joliet supplementary volume
// descriptor by mirroring the primary template and overwriting type,
// version, and the escape-sequence field (spec §4.5).
func BuildSupplementaryDescriptor(cfg Config, root *filetree.FilenameTreeNode, layout VolumeLayout) *descriptor.SupplementaryVolumeDescriptor {
	version := uint8(1)
	if cfg.Enhanced1999 {
		version = 2
	}

	return &descriptor.SupplementaryVolumeDescriptor{
		VolumeDescriptorHeader: descriptor.VolumeDescriptorHeader{
			VolumeDescriptorType:    descriptor.TYPE_SUPPLEMENTARY_DESCRIPTOR,
			StandardIdentifier:      consts.ISO9660_STD_IDENTIFIER,
			VolumeDescriptorVersion: version,
		},
		SupplementaryVolumeDescriptorBody: descriptor.SupplementaryVolumeDescriptorBody{
			SystemIdentifier:              cfg.SystemIdent,
			VolumeIdentifier:              cfg.VolumeLabel,
			VolumeSpaceSize:               encoding.MarshalBothByteOrders32(layout.VolumeSpaceSize),
			EscapeSequences:               jolietEscapeSequence(),
			VolumeSetSize:                 encoding.MarshalBothByteOrders16(1),
			VolumeSequenceNumber:          encoding.MarshalBothByteOrders16(1),
			LogicalBlockSize:              encoding.MarshalBothByteOrders16(consts.ISO9660_SECTOR_SIZE),
			PathTableSize:                 layout.PathTableSizeJoliet,
			LocationOfTypeLPathTable:      layout.LocTypeLJoliet,
			LocationOfTypeMPathTable:      layout.LocTypeMJoliet,
			RootDirectoryRecord:           rootRecord(root, true),
			VolumeSetIdentifier:           cfg.VolumeSetIdent,
			PublisherIdentifier:           cfg.Publisher,
			DataPreparerIdentifier:        cfg.Preparer,
			ApplicationIdentifier:         cfg.Application,
			CopyrightFileIdentifier:       cfg.CopyrightFile,
			AbstractFileIdentifier:        cfg.AbstractFile,
			BibliographicFileIdentifier:   cfg.BibliographicFile,
			VolumeCreationDateAndTime:     cfg.Timestamp,
			VolumeModificationDateAndTime: cfg.Timestamp,
			FileStructureVersion:          version,
		},
	}
}

// BuildBootRecordDescriptor constructs the El Torito boot-record descriptor
// at sector 17, pointing at the boot catalog sector.
func BuildBootRecordDescriptor(bootCatalogSector uint32) *descriptor.BootRecordDescriptor {
	d := &descriptor.BootRecordDescriptor{
		VolumeDescriptorHeader: descriptor.VolumeDescriptorHeader{
			VolumeDescriptorType:    descriptor.TYPE_BOOT_RECORD,
			StandardIdentifier:      consts.ISO9660_STD_IDENTIFIER,
			VolumeDescriptorVersion: consts.ISO9660_VOLUME_DESC_VERSION,
		},
		BootRecordBody: descriptor.BootRecordBody{
			BootSystemIdentifier: consts.EL_TORITO_BOOT_SYSTEM_ID,
		},
	}
	binary.LittleEndian.PutUint32(d.BootRecordBody.BootSystemUse[0:4], bootCatalogSector)
	return d
}

// BuildTerminator constructs the volume descriptor set terminator.
func BuildTerminator() *descriptor.VolumeDescriptorSetTerminator {
	return descriptor.NewVolumeDescriptorSetTerminator()
}

// MarshalDescriptorSequence marshals descriptors (primary, optional
// boot-record, optional Joliet supplementary, terminator) into consecutive
// 2048-byte sectors, in the order they're given.
func MarshalDescriptorSequence(descriptors ...interface {
	Marshal() ([consts.ISO9660_SECTOR_SIZE]byte, error)
}) ([]byte, error) {
	out := make([]byte, 0, len(descriptors)*consts.ISO9660_SECTOR_SIZE)
	for i, d := range descriptors {
		sector, err := d.Marshal()
		if err != nil {
			return nil, fmt.Errorf("isowriter: marshal descriptor %d: %w", i, err)
		}
		out = append(out, sector[:]...)
	}
	return out, nil
}
