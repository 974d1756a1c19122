// Package dvdvideo parses the fixed-layout IFO headers DVD-Video requires
// (VIDEO_TS.IFO for the video manager, VTS_nn_0.IFO per title set) and
// derives the zero-sector padding the image director must insert after each
// .IFO/.VOB/.BUP file so the resulting on-disc layout matches what a
// DVD-Video player expects.
package dvdvideo

import (
	"encoding/binary"
	"fmt"
)

const (
	vmgSignature = "DVDVIDEO-VMG"
	vtsSignature = "DVDVIDEO-VTS"

	// Offsets within the fixed IFO header (ECMA/DVD-Video spec), all
	// big-endian.
	offsetID               = 0x00
	offsetLastSectorOfSet  = 0x0C
	offsetLastSectorOfIFO  = 0x1C
	headerMinLength        = 0x20
)

// Header is the minimal parsed shape of a VIDEO_TS.IFO / VTS_nn_0.IFO header
// that the builder needs in order to compute padding. LastSectorOfSet is the
// last logical sector of the entire video title set (VMG or one VTS);
// LastSectorOfIFO is the last sector of the .IFO file itself.
type Header struct {
	IsVMG           bool
	LastSectorOfSet uint32
	LastSectorOfIFO uint32
}

// ParseHeader parses the fixed 32-byte header common to VMGI and VTSI
// structures. data must contain at least the file's first headerMinLength
// bytes.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < headerMinLength {
		return Header{}, fmt.Errorf("dvdvideo: IFO header too short: got %d bytes, need %d", len(data), headerMinLength)
	}

	id := string(data[offsetID : offsetID+12])
	var isVMG bool
	switch id {
	case vmgSignature:
		isVMG = true
	case vtsSignature:
		isVMG = false
	default:
		return Header{}, fmt.Errorf("dvdvideo: unrecognized IFO signature %q", id)
	}

	return Header{
		IsVMG:           isVMG,
		LastSectorOfSet: binary.BigEndian.Uint32(data[offsetLastSectorOfSet : offsetLastSectorOfSet+4]),
		LastSectorOfIFO: binary.BigEndian.Uint32(data[offsetLastSectorOfIFO : offsetLastSectorOfIFO+4]),
	}, nil
}

// PadEntry is one file the layout pass must pad, and the zero-sector count
// to append after its data so the following file lands on the sector the
// IFO header announces.
type PadEntry struct {
	InternalPath   string
	DataPadSectors uint64
}

// Layout derives padding entries from a parsed VMG header and zero or more
// VTS headers, one per title set, in title-set order. The announced
// last-sector values are absolute within their own title set's three-file
// group (.IFO, first .VOB, .BUP); the padding keeps that group's total
// sector count consistent with what the header promises, regardless of the
// exact byte sizes the filesystem walker reported.
func Layout(vmg Header, vts []Header, sizes SetSizes) ([]PadEntry, error) {
	if !vmg.IsVMG {
		return nil, fmt.Errorf("dvdvideo: expected a VMG header, got a VTS header")
	}

	var out []PadEntry

	vmgEntries, err := padForSet("/VIDEO_TS/VIDEO_TS", vmg, sizes.VMG)
	if err != nil {
		return nil, fmt.Errorf("dvdvideo: VMG layout: %w", err)
	}
	out = append(out, vmgEntries...)

	if len(vts) != len(sizes.VTS) {
		return nil, fmt.Errorf("dvdvideo: %d VTS headers but %d VTS size sets", len(vts), len(sizes.VTS))
	}

	for i, h := range vts {
		if h.IsVMG {
			return nil, fmt.Errorf("dvdvideo: VTS_%02d_0.IFO carries a VMG signature", i+1)
		}
		prefix := fmt.Sprintf("/VIDEO_TS/VTS_%02d", i+1)
		entries, err := padForSet(prefix, h, sizes.VTS[i])
		if err != nil {
			return nil, fmt.Errorf("dvdvideo: VTS %d layout: %w", i+1, err)
		}
		out = append(out, entries...)
	}

	return out, nil
}

// SetSizes carries the filesystem-walker-reported byte sizes for each member
// of a title set's file group, which Layout compares against the header's
// announced sector counts to derive padding.
type SetSizes struct {
	VMG    GroupSizes
	VTS    []GroupSizes
}

// GroupSizes is the byte size of the .IFO, first .VOB, and .BUP in one
// title-set group. A VOBSize of 0 means no .VOB is present in that group.
type GroupSizes struct {
	IFOSize uint64
	VOBSize uint64
	BUPSize uint64
}

const sectorSize = 2048

func padForSet(prefix string, h Header, sizes GroupSizes) ([]PadEntry, error) {
	ifoSectors := ceilSectors(sizes.IFOSize)
	ifoPad := uint64(h.LastSectorOfIFO+1) - ifoSectors
	if int64(ifoPad) < 0 {
		return nil, fmt.Errorf("IFO at %s.IFO reports last sector %d smaller than its own content (%d sectors)", prefix, h.LastSectorOfIFO, ifoSectors)
	}

	entries := []PadEntry{
		{InternalPath: prefix + ".IFO", DataPadSectors: ifoPad},
	}

	if sizes.VOBSize > 0 {
		vobSectors := ceilSectors(sizes.VOBSize)
		setSectors := uint64(h.LastSectorOfSet + 1)
		consumedBeforeVOB := uint64(h.LastSectorOfIFO + 1)
		bupSectors := ceilSectors(sizes.BUPSize)
		if setSectors < consumedBeforeVOB+vobSectors+bupSectors {
			return nil, fmt.Errorf("%s: header last sector %d inconsistent with IFO+VOB+BUP content", prefix, h.LastSectorOfSet)
		}
		vobPad := setSectors - consumedBeforeVOB - vobSectors - bupSectors
		entries = append(entries, PadEntry{InternalPath: prefix + ".VOB", DataPadSectors: vobPad})
		entries = append(entries, PadEntry{InternalPath: prefix + ".BUP", DataPadSectors: 0})
	}

	return entries, nil
}

func ceilSectors(n uint64) uint64 {
	return (n + sectorSize - 1) / sectorSize
}
