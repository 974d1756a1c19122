package dvdvideo

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func vmgHeaderBytes(lastSectorOfSet, lastSectorOfIFO uint32) []byte {
	buf := make([]byte, headerMinLength)
	copy(buf[offsetID:], vmgSignature)
	binary.BigEndian.PutUint32(buf[offsetLastSectorOfSet:], lastSectorOfSet)
	binary.BigEndian.PutUint32(buf[offsetLastSectorOfIFO:], lastSectorOfIFO)
	return buf
}

func vtsHeaderBytes(lastSectorOfSet, lastSectorOfIFO uint32) []byte {
	buf := make([]byte, headerMinLength)
	copy(buf[offsetID:], vtsSignature)
	binary.BigEndian.PutUint32(buf[offsetLastSectorOfSet:], lastSectorOfSet)
	binary.BigEndian.PutUint32(buf[offsetLastSectorOfIFO:], lastSectorOfIFO)
	return buf
}

func TestParseHeader(t *testing.T) {
	t.Run("recognizes VMG signature", func(t *testing.T) {
		h, err := ParseHeader(vmgHeaderBytes(999, 9))
		require.NoError(t, err)
		require.True(t, h.IsVMG)
		require.Equal(t, uint32(999), h.LastSectorOfSet)
		require.Equal(t, uint32(9), h.LastSectorOfIFO)
	})

	t.Run("recognizes VTS signature", func(t *testing.T) {
		h, err := ParseHeader(vtsHeaderBytes(500, 4))
		require.NoError(t, err)
		require.False(t, h.IsVMG)
	})

	t.Run("rejects short buffers", func(t *testing.T) {
		_, err := ParseHeader(make([]byte, headerMinLength-1))
		require.Error(t, err)
	})

	t.Run("rejects unrecognized signatures", func(t *testing.T) {
		buf := make([]byte, headerMinLength)
		copy(buf, "NOT-A-REAL-SIG")
		_, err := ParseHeader(buf)
		require.Error(t, err)
	})
}

func TestLayout_RejectsNonVMGRoot(t *testing.T) {
	vts, err := ParseHeader(vtsHeaderBytes(1, 0))
	require.NoError(t, err)
	_, err = Layout(vts, nil, SetSizes{})
	require.Error(t, err)
}

func TestLayout_VMGOnly_NoPaddingWhenExact(t *testing.T) {
	vmg, err := ParseHeader(vmgHeaderBytes(0, 0))
	require.NoError(t, err)

	entries, err := Layout(vmg, nil, SetSizes{VMG: GroupSizes{IFOSize: 1}})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "/VIDEO_TS/VIDEO_TS.IFO", entries[0].InternalPath)
	require.Equal(t, uint64(0), entries[0].DataPadSectors)
}

func TestLayout_VMGOnly_DerivesIFOPadding(t *testing.T) {
	// last sector of IFO = 2 (3 sectors announced), actual content is 1 sector.
	vmg, err := ParseHeader(vmgHeaderBytes(2, 2))
	require.NoError(t, err)

	entries, err := Layout(vmg, nil, SetSizes{VMG: GroupSizes{IFOSize: 1}})
	require.NoError(t, err)
	require.Equal(t, uint64(2), entries[0].DataPadSectors)
}

func TestLayout_WithVTSAndVOB(t *testing.T) {
	// VMG: exact, 1 sector.
	vmg, err := ParseHeader(vmgHeaderBytes(0, 0))
	require.NoError(t, err)

	// VTS: IFO is 1 sector exact (lastSectorOfIFO=0), VOB is 2 sectors,
	// BUP is 1 sector, set totals 4 sectors (0..3) with no extra padding.
	vts, err := ParseHeader(vtsHeaderBytes(3, 0))
	require.NoError(t, err)

	entries, err := Layout(vmg, []Header{vts}, SetSizes{
		VMG: GroupSizes{IFOSize: 1},
		VTS: []GroupSizes{{IFOSize: 1, VOBSize: sectorSize * 2, BUPSize: 1}},
	})
	require.NoError(t, err)
	require.Len(t, entries, 4) // VMG.IFO, VTS_01.IFO, VTS_01.VOB, VTS_01.BUP

	require.Equal(t, "/VIDEO_TS/VTS_01.IFO", entries[1].InternalPath)
	require.Equal(t, "/VIDEO_TS/VTS_01.VOB", entries[2].InternalPath)
	require.Equal(t, uint64(0), entries[2].DataPadSectors)
	require.Equal(t, "/VIDEO_TS/VTS_01.BUP", entries[3].InternalPath)
}

func TestLayout_MismatchedVTSCountFails(t *testing.T) {
	vmg, err := ParseHeader(vmgHeaderBytes(0, 0))
	require.NoError(t, err)
	vts, err := ParseHeader(vtsHeaderBytes(0, 0))
	require.NoError(t, err)

	_, err = Layout(vmg, []Header{vts}, SetSizes{VMG: GroupSizes{IFOSize: 1}})
	require.Error(t, err)
}

func TestLayout_InconsistentHeaderFails(t *testing.T) {
	// Header claims the IFO ends at sector 0 (1 sector), but the content is
	// actually 3 sectors: the announced last-sector value cannot be honored.
	vmg, err := ParseHeader(vmgHeaderBytes(0, 0))
	require.NoError(t, err)
	_, err = Layout(vmg, nil, SetSizes{VMG: GroupSizes{IFOSize: sectorSize*2 + 1}})
	require.Error(t, err)
}
