package sectoralloc

import (
	"testing"

	"github.com/bgrewell/iso-forge/pkg/consts"
	"github.com/stretchr/testify/require"
)

func TestAllocSectors(t *testing.T) {
	a := New(0)
	s1 := a.AllocSectors("iso9660", 1, 3)
	s2 := a.AllocSectors("iso9660", 2, 5)
	require.Equal(t, uint64(0), s1)
	require.Equal(t, uint64(3), s2)
	require.Equal(t, uint64(8), a.NextFree())

	got, ok := a.StartOf("iso9660", 1)
	require.True(t, ok)
	require.Equal(t, uint64(0), got)

	_, ok = a.StartOf("udf", 1)
	require.False(t, ok)
}

func TestAllocBytes_RoundsUpToWholeSectors(t *testing.T) {
	a := New(0)
	start := a.AllocBytes("iso9660", 1, consts.ISO9660_SECTOR_SIZE+1)
	require.Equal(t, uint64(0), start)
	require.Equal(t, uint64(2), a.NextFree())
}

func TestAllocDataSectors(t *testing.T) {
	a := New(0)
	a.AllocSectors("iso9660", 1, 10)
	dataStart := a.AllocDataSectors(100)
	require.Equal(t, uint64(10), dataStart)
	require.Equal(t, uint64(10), a.DataStart())
	require.Equal(t, uint64(100), a.DataLen())
	require.Equal(t, uint64(110), a.NextFree())
}

func TestNew_SessionOffset(t *testing.T) {
	a := New(16)
	start := a.AllocSectors("iso9660", 1, 5)
	require.Equal(t, uint64(16), start)
	require.Equal(t, uint64(21), a.NextFree())
}

func TestCheckFits(t *testing.T) {
	a := New(0)
	require.NoError(t, a.CheckFits())

	a.AllocSectors("iso9660", 1, 0x100000000)
	require.Error(t, a.CheckFits())
}
