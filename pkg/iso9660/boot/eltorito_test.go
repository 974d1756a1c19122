package boot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateFloppySize(t *testing.T) {
	t.Run("no emulation never fails", func(t *testing.T) {
		require.NoError(t, ValidateFloppySize(NoEmulation, 12345))
	})

	t.Run("1.44MB floppy requires an exact match", func(t *testing.T) {
		require.NoError(t, ValidateFloppySize(Floppy144Emulation, 1440*1024))
		require.Error(t, ValidateFloppySize(Floppy144Emulation, 1440*1024-1))
	})

	t.Run("1.2MB and 2.88MB floppies are checked independently", func(t *testing.T) {
		require.NoError(t, ValidateFloppySize(Floppy12Emulation, 1200*1024))
		require.Error(t, ValidateFloppySize(Floppy12Emulation, 1440*1024))
		require.NoError(t, ValidateFloppySize(Floppy288Emulation, 2880*1024))
	})
}

func TestSniffMBRPartitionType(t *testing.T) {
	t.Run("reads the type byte at the expected offset", func(t *testing.T) {
		img := make([]byte, 512)
		img[0x1BE+4] = byte(Fat16b)
		pt, err := SniffMBRPartitionType(img)
		require.NoError(t, err)
		require.Equal(t, Fat16b, pt)
	})

	t.Run("rejects images too small to hold an MBR", func(t *testing.T) {
		_, err := SniffMBRPartitionType(make([]byte, 10))
		require.Error(t, err)
	})
}

func TestPrepareEntry(t *testing.T) {
	t.Run("fills location and rounds size up to 512-byte blocks", func(t *testing.T) {
		entry := &ElToritoEntry{Emulation: NoEmulation}
		data := make([]byte, 513)
		require.NoError(t, PrepareEntry(entry, data, 42))
		require.Equal(t, uint32(42), entry.location)
		require.Equal(t, uint16(2), entry.size)
	})

	t.Run("hard disk emulation sniffs partition type", func(t *testing.T) {
		img := make([]byte, 512)
		img[0x1BE+4] = byte(Linux)
		entry := &ElToritoEntry{Emulation: HardDiskEmulation}
		require.NoError(t, PrepareEntry(entry, img, 0))
		require.Equal(t, Linux, entry.PartitionType)
	})

	t.Run("rejects floppy images with the wrong size", func(t *testing.T) {
		entry := &ElToritoEntry{Emulation: Floppy144Emulation}
		require.Error(t, PrepareEntry(entry, make([]byte, 100), 0))
	})
}

func TestElTorito_Marshal(t *testing.T) {
	t.Run("fails with no entries", func(t *testing.T) {
		et := &ElTorito{}
		_, err := et.Marshal()
		require.Error(t, err)
	})

	t.Run("default entry only produces validation + default entry", func(t *testing.T) {
		def := &ElToritoEntry{Emulation: NoEmulation, BootFile: "/BOOT.IMG"}
		require.NoError(t, PrepareEntry(def, []byte{1, 2, 3}, 20))
		et := &ElTorito{Platform: BIOS, Entries: []*ElToritoEntry{def}}

		out, err := et.Marshal()
		require.NoError(t, err)
		require.Len(t, out, 2048)

		require.Equal(t, byte(0x01), out[0]) // validation entry header ID
		require.Equal(t, byte(0x55), out[0x1E])
		require.Equal(t, byte(0xAA), out[0x1F])

		require.Equal(t, byte(0x88), out[32]) // default entry boot indicator
	})

	t.Run("additional entries grouped by platform into section headers", func(t *testing.T) {
		def := &ElToritoEntry{Emulation: NoEmulation, Platform: BIOS}
		require.NoError(t, PrepareEntry(def, []byte{0}, 1))
		extra1 := &ElToritoEntry{Emulation: NoEmulation, Platform: EFI}
		require.NoError(t, PrepareEntry(extra1, []byte{0}, 2))
		extra2 := &ElToritoEntry{Emulation: NoEmulation, Platform: EFI}
		require.NoError(t, PrepareEntry(extra2, []byte{0}, 3))

		et := &ElTorito{Platform: BIOS, Entries: []*ElToritoEntry{def, extra1, extra2}}
		out, err := et.Marshal()
		require.NoError(t, err)

		// offset 0: validation (32), 32: default entry, 64: section header
		// (one run for the two EFI entries, since they're contiguous).
		require.Equal(t, byte(0x91), out[64]) // last (only) section, indicator 0x91
		require.Equal(t, byte(EFI), out[65])
		count := uint16(out[66]) | uint16(out[67])<<8
		require.Equal(t, uint16(2), count)
	})
}

func TestIsElTorito(t *testing.T) {
	require.True(t, IsElTorito("EL TORITO SPECIFICATION"))
	require.False(t, IsElTorito("SOMETHING ELSE"))
}
