package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bgrewell/iso-forge/pkg/filetree"
	"github.com/bgrewell/iso-forge/pkg/iso9660/boot"
	"github.com/bgrewell/iso-forge/pkg/nametransform"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func openScratchImage(t *testing.T) (*os.File, string) {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "image-*.iso")
	require.NoError(t, err)
	return f, f.Name()
}

func TestDirector_Build_MinimalLevel1(t *testing.T) {
	dir := t.TempDir()
	readme := writeTempFile(t, dir, "readme.txt", "hello world")

	d := New(WithVolumeLabel("MYDISC"), WithInterchangeLevel(nametransform.Level1))

	f, _ := openScratchImage(t)
	defer f.Close()

	summary, err := d.Build([]*filetree.FileDescriptor{
		{InternalPath: "/README.TXT", HostPath: readme, Size: 11},
	}, f)
	require.NoError(t, err)
	require.Equal(t, 1, summary.FileCount)
	require.Equal(t, 1, summary.DirCount) // root only
	require.Greater(t, summary.TotalSectors, uint64(0))
	require.Empty(t, summary.SkippedEntries)
}

func TestDirector_Build_WithJoliet(t *testing.T) {
	dir := t.TempDir()
	readme := writeTempFile(t, dir, "readme.txt", "hello world")

	d := New(WithVolumeLabel("MYDISC"), WithJoliet(false))

	f, _ := openScratchImage(t)
	defer f.Close()

	summary, err := d.Build([]*filetree.FileDescriptor{
		{InternalPath: "/docs", IsDir: true},
		{InternalPath: "/docs/readme.txt", HostPath: readme, Size: 11},
	}, f)
	require.NoError(t, err)
	require.Equal(t, 1, summary.FileCount)
	require.Equal(t, 2, summary.DirCount) // root + docs
	require.Equal(t, "/DOCS/README.TXT", summary.FilePaths["/docs/readme.txt"])
	require.NotEmpty(t, summary.JolietFilePaths["/docs/readme.txt"])
}

func TestDirector_Build_WithUDF(t *testing.T) {
	dir := t.TempDir()
	readme := writeTempFile(t, dir, "readme.txt", "hello world")

	d := New(WithVolumeLabel("MYDISC"), WithUDF())

	f, _ := openScratchImage(t)
	defer f.Close()

	summary, err := d.Build([]*filetree.FileDescriptor{
		{InternalPath: "/README.TXT", HostPath: readme, Size: 11},
	}, f)
	require.NoError(t, err)
	require.Equal(t, 1, summary.FileCount)
}

func TestDirector_Build_WithElToritoNoEmulation(t *testing.T) {
	dir := t.TempDir()
	readme := writeTempFile(t, dir, "readme.txt", "hello world")
	bootImg := writeTempFile(t, dir, "boot.img", "BOOTSTRAP")

	entry := &boot.ElToritoEntry{Emulation: boot.NoEmulation, BootFile: bootImg}
	et := &boot.ElTorito{Platform: boot.BIOS, Entries: []*boot.ElToritoEntry{entry}}

	d := New(WithVolumeLabel("MYDISC"), WithElTorito(et))

	f, _ := openScratchImage(t)
	defer f.Close()

	summary, err := d.Build([]*filetree.FileDescriptor{
		{InternalPath: "/README.TXT", HostPath: readme, Size: 11},
	}, f)
	require.NoError(t, err)
	// the boot image itself is synthesized as an extra file under /[BOOT]/.
	require.Equal(t, 2, summary.FileCount)
}

func TestDirector_Build_NoEntries_StillProducesSystemAreaAndDescriptors(t *testing.T) {
	d := New(WithVolumeLabel("EMPTY"))

	f, _ := openScratchImage(t)
	defer f.Close()

	summary, err := d.Build(nil, f)
	require.NoError(t, err)
	require.Equal(t, 0, summary.FileCount)
	require.Equal(t, 1, summary.DirCount) // root only
	require.Greater(t, summary.TotalSectors, uint64(0))
}
