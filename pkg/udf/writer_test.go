package udf

import (
	"testing"
	"time"

	"github.com/bgrewell/iso-forge/pkg/filetree"
	"github.com/bgrewell/iso-forge/pkg/udf/tagging"
	"github.com/stretchr/testify/require"
)

func TestBuildVolumeStructureDescriptors(t *testing.T) {
	bea := BuildBEA01()
	require.Equal(t, byte(0), bea[0])
	require.Equal(t, "BEA01", string(bea[1:6]))
	require.Equal(t, byte(1), bea[6])

	nsr := BuildNSR02()
	require.Equal(t, "NSR02", string(nsr[1:6]))

	tea := BuildTEA01()
	require.Equal(t, byte(0xFF), tea[0])
	require.Equal(t, "TEA01", string(tea[1:6]))
}

func TestBuildAnchor(t *testing.T) {
	out := BuildAnchor(256, 32, 48)
	require.Equal(t, 512, len(out))
	require.Equal(t, byte(tagging.TagIdentifierAnchorVolumeDescriptorPointer), out[0])

	gotCRC := uint16(out[8]) | uint16(out[9])<<8
	require.Equal(t, tagging.CRC16(out[tagging.TagLength:]), gotCRC)
}

func TestBuildPrimaryVolumeDescriptor_EmbedsVolumeLabel(t *testing.T) {
	cfg := Config{VolumeLabel: "MYDISC", Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	out := BuildPrimaryVolumeDescriptor(cfg, 19, 0)
	require.Equal(t, 512, len(out))
	require.Equal(t, byte(tagging.TagIdentifierPrimaryVolumeDescriptor), out[0])

	body := out[tagging.TagLength:]
	// compressed unicode dstring at body offset 8: compression id then text.
	require.Equal(t, byte(8), body[8])
	require.Equal(t, "MYDISC", string(body[9:9+len("MYDISC")]))
}

func TestBuildPartitionDescriptor(t *testing.T) {
	out := BuildPartitionDescriptor(20, 1, 100, 5000)
	body := out[tagging.TagLength:]
	require.Equal(t, uint32(100), leUint32(body[44:48]))
	require.Equal(t, uint32(5000), leUint32(body[48:52]))
}

func TestBuildLogicalVolumeDescriptor_PointsAtIntegrity(t *testing.T) {
	cfg := Config{VolumeLabel: "MYDISC"}
	out := BuildLogicalVolumeDescriptor(cfg, 21, 1, 9000, 1)
	body := out[tagging.TagLength:]
	require.Equal(t, uint32(1), leUint32(body[432:436]))
	require.Equal(t, uint32(9000), leUint32(body[436:440]))
}

func TestBuildTerminatingAndUnallocatedDescriptors(t *testing.T) {
	term := BuildTerminatingDescriptor(30)
	require.Equal(t, byte(tagging.TagIdentifierTerminatingDescriptor), term[0])

	unalloc := BuildUnallocatedSpaceDescriptor(31, 2)
	require.Equal(t, byte(tagging.TagIdentifierUnallocatedSpaceDescriptor), unalloc[0])
}

func TestBuildFileSetDescriptor(t *testing.T) {
	out := BuildFileSetDescriptor(40, time.Now(), 41)
	body := out[tagging.TagLength:]
	icbOffset := 400
	require.Equal(t, uint32(41), leUint32(body[icbOffset+4:icbOffset+8]))
}

func TestBuildFileEntry_DirectoryVsFile(t *testing.T) {
	dirEntry := BuildFileEntry(50, KindDirectory, 16, time.Now(), 51, 2048)
	body := dirEntry[tagging.TagLength:]
	require.Equal(t, byte(5), body[13])

	fileEntry := BuildFileEntry(52, KindFile, 17, time.Now(), 53, 4096)
	body2 := fileEntry[tagging.TagLength:]
	require.Equal(t, byte(4), body2[13])
	require.Equal(t, uint64(4096), leUint64(body2[40:48]))
}

func TestBuildFileIdentifierDescriptor(t *testing.T) {
	out := BuildFileIdentifierDescriptor("README.TXT", false, false, 70)
	require.Equal(t, 0, len(out)%4)
	require.Equal(t, byte(tagging.TagIdentifierFileIdentifierDescriptor), out[0])

	parent := BuildFileIdentifierDescriptor("", true, true, 71)
	require.Equal(t, 0, len(parent)%4)
	require.Less(t, len(parent), len(out))
}

func TestEstimateFileIdentifierSize_MatchesActualLength(t *testing.T) {
	for _, name := range []string{"A", "LONGER_NAME.TXT", ""} {
		got := EstimateFileIdentifierSize(name, false)
		actual := len(BuildFileIdentifierDescriptor(name, false, false, 1))
		require.Equal(t, actual, got, "name=%q", name)
	}

	gotParent := EstimateFileIdentifierSize("", true)
	actualParent := len(BuildFileIdentifierDescriptor("", true, true, 1))
	require.Equal(t, actualParent, gotParent)
}

func TestAssignUniqueIDs(t *testing.T) {
	tree, err := filetree.Build([]*filetree.FileDescriptor{
		{InternalPath: "/DIR", IsDir: true},
		{InternalPath: "/DIR/FILE.TXT", Size: 1},
	})
	require.NoError(t, err)

	next, err := AssignUniqueIDs(tree)
	require.NoError(t, err)
	require.Greater(t, next, uint64(firstUniqueID))

	root := tree.Root
	require.Equal(t, uint64(firstUniqueID), root.UDFUniqueID)
	dir := tree.NodeFromPath("/DIR")
	require.Equal(t, uint64(firstUniqueID+1), dir.UDFUniqueID)
	file := tree.NodeFromPath("/DIR/FILE.TXT")
	require.Equal(t, uint64(firstUniqueID+2), file.UDFUniqueID)
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func leUint64(b []byte) uint64 {
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
