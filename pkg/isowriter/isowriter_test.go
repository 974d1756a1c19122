package isowriter

import (
	"testing"
	"time"

	"github.com/bgrewell/iso-forge/pkg/filetree"
	"github.com/bgrewell/iso-forge/pkg/nametransform"
	"github.com/stretchr/testify/require"
)

func buildTestTree(t *testing.T) *filetree.Tree {
	t.Helper()
	tree, err := filetree.Build([]*filetree.FileDescriptor{
		{InternalPath: "/DOCS", IsDir: true},
		{InternalPath: "/DOCS/README.TXT", Size: 10},
		{InternalPath: "/readme.txt", Size: 10},
	})
	require.NoError(t, err)
	return tree
}

func TestFreezeNames_AssignsISONames(t *testing.T) {
	tree := buildTestTree(t)
	cfg := Config{InterchangeLevel: nametransform.Level3}

	warnings, err := FreezeNames(tree, cfg)
	require.NoError(t, err)
	require.Empty(t, warnings)

	docs := tree.NodeFromPath("/DOCS")
	require.Equal(t, "DOCS", string(docs.ISO9660Name))

	// The root has two children, DOCS and readme.txt, and each gets its own
	// distinct ISO name.
	root := tree.Root
	require.Len(t, root.Children, 2)
	names := map[string]bool{}
	for _, c := range root.Children {
		names[string(c.ISO9660Name)] = true
	}
	require.Len(t, names, 2)
}

func TestFreezeNames_JolietDisabled_LeavesJolietNameEmpty(t *testing.T) {
	tree := buildTestTree(t)
	cfg := Config{InterchangeLevel: nametransform.Level3}
	_, err := FreezeNames(tree, cfg)
	require.NoError(t, err)

	docs := tree.NodeFromPath("/DOCS")
	require.Nil(t, docs.JolietName)
}

func TestFreezeNames_JolietEnabled_FillsJolietName(t *testing.T) {
	tree := buildTestTree(t)
	cfg := Config{InterchangeLevel: nametransform.Level3, JolietEnabled: true}
	_, err := FreezeNames(tree, cfg)
	require.NoError(t, err)

	docs := tree.NodeFromPath("/DOCS")
	require.NotEmpty(t, docs.JolietName)
}

func TestFreezeNames_Level1DepthCapSkipsDeepDirectories(t *testing.T) {
	descs := []*filetree.FileDescriptor{{InternalPath: "/", IsDir: true}}
	path := ""
	for i := 0; i < 10; i++ {
		path += "/D"
		descs = append(descs, &filetree.FileDescriptor{InternalPath: path, IsDir: true})
	}
	tree, err := filetree.Build(descs)
	require.NoError(t, err)

	cfg := Config{InterchangeLevel: nametransform.Level1}
	warnings, err := FreezeNames(tree, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, warnings)
}

func TestFreezeNames_ImportedNodesAreNeverRenamed(t *testing.T) {
	tree, err := filetree.Build([]*filetree.FileDescriptor{
		{InternalPath: "/IMPORTED.TXT", Imported: true},
	})
	require.NoError(t, err)

	cfg := Config{InterchangeLevel: nametransform.Level3}
	_, err = FreezeNames(tree, cfg)
	require.NoError(t, err)

	node := tree.NodeFromPath("/IMPORTED.TXT")
	require.Nil(t, node.ISO9660Name)
}

func TestBuildPrimaryDescriptor_RoundTrip(t *testing.T) {
	tree := buildTestTree(t)
	cfg := Config{
		InterchangeLevel: nametransform.Level3,
		VolumeLabel:      "MYVOLUME",
		Timestamp:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	_, err := FreezeNames(tree, cfg)
	require.NoError(t, err)

	pvd := BuildPrimaryDescriptor(cfg, tree.Root, VolumeLayout{VolumeSpaceSize: 100})
	out, err := pvd.Marshal()
	require.NoError(t, err)
	require.Equal(t, 2048, len(out))
}

func TestBuildSupplementaryDescriptor_UsesJolietEscape(t *testing.T) {
	tree := buildTestTree(t)
	cfg := Config{InterchangeLevel: nametransform.Level3, JolietEnabled: true}
	_, err := FreezeNames(tree, cfg)
	require.NoError(t, err)

	svd := BuildSupplementaryDescriptor(cfg, tree.Root, VolumeLayout{VolumeSpaceSize: 100})
	require.Equal(t, byte(0x25), svd.EscapeSequences[0])
	require.Equal(t, byte(0x2F), svd.EscapeSequences[1])
	require.Equal(t, byte(0x45), svd.EscapeSequences[2])

	out, err := svd.Marshal()
	require.NoError(t, err)
	require.Equal(t, 2048, len(out))
}

func TestFrozenPaths_MapsRequestedPathToFrozenPath(t *testing.T) {
	tree := buildTestTree(t)
	cfg := Config{InterchangeLevel: nametransform.Level3, JolietEnabled: true}
	_, err := FreezeNames(tree, cfg)
	require.NoError(t, err)

	paths := FrozenPaths(tree, false)
	docsReadme := tree.NodeFromPath("/DOCS/README.TXT")
	want := "/" + string(tree.NodeFromPath("/DOCS").ISO9660Name) + "/" + string(docsReadme.ISO9660Name)
	require.Equal(t, want, paths["/DOCS/README.TXT"])

	jolietPaths := FrozenPaths(tree, true)
	require.NotEmpty(t, jolietPaths["/DOCS/README.TXT"])
}

func TestFrozenPaths_OmitsSyntheticAndSkippedNodes(t *testing.T) {
	tree, err := filetree.Build([]*filetree.FileDescriptor{
		{InternalPath: "/A/B.TXT", Size: 1},
	})
	require.NoError(t, err)
	cfg := Config{InterchangeLevel: nametransform.Level3}
	_, err = FreezeNames(tree, cfg)
	require.NoError(t, err)

	paths := FrozenPaths(tree, false)
	require.NotContains(t, paths, "/A") // synthesized directory, no descriptor
	require.Contains(t, paths, "/A/B.TXT")
}

func TestMarshalDescriptorSequence_ConcatenatesSectors(t *testing.T) {
	term := BuildTerminator()
	out, err := MarshalDescriptorSequence(term, term)
	require.NoError(t, err)
	require.Equal(t, 2*2048, len(out))
}
