package filetree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func descriptors() []*FileDescriptor {
	return []*FileDescriptor{
		{InternalPath: "/DOCS", IsDir: true},
		{InternalPath: "/DOCS/README.TXT", Size: 42},
		{InternalPath: "/DOCS/NOTES.TXT", Size: 7},
		{InternalPath: "/BOOT.IMG", Size: 1024},
	}
}

func TestBuild_Basic(t *testing.T) {
	tree, err := Build(descriptors())
	require.NoError(t, err)
	require.Equal(t, 1, tree.DirCount)
	require.Equal(t, 3, tree.FileCount)

	readme := tree.NodeFromPath("/DOCS/README.TXT")
	require.NotNil(t, readme)
	require.Equal(t, uint64(42), readme.RawSize)
	require.False(t, readme.IsDir)
	require.Equal(t, "DOCS", readme.Parent.Name)
}

func TestBuild_SynthesizesMissingParentDirectory(t *testing.T) {
	tree, err := Build([]*FileDescriptor{
		{InternalPath: "/A/B/FILE.TXT", Size: 1},
	})
	require.NoError(t, err)
	require.Equal(t, 2, tree.DirCount)
	require.Equal(t, 1, tree.FileCount)

	node := tree.NodeFromPath("/A/B/FILE.TXT")
	require.NotNil(t, node)
	require.Equal(t, "B", node.Parent.Name)
	require.True(t, node.Parent.IsDir)
}

func TestBuild_DuplicatePathFails(t *testing.T) {
	_, err := Build([]*FileDescriptor{
		{InternalPath: "/FILE.TXT", Size: 1},
		{InternalPath: "/FILE.TXT", Size: 2},
	})
	require.Error(t, err)
}

func TestBuild_FileUsedAsDirectoryComponentFails(t *testing.T) {
	_, err := Build([]*FileDescriptor{
		{InternalPath: "/FILE.TXT", Size: 1},
		{InternalPath: "/FILE.TXT/CHILD.TXT", Size: 1},
	})
	require.Error(t, err)
}

func TestBuild_SkipsRootPath(t *testing.T) {
	tree, err := Build([]*FileDescriptor{{InternalPath: "/"}})
	require.NoError(t, err)
	require.Equal(t, 0, tree.DirCount)
	require.Equal(t, 0, tree.FileCount)
}

func TestNodeFromPath_MissingReturnsNil(t *testing.T) {
	tree, err := Build(descriptors())
	require.NoError(t, err)
	require.Nil(t, tree.NodeFromPath("/DOES/NOT/EXIST"))
}

func TestWalk_DepthFirstOrderAndDepths(t *testing.T) {
	tree, err := Build(descriptors())
	require.NoError(t, err)

	var names []string
	var depths []int
	err = tree.Walk(func(n *FilenameTreeNode, depth int) error {
		names = append(names, n.Name)
		depths = append(depths, depth)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"", "DOCS", "README.TXT", "NOTES.TXT", "BOOT.IMG"}, names)
	require.Equal(t, []int{0, 1, 2, 2, 1}, depths)
}

func TestWalk_PropagatesError(t *testing.T) {
	tree, err := Build(descriptors())
	require.NoError(t, err)

	sentinel := errors.New("stop")
	err = tree.Walk(func(n *FilenameTreeNode, depth int) error {
		if n.Name == "README.TXT" {
			return sentinel
		}
		return nil
	})
	require.ErrorIs(t, err, sentinel)
}
