package isowriter

import (
	"fmt"
	"strings"

	"github.com/bgrewell/iso-forge/pkg/filetree"
	"github.com/bgrewell/iso-forge/pkg/nametransform"
)

// FreezeNames runs the per-directory, per-namespace sibling-uniqueness pass
// over the whole tree (spec §4.2/§4.5) and writes the frozen names back into
// each node's ISO9660Name / JolietName fields. Nodes deeper than the active
// directory cap are marked Skipped instead of named. Warnings collected
// along the way (deep directories, exhausted disambiguation counters) are
// returned for the caller to forward to the progress/log sink.
func FreezeNames(tree *filetree.Tree, cfg Config) (warnings []string, err error) {
	maxDepth := cfg.maxDirDepth()

	var walk func(dir *filetree.FilenameTreeNode, depth int) error
	walk = func(dir *filetree.FilenameTreeNode, depth int) error {
		if depth > maxDepth {
			dir.Skipped = true
			dir.SkippedReason = fmt.Sprintf("directory depth %d exceeds the active cap of %d", depth, maxDepth)
			warnings = append(warnings, fmt.Sprintf("%s: %s", dir.Name, dir.SkippedReason))
			return nil
		}

		isoResolver := nametransform.NewResolver(nametransform.UnitASCII)
		var jolietResolver *nametransform.Resolver
		if cfg.JolietEnabled {
			jolietResolver = nametransform.NewResolver(nametransform.UnitUCS2)
		}

		for _, child := range dir.Children {
			if child.Imported {
				continue
			}

			isoRaw := nametransform.ISOTransform(child.Name, child.IsDir, cfg.InterchangeLevel, cfg.IncludeFileVersionInfo && !child.IsDir)
			suffixLen := 0
			if cfg.IncludeFileVersionInfo && !child.IsDir {
				suffixLen = len(nametransformVersionSuffix)
			}
			frozen, warn := isoResolver.Resolve(isoRaw, suffixLen)
			child.ISO9660Name = frozen
			if warn {
				warnings = append(warnings, fmt.Sprintf("ISO 9660 name collision for %q could not be fully disambiguated", child.Name))
			}

			if cfg.JolietEnabled {
				jolietRaw := nametransform.JolietTransform(child.Name, child.IsDir, cfg.LongJolietNames, cfg.IncludeFileVersionInfo && !child.IsDir)
				jSuffixLen := 0
				if cfg.IncludeFileVersionInfo && !child.IsDir {
					jSuffixLen = 2 * len(nametransformVersionSuffix)
				}
				jFrozen, jWarn := jolietResolver.Resolve(jolietRaw, jSuffixLen)
				child.JolietName = jFrozen
				if jWarn {
					warnings = append(warnings, fmt.Sprintf("Joliet name collision for %q could not be fully disambiguated", child.Name))
				}
			}
		}

		for _, child := range dir.Children {
			if child.IsDir && !child.Skipped {
				if err := walk(child, depth+1); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := walk(tree.Root, 0); err != nil {
		return warnings, err
	}
	return warnings, nil
}

const nametransformVersionSuffix = ";1"

// FrozenPaths walks tree after FreezeNames has run and returns, for every
// node that came from a caller-supplied FileDescriptor, the mapping from its
// originally requested internal path to the full path it was actually
// recorded under in the given namespace (joliet selects the Joliet name,
// otherwise the ISO 9660 d-character name). Synthesized directories and
// skipped nodes have no entry. This mirrors the original writer's
// file_path_map: callers that burn or catalog the finished image need to
// know where a requested file actually landed after collision
// disambiguation and truncation.
func FrozenPaths(tree *filetree.Tree, joliet bool) map[string]string {
	paths := make(map[string]string)

	var segmentsOf func(n *filetree.FilenameTreeNode) []string
	segmentsOf = func(n *filetree.FilenameTreeNode) []string {
		if n.Parent == nil {
			return nil
		}
		name := string(nameOf(n, joliet))
		return append(segmentsOf(n.Parent), name)
	}

	tree.Walk(func(n *filetree.FilenameTreeNode, depth int) error {
		if n.Descriptor == nil || n.Skipped {
			return nil
		}
		segs := segmentsOf(n)
		paths[n.Descriptor.InternalPath] = "/" + strings.Join(segs, "/")
		return nil
	})

	return paths
}
