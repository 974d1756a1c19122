// Package isowriter implements the ISO 9660 / Joliet writer (spec §4.5): it
// sizes and emits the primary and supplementary volume descriptors, the
// L-type and M-type path tables for each enabled namespace, and the
// directory-record extents (including multi-extent chains), running the
// per-directory sibling-uniqueness pass along the way.
package isowriter

import (
	"time"

	"github.com/bgrewell/iso-forge/pkg/nametransform"
)

// Config is the immutable configuration the writer needs for one build,
// mirroring spec.md §3's configuration record.
type Config struct {
	InterchangeLevel       nametransform.InterchangeLevel
	IncludeFileVersionInfo bool
	RelaxMaxDirLevel       bool
	JolietEnabled          bool
	LongJolietNames        bool
	Enhanced1999           bool

	VolumeLabel     string
	SystemIdent     string
	VolumeSetIdent  string
	Publisher       string
	Preparer        string
	Application     string
	CopyrightFile   string
	AbstractFile    string
	BibliographicFile string

	Timestamp time.Time
}

func (c Config) maxDirDepth() int {
	if c.RelaxMaxDirLevel || c.InterchangeLevel == nametransform.Level3 || c.InterchangeLevel == nametransform.Level1999 {
		return 255
	}
	return 8
}
