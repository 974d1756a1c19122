// Package builder implements the Director: the two-pass orchestrator that
// turns a flat list of file descriptors into a complete optical-disc image
// (spec §4.8). Pass one sizes every region with pkg/sectoralloc; pass two
// emits bytes through pkg/isowriter, pkg/udf, pkg/iso9660/boot, and
// pkg/dvdvideo into the same absolute sector positions the first pass
// assigned.
package builder

import (
	"time"

	"github.com/bgrewell/iso-forge/pkg/dvdvideo"
	"github.com/bgrewell/iso-forge/pkg/iso9660/boot"
	"github.com/bgrewell/iso-forge/pkg/nametransform"
)

// Config is the full build configuration (spec §3's configuration record).
type Config struct {
	VolumeLabel       string
	SystemIdent       string
	VolumeSetIdent    string
	Publisher         string
	Preparer          string
	Application       string
	CopyrightFile     string
	AbstractFile      string
	BibliographicFile string
	Timestamp         time.Time

	InterchangeLevel       nametransform.InterchangeLevel
	IncludeFileVersionInfo bool
	RelaxMaxDirLevel       bool

	JolietEnabled   bool
	LongJolietNames bool
	Enhanced1999    bool

	UDFEnabled bool

	ElTorito *boot.ElTorito // nil disables El Torito entirely

	DVDVideo *DVDVideoConfig // nil disables DVD-Video padding

	SessionOffset uint32 // sector the image starts at, for multi-session discs

	Progress ProgressFunc
}

// DVDVideoConfig supplies the parsed VMG/VTS IFO headers and measured group
// sizes the padding layout (pkg/dvdvideo) needs.
type DVDVideoConfig struct {
	VMG   dvdvideo.Header
	VTS   []dvdvideo.Header
	Sizes dvdvideo.SetSizes
}

// ProgressFunc reports build progress; stage names are short, stable
// identifiers. The director reports "sizing" when the sizing pass starts
// and "emission" when the emission pass starts.
type ProgressFunc func(stage string, current, total int)

func (c Config) report(stage string, current, total int) {
	if c.Progress != nil {
		c.Progress(stage, current, total)
	}
}

// Option mutates a Config; following the teacher's functional-options idiom
// (pkg/option).
type Option func(*Config)

func WithVolumeLabel(label string) Option { return func(c *Config) { c.VolumeLabel = label } }

func WithInterchangeLevel(level nametransform.InterchangeLevel) Option {
	return func(c *Config) { c.InterchangeLevel = level }
}

func WithJoliet(longNames bool) Option {
	return func(c *Config) {
		c.JolietEnabled = true
		c.LongJolietNames = longNames
	}
}

func WithUDF() Option { return func(c *Config) { c.UDFEnabled = true } }

func WithElTorito(et *boot.ElTorito) Option { return func(c *Config) { c.ElTorito = et } }

func WithDVDVideoPadding(cfg DVDVideoConfig) Option {
	return func(c *Config) { c.DVDVideo = &cfg }
}

func WithSessionStart(sector uint32) Option { return func(c *Config) { c.SessionOffset = sector } }

func WithProgress(fn ProgressFunc) Option { return func(c *Config) { c.Progress = fn } }

// DefaultConfig returns a Config with the sensible defaults spec.md §9
// settles on for its open questions: interchange level 3, no Joliet/UDF/El
// Torito/DVD padding until explicitly requested.
func DefaultConfig() Config {
	return Config{
		InterchangeLevel: nametransform.Level3,
		Timestamp:        time.Time{},
	}
}
