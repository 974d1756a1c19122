// Command isoforge builds ISO 9660 / Joliet / UDF / El Torito images from a
// source directory tree, driving pkg/builder the same way cmd/isoview and
// cmd/isoextract drive the read side.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bgrewell/iso-forge"
	"github.com/bgrewell/iso-forge/pkg/builder"
	"github.com/bgrewell/iso-forge/pkg/filetree"
	"github.com/bgrewell/iso-forge/pkg/iso9660/boot"
	"github.com/bgrewell/iso-forge/pkg/nametransform"
	"github.com/theckman/yacspin"
	"gopkg.in/yaml.v3"
)

// fileConfig is the optional --config YAML descriptor: volume metadata and
// boot entries that are cumbersome to pass as flags, mirroring the way
// hansbonini-tombatools loads its project descriptors.
type fileConfig struct {
	VolumeLabel    string `yaml:"volume_label"`
	SystemIdent    string `yaml:"system_identifier"`
	VolumeSetIdent string `yaml:"volume_set_identifier"`
	Publisher      string `yaml:"publisher"`
	Preparer       string `yaml:"preparer"`
	Application    string `yaml:"application"`
	BootEntries    []struct {
		Path      string `yaml:"path"`
		Emulation string `yaml:"emulation"`
	} `yaml:"boot_entries"`
}

func loadFileConfig(path string) (*fileConfig, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}
	return &cfg, nil
}

// walkSource builds a sorted FileDescriptor set from a directory tree,
// matching the byte-wise ordering the filename tree builder requires
// (spec.md §3).
func walkSource(root string) ([]*filetree.FileDescriptor, error) {
	var out []*filetree.FileDescriptor
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		internal := "/" + filepath.ToSlash(rel)
		out = append(out, &filetree.FileDescriptor{
			InternalPath: internal,
			HostPath:     p,
			Size:         uint64(info.Size()),
			IsDir:        info.IsDir(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InternalPath < out[j].InternalPath })
	return out, nil
}

func parseLevel(s string) nametransform.InterchangeLevel {
	switch s {
	case "1":
		return nametransform.Level1
	case "2":
		return nametransform.Level2
	case "1999":
		return nametransform.Level1999
	default:
		return nametransform.Level3
	}
}

func parseEmulation(s string) boot.Emulation {
	switch strings.ToLower(s) {
	case "floppy", "floppy144":
		return boot.Floppy144Emulation
	case "floppy12":
		return boot.Floppy12Emulation
	case "floppy288":
		return boot.Floppy288Emulation
	case "harddisk", "hdd":
		return boot.HardDiskEmulation
	default:
		return boot.NoEmulation
	}
}

func main() {
	label := flag.String("label", "ISOFORGE", "Volume label")
	level := flag.String("level", "3", "ISO 9660 interchange level: 1, 2, 3, or 1999")
	joliet := flag.Bool("joliet", false, "Emit a Joliet supplementary descriptor")
	udf := flag.Bool("udf", false, "Emit a UDF 1.02 bridge filesystem")
	bootFile := flag.String("boot", "", "Path to a default El Torito boot image")
	bootEmulation := flag.String("boot-emulation", "none", "El Torito emulation: none, floppy, harddisk")
	configPath := flag.String("config", "", "Optional YAML config for volume metadata and boot entries")
	flag.Parse()

	if flag.NArg() < 2 {
		fmt.Println("Usage: isoforge [options] <source-dir> <output-iso>")
		fmt.Println("  -label <name>          Volume label (default 'ISOFORGE')")
		fmt.Println("  -level <1|2|3|1999>     ISO 9660 interchange level (default '3')")
		fmt.Println("  -joliet                 Emit a Joliet supplementary descriptor")
		fmt.Println("  -udf                    Emit a UDF 1.02 bridge filesystem")
		fmt.Println("  -boot <path>            Path to a default El Torito boot image")
		fmt.Println("  -boot-emulation <mode>  El Torito emulation: none, floppy, harddisk")
		fmt.Println("  -config <path>          Optional YAML config for volume metadata and boot entries")
		os.Exit(1)
	}
	source := flag.Arg(0)
	dest := flag.Arg(1)

	fcfg, err := loadFileConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	opts := []builder.Option{
		builder.WithVolumeLabel(*label),
		builder.WithInterchangeLevel(parseLevel(*level)),
	}
	if *joliet {
		opts = append(opts, builder.WithJoliet(false))
	}
	if *udf {
		opts = append(opts, builder.WithUDF())
	}
	if *bootFile != "" {
		opts = append(opts, builder.WithElTorito(&boot.ElTorito{
			Entries: []*boot.ElToritoEntry{{
				BootFile:  *bootFile,
				Emulation: parseEmulation(*bootEmulation),
			}},
		}))
	}
	if fcfg != nil {
		if fcfg.VolumeLabel != "" {
			opts = append(opts, builder.WithVolumeLabel(fcfg.VolumeLabel))
		}
		var entries []*boot.ElToritoEntry
		for _, e := range fcfg.BootEntries {
			entries = append(entries, &boot.ElToritoEntry{
				BootFile:  e.Path,
				Emulation: parseEmulation(e.Emulation),
			})
		}
		if len(entries) > 0 {
			opts = append(opts, builder.WithElTorito(&boot.ElTorito{Entries: entries}))
		}
	}

	spinner, spinErr := yacspin.New(yacspin.Config{
		Frequency:       100 * time.Millisecond,
		CharSet:         yacspin.CharSets[9],
		Suffix:          " building image",
		SuffixAutoColon: true,
		Message:         "sizing",
		StopCharacter:   "✓",
		StopMessage:     "done",
		StopColors:      []string{"fgGreen"},
	})
	useSpinner := spinErr == nil
	if useSpinner {
		_ = spinner.Start()
		opts = append(opts, builder.WithProgress(func(stage string, current, total int) {
			_ = spinner.Message(stage)
		}))
	}

	descriptors, err := walkSource(source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "walking %q: %v\n", source, err)
		os.Exit(1)
	}

	summary, err := iso.Build(dest, descriptors, opts...)
	if useSpinner {
		_ = spinner.Stop()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "building image: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s: %d sectors, %d files, %d directories\n", dest, summary.TotalSectors, summary.FileCount, summary.DirCount)
	for _, w := range summary.Warnings {
		fmt.Println("warning:", w)
	}
	for _, s := range summary.SkippedEntries {
		fmt.Println("skipped:", s.Path, "-", s.Reason)
	}
}
