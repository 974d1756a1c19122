package builder

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/bgrewell/iso-forge/pkg/consts"
	"github.com/bgrewell/iso-forge/pkg/dvdvideo"
	"github.com/bgrewell/iso-forge/pkg/filetree"
	"github.com/bgrewell/iso-forge/pkg/iso9660/boot"
	"github.com/bgrewell/iso-forge/pkg/isowriter"
	"github.com/bgrewell/iso-forge/pkg/logging"
	"github.com/bgrewell/iso-forge/pkg/sectoralloc"
	"github.com/bgrewell/iso-forge/pkg/udf"
)

// region tags, scoped per client string so a single uint8 space is shared
// only within one subsystem's own allocations.
const (
	tagVolumeDescriptors sectoralloc.RegionTag = iota
	tagPathTableLNormal
	tagPathTableLOptNormal
	tagPathTableMNormal
	tagPathTableMOptNormal
	tagPathTableLJoliet
	tagPathTableLOptJoliet
	tagPathTableMJoliet
	tagPathTableMOptJoliet
	tagDirEntriesNormal
	tagDirEntriesJoliet
)

const (
	tagUDFBridge sectoralloc.RegionTag = iota
	tagUDFMainVDS
	tagUDFReserveVDS
	tagUDFPadToAnchor
	tagUDFAnchor
	tagUDFFileSetDescriptor
	tagUDFIntegrity
)

const (
	tagElToritoCatalog sectoralloc.RegionTag = iota
)

const tagUDFPerNode sectoralloc.RegionTag = 100

const (
	clientISO9660 sectoralloc.Client = "iso9660"
	clientUDF     sectoralloc.Client = "udf"
	clientBoot    sectoralloc.Client = "eltorito"
)

// Director runs the two-pass build described in spec.md §4.8.
type Director struct {
	cfg    Config
	logger *logging.Logger
}

// New constructs a Director from functional options layered over
// DefaultConfig.
func New(opts ...Option) *Director {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Timestamp.IsZero() {
		cfg.Timestamp = time.Time{}
	}
	return &Director{cfg: cfg, logger: logging.DefaultLogger()}
}

// BuildSummary reports what a Build produced (spec §4.8).
type BuildSummary struct {
	TotalSectors   uint64
	FileCount      int
	DirCount       int
	Warnings       []string
	SkippedEntries []SkippedEntry

	// FilePaths maps each requested InternalPath to the ISO 9660 path it was
	// actually recorded under once sibling-name collisions were resolved and
	// interchange-level truncation applied, so a caller cataloging the
	// finished image knows where a requested file landed.
	FilePaths map[string]string
	// JolietFilePaths is the Joliet-namespace equivalent of FilePaths, nil
	// when Joliet is disabled.
	JolietFilePaths map[string]string
}

// SkippedEntry records a file or directory the build excluded, and why.
type SkippedEntry struct {
	Path   string
	Reason string
}

type udfNodeInfo struct {
	fileEntrySector uint64
	dataSector      uint64
	dataLength      uint64
}

// Build runs both passes against descriptors (files and directories to
// include) and emits the finished image to out.
func (d *Director) Build(descriptors []*filetree.FileDescriptor, out io.WriterAt) (*BuildSummary, error) {
	d.logger.Info("build starting", "entries", len(descriptors), "sessionOffset", d.cfg.SessionOffset)
	sort.Slice(descriptors, func(i, j int) bool { return descriptors[i].InternalPath < descriptors[j].InternalPath })

	bootDescriptors, bootSourceByPath, err := d.elToritoDescriptors()
	if err != nil {
		d.logger.Error(err, "preparing el torito boot images failed")
		return nil, fmt.Errorf("builder: preparing el torito boot images: %w", err)
	}
	descriptors = append(descriptors, bootDescriptors...)

	d.logger.Debug("building file tree")
	tree, err := filetree.Build(descriptors)
	if err != nil {
		d.logger.Error(err, "building file tree failed")
		return nil, fmt.Errorf("builder: building filename tree: %w", err)
	}

	isoCfg := isowriter.Config{
		InterchangeLevel:       d.cfg.InterchangeLevel,
		IncludeFileVersionInfo: d.cfg.IncludeFileVersionInfo,
		RelaxMaxDirLevel:       d.cfg.RelaxMaxDirLevel,
		JolietEnabled:          d.cfg.JolietEnabled,
		LongJolietNames:        d.cfg.LongJolietNames,
		Enhanced1999:           d.cfg.Enhanced1999,
		VolumeLabel:            d.cfg.VolumeLabel,
		SystemIdent:            d.cfg.SystemIdent,
		VolumeSetIdent:         d.cfg.VolumeSetIdent,
		Publisher:              d.cfg.Publisher,
		Preparer:               d.cfg.Preparer,
		Application:            d.cfg.Application,
		CopyrightFile:          d.cfg.CopyrightFile,
		AbstractFile:           d.cfg.AbstractFile,
		BibliographicFile:      d.cfg.BibliographicFile,
		Timestamp:              d.cfg.Timestamp,
	}

	warnings, err := isowriter.FreezeNames(tree, isoCfg)
	if err != nil {
		d.logger.Error(err, "freezing names failed")
		return nil, fmt.Errorf("builder: freezing names: %w", err)
	}
	for _, w := range warnings {
		d.logger.Info("WARNING: " + w)
	}

	if d.cfg.UDFEnabled {
		d.logger.Debug("assigning UDF unique ids")
		if _, err := udf.AssignUniqueIDs(tree); err != nil {
			d.logger.Error(err, "assigning UDF unique ids failed")
			return nil, fmt.Errorf("builder: assigning UDF unique ids: %w", err)
		}
	}

	if d.cfg.DVDVideo != nil {
		d.logger.Debug("applying DVD-Video padding")
		if err := d.applyDVDPadding(tree); err != nil {
			d.logger.Error(err, "applying DVD-Video padding failed")
			return nil, fmt.Errorf("builder: applying DVD-Video padding: %w", err)
		}
	}

	d.logger.Info("sizing pass starting")
	d.cfg.report("sizing", 0, 1)
	alloc := sectoralloc.New(d.cfg.SessionOffset)
	alloc.AllocSectors("system", 0, consts.ISO9660_SYSTEM_AREA_SECTORS)

	numISODescriptors := 2 // primary + terminator
	if d.cfg.ElTorito != nil {
		numISODescriptors++
	}
	if d.cfg.JolietEnabled {
		numISODescriptors++
	}
	isoDescStart := alloc.AllocSectors(clientISO9660, tagVolumeDescriptors, uint64(numISODescriptors))

	var udfLayout udfLocations
	if d.cfg.UDFEnabled {
		udfLayout = d.allocateUDFBridge(alloc)
	}

	normalEntries := isowriter.BuildPathTableEntries(tree, false)
	normalPTSize := uint64(sectorsFor(isowriter.SizePathTable(normalEntries)))
	locLNormal := alloc.AllocSectors(clientISO9660, tagPathTableLNormal, normalPTSize)
	locLOptNormal := alloc.AllocSectors(clientISO9660, tagPathTableLOptNormal, normalPTSize)
	locMNormal := alloc.AllocSectors(clientISO9660, tagPathTableMNormal, normalPTSize)
	locMOptNormal := alloc.AllocSectors(clientISO9660, tagPathTableMOptNormal, normalPTSize)

	var jolietEntries []*isowriter.PathTableEntry
	var locLJoliet, locLOptJoliet, locMJoliet, locMOptJoliet uint64
	if d.cfg.JolietEnabled {
		jolietEntries = isowriter.BuildPathTableEntries(tree, true)
		jolietPTSize := uint64(sectorsFor(isowriter.SizePathTable(jolietEntries)))
		locLJoliet = alloc.AllocSectors(clientISO9660, tagPathTableLJoliet, jolietPTSize)
		locLOptJoliet = alloc.AllocSectors(clientISO9660, tagPathTableLOptJoliet, jolietPTSize)
		locMJoliet = alloc.AllocSectors(clientISO9660, tagPathTableMJoliet, jolietPTSize)
		locMOptJoliet = alloc.AllocSectors(clientISO9660, tagPathTableMOptJoliet, jolietPTSize)
	}

	normalLayouts, err := isowriter.SizeDirectories(tree, false)
	if err != nil {
		d.logger.Error(err, "sizing directories failed")
		return nil, fmt.Errorf("builder: sizing directories: %w", err)
	}
	normalDirBase := alloc.AllocSectors(clientISO9660, tagDirEntriesNormal, isowriter.TotalSectors(normalLayouts))
	for _, l := range normalLayouts {
		l.Node.DataPosNormal = normalDirBase + l.StartSector
		l.Node.DataSizeNormal = l.SectorCount * consts.ISO9660_SECTOR_SIZE
	}

	var jolietLayouts []*isowriter.DirLayout
	if d.cfg.JolietEnabled {
		jolietLayouts, err = isowriter.SizeDirectories(tree, true)
		if err != nil {
			d.logger.Error(err, "sizing joliet directories failed")
			return nil, fmt.Errorf("builder: sizing joliet directories: %w", err)
		}
		jolietDirBase := alloc.AllocSectors(clientISO9660, tagDirEntriesJoliet, isowriter.TotalSectors(jolietLayouts))
		for _, l := range jolietLayouts {
			l.Node.DataPosJoliet = jolietDirBase + l.StartSector
			l.Node.DataSizeJoliet = l.SectorCount * consts.ISO9660_SECTOR_SIZE
		}
	}

	var bootCatalogSector uint64
	if d.cfg.ElTorito != nil {
		bootCatalogSector = alloc.AllocSectors(clientBoot, tagElToritoCatalog, 1)
	}

	udfNodes := make(map[*filetree.FilenameTreeNode]*udfNodeInfo)
	if d.cfg.UDFEnabled {
		d.sizeUDFNodes(tree, alloc, udfNodes)
	}

	if err := d.sizeFileData(tree, alloc); err != nil {
		d.logger.Error(err, "sizing file data failed")
		return nil, fmt.Errorf("builder: sizing file data: %w", err)
	}

	var skipped []SkippedEntry
	tree.Walk(func(n *filetree.FilenameTreeNode, depth int) error {
		if n.Skipped {
			d.logger.Info("skipping entry", "path", n.Name, "reason", n.SkippedReason)
			skipped = append(skipped, SkippedEntry{Path: n.Name, Reason: n.SkippedReason})
		}
		return nil
	})

	if err := alloc.CheckFits(); err != nil {
		d.logger.Error(err, "image exceeds the addressable sector range")
		return nil, err
	}
	d.logger.Info("sizing pass complete", "totalSectors", alloc.NextFree())

	if d.cfg.ElTorito != nil {
		if err := d.prepareElToritoEntries(tree, bootSourceByPath); err != nil {
			d.logger.Error(err, "preparing el torito entries failed")
			return nil, err
		}
	}

	d.logger.Info("emission pass starting")
	d.cfg.report("emission", 0, 1)

	volLayout := isowriter.VolumeLayout{
		VolumeSpaceSize:     uint32(alloc.NextFree()),
		PathTableSizeNormal: isowriter.SizePathTable(normalEntries),
		LocTypeLNormal:      uint32(locLNormal),
		LocTypeMNormal:      uint32(locMNormal),
		BootCatalogSector:   uint32(bootCatalogSector),
	}
	if d.cfg.JolietEnabled {
		volLayout.PathTableSizeJoliet = isowriter.SizePathTable(jolietEntries)
		volLayout.LocTypeLJoliet = uint32(locLJoliet)
		volLayout.LocTypeMJoliet = uint32(locMJoliet)
	}

	if err := d.emitDescriptors(out, tree, volLayout, isoDescStart); err != nil {
		return nil, err
	}

	extentNormal := func(n *filetree.FilenameTreeNode) uint32 { return uint32(n.DataPosNormal) }
	extentJoliet := func(n *filetree.FilenameTreeNode) uint32 { return uint32(n.DataPosJoliet) }

	d.logger.Debug("writing path tables")
	if err := d.emitPathTable(out, normalEntries, extentNormal, locLNormal, true); err != nil {
		return nil, err
	}
	if err := d.emitPathTable(out, normalEntries, extentNormal, locLOptNormal, true); err != nil {
		return nil, err
	}
	if err := d.emitPathTable(out, normalEntries, extentNormal, locMNormal, false); err != nil {
		return nil, err
	}
	if err := d.emitPathTable(out, normalEntries, extentNormal, locMOptNormal, false); err != nil {
		return nil, err
	}
	if d.cfg.JolietEnabled {
		if err := d.emitPathTable(out, jolietEntries, extentJoliet, locLJoliet, true); err != nil {
			return nil, err
		}
		if err := d.emitPathTable(out, jolietEntries, extentJoliet, locLOptJoliet, true); err != nil {
			return nil, err
		}
		if err := d.emitPathTable(out, jolietEntries, extentJoliet, locMJoliet, false); err != nil {
			return nil, err
		}
		if err := d.emitPathTable(out, jolietEntries, extentJoliet, locMOptJoliet, false); err != nil {
			return nil, err
		}
	}

	d.logger.Debug("writing directory entries", "normalDirs", len(normalLayouts), "jolietDirs", len(jolietLayouts))
	for _, l := range normalLayouts {
		w := newSectionWriter(out, int64(l.Node.DataPosNormal)*consts.ISO9660_SECTOR_SIZE)
		if err := isowriter.EmitDirectoryEntries(w, l, false, d.cfg.Timestamp); err != nil {
			d.logger.Error(err, "writing directory entries failed", "dir", l.Node.Name)
			return nil, err
		}
	}
	for _, l := range jolietLayouts {
		w := newSectionWriter(out, int64(l.Node.DataPosJoliet)*consts.ISO9660_SECTOR_SIZE)
		if err := isowriter.EmitDirectoryEntries(w, l, true, d.cfg.Timestamp); err != nil {
			d.logger.Error(err, "writing joliet directory entries failed", "dir", l.Node.Name)
			return nil, err
		}
	}

	if d.cfg.UDFEnabled {
		d.logger.Debug("writing UDF descriptors")
		if err := d.emitUDF(out, tree, udfLayout, udfNodes); err != nil {
			d.logger.Error(err, "writing UDF descriptors failed")
			return nil, err
		}
	}

	if d.cfg.ElTorito != nil {
		d.logger.Debug("writing el torito boot catalog")
		catBytes, err := d.cfg.ElTorito.Marshal()
		if err != nil {
			d.logger.Error(err, "marshaling el torito catalog failed")
			return nil, fmt.Errorf("builder: marshaling el torito catalog: %w", err)
		}
		if _, err := out.WriteAt(catBytes, int64(bootCatalogSector)*consts.ISO9660_SECTOR_SIZE); err != nil {
			d.logger.Error(err, "writing el torito catalog failed")
			return nil, err
		}
	}

	d.logger.Debug("writing file data")
	fileCount, dirCount, err := d.emitFileData(tree, out)
	if err != nil {
		d.logger.Error(err, "writing file data failed")
		return nil, err
	}

	d.logger.Info("build complete", "totalSectors", alloc.NextFree(), "files", fileCount, "dirs", dirCount, "skipped", len(skipped))

	filePaths := isowriter.FrozenPaths(tree, false)
	var jolietFilePaths map[string]string
	if d.cfg.JolietEnabled {
		jolietFilePaths = isowriter.FrozenPaths(tree, true)
	}

	return &BuildSummary{
		TotalSectors:    alloc.NextFree(),
		FileCount:       fileCount,
		DirCount:        dirCount,
		Warnings:        warnings,
		SkippedEntries:  skipped,
		FilePaths:       filePaths,
		JolietFilePaths: jolietFilePaths,
	}, nil
}

func sectorsFor(nBytes uint32) uint64 {
	return (uint64(nBytes) + consts.ISO9660_SECTOR_SIZE - 1) / consts.ISO9660_SECTOR_SIZE
}

func (d *Director) emitDescriptors(out io.WriterAt, tree *filetree.Tree, layout isowriter.VolumeLayout, start uint64) error {
	pvd := isowriter.BuildPrimaryDescriptor(isowriter.Config{
		VolumeLabel: d.cfg.VolumeLabel, SystemIdent: d.cfg.SystemIdent, VolumeSetIdent: d.cfg.VolumeSetIdent,
		Publisher: d.cfg.Publisher, Preparer: d.cfg.Preparer, Application: d.cfg.Application,
		CopyrightFile: d.cfg.CopyrightFile, AbstractFile: d.cfg.AbstractFile, BibliographicFile: d.cfg.BibliographicFile,
		Timestamp: d.cfg.Timestamp,
	}, tree.Root, layout)

	sectors := []interface {
		Marshal() ([consts.ISO9660_SECTOR_SIZE]byte, error)
	}{pvd}

	if d.cfg.ElTorito != nil {
		sectors = append(sectors, isowriter.BuildBootRecordDescriptor(layout.BootCatalogSector))
	}
	if d.cfg.JolietEnabled {
		sectors = append(sectors, isowriter.BuildSupplementaryDescriptor(isowriter.Config{
			VolumeLabel: d.cfg.VolumeLabel, SystemIdent: d.cfg.SystemIdent, VolumeSetIdent: d.cfg.VolumeSetIdent,
			Publisher: d.cfg.Publisher, Preparer: d.cfg.Preparer, Application: d.cfg.Application,
			CopyrightFile: d.cfg.CopyrightFile, AbstractFile: d.cfg.AbstractFile, BibliographicFile: d.cfg.BibliographicFile,
			Timestamp: d.cfg.Timestamp, Enhanced1999: d.cfg.Enhanced1999,
		}, tree.Root, layout))
	}
	sectors = append(sectors, isowriter.BuildTerminator())

	blob, err := isowriter.MarshalDescriptorSequence(sectors...)
	if err != nil {
		return err
	}
	_, err = out.WriteAt(blob, int64(start)*consts.ISO9660_SECTOR_SIZE)
	return err
}

func (d *Director) emitPathTable(out io.WriterAt, entries []*isowriter.PathTableEntry, extentOf func(*filetree.FilenameTreeNode) uint32, location uint64, littleEndian bool) error {
	pt := isowriter.BuildPathTable(entries, extentOf, littleEndian)
	data, err := pt.Marshal()
	if err != nil {
		return err
	}
	_, err = out.WriteAt(data, int64(location)*consts.ISO9660_SECTOR_SIZE)
	return err
}

func (d *Director) sizeFileData(tree *filetree.Tree, alloc *sectoralloc.Allocator) error {
	var order []*filetree.FilenameTreeNode
	var totalSectors uint64
	if err := tree.Walk(func(n *filetree.FilenameTreeNode, depth int) error {
		if n.IsDir || n.Skipped {
			return nil
		}
		sectors := sectorsFor32(n.RawSize)
		if n.RawSize > consts.ISO_MAX_EXTENT {
			if !d.cfg.InterchangeLevel.AllowsFragmentation() {
				n.Skipped = true
				n.SkippedReason = "file exceeds the maximum single-extent size and fragmentation is disabled"
				return nil
			}
		}
		totalSectors += sectors + n.DataPadSectors
		order = append(order, n)
		return nil
	}); err != nil {
		return err
	}

	dataStart := alloc.AllocDataSectors(totalSectors)
	cursor := dataStart
	for _, n := range order {
		if n.RawSize > consts.ISO_MAX_EXTENT {
			remaining := n.RawSize
			first := true
			for remaining > 0 {
				chunk := uint64(consts.ISO_MAX_EXTENT)
				if remaining < chunk {
					chunk = remaining
				}
				sectors := sectorsFor64(chunk)
				n.ExtentChain = append(n.ExtentChain, filetree.Extent{StartSector: cursor, Length: chunk})
				if first {
					n.DataPosNormal, n.DataPosJoliet = cursor, cursor
					first = false
				}
				cursor += sectors
				remaining -= chunk
			}
			n.DataSizeNormal, n.DataSizeJoliet = n.RawSize, n.RawSize
		} else {
			n.DataPosNormal, n.DataPosJoliet = cursor, cursor
			n.DataSizeNormal, n.DataSizeJoliet = n.RawSize, n.RawSize
			cursor += sectorsFor32(n.RawSize)
		}
		cursor += n.DataPadSectors
	}
	return nil
}

func sectorsFor32(n uint64) uint64 { return sectorsFor64(n) }
func sectorsFor64(n uint64) uint64 {
	return (n + consts.ISO9660_SECTOR_SIZE - 1) / consts.ISO9660_SECTOR_SIZE
}

func (d *Director) emitFileData(tree *filetree.Tree, out io.WriterAt) (fileCount, dirCount int, err error) {
	walkErr := tree.Walk(func(n *filetree.FilenameTreeNode, depth int) error {
		if n.Skipped {
			return nil
		}
		if n.IsDir {
			dirCount++
			return nil
		}
		fileCount++
		if n.HostPath == "" {
			return nil
		}
		f, err := os.Open(n.HostPath)
		if err != nil {
			return fmt.Errorf("opening %q: %w", n.HostPath, err)
		}
		defer f.Close()

		offset := int64(n.DataPosNormal) * consts.ISO9660_SECTOR_SIZE
		if _, err := io.Copy(newSectionWriter(out, offset), f); err != nil {
			return fmt.Errorf("writing %q: %w", n.HostPath, err)
		}
		return nil
	})
	return fileCount, dirCount, walkErr
}

func (d *Director) applyDVDPadding(tree *filetree.Tree) error {
	pads, err := dvdvideo.Layout(d.cfg.DVDVideo.VMG, d.cfg.DVDVideo.VTS, d.cfg.DVDVideo.Sizes)
	if err != nil {
		return err
	}
	for _, p := range pads {
		n := tree.NodeFromPath(p.InternalPath)
		if n == nil {
			continue
		}
		if p.DataPadSectors > 0 {
			d.logger.Debug("padding DVD-Video file", "path", p.InternalPath, "padSectors", p.DataPadSectors)
		}
		n.DataPadSectors = p.DataPadSectors
	}
	return nil
}

// sectionWriter adapts an io.WriterAt with a fixed base offset into a
// sequential io.Writer, the shape pkg/isowriter's directory-record emitter
// and plain file copies both want.
type sectionWriter struct {
	w      io.WriterAt
	offset int64
}

func newSectionWriter(w io.WriterAt, base int64) *sectionWriter {
	return &sectionWriter{w: w, offset: base}
}

func (s *sectionWriter) Write(p []byte) (int, error) {
	n, err := s.w.WriteAt(p, s.offset)
	s.offset += int64(n)
	return n, err
}

func (d *Director) elToritoDescriptors() ([]*filetree.FileDescriptor, map[string]string, error) {
	if d.cfg.ElTorito == nil {
		return nil, nil, nil
	}
	sourceByPath := make(map[string]string)
	var out []*filetree.FileDescriptor
	for i, entry := range d.cfg.ElTorito.Entries {
		if entry.BootFile == "" {
			continue
		}
		info, err := os.Stat(entry.BootFile)
		if err != nil {
			return nil, nil, fmt.Errorf("boot entry %d: %w", i, err)
		}
		internal := fmt.Sprintf("/[BOOT]/%d-Boot-%s.img", i+1, entry.Emulation)
		out = append(out, &filetree.FileDescriptor{
			InternalPath: internal,
			HostPath:     entry.BootFile,
			Size:         uint64(info.Size()),
		})
		sourceByPath[internal] = entry.BootFile
	}
	return out, sourceByPath, nil
}

func (d *Director) prepareElToritoEntries(tree *filetree.Tree, sourceByPath map[string]string) error {
	for i, entry := range d.cfg.ElTorito.Entries {
		if entry.BootFile == "" {
			continue
		}
		internal := fmt.Sprintf("/[BOOT]/%d-Boot-%s.img", i+1, entry.Emulation)
		n := tree.NodeFromPath(internal)
		if n == nil || n.Skipped {
			continue
		}
		data, err := os.ReadFile(sourceByPath[internal])
		if err != nil {
			return fmt.Errorf("boot entry %d: %w", i, err)
		}
		if err := boot.PrepareEntry(entry, data, uint32(n.DataPosNormal)); err != nil {
			return fmt.Errorf("boot entry %d: %w", i, err)
		}
	}
	return nil
}
