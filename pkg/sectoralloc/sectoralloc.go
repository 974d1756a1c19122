// Package sectoralloc implements the monotonic, byte-aligned sector
// allocator shared by every writer in the image builder: each structural
// region (volume descriptors, path tables, directory entries, the UDF
// partition, ...) claims a contiguous sector range once, and the file-data
// region is carved out last.
package sectoralloc

import (
	"fmt"

	"github.com/bgrewell/iso-forge/pkg/consts"
)

// RegionTag identifies a structural region within one client's allocation
// space. It is an 8-bit enum private to each client, mirroring the source's
// "(client pointer, region tag)" keying collapsed here into a Go-idiomatic
// small value type.
type RegionTag uint8

// Client identifies the owner of a set of region tags (the ISO 9660/Joliet
// writer, the UDF writer, El Torito, DVD-Video padding, ...). A single
// builder run never has more than a handful of clients, so a small string is
// a more debuggable key than a numeric handle.
type Client string

type key struct {
	client Client
	tag    RegionTag
}

// Allocator hands out contiguous, non-overlapping sector ranges. It is not
// safe for concurrent use; the image director is single-threaded by design.
type Allocator struct {
	nextFree  uint64
	starts    map[key]uint64
	dataStart uint64
	dataLen   uint64
	dataSet   bool
	offset    uint64
}

// New creates an Allocator whose sector 0 corresponds to the given absolute
// offset (non-zero only for multi-session append, where a prior session's
// next-writable-address shifts every reference in the new image).
func New(sessionOffset uint32) *Allocator {
	return &Allocator{
		nextFree: uint64(sessionOffset),
		starts:   make(map[key]uint64),
		offset:   uint64(sessionOffset),
	}
}

// AllocSectors records the current free-sector cursor under (client, tag)
// and advances it by nSectors. Calling this again with the same key
// overwrites the previously recorded start, matching the source's
// idempotent-key behavior.
func (a *Allocator) AllocSectors(client Client, tag RegionTag, nSectors uint64) uint64 {
	start := a.nextFree
	a.starts[key{client, tag}] = start
	a.nextFree += nSectors
	return start
}

// AllocBytes is AllocSectors with nBytes rounded up to whole sectors.
func (a *Allocator) AllocBytes(client Client, tag RegionTag, nBytes uint64) uint64 {
	return a.AllocSectors(client, tag, sectorsFor(nBytes))
}

// AllocDataSectors records the file-data region's start and length. It must
// be called exactly once per image; the second call overwrites the first
// but callers are expected to respect the "exactly once" contract.
func (a *Allocator) AllocDataSectors(nSectors uint64) uint64 {
	a.dataStart = a.nextFree
	a.dataLen = nSectors
	a.dataSet = true
	a.nextFree += nSectors
	return a.dataStart
}

// AllocDataBytes is AllocDataSectors with nBytes rounded up to whole sectors.
func (a *Allocator) AllocDataBytes(nBytes uint64) uint64 {
	return a.AllocDataSectors(sectorsFor(nBytes))
}

// StartOf returns the sector recorded for (client, tag), and whether it was
// ever allocated.
func (a *Allocator) StartOf(client Client, tag RegionTag) (uint64, bool) {
	s, ok := a.starts[key{client, tag}]
	return s, ok
}

// NextFree returns the next unallocated sector.
func (a *Allocator) NextFree() uint64 {
	return a.nextFree
}

// DataStart returns the file-data region's start sector. Valid only after
// AllocDataSectors/AllocDataBytes has been called.
func (a *Allocator) DataStart() uint64 {
	return a.dataStart
}

// DataLen returns the file-data region's length in sectors.
func (a *Allocator) DataLen() uint64 {
	return a.dataLen
}

// CheckFits returns ImageTooLarge-class error if the allocator's current
// cursor has grown past what a 32-bit sector field (as used by ISO 9660 and
// UDF partition-local addressing) can represent.
func (a *Allocator) CheckFits() error {
	if a.nextFree > 0xFFFFFFFF {
		return fmt.Errorf("sector allocator: image grew to %d sectors, exceeding the 32-bit addressable limit", a.nextFree)
	}
	return nil
}

func sectorsFor(nBytes uint64) uint64 {
	return (nBytes + consts.ISO9660_SECTOR_SIZE - 1) / consts.ISO9660_SECTOR_SIZE
}
