// Package iso is the top-level convenience façade over the image reader
// (pkg/iso9660) and the image builder (pkg/builder): Open for reading an
// existing optical-disc image, Build for constructing a new one from a flat
// list of file descriptors (spec §6).
package iso

import (
	"fmt"
	"os"

	"github.com/bgrewell/iso-forge/pkg/builder"
	"github.com/bgrewell/iso-forge/pkg/filetree"
	"github.com/bgrewell/iso-forge/pkg/iso9660"
	"github.com/bgrewell/iso-forge/pkg/option"
)

// Open opens an existing optical-disc image for reading.
func Open(location string, opts ...option.OpenOption) (*iso9660.ISO9660, error) {
	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("iso: opening %s: %w", location, err)
	}
	img, err := iso9660.Open(f, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	return img, nil
}

// Build constructs a new optical-disc image from descriptors and writes it
// to location, running the Director's two-pass build (spec §4.8).
func Build(location string, descriptors []*filetree.FileDescriptor, opts ...builder.Option) (*builder.BuildSummary, error) {
	f, err := os.Create(location)
	if err != nil {
		return nil, fmt.Errorf("iso: creating %s: %w", location, err)
	}
	defer f.Close()

	d := builder.New(opts...)
	return d.Build(descriptors, f)
}
