package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bgrewell/iso-forge"
	"github.com/bgrewell/iso-forge/pkg/logging"
	"github.com/bgrewell/iso-forge/pkg/option"
)

func main() {
	// Logging level flags
	debug := flag.Bool("v", false, "Enable verbose (debug) logging")
	trace := flag.Bool("vv", false, "Enable trace logging")

	// Extraction options
	bootImages := flag.Bool("boot", false, "Extract boot images (El Torito)")
	rockRidge := flag.Bool("rockridge", true, "Enable Rock Ridge support")
	preferJoliet := flag.Bool("joliet", false, "Prefer the Joliet namespace over ISO 9660")
	stripVer := flag.Bool("strip", true, "Strip version info from filenames")

	// Output directory
	outputDir := flag.String("o", "./extracted", "Output directory for extracted files")
	bootDir := flag.String("bootdir", "[BOOT]", "Output directory for boot images")

	// Parse flags
	flag.Parse()

	// Configure logging
	level := logging.LEVEL_INFO
	if *trace {
		level = logging.LEVEL_TRACE
	} else if *debug {
		level = logging.LEVEL_DEBUG
	}
	logger := logging.NewLogger(logging.NewSimpleLogger(os.Stderr, level, true))

	// Ensure we have an ISO path
	if flag.NArg() < 1 {
		fmt.Println("Usage: isoextract [options] <path-to-iso>")
		fmt.Println("  -v               Enable verbose (debug) logging")
		fmt.Println("  -vv              Enable trace logging")
		fmt.Println("  -boot            Extract boot images (El Torito)")
		fmt.Println("  -rockridge       Enable Rock Ridge support (default: true)")
		fmt.Println("  -joliet          Prefer the Joliet namespace (default: false)")
		fmt.Println("  -strip           Strip version info from filenames (default: true)")
		fmt.Println("  -o <directory>   Output directory (default './extracted')")
		fmt.Println("  -bootdir <dir>   Output directory for boot images (default '[BOOT]', inside the output directory)")
		os.Exit(1)
	}

	// Grab the ISO path from arguments
	isoPath := flag.Arg(0)

	// Open the ISO image with the specified flags
	img, err := iso.Open(
		isoPath,
		option.WithLogger(logger),
		option.WithElToritoEnabled(*bootImages),
		option.WithRockRidgeEnabled(*rockRidge),
		option.WithPreferJoliet(*preferJoliet),
		option.WithBootFileExtractLocation(*bootDir),
		option.WithStripVersionInfo(*stripVer),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open ISO: %v\n", err)
		os.Exit(1)
	}
	defer img.Close()

	// Extract the contents
	if err := img.Extract(*outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to extract image: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Extraction completed successfully to '%s'.\n", *outputDir)
}
