// chancat concatenates the components of several images into one image.
//
// Usage:
//
//	chancat concat -o <outfile> <infile> [<infile> ...]
//	chancat info <file> [<file> ...]
//	chancat version
//
// Inputs may be raster files (.rst), PNG, JPEG, GIF or JPEG 2000 images.
// An input named "_" is an empty connection: it contributes no components.
//
// Every flag can also be set in config.yaml (searched in ., $HOME/.chancat
// and /etc/chancat) or through CHANCAT_-prefixed environment variables,
// e.g. CHANCAT_WORKERS=4.
package main

import (
	"os"
)

const version = "0.1.0"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
