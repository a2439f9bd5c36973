// Package buildinfo exposes version metadata injected at link time:
//
//	go build -ldflags "-X github.com/dmitrijs2005/mlplayground/internal/buildinfo.Version=v1.0.0 \
//	  -X github.com/dmitrijs2005/mlplayground/internal/buildinfo.BuildDate=$(date -u +%F) \
//	  -X github.com/dmitrijs2005/mlplayground/internal/buildinfo.Commit=$(git rev-parse --short HEAD)" ./cmd/client
package buildinfo

import (
	"fmt"
	"io"
)

var (
	Version   = "N/A"
	BuildDate = "N/A"
	Commit    = "N/A"
)

// PrintBuildData writes the version banner to w.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", Version)
	fmt.Fprintf(w, "Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "Build commit: %s\n", Commit)
}
