package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var segmentsCmd = &cobra.Command{
	Use:   "segments FILE",
	Short: "Decodes a bare texture, mesh and face segment stream",
	Args:  cobra.ExactArgs(1),
	Run:   SegmentsCommand,
}

func SegmentsCommand(cmd *cobra.Command, args []string) {
	l, cleanup := initLoader(false)
	defer cleanup()

	f, err := os.Open(args[0])
	exitOnError("error opening segment stream", err)
	defer f.Close()

	b, err := l.ReadSegments(f)
	exitOnError("error reading segments", err)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tPOOL\tNAME\tTYPE\tSEGMENT\tCOMPRESSED\tDECLARED\tDECODED\tHALT")
	for _, s := range b.Segments() {
		printSegment(w, args[0], "-", "", b.Type, s)
	}
	_ = w.Flush()

	outputBundle(filepath.Base(args[0]), b)
}
