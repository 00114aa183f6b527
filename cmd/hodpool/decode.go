package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dcrodman/hodpool/internal/assets"
	"github.com/dcrodman/hodpool/internal/core/debug"
	"github.com/dcrodman/hodpool/internal/pool"
)

var decodeCmd = &cobra.Command{
	Use:   "decode FILE...",
	Short: "Decodes every pool in the given containers",
	Args:  cobra.MinimumNArgs(1),
	Run:   DecodeCommand,
}

var (
	OutFlag    string
	DumpFlag   bool
	RecordFlag bool
)

func DecodeCommand(cmd *cobra.Command, args []string) {
	l, cleanup := initLoader(RecordFlag)
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := l.LoadFiles(ctx, args)
	exitOnError("error decoding", err)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tPOOL\tNAME\tTYPE\tSEGMENT\tCOMPRESSED\tDECLARED\tDECODED\tHALT")
	for _, r := range results {
		for _, p := range r.Pools {
			for _, s := range p.Bundle.Segments() {
				printSegment(w, r.Path, fmt.Sprint(p.Index), p.Chunk.Name, p.Bundle.Type, s)
			}
		}
	}
	_ = w.Flush()

	for _, r := range results {
		for _, p := range r.Pools {
			prefix := fmt.Sprintf("%s.%d", filepath.Base(r.Path), p.Index)
			outputBundle(prefix, p.Bundle)
		}
	}
}

func printSegment(w *tabwriter.Writer, source, index, name string, typ uint32, s pool.Segment) {
	fmt.Fprintf(w, "%s\t%s\t%s\t%#x\t%s\t%d\t%d\t%d\t%s\n",
		source, index, name, typ, s.Kind, s.Compressed, s.Declared, len(s.Data), s.Result.Halt)
}

// outputBundle handles the --dump and --out flags shared by decode and segments.
func outputBundle(prefix string, b *pool.Bundle) {
	if DumpFlag {
		fmt.Printf("%s:\n", prefix)
		debug.Dump(os.Stdout, b.Segments())
	}
	if OutFlag != "" {
		paths, err := assets.WriteBundle(OutFlag, prefix, b)
		exitOnError("error writing buffers", err)
		for _, path := range paths {
			fmt.Println("wrote", path)
		}
	}
}
