package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dcrodman/hodpool/internal/iff"
)

var chunksCmd = &cobra.Command{
	Use:   "chunks FILE",
	Short: "Lists the chunks of a container",
	Args:  cobra.ExactArgs(1),
	Run:   ChunksCommand,
}

func ChunksCommand(cmd *cobra.Command, args []string) {
	f, err := os.Open(args[0])
	exitOnError("error opening container", err)
	defer f.Close()

	chunks, err := iff.List(f)
	exitOnError("error reading container", err)
	for _, c := range chunks {
		fmt.Println(c)
	}
}
