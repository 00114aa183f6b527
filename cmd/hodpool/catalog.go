package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dcrodman/hodpool/internal/core/data"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Lists the decode reports stored by decode --record",
	Args:  cobra.NoArgs,
	Run:   CatalogCommand,
}

var (
	TruncatedFlag bool
	SourceFlag    string
)

func CatalogCommand(cmd *cobra.Command, args []string) {
	cfg, _ := initConfig()
	db := initDB(cfg)
	defer data.Close(db)

	var (
		records []data.DecodeRecord
		err     error
	)
	if TruncatedFlag {
		records, err = data.FindTruncatedRecords(db)
	} else {
		records, err = data.FindDecodeRecords(db, SourceFlag)
	}
	exitOnError("error reading catalog", err)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tOFFSET\tNAME\tTYPE\tSEGMENT\tCOMPRESSED\tDECLARED\tDECODED\tDIGEST\tHALT\tRECORDED")
	for _, r := range records {
		if TruncatedFlag && SourceFlag != "" && r.Source != SourceFlag {
			continue
		}
		fmt.Fprintf(w, "%s\t%#x\t%s\t%#x\t%s\t%d\t%d\t%d\t%s\t%s\t%s\n",
			r.Source, r.ChunkOffset, r.Name, r.PoolType, r.Segment, r.CompressedSize,
			r.DeclaredSize, r.DecodedSize, r.Digest, r.Halt, r.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	_ = w.Flush()
}
