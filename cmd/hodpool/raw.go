package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dcrodman/hodpool/internal/core/xpress"
)

var rawCmd = &cobra.Command{
	Use:   "raw FILE",
	Short: "Decodes a single compressed payload",
	Args:  cobra.ExactArgs(1),
	Run:   RawCommand,
}

var (
	SizeFlag   uint32
	RawOutFlag string
)

func RawCommand(cmd *cobra.Command, args []string) {
	cfg, logger := initConfig()
	// Keep stdout for the decoded bytes.
	if RawOutFlag == "" && cfg.Logging.LogFilePath == "" {
		logger.SetOutput(os.Stderr)
	}

	src, err := os.ReadFile(args[0])
	exitOnError("error reading payload", err)

	out, res := xpress.DecompressResult(src, SizeFlag)
	entry := logger.WithFields(logrus.Fields{
		"declared":   res.Declared,
		"decoded":    res.Decoded,
		"consumed":   res.Consumed,
		"literals":   res.Literals,
		"matches":    res.Matches,
		"indicators": res.Indicators,
		"halt":       res.Halt,
	})
	if res.Truncated() {
		entry.Warn("payload decoded short of its declared size")
	} else {
		entry.Info("decoded payload")
	}

	if RawOutFlag == "" {
		_, err = os.Stdout.Write(out)
	} else {
		err = os.WriteFile(RawOutFlag, out, 0644)
	}
	exitOnError("error writing decoded buffer", err)
}
