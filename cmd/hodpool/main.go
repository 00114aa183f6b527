// hodpool decodes the texture, mesh and face pools stored in game asset containers.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/dcrodman/hodpool/internal/assets"
	"github.com/dcrodman/hodpool/internal/core"
	"github.com/dcrodman/hodpool/internal/core/cache"
	"github.com/dcrodman/hodpool/internal/core/data"
	"github.com/dcrodman/hodpool/internal/core/debug"
)

var ConfigFlag string

func main() {
	rootCmd := &cobra.Command{
		Use:   "hodpool",
		Short: "Decoder for the compressed pools in game asset containers",
	}
	rootCmd.PersistentFlags().StringVarP(&ConfigFlag, "config", "c", "", "Path to the directory holding config.yaml")

	decodeCmd.Flags().StringVarP(&OutFlag, "out", "o", "", "Directory to write the decoded buffers to")
	decodeCmd.Flags().BoolVar(&DumpFlag, "dump", false, "Print every decoded bundle")
	decodeCmd.Flags().BoolVar(&RecordFlag, "record", false, "Store the decode reports in the catalog")

	rawCmd.Flags().Uint32VarP(&SizeFlag, "size", "s", 0, "Declared size of the decoded buffer")
	rawCmd.Flags().StringVarP(&RawOutFlag, "out", "o", "", "File to write the decoded buffer to (default stdout)")
	_ = rawCmd.MarkFlagRequired("size")

	segmentsCmd.Flags().StringVarP(&OutFlag, "out", "o", "", "Directory to write the decoded buffers to")
	segmentsCmd.Flags().BoolVar(&DumpFlag, "dump", false, "Print the decoded bundle")

	catalogCmd.Flags().BoolVar(&TruncatedFlag, "truncated", false, "Only list segments that decoded short")
	catalogCmd.Flags().StringVar(&SourceFlag, "source", "", "Only list segments read from this file")

	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(rawCmd)
	rootCmd.AddCommand(segmentsCmd)
	rootCmd.AddCommand(chunksCmd)
	rootCmd.AddCommand(catalogCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func exitOnError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
		os.Exit(1)
	}
}

func initConfig() (*core.Config, *logrus.Logger) {
	cfg, err := core.LoadConfig(ConfigFlag)
	exitOnError("error loading config", err)

	logger, err := core.NewLogger(cfg)
	exitOnError("error initializing logger", err)

	debug.StartUtilities(cfg, logger)
	return cfg, logger
}

func initDB(cfg *core.Config) *gorm.DB {
	db, err := data.Open(cfg)
	exitOnError("error opening catalog", err)
	return db
}

// initLoader builds a loader from the config, connecting to the catalog only
// when withDB is set.
func initLoader(withDB bool) (*assets.Loader, func()) {
	cfg, logger := initConfig()
	l := &assets.Loader{Config: cfg, Logger: logger}
	if cfg.Cache.Enabled {
		l.Cache = cache.New(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	}

	cleanup := func() {}
	if withDB {
		l.DB = initDB(cfg)
		cleanup = func() {
			if err := data.Close(l.DB); err != nil {
				logger.Warn(err)
			}
		}
	}
	return l, cleanup
}
