// Package debug holds the runtime inspection helpers used by the hodpool tools.
package debug

import (
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"

	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"

	"github.com/dcrodman/hodpool/internal/core"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// StartUtilities spins off the services enabled in the debugging section of cfg.
func StartUtilities(cfg *core.Config, logger logrus.FieldLogger) {
	if cfg.Debugging.PprofEnabled {
		startPprofServer(cfg.Debugging.PprofPort, logger)
	}
}

// This function starts the default pprof HTTP server that can be accessed via localhost
// to get runtime information about hodpool. See https://golang.org/pkg/net/http/pprof/
func startPprofServer(port int, logger logrus.FieldLogger) {
	listenerAddr := fmt.Sprintf("localhost:%d", port)
	logger.Infof("starting pprof server on %s", listenerAddr)

	go func() {
		if err := http.ListenAndServe(listenerAddr, nil); err != nil {
			logger.Infof("error starting pprof server: %s", err)
		}
	}()
}

// Dump writes a deep, human readable rendering of v to w. Byte slices are
// printed as hex dumps.
func Dump(w io.Writer, v interface{}) {
	dumpConfig.Fdump(w, v)
}

// Sdump is Dump into a string.
func Sdump(v interface{}) string {
	return dumpConfig.Sdump(v)
}
