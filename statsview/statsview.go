// Package statsview serves live charts of the Go runtime (heap, goroutines,
// GC pauses) over HTTP, for watching the emulator's resource use.
package statsview

import (
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/retroenv/retrogolib/log"
)

// DefaultAddr is the address the server listens on if none is given.
const DefaultAddr = "localhost:12600"

const path = "/debug/statsview"

// Launch starts the stats server on addr in the background and returns
// the URL of its dashboard.
func Launch(addr string, logger *log.Logger) string {
	if addr == "" {
		addr = DefaultAddr
	}
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()
	go func() {
		mgr.Start()
		logger.Debug("Stats server stopped")
	}()
	url := "http://" + addr + path
	logger.Info("Stats server started", log.String("url", url))
	return url
}
