package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"
	"github.com/retroenv/retrogolib/log"

	"github.com/nf/ch8/host"
)

// reloadDelay debounces the bursts of events produced by a single save.
const reloadDelay = 100 * time.Millisecond

// watchProgram calls reset with the new contents of romFile each time it
// changes, until ctx is done or reset reports that the runner has stopped.
func watchProgram(ctx context.Context, romFile string, reset func([]byte) error, logger *log.Logger) error {
	romFile = filepath.Clean(romFile)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(romFile)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(romFile), err)
	}
	logger.Debug("Watching program", log.String("file", romFile))

	var reload <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-watcher.Event:
			if filepath.Clean(ev.Name) == romFile && !ev.IsAttrib() {
				reload = time.After(reloadDelay)
			}

		case err := <-watcher.Error:
			logger.Warn("Watcher error", log.Err(err))

		case <-reload:
			reload = nil
			rom, err := os.ReadFile(romFile)
			if err != nil {
				logger.Warn("Reading program failed", log.Err(err))
				break
			}
			switch err := reset(rom); {
			case errors.Is(err, host.ErrNotRunning):
				return nil
			case err != nil:
				logger.Error("Reloading program failed", log.Err(err))
			default:
				logger.Info("Program reloaded", log.String("file", filepath.Base(romFile)))
			}
		}
	}
}
