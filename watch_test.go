package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"

	"github.com/nf/ch8/host"
)

func TestWatchProgram(t *testing.T) {
	var (
		dir   = t.TempDir()
		file  = filepath.Join(dir, "prog.ch8")
		other = filepath.Join(dir, "other.ch8")
		roms  = make(chan []byte, 10)
		done  = make(chan error, 1)
	)
	assert.NoError(t, os.WriteFile(file, []byte{0x12, 0x00}, 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	reset := func(rom []byte) error {
		roms <- rom
		return nil
	}
	go func() { done <- watchProgram(ctx, file, reset, log.NewTestLogger(t)) }()

	// Give the watcher time to start, then change an unrelated file and
	// the program.
	time.Sleep(100 * time.Millisecond)
	assert.NoError(t, os.WriteFile(other, []byte{1}, 0o644))
	assert.NoError(t, os.WriteFile(file, []byte{0x00, 0xE0}, 0o644))

	select {
	case rom := <-roms:
		assert.Equal(t, 2, len(rom))
		assert.Equal(t, byte(0xE0), rom[1])
	case <-ctx.Done():
		t.Fatal("program not reloaded")
	}
	cancel()
	assert.NoError(t, <-done)
}

func TestWatchProgramStopsWithRunner(t *testing.T) {
	var (
		dir  = t.TempDir()
		file = filepath.Join(dir, "prog.ch8")
		done = make(chan error, 1)
	)
	assert.NoError(t, os.WriteFile(file, []byte{0x12, 0x00}, 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	reset := func([]byte) error { return host.ErrNotRunning }
	go func() { done <- watchProgram(ctx, file, reset, log.NewTestLogger(t)) }()

	time.Sleep(100 * time.Millisecond)
	assert.NoError(t, os.WriteFile(file, []byte{0x00, 0xE0}, 0o644))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("watcher kept running after the runner stopped")
	}
}
