package main

import (
	"errors"
	"flag"
	"io"
	"os"
	"testing"

	"github.com/retroenv/retrogolib/assert"

	"github.com/nf/ch8/chip8"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-rate", "1000", "-quirks", "vip", "-dump", "21", "prog.ch8"})
	assert.NoError(t, err)
	assert.Equal(t, "prog.ch8", opts.romFile)
	assert.Equal(t, 1000, opts.rate)
	assert.Equal(t, 21, opts.dump)
	assert.Equal(t, chip8.VIPQuirks(), opts.quirks)
	assert.Equal(t, 10, opts.scale)
	assert.False(t, opts.cli)

	opts, err = parseFlags([]string{"prog.ch8"})
	assert.NoError(t, err)
	assert.Equal(t, chip8.DefaultRate, opts.rate)
	assert.Equal(t, chip8.ModernQuirks(), opts.quirks)
}

func TestParseFlagsErrors(t *testing.T) {
	// Usage text goes to stderr.
	stderr := os.Stderr
	null, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	assert.NoError(t, err)
	defer null.Close()
	os.Stderr = null
	defer func() { os.Stderr = stderr }()

	for _, c := range []struct {
		args []string
		err  string
	}{
		{nil, "expected one program file"},
		{[]string{"a.ch8", "b.ch8"}, "expected one program file"},
		{[]string{"-quirks", "xo", "a.ch8"}, `unknown quirks preset "xo"`},
		{[]string{"-rate", "0", "a.ch8"}, "invalid rate 0"},
		{[]string{"-scale", "-1", "a.ch8"}, "invalid scale -1"},
		{[]string{"-debug", "-cli", "a.ch8"}, "cannot be combined with -cli"},
		{[]string{"-sym", "a.sym", "a.ch8"}, "-sym requires -debug"},
		{[]string{"-bogus", "a.ch8"}, "flag provided but not defined"},
	} {
		_, err := parseFlags(c.args)
		assert.ErrorContains(t, err, c.err)
	}
}

func TestParseFlagsVersion(t *testing.T) {
	stdout := os.Stdout
	r, w, err := os.Pipe()
	assert.NoError(t, err)
	os.Stdout = w
	_, err = parseFlags([]string{"-version"})
	os.Stdout = stdout
	w.Close()
	out, _ := io.ReadAll(r)

	assert.True(t, errors.Is(err, flag.ErrHelp))
	assert.True(t, len(out) > 0)
}
