package main

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"

	"github.com/nf/ch8/chip8"
	"github.com/nf/ch8/host"
)

type fakeRunner struct {
	cmds []string
}

func (r *fakeRunner) Debug(cmd string, addr uint16) {
	r.cmds = append(r.cmds, fmt.Sprintf("%s %.3x", cmd, addr))
}

func newTestDebugger(t *testing.T) (*debugger, *fakeRunner) {
	t.Helper()
	r := &fakeRunner{}
	d := newDebugger(2)
	d.run = r
	d.log = log.NewTestLogger(t)
	ss, err := parseSymbols(strings.NewReader(testLabels))
	assert.NoError(t, err)
	d.setSymbols(ss)
	return d, r
}

func TestDebuggerCommands(t *testing.T) {
	d, r := newTestDebugger(t)
	for _, cmd := range []string{"p", "step", "b letter_b", "b 300", "c", "b"} {
		assert.NoError(t, d.exec(cmd), cmd)
	}
	assert.Equal(t, strings.Join([]string{
		"p 000",
		"step 000",
		"break 239",
		"break 300",
		"c 000",
		"break 000",
	}, "\n"), strings.Join(r.cmds, "\n"))
	assert.Nil(t, d.brk)

	assert.ErrorContains(t, d.exec("b nowhere"), `invalid address "nowhere"`)
	assert.ErrorContains(t, d.exec("frobnicate"), `unknown command "frobnicate"`)
	assert.ErrorContains(t, d.exec("shot"), "usage")
}

func TestDebuggerFiles(t *testing.T) {
	d, _ := newTestDebugger(t)
	m, err := chip8.New([]byte{0x61, 0x08}, chip8.ModernQuirks(), chip8.Nop, log.NewTestLogger(t))
	assert.NoError(t, err)
	m.Display[3][4] = true
	m.Cycle()
	d.StateFunc(m, host.QuietState)

	dir := t.TempDir()
	shot := filepath.Join(dir, "shot.png")
	assert.NoError(t, d.exec("shot "+shot))
	b, err := os.ReadFile(shot)
	assert.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(b))
	assert.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())

	graph := filepath.Join(dir, "state.dot")
	assert.NoError(t, d.exec("graph "+graph))
	b, err = os.ReadFile(graph)
	assert.NoError(t, err)
	assert.Contains(t, string(b), "digraph")

	assert.Error(t, d.exec("shot "+filepath.Join(dir, "missing", "shot.png")))
}

func TestStateMsg(t *testing.T) {
	ss, err := parseSymbols(strings.NewReader(testLabels))
	assert.NoError(t, err)
	st := chip8.State{PC: 0x200, Op: 0x1228, Stack: []uint16{0x2aa}}
	msg := stateMsg(ss, st, host.BreakState)
	assert.Contains(t, msg, "[break] start: JP 0x228 -> loop (228)")
	assert.Contains(t, msg, "( 2aa )")
}

func TestDisassembly(t *testing.T) {
	ss, err := parseSymbols(strings.NewReader(testLabels))
	assert.NoError(t, err)
	m, err := chip8.New([]byte{0x00, 0xE0, 0x12, 0x00}, chip8.ModernQuirks(), chip8.Nop, log.NewTestLogger(t))
	assert.NoError(t, err)
	m.Cycle()
	brk := symbol{addr: 0x200}
	got := disassembly(ss, &brk, m)
	assert.Contains(t, got, "start:\n* 200  00e0  CLS\n> 202  1200  JP 0x200\n")
}

func TestCaptureOutput(t *testing.T) {
	var buf bytes.Buffer
	restore, err := captureOutput(&buf)
	assert.NoError(t, err)
	fmt.Fprint(os.Stderr, "to stderr ")
	fmt.Fprint(os.Stdout, "to stdout")
	restore()
	assert.Equal(t, "to stderr to stdout", buf.String())
}
