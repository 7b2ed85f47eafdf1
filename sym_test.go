package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"

	"github.com/nf/ch8/chip8"
)

const testLabels = `
# IBM logo
200 start
22a letter_i
0x239 letter_b
$228 loop
228 done
`

func TestParseSymbols(t *testing.T) {
	ss, err := parseSymbols(strings.NewReader(testLabels))
	assert.NoError(t, err)
	assert.Equal(t, 5, len(ss))
	for i := 1; i < len(ss); i++ {
		assert.True(t, ss[i-1].addr <= ss[i].addr, "sorted")
	}

	at := ss.forAddr(0x228)
	assert.Equal(t, 2, len(at))
	assert.Equal(t, "loop", at[0].label)
	assert.Equal(t, "done", at[1].label)
	assert.Equal(t, 0, len(ss.forAddr(0x202)))

	assert.Equal(t, 2, len(ss.withLabelPrefix("letter_")))
}

func TestParseSymbolsErrors(t *testing.T) {
	for _, c := range []struct {
		in, err string
	}{
		{"200", "line 1: want address and label"},
		{"200 a b", "line 1: want address and label"},
		{"\nzzz start", `line 2: invalid address "zzz"`},
		{"1000 high", `line 1: invalid address "1000"`},
	} {
		_, err := parseSymbols(strings.NewReader(c.in))
		assert.ErrorContains(t, err, c.err)
	}
}

func TestReadSymbols(t *testing.T) {
	file := filepath.Join(t.TempDir(), "ibm.sym")
	assert.NoError(t, os.WriteFile(file, []byte(testLabels), 0o644))
	ss, err := readSymbols(file)
	assert.NoError(t, err)
	assert.Equal(t, 5, len(ss))

	_, err = readSymbols(filepath.Join(t.TempDir(), "missing.sym"))
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	ss, err := parseSymbols(strings.NewReader(testLabels))
	assert.NoError(t, err)
	for _, c := range []struct {
		arg   string
		addr  uint16
		label string
		ok    bool
	}{
		{"letter_b", 0x239, "letter_b", true},
		{"22a", 0x22a, "letter_i", true},
		{"0x200", 0x200, "start", true},
		{"$2F0", 0x2f0, "2f0", true},
		{"nowhere", 0, "", false},
		{"fffff", 0, "", false},
	} {
		s, ok := ss.resolve(c.arg)
		assert.Equal(t, c.ok, ok, c.arg)
		assert.Equal(t, c.addr, s.addr, c.arg)
		assert.Equal(t, c.label, s.label, c.arg)
	}
}

func TestAddrForOp(t *testing.T) {
	for op, want := range map[chip8.Op]uint16{
		0x1228: 0x228,
		0x2345: 0x345,
		0xA22A: 0x22A,
	} {
		got, ok := addrForOp(op)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := addrForOp(0x6108)
	assert.False(t, ok)
}
