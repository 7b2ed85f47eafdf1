package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/nf/ch8/chip8"
)

// symbols is a list of labels sorted by address.
type symbols []symbol

type symbol struct {
	addr  uint16
	label string
}

func (s symbol) String() string { return fmt.Sprintf("%s (%.3x)", s.label, s.addr) }

func (s symbols) forAddr(addr uint16) (ss []symbol) {
	i := sort.Search(len(s), func(i int) bool { return s[i].addr >= addr })
	for ; i < len(s) && s[i].addr == addr; i++ {
		ss = append(ss, s[i])
	}
	return ss
}

func (s symbols) withLabelPrefix(prefix string) (ss []symbol) {
	for _, sym := range s {
		if strings.HasPrefix(sym.label, prefix) {
			ss = append(ss, sym)
		}
	}
	return ss
}

// resolve returns the symbol named by arg, which is either a label or a
// hexadecimal address with an optional 0x or $ prefix.
func (s symbols) resolve(arg string) (symbol, bool) {
	for _, sym := range s {
		if sym.label == arg {
			return sym, true
		}
	}
	addr, err := parseAddr(arg)
	if err != nil {
		return symbol{}, false
	}
	if ss := s.forAddr(addr); len(ss) > 0 {
		return ss[0], true
	}
	return symbol{addr: addr, label: fmt.Sprintf("%.3x", addr)}, true
}

func parseAddr(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "0x"), "$")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, err
	}
	if v >= chip8.MemSize {
		return 0, fmt.Errorf("address %x out of range", v)
	}
	return uint16(v), nil
}

// readSymbols reads a label file. Each line holds a hexadecimal address
// and a label separated by white space; blank lines and lines starting
// with '#' or ';' are ignored.
func readSymbols(file string) (symbols, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ss, err := parseSymbols(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return ss, nil
}

func parseSymbols(r io.Reader) (symbols, error) {
	var (
		ss symbols
		sc = bufio.NewScanner(r)
		n  int
	)
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' || line[0] == ';' {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: want address and label, got %q", n, line)
		}
		addr, err := parseAddr(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid address %q: %w", n, fields[0], err)
		}
		ss = append(ss, symbol{addr: addr, label: fields[1]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(ss, func(i, j int) bool {
		return ss[i].addr < ss[j].addr
	})
	return ss, nil
}

// addrForOp returns the address an instruction refers to, if any.
func addrForOp(op chip8.Op) (uint16, bool) {
	switch op.Group() {
	case 0x1, 0x2, 0xA:
		return op.NNN(), true
	}
	return 0, false
}
