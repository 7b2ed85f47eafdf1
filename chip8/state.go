package chip8

import (
	"fmt"
	"strings"
)

// Display is the monochrome frame buffer, indexed as Display[x][y]
// with the origin in the top-left corner.
type Display [DisplayWidth][DisplayHeight]bool

func (d *Display) clear() { *d = Display{} }

// Lit returns the number of pixels that are on.
func (d *Display) Lit() int {
	n := 0
	for x := range d {
		for y := range d[x] {
			if d[x][y] {
				n++
			}
		}
	}
	return n
}

// String renders the display as rows of '#' and '.' characters.
func (d *Display) String() string {
	var b strings.Builder
	b.Grow((DisplayWidth + 1) * DisplayHeight)
	for y := 0; y < DisplayHeight; y++ {
		for x := 0; x < DisplayWidth; x++ {
			if d[x][y] {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// State is a copy of the registers of a Machine, taken by State.
type State struct {
	PC, I  uint16
	V      [16]byte
	DT, ST byte
	Stack  []uint16
	Op     Op // instruction at PC
}

// State returns a copy of the machine's registers.
func (m *Machine) State() State {
	return State{
		PC:    m.PC,
		I:     m.I,
		V:     m.V,
		DT:    m.DT,
		ST:    m.ST,
		Stack: append([]uint16(nil), m.Stack...),
		Op:    m.OpAt(m.PC),
	}
}

func (s State) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pc %.3x  %.4x %-16v  i %.3x  dt %.2x  st %.2x\n",
		s.PC, uint16(s.Op), s.Op, s.I, s.DT, s.ST)
	for i, v := range s.V {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%.2x", v)
	}
	b.WriteString("\n( ")
	for _, a := range s.Stack {
		fmt.Fprintf(&b, "%.3x ", a)
	}
	b.WriteString(")")
	return b.String()
}
