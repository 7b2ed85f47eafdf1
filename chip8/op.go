package chip8

import (
	"fmt"
	"math/bits"
	"strings"

	chip8cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Op represents a CHIP-8 instruction.
type Op uint16

// Group returns the first nibble, which selects the instruction family.
func (op Op) Group() byte { return byte(op >> 12) }

// X returns the register index held in the second nibble.
func (op Op) X() byte { return byte(op>>8) & 0x0F }

// Y returns the register index held in the third nibble.
func (op Op) Y() byte { return byte(op>>4) & 0x0F }

// N returns the low nibble.
func (op Op) N() byte { return byte(op) & 0x0F }

// NN returns the low byte.
func (op Op) NN() byte { return byte(op) }

// NNN returns the low 12 bits, an address.
func (op Op) NNN() uint16 { return uint16(op) & 0x0FFF }

// Name returns the mnemonic of the instruction, or the empty string if op
// is not a CHIP-8 instruction. When several table entries match, the one
// with the most specific mask wins, so 00E0 is CLS rather than SYS.
func (op Op) Name() string {
	var (
		name string
		best = -1
	)
	for _, o := range chip8cpu.Opcodes[int(op.Group())] {
		if o.Instruction == nil || o.Info.Mask&uint16(op) != o.Info.Value {
			continue
		}
		if n := bits.OnesCount16(o.Info.Mask); n > best {
			name, best = o.Instruction.Name, n
		}
	}
	return strings.ToUpper(name)
}

// String returns the instruction in assembly form, for example "LD V1, 0x08".
// Values that are not instructions are shown as a data word.
func (op Op) String() string {
	name := op.Name()
	if name == "" {
		return fmt.Sprintf("DW 0x%.4X", uint16(op))
	}
	if args := op.operands(); args != "" {
		return name + " " + args
	}
	return name
}

func (op Op) operands() string {
	x, y := op.X(), op.Y()
	switch op.Group() {
	case 0x0:
		if op == 0x00E0 || op == 0x00EE {
			return ""
		}
		return fmt.Sprintf("0x%.3X", op.NNN())
	case 0x1, 0x2:
		return fmt.Sprintf("0x%.3X", op.NNN())
	case 0x3, 0x4, 0x6, 0x7, 0xC:
		return fmt.Sprintf("V%X, 0x%.2X", x, op.NN())
	case 0x5, 0x9:
		return fmt.Sprintf("V%X, V%X", x, y)
	case 0x8:
		switch op.N() {
		case 0x6, 0xE:
			return fmt.Sprintf("V%X {, V%X}", x, y)
		}
		return fmt.Sprintf("V%X, V%X", x, y)
	case 0xA:
		return fmt.Sprintf("I, 0x%.3X", op.NNN())
	case 0xB:
		return fmt.Sprintf("V0, 0x%.3X", op.NNN())
	case 0xD:
		return fmt.Sprintf("V%X, V%X, %d", x, y, op.N())
	case 0xE:
		return fmt.Sprintf("V%X", x)
	case 0xF:
		switch op.NN() {
		case 0x07:
			return fmt.Sprintf("V%X, DT", x)
		case 0x0A:
			return fmt.Sprintf("V%X, K", x)
		case 0x15:
			return fmt.Sprintf("DT, V%X", x)
		case 0x18:
			return fmt.Sprintf("ST, V%X", x)
		case 0x1E:
			return fmt.Sprintf("I, V%X", x)
		case 0x29:
			return fmt.Sprintf("F, V%X", x)
		case 0x33:
			return fmt.Sprintf("B, V%X", x)
		case 0x55:
			return fmt.Sprintf("[I], V%X", x)
		case 0x65:
			return fmt.Sprintf("V%X, [I]", x)
		}
		return fmt.Sprintf("V%X", x)
	}
	return ""
}

// OpAt returns the instruction stored at addr.
func (m *Machine) OpAt(addr uint16) Op {
	return Op(short(m.mem(addr), m.mem(addr+1)))
}

// Disassemble returns n instructions starting at addr, one per line,
// each prefixed with its address.
func (m *Machine) Disassemble(addr uint16, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		a := (addr + uint16(2*i)) & addrMask
		fmt.Fprintf(&b, "%.3x  %.4x  %v\n", a, uint16(m.OpAt(a)), m.OpAt(a))
	}
	return b.String()
}
