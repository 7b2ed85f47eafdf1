package chip8

import (
	"github.com/retroenv/retrogolib/log"
)

// Cycle executes the instruction at m.PC.
// The program counter is advanced past the instruction before it executes,
// so jumps and calls overwrite the advance. Instructions that are not
// recognised, and returns with an empty stack, are logged and skipped.
func (m *Machine) Cycle() {
	var (
		op   = Op(short(m.mem(m.PC), m.mem(m.PC+1)))
		opPC = m.PC
		x    = op.X()
		y    = op.Y()
	)
	m.PC = (m.PC + 2) & addrMask

	switch op.Group() {
	case 0x0:
		switch op {
		case 0x00E0:
			m.Display.clear()
			m.Dirty = true
		case 0x00EE:
			n := len(m.Stack)
			if n == 0 {
				m.log.Warn("Return with empty stack", log.Hex("pc", opPC))
				return
			}
			m.PC = m.Stack[n-1]
			m.Stack = m.Stack[:n-1]
		default:
			m.unknown(op, opPC)
		}
	case 0x1:
		m.PC = op.NNN()
	case 0x2:
		m.Stack = append(m.Stack, m.PC)
		m.PC = op.NNN()
	case 0x3:
		if m.V[x] == op.NN() {
			m.skip()
		}
	case 0x4:
		if m.V[x] != op.NN() {
			m.skip()
		}
	case 0x5:
		if m.V[x] == m.V[y] {
			m.skip()
		}
	case 0x6:
		m.V[x] = op.NN()
	case 0x7:
		m.V[x] += op.NN()
	case 0x8:
		m.execALU(op, opPC)
	case 0x9:
		if m.V[x] != m.V[y] {
			m.skip()
		}
	case 0xA:
		m.I = op.NNN()
	case 0xB:
		base := m.V[0]
		if m.quirks.JumpUsesVX {
			base = m.V[x]
		}
		m.PC = (op.NNN() + uint16(base)) & addrMask
	case 0xC:
		m.V[x] = byte(m.rnd.Uint32()) & op.NN()
	case 0xD:
		m.draw(m.V[x], m.V[y], op.N())
	case 0xE:
		key, ok := m.input.KeyPressed()
		switch op.NN() {
		case 0x9E:
			if ok && key == m.V[x] {
				m.skip()
			}
		case 0xA1:
			if !ok || key != m.V[x] {
				m.skip()
			}
		default:
			m.unknown(op, opPC)
		}
	case 0xF:
		m.execMisc(op, opPC)
	}
}

// skip skips the next instruction.
func (m *Machine) skip() { m.PC = (m.PC + 2) & addrMask }

// execALU executes the 8XYN register-to-register instructions.
// VF is written after the result so that it holds the flag even when X is F.
func (m *Machine) execALU(op Op, opPC uint16) {
	var (
		x, y   = op.X(), op.Y()
		vx, vy = m.V[x], m.V[y]
	)
	switch op.N() {
	case 0x0:
		m.V[x] = vy
	case 0x1:
		m.V[x] = vx | vy
	case 0x2:
		m.V[x] = vx & vy
	case 0x3:
		m.V[x] = vx ^ vy
	case 0x4:
		sum := uint16(vx) + uint16(vy)
		m.V[x] = byte(sum)
		m.V[0xF] = byte(sum >> 8)
	case 0x5:
		// VF is 1 when there is no borrow.
		m.V[x] = vx - vy
		m.V[0xF] = flag(vx >= vy)
	case 0x7:
		m.V[x] = vy - vx
		m.V[0xF] = flag(vy >= vx)
	case 0x6:
		if m.quirks.ShiftCopiesVY {
			vx = vy
		}
		m.V[x] = vx >> 1
		m.V[0xF] = vx & 0x01
	case 0xE:
		if m.quirks.ShiftCopiesVY {
			vx = vy
		}
		m.V[x] = vx << 1
		m.V[0xF] = vx >> 7
	default:
		m.unknown(op, opPC)
	}
}

// execMisc executes the FXNN timer, keyboard and memory block instructions.
func (m *Machine) execMisc(op Op, opPC uint16) {
	x := op.X()
	switch op.NN() {
	case 0x07:
		m.V[x] = m.DT
	case 0x0A:
		key, ok := m.input.KeyPressed()
		if !ok {
			// Wait by executing this instruction again on the next cycle.
			m.PC = opPC
			return
		}
		m.log.Debug("Key pressed", log.Hex("key", key))
		m.V[x] = key
	case 0x15:
		m.DT = m.V[x]
	case 0x18:
		m.setSoundTimer(m.V[x])
	case 0x1E:
		m.I += uint16(m.V[x])
		// The overflow test below always holds, so VF is set whenever the
		// quirk is enabled. Interpreters disagree on what it should test.
		if i := m.I; (i <= 0x0FFF || i >= 0x1000) && m.quirks.AddIndexSetsVF {
			m.V[0xF] = 1
		}
	case 0x29:
		m.I = FontStart + 5*uint16(m.V[x]&0x0F)
	case 0x33:
		v := m.V[x]
		m.setMem(m.I, v/100)
		m.setMem(m.I+1, v/10%10)
		m.setMem(m.I+2, v%10)
	case 0x55:
		for i := 0; i <= int(x); i++ {
			m.setMem(m.I+uint16(i), m.V[i])
		}
		if m.quirks.LoadStoreIncrementsI {
			m.I += uint16(x) + 1
		}
	case 0x65:
		for i := 0; i <= int(x); i++ {
			m.V[i] = m.mem(m.I + uint16(i))
		}
		if m.quirks.LoadStoreIncrementsI {
			m.I += uint16(x) + 1
		}
	default:
		m.unknown(op, opPC)
	}
}

// draw XORs the n-row sprite at I onto the display with its top-left corner
// at (vx, vy) wrapped onto the screen. Rows and columns that fall past the
// right or bottom edge are clipped.
func (m *Machine) draw(vx, vy, n byte) {
	var (
		x0 = int(vx) % DisplayWidth
		y  = int(vy) % DisplayHeight
	)
	m.V[0xF] = 0
	m.Dirty = true
	for row := uint16(0); row < uint16(n) && y < DisplayHeight; row, y = row+1, y+1 {
		bits := m.mem(m.I + row)
		for x := x0; bits != 0 && x < DisplayWidth; x, bits = x+1, bits<<1 {
			if bits&0x80 == 0 {
				continue
			}
			if m.Display[x][y] {
				m.V[0xF] = 1
			}
			m.Display[x][y] = !m.Display[x][y]
		}
	}
}

func (m *Machine) unknown(op Op, addr uint16) {
	m.log.Error("Unknown instruction",
		log.Hex("opcode", uint16(op)),
		log.Hex("address", addr))
}
