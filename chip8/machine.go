// Package chip8 provides an implementation of a CHIP-8 virtual machine,
// called Machine, that can be used to execute CHIP-8 bytecode.
//
// The machine has no notion of time or of any platform device. The host
// calls Cycle at its chosen instruction rate and DecrTimers at 60 Hz, feeds
// key presses through an Input driver, receives beeper edges through an
// Audio driver, and reads Display (clearing Dirty after it has rendered).
package chip8

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/retroenv/retrogolib/log"
)

const (
	MemSize      = 0x1000
	FontStart    = 0x050
	ProgramStart = 0x200
	MaxROMSize   = MemSize - ProgramStart

	DisplayWidth  = 64
	DisplayHeight = 32

	// DefaultRate is the number of instructions per second executed by
	// hosts that are not told otherwise.
	DefaultRate = 700

	// TimerRate is the frequency at which DecrTimers should be called.
	TimerRate = 60
)

const addrMask = MemSize - 1

// Font holds the hexadecimal digit sprites, five rows each, that are
// written to memory at FontStart.
var Font = [80]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// ErrROMTooLarge is returned by New if the program does not fit in memory
// above ProgramStart.
var ErrROMTooLarge = errors.New("rom too large")

// Machine is an implementation of a CHIP-8 virtual machine.
//
// All fields may be read at any time for diagnostics. Only the host's
// rendering convention should write Dirty.
type Machine struct {
	Mem     [MemSize]byte
	Display Display
	Dirty   bool // Display changed since the host last cleared Dirty.

	PC    uint16
	I     uint16
	Stack []uint16 // return addresses, most recent last
	V     [16]byte // VF doubles as the carry, borrow and collision flag
	DT    byte
	ST    byte

	quirks Quirks
	audio  Audio
	input  Input
	rnd    *rand.Rand
	log    *log.Logger
}

// New returns a machine with the font table loaded at FontStart and rom
// loaded at ProgramStart, ready to execute its first instruction.
// Nil drivers are replaced by no-op drivers and a nil logger by a default one.
func New(rom []byte, q Quirks, d Drivers, logger *log.Logger) (*Machine, error) {
	if len(rom) > MaxROMSize {
		return nil, fmt.Errorf("%w: %d bytes, at most %d fit", ErrROMTooLarge, len(rom), MaxROMSize)
	}
	if d.Audio == nil {
		d.Audio = Nop.Audio
	}
	if d.Input == nil {
		d.Input = Nop.Input
	}
	if logger == nil {
		logger = log.NewWithConfig(log.DefaultConfig())
	}
	m := &Machine{
		PC:     ProgramStart,
		quirks: q,
		audio:  d.Audio,
		input:  d.Input,
		log:    logger,
	}
	copy(m.Mem[FontStart:], Font[:])
	copy(m.Mem[ProgramStart:], rom)
	m.Seed(uint64(time.Now().UnixNano()))
	return m, nil
}

// Quirks returns the quirks the machine was constructed with.
func (m *Machine) Quirks() Quirks { return m.quirks }

// Seed resets the source of CXNN random numbers.
func (m *Machine) Seed(seed uint64) {
	m.rnd = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// DecrTimers counts both timers down by one, stopping at zero.
// The audio driver's StopBeep is called when the sound timer reaches zero.
func (m *Machine) DecrTimers() {
	if m.DT > 0 {
		m.DT--
	}
	if m.ST > 0 {
		m.ST--
		if m.ST == 0 {
			m.audio.StopBeep()
		}
	}
}

func (m *Machine) setSoundTimer(v byte) {
	switch {
	case m.ST == 0 && v > 0:
		m.audio.StartBeep()
	case m.ST > 0 && v == 0:
		m.audio.StopBeep()
	}
	m.ST = v
}

func (m *Machine) mem(addr uint16) byte       { return m.Mem[addr&addrMask] }
func (m *Machine) setMem(addr uint16, v byte) { m.Mem[addr&addrMask] = v }

func short(hi, lo byte) uint16 {
	return uint16(hi)<<8 + uint16(lo)
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}
