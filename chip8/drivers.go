package chip8

// Audio receives the edges of the sound timer.
type Audio interface {
	// StartBeep is called when the sound timer is set to a non-zero
	// value while it was zero.
	StartBeep()
	// StopBeep is called when the sound timer reaches zero.
	StopBeep()
}

// Input reports the state of the hexadecimal keypad.
type Input interface {
	// KeyPressed returns a key that is currently held down, and reports
	// whether there is one. When several keys are down the implementation
	// picks one.
	KeyPressed() (key byte, ok bool)
}

// Drivers provides access to the platform devices connected to the machine.
type Drivers struct {
	Audio Audio
	Input Input
}

// Nop holds drivers that never beep and never report a key.
var Nop = Drivers{Audio: nop{}, Input: nop{}}

type nop struct{}

func (nop) StartBeep()               {}
func (nop) StopBeep()                {}
func (nop) KeyPressed() (byte, bool) { return 0, false }
