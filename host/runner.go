// Package host connects a chip8.Machine to the outside world: it paces
// execution in real time, feeds it key presses, and hands finished frames
// to a window or terminal.
package host

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/retroenv/retrogolib/log"

	"github.com/nf/ch8/chip8"
)

// Config holds the settings of a Runner.
type Config struct {
	Rate   int          // instructions per second; DefaultRate if zero
	Quirks chip8.Quirks // interpreter behavior
	Dump   int          // log the machine state once this many cycles have run; 0 disables
	Debug  bool         // start paused and accept debugger commands
	Seed   uint64       // if non-zero, seeds the CXNN random number generator
}

// Frontend displays frames and collects input for a running machine.
type Frontend interface {
	// Run drives the front end until the user quits or ctx is done.
	// Frames are delivered on the channel as they are produced.
	Run(ctx context.Context, frames <-chan chip8.Display) error

	// Audio returns the beeper the machine should drive.
	Audio() chip8.Audio
}

// StateKind describes why a StateFunc is being called.
type StateKind int

const (
	ClearState StateKind = iota // execution resumed
	QuietState                  // periodic update while running
	BreakState                  // stopped at a breakpoint
	PauseState                  // paused by the debugger
	StepState                   // a single instruction was executed
)

func (k StateKind) String() string {
	switch k {
	case ClearState:
		return "clear"
	case QuietState:
		return "quiet"
	case BreakState:
		return "break"
	case PauseState:
		return "pause"
	case StepState:
		return "step"
	}
	return fmt.Sprintf("StateKind(%d)", int(k))
}

// StateFunc observes the machine from the runner's goroutine.
// The machine must not be retained or modified after the call returns.
type StateFunc func(m *chip8.Machine, k StateKind)

// ErrNotRunning is returned by Reset when the runner has stopped.
var ErrNotRunning = errors.New("runner not running")

// Runner executes a CHIP-8 program at a fixed instruction rate, decrements
// its timers at 60 Hz, and publishes frames to a Frontend.
type Runner struct {
	cfg   Config
	keys  *Keypad
	log   *log.Logger
	state StateFunc

	reset     chan []byte
	resetDone chan error
	debug     chan debugCmd
	done      chan struct{}
}

type debugCmd struct {
	cmd  string
	addr uint16
}

// NewRunner returns a runner that reads input from keys.
func NewRunner(cfg Config, keys *Keypad, logger *log.Logger) *Runner {
	if cfg.Rate <= 0 {
		cfg.Rate = chip8.DefaultRate
	}
	if keys == nil {
		keys = NewKeypad()
	}
	if logger == nil {
		logger = log.NewWithConfig(log.DefaultConfig())
	}
	return &Runner{
		cfg:       cfg,
		keys:      keys,
		log:       logger,
		reset:     make(chan []byte),
		resetDone: make(chan error),
		debug:     make(chan debugCmd),
		done:      make(chan struct{}),
	}
}

// SetStateFunc registers f to be called when the debugger's view of the
// machine should be refreshed. It must be called before Run.
func (r *Runner) SetStateFunc(f StateFunc) { r.state = f }

// Run loads rom into a new machine and executes it until the front end
// returns or ctx is cancelled. A Runner can only be run once.
func (r *Runner) Run(ctx context.Context, rom []byte, fe Frontend) error {
	audio := fe.Audio()
	m, err := r.newMachine(rom, audio)
	if err != nil {
		close(r.done)
		return err
	}
	r.log.Info("Starting machine",
		log.Int("rom_size", len(rom)),
		log.Int("rate", r.cfg.Rate),
		log.Stringer("quirks", r.cfg.Quirks))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		frames  = make(chan chip8.Display, 1)
		execErr = make(chan error, 1)
	)
	go func() {
		defer close(r.done)
		execErr <- r.exec(ctx, cancel, m, audio, frames)
	}()
	err = fe.Run(ctx, frames)
	cancel()
	if xerr := <-execErr; err == nil {
		err = xerr
	}
	audio.StopBeep()
	return err
}

// Reset replaces the running program with rom, keeping the front end.
func (r *Runner) Reset(rom []byte) error {
	select {
	case r.reset <- rom:
	case <-r.done:
		return ErrNotRunning
	}
	return <-r.resetDone
}

// Debug sends a debugger command to the runner. The commands are
// "pause", "step", "continue", "break" (stop when PC reaches addr; an addr
// of zero clears the breakpoint) and "exit". Only the first letter is
// significant.
func (r *Runner) Debug(cmd string, addr uint16) {
	select {
	case r.debug <- debugCmd{cmd, addr}:
	case <-r.done:
	}
}

func (r *Runner) newMachine(rom []byte, audio chip8.Audio) (*chip8.Machine, error) {
	m, err := chip8.New(rom, r.cfg.Quirks, chip8.Drivers{Audio: audio, Input: r.keys}, r.log)
	if err != nil {
		return nil, fmt.Errorf("loading program: %w", err)
	}
	if r.cfg.Seed != 0 {
		m.Seed(r.cfg.Seed)
	}
	return m, nil
}

func (r *Runner) exec(ctx context.Context, cancel func(), m *chip8.Machine, audio chip8.Audio, frames chan chip8.Display) error {
	t := time.NewTicker(time.Second / chip8.TimerRate)
	defer t.Stop()

	var (
		p = pacer{rate: r.cfg.Rate}

		paused    = r.cfg.Debug
		breakAt   uint16
		skipBreak bool // the instruction at breakAt runs once after a resume
		cycles    int
	)
	if paused {
		r.setState(m, PauseState)
	}
	step := func() {
		m.Cycle()
		cycles++
		if cycles == r.cfg.Dump {
			r.log.Info("Machine state",
				log.Int("cycle", cycles),
				log.String("state", m.State().String()))
		}
	}
	for {
		select {
		case <-ctx.Done():
			return nil

		case rom := <-r.reset:
			nm, err := r.newMachine(rom, audio)
			if err == nil {
				if m.ST > 0 {
					audio.StopBeep()
				}
				m, cycles = nm, 0
				m.Dirty = true
				p.reset()
				r.log.Info("Program reset", log.Int("rom_size", len(rom)))
				r.setState(m, ClearState)
			}
			r.resetDone <- err

		case c := <-r.debug:
			if c.cmd == "" {
				break
			}
			switch c.cmd[0] {
			case 'p':
				paused = true
				r.setState(m, PauseState)
			case 's':
				paused = true
				step()
				skipBreak = false
				r.setState(m, StepState)
			case 'c':
				paused, skipBreak = false, true
				r.setState(m, ClearState)
			case 'b':
				breakAt = c.addr
				if breakAt != 0 {
					r.log.Info("Breakpoint set", log.Hex("address", breakAt))
				} else {
					r.log.Info("Breakpoint cleared")
				}
			case 'e':
				cancel()
				return nil
			default:
				r.log.Warn("Unknown debug command", log.String("command", c.cmd))
			}
			publish(m, frames)

		case <-t.C:
			if !paused {
				for n := p.next(); n > 0; n-- {
					if breakAt != 0 && m.PC == breakAt && !skipBreak {
						paused = true
						r.setState(m, BreakState)
						break
					}
					skipBreak = false
					step()
				}
				m.DecrTimers()
			}
			publish(m, frames)
			if !paused {
				r.setState(m, QuietState)
			}
		}
	}
}

func (r *Runner) setState(m *chip8.Machine, k StateKind) {
	if r.state != nil {
		r.state(m, k)
	}
}

// publish hands the display to the front end if it changed, replacing any
// frame the front end has not consumed yet.
func publish(m *chip8.Machine, frames chan chip8.Display) {
	if !m.Dirty {
		return
	}
	select {
	case <-frames:
	default:
	}
	frames <- m.Display
	m.Dirty = false
}

// pacer spreads rate instructions per second over TimerRate ticks,
// carrying the remainder so that no instructions are lost.
type pacer struct {
	rate  int
	carry int
}

func (p *pacer) next() int {
	total := p.rate + p.carry
	p.carry = total % chip8.TimerRate
	return total / chip8.TimerRate
}

func (p *pacer) reset() { p.carry = 0 }
