package host

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/retroenv/retrogolib/log"

	"github.com/nf/ch8/chip8"
)

// tapTime is how long a key stays down after a terminal key press.
// Terminals repeat held keys at roughly 30 Hz, so this bridges repeats.
const tapTime = 100 * time.Millisecond

// Terminal is a Frontend that draws the display in a text terminal using
// half-block characters, two display rows per line of text.
type Terminal struct {
	keys      *Keypad
	log       *log.Logger
	newScreen func() (tcell.Screen, error)

	mu  sync.Mutex
	scr tcell.Screen // nil when not running
}

// NewTerminal returns a terminal front end that reports key presses to keys.
func NewTerminal(keys *Keypad, logger *log.Logger) *Terminal {
	return &Terminal{keys: keys, log: logger, newScreen: tcell.NewScreen}
}

// Audio returns the terminal itself: StartBeep rings the terminal bell.
func (t *Terminal) Audio() chip8.Audio { return t }

func (t *Terminal) StartBeep() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.scr != nil {
		if err := t.scr.Beep(); err != nil {
			t.log.Debug("Terminal bell failed", log.Err(err))
		}
	}
}

func (t *Terminal) StopBeep() {}

func (t *Terminal) Run(ctx context.Context, frames <-chan chip8.Display) error {
	s, err := t.newScreen()
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	if err := s.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	t.mu.Lock()
	t.scr = s
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.scr = nil
		t.mu.Unlock()
		s.Fini()
	}()

	var (
		events = make(chan tcell.Event)
		quit   = make(chan struct{})
	)
	defer close(quit)
	go func() {
		for {
			ev := s.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	var last chip8.Display
	t.draw(s, &last)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d := <-frames:
			last = d
			t.draw(s, &last)
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch ev.Key() {
				case tcell.KeyEscape, tcell.KeyCtrlC:
					return nil
				case tcell.KeyRune:
					if k, ok := KeyForRune(ev.Rune()); ok {
						t.keys.Tap(k, tapTime)
					}
				}
			case *tcell.EventResize:
				s.Sync()
				t.draw(s, &last)
			}
		}
	}
}

var halfBlocks = [4]rune{' ', '▀', '▄', '█'}

func (t *Terminal) draw(s tcell.Screen, d *chip8.Display) {
	style := tcell.StyleDefault.
		Foreground(tcell.ColorWhite).
		Background(tcell.ColorBlack)
	for y := 0; y < chip8.DisplayHeight; y += 2 {
		for x := 0; x < chip8.DisplayWidth; x++ {
			var i int
			if d[x][y] {
				i |= 1
			}
			if d[x][y+1] {
				i |= 2
			}
			s.SetContent(x, y/2, halfBlocks[i], nil, style)
		}
	}
	s.Show()
}
