package host

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"time"

	"github.com/retroenv/retrogolib/log"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/nf/ch8/chip8"
)

// GUI is a Frontend that shows the display in a native window.
// Its Run method must be called from the main goroutine.
type GUI struct {
	keys  *Keypad
	log   *log.Logger
	scale int
	beep  *LogBeeper
}

// NewGUI returns a window front end that enlarges the display scale times
// and reports key presses and releases to keys.
func NewGUI(keys *Keypad, scale int, logger *log.Logger) *GUI {
	if scale < 1 {
		scale = 1
	}
	return &GUI{
		keys:  keys,
		log:   logger,
		scale: scale,
		beep:  &LogBeeper{Log: logger},
	}
}

func (g *GUI) Audio() chip8.Audio { return g.beep }

func (g *GUI) Run(ctx context.Context, frames <-chan chip8.Display) (err error) {
	driver.Main(func(s screen.Screen) {
		err = g.run(ctx, s, frames)
	})
	return
}

func (g *GUI) run(ctx context.Context, s screen.Screen, frames <-chan chip8.Display) error {
	w, err := s.NewWindow(&screen.NewWindowOptions{
		Title:  "ch8",
		Width:  chip8.DisplayWidth * g.scale,
		Height: chip8.DisplayHeight * g.scale,
	})
	if err != nil {
		return fmt.Errorf("opening window: %w", err)
	}
	defer w.Release()

	sz := image.Point{chip8.DisplayWidth, chip8.DisplayHeight}
	buf, err := s.NewBuffer(sz)
	if err != nil {
		return fmt.Errorf("allocating buffer: %w", err)
	}
	defer buf.Release()
	tex, err := s.NewTexture(sz)
	if err != nil {
		return fmt.Errorf("allocating texture: %w", err)
	}
	defer tex.Release()

	var blank chip8.Display
	Frame(buf.RGBA(), &blank)
	tex.Upload(image.Point{}, buf, buf.Bounds())

	type update struct{}
	type quit struct{}
	go func() {
		t := time.NewTicker(time.Second / chip8.TimerRate)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				w.Send(update{})
			case <-ctx.Done():
				w.Send(quit{})
				return
			}
		}
	}()

	var (
		winSize size.Event
		dirty   bool
	)
	for {
		switch e := w.NextEvent().(type) {
		case quit:
			return nil

		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return nil
			}

		case size.Event:
			winSize = e
			if winSize.WidthPx+winSize.HeightPx == 0 {
				return nil
			}
			dirty = true

		case paint.Event:
			dirty = true

		case key.Event:
			if e.Code == key.CodeEscape {
				return nil
			}
			if k, ok := keyForCode[e.Code]; ok && e.Direction != key.DirNone {
				g.keys.Set(k, e.Direction == key.DirPress)
			}

		case update:
			select {
			case d := <-frames:
				Frame(buf.RGBA(), &d)
				tex.Upload(image.Point{}, buf, buf.Bounds())
				dirty = true
			default:
			}
			if dirty {
				w.Scale(winSize.Bounds(), tex, tex.Bounds(), draw.Src, nil)
				w.Publish()
				dirty = false
			}

		case error:
			g.log.Error("Window error", log.Err(e))
		}
	}
}

// keyForCode is the QWERTY layout of keyLayout expressed as physical keys,
// so that key releases can be matched with their presses.
var keyForCode = map[key.Code]byte{
	key.Code1: 0x1, key.Code2: 0x2, key.Code3: 0x3, key.Code4: 0xC,
	key.CodeQ: 0x4, key.CodeW: 0x5, key.CodeE: 0x6, key.CodeR: 0xD,
	key.CodeA: 0x7, key.CodeS: 0x8, key.CodeD: 0x9, key.CodeF: 0xE,
	key.CodeZ: 0xA, key.CodeX: 0x0, key.CodeC: 0xB, key.CodeV: 0xF,
}
