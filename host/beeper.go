package host

import (
	"sync"

	"github.com/retroenv/retrogolib/log"
)

// LogBeeper is a chip8.Audio that records beeps in the log, for hosts
// that cannot make a sound.
type LogBeeper struct {
	Log *log.Logger

	mu      sync.Mutex
	beeping bool
}

func (b *LogBeeper) StartBeep() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.beeping {
		b.beeping = true
		b.Log.Debug("Beep on")
	}
}

func (b *LogBeeper) StopBeep() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.beeping {
		b.beeping = false
		b.Log.Debug("Beep off")
	}
}

// Beeping reports whether a beep is in progress.
func (b *LogBeeper) Beeping() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.beeping
}
