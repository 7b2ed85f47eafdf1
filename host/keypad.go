package host

import (
	"sync"
	"time"
)

// Keypad is the state of the 16-key hexadecimal keypad. It is safe for
// concurrent use: front ends update it while the machine polls it.
type Keypad struct {
	mu    sync.Mutex
	down  [16]bool
	until [16]time.Time // release time of tapped keys
	now   func() time.Time
}

// NewKeypad returns a keypad with no keys pressed.
func NewKeypad() *Keypad {
	return &Keypad{now: time.Now}
}

// Set presses or releases key. Keys above 0xF are ignored.
func (k *Keypad) Set(key byte, down bool) {
	if key > 0xF {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.down[key] = down
	k.until[key] = time.Time{}
}

// Tap presses key and releases it after d. Terminals report key presses but
// not releases, so a tap stands in for holding the key.
func (k *Keypad) Tap(key byte, d time.Duration) {
	if key > 0xF {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	k.down[key] = true
	k.until[key] = k.now().Add(d)
}

// Release releases all keys.
func (k *Keypad) Release() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.down = [16]bool{}
	k.until = [16]time.Time{}
}

// KeyPressed implements chip8.Input. If several keys are held the lowest
// numbered one is reported.
func (k *Keypad) KeyPressed() (byte, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	now := k.now()
	for i := range k.down {
		if !k.down[i] {
			continue
		}
		if u := k.until[i]; !u.IsZero() && !now.Before(u) {
			k.down[i] = false
			k.until[i] = time.Time{}
			continue
		}
		return byte(i), true
	}
	return 0, false
}

// keyLayout maps the left-hand block of a QWERTY keyboard onto the
// keypad, which is laid out as
//
//	1 2 3 C
//	4 5 6 D
//	7 8 9 E
//	A 0 B F
var keyLayout = map[rune]byte{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// KeyForRune returns the keypad key bound to the keyboard character r.
func KeyForRune(r rune) (byte, bool) {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	k, ok := keyLayout[r]
	return k, ok
}
