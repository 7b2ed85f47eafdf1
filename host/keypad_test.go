package host

import (
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
)

func TestKeypadPriority(t *testing.T) {
	k := NewKeypad()
	_, ok := k.KeyPressed()
	assert.False(t, ok)

	k.Set(0xB, true)
	k.Set(0x3, true)
	key, ok := k.KeyPressed()
	assert.True(t, ok)
	assert.Equal(t, byte(0x3), key)

	k.Set(0x3, false)
	key, ok = k.KeyPressed()
	assert.True(t, ok)
	assert.Equal(t, byte(0xB), key)

	k.Set(0x10, true)
	k.Release()
	_, ok = k.KeyPressed()
	assert.False(t, ok)
}

func TestKeypadTap(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	k := NewKeypad()
	k.now = func() time.Time { return now }

	k.Tap(0x7, 100*time.Millisecond)
	key, ok := k.KeyPressed()
	assert.True(t, ok)
	assert.Equal(t, byte(0x7), key)

	now = now.Add(99 * time.Millisecond)
	_, ok = k.KeyPressed()
	assert.True(t, ok)

	now = now.Add(time.Millisecond)
	_, ok = k.KeyPressed()
	assert.False(t, ok)
}

func TestKeypadSetCancelsTap(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	k := NewKeypad()
	k.now = func() time.Time { return now }

	k.Tap(0x1, time.Millisecond)
	k.Set(0x1, true)
	now = now.Add(time.Second)
	key, ok := k.KeyPressed()
	assert.True(t, ok)
	assert.Equal(t, byte(0x1), key)
}

func TestKeyForRune(t *testing.T) {
	for r, want := range map[rune]byte{
		'1': 0x1, '4': 0xC, 'q': 0x4, 'R': 0xD,
		'a': 0x7, 'f': 0xE, 'z': 0xA, 'x': 0x0, 'V': 0xF,
	} {
		got, ok := KeyForRune(r)
		assert.True(t, ok, string(r))
		assert.Equal(t, want, got, string(r))
	}
	_, ok := KeyForRune('p')
	assert.False(t, ok)
}

func TestKeyLayoutsAgree(t *testing.T) {
	assert.Equal(t, len(keyLayout), len(keyForCode))
	seen := map[byte]bool{}
	for _, k := range keyForCode {
		seen[k] = true
	}
	assert.Equal(t, 16, len(seen))
}
