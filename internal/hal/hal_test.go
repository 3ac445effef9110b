package hal

import (
	"testing"
	"time"

	"github.com/kapitanov/chip8/internal/vm"
	"github.com/retroenv/retrogolib/assert"
)

type fakeClock struct {
	now   time.Time
	slept []time.Duration
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
}

func newTestLimiter(c *fakeClock) *FrameLimiter {
	l := NewFrameLimiter(FrameDuration)
	l.now = c.Now
	l.sleep = c.Sleep
	return l
}

func TestFrameLimiter_SleepsRemainderOfFrame(t *testing.T) {
	c := &fakeClock{now: time.Unix(0, 0)}
	l := newTestLimiter(c)

	l.Wait()
	c.now = c.now.Add(4 * time.Millisecond)
	l.Wait()

	assert.Equal(t, 2, len(c.slept))
	assert.Equal(t, FrameDuration, c.slept[0])
	assert.Equal(t, FrameDuration-4*time.Millisecond, c.slept[1])
}

func TestFrameLimiter_ResyncsWhenBehind(t *testing.T) {
	c := &fakeClock{now: time.Unix(0, 0)}
	l := newTestLimiter(c)

	l.Wait()
	c.now = c.now.Add(10 * FrameDuration)
	l.Wait()
	l.Wait()

	assert.Equal(t, 2, len(c.slept))
	assert.Equal(t, FrameDuration, c.slept[1])
}

func TestKeyForRune(t *testing.T) {
	tests := []struct {
		r        rune
		expected vm.Key
	}{
		{'1', vm.Key1},
		{'4', vm.KeyC},
		{'q', vm.Key4},
		{'R', vm.KeyD},
		{'x', vm.Key0},
		{'V', vm.KeyF},
	}

	for _, tt := range tests {
		key, ok := KeyForRune(tt.r)
		assert.True(t, ok)
		assert.Equal(t, tt.expected, key)
	}

	_, ok := KeyForRune('p')
	assert.False(t, ok)
	assert.Equal(t, vm.KeyCount, len(Layout))
}
