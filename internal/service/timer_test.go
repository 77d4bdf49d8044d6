package service

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnTimer(t *testing.T) {
	t.Run("Restart resets remaining time and ticks every interval", func(t *testing.T) {
		// Given: a timer on a fake clock
		clock := clockwork.NewFakeClock()
		timer := NewTurnTimer(clock, 60, time.Second)
		ticks := make(chan uint64, 1)

		// When: the countdown is started
		remaining := timer.Restart(func(generation uint64) { ticks <- generation })

		// Then: it starts from the full turn time
		assert.Equal(t, 60, remaining)
		assert.True(t, timer.Active())

		// When: one second passes
		clock.Advance(time.Second)

		// Then: the tick carries the current generation and decrements the countdown
		generation := <-ticks
		remaining, ok := timer.Tick(generation)
		require.True(t, ok)
		assert.Equal(t, 59, remaining)

		timer.Cancel()
	})

	t.Run("Ticks of a superseded countdown are dropped", func(t *testing.T) {
		// Given: a countdown that has been restarted
		clock := clockwork.NewFakeClock()
		timer := NewTurnTimer(clock, 60, time.Second)
		ticks := make(chan uint64, 2)

		timer.Restart(func(generation uint64) { ticks <- generation })
		stale := timer.generation
		timer.Restart(func(generation uint64) { ticks <- generation })

		// When: a tick from the first countdown arrives
		_, ok := timer.Tick(stale)

		// Then: it is rejected and the remaining time is untouched
		assert.False(t, ok)
		assert.Equal(t, 60, timer.Remaining())

		timer.Cancel()
	})

	t.Run("Cancel stops ticking", func(t *testing.T) {
		// Given: a running countdown
		clock := clockwork.NewFakeClock()
		timer := NewTurnTimer(clock, 60, time.Second)
		ticks := make(chan uint64, 1)
		timer.Restart(func(generation uint64) { ticks <- generation })
		generation := timer.generation

		// When: it is canceled and time passes
		timer.Cancel()
		clock.Advance(time.Second)

		// Then: late ticks are rejected and the timer is inactive
		_, ok := timer.Tick(generation)
		assert.False(t, ok)
		assert.False(t, timer.Active())
	})

	t.Run("Cancel is idempotent", func(t *testing.T) {
		timer := NewTurnTimer(clockwork.NewFakeClock(), 60, time.Second)

		timer.Cancel()
		timer.Restart(func(uint64) {})
		timer.Cancel()
		timer.Cancel()

		assert.False(t, timer.Active())
	})
}
