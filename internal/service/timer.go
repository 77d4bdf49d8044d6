package service

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// TurnTimer is the per-room turn countdown. It is owned by a Room and every method must be
// called with the room lock held; the ticking goroutine only reports which countdown ticked.
type TurnTimer struct {
	clock    clockwork.Clock
	turnTime int
	interval time.Duration

	generation uint64
	remaining  int
	stop       chan struct{}
}

func NewTurnTimer(clock clockwork.Clock, turnTime int, interval time.Duration) *TurnTimer {
	return &TurnTimer{
		clock:    clock,
		turnTime: turnTime,
		interval: interval,
	}
}

// Restart supersedes any running countdown, resets the remaining time and starts ticking.
// onTick receives the generation of the countdown that ticked and must hand it back to Tick.
func (that *TurnTimer) Restart(onTick func(generation uint64)) int {
	that.Cancel()

	that.generation++
	that.remaining = that.turnTime
	that.stop = make(chan struct{})

	ticker := that.clock.NewTicker(that.interval)
	go run(ticker, that.stop, that.generation, onTick)

	return that.remaining
}

func run(ticker clockwork.Ticker, stop <-chan struct{}, generation uint64, onTick func(uint64)) {
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			onTick(generation)
		}
	}
}

// Tick decrements the countdown started with the given generation. It reports false for ticks
// of a canceled or superseded countdown, which must then be dropped.
func (that *TurnTimer) Tick(generation uint64) (int, bool) {
	if !that.Active() || generation != that.generation {
		return 0, false
	}

	that.remaining--

	return that.remaining, true
}

// Cancel stops ticking. Safe to call on an inactive timer.
func (that *TurnTimer) Cancel() {
	if that.stop == nil {
		return
	}

	close(that.stop)
	that.stop = nil
}

func (that *TurnTimer) Active() bool {
	return that.stop != nil
}

func (that *TurnTimer) Remaining() int {
	return that.remaining
}
