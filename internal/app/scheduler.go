package app

import (
	"sync"
	"time"
)

// TimerHandle is a cancelable repeating timer. Stop is idempotent and safe
// to call from the timer's own callback.
type TimerHandle interface {
	Stop()
}

// Scheduler produces repeating timers. The orchestrator and batcher own
// their handles explicitly and stop them on supersede, terminal transition,
// and teardown.
type Scheduler interface {
	Every(interval time.Duration, fn func()) TimerHandle
}

type tickerScheduler struct{}

// NewScheduler returns the ticker-backed production scheduler.
func NewScheduler() Scheduler {
	return tickerScheduler{}
}

type tickerHandle struct {
	stop chan struct{}
	once sync.Once
}

func (h *tickerHandle) Stop() {
	h.once.Do(func() { close(h.stop) })
}

func (tickerScheduler) Every(interval time.Duration, fn func()) TimerHandle {
	h := &tickerHandle{stop: make(chan struct{})}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-h.stop:
				return
			}
		}
	}()
	return h
}
