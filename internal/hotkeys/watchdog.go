package hotkeys

import (
	"sync"
	"time"
)

// watchdog is a sliding silence timer. Each Touch restarts it; if nothing
// touches it for timeout, onSilent runs once until the next Touch.
type watchdog struct {
	mu          sync.Mutex
	timer       *time.Timer
	timerID     uint64
	nextTimerID uint64
	timeout     time.Duration
	onSilent    func(time.Duration)
	stopped     bool
}

func newWatchdog(timeout time.Duration, onSilent func(time.Duration)) *watchdog {
	return &watchdog{timeout: timeout, onSilent: onSilent}
}

// Touch records activity and restarts the silence timer.
func (w *watchdog) Touch() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || w.timeout <= 0 {
		return
	}
	w.startTimerLocked()
}

func (w *watchdog) startTimerLocked() {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.nextTimerID++
	timerID := w.nextTimerID
	w.timer = time.AfterFunc(w.timeout, func() {
		w.expire(timerID)
	})
	w.timerID = timerID
}

func (w *watchdog) expire(timerID uint64) {
	w.mu.Lock()
	if w.stopped || w.timerID != timerID {
		w.mu.Unlock()
		return
	}
	w.timer = nil
	w.timerID = 0
	onSilent := w.onSilent
	w.mu.Unlock()

	if onSilent != nil {
		onSilent(w.timeout)
	}
}

// Stop cancels the timer for good.
func (w *watchdog) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}
