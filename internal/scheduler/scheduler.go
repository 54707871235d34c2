// Package scheduler runs one-shot and repeating callbacks. Timer is backed by the
// runtime clock; Manual is a virtual clock that only moves when told to.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/osse101/JackpotArena_Go/internal/logger"
)

// Handle cancels a scheduled callback. Cancel is idempotent and safe to call
// from inside the callback itself.
type Handle interface {
	Cancel()
}

// Scheduler schedules callbacks. Callbacks must not assume they run on any
// particular goroutine.
type Scheduler interface {
	// After runs fn once after d
	After(d time.Duration, fn func()) Handle
	// Every runs fn every d until cancelled. The first run is d from now.
	Every(d time.Duration, fn func()) Handle
}

// Timer is the wall-clock Scheduler
type Timer struct {
	mu      sync.Mutex
	nextID  uint64
	handles map[uint64]*timerHandle
	closed  bool
	quit    chan struct{}
	wg      sync.WaitGroup
}

type timerHandle struct {
	id        uint64
	owner     *Timer
	cancelled atomic.Bool
	timer     *time.Timer   // one-shot
	stop      chan struct{} // repeating
	stopOnce  sync.Once
}

// New creates a wall-clock scheduler
func New() *Timer {
	return &Timer{
		handles: make(map[uint64]*timerHandle),
		quit:    make(chan struct{}),
	}
}

// After schedules fn to run once after d. After Shutdown it returns a handle
// that never fires.
func (t *Timer) After(d time.Duration, fn func()) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.newHandleLocked()
	if t.closed {
		h.cancelled.Store(true)
		return h
	}

	h.timer = time.AfterFunc(d, func() {
		defer t.forget(h.id)
		if !t.enter(h) {
			return
		}
		defer t.wg.Done()
		fn()
	})
	t.handles[h.id] = h
	return h
}

// Every schedules fn to run every d. The callback never overlaps itself.
func (t *Timer) Every(d time.Duration, fn func()) Handle {
	if d <= 0 {
		panic(PanicMsgNonPositiveInterval)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.newHandleLocked()
	if t.closed {
		h.cancelled.Store(true)
		return h
	}
	h.stop = make(chan struct{})
	t.handles[h.id] = h

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer t.forget(h.id)

		ticker := time.NewTicker(d)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if h.cancelled.Load() {
					return
				}
				fn()
			case <-h.stop:
				return
			case <-t.quit:
				return
			}
		}
	}()
	return h
}

// Pending returns the number of live handles
func (t *Timer) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.handles)
}

// Shutdown cancels every pending callback and waits for running ones to return
func (t *Timer) Shutdown(ctx context.Context) error {
	log := logger.FromContext(ctx)

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	close(t.quit)
	cancelled := len(t.handles)
	for _, h := range t.handles {
		h.cancelLocked()
	}
	t.handles = make(map[uint64]*timerHandle)
	t.mu.Unlock()

	log.Info(LogMsgSchedulerStopping, "cancelled", cancelled)

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info(LogMsgSchedulerStopped)
		return nil
	case <-ctx.Done():
		log.Warn(LogMsgSchedulerShutdownTimeout)
		return ctx.Err()
	}
}

func (t *Timer) newHandleLocked() *timerHandle {
	t.nextID++
	return &timerHandle{id: t.nextID, owner: t}
}

// enter registers a one-shot callback as in flight unless it was cancelled or
// the scheduler is closing
func (t *Timer) enter(h *timerHandle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || h.cancelled.Load() {
		return false
	}
	t.wg.Add(1)
	return true
}

func (t *Timer) forget(id uint64) {
	t.mu.Lock()
	delete(t.handles, id)
	t.mu.Unlock()
}

func (h *timerHandle) Cancel() {
	h.cancelLocked()
	h.owner.forget(h.id)
}

// cancelLocked stops the handle without touching the owner's map
func (h *timerHandle) cancelLocked() {
	h.cancelled.Store(true)
	if h.timer != nil {
		h.timer.Stop()
	}
	if h.stop != nil {
		h.stopOnce.Do(func() { close(h.stop) })
	}
}
