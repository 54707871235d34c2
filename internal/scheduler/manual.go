package scheduler

import (
	"sort"
	"sync"
	"time"
)

// Manual is a virtual-clock Scheduler. Nothing fires until Advance is called, and
// then due callbacks run synchronously on the caller's goroutine in due order.
// Callbacks scheduled by other callbacks are honoured within the same Advance.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	entries map[uint64]*manualEntry
}

type manualEntry struct {
	id       uint64
	due      time.Time
	interval time.Duration // zero for one-shot
	fn       func()
	owner    *Manual
}

// NewManual creates a virtual clock starting at start
func NewManual(start time.Time) *Manual {
	return &Manual{
		now:     start,
		entries: make(map[uint64]*manualEntry),
	}
}

// Now returns the virtual time
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) After(d time.Duration, fn func()) Handle {
	return m.add(d, 0, fn)
}

func (m *Manual) Every(d time.Duration, fn func()) Handle {
	if d <= 0 {
		panic(PanicMsgNonPositiveInterval)
	}
	return m.add(d, d, fn)
}

func (m *Manual) add(d, interval time.Duration, fn func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	e := &manualEntry{id: m.seq, due: m.now.Add(d), interval: interval, fn: fn, owner: m}
	m.entries[e.id] = e
	return e
}

// Advance moves the clock forward by d, firing everything that becomes due
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		e := m.nextDueLocked(target)
		if e == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = e.due
		if e.interval > 0 {
			e.due = e.due.Add(e.interval)
		} else {
			delete(m.entries, e.id)
		}
		fn := e.fn
		m.mu.Unlock()

		fn()
	}
}

// Pending returns the number of scheduled callbacks
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Manual) nextDueLocked(target time.Time) *manualEntry {
	due := make([]*manualEntry, 0, len(m.entries))
	for _, e := range m.entries {
		if !e.due.After(target) {
			due = append(due, e)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].id < due[j].id
		}
		return due[i].due.Before(due[j].due)
	})
	return due[0]
}

func (e *manualEntry) Cancel() {
	e.owner.mu.Lock()
	delete(e.owner.entries, e.id)
	e.owner.mu.Unlock()
}
