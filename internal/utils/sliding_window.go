package utils

import (
	"sync"
	"time"
)

// Entry is one qualifying event retained by a SlidingWindow.
type Entry struct {
	At        time.Time
	MessageID string
	ChannelID string
	Content   string
}

// SlidingWindow keeps the most recent qualifying events of a single subject.
// Entries stay ordered by insertion; once capacity is reached the oldest entry
// is dropped regardless of its age.
type SlidingWindow struct {
	mu        sync.Mutex
	window    time.Duration
	capacity  int
	threshold int
	entries   []Entry
}

func NewSlidingWindow(capacity int, window time.Duration, threshold int) *SlidingWindow {
	if capacity < 1 {
		capacity = 1
	}
	if threshold < 1 || threshold > capacity {
		threshold = capacity
	}
	return &SlidingWindow{
		window:    window,
		capacity:  capacity,
		threshold: threshold,
		entries:   make([]Entry, 0, capacity),
	}
}

func (w *SlidingWindow) Add(entry Entry) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.appendLocked(entry)
	return w.countLocked(entry.At)
}

// AddIf appends entry only when accept approves the latest retained entry.
// accept receives ok=false when the window is empty. Both the read and the
// append happen under the same lock.
func (w *SlidingWindow) AddIf(entry Entry, accept func(latest Entry, ok bool) bool) (added bool, hadLatest bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	latest, ok := w.latestLocked()
	if !accept(latest, ok) {
		return false, ok
	}
	w.appendLocked(entry)
	return true, ok
}

func (w *SlidingWindow) Count(now time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.countLocked(now)
}

func (w *SlidingWindow) Triggered(now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.countLocked(now) >= w.threshold
}

func (w *SlidingWindow) Latest() (Entry, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.latestLocked()
}

func (w *SlidingWindow) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

func (w *SlidingWindow) Threshold() int {
	return w.threshold
}

func (w *SlidingWindow) appendLocked(entry Entry) {
	if n := len(w.entries); n > 0 && entry.At.Before(w.entries[n-1].At) {
		// keep timestamps non-decreasing when events arrive out of order
		entry.At = w.entries[n-1].At
	}
	if len(w.entries) >= w.capacity {
		copy(w.entries, w.entries[1:])
		w.entries = w.entries[:len(w.entries)-1]
	}
	w.entries = append(w.entries, entry)
}

func (w *SlidingWindow) countLocked(now time.Time) int {
	count := 0
	for i := len(w.entries) - 1; i >= 0; i-- {
		if now.Sub(w.entries[i].At) > w.window {
			break
		}
		count++
	}
	return count
}

func (w *SlidingWindow) latestLocked() (Entry, bool) {
	if len(w.entries) == 0 {
		return Entry{}, false
	}
	return w.entries[len(w.entries)-1], true
}
