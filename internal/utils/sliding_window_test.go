package utils

import (
	"testing"
	"time"
)

func TestSlidingWindowAdd(t *testing.T) {
	window := NewSlidingWindow(5, 2*time.Second, 0)
	now := time.Now()
	if count := window.Add(Entry{At: now, MessageID: "1"}); count != 1 {
		t.Fatalf("expected 1, got %d", count)
	}
	window.Add(Entry{At: now.Add(500 * time.Millisecond), MessageID: "2"})
	if count := window.Count(now.Add(1 * time.Second)); count != 2 {
		t.Fatalf("expected 2, got %d", count)
	}
	if count := window.Count(now.Add(3 * time.Second)); count != 0 {
		t.Fatalf("expected 0, got %d", count)
	}
	if window.Len() != 2 {
		t.Fatalf("expired entries should stay retained, got len %d", window.Len())
	}
}

func TestSlidingWindowEvictsOldestAtCapacity(t *testing.T) {
	window := NewSlidingWindow(3, time.Minute, 0)
	now := time.Unix(0, 0)
	for i, id := range []string{"a", "b", "c", "d"} {
		window.Add(Entry{At: now.Add(time.Duration(i) * time.Second), MessageID: id})
	}
	if window.Len() != 3 {
		t.Fatalf("expected capacity 3, got %d", window.Len())
	}
	latest, ok := window.Latest()
	if !ok || latest.MessageID != "d" {
		t.Fatalf("expected latest d, got %+v", latest)
	}
	if count := window.Count(now.Add(4 * time.Second)); count != 3 {
		t.Fatalf("expected 3, got %d", count)
	}
}

func TestSlidingWindowWindowBoundary(t *testing.T) {
	window := NewSlidingWindow(5, 5*time.Second, 5)
	start := time.Unix(100, 0)
	for i := 0; i < 4; i++ {
		window.Add(Entry{At: start.Add(time.Duration(i) * time.Second)})
	}
	if window.Triggered(start.Add(4 * time.Second)) {
		t.Fatalf("four entries must not trigger a threshold of five")
	}
	window.Add(Entry{At: start.Add(5 * time.Second)})
	if !window.Triggered(start.Add(5 * time.Second)) {
		t.Fatalf("expected trigger at exactly the window edge")
	}

	late := NewSlidingWindow(5, 5*time.Second, 5)
	for i := 0; i < 4; i++ {
		late.Add(Entry{At: start.Add(time.Duration(i) * time.Second)})
	}
	late.Add(Entry{At: start.Add(6 * time.Second)})
	if late.Triggered(start.Add(6 * time.Second)) {
		t.Fatalf("first entry is outside the window, no trigger expected")
	}
}

func TestSlidingWindowThreshold(t *testing.T) {
	window := NewSlidingWindow(3, 30*time.Second, 2)
	now := time.Unix(0, 0)
	window.Add(Entry{At: now})
	if window.Triggered(now) {
		t.Fatalf("unexpected trigger")
	}
	window.Add(Entry{At: now.Add(time.Second)})
	if !window.Triggered(now.Add(time.Second)) {
		t.Fatalf("expected trigger at threshold 2")
	}

	clamped := NewSlidingWindow(2, time.Second, 9)
	if clamped.Threshold() != 2 {
		t.Fatalf("threshold above capacity should clamp to capacity, got %d", clamped.Threshold())
	}
}

func TestSlidingWindowAddIf(t *testing.T) {
	window := NewSlidingWindow(4, 10*time.Second, 0)
	now := time.Unix(0, 0)
	reject := func(Entry, bool) bool { return false }

	added, had := window.AddIf(Entry{At: now, Content: "a"}, func(_ Entry, ok bool) bool { return !ok })
	if !added || had {
		t.Fatalf("expected first entry to be added as baseline")
	}
	added, had = window.AddIf(Entry{At: now, Content: "b"}, reject)
	if added || !had {
		t.Fatalf("expected rejection with existing latest")
	}
	if window.Len() != 1 {
		t.Fatalf("rejected entry must leave no trace")
	}
}
