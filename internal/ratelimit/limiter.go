package ratelimit

import (
	"sync"
	"time"

	"sentinel-automod/internal/config"
	"sentinel-automod/internal/utils"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Subject identifies whose messages a limiter tracks.
type Subject struct {
	GuildID string
	UserID  string
}

func (s Subject) String() string {
	return s.GuildID + ":" + s.UserID
}

// MessageRateLimiter tracks one offence category for every subject. Each
// subject owns a utils.SlidingWindow with its own lock; the limiter lock only
// guards lookup and creation. Subjects idle for longer than the configured
// idle period are dropped.
type MessageRateLimiter struct {
	mu        sync.Mutex
	name      string
	capacity  int
	window    time.Duration
	threshold int
	windows   *expirable.LRU[Subject, *utils.SlidingWindow]
}

type Options struct {
	// Idle is how long a subject may go without new events before its
	// window is discarded. Values shorter than the window are raised to it.
	Idle time.Duration
	// MaxSubjects bounds the number of tracked subjects, 0 means unbounded.
	MaxSubjects int
}

func New(name string, cfg config.LimiterConfig, opts Options) *MessageRateLimiter {
	window := cfg.Window()
	idle := opts.Idle
	if idle < window {
		idle = window
	}
	return &MessageRateLimiter{
		name:      name,
		capacity:  cfg.Capacity,
		window:    window,
		threshold: cfg.EffectiveThreshold(),
		windows:   expirable.NewLRU[Subject, *utils.SlidingWindow](opts.MaxSubjects, nil, idle),
	}
}

func (l *MessageRateLimiter) Name() string {
	return l.name
}

func (l *MessageRateLimiter) Add(subject Subject, entry utils.Entry) int {
	return l.getWindow(subject).Add(entry)
}

// Observe feeds entry into the subject's window when qualifies is set and
// then reports whether the window is triggered at entry.At. The query runs
// on the same window the entry went into.
func (l *MessageRateLimiter) Observe(subject Subject, entry utils.Entry, qualifies bool) bool {
	if qualifies {
		window := l.getWindow(subject)
		window.Add(entry)
		return window.Triggered(entry.At)
	}
	return l.Triggered(subject, entry.At)
}

// AddIf appends entry when accept approves the subject's latest entry (see
// utils.SlidingWindow.AddIf). triggered is only evaluated when the entry was
// added, on the window that received it.
func (l *MessageRateLimiter) AddIf(subject Subject, entry utils.Entry, accept func(latest utils.Entry, ok bool) bool) (added, hadLatest, triggered bool) {
	window := l.getWindow(subject)
	added, hadLatest = window.AddIf(entry, accept)
	if added {
		triggered = window.Triggered(entry.At)
	}
	return added, hadLatest, triggered
}

func (l *MessageRateLimiter) Count(subject Subject, now time.Time) int {
	window, ok := l.peekWindow(subject)
	if !ok {
		return 0
	}
	return window.Count(now)
}

func (l *MessageRateLimiter) Triggered(subject Subject, now time.Time) bool {
	window, ok := l.peekWindow(subject)
	if !ok {
		return false
	}
	return window.Triggered(now)
}

func (l *MessageRateLimiter) Latest(subject Subject) (utils.Entry, bool) {
	window, ok := l.peekWindow(subject)
	if !ok {
		return utils.Entry{}, false
	}
	return window.Latest()
}

// Subjects reports how many subjects currently hold state.
func (l *MessageRateLimiter) Subjects() int {
	return l.windows.Len()
}

func (l *MessageRateLimiter) getWindow(subject Subject) *utils.SlidingWindow {
	l.mu.Lock()
	defer l.mu.Unlock()
	window, ok := l.windows.Get(subject)
	if !ok {
		window = utils.NewSlidingWindow(l.capacity, l.window, l.threshold)
	}
	// re-adding refreshes the idle deadline
	l.windows.Add(subject, window)
	return window
}

func (l *MessageRateLimiter) peekWindow(subject Subject) (*utils.SlidingWindow, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.windows.Peek(subject)
}
