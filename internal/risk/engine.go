package risk

import (
	"math"
	"sync"
	"time"

	"sentinel-automod/internal/config"
)

type entry struct {
	score      float64
	lastUpdate time.Time
}

// Engine keeps a decaying offence score per guild member. Scores live only
// in memory and expire after the configured TTL without new offences.
type Engine struct {
	mu      sync.Mutex
	cfg     config.RiskConfig
	clock   Clock
	entries map[string]*entry
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func NewEngine(cfg config.RiskConfig) *Engine {
	return &Engine{
		cfg:     cfg,
		clock:   realClock{},
		entries: make(map[string]*entry),
	}
}

func (e *Engine) WithClock(clock Clock) {
	e.clock = clock
}

// Points returns the score added for one offence of the given class.
func (e *Engine) Points(class string) float64 {
	switch class {
	case "spam":
		return e.cfg.SpamPoints
	case "blocked":
		return e.cfg.BlockedPoints
	case "filtered":
		return e.cfg.FilteredPoints
	default:
		return 0
	}
}

// AddOffence records one moderated message and returns the updated score.
func (e *Engine) AddOffence(guildID, userID, class string) float64 {
	return e.AddRisk(guildID, userID, e.Points(class))
}

func (e *Engine) AddRisk(guildID, userID string, delta float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := guildID + ":" + userID
	now := e.clock.Now()

	item := e.entries[key]
	if item == nil || e.isExpired(item.lastUpdate, now) {
		item = &entry{score: 0, lastUpdate: now}
		e.entries[key] = item
	}

	item.score = e.decay(item.score, item.lastUpdate, now)
	item.score = math.Max(0, item.score+delta)
	item.lastUpdate = now

	e.sweep(now)
	return item.score
}

func (e *Engine) GetScore(guildID, userID string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := guildID + ":" + userID
	item := e.entries[key]
	if item == nil {
		return 0
	}

	now := e.clock.Now()
	if e.isExpired(item.lastUpdate, now) {
		delete(e.entries, key)
		return 0
	}

	item.score = e.decay(item.score, item.lastUpdate, now)
	item.lastUpdate = now
	return item.score
}

func (e *Engine) Reset(guildID, userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.entries, guildID+":"+userID)
}

// Len reports the number of tracked members.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.entries)
}

func (e *Engine) decay(score float64, lastUpdate, now time.Time) float64 {
	minutes := now.Sub(lastUpdate).Minutes()
	if minutes <= 0 {
		return score
	}
	decayed := score - (minutes * e.cfg.DecayPerMinute)
	if decayed < 0 {
		return 0
	}
	return decayed
}

func (e *Engine) isExpired(lastUpdate, now time.Time) bool {
	if e.cfg.TTLMinutes <= 0 {
		return false
	}
	return now.Sub(lastUpdate) > (time.Duration(e.cfg.TTLMinutes) * time.Minute)
}

// sweep drops expired members. Callers hold e.mu.
func (e *Engine) sweep(now time.Time) {
	for key, item := range e.entries {
		if e.isExpired(item.lastUpdate, now) {
			delete(e.entries, key)
		}
	}
}
