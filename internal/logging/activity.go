package logging

import (
	"strings"
	"sync"
	"time"
)

// Level is the severity shown in the activity log.
type Level string

// Activity levels. SUCCESS marks a completed milestone and sorts with INFO.
const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
	LevelSuccess Level = "SUCCESS"
)

// ParseLevel converts a user supplied level name. Unknown names return false.
func ParseLevel(s string) (Level, bool) {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelInfo:
		return LevelInfo, true
	case LevelWarning, "WARN":
		return LevelWarning, true
	case LevelError:
		return LevelError, true
	case LevelSuccess:
		return LevelSuccess, true
	default:
		return "", false
	}
}

// Entry is one line of the activity log.
type Entry struct {
	// Seq increases by one with every append, across evictions.
	Seq       uint64    `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
}

// ActivityLog is an append-only, bounded, process-wide record of notable
// events. Appends and reads are safe for concurrent use.
type ActivityLog struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
	subs     map[int]chan Entry
	nextSub  int
	seq      uint64
	now      func() time.Time
}

// NewActivityLog creates a log that keeps at most capacity entries.
// A non-positive capacity keeps everything.
func NewActivityLog(capacity int) *ActivityLog {
	return &ActivityLog{
		capacity: capacity,
		subs:     make(map[int]chan Entry),
		now:      time.Now,
	}
}

// Append records an entry. A zero Timestamp is filled in.
// Slow subscribers miss entries rather than block the writer.
func (l *ActivityLog) Append(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	e.Seq = l.seq
	l.entries = append(l.entries, e)
	if l.capacity > 0 && len(l.entries) > l.capacity {
		l.entries = append(l.entries[:0:0], l.entries[len(l.entries)-l.capacity:]...)
	}
	for _, ch := range l.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Add is shorthand for Append with the current time.
func (l *ActivityLog) Add(level Level, category, message string) {
	l.Append(Entry{Level: level, Category: category, Message: message})
}

// Entries returns a copy of the entries, optionally restricted to levels.
func (l *ActivityLog) Entries(levels ...Level) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(levels) == 0 {
		out := make([]Entry, len(l.entries))
		copy(out, l.entries)
		return out
	}

	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		for _, lv := range levels {
			if e.Level == lv {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// Len returns the number of retained entries.
func (l *ActivityLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Subscribe returns a channel receiving every entry appended after the call
// and a function that ends the subscription.
func (l *ActivityLog) Subscribe(buffer int) (<-chan Entry, func()) {
	ch := make(chan Entry, buffer)

	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = ch
	l.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, id)
			l.mu.Unlock()
			close(ch)
		})
	}
}
