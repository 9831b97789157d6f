package logging

import (
	"fmt"
	"strings"
	"sync"
)

// Entry is one message captured by MemoryLogger.
type Entry struct {
	Level   string
	Message string
}

// MemoryLogger records every message, including verbose ones.
type MemoryLogger struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Verbose(format string, args ...interface{}) { l.add("verbose", format, args) }
func (l *MemoryLogger) Info(format string, args ...interface{}) { l.add("info", format, args) }
func (l *MemoryLogger) Error(format string, args ...interface{}) { l.add("error", format, args) }

func (l *MemoryLogger) add(level, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Message: fmt.Sprintf(format, args...)})
}

// Entries returns a copy of the recorded messages in order.
func (l *MemoryLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Contains reports whether any message at level contains substr.
func (l *MemoryLogger) Contains(level, substr string) bool {
	for _, e := range l.Entries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
