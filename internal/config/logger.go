package config

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/thinkpad-online/notes/internal/models"
)

const defaultLogBufferSize = 500

// logBuffer is a logrus hook that keeps the most recent entries in a ring.
type logBuffer struct {
	events     []*models.LogEntry
	maxSize    int
	currentPos int
	isFull     bool
	mu         sync.RWMutex
}

func newLogBuffer(size int) *logBuffer {
	if size <= 0 {
		size = defaultLogBufferSize
	}
	return &logBuffer{
		events:  make([]*models.LogEntry, size),
		maxSize: size,
	}
}

func (b *logBuffer) Fire(entry *logrus.Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events[b.currentPos] = models.NewLogEntry(entry)
	b.currentPos = (b.currentPos + 1) % b.maxSize

	if b.currentPos == 0 {
		b.isFull = true
	}

	return nil
}

func (b *logBuffer) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
		logrus.InfoLevel,
		logrus.DebugLevel,
	}
}

// GetEvents returns buffered entries oldest first.
func (b *logBuffer) GetEvents() []*models.LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.isFull {
		result := make([]*models.LogEntry, b.currentPos)
		copy(result, b.events[:b.currentPos])
		return result
	}

	result := make([]*models.LogEntry, b.maxSize)
	copy(result, b.events[b.currentPos:])
	copy(result[b.maxSize-b.currentPos:], b.events[:b.currentPos])
	return result
}

func (b *logBuffer) GetRecentEvents(count int) []*models.LogEntry {
	events := b.GetEvents()
	if count <= 0 || len(events) <= count {
		return events
	}
	return events[len(events)-count:]
}
