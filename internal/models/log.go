package models

import (
	"time"

	"github.com/sirupsen/logrus"
)

// LogEntry is a copy of a logrus entry kept for the shell's logs command.
type LogEntry struct {
	Data    logrus.Fields `json:"data,omitempty"`
	Time    time.Time     `json:"time"`
	Level   logrus.Level  `json:"level,omitempty"`
	Message string        `json:"message,omitempty"`
}

func NewLogEntry(entry *logrus.Entry) *LogEntry {
	data := make(logrus.Fields, len(entry.Data))
	for k, v := range entry.Data {
		data[k] = v
	}
	return &LogEntry{
		Data:    data,
		Time:    entry.Time,
		Level:   entry.Level,
		Message: entry.Message,
	}
}
