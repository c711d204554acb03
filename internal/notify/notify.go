package notify

import (
	"log/slog"
	"sync"
	"time"
)

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier delivers user facing success or failure signals.
// Delivery is fire-and-forget.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Success(string) {}
func (Nop) Error(string)   {}

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier backed by logger or slog.Default when nil.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Success(msg string) {
	n.logger.Info("notification", slog.String("level", string(LevelSuccess)), slog.String("message", msg))
}

func (n *LogNotifier) Error(msg string) {
	n.logger.Warn("notification", slog.String("level", string(LevelError)), slog.String("message", msg))
}

// Entry is a recorded notification.
type Entry struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Recorder keeps the most recent notifications in memory.
type Recorder struct {
	mu      sync.Mutex
	size    int
	entries []Entry
}

// NewRecorder keeps at most size entries; size <= 0 means 50.
func NewRecorder(size int) *Recorder {
	if size <= 0 {
		size = 50
	}
	return &Recorder{size: size}
}

func (r *Recorder) Success(msg string) { r.add(LevelSuccess, msg) }
func (r *Recorder) Error(msg string)   { r.add(LevelError, msg) }

func (r *Recorder) add(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: msg, At: time.Now()})
	if over := len(r.entries) - r.size; over > 0 {
		r.entries = append([]Entry{}, r.entries[over:]...)
	}
}

// Entries returns the recorded notifications, oldest first.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry{}, r.entries...)
}

// Messages returns only the message texts, oldest first.
func (r *Recorder) Messages() []string {
	entries := r.Entries()
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Message)
	}
	return out
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) Success(msg string) {
	for _, n := range m {
		n.Success(msg)
	}
}

func (m Multi) Error(msg string) {
	for _, n := range m {
		n.Error(msg)
	}
}
