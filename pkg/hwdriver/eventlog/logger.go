package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger is the binding-event logging backend contract. The component that
// records events (the arista driver) takes a Logger explicitly — there is
// no process-wide default, per the config package's same no-global-singleton
// design.
type Logger interface {
	Log(event *BindingEvent) error
	Query(filter Filter) ([]*BindingEvent, error)
	Close() error
}

// RotationConfig configures size-based log file rotation.
type RotationConfig struct {
	MaxSize    int64 // bytes before rotation
	MaxBackups int
}

// FileLogger logs binding events to a JSON-lines file, rotating by size.
type FileLogger struct {
	path     string
	file     *os.File
	encoder  *json.Encoder
	mu       sync.RWMutex
	rotation RotationConfig
}

// NewFileLogger opens (creating if needed) a JSON-lines event log at path.
func NewFileLogger(path string, rotation RotationConfig) (*FileLogger, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating event log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}

	return &FileLogger{
		path:     path,
		file:     file,
		encoder:  json.NewEncoder(file),
		rotation: rotation,
	}, nil
}

// Log appends event, rotating the file first if it has grown past
// rotation.MaxSize.
func (l *FileLogger) Log(event *BindingEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rotation.MaxSize > 0 {
		if info, err := l.file.Stat(); err == nil && info.Size() >= l.rotation.MaxSize {
			if err := l.rotate(); err != nil {
				return fmt.Errorf("rotating event log: %w", err)
			}
		}
	}

	return l.encoder.Encode(event)
}

// Query replays the log file and returns events matching filter.
func (l *FileLogger) Query(filter Filter) ([]*BindingEvent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	file, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []*BindingEvent{}, nil
		}
		return nil, err
	}
	defer file.Close()

	var events []*BindingEvent
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		var event BindingEvent
		if err := json.Unmarshal(scanner.Bytes(), &event); err != nil {
			logrus.WithField("line", lineNum).WithError(err).Warn("eventlog: skipping malformed entry")
			continue
		}
		if matchesFilter(&event, filter) {
			events = append(events, &event)
		}
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(events) {
			events = nil
		} else {
			events = events[filter.Offset:]
		}
	}
	if filter.Limit > 0 && filter.Limit < len(events) {
		events = events[:filter.Limit]
	}

	return events, scanner.Err()
}

// Close closes the underlying file.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func matchesFilter(event *BindingEvent, filter Filter) bool {
	if filter.Driver != "" && event.Driver != filter.Driver {
		return false
	}
	if filter.Operation != "" && event.Operation != filter.Operation {
		return false
	}
	if filter.NetworkID != "" && event.NetworkID != filter.NetworkID {
		return false
	}
	if filter.Host != "" && event.Host != filter.Host {
		return false
	}
	if !filter.StartTime.IsZero() && event.Timestamp.Before(filter.StartTime) {
		return false
	}
	if !filter.EndTime.IsZero() && event.Timestamp.After(filter.EndTime) {
		return false
	}
	if filter.SuccessOnly && !event.Success {
		return false
	}
	if filter.FailureOnly && event.Success {
		return false
	}
	return true
}

func (l *FileLogger) rotate() error {
	if err := l.file.Close(); err != nil {
		return err
	}

	timestamp := time.Now().Format("20060102-150405")
	rotatedPath := l.path + "." + timestamp
	if err := os.Rename(l.path, rotatedPath); err != nil {
		return err
	}

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	l.file = file
	l.encoder = json.NewEncoder(file)

	if l.rotation.MaxBackups > 0 {
		l.cleanupOldFiles()
	}
	return nil
}

func (l *FileLogger) cleanupOldFiles() {
	dir := filepath.Dir(l.path)
	base := filepath.Base(l.path)
	pattern := base + ".*"

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return
	}

	type fileInfo struct {
		path    string
		modTime time.Time
	}
	var files []fileInfo
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		files = append(files, fileInfo{path, info.ModTime()})
	}

	if len(files) > l.rotation.MaxBackups {
		sort.Slice(files, func(i, j int) bool {
			return files[i].modTime.Before(files[j].modTime)
		})
		toRemove := len(files) - l.rotation.MaxBackups
		for i := 0; i < toRemove; i++ {
			os.Remove(files[i].path)
		}
	}
}

// NoopLogger discards every event. Used when the driver is constructed
// without an event log — observability is optional, correctness isn't.
type NoopLogger struct{}

// NewNoopLogger returns a Logger that discards everything.
func NewNoopLogger() *NoopLogger { return &NoopLogger{} }

func (*NoopLogger) Log(*BindingEvent) error                { return nil }
func (*NoopLogger) Query(Filter) ([]*BindingEvent, error)   { return []*BindingEvent{}, nil }
func (*NoopLogger) Close() error                            { return nil }

var (
	_ Logger = (*FileLogger)(nil)
	_ Logger = (*NoopLogger)(nil)
)
