package logging

import (
	"context"
	"sync"
)

// Entry is a single record captured by a Recorder.
type Entry struct {
	Level     LogLevel
	Component string
	Message   string
	Err       error
	Fields    map[string]interface{}
}

// Recorder is an in-memory Logger that keeps every record. Loggers derived
// with With or WithComponent share the parent's entries.
type Recorder struct {
	mu        *sync.Mutex
	entries   *[]Entry
	component string
	fields    map[string]interface{}
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		mu:      &sync.Mutex{},
		entries: &[]Entry{},
		fields:  map[string]interface{}{},
	}
}

func (r *Recorder) Debug(ctx context.Context, msg string, fields ...interface{}) {
	r.record(LevelDebug, nil, msg, fields)
}

func (r *Recorder) Info(ctx context.Context, msg string, fields ...interface{}) {
	r.record(LevelInfo, nil, msg, fields)
}

func (r *Recorder) Warn(ctx context.Context, err error, msg string, fields ...interface{}) {
	r.record(LevelWarn, err, msg, fields)
}

func (r *Recorder) Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	r.record(LevelError, err, msg, fields)
}

func (r *Recorder) Fatal(ctx context.Context, err error, msg string, fields ...interface{}) {
	r.record(LevelFatal, err, msg, fields)
}

func (r *Recorder) With(fields ...interface{}) Logger {
	merged := make(map[string]interface{}, len(r.fields))
	for k, v := range r.fields {
		merged[k] = v
	}
	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			merged[key] = fields[i+1]
		}
	}
	return &Recorder{mu: r.mu, entries: r.entries, component: r.component, fields: merged}
}

func (r *Recorder) WithComponent(component string) Logger {
	return &Recorder{mu: r.mu, entries: r.entries, component: component, fields: r.fields}
}

// Entries returns a copy of all captured records.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(*r.entries))
	copy(out, *r.entries)
	return out
}

// Count returns how many records were captured at the given level.
func (r *Recorder) Count(level LogLevel) int {
	n := 0
	for _, e := range r.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}

func (r *Recorder) record(level LogLevel, err error, msg string, fields []interface{}) {
	merged := make(map[string]interface{}, len(r.fields)+len(fields)/2)
	for k, v := range r.fields {
		merged[k] = v
	}
	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			merged[key] = fields[i+1]
		}
	}

	r.mu.Lock()
	*r.entries = append(*r.entries, Entry{
		Level:     level,
		Component: r.component,
		Message:   msg,
		Err:       err,
		Fields:    merged,
	})
	r.mu.Unlock()
}
