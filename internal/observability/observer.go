// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package observability provides structured operation logging for the
// redaction pipeline. One Observer is shared process-wide; components log
// timed operations with a component/operation pair and free-form metadata.
package observability

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Level controls how much an Observer emits.
type Level int

const (
	LevelOff     Level = 0
	LevelMetrics Level = 1
	LevelDebug   Level = 2
)

// Observer writes operation events as JSON lines. A nil *Observer is
// valid and silently discards everything, so components never need to
// guard their logging calls.
type Observer struct {
	level  Level
	mu     sync.Mutex
	writer io.Writer
}

// New creates an observer writing to w. Pass LevelOff or a nil writer to
// discard output.
func New(level Level, w io.Writer) *Observer {
	return &Observer{level: level, writer: w}
}

// Event is one logged operation.
type Event struct {
	Time       string         `json:"time"`
	Component  string         `json:"component"`
	Operation  string         `json:"operation"`
	DurationMs int64          `json:"duration_ms,omitempty"`
	Success    bool           `json:"success"`
	Error      string         `json:"error,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Log writes a single event.
func (o *Observer) Log(e Event) {
	if o == nil || o.level == LevelOff || o.writer == nil {
		return
	}
	e.Time = time.Now().UTC().Format(time.RFC3339)

	o.mu.Lock()
	defer o.mu.Unlock()
	_ = json.NewEncoder(o.writer).Encode(e)
}

// StartTiming begins a timed operation and returns the function that
// completes it.
func (o *Observer) StartTiming(component, operation string) func(success bool, metadata map[string]any) {
	start := time.Now()
	return func(success bool, metadata map[string]any) {
		if o == nil {
			return
		}
		o.Log(Event{
			Component:  component,
			Operation:  operation,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		})
	}
}
