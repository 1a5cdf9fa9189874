// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"time"
)

// EventType is the kind of lifecycle change an Event describes.
type EventType int

const (
	// EventStarted is sent when the generator is about to be invoked for an entry.
	EventStarted EventType = iota
	// EventOutput carries one line of generator output.
	EventOutput
	// EventCompleted is sent when the generator exited successfully.
	EventCompleted
	// EventFailed is sent when the invocation failed; the batch stops after it.
	EventFailed
	// EventSkipped is sent for each entry left unattempted after a failure, or for every entry in a dry run.
	EventSkipped
)

// String implements fmt.Stringer.
func (et EventType) String() string {
	switch et {
	case EventStarted:
		return "started"
	case EventOutput:
		return "output"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	case EventSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Event is a progress update for a single batch entry.
type Event struct {
	Batch     string    // Name of the batch
	Index     int       // 1-based position of the entry
	Total     int       // Number of entries in the batch
	Label     string    // Entry description as printed in the progress line
	Type      EventType // What happened
	Timestamp time.Time // When it happened
	Data      EventData // Type-specific data
}

// EventData holds the fields that only apply to some event types.
type EventData struct {
	OutputLine string // EventOutput
	IsStderr   bool   // EventOutput
	ExitCode   int    // EventCompleted, EventFailed
	Error      error  // EventFailed
	Artifact   string // EventCompleted, when the poster file was found
}

// Reporter receives events. Implementations must not block.
type Reporter interface {
	Report(event Event)
	Close()
}

// Listener consumes events forwarded by a ChannelReporter.
type Listener interface {
	OnEvent(event Event)
}

// NullReporter discards every event.
type NullReporter struct{}

// Report implements Reporter.
func (NullReporter) Report(Event) {}

// Close implements Reporter.
func (NullReporter) Close() {}

// NewNullReporter returns a Reporter that discards events.
func NewNullReporter() Reporter {
	return NullReporter{}
}
