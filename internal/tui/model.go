// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/posterbatch/internal/batch"
	"github.com/matt-FFFFFF/posterbatch/internal/progress"
	"github.com/matt-FFFFFF/posterbatch/internal/runbatch"
)

// EntryStatus represents the current state of an entry in the TUI.
type EntryStatus int

const (
	StatusPending EntryStatus = iota
	StatusRunning
	StatusSuccess
	StatusFailed
	StatusNotRun
)

// String returns a string representation of the entry status.
func (s EntryStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusNotRun:
		return "not-run"
	default:
		return "unknown"
	}
}

// EntryRow is one batch entry on screen.
type EntryRow struct {
	Index      int
	Label      string
	Status     EntryStatus
	StartTime  *time.Time
	EndTime    *time.Time
	LastOutput string
	ErrorMsg   string
	Artifact   string
	mutex      sync.RWMutex
}

// RowInfo is a consistent copy of an EntryRow for rendering.
type RowInfo struct {
	Index      int
	Label      string
	Status     EntryStatus
	StartTime  *time.Time
	EndTime    *time.Time
	LastOutput string
	ErrorMsg   string
	Artifact   string
}

// NewEntryRow creates a pending row.
func NewEntryRow(index int, label string) *EntryRow {
	return &EntryRow{
		Index:  index,
		Label:  label,
		Status: StatusPending,
	}
}

// UpdateStatus safely updates the status and the start and end times.
func (r *EntryRow) UpdateStatus(status EntryStatus, at time.Time) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.Status = status

	switch status {
	case StatusRunning:
		if r.StartTime == nil {
			r.StartTime = &at
		}
	case StatusSuccess, StatusFailed:
		if r.EndTime == nil {
			r.EndTime = &at
		}
	}
}

// UpdateOutput keeps the last non-empty line of output.
func (r *EntryRow) UpdateOutput(output string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if output = strings.TrimSpace(output); output == "" {
		return
	}

	lines := strings.Split(output, "\n")
	r.LastOutput = strings.TrimSpace(lines[len(lines)-1])
}

// UpdateError safely updates the error message.
func (r *EntryRow) UpdateError(err string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.ErrorMsg = err
}

// UpdateArtifact records the poster file.
func (r *EntryRow) UpdateArtifact(path string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.Artifact = path
}

// Info returns a snapshot of the row.
func (r *EntryRow) Info() RowInfo {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return RowInfo{
		Index:      r.Index,
		Label:      r.Label,
		Status:     r.Status,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		LastOutput: r.LastOutput,
		ErrorMsg:   r.ErrorMsg,
		Artifact:   r.Artifact,
	}
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	batchName string
	rows      []*EntryRow
	width     int
	height    int
	quitting  bool
	completed bool             // Track if the batch has finished
	results   runbatch.Results // Store final results
	mutex     sync.RWMutex

	viewport viewport.Model
	spinner  spinner.Model

	// Style definitions
	styles *Styles
}

// Styles contains all the styling for the TUI.
type Styles struct {
	Title   lipgloss.Style
	Pending lipgloss.Style
	Running lipgloss.Style
	Success lipgloss.Style
	Failed  lipgloss.Style
	Output  lipgloss.Style
	Error   lipgloss.Style
	Help    lipgloss.Style
	Index   lipgloss.Style
	Border  lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1),
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Output: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			MarginTop(1),
		Index: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")),
	}
}

// NewModel creates a model with one pending row per entry of b.
func NewModel(ctx context.Context, b *batch.Batch) *Model {
	m := &Model{
		ctx:      ctx,
		viewport: viewport.New(defaultViewportWidth, defaultViewportHeight),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		styles:   NewStyles(),
	}

	if b != nil {
		m.batchName = b.Name
		m.rows = make([]*EntryRow, 0, b.Len())

		for i, e := range b.Entries {
			m.rows = append(m.rows, NewEntryRow(i+1, e.Description()))
		}
	}

	return m
}

// row returns the row for a 1-based index, growing the list for entries it has not seen.
func (m *Model) row(index int, label string) *EntryRow {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if index < 1 {
		index = 1
	}

	for len(m.rows) < index {
		m.rows = append(m.rows, NewEntryRow(len(m.rows)+1, ""))
	}

	r := m.rows[index-1]
	if r.Label == "" && label != "" {
		r.mutex.Lock()
		r.Label = label
		r.mutex.Unlock()
	}

	return r
}

// processProgressEvent applies a progress event to its row.
func (m *Model) processProgressEvent(event progress.Event) {
	if event.Batch != "" {
		m.mutex.Lock()
		m.batchName = event.Batch
		m.mutex.Unlock()
	}

	r := m.row(event.Index, event.Label)

	switch event.Type {
	case progress.EventStarted:
		r.UpdateStatus(StatusRunning, event.Timestamp)

	case progress.EventOutput:
		r.UpdateOutput(event.Data.OutputLine)

	case progress.EventCompleted:
		r.UpdateStatus(StatusSuccess, event.Timestamp)

		if event.Data.Artifact != "" {
			r.UpdateArtifact(event.Data.Artifact)
		}

	case progress.EventFailed:
		r.UpdateStatus(StatusFailed, event.Timestamp)

		if event.Data.Error != nil {
			r.UpdateError(event.Data.Error.Error())
		}

	case progress.EventSkipped:
		r.UpdateStatus(StatusNotRun, event.Timestamp)
	}
}

// counts returns how many rows are in each status.
func (m *Model) counts() map[EntryStatus]int {
	c := make(map[EntryStatus]int)

	for _, r := range m.rows {
		c[r.Info().Status]++
	}

	return c
}
