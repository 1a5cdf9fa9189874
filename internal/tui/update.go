// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/matt-FFFFFF/posterbatch/internal/progress"
	"github.com/matt-FFFFFF/posterbatch/internal/runbatch"
)

const (
	defaultViewportWidth  = 80
	defaultViewportHeight = 20
	chromeHeight          = 7 // title, border, status bar and help
	durationRounding      = 100 * time.Millisecond
)

// ProgressEventMsg wraps a progress event for the tea framework.
type ProgressEventMsg struct {
	Event progress.Event
}

// BatchCompletedMsg indicates that the runner has returned.
type BatchCompletedMsg struct {
	Results runbatch.Results
}

// Init implements bubbletea.Model.Init.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		tea.EnableMouseCellMotion,
	)
}

// Update implements bubbletea.Model.Update.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)

		return m, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)

		return m, cmd

	case tea.WindowSizeMsg:
		m.mutex.Lock()
		m.width = msg.Width
		m.height = msg.Height
		m.mutex.Unlock()

		m.resizeViewport()
		m.refresh()

		return m, nil

	case ProgressEventMsg:
		m.processProgressEvent(msg.Event)
		m.refresh()

		return m, nil

	case BatchCompletedMsg:
		m.mutex.Lock()
		m.completed = true
		m.results = msg.Results
		m.mutex.Unlock()

		m.applyResults()
		m.refresh()

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()

		return m, cmd
	}

	return m, nil
}

// View implements bubbletea.Model.View.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.styles.Title.Render(m.title()))
	b.WriteString("\n")
	b.WriteString(m.styles.Border.Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(m.statusBar())
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(m.help()))

	return b.String()
}

func (m *Model) title() string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.batchName == "" {
		return "Poster batch"
	}

	return fmt.Sprintf("Poster batch: %s", m.batchName)
}

func (m *Model) help() string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.completed {
		return "Batch finished. Press q to exit, ↑/↓ to scroll."
	}

	return "Press q or ctrl+c to stop the batch, ↑/↓ to scroll."
}

func (m *Model) statusBar() string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	c := m.counts()
	total := len(m.rows)

	parts := []string{
		m.styles.Success.Render(fmt.Sprintf("%d/%d done", c[StatusSuccess], total)),
	}

	if n := c[StatusRunning]; n > 0 {
		parts = append(parts, m.styles.Running.Render(fmt.Sprintf("%d running", n)))
	}

	if n := c[StatusFailed]; n > 0 {
		parts = append(parts, m.styles.Failed.Render(fmt.Sprintf("%d failed", n)))
	}

	if n := c[StatusNotRun]; n > 0 {
		parts = append(parts, m.styles.Pending.Render(fmt.Sprintf("%d not run", n)))
	}

	return strings.Join(parts, " · ")
}

func (m *Model) resizeViewport() {
	m.mutex.RLock()
	w, h := m.width, m.height
	m.mutex.RUnlock()

	width := max(w-2, 20)
	height := max(h-chromeHeight, 3)

	if m.viewport.Width == 0 {
		m.viewport = viewport.New(width, height)
		return
	}

	m.viewport.Width = width
	m.viewport.Height = height
}

// refresh re-renders the rows into the viewport.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderRows())
}

func (m *Model) renderRows() string {
	m.mutex.RLock()
	rows := make([]RowInfo, 0, len(m.rows))

	for _, r := range m.rows {
		rows = append(rows, r.Info())
	}

	total := len(m.rows)
	width := m.viewport.Width
	m.mutex.RUnlock()

	lines := make([]string, 0, len(rows)*2)
	for _, r := range rows {
		lines = append(lines, m.renderRow(r, total, width)...)
	}

	return strings.Join(lines, "\n")
}

func (m *Model) renderRow(r RowInfo, total, width int) []string {
	icon, style := m.statusIcon(r.Status)

	left := fmt.Sprintf("%s %s %s", icon, m.styles.Index.Render(fmt.Sprintf("[%d/%d]", r.Index, total)), r.Label)

	right := ""
	if d := elapsed(r); d > 0 {
		right = d.Round(durationRounding).String()
	}

	line := left
	if right != "" {
		gap := width - ansi.StringWidth(left) - ansi.StringWidth(right)
		if gap < 1 {
			gap = 1
		}

		line = left + strings.Repeat(" ", gap) + m.styles.Pending.Render(right)
	}

	lines := []string{style.Render(ansi.Truncate(line, max(width, 1), "…"))}

	detailWidth := max(width-5, 1)

	switch {
	case r.Status == StatusFailed && r.ErrorMsg != "":
		lines = append(lines, "     "+m.styles.Error.Render(ansi.Truncate(r.ErrorMsg, detailWidth, "…")))
	case r.Status == StatusSuccess && r.Artifact != "":
		lines = append(lines, "     "+m.styles.Output.Render(ansi.Truncate("➜ "+r.Artifact, detailWidth, "…")))
	case r.Status == StatusRunning && r.LastOutput != "":
		lines = append(lines, "     "+m.styles.Output.Render(ansi.Truncate(r.LastOutput, detailWidth, "…")))
	}

	return lines
}

func (m *Model) statusIcon(s EntryStatus) (string, lipgloss.Style) {
	switch s {
	case StatusRunning:
		return m.spinner.View(), m.styles.Running
	case StatusSuccess:
		return "✅", m.styles.Success
	case StatusFailed:
		return "❌", m.styles.Failed
	case StatusNotRun:
		return "➖", m.styles.Pending
	default:
		return "⏳", m.styles.Pending
	}
}

// applyResults fills in rows whose events were dropped using the final results.
func (m *Model) applyResults() {
	m.mutex.RLock()
	results := m.results
	m.mutex.RUnlock()

	if len(results) == 0 {
		return
	}

	for _, res := range results[0].Children {
		if res.Index < 1 {
			continue
		}

		r := m.row(res.Index, res.Label)

		switch res.Status {
		case runbatch.ResultStatusSuccess:
			r.UpdateStatus(StatusSuccess, res.Finished)

			if res.Artifact != "" {
				r.UpdateArtifact(res.Artifact)
			}
		case runbatch.ResultStatusError:
			r.UpdateStatus(StatusFailed, res.Finished)

			if res.Error != nil {
				r.UpdateError(res.Error.Error())
			}
		case runbatch.ResultStatusNotRun:
			r.UpdateStatus(StatusNotRun, res.Finished)
		}
	}
}

func elapsed(r RowInfo) time.Duration {
	if r.StartTime == nil {
		return 0
	}

	if r.EndTime != nil {
		return r.EndTime.Sub(*r.StartTime)
	}

	return time.Since(*r.StartTime)
}
