package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jackchuka/rootscan/internal/model"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case animTickMsg:
		m.updateAnimState()
		if m.hasActiveAnimations() {
			return m, m.animTick()
		}
		m.animRunning = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case reportMsg:
		m.setReport(msg.report)
		if !msg.scanned {
			// Only the mappings changed; a scan may still be running.
			if m.phase == PhaseApplying {
				m.phase = PhaseIdle
			}
			if msg.applied != "" {
				return m, m.addToast(msg.applied, ToastSuccess)
			}
			return m, nil
		}
		m.phase = PhaseIdle
		m.lastScan = time.Now()
		return m, tea.Batch(m.listenForReports(), m.ensureAnimTick())

	case watchStoppedMsg:
		m.phase = PhaseIdle
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			return m, m.addToast("Watcher stopped: "+msg.err.Error(), ToastError)
		}
		return m, nil

	case errMsg:
		m.phase = PhaseIdle
		return m, m.addToast("Error: "+msg.err.Error(), ToastError)

	case toastExpiredMsg:
		for i, t := range m.toasts {
			if t.ID == msg.id {
				m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
				break
			}
		}
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Help overlay: any key closes
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.filterMode {
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.filterMode = false
			m.filterInput.Reset()
			m.filterText = ""
			m.buildRows()
			return m, nil
		case key.Matches(msg, m.keys.Enter):
			m.filterMode = false
			m.filterText = m.filterInput.Value()
			m.buildRows()
			return m, nil
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			m.filterText = m.filterInput.Value()
			m.buildRows()
			return m, cmd
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	// Navigation
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0

	case key.Matches(msg, m.keys.Bottom):
		m.cursor = max(len(m.rows)-1, 0)

	case key.Matches(msg, m.keys.HalfDown):
		m.cursor = max(min(m.cursor+m.visibleRows()/2, len(m.rows)-1), 0)

	case key.Matches(msg, m.keys.HalfUp):
		m.cursor = max(m.cursor-m.visibleRows()/2, 0)

	// Filter
	case key.Matches(msg, m.keys.Filter):
		m.filterMode = true
		m.filterInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Escape):
		m.filterText = ""
		m.filterInput.Reset()
		m.buildRows()

	// Mapping decisions
	case key.Matches(msg, m.keys.Accept):
		if row := m.selectedRow(); row != nil && row.Status == StatusUnregistered {
			return m.applying("Registered", m.backend.Accept, row.Root)
		}

	case key.Matches(msg, m.keys.AcceptAll):
		if len(m.report.Unregistered) > 0 {
			return m.applying("Registered", m.backend.Accept, m.report.Unregistered...)
		}

	case key.Matches(msg, m.keys.Ignore):
		if row := m.selectedRow(); row != nil && row.Status == StatusUnregistered {
			return m.applying("Ignored", m.backend.Ignore, row.Root)
		}

	case key.Matches(msg, m.keys.Remove):
		if row := m.selectedRow(); row != nil && (row.Status == StatusInvalid || row.Status == StatusUnreachable) {
			return m.applying("Removed", m.backend.Remove, row.Root)
		}

	// Actions
	case key.Matches(msg, m.keys.Rescan):
		m.backend.Rescan()
		m.phase = PhaseScanning
		return m, m.ensureAnimTick()

	case key.Matches(msg, m.keys.CopyPath):
		if row := m.selectedRow(); row != nil {
			return m, tea.Batch(
				m.copyToClipboard(row.Root.Path),
				m.addToast("Copied path", ToastInfo),
			)
		}

	// Views
	case key.Matches(msg, m.keys.ViewAll):
		m.viewFilter = ViewAll
		m.buildRows()

	case key.Matches(msg, m.keys.ViewUnregistered):
		m.viewFilter = ViewUnregistered
		m.buildRows()

	case key.Matches(msg, m.keys.ViewInvalid):
		m.viewFilter = ViewInvalid
		m.buildRows()

	case key.Matches(msg, m.keys.ViewUnreachable):
		m.viewFilter = ViewUnreachable
		m.buildRows()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	}

	return m, nil
}

func (m *Model) applying(verb string, fn func(context.Context, ...model.Root) error, roots ...model.Root) (tea.Model, tea.Cmd) {
	if m.phase == PhaseIdle {
		m.phase = PhaseApplying
	}
	return m, tea.Batch(m.apply(verb, fn, roots), m.ensureAnimTick())
}

func (m *Model) visibleRows() int {
	// header(2) + summary(6) + table header(1) + footer(2) = 11
	return max(m.height-11, 1)
}
