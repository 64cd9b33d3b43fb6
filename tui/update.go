// ABOUTME: Event handling and state updates for the TUI
// ABOUTME: Implements the Bubble Tea Update() function and message handlers

package tui

import (
	"context"
	"runtime/debug"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model
//
//nolint:ireturn // Bubble Tea framework requires returning tea.Model interface
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.debugf("[PANIC] Update panic: %v", r)
			m.debugf("[PANIC] Stack trace: %s", string(debug.Stack()))
			panic(r) // Re-panic so Bubble Tea can handle it
		}
	}()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.viewport.Width = max(minViewportWidth, msg.Width-paramPanelWidth-panelPadding)
		m.viewport.Height = max(minViewportHeight, msg.Height-totalUIChrome)
		m.viewport.YOffset = 0

		m.ensureCursorVisible()
		m.updateViewportContent()

		return m, nil

	case Update:
		m.handleGAUpdate(msg)

		return m, waitForUpdate(m.updateChan)

	case gaRestartMsg:
		// Cancel old GA and start a new one; gaEpoch was already incremented
		m.cancel()
		ctx, cancel := context.WithCancel(context.Background())
		m.ctx = ctx
		m.cancel = cancel
		m.generation = 0
		m.genPerSec = 0
		m.finished = false
		m.hasUpdate = false
		m.lastImprovementTime = time.Now()

		// The update channel is reused for the whole session
		return m, m.startGA(m.ctx, m.gaEpoch)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleGAUpdate applies a progress update from the current run
func (m *model) handleGAUpdate(msg Update) {
	// Ignore stale updates from old GA runs
	if msg.Epoch != m.gaEpoch {
		m.debugf("[TUI] Ignoring stale Update: epoch %d != current %d", msg.Epoch, m.gaEpoch)

		return
	}

	p := msg.Progress

	if !slices.Equal(m.best, p.Best) {
		if m.hasUpdate {
			m.lastImprovementDelta = p.BestFitness - m.bestFitness
			m.debugf("[TUI] Selection changed: %.4f -> %.4f (epoch %d, gen %d)", m.bestFitness, p.BestFitness, msg.Epoch, p.Generation)
		}

		m.lastImprovementTime = time.Now()
		m.setBest(p.Best)
		m.updateViewportContent()
	}

	m.hasUpdate = true
	m.bestFitness = p.BestFitness
	m.breakdown = msg.Breakdown
	m.generation = p.Generation
	m.genPerSec = p.GenPerSec
	m.meanFitness = p.MeanFitness
	m.mutationRate = p.MutationRate
	m.restarts = p.Restarts
	m.timeSinceImprovement = time.Since(m.lastImprovementTime)

	if msg.Done {
		m.finished = true
		m.debugf("[TUI] Run finished at gen %d with fitness %.4f", p.Generation, p.BestFitness)
	}
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m.handleQuitKey()

	case key.Matches(msg, keys.Tab):
		m.handleTabKey()

	case msg.Type == tea.KeyShiftUp:
		m.handleParamSelectKey(true)

	case msg.Type == tea.KeyShiftDown:
		m.handleParamSelectKey(false)

	case key.Matches(msg, keys.Up):
		m.handleUpKey()

	case key.Matches(msg, keys.Down):
		m.handleDownKey()

	case key.Matches(msg, keys.PageUp):
		m.moveCursor(m.cursorPos - pageJumpSize)

	case key.Matches(msg, keys.PageDown):
		m.moveCursor(m.cursorPos + pageJumpSize)

	case key.Matches(msg, keys.Home):
		m.moveCursor(0)

	case key.Matches(msg, keys.End):
		m.moveCursor(len(m.selected) - 1)

	case key.Matches(msg, keys.Left):
		if m.focusedPanel == panelParams {
			return m, m.decreaseSelectedParam()
		}

	case key.Matches(msg, keys.Right):
		if m.focusedPanel == panelParams {
			return m, m.increaseSelectedParam()
		}

	case key.Matches(msg, keys.Reset):
		return m, m.resetToDefaults()

	case key.Matches(msg, keys.Undo):
		return m, m.undo()

	case key.Matches(msg, keys.Redo):
		return m, m.redo()

	case key.Matches(msg, keys.Rerun):
		m.setStatusMsg("Starting a new run")

		return m, m.newRun()

	case key.Matches(msg, keys.Save):
		if err := m.saveConfig(); err != nil {
			m.debugf("[TUI] Failed to save config: %v", err)
			m.setStatusMsg("Failed to save settings: " + err.Error())
		} else {
			m.setStatusMsg("Settings saved to " + m.configPath)
		}
	}

	return m, nil
}

// handleQuitKey cancels the GA and saves settings
func (m *model) handleQuitKey() (model, tea.Cmd) {
	m.quitting = true
	m.cancel()

	// Don't block quit on config save failure
	if err := m.saveConfig(); err != nil {
		m.debugf("[TUI] Failed to save config on quit: %v", err)
	}

	return *m, tea.Quit
}

// handleTabKey handles panel switching
func (m *model) handleTabKey() {
	if m.focusedPanel == panelParams {
		m.focusedPanel = panelPlots
	} else {
		m.focusedPanel = panelParams
	}
}

// handleParamSelectKey handles Shift+Up/Down for parameter selection
func (m *model) handleParamSelectKey(isUp bool) {
	if isUp {
		if m.selectedParam > 0 {
			m.selectedParam--
		}
	} else if m.selectedParam < len(m.params)-1 {
		m.selectedParam++
	}
}

// handleUpKey handles Up/k key press (context-aware navigation)
func (m *model) handleUpKey() {
	if m.focusedPanel == panelParams {
		m.handleParamSelectKey(true)
	} else {
		m.moveCursor(m.cursorPos - 1)
	}
}

// handleDownKey handles Down/j key press (context-aware navigation)
func (m *model) handleDownKey() {
	if m.focusedPanel == panelParams {
		m.handleParamSelectKey(false)
	} else {
		m.moveCursor(m.cursorPos + 1)
	}
}

// moveCursor clamps pos to the plot list and scrolls to it
func (m *model) moveCursor(pos int) {
	m.cursorPos = max(0, min(pos, len(m.selected)-1))
	m.ensureCursorVisible()
	m.updateViewportContent()
}
