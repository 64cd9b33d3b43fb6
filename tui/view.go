// ABOUTME: Rendering and display functions for the TUI
// ABOUTME: Implements the Bubble Tea View() function and all render helpers

package tui

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View renders the TUI
func (m model) View() string {
	defer func() {
		if r := recover(); r != nil {
			m.debugf("[PANIC] View panic: %v", r)
			m.debugf("[PANIC] Stack trace: %s", string(debug.Stack()))
			panic(r) // Re-panic so Bubble Tea can handle it
		}
	}()

	if m.quitting {
		return "Saving settings and exiting...\n"
	}

	// Both panels share a height so they join horizontally
	panelHeight := m.height - (statusBarHeight + breakdownHeight + helpHeight + 1)

	leftPanelStyle := lipgloss.NewStyle().
		Width(paramPanelWidth).
		Height(panelHeight).
		Padding(0, 1)

	rightPanelWidth := max(minViewportWidth*2, m.width-paramPanelWidth-panelPadding)

	rightPanelStyle := lipgloss.NewStyle().
		Width(rightPanelWidth).
		Height(panelHeight).
		Padding(0, 1)

	combined := lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftPanelStyle.Render(m.renderParameters()),
		rightPanelStyle.Render(m.renderPlots()),
	)

	return combined + "\n" + m.renderStatus() + "\n" + m.renderBreakdown() + "\n" + m.renderHelp()
}

// renderParameters renders the parameter control panel
func (m model) renderParameters() string {
	var s strings.Builder

	title := "Algorithm parameters"
	if m.focusedPanel == panelParams {
		title = "► " + title + " [FOCUSED]"
	}

	s.WriteString(titleStyle.Render(title) + "\n\n")

	for i, param := range m.params {
		// Fixed width formatting to prevent column misalignment
		prefix := "  "
		if i == m.selectedParam {
			prefix = "► "
		}

		line := fmt.Sprintf("%s%-22s %10s", prefix, param.Name, param.displayValue())

		if i == m.selectedParam {
			s.WriteString(selectedParamStyle.Render(line) + "\n")
		} else {
			s.WriteString(paramStyle.Render(line) + "\n")
		}
	}

	return s.String()
}

// renderPlots renders the selected plots with viewport scrolling
func (m model) renderPlots() string {
	var s strings.Builder

	title := fmt.Sprintf("Best selection (%d of %d plots)", len(m.selected), m.dataset.Len())
	if m.focusedPanel == panelPlots {
		title = "► " + title + " [FOCUSED]"
	}

	s.WriteString(titleStyle.Render(title) + "\n\n")

	header := fmt.Sprintf("%-5s %7s %7s %7s %7s %6s %5s %-10s %-8s",
		"ID", "Prod", "Cost", "Water", "Fert", "Price", "Risk", "Soil", "Crop")
	s.WriteString(plotHeaderStyle.Render(header) + "\n")

	// Content is set in Update()
	s.WriteString(m.viewport.View())

	return s.String()
}

// updateViewportContent renders every selected plot; the viewport scrolls
func (m *model) updateViewportContent() {
	var content strings.Builder

	for i, p := range m.selected {
		line := fmt.Sprintf("%-5d %7.2f %7.2f %7.2f %7.2f %6.2f %5.2f %-10s %-8s",
			p.ID,
			p.Productivity,
			p.Cost,
			p.Water,
			p.Fertilizer,
			p.Price,
			p.Risk,
			truncate(p.Soil, 10),
			truncate(p.Crop, 8),
		)

		if i == m.cursorPos {
			line = cursorStyle.Render(line)
		}

		content.WriteString(line + "\n")
	}

	m.viewport.SetContent(content.String())
}

// renderStatus renders the status bar
func (m model) renderStatus() string {
	if m.statusMsg != "" && time.Since(m.statusMsgAge) < statusMessageDuration {
		return statusStyle.Width(m.width).Render(m.statusMsg)
	}

	timeSince := m.timeSinceImprovement.Round(time.Second)

	deltaStr := ""
	if m.lastImprovementDelta != 0 {
		deltaStr = fmt.Sprintf(" | %+.4f", m.lastImprovementDelta)
	}

	state := "running"
	if m.finished {
		state = "done"
	}

	status := fmt.Sprintf("[%s] Gen: %d (%.1f gen/s) | Fitness: %.4f | Mean: %.2f | Rate: %.4f | Restarts: %d | U:%d R:%d | %s ago%s",
		state,
		m.generation,
		m.genPerSec,
		m.bestFitness,
		m.meanFitness,
		m.mutationRate,
		m.restarts,
		m.undoMgr.UndoSize(),
		m.undoMgr.RedoSize(),
		timeSince,
		deltaStr,
	)

	return statusStyle.Width(m.width).Render(status)
}

// renderBreakdown renders resource use against the current limits
func (m model) renderBreakdown() string {
	if !m.hasUpdate {
		return ""
	}

	b := m.breakdown
	limits := m.localConfig.Limits

	breakdown := fmt.Sprintf(" Revenue: %.2f | Cost: %.2f/%.2f | Water: %.2f/%.2f | Fert: %.2f/%.2f | Risk: %.2f | Penalty: %.2f",
		b.Revenue,
		b.Cost, limits.Budget,
		b.Water, limits.Water,
		b.Fertilizer, limits.Fertilizer,
		b.Risk,
		b.Penalty,
	)

	if b.Penalty > 0 {
		return warnStyle.Render(breakdown)
	}

	return helpStyle.Render(breakdown)
}

// renderHelp renders the help text
func (m model) renderHelp() string {
	return helpStyle.Render(" Tab: switch panel | ↑/↓/j/k: navigate | ←/→/h/l: adjust param | Shift+↑/↓: select param | u: undo | ctrl+r: redo | n: new run | s: save | r: reset | q: quit")
}
