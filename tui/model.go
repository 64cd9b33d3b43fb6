// ABOUTME: Terminal UI model and core state management
// ABOUTME: Bubble Tea model implementation with live GA runs and parameter tuning

// Package tui provides an interactive terminal UI that runs the plot
// selection GA live while its parameters and limits are tuned.
package tui

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"farmplan/config"
	"farmplan/farm"
	"farmplan/ga"
)

// Panel identifiers
const (
	panelParams = "params"
	panelPlots  = "plots"
)

// Layout constants for UI dimensions
const (
	paramPanelWidth = 45 // Left panel width for parameter controls
	panelPadding    = 2  // Horizontal spacing between panels

	// UI chrome heights (elements that reduce available viewport space)
	titleHeight     = 2 // Panel title bars
	headerHeight    = 1 // Column headers for the plot list
	statusBarHeight = 1 // Bottom status bar
	breakdownHeight = 1 // Fitness breakdown display
	helpHeight      = 1 // Help text line
	spacingHeight   = 2 // Vertical spacing between elements
	totalUIChrome   = titleHeight + headerHeight + statusBarHeight + breakdownHeight + helpHeight + spacingHeight

	// Minimum viewport dimensions to ensure usability
	minViewportWidth  = 20
	minViewportHeight = 5
)

// Navigation and interaction constants
const (
	pageJumpSize          = 10              // Plots to jump on PageUp/PageDown
	statusMessageDuration = 5 * time.Second // How long to show transient status messages
	maxUndoStackSize      = 50              // Maximum undo/redo history items
	updateBufferSize      = 10
)

// ErrNoDataset is returned when the TUI is started without plots
var ErrNoDataset = errors.New("no dataset to optimize")

// gaRestartMsg signals that the GA should restart with the current settings
type gaRestartMsg struct{}

// Outcome is the state of the session when the TUI exits
type Outcome struct {
	Best     ga.Chromosome // Best selection of the last run, nil if none arrived
	Fitness  float64
	Settings config.Settings
}

// model holds the TUI state
type model struct {
	// Dependencies
	cfgProvider ConfigProvider
	runGA       RunFunc
	debugf      func(string, ...any)

	// Configuration
	localConfig   *config.Settings // Params point into this (pointer so addresses stay valid)
	choices       *strategyChoices // Strategy enums as ints for choice params
	params        []Parameter
	selectedParam int
	configPath    string

	// Data
	dataset *farm.Dataset

	// GA state
	best                 ga.Chromosome
	selected             []farm.Plot // Plots chosen by best, in dataset order
	bestFitness          float64
	lastImprovementDelta float64
	breakdown            ga.Breakdown
	generation           int
	genPerSec            float64
	meanFitness          float64
	mutationRate         float64
	restarts             int
	finished             bool
	hasUpdate            bool
	lastImprovementTime  time.Time
	timeSinceImprovement time.Duration

	// GA lifecycle
	// Bubble Tea's Init/Update/View give no way to pass a context, so the
	// model owns the one for the running GA.
	ctx        context.Context    //nolint:containedctx // see above
	cancel     context.CancelFunc // Cancel function for ctx
	updateChan chan Update
	gaEpoch    int // Increments each GA restart to drop stale updates

	// UI state
	width        int
	height       int
	quitting     bool
	statusMsg    string
	statusMsgAge time.Time
	focusedPanel string

	// Plot browsing
	cursorPos int
	viewport  viewport.Model
	undoMgr   *UndoManager
}

// Key bindings
type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Reset key.Binding
	Quit  key.Binding
	// Plot navigation
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	// Parameter history
	Undo key.Binding
	Redo key.Binding
	// Runs and settings
	Rerun key.Binding
	Save  key.Binding
	Tab   key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "navigate"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "navigate"),
	),
	Left: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "decrease param"),
	),
	Right: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "increase param"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset params"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("home", "g"),
		key.WithHelp("home/g", "first plot"),
	),
	End: key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("end/G", "last plot"),
	),
	Undo: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "undo"),
	),
	Redo: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "redo"),
	),
	Rerun: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new run"),
	),
	Save: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save settings"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch panel"),
	),
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	paramStyle = lipgloss.NewStyle().
			Padding(0, 1)

	selectedParamStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("240")).
				Foreground(lipgloss.Color("15")).
				Bold(true).
				Padding(0, 1)

	plotHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	cursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("240")).
			Foreground(lipgloss.Color("15"))
)

// Run starts the TUI and blocks until the user quits
func Run(opts Options, deps Dependencies) (Outcome, error) {
	if opts.Dataset == nil || opts.Dataset.Len() == 0 {
		return Outcome{}, ErrNoDataset
	}

	m := initModel(opts, deps)

	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return Outcome{}, fmt.Errorf("TUI error: %w", err)
	}

	final, ok := finalModel.(model)
	if !ok {
		return Outcome{Settings: deps.Config.Get()}, nil
	}

	return final.outcome(), nil
}

// initModel creates the initial model with injected dependencies
func initModel(opts Options, deps Dependencies) model {
	cfg := deps.Config.Get()

	// Allocate on the heap so parameter pointers remain valid across model copies
	localConfig := &cfg
	choices := new(strategyChoices)
	*choices = choicesOf(cfg.GA)

	debugf := deps.Debugf
	if debugf == nil {
		debugf = func(string, ...any) {}
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := model{
		cfgProvider: deps.Config,
		runGA:       deps.RunGA,
		debugf:      debugf,

		localConfig: localConfig,
		choices:     choices,
		params:      buildParams(localConfig, choices),
		configPath:  opts.ConfigPath,

		dataset:             opts.Dataset,
		lastImprovementTime: time.Now(),
		mutationRate:        cfg.GA.MutationRate,

		ctx:    ctx,
		cancel: cancel,
		// Sends are non-blocking, so a small buffer only smooths bursts
		updateChan: make(chan Update, updateBufferSize),

		viewport:     viewport.New(0, 0), // Sized on first WindowSizeMsg
		focusedPanel: panelParams,
		undoMgr:      NewUndoManager(maxUndoStackSize),
	}

	return m
}

// Init initializes the model
func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.startGA(m.ctx, m.gaEpoch),
		waitForUpdate(m.updateChan),
		tea.EnterAltScreen,
	)
}

// startGA runs the GA in a goroutine and returns a command
func (m *model) startGA(ctx context.Context, epoch int) tea.Cmd {
	settings := m.cfgProvider.Get()
	runGA := m.runGA
	updates := m.updateChan
	debugf := m.debugf

	return func() tea.Msg {
		defer func() {
			if r := recover(); r != nil {
				debugf("[PANIC] startGA panic: %v", r)
				debugf("[PANIC] Stack trace: %s", string(debug.Stack()))
				panic(r)
			}
		}()

		// Blocks until the context is cancelled or the run completes
		runGA(ctx, settings, updates, epoch)

		return nil
	}
}

// waitForUpdate waits for GA updates and returns them as messages
func waitForUpdate(updateChan <-chan Update) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updateChan
		if !ok {
			return nil
		}

		return update
	}
}

// outcome captures the final state of the session
func (m model) outcome() Outcome {
	return Outcome{
		Best:     m.best,
		Fitness:  m.bestFitness,
		Settings: m.cfgProvider.Get(),
	}
}

// currentState snapshots the tuned settings for undo
func (m *model) currentState() ParamState {
	s := *m.localConfig
	m.choices.applyTo(&s.GA)

	return ParamState{Settings: s, Selected: m.selectedParam}
}

// restoreState applies a snapshot without reallocating the parameter targets
func (m *model) restoreState(state ParamState) {
	*m.localConfig = state.Settings
	*m.choices = choicesOf(state.Settings.GA)

	if state.Selected >= 0 && state.Selected < len(m.params) {
		m.selectedParam = state.Selected
	}
}

// increaseSelectedParam increases the selected parameter value and restarts the GA
func (m *model) increaseSelectedParam() tea.Cmd {
	return m.adjustSelectedParam(increaseParam)
}

// decreaseSelectedParam decreases the selected parameter value and restarts the GA
func (m *model) decreaseSelectedParam() tea.Cmd {
	return m.adjustSelectedParam(decreaseParam)
}

func (m *model) adjustSelectedParam(adjust func(*Parameter) bool) tea.Cmd {
	if m.selectedParam >= len(m.params) {
		return nil
	}

	before := m.currentState()
	if !adjust(&m.params[m.selectedParam]) {
		return nil
	}

	m.undoMgr.Push(before)

	return m.syncConfigToGA()
}

// resetToDefaults resets GA parameters and limits, keeping dataset and seed
func (m *model) resetToDefaults() tea.Cmd {
	m.undoMgr.Push(m.currentState())

	defaults := config.DefaultConfig()
	defaults.DataPath = m.localConfig.DataPath
	defaults.Seed = m.localConfig.Seed
	m.restoreState(ParamState{Settings: defaults, Selected: m.selectedParam})

	m.setStatusMsg("Parameters reset to defaults")

	return m.syncConfigToGA()
}

// undo restores the previous parameter state and restarts the GA
func (m *model) undo() tea.Cmd {
	state, ok := m.undoMgr.Undo(m.currentState())
	if !ok {
		m.setStatusMsg("Nothing to undo")

		return nil
	}

	m.restoreState(state)
	m.setStatusMsg(fmt.Sprintf("Undo (Undo: %d, Redo: %d)", m.undoMgr.UndoSize(), m.undoMgr.RedoSize()))

	return m.syncConfigToGA()
}

// redo reapplies an undone parameter state and restarts the GA
func (m *model) redo() tea.Cmd {
	state, ok := m.undoMgr.Redo(m.currentState())
	if !ok {
		m.setStatusMsg("Nothing to redo")

		return nil
	}

	m.restoreState(state)
	m.setStatusMsg(fmt.Sprintf("Redo (Undo: %d, Redo: %d)", m.undoMgr.UndoSize(), m.undoMgr.RedoSize()))

	return m.syncConfigToGA()
}

// syncConfigToGA publishes the tuned settings and restarts the GA
func (m *model) syncConfigToGA() tea.Cmd {
	m.choices.applyTo(&m.localConfig.GA)

	if m.selectedParam < len(m.params) {
		selected := m.params[m.selectedParam]
		m.debugf("[TUI] Parameter changed - %s: %s (pop %d, gens %d, rate %.2f)",
			selected.Name,
			selected.displayValue(),
			m.localConfig.GA.PopulationSize,
			m.localConfig.GA.Generations,
			m.localConfig.GA.MutationRate)
	}

	m.cfgProvider.Update(*m.localConfig)

	return m.newRun()
}

// newRun invalidates pending updates and queues a GA restart
func (m *model) newRun() tea.Cmd {
	// Increment epoch immediately so updates from the old run are dropped
	m.gaEpoch++
	m.debugf("[TUI] Restarting GA with epoch %d", m.gaEpoch)

	return func() tea.Msg {
		return gaRestartMsg{}
	}
}

// saveConfig writes the shared settings to the config path
func (m *model) saveConfig() error {
	if m.configPath == "" {
		return nil
	}

	return config.SaveConfig(m.configPath, m.cfgProvider.Get())
}

// setStatusMsg sets a transient status message with current timestamp
func (m *model) setStatusMsg(msg string) {
	m.statusMsg = msg
	m.statusMsgAge = time.Now()
}

// ensureCursorVisible keeps the cursor visible with middle-of-screen scrolling
func (m *model) ensureCursorVisible() {
	vm := NewViewportManager(m.viewport.Height, m.cursorPos, len(m.selected))
	m.viewport.SetYOffset(vm.CalculateOffset())
}

// setBest replaces the displayed selection
func (m *model) setBest(best ga.Chromosome) {
	m.best = best
	m.selected = m.selected[:0:0]

	for _, i := range best.Selected() {
		if i < m.dataset.Len() {
			m.selected = append(m.selected, m.dataset.Plots[i])
		}
	}

	if m.cursorPos >= len(m.selected) {
		m.cursorPos = max(0, len(m.selected)-1)
	}
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return s[:maxLen]
	}

	return s[:maxLen-3] + "..."
}
