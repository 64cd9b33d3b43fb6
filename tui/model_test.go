// ABOUTME: Unit tests for TUI model behavior
// ABOUTME: Tests initialization, parameter tuning, undo, GA updates and quitting

package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"farmplan/config"
	"farmplan/farm"
	"farmplan/ga"
)

// mockConfig implements ConfigProvider for testing
type mockConfig struct {
	settings config.Settings
	updates  int
}

func (m *mockConfig) Get() config.Settings {
	return m.settings
}

func (m *mockConfig) Update(s config.Settings) {
	m.settings = s
	m.updates++
}

// runCall records one invocation of the injected GA runner
type runCall struct {
	settings config.Settings
	epoch    int
}

// createTestModel creates a model with mock dependencies for testing
func createTestModel(t *testing.T, plots int) (model, *mockConfig, chan runCall) {
	t.Helper()

	d, err := farm.Generate(plots, 1)
	if err != nil {
		t.Fatal(err)
	}

	cfg := &mockConfig{settings: config.DefaultConfig()}
	calls := make(chan runCall, 10)

	deps := Dependencies{
		Config: cfg,
		RunGA: func(_ context.Context, s config.Settings, _ chan<- Update, epoch int) {
			calls <- runCall{settings: s, epoch: epoch}
		},
	}

	opts := Options{
		Dataset:    d,
		ConfigPath: filepath.Join(t.TempDir(), "farmplan.toml"),
	}

	return initModel(opts, deps), cfg, calls
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelInitialization(t *testing.T) {
	m, _, _ := createTestModel(t, 10)

	if len(m.params) != 12 {
		t.Errorf("Expected 12 parameters, got %d", len(m.params))
	}

	if m.selectedParam != 0 || m.focusedPanel != panelParams || m.gaEpoch != 0 {
		t.Errorf("Unexpected initial state: param %d panel %s epoch %d", m.selectedParam, m.focusedPanel, m.gaEpoch)
	}

	if len(m.selected) != 0 || m.hasUpdate {
		t.Error("No selection should be shown before the first update")
	}
}

func TestParameterAdjustment(t *testing.T) {
	m, cfg, _ := createTestModel(t, 10)
	defaults := config.DefaultConfig()

	m.selectedParam = 0 // Population Size

	cmd := m.increaseSelectedParam()
	if cmd == nil {
		t.Fatal("Expected restart command after parameter change")
	}

	if _, ok := cmd().(gaRestartMsg); !ok {
		t.Error("Expected gaRestartMsg from restart command")
	}

	if cfg.settings.GA.PopulationSize != defaults.GA.PopulationSize+10 {
		t.Errorf("Shared settings not updated: population %d", cfg.settings.GA.PopulationSize)
	}

	if m.gaEpoch != 1 {
		t.Errorf("Expected gaEpoch to be 1 after parameter change, got %d", m.gaEpoch)
	}

	if m.undoMgr.UndoSize() != 1 {
		t.Errorf("Expected 1 undo entry, got %d", m.undoMgr.UndoSize())
	}
}

func TestParameterBoundaries(t *testing.T) {
	m, cfg, _ := createTestModel(t, 10)

	m.selectedParam = 0
	*m.params[0].IntValue = int(m.params[0].Max)

	if cmd := m.increaseSelectedParam(); cmd != nil {
		t.Error("Increase at max should not restart the GA")
	}

	if m.gaEpoch != 0 || cfg.updates != 0 || m.undoMgr.UndoSize() != 0 {
		t.Errorf("Rejected change had side effects: epoch %d updates %d undo %d", m.gaEpoch, cfg.updates, m.undoMgr.UndoSize())
	}
}

func TestStrategyChoiceParameter(t *testing.T) {
	m, cfg, _ := createTestModel(t, 10)

	m.selectedParam = 3 // Selection
	if m.params[3].Name != "Selection" {
		t.Fatalf("Parameter 3 is %q, want Selection", m.params[3].Name)
	}

	_ = m.increaseSelectedParam()
	if cfg.settings.GA.Selection != ga.Roulette {
		t.Errorf("Selection = %s, want roulette", cfg.settings.GA.Selection)
	}

	_ = m.increaseSelectedParam()
	if cmd := m.increaseSelectedParam(); cmd != nil {
		t.Error("Selection should stop at the last strategy")
	}

	if cfg.settings.GA.Selection != ga.Rank {
		t.Errorf("Selection = %s, want rank", cfg.settings.GA.Selection)
	}
}

func TestUndoRedoParameters(t *testing.T) {
	m, cfg, _ := createTestModel(t, 10)
	original := cfg.settings.GA.MutationRate

	m.selectedParam = 2 // Mutation Rate
	_ = m.increaseSelectedParam()
	changed := cfg.settings.GA.MutationRate

	if changed <= original {
		t.Fatalf("Mutation rate did not increase: %.4f", changed)
	}

	m.selectedParam = 0
	_ = m.undo()

	if cfg.settings.GA.MutationRate != original || *m.params[2].Value != original {
		t.Errorf("Undo did not restore mutation rate: shared %.4f param %.4f", cfg.settings.GA.MutationRate, *m.params[2].Value)
	}

	if m.selectedParam != 2 {
		t.Errorf("Undo should restore the selected parameter, got %d", m.selectedParam)
	}

	_ = m.redo()
	if cfg.settings.GA.MutationRate != changed {
		t.Errorf("Redo did not reapply mutation rate: %.4f", cfg.settings.GA.MutationRate)
	}

	if m.gaEpoch != 3 {
		t.Errorf("Each change should restart the GA, epoch %d", m.gaEpoch)
	}

	if cmd := m.redo(); cmd != nil {
		t.Error("Redo with empty stack should not restart the GA")
	}
}

func TestResetToDefaults(t *testing.T) {
	m, cfg, _ := createTestModel(t, 10)

	m.localConfig.DataPath = "custom.csv"
	*m.params[0].IntValue = 500
	m.choices.Crossover = int(ga.Uniform)
	m.localConfig.Limits.Budget = 10

	_ = m.resetToDefaults()

	defaults := config.DefaultConfig()
	if cfg.settings.GA != defaults.GA || cfg.settings.Limits != defaults.Limits {
		t.Errorf("Settings not reset: %+v", cfg.settings)
	}

	if cfg.settings.DataPath != "custom.csv" {
		t.Errorf("Reset should keep the dataset path, got %q", cfg.settings.DataPath)
	}

	if *m.params[0].IntValue != defaults.GA.PopulationSize {
		t.Errorf("Parameter pointers not reset: %d", *m.params[0].IntValue)
	}
}

func TestGAUpdateShowsSelection(t *testing.T) {
	m, _, _ := createTestModel(t, 6)

	best := ga.Chromosome{1, 0, 1, 0, 0, 1}
	next, cmd := m.Update(Update{
		Progress:  ga.Update{Generation: 9, BestFitness: 42, MeanFitness: 10, Best: best},
		Breakdown: ga.Breakdown{Revenue: 80, Total: 42},
		Epoch:     0,
	})

	if cmd == nil {
		t.Error("Expected command waiting for the next update")
	}

	got := next.(model)
	if len(got.selected) != 3 || got.selected[1].ID != 2 {
		t.Errorf("Unexpected selected plots: %+v", got.selected)
	}

	if got.bestFitness != 42 || got.generation != 9 || !got.hasUpdate {
		t.Errorf("Stats not applied: fitness %.2f gen %d", got.bestFitness, got.generation)
	}

	if !strings.Contains(got.View(), "Best selection (3 of 6 plots)") {
		t.Error("View should show the selection size")
	}

	// Stale updates are dropped
	got.gaEpoch = 1
	next, _ = got.Update(Update{Progress: ga.Update{BestFitness: 99, Best: ga.Chromosome{1, 1, 1, 1, 1, 1}}, Epoch: 0})

	if stale := next.(model); stale.bestFitness != 42 || len(stale.selected) != 3 {
		t.Errorf("Stale update was applied: fitness %.2f", stale.bestFitness)
	}
}

func TestFinalUpdateMarksDone(t *testing.T) {
	m, _, _ := createTestModel(t, 4)

	next, _ := m.Update(Update{Progress: ga.Update{Best: ga.Chromosome{0, 1, 0, 0}}, Done: true})
	if !next.(model).finished {
		t.Error("Done update should mark the run finished")
	}
}

func TestRestartRunsWithCurrentSettings(t *testing.T) {
	m, _, calls := createTestModel(t, 10)

	m.selectedParam = 1 // Generations
	cmd := m.increaseSelectedParam()

	next, startCmd := m.Update(cmd())
	if startCmd == nil {
		t.Fatal("Restart should start a new GA")
	}

	startCmd()

	call := <-calls
	if call.epoch != 1 {
		t.Errorf("GA started with epoch %d, want 1", call.epoch)
	}

	if call.settings.GA.Generations != config.DefaultConfig().GA.Generations+10 {
		t.Errorf("GA started with generations %d", call.settings.GA.Generations)
	}

	if next.(model).ctx.Err() != nil {
		t.Error("New run context should be live")
	}
}

func TestCursorNavigation(t *testing.T) {
	m, _, _ := createTestModel(t, 30)

	all := make(ga.Chromosome, 30)
	for i := range all {
		all[i] = 1
	}

	m.handleGAUpdate(Update{Progress: ga.Update{Best: all}})
	m.focusedPanel = panelPlots

	m.handleDownKey()
	if m.cursorPos != 1 {
		t.Errorf("Down should move cursor to 1, got %d", m.cursorPos)
	}

	m.moveCursor(m.cursorPos + pageJumpSize)
	m.moveCursor(1000)
	if m.cursorPos != 29 {
		t.Errorf("Cursor should clamp to last plot, got %d", m.cursorPos)
	}

	// A smaller selection pulls the cursor back into range
	m.handleGAUpdate(Update{Progress: ga.Update{Best: ga.Chromosome{1, 1}}})
	if m.cursorPos != 1 {
		t.Errorf("Cursor should clamp to new selection, got %d", m.cursorPos)
	}
}

func TestQuitSavesSettings(t *testing.T) {
	m, _, _ := createTestModel(t, 10)

	m.selectedParam = 0
	_ = m.increaseSelectedParam()

	next, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("Quit should return a command")
	}

	got := next.(model)
	if !got.quitting || got.ctx.Err() == nil {
		t.Error("Quit should mark quitting and cancel the GA")
	}

	if _, err := os.Stat(m.configPath); err != nil {
		t.Fatalf("Settings file not written: %v", err)
	}

	saved, err := config.LoadConfig(m.configPath)
	if err != nil {
		t.Fatal(err)
	}

	if saved.GA.PopulationSize != config.DefaultConfig().GA.PopulationSize+10 {
		t.Errorf("Saved population %d", saved.GA.PopulationSize)
	}
}

func TestTabSwitchesPanel(t *testing.T) {
	m, _, _ := createTestModel(t, 10)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if next.(model).focusedPanel != panelPlots {
		t.Error("Tab should focus the plot panel")
	}
}
