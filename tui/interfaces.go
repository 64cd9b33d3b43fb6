// ABOUTME: Interfaces and message types shared between the TUI and its host
// ABOUTME: The host supplies settings access and a GA runner that emits Updates

package tui

import (
	"context"

	"farmplan/config"
	"farmplan/ga"
)

// ConfigProvider provides thread-safe access to the tool settings
type ConfigProvider interface {
	Get() config.Settings
	Update(s config.Settings)
}

// RunFunc runs the GA with the given settings until ctx is cancelled or the
// run completes, sending progress on updates tagged with epoch.
type RunFunc func(ctx context.Context, settings config.Settings, updates chan<- Update, epoch int)

// Update represents a progress update from the GA
type Update struct {
	Progress  ga.Update
	Breakdown ga.Breakdown // Evaluation of Progress.Best under the run's limits
	Done      bool         // Final update of the run
	Epoch     int
}
