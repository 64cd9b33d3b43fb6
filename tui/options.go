// ABOUTME: TUI mode configuration and injected dependencies
// ABOUTME: Defines the dataset, settings provider and GA runner for a session

package tui

import "farmplan/farm"

// Options contains configuration for running the TUI
type Options struct {
	Dataset    *farm.Dataset // Plots being optimized
	ConfigPath string        // Settings are saved here on quit
}

// Dependencies holds the external collaborators of the TUI
type Dependencies struct {
	Config ConfigProvider
	RunGA  RunFunc
	Debugf func(format string, args ...any)
}
