// ABOUTME: Undo/redo history for parameter changes
// ABOUTME: Manages settings snapshots with maximum stack size limit

package tui

import "farmplan/config"

// ParamState captures the tuned settings and the selected parameter
type ParamState struct {
	Settings config.Settings
	Selected int
}

// UndoManager manages undo/redo stacks with maximum size limit
type UndoManager struct {
	undoStack []ParamState
	redoStack []ParamState
	maxSize   int
}

// NewUndoManager creates a new undo manager with the specified max stack size
func NewUndoManager(maxSize int) *UndoManager {
	return &UndoManager{maxSize: maxSize}
}

// Push saves a state to the undo stack
// Clears the redo stack (you can't redo after a new change)
func (um *UndoManager) Push(state ParamState) {
	um.undoStack = pushCapped(um.undoStack, state, um.maxSize)
	um.redoStack = nil
}

// Undo returns the previous state, storing current for redo
// Returns false if there is nothing to undo
func (um *UndoManager) Undo(current ParamState) (ParamState, bool) {
	if len(um.undoStack) == 0 {
		return ParamState{}, false
	}

	um.redoStack = pushCapped(um.redoStack, current, um.maxSize)

	last := len(um.undoStack) - 1
	state := um.undoStack[last]
	um.undoStack = um.undoStack[:last]

	return state, true
}

// Redo returns the next state, storing current for undo
// Returns false if there is nothing to redo
func (um *UndoManager) Redo(current ParamState) (ParamState, bool) {
	if len(um.redoStack) == 0 {
		return ParamState{}, false
	}

	um.undoStack = pushCapped(um.undoStack, current, um.maxSize)

	last := len(um.redoStack) - 1
	state := um.redoStack[last]
	um.redoStack = um.redoStack[:last]

	return state, true
}

// UndoSize returns the number of items in the undo stack
func (um *UndoManager) UndoSize() int {
	return len(um.undoStack)
}

// RedoSize returns the number of items in the redo stack
func (um *UndoManager) RedoSize() int {
	return len(um.redoStack)
}

// Clear clears both stacks
func (um *UndoManager) Clear() {
	um.undoStack = nil
	um.redoStack = nil
}

func pushCapped(stack []ParamState, state ParamState, maxSize int) []ParamState {
	stack = append(stack, state)
	if len(stack) > maxSize {
		stack = stack[1:]
	}

	return stack
}
