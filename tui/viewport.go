// ABOUTME: Viewport manager for cursor-to-middle scrolling of the plot list
// ABOUTME: Implements vim/less style viewport scrolling behavior

package tui

// ScrollPhase identifies where the cursor sits relative to the viewport
type ScrollPhase int

// Scroll phases: top (cursor moves), middle (content scrolls), bottom (cursor moves)
const (
	TopPhase ScrollPhase = iota
	MiddlePhase
	BottomPhase
)

// ViewportManager handles cursor visibility and viewport scrolling
type ViewportManager struct {
	height     int // Viewport height in lines
	cursorPos  int
	totalItems int
}

// NewViewportManager creates a new viewport manager
func NewViewportManager(height, cursorPos, totalItems int) *ViewportManager {
	return &ViewportManager{
		height:     height,
		cursorPos:  cursorPos,
		totalItems: totalItems,
	}
}

// Phase returns the current scrolling phase
func (vm *ViewportManager) Phase() ScrollPhase {
	if vm.totalItems == 0 || vm.height < 1 {
		return TopPhase
	}

	middle := vm.height / 2
	if vm.cursorPos < middle {
		return TopPhase
	}

	if vm.cursorPos < vm.totalItems-vm.height+middle {
		return MiddlePhase
	}

	return BottomPhase
}

// CalculateOffset computes the viewport Y offset that keeps the cursor visible
func (vm *ViewportManager) CalculateOffset() int {
	switch vm.Phase() {
	case TopPhase:
		return 0
	case MiddlePhase:
		return vm.cursorPos - vm.height/2
	default:
		return max(0, vm.totalItems-vm.height)
	}
}
