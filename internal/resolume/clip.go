package resolume

import "fmt"

// ClipState is the connection state Resolume reports for a clip slot.
type ClipState int

const (
	ClipEmpty         ClipState = iota // 0: not connected
	ClipIdle                           // 1: connected, not running
	ClipTransitioning                  // 2: queued / moving between states
	ClipRunning                        // 3: playing
)

// ParseClipState converts the wire value of .../connected
func ParseClipState(v int) (ClipState, bool) {
	if v < int(ClipEmpty) || v > int(ClipRunning) {
		return ClipEmpty, false
	}
	return ClipState(v), true
}

func (s ClipState) String() string {
	switch s {
	case ClipEmpty:
		return "empty"
	case ClipIdle:
		return "idle"
	case ClipTransitioning:
		return "transitioning"
	case ClipRunning:
		return "running"
	}
	return fmt.Sprintf("ClipState(%d)", int(s))
}
