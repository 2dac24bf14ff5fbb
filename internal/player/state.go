package player

// State is the lifecycle state of a player session.
type State int32

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StatePlaying
	StatePaused
	StateError
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateError:
		return "error"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// loaded reports whether the video is mounted and ticks are meaningful.
func (s State) loaded() bool {
	return s == StateReady || s == StatePlaying || s == StatePaused
}
