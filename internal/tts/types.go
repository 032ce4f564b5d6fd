package tts

// State is the playback state reported by a Controller.
type State int

const (
	// StateIdle indicates no session is active.
	StateIdle State = iota

	// StateLoading indicates a session is fetching and decoding its first
	// segment.
	StateLoading

	// StatePlaying indicates a session is rendering audio.
	StatePlaying
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// Progress describes where the active session is.
type Progress struct {
	// Segment is the 0-based index of the segment being fetched or played.
	Segment int

	// Total is the number of segments in the session, 0 when idle.
	Total int
}
