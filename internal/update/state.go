package update

import "fmt"

// State is the update lifecycle state. Exactly one exists per session and it
// is owned by the Controller.
type State int

const (
	StateIdle State = iota
	StateAvailable
	StateDownloading
	StateDownloaded
	StateDismissed
)

// States lists every state in declaration order.
var States = []State{StateIdle, StateAvailable, StateDownloading, StateDownloaded, StateDismissed}

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAvailable:
		return "available"
	case StateDownloading:
		return "downloading"
	case StateDownloaded:
		return "downloaded"
	case StateDismissed:
		return "dismissed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Visible reports whether the update banner is shown in this state.
func (s State) Visible() bool {
	switch s {
	case StateAvailable, StateDownloading, StateDownloaded:
		return true
	case StateIdle, StateDismissed:
		return false
	}
	return false
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	switch s {
	case StateIdle, StateAvailable, StateDownloading, StateDownloaded, StateDismissed:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("unknown update state %d", int(s))
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(b []byte) error {
	for _, st := range States {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown update state %q", string(b))
}
