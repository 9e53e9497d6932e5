package daemon

// State is the lifecycle stage of a Transport.
type State int32

const (
	StateUninitialized State = iota
	StateStarting
	StateReady
	StateKilled
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateStarting:
		return "starting"
	case StateReady:
		return "ready"
	case StateKilled:
		return "killed"
	default:
		return "unknown"
	}
}
