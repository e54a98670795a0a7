package netmq

// State is the proxy's lifecycle position. Transitions form a single cycle,
// Stopped → Starting → Started → Stopping → Stopped, and are performed with
// compare-and-swap so that racing Start/Start or Stop/Stop calls resolve to
// exactly one winner.
type State int32

const (
	// Stopped is the initial and final state; the proxy is inert.
	Stopped State = iota
	// Starting is the transient state while Start wires up callbacks.
	Starting
	// Started means relay callbacks are live.
	Started
	// Stopping is the transient state while Stop tears down.
	Stopping
)

var stateNames = [...]string{"Stopped", "Starting", "Started", "Stopping"}

func (s State) String() string {
	if s < Stopped || s > Stopping {
		return "Unknown"
	}
	return stateNames[s]
}
