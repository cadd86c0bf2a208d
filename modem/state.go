package modem

// State is the connection milestone reached by the module. States are
// strictly ordered: each one implies all the states before it.
type State int

const (
	StateUninitialized State = iota
	StateModuleReady
	StateNetworkJoined
	StateTransportOpen
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateModuleReady:
		return "module ready"
	case StateNetworkJoined:
		return "network joined"
	case StateTransportOpen:
		return "transport open"
	default:
		return "unknown"
	}
}
