package core

import "sync/atomic"

// BrokerPhase is the lifecycle phase of the broker consumer.
type BrokerPhase int32

const (
	PhaseDisconnected BrokerPhase = iota
	PhaseConnecting
	PhaseTopologyReady
	PhaseConsuming
)

func (p BrokerPhase) String() string {
	switch p {
	case PhaseConnecting:
		return "connecting"
	case PhaseTopologyReady:
		return "topology_ready"
	case PhaseConsuming:
		return "consuming"
	default:
		return "disconnected"
	}
}

// ConnectionState is the process-wide view of the broker connection. Only the
// broker consumer writes to it; health and diagnostic surfaces read it.
type ConnectionState struct {
	connected   atomic.Bool
	channelOpen atomic.Bool
	phase       atomic.Int32
}

// ConnectionSnapshot is a point-in-time copy of ConnectionState.
type ConnectionSnapshot struct {
	Connected   bool   `json:"connected"`
	ChannelOpen bool   `json:"channel_open"`
	Phase       string `json:"phase"`
}

// NewConnectionState returns a state in the disconnected phase.
func NewConnectionState() *ConnectionState {
	return &ConnectionState{}
}

func (s *ConnectionState) SetConnected(v bool) {
	s.connected.Store(v)
}

func (s *ConnectionState) SetChannelOpen(v bool) {
	s.channelOpen.Store(v)
}

func (s *ConnectionState) SetPhase(p BrokerPhase) {
	s.phase.Store(int32(p))
}

// SetDisconnected clears both flags and resets the phase.
func (s *ConnectionState) SetDisconnected() {
	s.channelOpen.Store(false)
	s.connected.Store(false)
	s.phase.Store(int32(PhaseDisconnected))
}

func (s *ConnectionState) Connected() bool {
	return s.connected.Load()
}

func (s *ConnectionState) ChannelOpen() bool {
	return s.channelOpen.Load()
}

func (s *ConnectionState) Phase() BrokerPhase {
	return BrokerPhase(s.phase.Load())
}

// Snapshot returns the current flags and phase.
func (s *ConnectionState) Snapshot() ConnectionSnapshot {
	return ConnectionSnapshot{
		Connected:   s.Connected(),
		ChannelOpen: s.ChannelOpen(),
		Phase:       s.Phase().String(),
	}
}
