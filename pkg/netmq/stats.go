package netmq

import (
	"fmt"
	"sync/atomic"
)

// DirectionStats tracks transfer counts for one relay direction.
type DirectionStats struct {
	frames   atomic.Uint64
	messages atomic.Uint64
	bytes    atomic.Uint64
}

// RelayStats keeps lock-free transfer counters for both relay directions.
// Counters are updated by the reactor's dispatch goroutine and may be read
// from any goroutine at any time, including after Stop.
type RelayStats struct {
	toBackend       DirectionStats
	toFrontend      DirectionStats
	transportErrors atomic.Uint64
}

func (s *RelayStats) countFrame(dir Direction, nbytes int, endOfMessage bool) {
	d := &s.toBackend
	if dir == BackendToFrontend {
		d = &s.toFrontend
	}
	d.frames.Add(1)
	d.bytes.Add(uint64(nbytes))
	if endOfMessage {
		d.messages.Add(1)
	}
}

// DirectionSnapshot is a point-in-time copy of one direction's counters.
type DirectionSnapshot struct {
	Frames   uint64
	Messages uint64
	Bytes    uint64
}

// RelayStatsSnapshot is a point-in-time copy of the relay counters.
type RelayStatsSnapshot struct {
	ToBackend       DirectionSnapshot
	ToFrontend      DirectionSnapshot
	TransportErrors uint64
}

// Snapshot copies the live counters.
func (s *RelayStats) Snapshot() RelayStatsSnapshot {
	return RelayStatsSnapshot{
		ToBackend: DirectionSnapshot{
			Frames:   s.toBackend.frames.Load(),
			Messages: s.toBackend.messages.Load(),
			Bytes:    s.toBackend.bytes.Load(),
		},
		ToFrontend: DirectionSnapshot{
			Frames:   s.toFrontend.frames.Load(),
			Messages: s.toFrontend.messages.Load(),
			Bytes:    s.toFrontend.bytes.Load(),
		},
		TransportErrors: s.transportErrors.Load(),
	}
}

func (s RelayStatsSnapshot) String() string {
	return fmt.Sprintf("[->backend %d msgs/%d frames/%d bytes, ->frontend %d msgs/%d frames/%d bytes, %d errors]",
		s.ToBackend.Messages, s.ToBackend.Frames, s.ToBackend.Bytes,
		s.ToFrontend.Messages, s.ToFrontend.Frames, s.ToFrontend.Bytes,
		s.TransportErrors)
}
