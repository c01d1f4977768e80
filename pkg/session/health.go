package session

import "time"

// HealthStatus summarizes all sessions.
type HealthStatus string

const (
	HealthIdle       HealthStatus = "idle"       // no sessions
	HealthConnected  HealthStatus = "connected"  // every session is ready
	HealthDegraded   HealthStatus = "degraded"   // some sessions are ready
	HealthConnecting HealthStatus = "connecting" // none ready, some still recovering
	HealthDown       HealthStatus = "down"       // none ready and none recovering
)

// Health is a read-only view over all sessions.
type Health struct {
	Status   HealthStatus  `json:"status"`
	Sessions []Snapshot    `json:"sessions"`
	Uptime   time.Duration `json:"uptime"`
}

func summarize(snaps []Snapshot) HealthStatus {
	if len(snaps) == 0 {
		return HealthIdle
	}

	var ready, recovering int
	for _, s := range snaps {
		switch s.State {
		case StateReady:
			ready++
		case StateInitializing, StateAwaitingPairing, StateDisconnected:
			recovering++
		}
	}

	switch {
	case ready == len(snaps):
		return HealthConnected
	case ready > 0:
		return HealthDegraded
	case recovering > 0:
		return HealthConnecting
	default:
		return HealthDown
	}
}
